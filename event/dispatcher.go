package event

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/KOMKZ/go-yogan-chat/logger"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

type UnsubscribeFunc func()

// Dispatcher is what publishers and subscribers depend on
type Dispatcher interface {
	Subscribe(eventName string, listener Listener, opts ...SubscribeOption) UnsubscribeFunc

	// Dispatch runs synchronous listeners in priority order and submits async ones
	Dispatch(ctx context.Context, event Event) error

	// DispatchAsync runs the whole dispatch on the pool
	DispatchAsync(ctx context.Context, event Event)

	Use(interceptor Interceptor)
}

// Bus is the in-memory Dispatcher
type Bus struct {
	mu           sync.RWMutex
	listeners    map[string][]listenerEntry
	interceptors []Interceptor
	nextID       uint64
	pool         *ants.Pool
	poolSize     int
	logger       *logger.CtxZapLogger
	closed       int32
	setAllSync   bool
	inflight     sync.WaitGroup
}

var _ Dispatcher = (*Bus)(nil)

func NewDispatcher(opts ...DispatcherOption) *Bus {
	d := &Bus{
		listeners: make(map[string][]listenerEntry),
		poolSize:  defaultPoolSize,
		logger:    logger.Nop(),
	}

	for _, opt := range opts {
		opt(d)
	}

	var err error
	d.pool, err = ants.NewPool(d.poolSize)
	if err != nil {
		d.logger.Error("failed to create event pool, using default size", zap.Error(err))
		d.pool, _ = ants.NewPool(defaultPoolSize)
	}

	return d
}

func (d *Bus) Subscribe(eventName string, listener Listener, opts ...SubscribeOption) UnsubscribeFunc {
	if eventName == "" || listener == nil {
		return func() {}
	}

	entry := listenerEntry{
		id:       atomic.AddUint64(&d.nextID, 1),
		listener: listener,
	}
	for _, opt := range opts {
		opt(&entry)
	}
	if d.setAllSync {
		entry.async = false
	}

	d.mu.Lock()
	d.listeners[eventName] = append(d.listeners[eventName], entry)
	sort.SliceStable(d.listeners[eventName], func(i, j int) bool {
		return d.listeners[eventName][i].priority < d.listeners[eventName][j].priority
	})
	d.mu.Unlock()

	return func() {
		d.unsubscribe(eventName, entry.id)
	}
}

func (d *Bus) unsubscribe(eventName string, id uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	entries := d.listeners[eventName]
	for i, e := range entries {
		if e.id == id {
			d.listeners[eventName] = append(entries[:i:i], entries[i+1:]...)
			return
		}
	}
}

func (d *Bus) Use(interceptor Interceptor) {
	d.mu.Lock()
	d.interceptors = append(d.interceptors, interceptor)
	d.mu.Unlock()
}

func (d *Bus) Dispatch(ctx context.Context, event Event) error {
	if event == nil {
		return nil
	}

	d.mu.RLock()
	interceptors := make([]Interceptor, len(d.interceptors))
	copy(interceptors, d.interceptors)
	entries := make([]listenerEntry, len(d.listeners[event.Name()]))
	copy(entries, d.listeners[event.Name()])
	d.mu.RUnlock()

	handler := d.buildHandlerChain(entries, interceptors)
	err := handler(ctx, event)

	d.cleanupOnceListeners(event.Name(), entries)

	if errors.Is(err, ErrStopPropagation) {
		return nil
	}
	return err
}

func (d *Bus) DispatchAsync(ctx context.Context, event Event) {
	if event == nil {
		return
	}
	if d.setAllSync {
		if err := d.Dispatch(ctx, event); err != nil {
			d.logger.ErrorCtx(ctx, "event handling failed", zap.String("event", event.Name()), zap.Error(err))
		}
		return
	}
	asyncCtx := detach(ctx)
	d.submit(ctx, event.Name(), func() {
		if err := d.Dispatch(asyncCtx, event); err != nil {
			d.logger.ErrorCtx(asyncCtx, "async event handling failed",
				zap.String("event", event.Name()), zap.Error(err))
		}
	})
}

// detach keeps the trace id but drops the request's cancellation
func detach(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}

func (d *Bus) submit(ctx context.Context, eventName string, task func()) {
	if atomic.LoadInt32(&d.closed) == 1 {
		d.logger.WarnCtx(ctx, "event bus closed, async task dropped", zap.String("event", eventName))
		return
	}
	d.inflight.Add(1)
	err := d.pool.Submit(func() {
		defer d.inflight.Done()
		task()
	})
	if err != nil {
		d.inflight.Done()
		d.logger.ErrorCtx(ctx, "failed to submit async event task",
			zap.String("event", eventName), zap.Error(err))
	}
}

func (d *Bus) buildHandlerChain(entries []listenerEntry, interceptors []Interceptor) Next {
	handler := func(ctx context.Context, event Event) error {
		return d.executeListeners(ctx, event, entries)
	}

	for i := len(interceptors) - 1; i >= 0; i-- {
		interceptor := interceptors[i]
		next := handler
		handler = func(ctx context.Context, event Event) error {
			return interceptor(ctx, event, next)
		}
	}
	return handler
}

func (d *Bus) executeListeners(ctx context.Context, event Event, entries []listenerEntry) error {
	for _, entry := range entries {
		if entry.async {
			listener := entry.listener
			asyncCtx := detach(ctx)
			d.submit(ctx, event.Name(), func() {
				if err := listener.Handle(asyncCtx, event); err != nil && !errors.Is(err, ErrStopPropagation) {
					d.logger.ErrorCtx(asyncCtx, "async listener failed",
						zap.String("event", event.Name()), zap.Error(err))
				}
			})
			continue
		}

		if err := entry.listener.Handle(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

func (d *Bus) cleanupOnceListeners(eventName string, executed []listenerEntry) {
	onceIDs := make(map[uint64]struct{})
	for _, e := range executed {
		if e.once {
			onceIDs[e.id] = struct{}{}
		}
	}
	if len(onceIDs) == 0 {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	entries := d.listeners[eventName]
	filtered := make([]listenerEntry, 0, len(entries))
	for _, e := range entries {
		if _, remove := onceIDs[e.id]; !remove {
			filtered = append(filtered, e)
		}
	}
	d.listeners[eventName] = filtered
}

// Wait blocks until every submitted async task has finished
func (d *Bus) Wait() {
	d.inflight.Wait()
}

// Shutdown drains in-flight async work and releases the pool (samber/do Shutdowner)
func (d *Bus) Shutdown() error {
	if !atomic.CompareAndSwapInt32(&d.closed, 0, 1) {
		return nil
	}
	d.inflight.Wait()
	if d.pool != nil {
		d.pool.Release()
	}
	return nil
}

// ListenerCount is used by tests
func (d *Bus) ListenerCount(eventName string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.listeners[eventName])
}
