package event

import "github.com/KOMKZ/go-yogan-chat/logger"

type listenerEntry struct {
	id       uint64
	listener Listener
	priority int // lower runs first
	async    bool
	once     bool
}

// SubscribeOption configures a subscription
type SubscribeOption func(*listenerEntry)

// WithPriority orders listeners; lower runs first, default 0
func WithPriority(priority int) SubscribeOption {
	return func(e *listenerEntry) {
		e.priority = priority
	}
}

// WithAsync runs the listener on the pool; its error never reaches the dispatcher caller
func WithAsync() SubscribeOption {
	return func(e *listenerEntry) {
		e.async = true
	}
}

// WithOnce unsubscribes after the first delivery
func WithOnce() SubscribeOption {
	return func(e *listenerEntry) {
		e.once = true
	}
}

// DispatcherOption configures a Dispatcher
type DispatcherOption func(*Bus)

func WithPoolSize(size int) DispatcherOption {
	return func(d *Bus) {
		d.poolSize = size
	}
}

// WithSetAllSync forces every listener to run synchronously (tests)
func WithSetAllSync(v bool) DispatcherOption {
	return func(d *Bus) {
		d.setAllSync = v
	}
}

func WithLogger(log *logger.CtxZapLogger) DispatcherOption {
	return func(d *Bus) {
		if log != nil {
			d.logger = log
		}
	}
}
