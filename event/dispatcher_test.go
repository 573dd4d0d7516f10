package event

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/KOMKZ/go-yogan-chat/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEvent struct {
	BaseEvent
	Data string
}

func newTestEvent(name, data string) *testEvent {
	return &testEvent{BaseEvent: NewEvent(name), Data: data}
}

func TestNewEvent(t *testing.T) {
	before := time.Now()
	e := NewEvent("message.created")
	assert.Equal(t, "message.created", e.Name())
	assert.False(t, e.OccurredAt().Before(before))
}

func TestDispatcher_Subscribe(t *testing.T) {
	d := NewDispatcher()
	defer d.Shutdown()

	unsub := d.Subscribe("user.created", ListenerFunc(func(context.Context, Event) error { return nil }))
	assert.Equal(t, 1, d.ListenerCount("user.created"))

	unsub()
	assert.Equal(t, 0, d.ListenerCount("user.created"))

	d.Subscribe("", ListenerFunc(func(context.Context, Event) error { return nil }))
	d.Subscribe("user.created", nil)
	assert.Equal(t, 0, d.ListenerCount(""))
	assert.Equal(t, 0, d.ListenerCount("user.created"))
}

func TestDispatcher_DispatchRunsByPriority(t *testing.T) {
	d := NewDispatcher()
	defer d.Shutdown()

	var order []string
	record := func(name string) Listener {
		return ListenerFunc(func(context.Context, Event) error {
			order = append(order, name)
			return nil
		})
	}
	d.Subscribe("message.read", record("late"), WithPriority(10))
	d.Subscribe("message.read", record("early"), WithPriority(-1))
	d.Subscribe("message.read", record("default"))

	require.NoError(t, d.Dispatch(context.Background(), newTestEvent("message.read", "")))
	assert.Equal(t, []string{"early", "default", "late"}, order)
}

func TestDispatcher_ErrorStopsChain(t *testing.T) {
	d := NewDispatcher()
	defer d.Shutdown()

	boom := errors.New("boom")
	var second atomic.Bool
	d.Subscribe("message.deleted", ListenerFunc(func(context.Context, Event) error { return boom }))
	d.Subscribe("message.deleted", ListenerFunc(func(context.Context, Event) error {
		second.Store(true)
		return nil
	}), WithPriority(1))

	err := d.Dispatch(context.Background(), newTestEvent("message.deleted", ""))
	assert.ErrorIs(t, err, boom)
	assert.False(t, second.Load())
}

func TestDispatcher_StopPropagationIsNotAnError(t *testing.T) {
	d := NewDispatcher()
	defer d.Shutdown()

	var second atomic.Bool
	d.Subscribe("e", ListenerFunc(func(context.Context, Event) error { return ErrStopPropagation }))
	d.Subscribe("e", ListenerFunc(func(context.Context, Event) error {
		second.Store(true)
		return nil
	}), WithPriority(1))

	assert.NoError(t, d.Dispatch(context.Background(), newTestEvent("e", "")))
	assert.False(t, second.Load())
}

func TestDispatcher_AsyncListener(t *testing.T) {
	d := NewDispatcher(WithPoolSize(4))
	defer d.Shutdown()

	var got atomic.Value
	d.Subscribe("message.created", ListenerFunc(func(_ context.Context, e Event) error {
		got.Store(e.(*testEvent).Data)
		return errors.New("ignored")
	}), WithAsync())

	require.NoError(t, d.Dispatch(context.Background(), newTestEvent("message.created", "hello")))
	d.Wait()
	assert.Equal(t, "hello", got.Load())
}

func TestDispatcher_AsyncListenerSurvivesCancelledContext(t *testing.T) {
	d := NewDispatcher()
	defer d.Shutdown()

	var ctxErr atomic.Value
	d.Subscribe("e", ListenerFunc(func(ctx context.Context, _ Event) error {
		ctxErr.Store(ctx.Err() == nil)
		return nil
	}), WithAsync())

	ctx, cancel := context.WithCancel(context.WithValue(context.Background(), "trace_id", "t-1"))
	require.NoError(t, d.Dispatch(ctx, newTestEvent("e", "")))
	cancel()
	d.Wait()
	assert.Equal(t, true, ctxErr.Load())
}

func TestDispatcher_SetAllSync(t *testing.T) {
	d := NewDispatcher(WithSetAllSync(true))
	defer d.Shutdown()

	called := false
	d.Subscribe("e", ListenerFunc(func(context.Context, Event) error {
		called = true
		return nil
	}), WithAsync())

	d.DispatchAsync(context.Background(), newTestEvent("e", ""))
	assert.True(t, called)
}

func TestDispatcher_Once(t *testing.T) {
	d := NewDispatcher()
	defer d.Shutdown()

	var n atomic.Int32
	d.Subscribe("e", ListenerFunc(func(context.Context, Event) error {
		n.Add(1)
		return nil
	}), WithOnce())

	_ = d.Dispatch(context.Background(), newTestEvent("e", ""))
	_ = d.Dispatch(context.Background(), newTestEvent("e", ""))
	assert.Equal(t, int32(1), n.Load())
	assert.Equal(t, 0, d.ListenerCount("e"))
}

func TestDispatcher_Interceptors(t *testing.T) {
	log := logger.NewTestLogger("event")
	d := NewDispatcher(WithLogger(log.CtxZapLogger))
	defer d.Shutdown()

	d.Use(LoggingInterceptor(log.CtxZapLogger))
	d.Use(RecoverInterceptor())
	d.Subscribe("e", ListenerFunc(func(context.Context, Event) error { panic("listener bug") }))

	err := d.Dispatch(context.Background(), newTestEvent("e", ""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listener bug")
	assert.True(t, log.Has(zap.ErrorLevel, "event handling failed"))
}

func TestDispatcher_ShutdownDropsLateTasks(t *testing.T) {
	log := logger.NewTestLogger("event")
	d := NewDispatcher(WithLogger(log.CtxZapLogger))
	d.Subscribe("e", ListenerFunc(func(context.Context, Event) error { return nil }), WithAsync())

	require.NoError(t, d.Shutdown())
	require.NoError(t, d.Shutdown())

	d.DispatchAsync(context.Background(), newTestEvent("e", ""))
	assert.True(t, log.Has(zap.WarnLevel, "event bus closed, async task dropped"))
}
