package breaker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDown = errors.New("connection refused")

type transition struct {
	from, to State
}

type recorder struct {
	mu   sync.Mutex
	seen []transition
}

func (r *recorder) record(resource string, from, to State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, transition{from, to})
}

func (r *recorder) transitions() []transition {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]transition(nil), r.seen...)
}

func fail(context.Context) error    { return errDown }
func succeed(context.Context) error { return nil }

const openFor = 30 * time.Millisecond

func enabled() Config {
	return Config{Enabled: true, ConsecutiveFailures: 3, Timeout: openFor, HalfOpenRequests: 2}
}

func TestDisabledPassesThrough(t *testing.T) {
	b := New("redis", Config{ConsecutiveFailures: 1})
	for i := 0; i < 5; i++ {
		assert.ErrorIs(t, b.Execute(context.Background(), fail), errDown)
	}
	assert.Equal(t, StateClosed, b.State())
	assert.False(t, b.Enabled())
}

func TestOpensAfterConsecutiveFailures(t *testing.T) {
	rec := &recorder{}
	b := New("redis", enabled(), OnStateChange(rec.record))
	ctx := context.Background()

	_ = b.Execute(ctx, fail)
	_ = b.Execute(ctx, fail)
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, uint32(2), b.ConsecutiveFailures())
	_ = b.Execute(ctx, fail)
	assert.Equal(t, StateOpen, b.State())

	called := false
	err := b.Execute(ctx, func(context.Context) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
	assert.Equal(t, []transition{{StateClosed, StateOpen}}, rec.transitions())
}

func TestSuccessResetsFailureCount(t *testing.T) {
	b := New("redis", enabled())
	ctx := context.Background()

	_ = b.Execute(ctx, fail)
	_ = b.Execute(ctx, fail)
	require.NoError(t, b.Execute(ctx, succeed))
	_ = b.Execute(ctx, fail)
	_ = b.Execute(ctx, fail)
	assert.Equal(t, StateClosed, b.State())
}

func TestHalfOpenClosesAfterProbes(t *testing.T) {
	rec := &recorder{}
	b := New("redis", enabled(), OnStateChange(rec.record))
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_ = b.Execute(ctx, fail)
	}

	time.Sleep(openFor + 10*time.Millisecond)
	require.NoError(t, b.Execute(ctx, succeed))
	assert.Equal(t, StateHalfOpen, b.State())
	require.NoError(t, b.Execute(ctx, succeed))
	assert.Equal(t, StateClosed, b.State())

	assert.Equal(t, []transition{
		{StateClosed, StateOpen},
		{StateOpen, StateHalfOpen},
		{StateHalfOpen, StateClosed},
	}, rec.transitions())
}

func TestHalfOpenFailureReopens(t *testing.T) {
	b := New("redis", enabled())
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_ = b.Execute(ctx, fail)
	}

	time.Sleep(openFor + 10*time.Millisecond)
	assert.ErrorIs(t, b.Execute(ctx, fail), errDown)
	assert.Equal(t, StateOpen, b.State())
	assert.ErrorIs(t, b.Execute(ctx, succeed), ErrCircuitOpen)
}

func TestHalfOpenLimitsConcurrentProbes(t *testing.T) {
	cfg := enabled()
	cfg.HalfOpenRequests = 1
	b := New("redis", cfg)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_ = b.Execute(ctx, fail)
	}
	time.Sleep(openFor + 10*time.Millisecond)

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- b.Execute(ctx, func(context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()

	<-started
	assert.ErrorIs(t, b.Execute(ctx, succeed), ErrCircuitOpen)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, StateClosed, b.State())
}

func TestCancellationIsNotAFailure(t *testing.T) {
	cfg := enabled()
	cfg.ConsecutiveFailures = 1
	b := New("redis", cfg)

	err := b.Execute(context.Background(), func(context.Context) error { return context.Canceled })
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateClosed, b.State())
}

func TestIsFailureFilter(t *testing.T) {
	notFound := errors.New("not found")
	b := New("redis", Config{Enabled: true, ConsecutiveFailures: 1},
		IsFailure(func(err error) bool { return err != nil && !errors.Is(err, notFound) }))

	assert.ErrorIs(t, b.Execute(context.Background(), func(context.Context) error { return notFound }), notFound)
	assert.Equal(t, StateClosed, b.State())
	_ = b.Execute(context.Background(), fail)
	assert.Equal(t, StateOpen, b.State())
}

func TestConfig(t *testing.T) {
	var c Config
	c.ApplyDefaults()
	assert.Equal(t, 5, c.ConsecutiveFailures)
	assert.Equal(t, 30*time.Second, c.Timeout)
	assert.Equal(t, 1, c.HalfOpenRequests)
	assert.NoError(t, c.Validate())

	assert.Error(t, Config{Timeout: -time.Second}.Validate())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "Closed", StateClosed.String())
	assert.Equal(t, "Open", StateOpen.String())
	assert.Equal(t, "HalfOpen", StateHalfOpen.String())
	assert.Equal(t, "Unknown", State(9).String())
}
