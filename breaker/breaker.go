// Package breaker guards a flaky dependency with a consecutive-failure circuit.
//
// Closed: calls pass through and failures are counted.
// Open: calls are rejected with ErrCircuitOpen until the open timeout elapses.
// HalfOpen: a few probe calls decide between Closed and Open.
package breaker

import (
	"context"
	"errors"

	"github.com/sony/gobreaker/v2"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

// State of a breaker
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "Closed"
	case StateOpen:
		return "Open"
	case StateHalfOpen:
		return "HalfOpen"
	default:
		return "Unknown"
	}
}

func fromGobreaker(s gobreaker.State) State {
	switch s {
	case gobreaker.StateOpen:
		return StateOpen
	case gobreaker.StateHalfOpen:
		return StateHalfOpen
	default:
		return StateClosed
	}
}

// StateChangeFunc is called synchronously on every transition
type StateChangeFunc func(resource string, from, to State)

type Option func(*Breaker)

// OnStateChange registers a transition listener
func OnStateChange(fn StateChangeFunc) Option {
	return func(b *Breaker) {
		b.listeners = append(b.listeners, fn)
	}
}

// IsFailure decides which errors count against the circuit; defaults to any non-nil error
func IsFailure(fn func(error) bool) Option {
	return func(b *Breaker) {
		if fn != nil {
			b.isFailure = fn
		}
	}
}

// Breaker guards one resource. A disabled breaker passes every call through.
type Breaker struct {
	resource  string
	cfg       Config
	cb        *gobreaker.CircuitBreaker[struct{}]
	isFailure func(error) bool
	listeners []StateChangeFunc
}

func New(resource string, cfg Config, opts ...Option) *Breaker {
	cfg.ApplyDefaults()
	b := &Breaker{
		resource:  resource,
		cfg:       cfg,
		isFailure: func(err error) bool { return err != nil },
	}
	for _, opt := range opts {
		opt(b)
	}

	b.cb = gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        resource,
		MaxRequests: uint32(cfg.HalfOpenRequests),
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(cfg.ConsecutiveFailures)
		},
		// the caller giving up says nothing about the dependency
		IsSuccessful: func(err error) bool {
			return errors.Is(err, context.Canceled) || !b.isFailure(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			for _, fn := range b.listeners {
				fn(name, fromGobreaker(from), fromGobreaker(to))
			}
		},
	})
	return b
}

func (b *Breaker) Resource() string {
	return b.resource
}

func (b *Breaker) Enabled() bool {
	return b.cfg.Enabled
}

// Execute runs fn unless the circuit is open
func (b *Breaker) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	if !b.cfg.Enabled {
		return fn(ctx)
	}
	_, err := b.cb.Execute(func() (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrCircuitOpen
	}
	return err
}

func (b *Breaker) State() State {
	return fromGobreaker(b.cb.State())
}

// ConsecutiveFailures in the current generation
func (b *Breaker) ConsecutiveFailures() uint32 {
	return b.cb.Counts().ConsecutiveFailures
}
