package cache

import (
	"context"
	"errors"
	"time"

	"github.com/KOMKZ/go-yogan-chat/breaker"
)

// GuardedStore short-circuits reads and writes while the backend keeps failing,
// so an outage costs one fast miss per call instead of a dial timeout.
// Deletes always reach the backend; cache.purge_timeout bounds them instead.
type GuardedStore struct {
	Store
	breaker *breaker.Breaker
}

// NewGuardedStore wraps inner. A cache miss does not count as a failure.
func NewGuardedStore(inner Store, cfg breaker.Config, opts ...breaker.Option) *GuardedStore {
	opts = append([]breaker.Option{breaker.IsFailure(func(err error) bool {
		return err != nil && !errors.Is(err, ErrCacheMiss)
	})}, opts...)
	return &GuardedStore{Store: inner, breaker: breaker.New(inner.Name(), cfg, opts...)}
}

func (s *GuardedStore) Breaker() *breaker.Breaker {
	return s.breaker
}

func (s *GuardedStore) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := s.breaker.Execute(ctx, func(ctx context.Context) error {
		var err error
		data, err = s.Store.Get(ctx, key)
		return err
	})
	if errors.Is(err, breaker.ErrCircuitOpen) {
		return nil, ErrStoreUnavailable.Wrap(err)
	}
	return data, err
}

func (s *GuardedStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := s.breaker.Execute(ctx, func(ctx context.Context) error {
		return s.Store.Set(ctx, key, value, ttl)
	})
	if errors.Is(err, breaker.ErrCircuitOpen) {
		return ErrStoreUnavailable.Wrap(err)
	}
	return err
}

func (s *GuardedStore) Exists(ctx context.Context, key string) (bool, error) {
	var ok bool
	err := s.breaker.Execute(ctx, func(ctx context.Context) error {
		var err error
		ok, err = s.Store.Exists(ctx, key)
		return err
	})
	if errors.Is(err, breaker.ErrCircuitOpen) {
		return false, ErrStoreUnavailable.Wrap(err)
	}
	return ok, err
}
