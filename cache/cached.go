package cache

import (
	"context"
	"reflect"
	"time"
)

// Producer computes a value on a miss
type Producer[T any] func(ctx context.Context) (T, error)

// GetOrCompute returns the cached value at key, or runs produce and caches its result.
// A producer error is returned unchanged and nothing is cached. Nil results are
// returned but not cached, so a later create becomes visible at once.
func GetOrCompute[T any](ctx context.Context, s *Service, key string, ttl time.Duration, produce Producer[T]) (T, error) {
	var cached T
	if s.Get(ctx, key, &cached) {
		return cached, nil
	}

	if s.enabled() && s.cfg.Singleflight {
		v, err, _ := s.group.Do(key, func() (any, error) {
			return compute(ctx, s, key, ttl, produce)
		})
		if err != nil {
			var zero T
			return zero, err
		}
		// a nil interface result has no dynamic type to assert
		out, _ := v.(T)
		return out, nil
	}
	return compute(ctx, s, key, ttl, produce)
}

func compute[T any](ctx context.Context, s *Service, key string, ttl time.Duration, produce Producer[T]) (T, error) {
	v, err := produce(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	if !isNil(v) {
		s.Set(ctx, key, v, ttl)
	}
	return v, nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// Cached wraps a zero-argument producer; every call is cached under prefix
func Cached[T any](s *Service, prefix string, ttl time.Duration, fn Producer[T]) Producer[T] {
	return func(ctx context.Context) (T, error) {
		return GetOrCompute(ctx, s, BuildKey(prefix), ttl, fn)
	}
}

// Cached1 wraps a one-argument function; the key is BuildKey(prefix, a)
func Cached1[A, T any](s *Service, prefix string, ttl time.Duration, fn func(context.Context, A) (T, error)) func(context.Context, A) (T, error) {
	return func(ctx context.Context, a A) (T, error) {
		return GetOrCompute(ctx, s, BuildKey(prefix, a), ttl, func(ctx context.Context) (T, error) {
			return fn(ctx, a)
		})
	}
}

// Cached2 wraps a two-argument function; the key is BuildKey(prefix, a, b)
func Cached2[A, B, T any](s *Service, prefix string, ttl time.Duration, fn func(context.Context, A, B) (T, error)) func(context.Context, A, B) (T, error) {
	return func(ctx context.Context, a A, b B) (T, error) {
		return GetOrCompute(ctx, s, BuildKey(prefix, a, b), ttl, func(ctx context.Context) (T, error) {
			return fn(ctx, a, b)
		})
	}
}
