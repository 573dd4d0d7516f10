package limiter

import (
	"context"
	"sync"
	"time"
)

type bucket struct {
	tokens  float64
	last    time.Time
	expires time.Time
}

// MemoryStore keeps buckets in process; idle buckets are dropped on access sweeps
type MemoryStore struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	sweepAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{buckets: make(map[string]*bucket)}
}

func (s *MemoryStore) Name() string { return "memory" }

func (s *MemoryStore) Take(_ context.Context, key string, rule Rule, n int64, now time.Time) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweep(now)

	b, ok := s.buckets[key]
	if !ok {
		b = &bucket{tokens: float64(rule.Capacity), last: now}
		s.buckets[key] = b
	}
	b.tokens = refill(b.tokens, b.last, now, rule)
	b.last = now
	b.expires = now.Add(idleTTL(rule))

	res := &Result{Limit: rule.Capacity}
	if b.tokens >= float64(n) {
		b.tokens -= float64(n)
		res.Allowed = true
	} else {
		res.RetryAfter = retryAfter(float64(n)-b.tokens, rule)
	}
	res.Remaining = int64(b.tokens)
	return res, nil
}

// sweep runs at most once a minute; callers hold mu
func (s *MemoryStore) sweep(now time.Time) {
	if now.Before(s.sweepAt) {
		return
	}
	for k, b := range s.buckets {
		if now.After(b.expires) {
			delete(s.buckets, k)
		}
	}
	s.sweepAt = now.Add(time.Minute)
}

func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buckets)
}

func (s *MemoryStore) Close() error { return nil }
