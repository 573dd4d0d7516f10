package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store used when Redis is disabled and in tests.
// Expired entries are dropped lazily on read and by a janitor goroutine.
type MemoryStore struct {
	data       map[string]memoryItem
	mu         sync.RWMutex
	maxEntries int
	now        func() time.Time
	stop       chan struct{}
	stopOnce   sync.Once
}

type memoryItem struct {
	value     []byte
	expiresAt time.Time
}

func (i memoryItem) expired(now time.Time) bool {
	return !i.expiresAt.IsZero() && !now.Before(i.expiresAt)
}

// NewMemoryStore starts a janitor that sweeps every interval (0 disables it)
func NewMemoryStore(maxEntries int, interval time.Duration) *MemoryStore {
	if maxEntries <= 0 {
		maxEntries = 10000
	}
	s := &MemoryStore{
		data:       make(map[string]memoryItem),
		maxEntries: maxEntries,
		now:        time.Now,
		stop:       make(chan struct{}),
	}
	if interval > 0 {
		go s.janitor(interval)
	}
	return s
}

func (s *MemoryStore) Name() string { return "memory" }

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	item, ok := s.data[key]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrCacheMiss
	}
	if item.expired(s.now()) {
		s.mu.Lock()
		if cur, ok := s.data[key]; ok && cur.expired(s.now()) {
			delete(s.data, key)
		}
		s.mu.Unlock()
		return nil, ErrCacheMiss
	}
	return item.value, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[key]; !exists && len(s.data) >= s.maxEntries {
		s.evictLocked()
	}

	item := memoryItem{value: append([]byte(nil), value...)}
	if ttl > 0 {
		item.expiresAt = s.now().Add(ttl)
	}
	s.data[key] = item
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.data[key]
	delete(s.data, key)
	return ok && !item.expired(s.now()), nil
}

func (s *MemoryStore) DeleteMatching(_ context.Context, pattern string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var n int64
	for key, item := range s.data {
		if !globMatch(pattern, key) {
			continue
		}
		if !item.expired(now) {
			n++
		}
		delete(s.data, key)
	}
	return n, nil
}

func (s *MemoryStore) Exists(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.data[key]
	return ok && !item.expired(s.now()), nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

// Close stops the janitor and drops every entry
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	s.mu.Lock()
	s.data = make(map[string]memoryItem)
	s.mu.Unlock()
	return nil
}

// Len counts stored entries, expired ones included until swept
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// evictLocked drops expired entries first, otherwise the entry closest to expiry
func (s *MemoryStore) evictLocked() {
	now := s.now()
	var (
		victim    string
		victimExp time.Time
	)
	for key, item := range s.data {
		if item.expired(now) {
			delete(s.data, key)
			return
		}
		if victim == "" || (!item.expiresAt.IsZero() && (victimExp.IsZero() || item.expiresAt.Before(victimExp))) {
			victim, victimExp = key, item.expiresAt
		}
	}
	delete(s.data, victim)
}

func (s *MemoryStore) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stop:
			return
		}
	}
}

func (s *MemoryStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for key, item := range s.data {
		if item.expired(now) {
			delete(s.data, key)
		}
	}
}

// globMatch implements the subset of Redis MATCH syntax the policy emits: * and ?
func globMatch(pattern, s string) bool {
	px, sx := 0, 0
	starPx, starSx := -1, 0
	for sx < len(s) {
		switch {
		case px < len(pattern) && (pattern[px] == '?' || pattern[px] == s[sx]):
			px++
			sx++
		case px < len(pattern) && pattern[px] == '*':
			starPx, starSx = px, sx
			px++
		case starPx >= 0:
			px = starPx + 1
			starSx++
			sx = starSx
		default:
			return false
		}
	}
	for px < len(pattern) && pattern[px] == '*' {
		px++
	}
	return px == len(pattern)
}
