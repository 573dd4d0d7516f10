package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginAttemptStore counts failed logins per username inside a sliding lockout window
type LoginAttemptStore interface {
	Attempts(ctx context.Context, username string) (int, error)
	Increment(ctx context.Context, username string, window time.Duration) error
	Reset(ctx context.Context, username string) error
}

// RedisLoginAttemptStore shares counters across instances
type RedisLoginAttemptStore struct {
	client *redis.Client
	prefix string
}

func NewRedisLoginAttemptStore(client *redis.Client, prefix string) *RedisLoginAttemptStore {
	return &RedisLoginAttemptStore{client: client, prefix: prefix}
}

func (s *RedisLoginAttemptStore) Attempts(ctx context.Context, username string) (int, error) {
	n, err := s.client.Get(ctx, s.prefix+username).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

func (s *RedisLoginAttemptStore) Increment(ctx context.Context, username string, window time.Duration) error {
	key := s.prefix + username
	pipe := s.client.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisLoginAttemptStore) Reset(ctx context.Context, username string) error {
	return s.client.Del(ctx, s.prefix+username).Err()
}

// MemoryLoginAttemptStore is the single-instance fallback when Redis is disabled
type MemoryLoginAttemptStore struct {
	mu       sync.Mutex
	attempts map[string]attemptRecord
	now      func() time.Time
}

type attemptRecord struct {
	count     int
	expiresAt time.Time
}

func NewMemoryLoginAttemptStore() *MemoryLoginAttemptStore {
	return &MemoryLoginAttemptStore{attempts: make(map[string]attemptRecord), now: time.Now}
}

func (s *MemoryLoginAttemptStore) Attempts(_ context.Context, username string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.attempts[username]
	if !ok {
		return 0, nil
	}
	if s.now().After(rec.expiresAt) {
		delete(s.attempts, username)
		return 0, nil
	}
	return rec.count, nil
}

func (s *MemoryLoginAttemptStore) Increment(_ context.Context, username string, window time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	rec, ok := s.attempts[username]
	if !ok || now.After(rec.expiresAt) {
		rec = attemptRecord{}
	}
	rec.count++
	rec.expiresAt = now.Add(window)
	s.attempts[username] = rec
	return nil
}

func (s *MemoryLoginAttemptStore) Reset(_ context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.attempts, username)
	return nil
}
