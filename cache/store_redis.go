package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const scanBatch = 100

// RedisStore stores entries with SET EX and purges patterns with SCAN + DEL
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisStore does not own client; Close leaves it open
func NewRedisStore(client *redis.Client, keyPrefix string) *RedisStore {
	return &RedisStore{client: client, keyPrefix: keyPrefix}
}

func (s *RedisStore) Name() string { return "redis" }

func (s *RedisStore) full(key string) string {
	return s.keyPrefix + key
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.full(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, ErrStoreGet.Wrap(err)
	}
	return data, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := s.client.Set(ctx, s.full(key), value, ttl).Err(); err != nil {
		return ErrStoreSet.Wrap(err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Del(ctx, s.full(key)).Result()
	if err != nil {
		return false, ErrStoreDelete.Wrap(err)
	}
	return n > 0, nil
}

// DeleteMatching walks the keyspace with SCAN so the server is never blocked the way KEYS would.
// Keys are collected first: deleting mid-scan can move the cursor past keys not yet returned.
func (s *RedisStore) DeleteMatching(ctx context.Context, pattern string) (int64, error) {
	var (
		cursor uint64
		keys   []string
	)
	for {
		batch, next, err := s.client.Scan(ctx, cursor, s.full(pattern), scanBatch).Result()
		if err != nil {
			return 0, ErrStoreDelete.Wrap(err)
		}
		keys = append(keys, batch...)
		if next == 0 {
			break
		}
		cursor = next
	}

	var deleted int64
	for start := 0; start < len(keys); start += scanBatch {
		end := min(start+scanBatch, len(keys))
		n, err := s.client.Del(ctx, keys[start:end]...).Result()
		if err != nil {
			return deleted, ErrStoreDelete.Wrap(err)
		}
		deleted += n
	}
	return deleted, nil
}

func (s *RedisStore) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, s.full(key)).Result()
	if err != nil {
		return false, ErrStoreGet.Wrap(err)
	}
	return n > 0, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return ErrStoreUnavailable.Wrap(err)
	}
	return nil
}

// Close is a no-op: the client belongs to the redis manager
func (s *RedisStore) Close() error {
	return nil
}
