package limiter

import (
	"context"
	"testing"
	"time"

	"github.com/KOMKZ/go-yogan-chat/logger"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eachStore(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Run("memory", func(t *testing.T) {
		fn(t, NewMemoryStore())
	})
	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = client.Close() })
		fn(t, NewRedisStore(client))
	})
}

func TestStore_TakeDrainsAndRefills(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		rule := Rule{Rate: 10, Capacity: 3}
		now := time.Unix(1700000000, 0)

		for i := int64(2); i >= 0; i-- {
			res, err := s.Take(ctx, "k", rule, 1, now)
			require.NoError(t, err)
			assert.True(t, res.Allowed)
			assert.Equal(t, i, res.Remaining)
			assert.Equal(t, int64(3), res.Limit)
		}

		res, err := s.Take(ctx, "k", rule, 1, now)
		require.NoError(t, err)
		assert.False(t, res.Allowed)
		assert.Equal(t, 100*time.Millisecond, res.RetryAfter)

		// 100ms at 10/s puts one token back
		res, err = s.Take(ctx, "k", rule, 1, now.Add(100*time.Millisecond))
		require.NoError(t, err)
		assert.True(t, res.Allowed)

		// never more than capacity
		res, err = s.Take(ctx, "k", rule, 1, now.Add(time.Hour))
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, int64(2), res.Remaining)
	})
}

func TestStore_KeysAreIndependent(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		rule := Rule{Rate: 1, Capacity: 1}
		now := time.Now()

		res, _ := s.Take(ctx, "a", rule, 1, now)
		assert.True(t, res.Allowed)
		res, _ = s.Take(ctx, "a", rule, 1, now)
		assert.False(t, res.Allowed)
		res, _ = s.Take(ctx, "b", rule, 1, now)
		assert.True(t, res.Allowed)
	})
}

func TestRedisStore_BucketExpires(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	s := NewRedisStore(client)

	_, err := s.Take(context.Background(), "chat:ratelimit:k", Rule{Rate: 1, Capacity: 2}, 1, time.Now())
	require.NoError(t, err)
	assert.True(t, mr.Exists("chat:ratelimit:k"))
	mr.FastForward(4 * time.Second)
	assert.False(t, mr.Exists("chat:ratelimit:k"))
}

func TestMemoryStore_SweepsIdleBuckets(t *testing.T) {
	s := NewMemoryStore()
	now := time.Now()
	_, _ = s.Take(context.Background(), "a", Rule{Rate: 1, Capacity: 1}, 1, now)
	require.Equal(t, 1, s.Len())

	_, _ = s.Take(context.Background(), "b", Rule{Rate: 1, Capacity: 1}, 1, now.Add(2*time.Minute))
	assert.Equal(t, 1, s.Len())
}

func TestLimiter_RoutesOverrideDefault(t *testing.T) {
	cfg := Config{
		Enabled: true,
		Store:   "memory",
		Default: Rule{Rate: 100, Capacity: 100},
		Routes:  map[string]Rule{"post /login": {Rate: 1, Capacity: 2}},
	}
	l := New(cfg, NewMemoryStore(), logger.NewTestLogger("limiter").CtxZapLogger)
	ctx := context.Background()

	assert.Equal(t, Rule{Rate: 1, Capacity: 2}, l.RuleFor("POST /login"))
	assert.Equal(t, Rule{Rate: 100, Capacity: 100}, l.RuleFor("GET /api/users/me"))

	for i := 0; i < 2; i++ {
		res, err := l.Allow(ctx, "POST /login", "ip:10.0.0.1")
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	}
	res, err := l.Allow(ctx, "POST /login", "ip:10.0.0.1")
	require.NoError(t, err)
	assert.False(t, res.Allowed)

	res, err = l.Allow(ctx, "POST /login", "ip:10.0.0.2")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestLimiter_DisabledAllowsAll(t *testing.T) {
	l := New(Config{Default: Rule{Rate: 1, Capacity: 1}}, NewMemoryStore(), logger.NewTestLogger("limiter").CtxZapLogger)
	for i := 0; i < 5; i++ {
		res, err := l.Allow(context.Background(), "GET /x", "ip:1")
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	}
}

func TestLimiter_StoreErrorFailsOpen(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	l := New(Config{Enabled: true, Store: "redis"}, NewRedisStore(client), logger.NewTestLogger("limiter").CtxZapLogger)
	res, err := l.Allow(context.Background(), "GET /x", "ip:1")
	assert.Error(t, err)
	assert.True(t, res.Allowed)
}

func TestConfig(t *testing.T) {
	cfg := Config{Routes: map[string]Rule{" POST /login ": {Capacity: 5}}}
	cfg.ApplyDefaults()

	assert.Equal(t, "redis", cfg.Store)
	assert.Equal(t, "chat:ratelimit:", cfg.KeyPrefix)
	assert.Equal(t, Rule{Rate: 20, Capacity: 5}, cfg.Routes["post /login"])
	assert.NoError(t, cfg.Validate())

	cfg.Store = "etcd"
	assert.Error(t, cfg.Validate())
}
