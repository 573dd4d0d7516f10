// Package testutil builds in-process fixtures: sqlite in memory, miniredis and the gin request helpers
package testutil

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/KOMKZ/go-yogan-chat/cache"
	"github.com/KOMKZ/go-yogan-chat/database"
	"github.com/KOMKZ/go-yogan-chat/event"
	"github.com/KOMKZ/go-yogan-chat/logger"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

var dbSeq atomic.Int64

// NewDB opens a private shared-cache sqlite database and migrates models
func NewDB(t *testing.T, models ...any) *database.Manager {
	t.Helper()
	dsn := fmt.Sprintf("file:chat_test_%d?mode=memory&cache=shared", dbSeq.Add(1))
	m, err := database.NewManager(database.Config{Driver: "sqlite", DSN: dsn, MaxOpenConns: 1}, nil, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Shutdown() })
	require.NoError(t, m.Migrate(context.Background(), models...))
	return m
}

// NewRedis starts miniredis and a client pointed at it
func NewRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

// CacheFixture is a cache service on miniredis with its test logger
type CacheFixture struct {
	Service *cache.Service
	Redis   *miniredis.Miniredis
	Log     *logger.TestLogger
}

// Keys lists raw keys present in the backing store, prefix stripped
func (f *CacheFixture) Keys() []string {
	prefix := f.Service.Config().KeyPrefix
	keys := f.Redis.Keys()
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k[len(prefix):])
	}
	return out
}

func NewCache(t *testing.T, opts ...cache.Option) *CacheFixture {
	t.Helper()
	mr, client := NewRedis(t)
	cfg := cache.DefaultConfig()
	cfg.ApplyDefaults()
	log := logger.NewTestLogger("cache")
	svc := cache.NewService(cache.NewRedisStore(client, cfg.KeyPrefix), cfg, log.CtxZapLogger, opts...)
	return &CacheFixture{Service: svc, Redis: mr, Log: log}
}

// NewBus returns a dispatcher with the invalidation policy subscribed to events
func NewBus(t *testing.T, svc *cache.Service, eventNames ...string) *event.Bus {
	t.Helper()
	bus := event.NewDispatcher(event.WithSetAllSync(true))
	t.Cleanup(func() { _ = bus.Shutdown() })
	cache.NewPolicy(svc, nil).Subscribe(bus, eventNames...)
	return bus
}
