package redis

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/KOMKZ/go-yogan-chat/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Manager owns the Redis client.
// A failed connection never fails construction: the manager just reports itself unavailable
// and callers keep working without the cache.
type Manager struct {
	cfg       Config
	client    *redis.Client
	log       *logger.CtxZapLogger
	available atomic.Bool
}

// NewManager builds the client without dialing; call Connect to probe it
func NewManager(cfg Config, log *logger.CtxZapLogger) (*Manager, error) {
	if log == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &Manager{cfg: cfg, log: log}
	if cfg.Enabled {
		m.client = redis.NewClient(&redis.Options{
			Addr:         cfg.Addr,
			Password:     cfg.Password,
			DB:           cfg.DB,
			PoolSize:     cfg.PoolSize,
			MinIdleConns: cfg.MinIdleConns,
			MaxRetries:   cfg.MaxRetries,
			DialTimeout:  cfg.DialTimeout,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		})
	}
	return m, nil
}

// NewManagerWithClient wraps an existing client (tests, miniredis)
func NewManagerWithClient(client *redis.Client, log *logger.CtxZapLogger) *Manager {
	m := &Manager{cfg: Config{Enabled: true, Addr: client.Options().Addr}, client: client, log: log}
	m.available.Store(true)
	return m
}

// Connect pings the server and records availability. It never returns an error.
func (m *Manager) Connect(ctx context.Context) bool {
	if m.client == nil {
		m.log.InfoCtx(ctx, "redis disabled, cache runs without backing store")
		return false
	}
	if err := m.client.Ping(ctx).Err(); err != nil {
		m.available.Store(false)
		m.log.WarnCtx(ctx, "redis connection failed, cache disabled until it recovers",
			zap.String("addr", m.cfg.Addr), zap.Error(err))
		return false
	}
	m.available.Store(true)
	m.log.InfoCtx(ctx, "redis connected", zap.String("addr", m.cfg.Addr), zap.Int("db", m.cfg.DB))
	return true
}

// Client returns nil when Redis is disabled
func (m *Manager) Client() *redis.Client {
	return m.client
}

// Enabled reports whether a client was configured
func (m *Manager) Enabled() bool {
	return m.client != nil
}

// Available is the result of the latest Connect or Ping
func (m *Manager) Available() bool {
	return m.available.Load()
}

// Ping refreshes availability
func (m *Manager) Ping(ctx context.Context) error {
	if m.client == nil {
		return fmt.Errorf("redis disabled")
	}
	err := m.client.Ping(ctx).Err()
	m.available.Store(err == nil)
	return err
}

// AddHook instruments the client, no-op when disabled
func (m *Manager) AddHook(h redis.Hook) {
	if m.client != nil {
		m.client.AddHook(h)
	}
}

// Shutdown closes the pool (samber/do Shutdowner)
func (m *Manager) Shutdown() error {
	if m.client == nil {
		return nil
	}
	m.available.Store(false)
	if err := m.client.Close(); err != nil {
		m.log.Error("failed to close redis connection", zap.Error(err))
		return err
	}
	m.log.Debug("redis connection closed")
	return nil
}
