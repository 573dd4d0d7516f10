package cache

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/KOMKZ/go-yogan-chat/breaker"
	"github.com/KOMKZ/go-yogan-chat/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Service is the value-level cache API used by the domain services.
// It never returns a store error: failures become a miss, false or 0 and a warn line.
// A nil *Service behaves as a disabled cache.
type Service struct {
	store    Store
	cfg      Config
	log      *logger.CtxZapLogger
	recorder Recorder
	group    singleflight.Group
	stats    stats
}

type Option func(*Service)

// WithRecorder reports every operation to r
func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

// NewService wraps store; a nil store or cfg.Enabled=false yields a pass-through cache
func NewService(store Store, cfg Config, log *logger.CtxZapLogger, opts ...Option) *Service {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.Nop()
	}
	s := &Service{store: store, cfg: cfg, log: log, recorder: nopRecorder{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) enabled() bool {
	return s != nil && s.cfg.Enabled && s.store != nil
}

// Config returns the effective configuration, TTLs included
func (s *Service) Config() Config {
	if s == nil {
		c := DefaultConfig()
		c.Enabled = false
		return c
	}
	return s.cfg
}

// Get decodes the entry at key into dst and reports whether it was a hit
func (s *Service) Get(ctx context.Context, key string, dst any) bool {
	data, ok := s.GetRaw(ctx, key)
	if !ok {
		return false
	}
	format, err := decode(data, dst)
	if err != nil {
		s.stats.misses.Add(1)
		s.log.WarnCtx(ctx, "cache value undecodable, treated as miss", zap.String("key", key), zap.Error(err))
		return false
	}
	s.log.DebugCtx(ctx, "cache hit", zap.String("key", key), zap.String("format", format))
	return true
}

// GetRaw returns the stored bytes. A stored JSON null counts as absent.
func (s *Service) GetRaw(ctx context.Context, key string) ([]byte, bool) {
	if !s.enabled() {
		return nil, false
	}
	start := time.Now()
	data, err := s.store.Get(ctx, key)
	switch {
	case errors.Is(err, ErrCacheMiss):
		s.miss(ctx, key, start)
		return nil, false
	case err != nil:
		s.fail(ctx, "get", key, start, err)
		return nil, false
	case bytes.Equal(data, jsonNull):
		s.miss(ctx, key, start)
		return nil, false
	}
	s.stats.hits.Add(1)
	s.recorder.ObserveCacheRequest("get", OutcomeHit, time.Since(start))
	return data, true
}

var jsonNull = []byte("null")

// Set writes v as JSON; ttl <= 0 uses the default TTL
func (s *Service) Set(ctx context.Context, key string, v any, ttl time.Duration) bool {
	return s.SetWith(ctx, key, v, ttl, EncodingJSON)
}

// SetWith writes v in the given encoding
func (s *Service) SetWith(ctx context.Context, key string, v any, ttl time.Duration, enc Encoding) bool {
	if !s.enabled() {
		return false
	}
	if ttl <= 0 {
		ttl = s.cfg.DefaultTTL
	}
	start := time.Now()
	data, err := serializerFor(enc).Serialize(v)
	if err != nil {
		s.fail(ctx, "set", key, start, ErrSerialize.Wrap(err))
		return false
	}
	if err := s.store.Set(ctx, key, data, ttl); err != nil {
		s.fail(ctx, "set", key, start, err)
		return false
	}
	s.recorder.ObserveCacheRequest("set", OutcomeOK, time.Since(start))
	s.log.DebugCtx(ctx, "cache set", zap.String("key", key), zap.Duration("ttl", ttl))
	return true
}

// Delete reports whether an entry was removed
func (s *Service) Delete(ctx context.Context, key string) bool {
	if !s.enabled() {
		return false
	}
	start := time.Now()
	ok, err := s.store.Delete(ctx, key)
	if err != nil {
		s.fail(ctx, "delete", key, start, err)
		return false
	}
	if ok {
		s.stats.invalidated.Add(1)
	}
	s.recorder.ObserveCacheRequest("delete", OutcomeOK, time.Since(start))
	return ok
}

// DeleteMatching removes every key matching pattern and returns the count
func (s *Service) DeleteMatching(ctx context.Context, pattern string) int64 {
	if !s.enabled() {
		return 0
	}
	start := time.Now()
	n, err := s.store.DeleteMatching(ctx, pattern)
	if err != nil {
		s.fail(ctx, "delete_pattern", pattern, start, err)
		return 0
	}
	s.stats.invalidated.Add(n)
	s.recorder.ObserveCacheRequest("delete_pattern", OutcomeOK, time.Since(start))
	return n
}

func (s *Service) Exists(ctx context.Context, key string) bool {
	if !s.enabled() {
		return false
	}
	start := time.Now()
	ok, err := s.store.Exists(ctx, key)
	if err != nil {
		s.fail(ctx, "exists", key, start, err)
		return false
	}
	return ok
}

// IsAvailable pings the store
func (s *Service) IsAvailable(ctx context.Context) bool {
	if !s.enabled() {
		return false
	}
	return s.store.Ping(ctx) == nil
}

// StoreName is "none" when caching is off
func (s *Service) StoreName() string {
	if !s.enabled() {
		return "none"
	}
	return s.store.Name()
}

func (s *Service) Stats() Stats {
	if s == nil {
		return Stats{}
	}
	return s.stats.snapshot()
}

func (s *Service) recorderOrNop() Recorder {
	if s == nil {
		return nopRecorder{}
	}
	return s.recorder
}

// Shutdown closes the store (samber/do Shutdowner)
func (s *Service) Shutdown() error {
	if s == nil || s.store == nil {
		return nil
	}
	return s.store.Close()
}

func (s *Service) miss(ctx context.Context, key string, start time.Time) {
	s.stats.misses.Add(1)
	s.recorder.ObserveCacheRequest("get", OutcomeMiss, time.Since(start))
	s.log.DebugCtx(ctx, "cache miss", zap.String("key", key))
}

func (s *Service) fail(ctx context.Context, op, key string, start time.Time, err error) {
	s.stats.errors.Add(1)
	s.recorder.ObserveCacheRequest(op, OutcomeError, time.Since(start))
	// an open circuit was already reported when it opened
	if errors.Is(err, breaker.ErrCircuitOpen) {
		s.log.DebugCtx(ctx, "cache "+op+" skipped", zap.String("key", key), zap.Error(err))
		return
	}
	s.log.WarnCtx(ctx, "cache "+op+" failed",
		zap.String("key", key), zap.String("store", s.store.Name()), zap.Error(err))
}
