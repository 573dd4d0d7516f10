// Package limiter throttles requests with per-key token buckets kept in
// Redis or in process memory.
package limiter

import (
	"context"
	"time"

	"github.com/KOMKZ/go-yogan-chat/logger"
	"go.uber.org/zap"
)

// Result of one Allow call
type Result struct {
	Allowed    bool
	Remaining  int64
	Limit      int64
	RetryAfter time.Duration
}

// Store takes n tokens from the bucket at key atomically
type Store interface {
	Name() string
	Take(ctx context.Context, key string, rule Rule, n int64, now time.Time) (*Result, error)
	Close() error
}

// Limiter applies the configured rules. A disabled limiter allows everything.
type Limiter struct {
	cfg   Config
	store Store
	log   *logger.CtxZapLogger
	now   func() time.Time
}

func New(cfg Config, store Store, log *logger.CtxZapLogger) *Limiter {
	cfg.ApplyDefaults()
	return &Limiter{cfg: cfg, store: store, log: log, now: time.Now}
}

func (l *Limiter) Enabled() bool {
	return l.cfg.Enabled
}

func (l *Limiter) StoreName() string {
	return l.store.Name()
}

// RuleFor returns the route override or the default rule
func (l *Limiter) RuleFor(route string) Rule {
	if r, ok := l.cfg.Routes[routeKey(route)]; ok {
		return r
	}
	return l.cfg.Default
}

// Allow takes one token for client on route.
// On a store error the request is allowed and the error returned for logging.
func (l *Limiter) Allow(ctx context.Context, route, client string) (*Result, error) {
	rule := l.RuleFor(route)
	if !l.cfg.Enabled {
		return &Result{Allowed: true, Remaining: rule.Capacity, Limit: rule.Capacity}, nil
	}

	key := l.cfg.KeyPrefix + routeKey(route) + ":" + client
	res, err := l.store.Take(ctx, key, rule, 1, l.now())
	if err != nil {
		return &Result{Allowed: true, Limit: rule.Capacity}, err
	}
	if !res.Allowed {
		l.log.DebugCtx(ctx, "rate limited",
			zap.String("route", route), zap.String("client", client), zap.Duration("retry_after", res.RetryAfter))
	}
	return res, nil
}

func (l *Limiter) Shutdown() error {
	return l.store.Close()
}

// refill is the memory store's bucket arithmetic; takeScript mirrors it
func refill(tokens float64, last, now time.Time, rule Rule) float64 {
	elapsed := now.Sub(last).Seconds()
	if elapsed > 0 {
		tokens += elapsed * rule.Rate
	}
	if tokens > float64(rule.Capacity) {
		tokens = float64(rule.Capacity)
	}
	return tokens
}

func retryAfter(missing float64, rule Rule) time.Duration {
	if rule.Rate <= 0 {
		return time.Hour
	}
	return time.Duration(missing / rule.Rate * float64(time.Second))
}

// idleTTL is how long a bucket lives untouched: long enough to refill completely
func idleTTL(rule Rule) time.Duration {
	if rule.Rate <= 0 {
		return time.Hour
	}
	ttl := time.Duration(float64(rule.Capacity)/rule.Rate*float64(time.Second)) + time.Second
	if ttl < time.Second {
		ttl = time.Second
	}
	return ttl
}
