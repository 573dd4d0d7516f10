package retry

import (
	"math"
	"math/rand/v2"
	"time"
)

// BackoffStrategy returns the wait after the given failed attempt (1-based)
type BackoffStrategy interface {
	Next(attempt int) time.Duration
}

type BackoffOption func(*backoffConfig)

type backoffConfig struct {
	multiplier float64
	maxDelay   time.Duration
	jitter     float64 // ratio, 0.2 = ±20%
}

func WithMultiplier(m float64) BackoffOption {
	return func(c *backoffConfig) {
		if m > 0 {
			c.multiplier = m
		}
	}
}

func WithMaxDelay(d time.Duration) BackoffOption {
	return func(c *backoffConfig) {
		if d > 0 {
			c.maxDelay = d
		}
	}
}

func WithJitter(ratio float64) BackoffOption {
	return func(c *backoffConfig) {
		if ratio >= 0 && ratio <= 1 {
			c.jitter = ratio
		}
	}
}

type exponentialBackoff struct {
	base time.Duration
	cfg  backoffConfig
}

// ExponentialBackoff waits base, base*m, base*m², ... capped at the max delay (30s by default)
func ExponentialBackoff(base time.Duration, opts ...BackoffOption) BackoffStrategy {
	cfg := backoffConfig{multiplier: 2, maxDelay: 30 * time.Second, jitter: 0.2}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &exponentialBackoff{base: base, cfg: cfg}
}

func (b *exponentialBackoff) Next(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	delay := float64(b.base) * math.Pow(b.cfg.multiplier, float64(attempt-1))
	if delay > float64(b.cfg.maxDelay) {
		delay = float64(b.cfg.maxDelay)
	}
	if b.cfg.jitter > 0 {
		delay += delay * b.cfg.jitter * (rand.Float64()*2 - 1)
	}
	return time.Duration(delay)
}

type constantBackoff time.Duration

// ConstantBackoff always waits d
func ConstantBackoff(d time.Duration) BackoffStrategy {
	return constantBackoff(d)
}

func (b constantBackoff) Next(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	return time.Duration(b)
}
