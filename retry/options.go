package retry

import (
	"errors"
	"time"
)

type config struct {
	maxAttempts int
	backoff     BackoffStrategy
	condition   func(error) bool
	onRetry     func(attempt int, err error)
	timeout     time.Duration // per attempt, 0 = none
}

func defaultConfig() *config {
	return &config{
		maxAttempts: 3,
		backoff:     ExponentialBackoff(time.Second),
		condition:   func(err error) bool { return err != nil },
	}
}

type Option func(*config)

func MaxAttempts(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

func Backoff(b BackoffStrategy) Option {
	return func(c *config) {
		if b != nil {
			c.backoff = b
		}
	}
}

// If retries only the errors fn accepts; anything else stops at once
func If(fn func(error) bool) Option {
	return func(c *config) {
		if fn != nil {
			c.condition = fn
		}
	}
}

// Unless stops retrying on any of the given errors
func Unless(targets ...error) Option {
	return If(func(err error) bool {
		for _, t := range targets {
			if errors.Is(err, t) {
				return false
			}
		}
		return true
	})
}

// OnRetry is called after a failed attempt, before the wait
func OnRetry(fn func(attempt int, err error)) Option {
	return func(c *config) {
		c.onRetry = fn
	}
}

// Timeout bounds each attempt
func Timeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.timeout = d
		}
	}
}
