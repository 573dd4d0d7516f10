// Package cache is the read-through cache layer in front of the relational store.
// Every failure of the backing store degrades to a miss or a no-op; nothing here
// fails a request.
package cache

import (
	"context"
	"time"
)

// Store is a byte-oriented key/value backend with per-key TTL
type Store interface {
	// Name identifies the backend in logs and metrics
	Name() string

	// Get returns ErrCacheMiss when the key is absent or expired
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value with expiry; ttl <= 0 means no expiry
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete reports whether the key existed
	Delete(ctx context.Context, key string) (bool, error)

	// DeleteMatching removes every key matching a glob pattern (* and ?) and returns the count
	DeleteMatching(ctx context.Context, pattern string) (int64, error)

	Exists(ctx context.Context, key string) (bool, error)

	// Ping is the liveness probe
	Ping(ctx context.Context) error

	Close() error
}
