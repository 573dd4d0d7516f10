package cache

import (
	"sync/atomic"
	"time"
)

// Request outcomes reported to a Recorder
const (
	OutcomeHit   = "hit"
	OutcomeMiss  = "miss"
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Recorder receives cache measurements; telemetry implements it with Prometheus
type Recorder interface {
	ObserveCacheRequest(operation, outcome string, elapsed time.Duration)
	ObserveInvalidation(kind string, deleted int64)
}

type nopRecorder struct{}

func (nopRecorder) ObserveCacheRequest(string, string, time.Duration) {}
func (nopRecorder) ObserveInvalidation(string, int64)                 {}

// Stats are process-local counters, exposed on the health endpoint
type Stats struct {
	Hits        int64 `json:"hits"`
	Misses      int64 `json:"misses"`
	Errors      int64 `json:"errors"`
	Invalidated int64 `json:"invalidated"`
}

type stats struct {
	hits        atomic.Int64
	misses      atomic.Int64
	errors      atomic.Int64
	invalidated atomic.Int64
}

func (s *stats) snapshot() Stats {
	return Stats{
		Hits:        s.hits.Load(),
		Misses:      s.misses.Load(),
		Errors:      s.errors.Load(),
		Invalidated: s.invalidated.Load(),
	}
}
