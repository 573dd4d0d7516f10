// Package health aggregates dependency checks for the /health endpoint
package health

import (
	"context"
	"time"
)

// Status of a check or of the whole service
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// Checker is implemented by database.HealthChecker and redis.HealthChecker.
// A failing non-critical checker degrades the service instead of failing it.
type Checker interface {
	Name() string
	Check(ctx context.Context) error
	Critical() bool
}

// CheckResult of a single checker
type CheckResult struct {
	Name      string        `json:"name"`
	Status    Status        `json:"status"`
	Critical  bool          `json:"critical"`
	Message   string        `json:"message,omitempty"`
	Error     string        `json:"error,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	Duration  time.Duration `json:"duration,omitempty"`
}

// Response is the aggregated report
type Response struct {
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Duration  time.Duration          `json:"duration"`
	Checks    map[string]CheckResult `json:"checks"`
	Metadata  map[string]any         `json:"metadata,omitempty"`
}

func (r *Response) IsHealthy() bool {
	return r.Status == StatusHealthy
}

func (r *Response) IsDegraded() bool {
	return r.Status == StatusDegraded
}

type overridden struct {
	Checker
	critical bool
}

func (o overridden) Critical() bool { return o.critical }

// WithCritical overrides a checker's criticality
func WithCritical(c Checker, critical bool) Checker {
	return overridden{Checker: c, critical: critical}
}
