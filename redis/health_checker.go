package redis

import (
	"context"
	"fmt"
)

// HealthChecker reports Redis reachability.
// Redis is optional, so the checker is marked non-critical.
type HealthChecker struct {
	manager *Manager
}

func NewHealthChecker(manager *Manager) *HealthChecker {
	return &HealthChecker{manager: manager}
}

func (h *HealthChecker) Name() string { return "redis" }

// Critical is false: a Redis outage degrades the service instead of failing it
func (h *HealthChecker) Critical() bool { return false }

func (h *HealthChecker) Check(ctx context.Context) error {
	if h.manager == nil {
		return fmt.Errorf("redis manager not initialized")
	}
	if !h.manager.Enabled() {
		return nil
	}
	if err := h.manager.Ping(ctx); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}
