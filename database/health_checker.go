package database

import (
	"context"
	"fmt"
)

// HealthChecker pings the source of truth; failure marks the service unhealthy
type HealthChecker struct {
	manager *Manager
}

func NewHealthChecker(manager *Manager) *HealthChecker {
	return &HealthChecker{manager: manager}
}

func (h *HealthChecker) Name() string { return "database" }

func (h *HealthChecker) Critical() bool { return true }

func (h *HealthChecker) Check(ctx context.Context) error {
	if h.manager == nil {
		return fmt.Errorf("database manager not initialized")
	}
	if err := h.manager.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}
