package middleware

import (
	"net/http"

	"github.com/KOMKZ/go-yogan-chat/health"
	"github.com/gin-gonic/gin"
)

// HealthHandler answers 503 only when a critical dependency is down
func HealthHandler(agg *health.Aggregator) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := agg.Check(c.Request.Context())
		status := http.StatusOK
		if resp.Status == health.StatusUnhealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, resp)
	}
}

// RegisterHealthRoutes adds /health, /health/liveness and /health/readiness
func RegisterHealthRoutes(router gin.IRouter, agg *health.Aggregator) {
	router.GET("/health", HealthHandler(agg))
	router.GET("/health/liveness", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "alive"})
	})
	router.GET("/health/readiness", func(c *gin.Context) {
		resp := agg.Check(c.Request.Context())
		status := http.StatusOK
		if resp.Status == health.StatusUnhealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": resp.Status})
	})
}
