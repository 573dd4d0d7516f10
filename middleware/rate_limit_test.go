package middleware

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/KOMKZ/go-yogan-chat/limiter"
	"github.com/KOMKZ/go-yogan-chat/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type brokenLimiter struct{}

func (brokenLimiter) Enabled() bool { return true }
func (brokenLimiter) Allow(context.Context, string, string) (*limiter.Result, error) {
	return nil, errors.New("redis down")
}

func rateLimitedEngine(l RateAllower, log *logger.TestLogger, skip ...string) *gin.Engine {
	engine := gin.New()
	engine.Use(RateLimit(l, RateLimitConfig{SkipPaths: skip}, log.CtxZapLogger))
	engine.POST("/api/auth/login", func(c *gin.Context) { c.Status(http.StatusOK) })
	engine.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	return engine
}

func TestRateLimit_RejectsOverCapacity(t *testing.T) {
	log := logger.NewTestLogger("http")
	l := limiter.New(limiter.Config{
		Enabled: true,
		Store:   "memory",
		Default: limiter.Rule{Rate: 0.001, Capacity: 2},
	}, limiter.NewMemoryStore(), log.CtxZapLogger)
	engine := rateLimitedEngine(l, log, "/health")

	for i := 0; i < 2; i++ {
		w := serve(engine, http.MethodPost, "/api/auth/login")
		assert.Equal(t, http.StatusOK, w.Code)
	}
	w := serve(engine, http.MethodPost, "/api/auth/login")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "Too many requests")

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/health").Code)
	}
}

func TestRateLimit_PerClient(t *testing.T) {
	log := logger.NewTestLogger("http")
	l := limiter.New(limiter.Config{Enabled: true, Store: "memory", Default: limiter.Rule{Rate: 0.001, Capacity: 1}},
		limiter.NewMemoryStore(), log.CtxZapLogger)
	engine := rateLimitedEngine(l, log)

	assert.Equal(t, http.StatusOK, serve(engine, http.MethodPost, "/api/auth/login", "X-Forwarded-For", "10.0.0.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(engine, http.MethodPost, "/api/auth/login", "X-Forwarded-For", "10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodPost, "/api/auth/login", "X-Forwarded-For", "10.0.0.2").Code)
}

func TestRateLimit_FailsOpen(t *testing.T) {
	log := logger.NewTestLogger("http")
	engine := rateLimitedEngine(brokenLimiter{}, log)

	w := serve(engine, http.MethodPost, "/api/auth/login")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, log.Has(zap.WarnLevel, "rate limiter unavailable, allowing request"))
}
