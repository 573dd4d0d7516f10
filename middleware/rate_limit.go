package middleware

import (
	"context"
	"math"
	"strconv"

	"github.com/KOMKZ/go-yogan-chat/errcode"
	"github.com/KOMKZ/go-yogan-chat/httpx"
	"github.com/KOMKZ/go-yogan-chat/limiter"
	"github.com/KOMKZ/go-yogan-chat/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateAllower is satisfied by *limiter.Limiter
type RateAllower interface {
	Enabled() bool
	Allow(ctx context.Context, route, client string) (*limiter.Result, error)
}

type RateLimitConfig struct {
	// KeyFunc identifies the client; defaults to the client IP
	KeyFunc   func(*gin.Context) string
	SkipPaths []string
}

// RateLimit throttles each client per route pattern ("POST /api/auth/login").
// A limiter failure lets the request through.
func RateLimit(l RateAllower, cfg RateLimitConfig, log *logger.CtxZapLogger) gin.HandlerFunc {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = RateLimitKeyByIP
	}
	skip := make(map[string]bool, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = true
	}

	return func(c *gin.Context) {
		if !l.Enabled() || skip[c.Request.URL.Path] {
			c.Next()
			return
		}
		route := c.FullPath()
		if route == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		res, err := l.Allow(ctx, c.Request.Method+" "+route, cfg.KeyFunc(c))
		if err != nil {
			log.WarnCtx(ctx, "rate limiter unavailable, allowing request", zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(res.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))
		if !res.Allowed {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(res.RetryAfter.Seconds()))))
			httpx.HandleError(c, errcode.ErrTooManyRequests)
			c.Abort()
			return
		}
		c.Next()
	}
}

func RateLimitKeyByIP(c *gin.Context) string {
	return "ip:" + c.ClientIP()
}
