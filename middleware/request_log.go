package middleware

import (
	"strings"
	"time"

	"github.com/KOMKZ/go-yogan-chat/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RequestLogConfig struct {
	SkipPaths []string `mapstructure:"skip_paths"`
}

func DefaultRequestLogConfig() RequestLogConfig {
	return RequestLogConfig{SkipPaths: []string{"/health", "/metrics"}}
}

// RequestLog replaces gin.Logger. 5xx logs at error, 4xx at warn, the rest at info.
func RequestLog(cfg RequestLogConfig, log *logger.CtxZapLogger) gin.HandlerFunc {
	skip := make(map[string]bool, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = true
	}

	return func(c *gin.Context) {
		if skip[c.Request.URL.Path] {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("body_size", c.Writer.Size()),
		}
		if id, ok := UserID(c); ok {
			fields = append(fields, zap.Int64("user_id", id))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("error", strings.Join(c.Errors.Errors(), "; ")))
		}

		ctx := c.Request.Context()
		switch {
		case status >= 500:
			log.ErrorCtx(ctx, "http request", fields...)
		case status >= 400:
			log.WarnCtx(ctx, "http request", fields...)
		default:
			log.InfoCtx(ctx, "http request", fields...)
		}
	}
}
