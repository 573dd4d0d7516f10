package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

const (
	TraceIDKeyDefault    = "trace_id"
	TraceIDHeaderDefault = "X-Trace-ID"
)

type TraceConfig struct {
	// TraceIDKey is used for both gin.Context and context.Context
	TraceIDKey           string
	TraceIDHeader        string
	EnableResponseHeader bool
	Generator            func() string
}

func DefaultTraceConfig() TraceConfig {
	return TraceConfig{
		TraceIDKey:           TraceIDKeyDefault,
		TraceIDHeader:        TraceIDHeaderDefault,
		EnableResponseHeader: true,
		Generator:            func() string { return uuid.New().String() },
	}
}

// TraceID must run after otelgin. With a recording span the OTel trace id wins;
// otherwise the incoming header is reused or a UUID generated, and stored in the
// request context where logger.TraceIDFromContext finds it.
func TraceID(cfg TraceConfig) gin.HandlerFunc {
	def := DefaultTraceConfig()
	if cfg.TraceIDKey == "" {
		cfg.TraceIDKey = def.TraceIDKey
	}
	if cfg.TraceIDHeader == "" {
		cfg.TraceIDHeader = def.TraceIDHeader
	}
	if cfg.Generator == nil {
		cfg.Generator = def.Generator
	}

	return func(c *gin.Context) {
		var traceID string
		if sc := trace.SpanFromContext(c.Request.Context()).SpanContext(); sc.IsValid() {
			traceID = sc.TraceID().String()
		} else {
			traceID = c.GetHeader(cfg.TraceIDHeader)
			if traceID == "" {
				traceID = cfg.Generator()
			}
			//nolint:staticcheck // string key shared with logger.TraceIDFromContext
			ctx := context.WithValue(c.Request.Context(), cfg.TraceIDKey, traceID)
			c.Request = c.Request.WithContext(ctx)
		}

		c.Set(cfg.TraceIDKey, traceID)
		if cfg.EnableResponseHeader {
			c.Writer.Header().Set(cfg.TraceIDHeader, traceID)
		}
		c.Next()
	}
}

func GetTraceID(c *gin.Context) string {
	return c.GetString(TraceIDKeyDefault)
}
