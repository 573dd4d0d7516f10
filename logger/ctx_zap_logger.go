package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// CtxZapLogger is a context-aware zap wrapper.
// The module is bound at creation; call sites only pass ctx.
type CtxZapLogger struct {
	base   *zap.Logger
	module string
	cfg    *Config
}

func newCtxZapLogger(base *zap.Logger, module string, cfg *Config) *CtxZapLogger {
	return &CtxZapLogger{base: base, module: module, cfg: cfg}
}

// Wrap adapts an existing zap.Logger, e.g. zaptest or observer loggers in tests
func Wrap(base *zap.Logger, module string) *CtxZapLogger {
	cfg := DefaultConfig()
	cfg.AppName = ""
	return newCtxZapLogger(base.With(zap.String("module", module)), module, &cfg)
}

// Nop returns a logger that discards everything
func Nop() *CtxZapLogger {
	return Wrap(zap.NewNop(), "nop")
}

// Module returns the bound module name
func (l *CtxZapLogger) Module() string {
	return l.module
}

func (l *CtxZapLogger) DebugCtx(ctx context.Context, msg string, fields ...zap.Field) {
	l.base.Debug(msg, l.enrich(ctx, fields)...)
}

func (l *CtxZapLogger) InfoCtx(ctx context.Context, msg string, fields ...zap.Field) {
	l.base.Info(msg, l.enrich(ctx, fields)...)
}

func (l *CtxZapLogger) WarnCtx(ctx context.Context, msg string, fields ...zap.Field) {
	l.base.Warn(msg, l.enrich(ctx, fields)...)
}

func (l *CtxZapLogger) ErrorCtx(ctx context.Context, msg string, fields ...zap.Field) {
	l.base.Error(msg, l.enrich(ctx, fields)...)
}

func (l *CtxZapLogger) Debug(msg string, fields ...zap.Field) {
	l.DebugCtx(context.Background(), msg, fields...)
}

func (l *CtxZapLogger) Info(msg string, fields ...zap.Field) {
	l.InfoCtx(context.Background(), msg, fields...)
}

func (l *CtxZapLogger) Warn(msg string, fields ...zap.Field) {
	l.WarnCtx(context.Background(), msg, fields...)
}

func (l *CtxZapLogger) Error(msg string, fields ...zap.Field) {
	l.ErrorCtx(context.Background(), msg, fields...)
}

// With returns a child logger carrying preset fields
func (l *CtxZapLogger) With(fields ...zap.Field) *CtxZapLogger {
	return newCtxZapLogger(l.base.With(fields...), l.module, l.cfg)
}

// GetZapLogger exposes the underlying logger for third-party integration
func (l *CtxZapLogger) GetZapLogger() *zap.Logger {
	return l.base
}

// enrich prepends app_name and the trace id (module is already bound on base)
func (l *CtxZapLogger) enrich(ctx context.Context, fields []zap.Field) []zap.Field {
	if l.cfg == nil {
		return fields
	}
	out := make([]zap.Field, 0, len(fields)+2)
	if l.cfg.AppName != "" {
		out = append(out, zap.String("app_name", l.cfg.AppName))
	}
	if l.cfg.EnableTraceID && ctx != nil {
		if id := TraceIDFromContext(ctx, l.cfg.TraceIDKey); id != "" {
			out = append(out, zap.String(l.cfg.TraceIDFieldName, id))
		}
	}
	return append(out, fields...)
}

// TraceIDFromContext extracts a trace id.
// Priority: OpenTelemetry span > configured context key > "trace_id".
func TraceIDFromContext(ctx context.Context, key string) string {
	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		return span.SpanContext().TraceID().String()
	}
	for _, k := range []string{key, "trace_id"} {
		if k == "" {
			continue
		}
		if v, ok := ctx.Value(k).(string); ok && v != "" {
			return v
		}
	}
	return ""
}
