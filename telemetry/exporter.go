package telemetry

import (
	"context"
	"fmt"

	"github.com/KOMKZ/go-yogan-chat/breaker"
	"github.com/KOMKZ/go-yogan-chat/logger"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"google.golang.org/grpc/credentials/insecure"
)

func newExporter(ctx context.Context, cfg TracingConfig, log *logger.CtxZapLogger) (sdktrace.SpanExporter, error) {
	primary, err := newRawExporter(ctx, cfg.Exporter.Type, cfg.Exporter)
	if err != nil {
		return nil, fmt.Errorf("create %s exporter: %w", cfg.Exporter.Type, err)
	}
	if !cfg.Fallback.Enabled {
		return primary, nil
	}

	secondary, err := newRawExporter(ctx, cfg.Fallback.ExporterType, cfg.Exporter)
	if err != nil {
		log.WarnCtx(ctx, "fallback exporter unavailable, using noop",
			zap.String("fallback_type", cfg.Fallback.ExporterType), zap.Error(err))
		secondary = noopExporter{}
	}
	return newFallbackExporter(cfg.Fallback, primary, secondary, log), nil
}

func newRawExporter(ctx context.Context, kind string, cfg ExporterConfig) (sdktrace.SpanExporter, error) {
	switch kind {
	case "otlp":
		opts := []otlptracegrpc.Option{
			otlptracegrpc.WithEndpoint(cfg.Endpoint),
			otlptracegrpc.WithTimeout(cfg.Timeout),
		}
		if cfg.Insecure {
			opts = append(opts, otlptracegrpc.WithTLSCredentials(insecure.NewCredentials()))
		}
		if len(cfg.Headers) > 0 {
			opts = append(opts, otlptracegrpc.WithHeaders(cfg.Headers))
		}
		return otlptrace.New(ctx, otlptracegrpc.NewClient(opts...))
	case "stdout":
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	case "noop":
		return noopExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported exporter type: %s", kind)
	}
}

type noopExporter struct{}

func (noopExporter) ExportSpans(context.Context, []sdktrace.ReadOnlySpan) error { return nil }
func (noopExporter) Shutdown(context.Context) error                             { return nil }

// fallbackExporter sends spans to the primary exporter until its circuit
// opens, then to the secondary one until a probe to the primary succeeds.
type fallbackExporter struct {
	primary   sdktrace.SpanExporter
	secondary sdktrace.SpanExporter
	circuit   *breaker.Breaker
}

func newFallbackExporter(cfg FallbackConfig, primary, secondary sdktrace.SpanExporter, log *logger.CtxZapLogger) *fallbackExporter {
	circuit := breaker.New("trace_exporter", breaker.Config{
		Enabled:             true,
		ConsecutiveFailures: cfg.FailureThreshold,
		Timeout:             cfg.Timeout,
		HalfOpenRequests:    cfg.SuccessThreshold,
	}, breaker.OnStateChange(func(resource string, from, to breaker.State) {
		log.Warn("trace exporter state changed",
			zap.String("from", from.String()), zap.String("to", to.String()))
	}))
	return &fallbackExporter{primary: primary, secondary: secondary, circuit: circuit}
}

func (e *fallbackExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	err := e.circuit.Execute(ctx, func(ctx context.Context) error {
		return e.primary.ExportSpans(ctx, spans)
	})
	if err != nil {
		return e.secondary.ExportSpans(ctx, spans)
	}
	return nil
}

func (e *fallbackExporter) State() breaker.State {
	return e.circuit.State()
}

func (e *fallbackExporter) Shutdown(ctx context.Context) error {
	err1 := e.primary.Shutdown(ctx)
	err2 := e.secondary.Shutdown(ctx)
	if err1 != nil {
		return err1
	}
	return err2
}
