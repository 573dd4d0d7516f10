package telemetry

import (
	"context"
	"fmt"

	"github.com/KOMKZ/go-yogan-chat/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Manager owns the tracer provider. W3C trace context propagation is
// installed even when tracing is disabled so inbound trace ids reach the logs.
type Manager struct {
	cfg      TracingConfig
	log      *logger.CtxZapLogger
	provider *sdktrace.TracerProvider
	exporter sdktrace.SpanExporter
}

func NewManager(cfg TracingConfig, log *logger.CtxZapLogger) *Manager {
	if log == nil {
		log = logger.Nop()
	}
	return &Manager{cfg: cfg, log: log}
}

func (m *Manager) Start(ctx context.Context) error {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	if !m.cfg.Enabled {
		m.log.DebugCtx(ctx, "tracing disabled")
		return nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(m.cfg.ServiceName),
			semconv.ServiceVersion(m.cfg.ServiceVersion),
			attribute.String("service.component", "chatd"),
		),
		resource.WithHost(),
		resource.WithProcess(),
		resource.WithTelemetrySDK(),
	)
	if err != nil {
		return fmt.Errorf("create resource: %w", err)
	}

	exporter, err := newExporter(ctx, m.cfg, m.log)
	if err != nil {
		return err
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(m.cfg.Sampler)),
	}
	if m.cfg.Batch.Enabled {
		opts = append(opts, sdktrace.WithBatcher(exporter,
			sdktrace.WithMaxQueueSize(m.cfg.Batch.MaxQueueSize),
			sdktrace.WithMaxExportBatchSize(m.cfg.Batch.MaxExportBatchSize),
			sdktrace.WithBatchTimeout(m.cfg.Batch.ScheduleDelay),
			sdktrace.WithExportTimeout(m.cfg.Batch.ExportTimeout),
		))
	} else {
		opts = append(opts, sdktrace.WithSyncer(exporter))
	}

	m.exporter = exporter
	m.provider = sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(m.provider)

	m.log.InfoCtx(ctx, "tracing started",
		zap.String("service_name", m.cfg.ServiceName),
		zap.String("exporter", m.cfg.Exporter.Type))
	return nil
}

func sampler(cfg SamplerConfig) sdktrace.Sampler {
	switch cfg.Type {
	case "always_on":
		return sdktrace.AlwaysSample()
	case "always_off":
		return sdktrace.NeverSample()
	case "trace_id_ratio":
		return sdktrace.TraceIDRatioBased(cfg.Ratio)
	default:
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	}
}

// Tracer falls back to the global provider when tracing is disabled
func (m *Manager) Tracer(name string) trace.Tracer {
	if m.provider == nil {
		return otel.GetTracerProvider().Tracer(name)
	}
	return m.provider.Tracer(name)
}

func (m *Manager) Enabled() bool {
	return m.provider != nil
}

// Shutdown flushes pending spans
func (m *Manager) Shutdown(ctx context.Context) error {
	if m.provider == nil {
		return nil
	}
	if err := m.provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown tracer provider: %w", err)
	}
	return nil
}
