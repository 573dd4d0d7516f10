// Package telemetry owns the Prometheus registry and the optional OpenTelemetry tracer provider
package telemetry

import (
	"fmt"
	"time"
)

type Config struct {
	Metrics MetricsConfig `mapstructure:"metrics"`
	Tracing TracingConfig `mapstructure:"tracing"`
}

type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	Path      string `mapstructure:"path"`
}

// TracingConfig spans are exported only when Enabled; trace ids are propagated either way
type TracingConfig struct {
	Enabled        bool           `mapstructure:"enabled"`
	ServiceName    string         `mapstructure:"service_name"`
	ServiceVersion string         `mapstructure:"service_version"`
	Exporter       ExporterConfig `mapstructure:"exporter"`
	Sampler        SamplerConfig  `mapstructure:"sampler"`
	Batch          BatchConfig    `mapstructure:"batch"`
	Fallback       FallbackConfig `mapstructure:"fallback"`
}

type ExporterConfig struct {
	Type     string            `mapstructure:"type"` // otlp, stdout, noop
	Endpoint string            `mapstructure:"endpoint"`
	Insecure bool              `mapstructure:"insecure"`
	Timeout  time.Duration     `mapstructure:"timeout"`
	Headers  map[string]string `mapstructure:"headers"`
}

type SamplerConfig struct {
	Type  string  `mapstructure:"type"` // always_on, always_off, trace_id_ratio, parent_based_always_on
	Ratio float64 `mapstructure:"ratio"`
}

type BatchConfig struct {
	Enabled            bool          `mapstructure:"enabled"`
	MaxQueueSize       int           `mapstructure:"max_queue_size"`
	MaxExportBatchSize int           `mapstructure:"max_export_batch_size"`
	ScheduleDelay      time.Duration `mapstructure:"schedule_delay"`
	ExportTimeout      time.Duration `mapstructure:"export_timeout"`
}

// FallbackConfig switches export to a secondary exporter after repeated failures
type FallbackConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	FailureThreshold int           `mapstructure:"failure_threshold"`
	SuccessThreshold int           `mapstructure:"success_threshold"`
	Timeout          time.Duration `mapstructure:"timeout"`
	ExporterType     string        `mapstructure:"exporter_type"` // stdout, noop
}

func DefaultConfig() Config {
	return Config{
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "chat",
			Path:      "/metrics",
		},
		Tracing: TracingConfig{
			ServiceName:    "yogan-chat",
			ServiceVersion: "dev",
			Exporter: ExporterConfig{
				Type:     "otlp",
				Endpoint: "localhost:4317",
				Insecure: true,
				Timeout:  10 * time.Second,
			},
			Sampler: SamplerConfig{Type: "parent_based_always_on", Ratio: 1},
			Batch: BatchConfig{
				Enabled:            true,
				MaxQueueSize:       2048,
				MaxExportBatchSize: 512,
				ScheduleDelay:      5 * time.Second,
				ExportTimeout:      30 * time.Second,
			},
			Fallback: FallbackConfig{
				Enabled:          true,
				FailureThreshold: 5,
				SuccessThreshold: 2,
				Timeout:          30 * time.Second,
				ExporterType:     "noop",
			},
		},
	}
}

func (c *Config) ApplyDefaults() {
	d := DefaultConfig()
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = d.Metrics.Namespace
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = d.Metrics.Path
	}
	t := &c.Tracing
	if t.ServiceName == "" {
		t.ServiceName = d.Tracing.ServiceName
	}
	if t.Exporter.Type == "" {
		t.Exporter = d.Tracing.Exporter
	}
	if t.Exporter.Timeout <= 0 {
		t.Exporter.Timeout = d.Tracing.Exporter.Timeout
	}
	if t.Sampler.Type == "" {
		t.Sampler = d.Tracing.Sampler
	}
	if t.Batch.MaxQueueSize <= 0 {
		t.Batch = d.Tracing.Batch
	}
	if t.Fallback.FailureThreshold <= 0 {
		t.Fallback.FailureThreshold = d.Tracing.Fallback.FailureThreshold
	}
	if t.Fallback.SuccessThreshold <= 0 {
		t.Fallback.SuccessThreshold = d.Tracing.Fallback.SuccessThreshold
	}
	if t.Fallback.Timeout <= 0 {
		t.Fallback.Timeout = d.Tracing.Fallback.Timeout
	}
	if t.Fallback.ExporterType == "" {
		t.Fallback.ExporterType = d.Tracing.Fallback.ExporterType
	}
}

func (c Config) Validate() error {
	if !c.Tracing.Enabled {
		return nil
	}
	switch c.Tracing.Exporter.Type {
	case "otlp", "stdout", "noop":
	default:
		return fmt.Errorf("unsupported trace exporter %q", c.Tracing.Exporter.Type)
	}
	if c.Tracing.Exporter.Type == "otlp" && c.Tracing.Exporter.Endpoint == "" {
		return fmt.Errorf("trace exporter endpoint is required for otlp")
	}
	if c.Tracing.Sampler.Type == "trace_id_ratio" && (c.Tracing.Sampler.Ratio < 0 || c.Tracing.Sampler.Ratio > 1) {
		return fmt.Errorf("sampler ratio must be within [0, 1], got %v", c.Tracing.Sampler.Ratio)
	}
	return nil
}
