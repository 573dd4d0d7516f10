package application

import (
	"fmt"
	"time"

	"github.com/KOMKZ/go-yogan-chat/httpx"
	"github.com/KOMKZ/go-yogan-chat/middleware"
	"github.com/gin-gonic/gin"
)

// AppConfig holds the application-level sections only. Component sections
// (database, redis, cache, jwt, ...) are read by their own providers in package di.
type AppConfig struct {
	App   AppInfo                  `mapstructure:"app"`
	HTTP  HTTPConfig               `mapstructure:"http"`
	Httpx httpx.ErrorLoggingConfig `mapstructure:"httpx"`
}

type AppInfo struct {
	Name    string `mapstructure:"name"`
	Env     string `mapstructure:"env"`
	Version string `mapstructure:"version"`
}

// HTTPConfig API server settings
type HTTPConfig struct {
	Addr            string           `mapstructure:"addr"`
	Mode            string           `mapstructure:"mode"` // debug, release, test
	ReadTimeout     time.Duration    `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration    `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration    `mapstructure:"shutdown_timeout"`
	Middleware      MiddlewareConfig `mapstructure:"middleware"`
}

type MiddlewareConfig struct {
	CORS       CORSConfig       `mapstructure:"cors"`
	TraceID    TraceIDConfig    `mapstructure:"trace_id"`
	RequestLog RequestLogConfig `mapstructure:"request_log"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
}

// CORSConfig is off by default
type CORSConfig struct {
	Enable                bool `mapstructure:"enable"`
	middleware.CORSConfig `mapstructure:",squash"`
}

type TraceIDConfig struct {
	Enable               bool   `mapstructure:"enable"`
	TraceIDKey           string `mapstructure:"trace_id_key"`
	TraceIDHeader        string `mapstructure:"trace_id_header"`
	EnableResponseHeader bool   `mapstructure:"enable_response_header"`
}

type RequestLogConfig struct {
	Enable    bool     `mapstructure:"enable"`
	SkipPaths []string `mapstructure:"skip_paths"`
}

// RateLimitConfig mounts the middleware; limiter.enabled and the rules live in the limiter section
type RateLimitConfig struct {
	Enable    bool     `mapstructure:"enable"`
	SkipPaths []string `mapstructure:"skip_paths"`
}

type MetricsConfig struct {
	Enable    bool     `mapstructure:"enable"`
	SkipPaths []string `mapstructure:"skip_paths"`
}

// DefaultAppConfig is decoded over, so a key absent from every source keeps these values
func DefaultAppConfig() AppConfig {
	trace := middleware.DefaultTraceConfig()
	return AppConfig{
		App: AppInfo{Name: "yogan-chat", Version: "dev"},
		HTTP: HTTPConfig{
			Addr:            ":8000",
			Mode:            gin.ReleaseMode,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Middleware: MiddlewareConfig{
				CORS: CORSConfig{CORSConfig: middleware.DefaultCORSConfig()},
				TraceID: TraceIDConfig{
					Enable:               true,
					TraceIDKey:           trace.TraceIDKey,
					TraceIDHeader:        trace.TraceIDHeader,
					EnableResponseHeader: trace.EnableResponseHeader,
				},
				RequestLog: RequestLogConfig{Enable: true, SkipPaths: middleware.DefaultRequestLogConfig().SkipPaths},
				Metrics:    MetricsConfig{Enable: true, SkipPaths: []string{"/metrics"}},
				// the limiter section decides whether anything is throttled
				RateLimit: RateLimitConfig{
					Enable:    true,
					SkipPaths: []string{"/health", "/health/liveness", "/health/readiness", "/metrics"},
				},
			},
		},
		Httpx: httpx.DefaultErrorLoggingConfig(),
	}
}

// ApplyDefaults fills zero values left by an explicit empty key
func (c *AppConfig) ApplyDefaults() {
	d := DefaultAppConfig()
	if c.App.Name == "" {
		c.App.Name = d.App.Name
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = d.HTTP.Addr
	}
	if c.HTTP.Mode == "" {
		c.HTTP.Mode = d.HTTP.Mode
	}
	if c.HTTP.ShutdownTimeout <= 0 {
		c.HTTP.ShutdownTimeout = d.HTTP.ShutdownTimeout
	}
	m := &c.HTTP.Middleware
	if m.TraceID.TraceIDKey == "" {
		m.TraceID.TraceIDKey = d.HTTP.Middleware.TraceID.TraceIDKey
	}
	if m.TraceID.TraceIDHeader == "" {
		m.TraceID.TraceIDHeader = d.HTTP.Middleware.TraceID.TraceIDHeader
	}
}

func (c AppConfig) Validate() error {
	switch c.HTTP.Mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
	default:
		return fmt.Errorf("http.mode must be debug, release or test, got %q", c.HTTP.Mode)
	}
	if c.HTTP.ReadTimeout < 0 || c.HTTP.WriteTimeout < 0 {
		return fmt.Errorf("http timeouts cannot be negative")
	}
	cors := c.HTTP.Middleware.CORS
	if cors.Enable && cors.AllowCredentials {
		for _, o := range cors.AllowOrigins {
			if o == "*" {
				return fmt.Errorf("cors: allow_credentials cannot be combined with origin *")
			}
		}
	}
	return nil
}
