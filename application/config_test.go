package application

import (
	"testing"
	"time"

	"github.com/KOMKZ/go-yogan-chat/di"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBase_LoadsAppConfig(t *testing.T) {
	app := newTestApp(t, baseConfig)

	cfg := app.AppConfig()
	assert.Equal(t, "chat-test", cfg.App.Name)
	assert.Equal(t, "v0.0.1", cfg.App.Version)
	assert.Equal(t, "test", cfg.App.Env)
	assert.Equal(t, "127.0.0.1:0", cfg.HTTP.Addr)
	assert.Equal(t, 2*time.Second, cfg.HTTP.ShutdownTimeout)

	// untouched sections keep their defaults
	assert.Equal(t, 15*time.Second, cfg.HTTP.ReadTimeout)
	assert.True(t, cfg.HTTP.Middleware.TraceID.Enable)
	assert.Equal(t, "X-Trace-ID", cfg.HTTP.Middleware.TraceID.TraceIDHeader)
	assert.False(t, cfg.HTTP.Middleware.CORS.Enable)
	assert.True(t, cfg.HTTP.Middleware.RateLimit.Enable)
	assert.Contains(t, cfg.HTTP.Middleware.RateLimit.SkipPaths, "/metrics")
	assert.True(t, cfg.Httpx.Enable)
	assert.Equal(t, StateInit, app.GetState())
}

func TestNewBase_EnvFileAndVariablesOverride(t *testing.T) {
	t.Setenv("CHATTEST_HTTP__MODE", "debug")
	app := newTestApp(t, baseConfig, "test.yaml", "app:\n  name: chat-from-env-file\n")

	cfg := app.AppConfig()
	assert.Equal(t, "chat-from-env-file", cfg.App.Name)
	assert.Equal(t, "debug", cfg.HTTP.Mode)
}

func TestAppConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *AppConfig)
		wantErr string
	}{
		{"defaults", func(*AppConfig) {}, ""},
		{"bad mode", func(c *AppConfig) { c.HTTP.Mode = "prod" }, "http.mode"},
		{"negative timeout", func(c *AppConfig) { c.HTTP.ReadTimeout = -time.Second }, "timeouts"},
		{"credentials with wildcard", func(c *AppConfig) {
			c.HTTP.Middleware.CORS.Enable = true
			c.HTTP.Middleware.CORS.AllowCredentials = true
		}, "allow_credentials"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultAppConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewBase_RejectsInvalidConfig(t *testing.T) {
	dir := writeConfig(t, baseConfig, "test.yaml", "http:\n  mode: fast\n")
	_, err := NewBase(di.ConfigOptions{ConfigPath: dir, Env: "test"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http.mode")
}

func TestAppState_String(t *testing.T) {
	assert.Equal(t, "Init", StateInit.String())
	assert.Equal(t, "Running", StateRunning.String())
	assert.Equal(t, "Stopped", StateStopped.String())
	assert.Equal(t, "Unknown", AppState(42).String())
}
