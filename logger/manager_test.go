package logger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newFileManager(t *testing.T, level string) (*Manager, string) {
	t.Helper()
	dir := t.TempDir()
	m, err := NewManager(Config{
		Dir:                   dir,
		Level:                 level,
		AppName:               "chat-test",
		Encoding:              "json",
		EnableFile:            true,
		EnableLevelInFilename: true,
		EnableTraceID:         true,
	})
	require.NoError(t, err)
	return m, dir
}

func TestManager_SplitsInfoAndErrorFiles(t *testing.T) {
	m, dir := newFileManager(t, "info")

	m.Logger("message").Info("message sent", zap.Int64("id", 1))
	m.Logger("message").Error("send failed", zap.String("reason", "db"))
	m.Logger("user").Debug("hidden below level")
	require.NoError(t, m.Shutdown())

	info, err := os.ReadFile(filepath.Join(dir, "message", "message-info.log"))
	require.NoError(t, err)
	assert.Contains(t, string(info), "message sent")
	assert.Contains(t, string(info), `"module":"message"`)
	assert.Contains(t, string(info), `"app_name":"chat-test"`)
	assert.NotContains(t, string(info), "send failed")

	errLog, err := os.ReadFile(filepath.Join(dir, "message", "message-error.log"))
	require.NoError(t, err)
	assert.Contains(t, string(errLog), "send failed")

	userInfo, _ := os.ReadFile(filepath.Join(dir, "user", "user-info.log"))
	assert.NotContains(t, string(userInfo), "hidden below level")
}

func TestManager_LoggerIsCachedPerModule(t *testing.T) {
	m, _ := newFileManager(t, "info")
	defer m.Shutdown()

	assert.Same(t, m.Logger("cache"), m.Logger("cache"))
	assert.NotSame(t, m.Logger("cache"), m.Logger("user"))
	assert.Equal(t, "cache", m.Logger("cache").Module())
}

func TestManager_TraceIDFromContext(t *testing.T) {
	m, dir := newFileManager(t, "debug")

	ctx := context.WithValue(context.Background(), "trace_id", "abc-123")
	m.Logger("api").InfoCtx(ctx, "request handled")
	require.NoError(t, m.Shutdown())

	content, err := os.ReadFile(filepath.Join(dir, "api", "api-info.log"))
	require.NoError(t, err)
	assert.Contains(t, string(content), `"trace_id":"abc-123"`)
}

func TestNewManager_RejectsInvalidConfig(t *testing.T) {
	_, err := NewManager(Config{Level: "verbose"})
	assert.Error(t, err)

	_, err = NewManager(Config{Encoding: "xml"})
	assert.Error(t, err)
}

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	assert.Equal(t, "logs", cfg.Dir)
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "json", cfg.Encoding)
	assert.Equal(t, 100, cfg.MaxSize)
	assert.Equal(t, "trace_id", cfg.TraceIDKey)
	assert.NoError(t, cfg.Validate())
}

func TestTestLogger_RecordsEntries(t *testing.T) {
	log := NewTestLogger("cache")
	log.WarnCtx(context.Background(), "cache get failed", zap.String("key", "profile:1"))

	assert.True(t, log.Has(zap.WarnLevel, "cache get failed"))
	assert.True(t, log.HasField("cache get failed", "key", "profile:1"))
	assert.Equal(t, 0, log.Count(zap.ErrorLevel, "cache get failed"))

	log.Reset()
	assert.Empty(t, log.Entries())
}
