package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// TestLogger records entries in memory for assertions in unit tests.
//
//	log := logger.NewTestLogger("cache")
//	svc := cache.NewService(store, cfg, log.CtxZapLogger)
//	assert.Equal(t, 1, log.Count(zapcore.WarnLevel, "cache get failed"))
type TestLogger struct {
	*CtxZapLogger
	logs *observer.ObservedLogs
}

// NewTestLogger captures everything from debug level up
func NewTestLogger(module string) *TestLogger {
	core, logs := observer.New(zapcore.DebugLevel)
	return &TestLogger{
		CtxZapLogger: Wrap(zap.New(core), module),
		logs:         logs,
	}
}

// Count returns how many entries match level and message
func (t *TestLogger) Count(level zapcore.Level, msg string) int {
	return t.logs.FilterLevelExact(level).FilterMessage(msg).Len()
}

// Has reports whether at least one entry matches level and message
func (t *TestLogger) Has(level zapcore.Level, msg string) bool {
	return t.Count(level, msg) > 0
}

// HasField reports whether an entry with msg carries key=value
func (t *TestLogger) HasField(msg, key string, value any) bool {
	for _, e := range t.logs.FilterMessage(msg).All() {
		if v, ok := e.ContextMap()[key]; ok && v == value {
			return true
		}
	}
	return false
}

// Entries returns a snapshot of every recorded entry
func (t *TestLogger) Entries() []observer.LoggedEntry {
	return t.logs.All()
}

// Reset drops recorded entries
func (t *TestLogger) Reset() {
	t.logs.TakeAll()
}
