package logger

import (
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Manager hands out one CtxZapLogger per module.
// Each module gets its own info/error files under {dir}/{module}/.
type Manager struct {
	cfg     Config
	loggers map[string]*CtxZapLogger
	bases   map[string]*zap.Logger
	writers []*lumberjack.Logger
	mu      sync.RWMutex
}

// NewManager creates a manager; zero-valued fields are defaulted before validation
func NewManager(cfg Config) (*Manager, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Manager{
		cfg:     cfg,
		loggers: make(map[string]*CtxZapLogger),
		bases:   make(map[string]*zap.Logger),
	}, nil
}

// Config returns the effective configuration
func (m *Manager) Config() Config {
	return m.cfg
}

// Logger returns the module logger, creating it on first use (thread safe)
func (m *Manager) Logger(module string) *CtxZapLogger {
	m.mu.RLock()
	l, ok := m.loggers[module]
	m.mu.RUnlock()
	if ok {
		return l
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.loggers[module]; ok {
		return l
	}

	base := m.build(module).With(zap.String("module", module))
	l = newCtxZapLogger(base.WithOptions(zap.AddCallerSkip(1)), module, &m.cfg)
	m.loggers[module] = l
	m.bases[module] = base
	return l
}

// build assembles the console and file cores for one module (caller holds the lock)
func (m *Manager) build(module string) *zap.Logger {
	cfg := m.cfg
	level := ParseLevel(cfg.Level)
	encoder := newEncoder(cfg.Encoding)
	var cores []zapcore.Core

	if cfg.EnableConsole {
		consoleEncoder := encoder
		if cfg.ConsoleEncoding != "" && cfg.ConsoleEncoding != cfg.Encoding {
			consoleEncoder = newEncoder(cfg.ConsoleEncoding)
		}
		cores = append(cores, zapcore.NewCore(consoleEncoder, zapcore.AddSync(os.Stdout), level))
	}

	if cfg.EnableFile {
		infoWriter := m.fileWriter(cfg.filePath(module, "info"))
		cores = append(cores, zapcore.NewCore(encoder, infoWriter, zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
			return lvl >= level && lvl < zapcore.ErrorLevel
		})))

		errorWriter := m.fileWriter(cfg.filePath(module, "error"))
		cores = append(cores, zapcore.NewCore(encoder, errorWriter, zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
			return lvl >= zapcore.ErrorLevel && lvl >= level
		})))
	}

	if len(cores) == 0 {
		return zap.NewNop()
	}

	var opts []zap.Option
	if cfg.EnableCaller {
		opts = append(opts, zap.AddCaller())
	}
	if cfg.EnableStacktrace {
		opts = append(opts, zap.AddStacktrace(ParseLevel(cfg.StacktraceLevel)))
	}
	return zap.New(zapcore.NewTee(cores...), opts...)
}

func (m *Manager) fileWriter(filename string) zapcore.WriteSyncer {
	_ = os.MkdirAll(filepath.Dir(filename), 0o755)
	w := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    m.cfg.MaxSize,
		MaxBackups: m.cfg.MaxBackups,
		MaxAge:     m.cfg.MaxAge,
		Compress:   m.cfg.Compress,
		LocalTime:  true,
	}
	m.writers = append(m.writers, w)
	return zapcore.AddSync(w)
}

// Shutdown flushes buffers and closes every file handle.
// Loggers handed out earlier keep working on stdout only if console output is enabled.
func (m *Manager) Shutdown() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, l := range m.bases {
		_ = l.Sync()
	}
	var firstErr error
	for _, w := range m.writers {
		if err := w.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	m.loggers = make(map[string]*CtxZapLogger)
	m.bases = make(map[string]*zap.Logger)
	m.writers = nil
	return firstErr
}

func newEncoder(encoding string) zapcore.Encoder {
	ec := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		MessageKey:     "msg",
		CallerKey:      "caller",
		StacktraceKey:  "stack",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	if encoding == "console" {
		return zapcore.NewConsoleEncoder(ec)
	}
	return zapcore.NewJSONEncoder(ec)
}
