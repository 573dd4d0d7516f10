package logger

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
)

// Config logger manager configuration (shared by every module logger)
type Config struct {
	Dir             string `mapstructure:"dir"` // Log root directory (default logs/)
	Level           string `mapstructure:"level"`
	AppName         string `mapstructure:"app_name"` // Injected into every entry, even when empty
	Encoding        string `mapstructure:"encoding"` // json or console
	ConsoleEncoding string `mapstructure:"console_encoding"`

	EnableConsole bool `mapstructure:"enable_console"`
	EnableFile    bool `mapstructure:"enable_file"`

	// File name layout: {module}[-{level}][-{date}].log
	EnableLevelInFilename bool   `mapstructure:"enable_level_in_filename"`
	EnableDateInFilename  bool   `mapstructure:"enable_date_in_filename"`
	DateFormat            string `mapstructure:"date_format"`

	// Rotation (lumberjack)
	MaxSize    int  `mapstructure:"max_size"` // MB
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAge     int  `mapstructure:"max_age"` // days
	Compress   bool `mapstructure:"compress"`

	EnableCaller     bool   `mapstructure:"enable_caller"`
	EnableStacktrace bool   `mapstructure:"enable_stacktrace"`
	StacktraceLevel  string `mapstructure:"stacktrace_level"`

	// Trace ID extraction from context
	EnableTraceID    bool   `mapstructure:"enable_trace_id"`
	TraceIDKey       string `mapstructure:"trace_id_key"`
	TraceIDFieldName string `mapstructure:"trace_id_field_name"`
}

var (
	validLevels    = []string{"debug", "info", "warn", "error", "fatal"}
	validEncodings = []string{"json", "console"}
)

// DefaultConfig returns the default manager configuration
func DefaultConfig() Config {
	return Config{
		Dir:                   "logs",
		Level:                 "info",
		AppName:               "yogan-chat",
		Encoding:              "json",
		EnableConsole:         true,
		EnableFile:            true,
		EnableLevelInFilename: true,
		EnableDateInFilename:  true,
		DateFormat:            "2006-01-02",
		MaxSize:               100,
		MaxBackups:            3,
		MaxAge:                28,
		Compress:              true,
		EnableCaller:          true,
		EnableStacktrace:      true,
		StacktraceLevel:       "error",
		EnableTraceID:         true,
		TraceIDKey:            "trace_id",
		TraceIDFieldName:      "trace_id",
	}
}

// ApplyDefaults fills zero-valued fields in place.
// Booleans are left untouched: an unset bool cannot be told apart from false.
func (c *Config) ApplyDefaults() {
	d := DefaultConfig()
	if c.Dir == "" {
		c.Dir = d.Dir
	}
	if c.Level == "" {
		c.Level = d.Level
	}
	if c.Encoding == "" {
		c.Encoding = d.Encoding
	}
	if c.DateFormat == "" {
		c.DateFormat = d.DateFormat
	}
	if c.StacktraceLevel == "" {
		c.StacktraceLevel = d.StacktraceLevel
	}
	if c.TraceIDKey == "" {
		c.TraceIDKey = d.TraceIDKey
	}
	if c.TraceIDFieldName == "" {
		c.TraceIDFieldName = d.TraceIDFieldName
	}
	if c.MaxSize == 0 {
		c.MaxSize = d.MaxSize
	}
	if c.MaxBackups == 0 {
		c.MaxBackups = d.MaxBackups
	}
	if c.MaxAge == 0 {
		c.MaxAge = d.MaxAge
	}
}

// Validate checks enumerations and ranges
func (c Config) Validate() error {
	if !slices.Contains(validLevels, c.Level) {
		return fmt.Errorf("[Logger] invalid level %q (valid: %v)", c.Level, validLevels)
	}
	if !slices.Contains(validEncodings, c.Encoding) {
		return fmt.Errorf("[Logger] invalid encoding %q (valid: %v)", c.Encoding, validEncodings)
	}
	if c.ConsoleEncoding != "" && !slices.Contains(validEncodings, c.ConsoleEncoding) {
		return fmt.Errorf("[Logger] invalid console encoding %q", c.ConsoleEncoding)
	}
	if c.MaxSize < 1 || c.MaxSize > 10000 {
		return fmt.Errorf("[Logger] max_size must be between 1-10000 MB, current: %d", c.MaxSize)
	}
	if c.MaxBackups < 0 || c.MaxBackups > 1000 {
		return fmt.Errorf("[Logger] max_backups must be between 0-1000, current: %d", c.MaxBackups)
	}
	if c.MaxAge < 0 || c.MaxAge > 3650 {
		return fmt.Errorf("[Logger] max_age must be between 0-3650 days, current: %d", c.MaxAge)
	}
	if c.EnableFile && c.Dir == "" {
		return fmt.Errorf("[Logger] dir cannot be empty when file output is enabled")
	}
	if c.EnableDateInFilename && c.DateFormat == "" {
		return fmt.Errorf("[Logger] date_format is required when enable_date_in_filename is set")
	}
	return nil
}

// ParseLevel converts a level name, falling back to info
func ParseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

// filePath builds logs/{module}/{module}[-level][-date].log
func (c Config) filePath(module, level string) string {
	parts := []string{module}
	if c.EnableLevelInFilename {
		parts = append(parts, level)
	}
	if c.EnableDateInFilename {
		parts = append(parts, time.Now().Format(c.DateFormat))
	}
	return filepath.Join(c.Dir, module, strings.Join(parts, "-")+".log")
}
