package logger

import "strings"

// GinLogWriter adapts gin's text output (gin.DefaultWriter / DefaultErrorWriter) to a module logger
type GinLogWriter struct {
	log *CtxZapLogger
}

func NewGinLogWriter(log *CtxZapLogger) *GinLogWriter {
	return &GinLogWriter{log: log}
}

// Write implements io.Writer
func (w *GinLogWriter) Write(p []byte) (int, error) {
	msg := strings.TrimSpace(string(p))
	if msg == "" {
		return len(p), nil
	}
	switch {
	case strings.Contains(msg, "[GIN-debug]"):
		w.log.Debug(msg)
	case strings.Contains(msg, "[Recovery]"), strings.Contains(msg, "panic recovered"):
		w.log.Error(msg)
	default:
		w.log.Info(msg)
	}
	return len(p), nil
}
