package canopy

import (
	"io"
	"log/slog"
	"os"
)

// Logger is the structured logging contract used by the engine. Arguments
// after the message are alternating keys and values.
type Logger interface {
	Debug(msg string, keyValues ...any)
	Info(msg string, keyValues ...any)
	Warn(msg string, keyValues ...any)
	Error(msg string, keyValues ...any)
}

// slogLogger adapts *slog.Logger to Logger.
type slogLogger struct {
	logger *slog.Logger
	// level is set for the default logger so debug mode can be toggled at
	// runtime; nil for wrapped loggers, whose handler owns the level.
	level *slog.LevelVar
}

// NewSlogLogger wraps an existing slog logger.
func NewSlogLogger(l *slog.Logger) Logger {
	return &slogLogger{logger: l}
}

// newDefaultLogger writes text records to w, at Debug level when debug is set.
func newDefaultLogger(w io.Writer, debug bool) Logger {
	l := &slogLogger{level: new(slog.LevelVar)}
	l.setDebug(debug)
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: l.level})
	l.logger = slog.New(h).With("lib", "canopy")
	return l
}

func defaultLogger(debug bool) Logger {
	return newDefaultLogger(os.Stderr, debug)
}

// debugToggler is implemented by loggers whose level follows debug mode.
type debugToggler interface {
	setDebug(enabled bool)
}

func (l *slogLogger) setDebug(enabled bool) {
	if l.level == nil {
		return
	}
	if enabled {
		l.level.Set(slog.LevelDebug)
	} else {
		l.level.Set(slog.LevelInfo)
	}
}

func (l *slogLogger) Debug(msg string, keyValues ...any) { l.logger.Debug(msg, keyValues...) }
func (l *slogLogger) Info(msg string, keyValues ...any)  { l.logger.Info(msg, keyValues...) }
func (l *slogLogger) Warn(msg string, keyValues ...any)  { l.logger.Warn(msg, keyValues...) }
func (l *slogLogger) Error(msg string, keyValues ...any) { l.logger.Error(msg, keyValues...) }

// nopLogger discards everything.
type nopLogger struct{}

// NopLogger returns a Logger that discards all records.
func NopLogger() Logger { return nopLogger{} }

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
