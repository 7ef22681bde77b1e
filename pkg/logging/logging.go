// Package logging defines the small logging seam shared by the form, store
// and persistence components. Callers plug in their own sink through Logger;
// Slog adapts a *slog.Logger.
package logging

import (
	"context"
	"log/slog"
	"time"
)

// Event describes one operation worth recording.
type Event struct {
	Component string
	Op        string
	Key       string
	Duration  time.Duration
	Err       error
	Fields    map[string]any
}

// Logger records events.
type Logger interface {
	Log(Event)
}

// Func adapts a function to Logger.
type Func func(Event)

// Log implements Logger.
func (f Func) Log(event Event) {
	if f != nil {
		f(event)
	}
}

type noop struct{}

func (noop) Log(Event) {}

// Noop returns a Logger that drops every event.
func Noop() Logger {
	return noop{}
}

// OrNoop returns logger, or Noop when logger is nil.
func OrNoop(logger Logger) Logger {
	if logger == nil {
		return noop{}
	}
	return logger
}

// Slog forwards events to logger. Events carrying an error are logged at warn
// level, everything else at debug.
func Slog(logger *slog.Logger) Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return slogLogger{logger: logger}
}

type slogLogger struct {
	logger *slog.Logger
}

func (l slogLogger) Log(event Event) {
	attrs := make([]slog.Attr, 0, 5+len(event.Fields))
	attrs = append(attrs, slog.String("component", event.Component))
	if event.Key != "" {
		attrs = append(attrs, slog.String("key", event.Key))
	}
	if event.Duration > 0 {
		attrs = append(attrs, slog.Duration("duration", event.Duration))
	}
	for name, value := range event.Fields {
		attrs = append(attrs, slog.Any(name, value))
	}

	level := slog.LevelDebug
	if event.Err != nil {
		level = slog.LevelWarn
		attrs = append(attrs, slog.String("error", event.Err.Error()))
	}
	l.logger.LogAttrs(context.Background(), level, event.Op, attrs...)
}
