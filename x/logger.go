package x

import (
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with the field names used across this module.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger with the given handler.
// If handler is nil, uses a text handler to stderr at info level.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger discards everything.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	}))
}

// WithComponent tags every record with the emitting component.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("component", name),
	}
}

// LogBlockAlloc logs a new arena block.
func (l *Logger) LogBlockAlloc(size int, dedicated bool, blocks int, usage int64) {
	l.Debug("arena block allocated",
		"size", size,
		"dedicated", dedicated,
		"blocks", blocks,
		"memory_usage", usage,
	)
}

// LogHeightGrowth logs an increase of a skiplist's maximum height.
func (l *Logger) LogHeightGrowth(from, to int, entries int64) {
	l.Debug("skiplist height raised",
		"from", from,
		"to", to,
		"entries", entries,
	)
}
