package blockloc

import (
	"context"
	"log/slog"
	"os"

	"github.com/hupe1980/blockloc/iostats"
)

// Logger wraps slog.Logger with blockloc-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
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

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithFD adds a file descriptor field to the logger.
func (l *Logger) WithFD(fd int64) *Logger {
	return &Logger{
		Logger: l.Logger.With("fd", fd),
	}
}

// WithPath adds a path field to the logger.
func (l *Logger) WithPath(path string) *Logger {
	return &Logger{
		Logger: l.Logger.With("path", path),
	}
}

// LogOpen logs a stream open.
func (l *Logger) LogOpen(ctx context.Context, path string, fd int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "open failed",
			"path", path,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "stream opened",
		"path", path,
		"fd", fd,
	)
}

// LogResolve logs a block location lookup.
func (l *Logger) LogResolve(ctx context.Context, block int64, cached bool, err error) {
	if err != nil {
		l.WarnContext(ctx, "resolve failed",
			"block", block,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "block resolved",
		"block", block,
		"cached", cached,
	)
}

// LogClose logs a stream close with its merged statistics and the number of
// block locations dropped from the cache.
func (l *Logger) LogClose(ctx context.Context, stats *iostats.Statistics, locations int) {
	l.DebugContext(ctx, "stream closed",
		"locations", locations,
		"stats", stats.Describe(),
	)
}

// LogStatistics logs a statistics provider at info level.
func (l *Logger) LogStatistics(ctx context.Context, p iostats.Provider) {
	l.InfoContext(ctx, "statistics",
		"provider", p.ProviderName(),
		"stats", p.Describe(),
	)
}
