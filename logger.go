package gibbsgo

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with gibbsgo-specific context.
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
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithRun adds the run id to the logger.
func (l *Logger) WithRun(runID string) *Logger {
	return &Logger{
		Logger: l.Logger.With("run", runID),
	}
}

// WithComponent adds a component field to the logger.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("component", name),
	}
}

// LogModelLoad logs a model load operation.
func (l *Logger) LogModelLoad(ctx context.Context, path string, variables, factors int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "model load failed",
			"path", path,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "model loaded",
			"path", path,
			"variables", variables,
			"factors", factors,
		)
	}
}

// LogGraphBuild logs a clique-graph construction.
func (l *Logger) LogGraphBuild(ctx context.Context, vertices, edges int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "graph build failed",
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "graph built",
			"vertices", vertices,
			"edges", edges,
		)
	}
}

// LogCheckpoint logs a checkpoint save.
func (l *Logger) LogCheckpoint(ctx context.Context, key string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "checkpoint failed",
			"key", key,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "checkpoint saved",
			"key", key,
		)
	}
}

// LogRestore logs a checkpoint restore.
func (l *Logger) LogRestore(ctx context.Context, key string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "restore failed",
			"key", key,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "checkpoint restored",
			"key", key,
		)
	}
}

// LogReport logs a report export.
func (l *Logger) LogReport(ctx context.Context, name string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "report export failed",
			"name", name,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "report exported",
			"name", name,
		)
	}
}
