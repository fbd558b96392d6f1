package annrecall

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with annrecall-specific context.
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

// WithTrial adds a trial index field to the logger.
func (l *Logger) WithTrial(trial int) *Logger {
	return &Logger{
		Logger: l.Logger.With("trial", trial),
	}
}

// WithK adds a k (neighbor count) field to the logger.
func (l *Logger) WithK(k int) *Logger {
	return &Logger{
		Logger: l.Logger.With("k", k),
	}
}

// WithDimension adds a dimension field to the logger.
func (l *Logger) WithDimension(dim int) *Logger {
	return &Logger{
		Logger: l.Logger.With("dimension", dim),
	}
}

// LogRunStart logs the configuration of a run before trials are dispatched.
func (l *Logger) LogRunStart(ctx context.Context, cfg Config, vectors, workers int) {
	l.InfoContext(ctx, "evaluation started",
		"metric", cfg.Metric.String(),
		"selector", cfg.Selector.String(),
		"trials", cfg.NumTrials,
		"recall_levels", cfg.RecallLevels,
		"search_effort", cfg.SearchEffort,
		"base_seed", cfg.BaseSeed,
		"vectors", vectors,
		"workers", workers,
	)
}

// LogTrial logs a single trial.
func (l *Logger) LogTrial(ctx context.Context, trial int, seed uint64, queryID uint32, scores []float64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "trial failed",
			"trial", trial,
			"seed", seed,
			"query_id", queryID,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "trial completed",
		"trial", trial,
		"seed", seed,
		"query_id", queryID,
		"scores", scores,
	)
}

// LogProgress logs how many trials have finished.
func (l *Logger) LogProgress(ctx context.Context, done, total int) {
	l.InfoContext(ctx, "evaluation progress",
		"done", done,
		"total", total,
	)
}

// LogRun logs the outcome of a whole run.
func (l *Logger) LogRun(ctx context.Context, report *Report, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "evaluation failed",
			"elapsed", elapsed,
			"error", err,
		)
		return
	}
	attrs := make([]any, 0, 2*len(report.Levels)+2)
	attrs = append(attrs, "elapsed", elapsed)
	for _, ls := range report.Levels {
		attrs = append(attrs, slog.Float64(levelKey(ls.Level), ls.Mean))
	}
	l.InfoContext(ctx, "evaluation completed", attrs...)
}
