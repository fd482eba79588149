package redgreen

import (
	"context"
	"log/slog"
)

type ctxLoggerKey struct{}

var defaultLogger = slog.New(slog.DiscardHandler)

// withRunLogger derives a run-scoped logger carrying the run ID and stores
// it in the context, so every phase of the run logs with the same
// attributes without threading the logger through call signatures.
func withRunLogger(ctx context.Context, base *slog.Logger, runID string) (context.Context, *slog.Logger) {
	logger := base.With("redgreen.run_id", runID)
	return context.WithValue(ctx, ctxLoggerKey{}, logger), logger
}

// LoggerFromContext returns the run-scoped logger, or a discarding logger
// outside of a run.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(ctxLoggerKey{}).(*slog.Logger); ok {
		return logger
	}
	return defaultLogger
}
