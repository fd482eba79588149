package internal_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/redgreen/internal"
)

func TestNewTestLogger(t *testing.T) {
	ctx := context.Background()

	t.Run("silent without a level", func(t *testing.T) {
		logger := internal.NewTestLogger("")
		gt.False(t, logger.Enabled(ctx, slog.LevelError))
	})

	t.Run("silent on unknown level", func(t *testing.T) {
		logger := internal.NewTestLogger("verbose")
		gt.False(t, logger.Enabled(ctx, slog.LevelError))
	})

	t.Run("debug by name", func(t *testing.T) {
		logger := internal.NewTestLogger("debug")
		gt.True(t, logger.Enabled(ctx, slog.LevelDebug))
	})

	t.Run("legacy flag means debug", func(t *testing.T) {
		logger := internal.NewTestLogger("1")
		gt.True(t, logger.Enabled(ctx, slog.LevelDebug))
	})

	t.Run("warn filters info", func(t *testing.T) {
		logger := internal.NewTestLogger("warn")
		gt.True(t, logger.Enabled(ctx, slog.LevelWarn))
		gt.False(t, logger.Enabled(ctx, slog.LevelInfo))
	})
}
