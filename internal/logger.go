package internal

import (
	"log/slog"
	"os"
	"strings"
)

var testLogger = newTestLogger(os.Getenv("REDGREEN_TEST_LOG"))

// TestLogger returns the logger used by tests. Logging is off unless
// REDGREEN_TEST_LOG names a level (debug, info, warn, error); "1" is
// accepted as an alias for debug.
func TestLogger() *slog.Logger {
	return testLogger
}

func newTestLogger(level string) *slog.Logger {
	var lv slog.Level
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug", "1":
		lv = slog.LevelDebug
	case "info":
		lv = slog.LevelInfo
	case "warn":
		lv = slog.LevelWarn
	case "error":
		lv = slog.LevelError
	default:
		return slog.New(slog.DiscardHandler)
	}

	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lv}))
}
