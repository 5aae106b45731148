// Package observability builds the structured logger and Prometheus metrics
// shared across the pipeline.
package observability

import (
	"log/slog"
	"os"
	"strings"
)

// NewLogger builds an slog.Logger writing to stderr. format selects the
// handler ("json" or "text"); level is one of debug, info, warn, error.
// Unrecognized values fall back to JSON at info.
func NewLogger(level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(format, "text") {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
