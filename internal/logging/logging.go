// Package logging builds the structured loggers used across the engine.
package logging

import (
	"io"
	"log/slog"
	"strings"
)

// New creates a JSON slog logger writing to w at the named level. Supported
// levels: "debug", "info", "warn", "error"; anything else means "info".
func New(w io.Writer, level string) *slog.Logger {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: l}))
}
