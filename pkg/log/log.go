// Package log configures the process-wide slog logger.
package log

import (
	"log/slog"
	"os"
	"strings"
)

// Setup installs the default text logger at the given level. Levels are
// matched case-insensitively and unknown values fall back to info with a
// warning, so a typo in LOG_LEVEL never silences the process.
func Setup(logLevel string) {
	level := slog.LevelInfo
	known := true

	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "info", "":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		known = false
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))

	if !known {
		slog.Warn("unknown log level, using info", "log_level", logLevel)
	}
}

// WithModule returns a logger tagged with the subsystem it serves, e.g.
// "services" or "persistence".
func WithModule(module string) *slog.Logger {
	return slog.With("module", module)
}
