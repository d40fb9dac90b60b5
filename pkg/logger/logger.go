// Package logger builds the process-wide slog.Logger. Level and format come
// from configuration; the casting and preparation packages log through the
// slog default, so Setup must run before any listings are processed.
package logger

import (
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
)

// New creates a *slog.Logger configured with the given level and format.
// Level: "debug", "info", "warn", "error" (default: "info").
// Format: "json" or "text" (default: "text").
// Output goes to stderr.
func New(level, format string) *slog.Logger {
	return NewWithWriter(os.Stderr, level, format)
}

// NewWithWriter creates a *slog.Logger writing to w.
// Useful for testing or redirecting output.
func NewWithWriter(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// Setup builds a logger and installs it as the slog default so that package
// level warnings emitted during casting and preparation share the configured
// handler. It returns the installed logger.
func Setup(level, format string) *slog.Logger {
	l := New(level, format)
	slog.SetDefault(l)
	return l
}

// ForRun returns a child logger tagged with a fresh run identifier. Every
// posting attempt within one dispatch run carries the same run_id.
func ForRun(l *slog.Logger) (*slog.Logger, string) {
	runID := uuid.NewString()
	return l.With("run_id", runID), runID
}

// ParseLevel converts a level string to slog.Level.
// Recognized values: "debug", "warn", "error". Everything else returns LevelInfo.
func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
