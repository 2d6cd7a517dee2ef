package main

import (
	"io"
	"log/slog"
	"os"
)

// NewLogger returns a structured slog.Logger with the given level.
func NewLogger(level slog.Leveler) *slog.Logger { return newLoggerTo(os.Stdout, level) }

// newLoggerTo writes JSON records to w. Headless runs log to stderr so stdout
// carries only the diagnosis.
func newLoggerTo(w io.Writer, level slog.Leveler) *slog.Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(h)
}
