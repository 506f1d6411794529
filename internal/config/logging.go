package config

import (
	"io"
	"log/slog"
	"os"
)

// NewLogger builds the process logger from the logging configuration.
// verbose forces debug level over the configured one.
func (c LoggingConfig) NewLogger(verbose bool) *slog.Logger {
	return slog.New(c.handler(c.writer(), verbose))
}

func (c LoggingConfig) writer() io.Writer {
	if c.Output == "stdout" {
		return os.Stdout
	}
	return os.Stderr
}

func (c LoggingConfig) handler(w io.Writer, verbose bool) slog.Handler {
	level := slog.LevelInfo
	switch c.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}
