// Package logging configures structured logging for karman using log/slog.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Level maps the verbosity flags to a slog level.
//
//   - quiet mode:   only WARN and ERROR messages
//   - normal mode:  INFO and above
//   - verbose mode: DEBUG and above
//
// Quiet wins when both are set.
func Level(verbose, quiet bool) slog.Level {
	switch {
	case quiet:
		return slog.LevelWarn
	case verbose:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// Setup installs a text handler writing to w as the default logger and
// returns it.
func Setup(w io.Writer, verbose, quiet bool) *slog.Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: Level(verbose, quiet),
	})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// SetupFile is Setup writing to the file at path, which is created or
// appended to. The returned close function flushes nothing and only closes
// the file. The TUI uses it so log lines do not corrupt the screen.
func SetupFile(path string, verbose, quiet bool) (*slog.Logger, func() error, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600) //nolint:gosec // path is a CLI flag
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return Setup(f, verbose, quiet), f.Close, nil
}
