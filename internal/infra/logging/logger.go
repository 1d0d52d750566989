// Package logging configures structured logging for jukeboard.
// Records go to stderr and, when a log file is configured, to an
// append-only file as well.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Logger wraps slog.Logger with optional file output.
type Logger struct {
	*slog.Logger
	file *os.File
}

// New creates a Logger writing to stderr at the given level. When path is
// non-empty the same records are appended to that file.
func New(path string, level slog.Level) (*Logger, error) {
	var w io.Writer = os.Stderr
	var file *os.File

	if path != "" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("create log directory: %w", err)
			}
		}
		// G302: Log files are append-only and need read access by repository users
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640) //nolint:gosec // Log file readable by owner and group
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		file = f
		w = io.MultiWriter(os.Stderr, f)
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return &Logger{Logger: slog.New(handler), file: file}, nil
}

// Discard returns a logger that drops all records.
func Discard() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// ParseLevel parses a log level string into slog.Level.
func ParseLevel(levelStr string) slog.Level {
	switch levelStr {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Close closes the log file if one is open.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}
