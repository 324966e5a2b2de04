// Package logging sets up the zerolog logger. The terminal belongs to the
// UI, so logs go to a file.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// New returns a logger writing JSON lines to w at the given level.
// Unknown levels fall back to info.
func New(w io.Writer, level string, debug bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	if debug {
		lvl = zerolog.DebugLevel
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// Open creates the log file's directory, opens it for append and returns a
// logger plus a close func. If the file cannot be opened the logger
// discards everything.
func Open(path, level string, debug bool) (zerolog.Logger, func() error) {
	noop := func() error { return nil }
	if path == "" {
		return zerolog.Nop(), noop
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return zerolog.Nop(), noop
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return zerolog.Nop(), noop
	}
	return New(f, level, debug), f.Close
}
