// Package logging builds the charmbracelet/log loggers used across wkcal.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// Options holds configuration for a logger.
type Options struct {
	Level           log.Level
	Formatter       log.Formatter
	ReportTimestamp bool
	Prefix          string
}

// DefaultOptions returns the options used by New.
func DefaultOptions() Options {
	return Options{
		Level:     log.InfoLevel,
		Formatter: log.TextFormatter,
		Prefix:    "wkcal",
	}
}

// New returns a logger writing to w at the named level. Unknown levels
// fall back to info.
func New(w io.Writer, level string) *log.Logger {
	opts := DefaultOptions()
	opts.Level = ParseLevel(level)
	return NewWithOptions(w, opts)
}

func NewWithOptions(w io.Writer, opts Options) *log.Logger {
	if w == nil {
		w = io.Discard
	}
	return log.NewWithOptions(w, log.Options{
		Level:           opts.Level,
		Formatter:       opts.Formatter,
		ReportTimestamp: opts.ReportTimestamp,
		Prefix:          opts.Prefix,
	})
}

// ParseLevel maps debug, info, warn and error (any case) to a level.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// Discard returns a logger that writes nothing.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

// OpenFile returns a logger appending to path with timestamps, along with
// the file so the caller can close it. An empty path yields a discarding
// logger and a nil closer.
func OpenFile(path, level string) (*log.Logger, io.Closer, error) {
	if path == "" {
		return Discard(), nil, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, err
	}
	opts := DefaultOptions()
	opts.Level = ParseLevel(level)
	opts.ReportTimestamp = true
	return NewWithOptions(f, opts), f, nil
}
