// Package logging builds the charmbracelet/log logger shared by every
// package. The TUI owns the terminal, so output normally goes to a file.
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

var ErrInvalidFormat = errors.New("logging: unknown format")

type Options struct {
	Level  string
	Format string
	// File is the log destination. "-" means stderr, "" discards output.
	File   string
	Prefix string
}

// ParseFormatter maps text, json and logfmt onto log formatters.
func ParseFormatter(raw string) (log.Formatter, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "text":
		return log.TextFormatter, nil
	case "json":
		return log.JSONFormatter, nil
	case "logfmt":
		return log.LogfmtFormatter, nil
	default:
		return log.TextFormatter, fmt.Errorf("%w: %q", ErrInvalidFormat, raw)
	}
}

// New opens the destination and returns the logger plus a closer for it.
func New(opts Options) (*log.Logger, io.Closer, error) {
	level, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(opts.Level)))
	if err != nil {
		return nil, nil, fmt.Errorf("logging: level %q: %w", opts.Level, err)
	}
	formatter, err := ParseFormatter(opts.Format)
	if err != nil {
		return nil, nil, err
	}

	var (
		out    io.Writer = io.Discard
		closer io.Closer = nopCloser{}
	)
	switch opts.File {
	case "":
	case "-":
		out = os.Stderr
	default:
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, nil, fmt.Errorf("logging: create log dir: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("logging: open %s: %w", opts.File, err)
		}
		out, closer = f, f
	}

	prefix := opts.Prefix
	if prefix == "" {
		prefix = "daytodo"
	}
	logger := log.NewWithOptions(out, log.Options{
		Level:           level,
		Formatter:       formatter,
		ReportTimestamp: true,
		Prefix:          prefix,
	})
	return logger, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
