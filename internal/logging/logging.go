// SPDX-License-Identifier: MPL-2.0

// Package logging builds the process logger. Records are rendered by
// charmbracelet/log and handed to library packages as a *slog.Logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/log"
)

const (
	// LevelDebug shows per-file ingestion details.
	LevelDebug Level = "debug"
	// LevelInfo shows pipeline milestones.
	LevelInfo Level = "info"
	// LevelWarn shows recoverable problems only. This is the default.
	LevelWarn Level = "warn"
	// LevelError shows failures only.
	LevelError Level = "error"
)

// Level is a log verbosity name as it appears in configuration.
type Level string

// Options configures New.
type Options struct {
	// Level is the minimum level to emit. Empty means LevelWarn.
	Level Level
	// Verbose forces LevelDebug regardless of Level.
	Verbose bool
	// Prefix is printed before every record.
	Prefix string
}

// New creates a logger writing to w.
func New(w io.Writer, opts Options) (*slog.Logger, error) {
	lvl, err := opts.Level.charmLevel()
	if err != nil {
		return nil, err
	}
	if opts.Verbose {
		lvl = log.DebugLevel
	}

	handler := log.NewWithOptions(w, log.Options{
		Prefix:          opts.Prefix,
		Level:           lvl,
		ReportTimestamp: opts.Verbose,
		TimeFormat:      "15:04:05",
	})
	return slog.New(handler), nil
}

// Validate reports whether l names a known level. The empty level is valid.
func (l Level) Validate() error {
	_, err := l.charmLevel()
	return err
}

func (l Level) charmLevel() (log.Level, error) {
	switch Level(strings.ToLower(string(l))) {
	case "":
		return log.WarnLevel, nil
	case LevelDebug:
		return log.DebugLevel, nil
	case LevelInfo:
		return log.InfoLevel, nil
	case LevelWarn:
		return log.WarnLevel, nil
	case LevelError:
		return log.ErrorLevel, nil
	default:
		return 0, fmt.Errorf("unknown log level %q (want debug, info, warn or error)", string(l))
	}
}
