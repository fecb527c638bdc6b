// SPDX-License-Identifier: MPL-2.0

// Package logging constructs the shared application logger.
//
// Loggers write human-readable output to stderr and can optionally tee
// to a file inside the workspace logs directory. The level defaults to
// info and can be raised via the LOG_LEVEL environment variable, which
// mirrors the key materialized into the workspace settings file.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
)

// EnvLevel is the environment variable consulted for the log level.
const EnvLevel = "LOG_LEVEL"

// Options configures logger construction.
type Options struct {
	// Prefix is the logger prefix shown on every line (default: "ragkit").
	Prefix string
	// Verbose forces debug level regardless of LOG_LEVEL.
	Verbose bool
	// LogDir, when non-empty, tees output to a timestamped file in that
	// directory. The directory must already exist.
	LogDir string
}

// New constructs a logger according to opts. When opts.LogDir is set and
// the log file cannot be created, the logger falls back to stderr only
// and the error is returned alongside the usable logger.
func New(opts Options) (*log.Logger, error) {
	if opts.Prefix == "" {
		opts.Prefix = "ragkit"
	}

	var w io.Writer = os.Stderr
	var fileErr error
	if opts.LogDir != "" {
		name := fmt.Sprintf("ragkit_%s.log", time.Now().Format("20060102_150405"))
		f, err := os.OpenFile(filepath.Join(opts.LogDir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fileErr = fmt.Errorf("failed to open log file: %w", err)
		} else {
			w = io.MultiWriter(os.Stderr, f)
		}
	}

	logger := log.NewWithOptions(w, log.Options{
		Prefix:          opts.Prefix,
		ReportTimestamp: true,
	})
	logger.SetLevel(resolveLevel(opts.Verbose))

	return logger, fileErr
}

// resolveLevel maps LOG_LEVEL onto a charm log level. Verbose wins over
// the environment; unknown values fall back to info.
func resolveLevel(verbose bool) log.Level {
	if verbose {
		return log.DebugLevel
	}
	if raw := os.Getenv(EnvLevel); raw != "" {
		if lvl, err := log.ParseLevel(raw); err == nil {
			return lvl
		}
	}
	return log.InfoLevel
}
