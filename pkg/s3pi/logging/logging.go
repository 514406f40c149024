// Package logging configures the logger handles used throughout s3pi.
//
// There is no global logger: each component receives its handle through
// its constructor, so tests can substitute a silent one.
//
// Basic usage:
//
//	logger := logging.New(logging.Config{Verbose: true})
//	planner := planner.New(store, prefix, strategy, logging.ForComponent(logger, "planner"))
package logging

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// Config configures a root logger.
type Config struct {
	// Verbose lowers the level from info to debug.
	Verbose bool

	// Writer overrides the output destination. Nil means stderr.
	Writer io.Writer
}

// New returns a root logger configured for console output. Debug
// messages are emitted only when Verbose is set; error messages are
// always emitted.
func New(cfg Config) *log.Logger {
	level := log.InfoLevel
	if cfg.Verbose {
		level = log.DebugLevel
	}

	w := cfg.Writer
	if w == nil {
		w = os.Stderr
	}

	return log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
	})
}

// ForComponent returns a child logger prefixed with the component name.
func ForComponent(logger *log.Logger, component string) *log.Logger {
	return logger.WithPrefix(component)
}

// Discard returns a logger that drops everything. Intended for tests.
func Discard() *log.Logger {
	return log.New(io.Discard)
}
