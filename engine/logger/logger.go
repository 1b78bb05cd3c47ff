// Package logger owns the process-wide structured logger used by every engine subsystem.
// Subsystems derive component loggers from the root via For, so every line carries
// the component that produced it.
package logger

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var (
	once sync.Once
	root *log.Logger
)

// Default returns the root logger, creating it on first use.
//
// Returns:
//   - *log.Logger: the process-wide root logger
func Default() *log.Logger {
	once.Do(func() {
		root = New(os.Stderr, log.InfoLevel)
	})
	return root
}

// New creates a logger writing to w at the given level with the engine's formatting options.
//
// Parameters:
//   - w: destination writer
//   - level: minimum level that is emitted
//
// Returns:
//   - *log.Logger: the configured logger
func New(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          "oxy-xr",
		Level:           level,
	})
}

// For returns a child of the root logger tagged with the component name.
//
// Parameters:
//   - component: the subsystem name attached to every line
//
// Returns:
//   - *log.Logger: the component logger
func For(component string) *log.Logger {
	return Default().With("component", component)
}

// SetLevel parses a textual level ("debug", "info", "warn", "error") and applies it to the root logger.
// Unknown levels leave the current level untouched and return the parse error.
//
// Parameters:
//   - level: textual level name
//
// Returns:
//   - error: the parse error for unknown level names
func SetLevel(level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return err
	}
	Default().SetLevel(lvl)
	return nil
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *log.Logger {
	return New(io.Discard, log.FatalLevel)
}
