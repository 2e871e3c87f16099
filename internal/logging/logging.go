// Package logging configures the process-wide slog logger.
// Diagnostics go to stderr so that stdout stays reserved for command output.
package logging

import (
	"io"
	"log/slog"
	"os"
	"sync"
)

var (
	mu      sync.Mutex
	level   = new(slog.LevelVar)
	output  io.Writer = os.Stderr
	current *slog.Logger
)

func init() {
	level.Set(slog.LevelWarn)
	install()
}

func install() {
	current = slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(current)
}

// SetVerbose switches the logger between debug and warning level.
func SetVerbose(v bool) {
	if v {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelWarn)
	}
}

// IsVerbose reports whether debug logging is enabled.
func IsVerbose() bool {
	return level.Level() <= slog.LevelDebug
}

// SetOutput redirects log output. Defaults to os.Stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	install()
}

// Logger returns the configured logger.
func Logger() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return current
}
