// Package logger wraps zerolog behind the small surface the rest of
// the codebase uses: a process-wide level, console output on stderr,
// and component-scoped sub-loggers.
package logger

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var root = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
	With().Timestamp().Logger()

// ParseLevel converts a case-insensitive string to a zerolog level.
// Accepted: trace, debug, info, warn, error, fatal, panic.
func ParseLevel(s string) (zerolog.Level, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return zerolog.InfoLevel, fmt.Errorf("unknown log level %q (valid: trace, debug, info, warn, error, fatal, panic)", s)
	}
	return level, nil
}

// SetLevel sets the global minimum level.
func SetLevel(level zerolog.Level) {
	zerolog.SetGlobalLevel(level)
}

// With returns a sub-logger tagged with a component name.
func With(component string) zerolog.Logger {
	return root.With().Str("component", component).Logger()
}

// Log returns the root logger.
func Log() zerolog.Logger {
	return root
}
