package log

import (
	"io"
	"time"

	"github.com/rs/zerolog"

	logAdapter "github.com/bft-labs/extauth/internal/adapters/log"
	"github.com/bft-labs/extauth/internal/ports"
)

// Logger provides structured logging capabilities.
type Logger = ports.Logger

// Field represents a key-value pair for structured logging.
type Field = ports.Field

// String creates a string field.
func String(key, value string) Field { return ports.String(key, value) }

// Int creates an int field.
func Int(key string, value int) Field { return ports.Int(key, value) }

// Bool creates a bool field.
func Bool(key string, value bool) Field { return ports.Bool(key, value) }

// Duration creates a duration field.
func Duration(key string, value time.Duration) Field { return ports.Duration(key, value) }

// Err creates an error field with key "error".
func Err(err error) Field { return ports.Err(err) }

// Any creates a field with any value.
func Any(key string, value interface{}) Field { return ports.Any(key, value) }

// NewZerologAdapter creates a zerolog-backed Logger writing plain console
// lines to w, tagged with the process id.
func NewZerologAdapter(w io.Writer, debug bool) Logger {
	return logAdapter.NewZerologAdapterWithLogger(logAdapter.NewZerologLogger(w, debug))
}

// NewZerologAdapterWithLogger wraps an existing zerolog.Logger.
func NewZerologAdapterWithLogger(logger zerolog.Logger) Logger {
	return logAdapter.NewZerologAdapterWithLogger(logger)
}

// NewNoopLogger returns a Logger that discards everything.
func NewNoopLogger() Logger {
	return logAdapter.NewNoopLogger()
}
