package extauth

import (
	"net/http"

	"github.com/bft-labs/extauth/internal/ports"
)

// HTTPClient is the interface for making HTTP requests.
// *http.Client satisfies this interface.
type HTTPClient = ports.HTTPClient

// Logger is the interface for structured logging.
type Logger = ports.Logger

// LogField represents a structured log field.
type LogField = ports.Field

// Backend answers the three host operations. Use WithBackend to replace the
// HTTP backend.
type Backend = ports.Backend

// Option configures optional behavior of a Bridge.
type Option func(*options)

type options struct {
	httpClient   ports.HTTPClient
	logger       ports.Logger
	eventHandler EventHandler
	backend      ports.Backend
}

func defaultOptions(client *http.Client) options {
	return options{
		httpClient: client,
		logger:     noopLogger{},
	}
}

// WithHTTPClient sets the HTTP client used to reach the backend.
// If not provided, a client with Config.Timeout is used.
func WithHTTPClient(client HTTPClient) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithLogger sets a logger. If not provided, nothing is logged.
// Passwords are never logged.
func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithEventHandler sets a handler for bridge events.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}

// WithBackend replaces the HTTP backend. The HTTP client option and the
// backend fields of Config are then unused.
func WithBackend(backend Backend) Option {
	return func(o *options) {
		o.backend = backend
	}
}

// noopLogger discards all log messages.
type noopLogger struct{}

func (noopLogger) Debug(msg string, fields ...ports.Field) {}
func (noopLogger) Info(msg string, fields ...ports.Field)  {}
func (noopLogger) Warn(msg string, fields ...ports.Field)  {}
func (noopLogger) Error(msg string, fields ...ports.Field) {}
