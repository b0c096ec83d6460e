package domain

import "errors"

// Domain errors represent error conditions in the extauth domain.
// They are checked with errors.Is.
var (
	// ErrStreamClosed is returned when the host closes the stream on a frame
	// boundary. It is the normal way the bridge terminates.
	ErrStreamClosed = errors.New("extauth: stream closed")

	// ErrShortRead is returned when the stream ends inside a header or payload.
	// Framing cannot be resynchronized after it.
	ErrShortRead = errors.New("extauth: short read")

	// ErrAlreadyRunning is returned when Run is called on a loop that is running.
	ErrAlreadyRunning = errors.New("extauth: already running")

	// ErrTerminated is returned when Run is called on a terminated loop.
	ErrTerminated = errors.New("extauth: terminated")

	// ErrShutdownTimeout is returned when an in-flight request outlives shutdown.
	ErrShutdownTimeout = errors.New("extauth: shutdown timeout")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("extauth: invalid configuration")

	// ErrBackendStatus is returned when the backend answers with a non-2xx status.
	ErrBackendStatus = errors.New("extauth: backend status")

	// ErrBackendResponse is returned when the backend body cannot be interpreted.
	ErrBackendResponse = errors.New("extauth: malformed backend response")

	// ErrBackendPanic is returned when a backend call panicked.
	ErrBackendPanic = errors.New("extauth: backend panic")
)
