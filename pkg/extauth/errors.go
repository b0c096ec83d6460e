package extauth

import "github.com/bft-labs/extauth/internal/domain"

// Errors returned by a Bridge. Compare with errors.Is.
var (
	ErrShortRead       = domain.ErrShortRead
	ErrAlreadyRunning  = domain.ErrAlreadyRunning
	ErrTerminated      = domain.ErrTerminated
	ErrShutdownTimeout = domain.ErrShutdownTimeout
	ErrInvalidConfig   = domain.ErrInvalidConfig
)
