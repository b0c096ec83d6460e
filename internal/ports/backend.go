package ports

import (
	"context"

	"github.com/bft-labs/extauth/internal/domain"
)

// Backend is the identity service the bridge delegates credential checks to.
//
// Implementations must never return a result that hides a fault: any
// transport or decoding failure is reported as a BackendResult with Err set
// and Success false. Every call must be bounded in time.
type Backend interface {
	// Authenticate checks the password of user@server.
	Authenticate(ctx context.Context, user, server, password string) domain.BackendResult

	// Exists reports whether user@server is a known account.
	Exists(ctx context.Context, user, server string) domain.BackendResult

	// SetPassword replaces the password of user@server.
	SetPassword(ctx context.Context, user, server, password string) domain.BackendResult
}
