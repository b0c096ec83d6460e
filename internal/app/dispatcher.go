package app

import (
	"context"
	"fmt"

	"github.com/bft-labs/extauth/internal/domain"
	"github.com/bft-labs/extauth/internal/ports"
)

// Dispatcher routes parsed commands to the backend and reduces the outcome
// to the boolean the host expects. Anything that is not a clear yes from the
// backend is answered false.
type Dispatcher struct {
	backend ports.Backend
	logger  ports.Logger
}

// NewDispatcher creates a dispatcher over backend.
func NewDispatcher(backend ports.Backend, logger ports.Logger) *Dispatcher {
	return &Dispatcher{backend: backend, logger: logger}
}

// Dispatch executes cmd and returns the reply value.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd domain.Command) bool {
	if cmd.Kind == domain.CommandUnknown {
		d.logger.Warn("unhandled command",
			ports.String("verb", cmd.Verb),
			ports.Int("fields", len(cmd.Fields)-1),
		)
		return false
	}

	d.logger.Debug("processing command",
		ports.String("verb", cmd.Kind.String()),
		ports.String("jid", cmd.JID()),
	)

	res := d.call(ctx, cmd)
	switch {
	case res.Err != nil:
		d.logger.Error("backend call failed",
			ports.String("verb", cmd.Kind.String()),
			ports.String("jid", cmd.JID()),
			ports.String("reason", res.Message),
			ports.Err(res.Err),
		)
	case res.Denied() && res.Message != "":
		d.logger.Warn("backend returned without success",
			ports.String("verb", cmd.Kind.String()),
			ports.String("jid", cmd.JID()),
			ports.String("reason", res.Message),
		)
	}

	d.logger.Debug("returning result",
		ports.String("verb", cmd.Kind.String()),
		ports.Bool("success", res.Success),
	)
	return res.Success
}

// call invokes the backend operation for cmd, turning a panic into a failure.
func (d *Dispatcher) call(ctx context.Context, cmd domain.Command) (res domain.BackendResult) {
	defer func() {
		if r := recover(); r != nil {
			res = domain.Failure(fmt.Errorf("%w: %v", domain.ErrBackendPanic, r))
		}
	}()

	switch cmd.Kind {
	case domain.CommandAuth:
		res = d.backend.Authenticate(ctx, cmd.User, cmd.Domain, cmd.Password)
	case domain.CommandIsUser:
		res = d.backend.Exists(ctx, cmd.User, cmd.Domain)
	case domain.CommandSetPass:
		res = d.backend.SetPassword(ctx, cmd.User, cmd.Domain, cmd.Password)
	default:
		res = domain.Failure(fmt.Errorf("no backend operation for %s", cmd.Kind))
	}

	// a failure result must never read as success
	if res.Err != nil {
		res.Success = false
	}
	return res
}
