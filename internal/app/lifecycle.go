package app

import (
	"sync"
	"time"

	"github.com/bft-labs/extauth/internal/domain"
	"github.com/bft-labs/extauth/internal/ports"
)

// ShutdownTimeout is the maximum time to wait for an in-flight request to be
// answered after shutdown was requested.
const ShutdownTimeout = 30 * time.Second

// State represents the lifecycle state of the loop.
type State int

const (
	StateRunning State = iota
	StateTerminated
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateRunning:
		return "Running"
	case StateTerminated:
		return "Terminated"
	default:
		return "Unknown"
	}
}

// EventEmitter is called when the lifecycle state changes.
type EventEmitter interface {
	OnStateChange(previous, current State, reason string)
}

// Lifecycle tracks the Running -> Terminated state machine of a loop.
// Terminated is final.
type Lifecycle struct {
	mu           sync.RWMutex
	state        State
	reason       string
	logger       ports.Logger
	eventEmitter EventEmitter
}

// NewLifecycle creates a lifecycle in StateRunning.
func NewLifecycle(logger ports.Logger, emitter EventEmitter) *Lifecycle {
	return &Lifecycle{
		state:        StateRunning,
		logger:       logger,
		eventEmitter: emitter,
	}
}

// State returns the current lifecycle state.
func (l *Lifecycle) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// Reason returns why the lifecycle terminated, or "" while running.
func (l *Lifecycle) Reason() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.reason
}

// Terminate moves to StateTerminated.
// Returns domain.ErrTerminated if it already terminated.
func (l *Lifecycle) Terminate(reason string) error {
	l.mu.Lock()
	oldState := l.state
	if oldState == StateTerminated {
		l.mu.Unlock()
		return domain.ErrTerminated
	}
	l.state = StateTerminated
	l.reason = reason
	l.mu.Unlock()

	// Emit event outside of lock
	if l.eventEmitter != nil {
		l.eventEmitter.OnStateChange(oldState, StateTerminated, reason)
	}

	l.logger.Info("state transition",
		ports.String("from", oldState.String()),
		ports.String("to", StateTerminated.String()),
		ports.String("reason", reason),
	)
	return nil
}
