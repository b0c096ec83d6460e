package extauth

// State represents the state of a Bridge.
type State int

const (
	// StateRunning means the bridge is accepting requests.
	StateRunning State = iota
	// StateTerminated means the loop has exited. It is final.
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

// StateChangeEvent is emitted when the bridge changes state.
type StateChangeEvent struct {
	Previous State
	Current  State
	Reason   string
}

// EventHandler receives bridge events.
// Methods are called synchronously from the loop goroutine and must not block.
type EventHandler interface {
	OnStateChange(event StateChangeEvent)
}

// BaseEventHandler implements EventHandler with no-op methods.
type BaseEventHandler struct{}

// OnStateChange does nothing.
func (BaseEventHandler) OnStateChange(StateChangeEvent) {}
