package app

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"time"

	"github.com/bft-labs/extauth/internal/domain"
	"github.com/bft-labs/extauth/internal/ports"
	"github.com/bft-labs/extauth/internal/protocol"
)

// Termination reasons reported through the lifecycle.
const (
	ReasonStreamClosed = "stream closed"
	ReasonFramingError = "framing error"
	ReasonWriteError   = "reply write failed"
	ReasonCanceled     = "context canceled"
)

// Stats counts frames handled by a loop.
type Stats struct {
	Frames   uint64
	Accepted uint64
	Rejected uint64
}

// Loop is the synchronous read-dispatch-write cycle between the host and the
// backend. It answers every fully received frame exactly once, in order.
type Loop struct {
	in         io.Reader
	out        io.Writer
	dispatcher *Dispatcher
	logger     ports.Logger
	lifecycle  *Lifecycle

	running  atomic.Bool
	busy     atomic.Bool
	frames   atomic.Uint64
	accepted atomic.Uint64
	rejected atomic.Uint64
}

// NewLoop creates a loop reading requests from in and writing replies to out.
// out is flushed after every reply when it buffers.
func NewLoop(in io.Reader, out io.Writer, dispatcher *Dispatcher, logger ports.Logger, emitter EventEmitter) *Loop {
	return &Loop{
		in:         in,
		out:        out,
		dispatcher: dispatcher,
		logger:     logger,
		lifecycle:  NewLifecycle(logger, emitter),
	}
}

// Run processes frames until the host closes the stream, the framing breaks,
// or ctx is canceled. Cancellation is only observed between frames.
//
// It returns nil on a clean close, ctx.Err() on cancellation, and the read or
// write error otherwise.
func (l *Loop) Run(ctx context.Context) error {
	if l.lifecycle.State() == StateTerminated {
		return domain.ErrTerminated
	}
	if !l.running.CompareAndSwap(false, true) {
		return domain.ErrAlreadyRunning
	}
	defer l.running.Store(false)

	// In-flight backend calls outlive cancellation; the backend bounds them.
	dispatchCtx := context.WithoutCancel(ctx)

	for {
		select {
		case <-ctx.Done():
			l.terminate(ReasonCanceled)
			return ctx.Err()
		default:
		}

		frame, err := protocol.ReadFrame(l.in, l.markBusy)
		if err != nil {
			l.busy.Store(false)
			return l.readFailed(err)
		}

		err = l.serve(dispatchCtx, frame)
		l.busy.Store(false)
		if err != nil {
			return err
		}
	}
}

func (l *Loop) markBusy() {
	l.busy.Store(true)
}

// serve answers one fully received frame.
func (l *Loop) serve(ctx context.Context, frame domain.Frame) error {
	l.frames.Add(1)

	start := time.Now()
	cmd := protocol.Parse(frame.Payload)
	ok := l.dispatcher.Dispatch(ctx, cmd)

	if err := protocol.WriteReply(l.out, ok); err != nil {
		l.logger.Error("failed to write reply", ports.Err(err))
		l.terminate(ReasonWriteError)
		return err
	}

	if ok {
		l.accepted.Add(1)
	} else {
		l.rejected.Add(1)
	}
	l.logger.Debug("replied",
		ports.String("verb", cmd.Kind.String()),
		ports.Int("bytes", int(frame.Length)),
		ports.Bool("success", ok),
		ports.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// readFailed terminates the loop after a header or payload read error.
func (l *Loop) readFailed(err error) error {
	if errors.Is(err, domain.ErrStreamClosed) {
		l.terminate(ReasonStreamClosed)
		return nil
	}
	l.logger.Error("invalid input from host, terminating", ports.Err(err))
	l.terminate(ReasonFramingError)
	return err
}

func (l *Loop) terminate(reason string) {
	if err := l.lifecycle.Terminate(reason); err != nil {
		return
	}
	s := l.Stats()
	l.logger.Info("loop terminated",
		ports.String("reason", reason),
		ports.Any("frames", s.Frames),
		ports.Any("accepted", s.Accepted),
		ports.Any("rejected", s.Rejected),
	)
}

// State returns the loop lifecycle state.
func (l *Loop) State() State {
	return l.lifecycle.State()
}

// Reason returns why the loop terminated.
func (l *Loop) Reason() string {
	return l.lifecycle.Reason()
}

// Busy reports whether the first byte of a frame has arrived and its reply is
// not yet written.
func (l *Loop) Busy() bool {
	return l.busy.Load()
}

// Stats returns a snapshot of the frame counters.
func (l *Loop) Stats() Stats {
	return Stats{
		Frames:   l.frames.Load(),
		Accepted: l.accepted.Load(),
		Rejected: l.rejected.Load(),
	}
}

// WaitIdle blocks until no frame is in flight or timeout expires.
// Returns domain.ErrShutdownTimeout on expiry.
func (l *Loop) WaitIdle(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for l.Busy() {
		if time.Now().After(deadline) {
			l.logger.Warn("shutdown timeout with request in flight",
				ports.Duration("timeout", timeout),
			)
			return domain.ErrShutdownTimeout
		}
		time.Sleep(10 * time.Millisecond)
	}
	return nil
}
