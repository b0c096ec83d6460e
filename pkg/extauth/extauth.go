package extauth

import (
	"context"
	"io"
	"net/http"
	"time"

	httpAdapter "github.com/bft-labs/extauth/internal/adapters/http"
	"github.com/bft-labs/extauth/internal/app"
	"github.com/bft-labs/extauth/internal/ports"
)

// ShutdownTimeout is how long WaitIdle callers should wait for an in-flight
// request by default.
const ShutdownTimeout = app.ShutdownTimeout

// Stats counts frames handled by a Bridge.
type Stats = app.Stats

// Bridge answers host requests read from in by writing replies to out.
// Use New to create one, then Run.
type Bridge struct {
	config Config
	loop   *app.Loop
	logger ports.Logger
}

// New creates a Bridge reading requests from in and writing replies to out.
// Returns an error if the configuration is invalid.
func New(cfg Config, in io.Reader, out io.Writer, opts ...Option) (*Bridge, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := defaultOptions(&http.Client{Timeout: cfg.Timeout})
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger
	if logger == nil {
		logger = noopLogger{}
	}

	backend := o.backend
	if backend == nil {
		backend = httpAdapter.NewBackend(cfg.backendConfig(), o.httpClient, logger)
	}

	var emitter app.EventEmitter
	if o.eventHandler != nil {
		emitter = &eventEmitterWrapper{handler: o.eventHandler}
	}

	dispatcher := app.NewDispatcher(backend, logger)
	return &Bridge{
		config: cfg,
		loop:   app.NewLoop(in, out, dispatcher, logger, emitter),
		logger: logger,
	}, nil
}

// backendConfig derives the immutable HTTP adapter configuration.
func (c Config) backendConfig() httpAdapter.Config {
	headers := make(map[string]string, len(c.Headers))
	for k, v := range c.Headers {
		headers[k] = v
	}
	bc := httpAdapter.Config{
		BaseURL:   c.baseURL(),
		Headers:   headers,
		Timeout:   c.Timeout,
		AuthKey:   c.AuthKey,
		UserAgent: c.UserAgent,
	}
	if c.TokenSecret != "" {
		bc.TokenSecret = []byte(c.TokenSecret)
		bc.TokenIssuer = c.TokenIssuer
		bc.TokenTTL = c.TokenTTL
	}
	return bc
}

// Run serves requests until the host closes its end, a framing error occurs,
// or ctx is canceled. It blocks.
//
// Returns nil when the input stream ends cleanly, ctx.Err() on cancellation,
// and the read or write error otherwise. A request that was fully received
// is always answered before Run returns.
func (b *Bridge) Run(ctx context.Context) error {
	b.logger.Info("bridge started",
		ports.String("service_url", b.config.baseURL()),
		ports.Duration("timeout", b.config.Timeout),
	)
	return b.loop.Run(ctx)
}

// Status returns the current state.
// Safe to call concurrently from any goroutine.
func (b *Bridge) Status() State {
	return convertState(b.loop.State())
}

// Reason returns why the bridge terminated, or "" while it runs.
func (b *Bridge) Reason() string {
	return b.loop.Reason()
}

// Busy reports whether a request is being answered.
func (b *Bridge) Busy() bool {
	return b.loop.Busy()
}

// Stats returns a snapshot of the frame counters.
func (b *Bridge) Stats() Stats {
	return b.loop.Stats()
}

// WaitIdle waits up to timeout for an in-flight request to be answered.
// Returns ErrShutdownTimeout if one is still in flight.
func (b *Bridge) WaitIdle(timeout time.Duration) error {
	return b.loop.WaitIdle(timeout)
}

// eventEmitterWrapper adapts EventHandler to the internal emitter interface.
type eventEmitterWrapper struct {
	handler EventHandler
}

func (e *eventEmitterWrapper) OnStateChange(previous, current app.State, reason string) {
	if e.handler == nil {
		return
	}
	e.handler.OnStateChange(StateChangeEvent{
		Previous: convertState(previous),
		Current:  convertState(current),
		Reason:   reason,
	})
}

func convertState(s app.State) State {
	switch s {
	case app.StateRunning:
		return StateRunning
	case app.StateTerminated:
		return StateTerminated
	default:
		return State(-1)
	}
}
