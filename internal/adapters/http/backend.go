package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bft-labs/extauth/internal/domain"
	"github.com/bft-labs/extauth/internal/ports"
)

const (
	authEndpoint    = "/auth"
	isUserEndpoint  = "/isuser"
	setPassEndpoint = "/setpass"

	// maxResponseBytes caps how much of a backend body is read.
	maxResponseBytes = 64 << 10

	// maxDiagnosticBytes caps how much of an error body ends up in a log line.
	maxDiagnosticBytes = 256
)

// DefaultTimeout bounds a backend call when Config.Timeout is not positive.
const DefaultTimeout = 5 * time.Second

// Config is the immutable configuration of a Backend.
type Config struct {
	// BaseURL is the backend root; endpoints are appended to it
	BaseURL string

	// Headers are sent with every request
	Headers map[string]string

	// Timeout bounds every call end to end
	Timeout time.Duration

	// AuthKey, when set, is sent as a static bearer token
	AuthKey string

	// TokenSecret, when set, signs a short-lived bearer token per request
	TokenSecret []byte
	TokenIssuer string
	TokenTTL    time.Duration

	// UserAgent overrides the default User-Agent header
	UserAgent string
}

// request is the JSON body sent for every operation.
type request struct {
	JID      string  `json:"jid"`
	User     string  `json:"user"`
	Server   string  `json:"server"`
	Password *string `json:"pw,omitempty"`
}

// response is the JSON body expected from the backend.
type response struct {
	Success *bool  `json:"success"`
	Message string `json:"message,omitempty"`
}

// Backend implements ports.Backend over HTTP/JSON.
type Backend struct {
	client    ports.HTTPClient
	logger    ports.Logger
	baseURL   string
	headers   http.Header
	timeout   time.Duration
	authKey   string
	userAgent string
	signer    *tokenSigner
}

// NewBackend creates a backend client. The configuration is copied, so later
// changes to cfg.Headers do not affect the client.
func NewBackend(cfg Config, client ports.HTTPClient, logger ports.Logger) *Backend {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	headers := make(http.Header, len(cfg.Headers))
	for k, v := range cfg.Headers {
		headers.Set(k, v)
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "extauth"
	}

	var signer *tokenSigner
	if len(cfg.TokenSecret) > 0 {
		signer = newTokenSigner(cfg.TokenSecret, cfg.TokenIssuer, cfg.TokenTTL)
	}

	return &Backend{
		client:    client,
		logger:    logger,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		headers:   headers,
		timeout:   timeout,
		authKey:   cfg.AuthKey,
		userAgent: userAgent,
		signer:    signer,
	}
}

// Authenticate checks the password of user@server.
func (b *Backend) Authenticate(ctx context.Context, user, server, password string) domain.BackendResult {
	return b.call(ctx, authEndpoint, request{
		JID:      domain.JID(user, server),
		User:     user,
		Server:   server,
		Password: &password,
	})
}

// Exists reports whether user@server is a known account.
func (b *Backend) Exists(ctx context.Context, user, server string) domain.BackendResult {
	return b.call(ctx, isUserEndpoint, request{
		JID:    domain.JID(user, server),
		User:   user,
		Server: server,
	})
}

// SetPassword replaces the password of user@server.
func (b *Backend) SetPassword(ctx context.Context, user, server, password string) domain.BackendResult {
	return b.call(ctx, setPassEndpoint, request{
		JID:      domain.JID(user, server),
		User:     user,
		Server:   server,
		Password: &password,
	})
}

// call performs one bounded POST and reduces every outcome to a BackendResult.
func (b *Backend) call(ctx context.Context, endpoint string, body request) (result domain.BackendResult) {
	defer func() {
		if r := recover(); r != nil {
			result = domain.Failure(fmt.Errorf("%w: %v", domain.ErrBackendPanic, r))
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	payload, err := json.Marshal(body)
	if err != nil {
		return domain.Failure(fmt.Errorf("marshal request: %w", err))
	}

	url := b.baseURL + endpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return domain.Failure(fmt.Errorf("create request: %w", err))
	}

	for k, vs := range b.headers {
		req.Header[k] = append([]string(nil), vs...)
	}
	if req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User-Agent", b.userAgent)

	requestID := uuid.NewString()
	req.Header.Set("X-Request-Id", requestID)

	if err := b.authorize(req, strings.TrimPrefix(endpoint, "/")); err != nil {
		return domain.Failure(err)
	}

	start := time.Now()
	resp, err := b.client.Do(req)
	if err != nil {
		return domain.Failure(fmt.Errorf("send request: %w", err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return domain.Failure(fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode/100 != 2 {
		return domain.Failure(fmt.Errorf("%w: server returned %d: %s",
			domain.ErrBackendStatus, resp.StatusCode, diagnostic(raw)))
	}

	var out response
	if err := json.Unmarshal(raw, &out); err != nil {
		return domain.Failure(fmt.Errorf("%w: %v", domain.ErrBackendResponse, err))
	}
	if out.Success == nil {
		return domain.Failure(fmt.Errorf("%w: missing success field", domain.ErrBackendResponse))
	}

	b.logger.Debug("backend call",
		ports.String("endpoint", endpoint),
		ports.String("request_id", requestID),
		ports.String("jid", body.JID),
		ports.Bool("success", *out.Success),
		ports.Duration("elapsed", time.Since(start)),
	)

	return domain.BackendResult{Success: *out.Success, Message: out.Message}
}

// authorize sets the Authorization header for the configured credential.
func (b *Backend) authorize(req *http.Request, operation string) error {
	switch {
	case b.signer != nil:
		token, err := b.signer.Sign(operation)
		if err != nil {
			return fmt.Errorf("sign service token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	case b.authKey != "":
		req.Header.Set("Authorization", "Bearer "+b.authKey)
	}
	return nil
}

// diagnostic trims a response body for inclusion in an error message.
func diagnostic(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	if len(s) > maxDiagnosticBytes {
		s = s[:maxDiagnosticBytes] + "..."
	}
	return s
}
