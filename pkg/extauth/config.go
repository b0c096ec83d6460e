package extauth

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	httpAdapter "github.com/bft-labs/extauth/internal/adapters/http"
	"github.com/bft-labs/extauth/internal/domain"
)

const (
	// DefaultServiceURL is the backend base URL used when none is configured.
	DefaultServiceURL = "http://localhost:8000"

	// DefaultTimeout bounds each backend call.
	DefaultTimeout = httpAdapter.DefaultTimeout

	// DefaultTokenTTL is the lifetime of a signed service token.
	DefaultTokenTTL = httpAdapter.DefaultTokenTTL

	// DefaultTokenIssuer is the iss claim of a signed service token.
	DefaultTokenIssuer = "extauth"
)

// Config holds the configuration of a Bridge.
// Use SetDefaults to fill unset fields before Validate.
type Config struct {
	// ServiceURL is the backend base URL. /auth, /isuser and /setpass are
	// appended to it.
	ServiceURL string

	// Headers are sent with every backend request.
	Headers map[string]string

	// Timeout bounds every backend call. Required.
	Timeout time.Duration

	// AuthKey is sent as "Authorization: Bearer <AuthKey>".
	AuthKey string

	// TokenSecret signs a fresh HS256 bearer token per request.
	TokenSecret string
	TokenIssuer string
	TokenTTL    time.Duration

	// UserAgent is sent with every backend request.
	UserAgent string
}

// SetDefaults fills zero fields with default values.
func (c *Config) SetDefaults() {
	if c.ServiceURL == "" {
		c.ServiceURL = DefaultServiceURL
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.TokenIssuer == "" {
		c.TokenIssuer = DefaultTokenIssuer
	}
	if c.TokenTTL == 0 {
		c.TokenTTL = DefaultTokenTTL
	}
	if c.UserAgent == "" {
		c.UserAgent = "extauth/" + Version
	}
}

// Validate checks the configuration. It does not modify c.
func (c Config) Validate() error {
	u, err := url.Parse(c.ServiceURL)
	if err != nil {
		return fmt.Errorf("%w: service url: %v", domain.ErrInvalidConfig, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: service url scheme must be http or https", domain.ErrInvalidConfig)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: service url has no host", domain.ErrInvalidConfig)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive", domain.ErrInvalidConfig)
	}
	if c.AuthKey != "" && c.TokenSecret != "" {
		return fmt.Errorf("%w: AuthKey and TokenSecret are mutually exclusive", domain.ErrInvalidConfig)
	}
	if c.TokenSecret != "" && c.TokenTTL <= 0 {
		return fmt.Errorf("%w: TokenTTL must be positive", domain.ErrInvalidConfig)
	}
	return nil
}

// baseURL returns ServiceURL without trailing slashes.
func (c Config) baseURL() string {
	return strings.TrimRight(c.ServiceURL, "/")
}
