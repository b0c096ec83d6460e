package cliconfig

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bft-labs/extauth/pkg/extauth"
)

const (
	// DefaultLogFile is where the bridge logs when no log file is configured.
	// Stdout is the protocol channel and is never used for logs.
	DefaultLogFile = "/var/log/ejabberd/extauth.log"

	// StderrLogFile selects stderr as the log destination.
	StderrLogFile = "-"
)

// Config holds CLI configuration for extauth.
type Config struct {
	ServiceURL  string
	Headers     map[string]string
	HTTPTimeout time.Duration

	AuthKey     string
	TokenSecret string
	TokenIssuer string
	TokenTTL    time.Duration

	LogFile      string
	Debug        bool
	WatchLogFile bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		ServiceURL: extauth.DefaultServiceURL,
		Headers: map[string]string{
			"Content-Type": "application/json",
			"Accept":       "application/json",
		},
		// the host blocks on every call, keep this well under its own timeout
		HTTPTimeout:  extauth.DefaultTimeout,
		TokenIssuer:  extauth.DefaultTokenIssuer,
		TokenTTL:     extauth.DefaultTokenTTL,
		LogFile:      DefaultLogFile,
		WatchLogFile: true,
	}
}

// Validate checks the configuration for errors and sets derived defaults.
// Backend settings are checked by extauth.Config.Validate.
func (c *Config) Validate() error {
	if c.ServiceURL == "" {
		c.ServiceURL = extauth.DefaultServiceURL
	}

	// Ensure no trailing slash
	c.ServiceURL = strings.TrimRight(c.ServiceURL, "/")

	if c.LogFile == "" {
		c.LogFile = DefaultLogFile
	}

	return c.LibConfig().Validate()
}

// LibConfig converts the CLI configuration to the library configuration.
func (c Config) LibConfig() extauth.Config {
	return extauth.Config{
		ServiceURL:  c.ServiceURL,
		Headers:     c.Headers,
		Timeout:     c.HTTPTimeout,
		AuthKey:     c.AuthKey,
		TokenSecret: c.TokenSecret,
		TokenIssuer: c.TokenIssuer,
		TokenTTL:    c.TokenTTL,
	}
}

// Mode returns "debug" or "release" for startup logging.
func (c Config) Mode() string {
	if c.Debug {
		return "debug"
	}
	return "release"
}

// Redacted returns a copy safe to log.
func (c Config) Redacted() Config {
	out := c
	if out.AuthKey != "" {
		out.AuthKey = "*****"
	}
	if out.TokenSecret != "" {
		out.TokenSecret = "*****"
	}
	out.Headers = make(map[string]string, len(c.Headers))
	for k, v := range c.Headers {
		if strings.EqualFold(k, "Authorization") {
			v = "*****"
		}
		out.Headers[k] = v
	}
	return out
}

// MergeHeaders copies src over dst and returns the result. Keys are compared
// case-insensitively so a later source replaces an earlier spelling.
func MergeHeaders(dst, src map[string]string) map[string]string {
	out := make(map[string]string, len(dst)+len(src))
	for k, v := range dst {
		out[k] = v
	}
	for k, v := range src {
		for existing := range out {
			if strings.EqualFold(existing, k) {
				delete(out, existing)
			}
		}
		out[k] = v
	}
	return out
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setBoolFromString parses a string to bool and sets the destination.
// Used for environment variables that come as strings.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = b
	return nil
}

// setHeaders merges headers into dst if any are given and flag not changed.
func (s *configSetter) setHeaders(flag string, value map[string]string, dst *map[string]string) {
	if len(value) == 0 || s.changed[flag] {
		return
	}
	*dst = MergeHeaders(*dst, value)
}

// parseHeaderList parses "Key=value,Other=value" as used by EXTAUTH_HEADERS.
func parseHeaderList(raw string) (map[string]string, error) {
	out := map[string]string{}
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		k, v, ok := strings.Cut(pair, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid header %q, want Key=value", pair)
		}
		out[k] = strings.TrimSpace(v)
	}
	return out, nil
}
