package cliconfig

import (
	"fmt"
	"os"
)

// ApplyEnvConfig applies configuration from environment variables (EXTAUTH_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("url", os.Getenv("EXTAUTH_URL"), &cfg.ServiceURL)
	s.setString("auth-key", os.Getenv("EXTAUTH_AUTH_KEY"), &cfg.AuthKey)
	s.setString("token-secret", os.Getenv("EXTAUTH_TOKEN_SECRET"), &cfg.TokenSecret)
	s.setString("token-issuer", os.Getenv("EXTAUTH_TOKEN_ISSUER"), &cfg.TokenIssuer)
	s.setString("log", os.Getenv("EXTAUTH_LOG"), &cfg.LogFile)

	if raw := os.Getenv("EXTAUTH_HEADERS"); raw != "" {
		headers, err := parseHeaderList(raw)
		if err != nil {
			return fmt.Errorf("parse EXTAUTH_HEADERS: %w", err)
		}
		s.setHeaders("header", headers, &cfg.Headers)
	}

	if err := s.setDuration("timeout", os.Getenv("EXTAUTH_TIMEOUT"), &cfg.HTTPTimeout); err != nil {
		return err
	}
	if err := s.setDuration("token-ttl", os.Getenv("EXTAUTH_TOKEN_TTL"), &cfg.TokenTTL); err != nil {
		return err
	}

	if err := s.setBoolFromString("debug", os.Getenv("EXTAUTH_DEBUG"), &cfg.Debug); err != nil {
		return err
	}
	if err := s.setBoolFromString("watch-log", os.Getenv("EXTAUTH_WATCH_LOG"), &cfg.WatchLogFile); err != nil {
		return err
	}

	return nil
}
