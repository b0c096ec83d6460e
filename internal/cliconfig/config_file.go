package cliconfig

import (
	"os"

	toml "github.com/pelletier/go-toml/v2"
)

// DefaultConfigPath is read when --config is not given and the file exists.
const DefaultConfigPath = "/etc/extauth/config.toml"

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	ServiceURL   string            `toml:"url"`
	Headers      map[string]string `toml:"headers"`
	HTTPTimeout  string            `toml:"timeout"`
	AuthKey      string            `toml:"auth_key"`
	TokenSecret  string            `toml:"token_secret"`
	TokenIssuer  string            `toml:"token_issuer"`
	TokenTTL     string            `toml:"token_ttl"`
	LogFile      string            `toml:"log_file"`
	Debug        *bool             `toml:"debug"`
	WatchLogFile *bool             `toml:"watch_log"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("url", fc.ServiceURL, &cfg.ServiceURL)
	s.setString("auth-key", fc.AuthKey, &cfg.AuthKey)
	s.setString("token-secret", fc.TokenSecret, &cfg.TokenSecret)
	s.setString("token-issuer", fc.TokenIssuer, &cfg.TokenIssuer)
	s.setString("log", fc.LogFile, &cfg.LogFile)
	s.setHeaders("header", fc.Headers, &cfg.Headers)

	if err := s.setDuration("timeout", fc.HTTPTimeout, &cfg.HTTPTimeout); err != nil {
		return err
	}
	if err := s.setDuration("token-ttl", fc.TokenTTL, &cfg.TokenTTL); err != nil {
		return err
	}

	s.setBool("debug", fc.Debug, &cfg.Debug)
	s.setBool("watch-log", fc.WatchLogFile, &cfg.WatchLogFile)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
