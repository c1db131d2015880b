// Package config loads viewer and stand-in server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every tunable of the viewer binaries.
type Config struct {
	// RemoteURL is the base URL of the remote cache service (without the /api/cache suffix).
	RemoteURL       string        `env:"CACHE_VIEWER_REMOTE_URL" envDefault:"http://localhost:8080"`
	RefreshInterval time.Duration `env:"CACHE_VIEWER_REFRESH_INTERVAL" envDefault:"10s"`
	RequestTimeout  time.Duration `env:"CACHE_VIEWER_REQUEST_TIMEOUT" envDefault:"5s"`

	// JournalPath is the SQLite file for the activity journal.
	JournalPath    string `env:"CACHE_VIEWER_JOURNAL_PATH" envDefault:"cache-viewer.db"`
	JournalEnabled bool   `env:"CACHE_VIEWER_JOURNAL" envDefault:"true"`

	GatewayAddr string `env:"CACHE_VIEWER_GATEWAY_ADDR" envDefault:":8090"`

	ServerAddr   string `env:"CACHE_SERVER_ADDR" envDefault:":8080"`
	ServerMaxTTL int64  `env:"CACHE_SERVER_MAX_TTL" envDefault:"86400"`

	LogLevel  string `env:"CACHE_VIEWER_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"CACHE_VIEWER_LOG_FORMAT" envDefault:"console"`
	// LogFile redirects logs away from the terminal; the TUI discards logs when empty.
	LogFile string `env:"CACHE_VIEWER_LOG_FILE"`
}

// Load parses the environment into a Config and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate reports the first setting that cannot be used.
func (c Config) Validate() error {
	u, err := url.Parse(c.RemoteURL)
	if err != nil {
		return fmt.Errorf("invalid remote url %q: %w", c.RemoteURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid remote url %q: scheme must be http or https", c.RemoteURL)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid remote url %q: missing host", c.RemoteURL)
	}
	if c.RefreshInterval <= 0 {
		return errors.New("refresh interval must be positive")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("request timeout must be positive")
	}
	if c.JournalEnabled && c.JournalPath == "" {
		return errors.New("journal path is required when the journal is enabled")
	}
	if c.ServerMaxTTL < 1 {
		return errors.New("server max ttl must be at least 1 second")
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("invalid log format %q: want console or json", c.LogFormat)
	}
	return nil
}
