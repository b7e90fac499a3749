// Package config loads application configuration from blogfront.yaml with
// environment overrides, and exposes the predicate that gates every remote
// data operation.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Env variable names recognized as overrides.
const (
	EnvRemoteURL = "BLOGFRONT_REMOTE_URL"
	EnvRemoteKey = "BLOGFRONT_REMOTE_KEY"
	EnvAddr      = "BLOGFRONT_ADDR"
)

// Config contains all tunable parameters. Values can be overridden via a
// YAML file and the BLOGFRONT_* environment variables.
type Config struct {
	// Remote store
	RemoteURL     string        `yaml:"remoteURL"`     // Remote endpoint base URL
	RemoteKey     string        `yaml:"remoteKey"`     // Remote anonymous access key
	RemoteTimeout time.Duration `yaml:"remoteTimeout"` // Per-request timeout (default: 10s)

	// Cache
	CacheTTL time.Duration `yaml:"cacheTTL"` // Max age of memoized reads (default: 60s)

	// Server
	Addr            string        `yaml:"addr"`            // Listen address (default: :8080)
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"` // Graceful shutdown timeout (default: 5s)
	BaseURL         string        `yaml:"baseURL"`         // Public base URL for image links

	// Local state and assets
	DataDir      string `yaml:"dataDir"`      // bbolt store + image files (default: .blogfront)
	FallbackPath string `yaml:"fallbackPath"` // Optional YAML fallback dataset override
	FontPath     string `yaml:"fontPath"`     // Optional TTF for placeholder cards

	// Pagination
	DefaultPageSize int `yaml:"defaultPageSize"` // Page size when the caller passes none (default: 6)
	MaxPageSize     int `yaml:"maxPageSize"`     // Upper bound on requested page size (default: 50)
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		RemoteTimeout:   10 * time.Second,
		CacheTTL:        60 * time.Second,
		Addr:            ":8080",
		ShutdownTimeout: 5 * time.Second,
		DataDir:         ".blogfront",
		DefaultPageSize: 6,
		MaxPageSize:     50,
	}
}

// Load reads configuration from path (missing file is not an error), applies
// environment overrides, and clamps values to sane bounds. A file that exists
// but does not parse is reported: the returned config falls back to defaults
// plus env overrides, and the error tells the caller the file was ignored.
func Load(path string) (*Config, error) {
	cfg := Default()

	var loadErr error
	if path != "" {
		if data, err := os.ReadFile(path); err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				loadErr = fmt.Errorf("failed to parse config %s: %w", path, err)
				cfg = Default()
			}
		}
	}

	if v := os.Getenv(EnvRemoteURL); v != "" {
		cfg.RemoteURL = v
	}
	if v := os.Getenv(EnvRemoteKey); v != "" {
		cfg.RemoteKey = v
	}
	if v := os.Getenv(EnvAddr); v != "" {
		cfg.Addr = v
	}

	cfg.validate()
	return cfg, loadErr
}

// Configured reports whether remote credentials are present. When false,
// every data operation serves the static fallback dataset and never touches
// the network. That mode is fully supported, not an error.
func (c *Config) Configured() bool {
	return c.RemoteURL != "" && c.RemoteKey != ""
}

// validate clamps configuration values to reasonable bounds.
func (c *Config) validate() {
	if c.RemoteTimeout < time.Second {
		c.RemoteTimeout = time.Second
	}
	if c.RemoteTimeout > time.Minute {
		c.RemoteTimeout = time.Minute
	}
	if c.CacheTTL < time.Second {
		c.CacheTTL = time.Second
	}
	if c.CacheTTL > time.Hour {
		c.CacheTTL = time.Hour
	}
	if c.ShutdownTimeout < time.Second {
		c.ShutdownTimeout = time.Second
	}
	if c.ShutdownTimeout > 60*time.Second {
		c.ShutdownTimeout = 60 * time.Second
	}
	if c.DefaultPageSize < 1 {
		c.DefaultPageSize = 1
	}
	if c.MaxPageSize < c.DefaultPageSize {
		c.MaxPageSize = c.DefaultPageSize
	}
	if c.MaxPageSize > 200 {
		c.MaxPageSize = 200
	}
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.DataDir == "" {
		c.DataDir = ".blogfront"
	}
}
