// Package config holds the static configuration for the feed client.
// There is no hot reload: the catalog endpoint, credentials and pool
// sizing are fixed for the lifetime of the process.
package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full static configuration surface.
type Config struct {
	// Catalog endpoint
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`

	// Feed defaults
	Query   string `yaml:"query"`
	PerPage int    `yaml:"per_page"`

	// Network timeouts: per-request and end-to-end resource deadline.
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ResourceTimeout time.Duration `yaml:"resource_timeout"`

	// Client-side request rate limit (requests per second, 0 = unlimited).
	RateLimit float64 `yaml:"rate_limit"`
	RateBurst int     `yaml:"rate_burst"`

	// Player pool
	MaxResident int `yaml:"max_resident"`

	// Buffering display poll for the coordinator (0 = disabled).
	BufferPoll time.Duration `yaml:"buffer_poll"`

	// DataDir holds the flag store database.
	DataDir string `yaml:"data_dir"`

	LogLevel string `yaml:"log_level"`
}

// Default returns the built-in defaults, mirroring the reference client.
func Default() Config {
	return Config{
		BaseURL:         "https://api.pexels.com",
		Query:           "people",
		PerPage:         80,
		RequestTimeout:  30 * time.Second,
		ResourceTimeout: 60 * time.Second,
		RateLimit:       0,
		RateBurst:       1,
		MaxResident:     3,
		BufferPoll:      0,
		DataDir:         ".",
		LogLevel:        "info",
	}
}

// Load builds a Config from defaults, an optional YAML file and
// environment overrides, then validates it.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path) // #nosec G304 -- operator-provided path
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks invariants that would otherwise fail far from their cause.
func (c Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config: base_url %q is not an absolute URL", c.BaseURL)
	}
	if c.PerPage < 1 || c.PerPage > 80 {
		return fmt.Errorf("config: per_page must be in 1..80, got %d", c.PerPage)
	}
	if c.MaxResident < 1 {
		return fmt.Errorf("config: max_resident must be >= 1, got %d", c.MaxResident)
	}
	if c.RequestTimeout <= 0 || c.ResourceTimeout <= 0 {
		return fmt.Errorf("config: timeouts must be positive")
	}
	if c.RequestTimeout > c.ResourceTimeout {
		return fmt.Errorf("config: request_timeout %s exceeds resource_timeout %s",
			c.RequestTimeout, c.ResourceTimeout)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("config: rate_limit must be >= 0, got %f", c.RateLimit)
	}
	return nil
}
