package config

import (
	"os"
	"strconv"
	"time"
)

// applyEnv overlays REELFEED_* environment variables onto cfg.
// Unparseable values are ignored; Validate catches the fallout.
func applyEnv(cfg *Config) {
	if v := os.Getenv("REELFEED_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("REELFEED_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("REELFEED_QUERY"); v != "" {
		cfg.Query = v
	}
	if v := os.Getenv("REELFEED_PER_PAGE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.PerPage = n
		}
	}
	if v := os.Getenv("REELFEED_MAX_RESIDENT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxResident = n
		}
	}
	if v := os.Getenv("REELFEED_REQUEST_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.RequestTimeout = d
		}
	}
	if v := os.Getenv("REELFEED_RESOURCE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.ResourceTimeout = d
		}
	}
	if v := os.Getenv("REELFEED_RATE_LIMIT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RateLimit = f
		}
	}
	if v := os.Getenv("REELFEED_BUFFER_POLL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.BufferPoll = d
		}
	}
	if v := os.Getenv("REELFEED_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("REELFEED_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}
