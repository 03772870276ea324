// Curatus - Similarity-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatus

// Package config provides layered configuration for Curatus using Koanf v2.
//
// Configuration is loaded from three sources (highest priority wins):
//  1. Environment variables (TMDB_API_KEY, CATALOG_PATH, HTTP_PORT, ...)
//  2. Optional YAML config file (config.yaml)
//  3. Built-in defaults
package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Catalog   CatalogConfig   `koanf:"catalog"`
	TMDB      TMDBConfig      `koanf:"tmdb"`
	Recommend RecommendConfig `koanf:"recommend"`
	API       APIConfig       `koanf:"api"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the listen address.
	Host string `koanf:"host"`

	// Port is the listen port.
	Port int `koanf:"port"`

	// Timeout is the per-request read/write timeout.
	Timeout time.Duration `koanf:"timeout"`

	// ShutdownTimeout bounds graceful shutdown of in-flight requests.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// CatalogConfig holds the precomputed catalog artifact settings.
type CatalogConfig struct {
	// Path is the location of the catalog artifact (item table plus
	// similarity matrix, gob-encoded). The artifact is produced by the
	// offline training pipeline and is read-only at runtime.
	Path string `koanf:"path"`
}

// TMDBConfig holds TMDB poster enrichment settings.
//
// A missing API key is not a configuration error: the service runs with
// poster enrichment disabled and recommendations remain fully functional.
type TMDBConfig struct {
	// APIKey is the TMDB API key. Empty disables poster enrichment.
	APIKey string `koanf:"api_key"`

	// APIKeyFile optionally names a file whose contents are the API key
	// (Docker/Kubernetes secret mounts). Takes priority over APIKey.
	APIKeyFile string `koanf:"api_key_file"`

	// APIBaseURL is the TMDB API root.
	APIBaseURL string `koanf:"api_base_url"`

	// ImageBaseURL is the poster image root, including the size segment.
	ImageBaseURL string `koanf:"image_base_url"`

	// Timeout bounds every individual poster lookup.
	Timeout time.Duration `koanf:"timeout"`

	// BatchSize is the chunk size for batched poster lookups.
	BatchSize int `koanf:"batch_size"`

	// RequestInterval is the minimum spacing between consecutive TMDB
	// calls, enforced by a rate limiter.
	RequestInterval time.Duration `koanf:"request_interval"`

	// CachePath is the BadgerDB directory for the poster URL cache.
	// Empty disables the cache.
	CachePath string `koanf:"cache_path"`

	// CacheTTL is how long cached poster URLs remain valid.
	CacheTTL time.Duration `koanf:"cache_ttl"`
}

// RecommendConfig holds recommendation engine settings.
type RecommendConfig struct {
	// DefaultK is the number of recommendations returned when the caller
	// does not specify k.
	DefaultK int `koanf:"default_k"`

	// MaxK caps the number of recommendations per request.
	MaxK int `koanf:"max_k"`
}

// APIConfig holds API surface settings.
type APIConfig struct {
	// RateLimitReqs is the allowed requests per client IP per window.
	RateLimitReqs int `koanf:"rate_limit_reqs"`

	// RateLimitWindow is the rate limiting window.
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`

	// CORSOrigins lists allowed CORS origins.
	CORSOrigins []string `koanf:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// ResolveAPIKey returns the effective TMDB API key.
//
// Resolution order mirrors hosted-secret-first semantics: a mounted secret
// file wins over the plain config/environment value. Returns empty string
// when no key is configured, which callers treat as "enrichment disabled".
func (c *TMDBConfig) ResolveAPIKey() string {
	if c.APIKeyFile != "" {
		data, err := os.ReadFile(c.APIKeyFile)
		if err == nil {
			if key := strings.TrimSpace(string(data)); key != "" {
				return key
			}
		}
	}
	return strings.TrimSpace(c.APIKey)
}

// Validate checks the configuration for invalid values.
// It returns the first problem found.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 1-65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %s", c.Server.Timeout)
	}
	if c.Catalog.Path == "" {
		return fmt.Errorf("catalog.path is required")
	}
	if c.TMDB.BatchSize < 1 {
		return fmt.Errorf("tmdb.batch_size must be at least 1, got %d", c.TMDB.BatchSize)
	}
	if c.TMDB.Timeout <= 0 {
		return fmt.Errorf("tmdb.timeout must be positive, got %s", c.TMDB.Timeout)
	}
	if c.TMDB.RequestInterval < 0 {
		return fmt.Errorf("tmdb.request_interval must not be negative, got %s", c.TMDB.RequestInterval)
	}
	if !strings.HasPrefix(c.TMDB.APIBaseURL, "http://") && !strings.HasPrefix(c.TMDB.APIBaseURL, "https://") {
		return fmt.Errorf("tmdb.api_base_url must be an http(s) URL, got %q", c.TMDB.APIBaseURL)
	}
	if c.Recommend.DefaultK < 1 {
		return fmt.Errorf("recommend.default_k must be at least 1, got %d", c.Recommend.DefaultK)
	}
	if c.Recommend.MaxK < c.Recommend.DefaultK {
		return fmt.Errorf("recommend.max_k (%d) must not be below recommend.default_k (%d)",
			c.Recommend.MaxK, c.Recommend.DefaultK)
	}
	if c.API.RateLimitReqs < 1 {
		return fmt.Errorf("api.rate_limit_reqs must be at least 1, got %d", c.API.RateLimitReqs)
	}
	if c.API.RateLimitWindow <= 0 {
		return fmt.Errorf("api.rate_limit_window must be positive, got %s", c.API.RateLimitWindow)
	}
	return nil
}
