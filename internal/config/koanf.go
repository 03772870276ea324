// Curatus - Similarity-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatus

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order
// of priority. The first file found is used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/curatus/config.yaml",
	"/etc/curatus/config.yml",
}

// ConfigPathEnvVar is the environment variable that overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with all default values applied.
// The TMDB pacing defaults match the rate the TMDB API tolerates without
// returning 429s for anonymous-tier keys.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            3860,
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Catalog: CatalogConfig{
			Path: "/data/catalog.gob",
		},
		TMDB: TMDBConfig{
			APIKey:          "",
			APIKeyFile:      "",
			APIBaseURL:      "https://api.themoviedb.org/3",
			ImageBaseURL:    "https://image.tmdb.org/t/p/w500",
			Timeout:         10 * time.Second,
			BatchSize:       2,
			RequestInterval: 300 * time.Millisecond,
			CachePath:       "",
			CacheTTL:        7 * 24 * time.Hour,
		},
		Recommend: RecommendConfig{
			DefaultK: 10,
			MaxK:     100,
		},
		API: APIConfig{
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load loads configuration using Koanf v2 with layered sources:
//  1. Defaults: built-in sensible defaults
//  2. Config file: optional YAML config file (if exists)
//  3. Environment variables: override any setting
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	// Layer 2: optional config file
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment variables (highest priority)
	// TMDB_API_KEY -> tmdb.api_key, HTTP_PORT -> server.port
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("load environment variables: %w", err)
	}

	// CORS origins arrive as a comma-separated string from the environment
	if origins := k.String("api.cors_origins"); origins != "" && strings.Contains(origins, ",") {
		parts := strings.Split(origins, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		if err := k.Set("api.cors_origins", parts); err != nil {
			return nil, fmt.Errorf("set cors origins: %w", err)
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path of the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// envPrefixes maps environment variable prefixes to koanf config sections.
var envPrefixes = map[string]string{
	"HTTP_":      "server.",
	"SERVER_":    "server.",
	"CATALOG_":   "catalog.",
	"TMDB_":      "tmdb.",
	"RECOMMEND_": "recommend.",
	"API_":       "api.",
	"LOG_":       "logging.",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - TMDB_API_KEY -> tmdb.api_key
//   - CATALOG_PATH -> catalog.path
//   - HTTP_PORT -> server.port
//   - LOG_LEVEL -> logging.level
//
// Unrecognized variables return empty string and are ignored, so unrelated
// environment noise cannot leak into the configuration.
func envTransformFunc(key string) string {
	for prefix, section := range envPrefixes {
		if strings.HasPrefix(key, prefix) {
			rest := strings.ToLower(strings.TrimPrefix(key, prefix))
			if rest == "" {
				return ""
			}
			return section + rest
		}
	}
	return ""
}
