// Curatus - Similarity-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatus

package recommend

import "fmt"

// Config contains configuration for the recommendation engine.
type Config struct {
	// DefaultK is the number of recommendations returned when the caller
	// does not specify k.
	DefaultK int `json:"default_k"`

	// MaxK caps k per request regardless of what the caller asks for.
	MaxK int `json:"max_k"`
}

// DefaultConfig returns default engine configuration.
func DefaultConfig() *Config {
	return &Config{
		DefaultK: 10,
		MaxK:     100,
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.DefaultK < 1 {
		return fmt.Errorf("default_k must be at least 1, got %d", c.DefaultK)
	}
	if c.MaxK < c.DefaultK {
		return fmt.Errorf("max_k (%d) must not be below default_k (%d)", c.MaxK, c.DefaultK)
	}
	return nil
}
