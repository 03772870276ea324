// Curatus - Similarity-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatus

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// GCRunner matches the poster cache's garbage collection hook, allowing
// tests to substitute a mock.
//
// Satisfied by *poster.Cache.
type GCRunner interface {
	RunGC() error
}

// CacheGCService periodically runs value-log garbage collection on the
// poster cache. Badger only reclaims space when GC is invoked explicitly,
// so without this loop the cache directory grows without bound as TTLs
// expire entries.
//
// GC errors are logged and swallowed: badger returns an error when there
// is nothing to collect, which is the common case and must not crash the
// service or trip the supervisor's failure threshold.
type CacheGCService struct {
	cache    GCRunner
	interval time.Duration
	logger   zerolog.Logger
	name     string
}

// NewCacheGCService creates a cache GC loop. interval defaults to 10
// minutes when zero or negative.
func NewCacheGCService(cache GCRunner, interval time.Duration, logger zerolog.Logger) *CacheGCService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &CacheGCService{
		cache:    cache,
		interval: interval,
		logger:   logger,
		name:     "poster-cache-gc",
	}
}

// Serve implements suture.Service. Blocks until the context is canceled.
func (s *CacheGCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.cache.RunGC(); err != nil {
				// ErrNoRewrite when nothing qualified for collection.
				s.logger.Debug().Err(err).Msg("poster cache GC pass made no progress")
				continue
			}
			s.logger.Debug().Msg("poster cache GC pass complete")
		}
	}
}

// String implements fmt.Stringer for supervisor log messages.
func (s *CacheGCService) String() string {
	return s.name
}
