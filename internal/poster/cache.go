// Curatus - Similarity-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatus

package poster

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/curatus/internal/metrics"
)

// cacheKeyPrefix namespaces poster entries in BadgerDB.
const cacheKeyPrefix = "poster:"

// Cache is a durable poster URL cache backed by BadgerDB.
//
// Poster URLs change rarely, so caching them across process restarts keeps
// repeat queries off the TMDB API entirely and stays well inside its rate
// limits. Entries expire via Badger's native TTL support.
type Cache struct {
	db  *badger.DB
	ttl time.Duration
}

// cachedPoster is the stored cache value.
type cachedPoster struct {
	URL       string    `json:"url"`
	FetchedAt time.Time `json:"fetched_at"`
}

// OpenCache opens (or creates) a poster cache at the given directory.
func OpenCache(path string, ttl time.Duration) (*Cache, error) {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}

	opts := badger.DefaultOptions(path).
		WithLogger(nil) // badger's own logger is noisy; rely on metrics instead

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open poster cache at %s: %w", path, err)
	}

	return &Cache{db: db, ttl: ttl}, nil
}

// Get returns the cached poster URL for a movie id, if present and fresh.
func (c *Cache) Get(id int) (string, bool) {
	var entry cachedPoster

	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(cacheKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entry)
		})
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false
	}
	if err != nil {
		metrics.PosterCacheOps.WithLabelValues("error").Inc()
		return "", false
	}

	return entry.URL, entry.URL != ""
}

// Set stores a poster URL with the cache TTL. Failures are absorbed: the
// cache is an optimization, never a correctness dependency.
func (c *Cache) Set(id int, url string) {
	data, err := json.Marshal(cachedPoster{URL: url, FetchedAt: time.Now().UTC()})
	if err != nil {
		metrics.PosterCacheOps.WithLabelValues("error").Inc()
		return
	}

	err = c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(cacheKey(id), data).WithTTL(c.ttl)
		return txn.SetEntry(entry)
	})
	if err != nil {
		metrics.PosterCacheOps.WithLabelValues("error").Inc()
		return
	}
	metrics.PosterCacheOps.WithLabelValues("store").Inc()
}

// RunGC runs one round of Badger value-log garbage collection.
// Returns badger.ErrNoRewrite when there was nothing to collect.
func (c *Cache) RunGC() error {
	return c.db.RunValueLogGC(0.5)
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

func cacheKey(id int) []byte {
	return []byte(cacheKeyPrefix + strconv.Itoa(id))
}
