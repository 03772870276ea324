// Curatus - Similarity-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatus

// Package recommend implements the similarity-based recommendation engine.
//
// The engine answers "more like this" queries against a precomputed pairwise
// similarity matrix: resolve the query title to a matrix row, rank every
// other row by similarity, and return the top k.
//
// # Design Principles
//
//   - Deterministic: identical inputs produce byte-identical output.
//     Ties are broken by ascending row index, never by map iteration or
//     unstable sort order.
//   - Immutable: the engine holds only read-only state injected at
//     construction (catalog plus matrix), so Recommend is safe for
//     unsynchronized concurrent use.
//   - Degradable: poster enrichment is a separate concern (see the poster
//     package); the engine itself never performs I/O.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/curatus/internal/catalog"
	"github.com/tomtom215/curatus/internal/metrics"
)

// ErrTitleNotFound indicates the query title is not in the catalog.
// This is a query-scoped outcome, not a fault; the API layer maps it to 404.
var ErrTitleNotFound = errors.New("title not found in catalog")

// Engine produces ranked recommendations from the catalog's similarity matrix.
// It is immutable after construction and safe for concurrent use.
type Engine struct {
	catalog *catalog.Catalog
	config  *Config
	logger  zerolog.Logger
}

// NewEngine creates a recommendation engine over the given catalog.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cat *catalog.Catalog, cfg *Config, logger zerolog.Logger) (*Engine, error) {
	if cat == nil {
		return nil, errors.New("catalog is required")
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Engine{
		catalog: cat,
		config:  cfg,
		logger:  logger.With().Str("component", "recommend").Logger(),
	}, nil
}

// Recommend returns the k catalog items most similar to the given title.
//
// k semantics:
//   - k < 0: use the configured default
//   - k == 0: return an empty list (valid boundary, not an error)
//   - k > MaxK: capped at MaxK
//
// The query item itself is excluded by row index. When fewer than k other
// items exist, all of them are returned without padding. Results are ordered
// by score descending with ties broken by ascending row index, so repeated
// calls yield identical output.
func (e *Engine) Recommend(ctx context.Context, title string, k int) (*Response, error) {
	start := time.Now()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if k < 0 {
		k = e.config.DefaultK
	}
	if k > e.config.MaxK {
		k = e.config.MaxK
	}

	queryRow, ok := e.catalog.RowByTitle(title)
	if !ok {
		metrics.RecommendQueries.WithLabelValues("not_found").Inc()
		e.logger.Debug().Str("title", title).Msg("query title not in catalog")
		return nil, fmt.Errorf("%w: %q", ErrTitleNotFound, title)
	}

	ranked := e.rankRow(queryRow)
	if k < len(ranked) {
		ranked = ranked[:k]
	}

	items := make([]Recommendation, len(ranked))
	for i, sr := range ranked {
		item := e.catalog.ItemAt(sr.row)
		items[i] = Recommendation{
			Title: item.Title,
			ID:    item.ID,
			Score: sr.score,
		}
	}

	latency := time.Since(start)
	metrics.RecommendQueries.WithLabelValues("ok").Inc()
	metrics.RecommendDuration.Observe(latency.Seconds())

	e.logger.Debug().
		Str("title", title).
		Int("k", k).
		Int("returned", len(items)).
		Dur("latency", latency).
		Msg("recommendation complete")

	return &Response{
		Query:           title,
		Items:           items,
		TotalCandidates: e.catalog.Len() - 1,
		LatencyMS:       latency.Milliseconds(),
		Timestamp:       time.Now().UTC(),
	}, nil
}

// rankRow ranks every catalog row except queryRow by similarity descending,
// ties broken by ascending row index.
func (e *Engine) rankRow(queryRow int) []scoredRow {
	scores := e.catalog.Matrix().Row(queryRow)

	ranked := make([]scoredRow, 0, len(scores)-1)
	for row, score := range scores {
		if row == queryRow {
			continue // exclude by index, not by rank position
		}
		ranked = append(ranked, scoredRow{row: row, score: score})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].row < ranked[j].row
	})

	return ranked
}

// DefaultK returns the configured default result count.
func (e *Engine) DefaultK() int {
	return e.config.DefaultK
}
