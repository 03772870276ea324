// Curatus - Similarity-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatus

package recommend

import "time"

// Recommendation is a single ranked result.
type Recommendation struct {
	// Title is the recommended movie title.
	Title string `json:"title"`

	// ID is the TMDB movie identifier.
	ID int `json:"id"`

	// Score is the similarity to the query item.
	Score float64 `json:"score"`
}

// EnrichedRecommendation is a Recommendation with optional poster enrichment
// attached by Assemble. HasPoster distinguishes "no poster available" from an
// accidentally empty URL; callers must treat HasPoster=false as a normal,
// non-error outcome.
type EnrichedRecommendation struct {
	Title string  `json:"title"`
	ID    int     `json:"id"`
	Score float64 `json:"score"`

	// PosterURL is the full displayable image URL, empty when absent.
	PosterURL string `json:"poster_url,omitempty"`

	// HasPoster is the explicit presence marker for PosterURL.
	HasPoster bool `json:"has_poster"`
}

// Response is the result of a recommendation query.
type Response struct {
	// Query is the resolved query title.
	Query string `json:"query"`

	// Items is the ordered list of recommendations, best first.
	Items []Recommendation `json:"items"`

	// TotalCandidates is the number of catalog items considered.
	TotalCandidates int `json:"total_candidates"`

	// LatencyMS is the query latency in milliseconds.
	LatencyMS int64 `json:"latency_ms"`

	// Timestamp is when the response was generated.
	Timestamp time.Time `json:"timestamp"`
}

// scoredRow pairs a matrix row index with its similarity score during ranking.
type scoredRow struct {
	row   int
	score float64
}
