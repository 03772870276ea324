// Curatus - Similarity-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatus

// Package metrics provides Prometheus instrumentation for Curatus.
//
// Exposed via /metrics:
//   - Recommendation query latency and outcomes
//   - TMDB poster fetch outcomes and latency
//   - Poster cache efficiency
//   - API endpoint latency and throughput
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Recommendation Engine Metrics
	RecommendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "curatus_recommend_duration_seconds",
			Help:    "Duration of recommendation queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	RecommendQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "curatus_recommend_queries_total",
			Help: "Total recommendation queries by outcome",
		},
		[]string{"outcome"}, // "ok", "not_found"
	)

	// TMDB Poster Enrichment Metrics
	PosterFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "curatus_poster_fetch_duration_seconds",
			Help:    "Duration of individual TMDB poster lookups in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	PosterFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "curatus_poster_fetches_total",
			Help: "Total TMDB poster lookups by outcome",
		},
		[]string{"outcome"}, // "hit", "absent", "timeout", "error", "no_key", "breaker_open"
	)

	PosterBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "curatus_poster_breaker_state",
			Help: "TMDB circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)

	// Poster Cache Metrics
	PosterCacheOps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "curatus_poster_cache_ops_total",
			Help: "Poster URL cache operations",
		},
		[]string{"op"}, // "hit", "miss", "store", "error"
	)

	// API Metrics
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "curatus_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method", "status"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "curatus_http_requests_in_flight",
			Help: "Number of HTTP requests currently being served",
		},
	)
)

// ObserveHTTPRequest records a completed HTTP request.
func ObserveHTTPRequest(path, method string, status int, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(path, method, strconv.Itoa(status)).
		Observe(duration.Seconds())
}
