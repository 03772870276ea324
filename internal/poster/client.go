// Curatus - Similarity-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatus

// Package poster implements the TMDB poster enrichment client.
//
// Poster enrichment is a best-effort concern: every failure mode (timeout,
// connection error, non-200 status, TMDB error payload, missing image
// metadata, missing API key, open circuit breaker) degrades to "poster
// absent" and is never surfaced to callers as an error. Absence is an
// explicit result variant, not a swallowed exception, so tests can assert on
// the degradation paths deterministically.
//
// API Reference: https://developer.themoviedb.org/reference/movie-details
package poster

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/curatus/internal/metrics"
)

// Config holds TMDB client settings.
type Config struct {
	// APIKey authenticates against TMDB. Empty disables the client: all
	// lookups short-circuit to absent without network calls.
	APIKey string

	// APIBaseURL is the TMDB API root, e.g. https://api.themoviedb.org/3.
	APIBaseURL string

	// ImageBaseURL is the poster image root including the size segment,
	// e.g. https://image.tmdb.org/t/p/w500.
	ImageBaseURL string

	// Timeout bounds every individual lookup.
	Timeout time.Duration

	// BatchSize is the default chunk size for FetchBatch.
	BatchSize int

	// RequestInterval is the minimum spacing between consecutive TMDB
	// calls. The limiter owns the pacing; fetch logic never sleeps.
	RequestInterval time.Duration
}

// Client fetches poster URLs from TMDB.
//
// Calls are paced by a fixed-interval rate limiter and guarded by a circuit
// breaker, so a dead TMDB endpoint degrades quickly instead of serializing
// timeouts. Safe for concurrent use.
type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *breaker
	cache      *Cache
	logger     zerolog.Logger
}

// movieDetails is the subset of the TMDB movie response the client reads.
// TMDB reports its own errors in-band via status_code (e.g. 34 = not found,
// 7 = invalid key) alongside HTTP status.
type movieDetails struct {
	StatusCode int    `json:"status_code"`
	PosterPath string `json:"poster_path"`
	Title      string `json:"title"`
}

// NewClient creates a TMDB poster client.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewClient(cfg Config, logger zerolog.Logger) *Client {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 2
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	// A zero interval means unpaced; rate.Inf disables the limiter wait.
	limit := rate.Inf
	if cfg.RequestInterval > 0 {
		limit = rate.Every(cfg.RequestInterval)
	}

	componentLogger := logger.With().Str("component", "poster").Logger()

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(limit, 1),
		breaker:    newBreaker(componentLogger),
		logger:     componentLogger,
	}
}

// SetCache attaches a poster URL cache. Must be called before the client is
// shared across goroutines.
func (c *Client) SetCache(cache *Cache) {
	c.cache = cache
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool {
	return c.cfg.APIKey != ""
}

// FetchPoster looks up the poster URL for a TMDB movie id.
//
// The second return value reports presence. Absence covers every failure
// mode and is never an error; recommendations remain usable without posters.
func (c *Client) FetchPoster(ctx context.Context, id int) (string, bool) {
	if !c.Enabled() {
		metrics.PosterFetches.WithLabelValues("no_key").Inc()
		return "", false
	}

	if c.cache != nil {
		if url, ok := c.cache.Get(id); ok {
			metrics.PosterCacheOps.WithLabelValues("hit").Inc()
			return url, true
		}
		metrics.PosterCacheOps.WithLabelValues("miss").Inc()
	}

	if err := c.limiter.Wait(ctx); err != nil {
		// Caller cancelled while waiting for a pacing slot.
		metrics.PosterFetches.WithLabelValues("error").Inc()
		return "", false
	}

	start := time.Now()
	url, err := c.breaker.execute(func() (string, error) {
		return c.fetchOne(ctx, id)
	})
	metrics.PosterFetchDuration.Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		c.observeFailure(ctx, id, err)
		return "", false
	case url == "":
		// Successful response without image metadata.
		metrics.PosterFetches.WithLabelValues("absent").Inc()
		return "", false
	default:
		metrics.PosterFetches.WithLabelValues("hit").Inc()
		if c.cache != nil {
			c.cache.Set(id, url)
		}
		return url, true
	}
}

// FetchBatch looks up poster URLs for a list of movie ids.
//
// Ids are processed in chunks of at most batchSize (the configured default
// when batchSize <= 0), sequentially, with spacing enforced by the rate
// limiter. Individual failures are absorbed and omitted from the result;
// the batch never fails as a whole. Cancellation aborts mid-batch and
// returns whatever partial mapping has been accumulated so far.
func (c *Client) FetchBatch(ctx context.Context, ids []int, batchSize int) map[int]string {
	posters := make(map[int]string, len(ids))

	if len(ids) == 0 || !c.Enabled() {
		return posters
	}

	if batchSize <= 0 {
		batchSize = c.cfg.BatchSize
	}

	for chunkStart := 0; chunkStart < len(ids); chunkStart += batchSize {
		chunkEnd := chunkStart + batchSize
		if chunkEnd > len(ids) {
			chunkEnd = len(ids)
		}

		for _, id := range ids[chunkStart:chunkEnd] {
			if ctx.Err() != nil {
				c.logger.Debug().
					Int("fetched", len(posters)).
					Int("requested", len(ids)).
					Msg("batch fetch cancelled, returning partial results")
				return posters
			}

			if url, ok := c.FetchPoster(ctx, id); ok {
				posters[id] = url
			}
		}

		c.logger.Debug().
			Int("chunk_end", chunkEnd).
			Int("total", len(ids)).
			Int("fetched", len(posters)).
			Msg("poster batch chunk complete")
	}

	return posters
}

// fetchOne performs a single TMDB movie lookup.
//
// Returns an error for transport and HTTP failures (these feed the circuit
// breaker), and ("", nil) for healthy responses that simply carry no poster.
func (c *Client) fetchOne(ctx context.Context, id int) (string, error) {
	reqURL := fmt.Sprintf("%s/movie/%d?api_key=%s", c.cfg.APIBaseURL, id, c.cfg.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("tmdb movie %d returned status %d", id, resp.StatusCode)
	}

	var details movieDetails
	if err := json.NewDecoder(resp.Body).Decode(&details); err != nil {
		return "", fmt.Errorf("decode tmdb movie %d: %w", id, err)
	}

	// In-band TMDB error despite HTTP 200.
	if details.StatusCode != 0 && details.StatusCode != http.StatusOK {
		return "", fmt.Errorf("tmdb movie %d error code %d", id, details.StatusCode)
	}

	if details.PosterPath == "" {
		return "", nil
	}

	return c.cfg.ImageBaseURL + details.PosterPath, nil
}

// observeFailure records metrics and logs for a failed lookup.
func (c *Client) observeFailure(ctx context.Context, id int, err error) {
	var netErr net.Error

	outcome := "error"
	switch {
	case isBreakerOpen(err):
		outcome = "breaker_open"
	case errors.As(err, &netErr) && netErr.Timeout(), ctx.Err() != nil:
		outcome = "timeout"
	}
	metrics.PosterFetches.WithLabelValues(outcome).Inc()

	c.logger.Debug().
		Err(err).
		Int("movie_id", id).
		Str("outcome", outcome).
		Msg("poster lookup failed")
}

// SelfTest verifies TMDB connectivity with a single well-known lookup.
// Failures are logged, never fatal; the result only affects log output.
func (c *Client) SelfTest(ctx context.Context) {
	if !c.Enabled() {
		c.logger.Info().Msg("no TMDB API key configured; poster enrichment disabled")
		return
	}

	// Avatar (id 19995): stable catalog entry with a poster.
	const probeID = 19995
	if _, ok := c.FetchPoster(ctx, probeID); ok {
		c.logger.Info().Msg("TMDB connectivity verified")
	} else {
		c.logger.Warn().Msg("TMDB connectivity check failed; posters may be unavailable")
	}
}
