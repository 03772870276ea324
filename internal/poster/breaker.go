// Curatus - Similarity-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatus

package poster

import (
	"errors"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/curatus/internal/metrics"
)

// breaker wraps TMDB calls with a circuit breaker so that a dead or
// rate-limited endpoint degrades to fast "poster absent" results instead of
// serializing full-timeout waits across a batch.
type breaker struct {
	cb *gobreaker.CircuitBreaker[string]
}

func newBreaker(logger zerolog.Logger) *breaker {
	metrics.PosterBreakerState.Set(0) // closed

	cb := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "tmdb",
		MaxRequests: 1,                // one probe in half-open state
		Interval:    time.Minute,      // reset counts after 1 minute closed
		Timeout:     30 * time.Second, // open -> half-open after 30s

		// Poster traffic is low-volume, so trip on a consecutive-failure
		// streak rather than a failure ratio.
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.PosterBreakerState.Set(breakerStateValue(to))
			logger.Info().
				Str("breaker", name).
				Str("from", breakerStateName(from)).
				Str("to", breakerStateName(to)).
				Msg("circuit breaker state transition")
		},
	})

	return &breaker{cb: cb}
}

// execute runs fn under breaker protection.
func (b *breaker) execute(fn func() (string, error)) (string, error) {
	return b.cb.Execute(fn)
}

// isBreakerOpen reports whether err is a breaker rejection rather than a
// failure of the underlying call.
func isBreakerOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

func breakerStateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func breakerStateName(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
