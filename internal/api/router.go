// Curatus - Similarity-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatus

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/curatus/internal/middleware"
)

// Router wires handlers and middleware into the Chi route tree.
type Router struct {
	handler *Handler
	mw      *Middleware
}

// NewRouter creates a router from an assembled handler and middleware set.
func NewRouter(handler *Handler, mw *Middleware) *Router {
	if mw == nil {
		mw = NewMiddleware(nil)
	}
	return &Router{handler: handler, mw: mw}
}

// Setup configures all HTTP routes.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.mw.CORS()) // global so OPTIONS preflight is always handled

	// Health endpoints get a permissive limit so monitoring can poll
	// frequently without tripping the data-endpoint limiter.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.mw.RateLimitHealth())
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
		r.Get("/", router.handler.Health)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.mw.RateLimit())
		r.Use(middleware.PrometheusMetrics)

		r.Get("/titles", router.handler.Titles)
		r.Get("/recommendations", router.handler.Recommendations)
	})

	// Prometheus scrape endpoint, outside the rate-limited tree.
	r.Handle("/metrics", promhttp.Handler())

	return r
}
