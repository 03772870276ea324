// Curatus - Similarity-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatus

// Package main is the entry point for the Curatus server.
//
// Curatus serves top-k movie recommendations from a precomputed similarity
// matrix, optionally enriched with TMDB poster artwork. The catalog artifact
// is produced offline and loaded read-only at startup; the runtime surface
// is a small REST API.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: layered loading from defaults, config.yaml, and
//     environment variables (Koanf v2)
//  2. Catalog: load the similarity artifact (fatal when missing or corrupt)
//  3. Recommendation engine: immutable ranking over the catalog
//  4. Poster client: TMDB enrichment with circuit breaker, pacing, and an
//     optional badger-backed URL cache; disabled without an API key
//  5. HTTP server: Chi-routed REST API with Prometheus metrics
//  6. Supervisor tree: suture-managed lifecycle for the HTTP server and
//     cache maintenance
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins):
//   - Environment variables (TMDB_API_KEY, CATALOG_PATH, HTTP_PORT, ...)
//   - Config file (config.yaml, or CONFIG_PATH)
//   - Built-in defaults
//
// A minimal deployment needs only the catalog artifact:
//
//	export CATALOG_PATH=/data/catalog.gob
//	./curatus
//
// Poster enrichment requires a TMDB key, directly or via a mounted secret:
//
//	export TMDB_API_KEY=your-tmdb-api-key
//	# or: export TMDB_API_KEY_FILE=/run/secrets/tmdb_key
//
// Without a key the service still serves recommendations; responses carry
// has_poster=false throughout.
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM:
//   - Stops accepting new connections
//   - Waits for in-flight requests to complete (shutdown timeout)
//   - Closes the poster cache
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/curatus/internal/api"
	"github.com/tomtom215/curatus/internal/catalog"
	"github.com/tomtom215/curatus/internal/config"
	"github.com/tomtom215/curatus/internal/logging"
	"github.com/tomtom215/curatus/internal/poster"
	"github.com/tomtom215/curatus/internal/recommend"
	"github.com/tomtom215/curatus/internal/supervisor"
	"github.com/tomtom215/curatus/internal/supervisor/services"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		// Default logger; config not yet available
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	logging.Info().Msg("Starting Curatus")

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrArtifactMissing):
			logging.Fatal().Err(err).Str("path", cfg.Catalog.Path).
				Msg("Catalog artifact not found; set CATALOG_PATH to the trained artifact")
		case errors.Is(err, catalog.ErrArtifactCorrupt):
			logging.Fatal().Err(err).Str("path", cfg.Catalog.Path).
				Msg("Catalog artifact is corrupt; retrain and redeploy the artifact")
		default:
			logging.Fatal().Err(err).Msg("Failed to load catalog")
		}
	}
	logging.Info().
		Int("items", cat.Len()).
		Int("duplicate_titles", cat.DuplicateTitles()).
		Msg("Catalog loaded")

	engine, err := recommend.NewEngine(cat, &recommend.Config{
		DefaultK: cfg.Recommend.DefaultK,
		MaxK:     cfg.Recommend.MaxK,
	}, logging.Logger())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create recommendation engine")
	}

	// Context governing the whole process lifetime.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	posterClient, posterCache := initPosters(ctx, cfg)
	defer func() {
		if posterCache != nil {
			if err := posterCache.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing poster cache")
			}
		}
	}()

	handler := api.NewHandler(cat, engine, posterClient, cfg.TMDB.BatchSize)
	router := api.NewRouter(handler, api.NewMiddleware(&api.MiddlewareConfig{
		CORSAllowedOrigins: cfg.API.CORSOrigins,
		CORSAllowedMethods: []string{"GET", "OPTIONS"},
		CORSAllowedHeaders: []string{"Content-Type", "Authorization"},
		CORSMaxAge:         86400,
		RateLimitRequests:  cfg.API.RateLimitReqs,
		RateLimitWindow:    cfg.API.RateLimitWindow,
	}))

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.Setup(),
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Supervisor events are logged through the zerolog-backed slog bridge.
	tree, err := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	if posterCache != nil {
		tree.AddMaintenanceService(services.NewCacheGCService(
			posterCache, 10*time.Minute, logging.WithComponent("cache-gc")))
	}

	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Drain until the supervisor has fully stopped.
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Application stopped gracefully")
}

// initPosters builds the TMDB poster client and its optional badger cache.
// Every failure here degrades to recommendations-without-posters; nothing
// in this path is fatal.
func initPosters(ctx context.Context, cfg *config.Config) (*poster.Client, *poster.Cache) {
	apiKey := cfg.TMDB.ResolveAPIKey()

	client := poster.NewClient(poster.Config{
		APIKey:          apiKey,
		APIBaseURL:      cfg.TMDB.APIBaseURL,
		ImageBaseURL:    cfg.TMDB.ImageBaseURL,
		Timeout:         cfg.TMDB.Timeout,
		BatchSize:       cfg.TMDB.BatchSize,
		RequestInterval: cfg.TMDB.RequestInterval,
	}, logging.Logger())

	if !client.Enabled() {
		logging.Info().Msg("No TMDB API key configured; poster enrichment disabled")
		return client, nil
	}

	var cache *poster.Cache
	if cfg.TMDB.CachePath != "" {
		opened, err := poster.OpenCache(cfg.TMDB.CachePath, cfg.TMDB.CacheTTL)
		if err != nil {
			logging.Warn().Err(err).Str("path", cfg.TMDB.CachePath).
				Msg("Failed to open poster cache; continuing without caching")
		} else {
			cache = opened
			client.SetCache(cache)
			logging.Info().
				Str("path", cfg.TMDB.CachePath).
				Dur("ttl", cfg.TMDB.CacheTTL).
				Msg("Poster cache opened")
		}
	}

	// Non-fatal connectivity probe, logged inside the client.
	client.SelfTest(ctx)

	return client, cache
}
