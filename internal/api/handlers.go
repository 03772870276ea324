// Curatus - Similarity-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatus

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/curatus/internal/catalog"
	"github.com/tomtom215/curatus/internal/logging"
	"github.com/tomtom215/curatus/internal/models"
	"github.com/tomtom215/curatus/internal/poster"
	"github.com/tomtom215/curatus/internal/recommend"
)

// Handler serves the recommendation API. All dependencies are injected at
// construction and immutable afterwards, so handlers are safe for
// concurrent use without locking.
type Handler struct {
	catalog   *catalog.Catalog
	engine    *recommend.Engine
	posters   *poster.Client
	batchSize int
	startTime time.Time
}

// NewHandler creates an API handler. posters may be a disabled client
// (no API key); recommendation responses then carry has_poster=false
// throughout.
func NewHandler(cat *catalog.Catalog, engine *recommend.Engine, posters *poster.Client, batchSize int) *Handler {
	return &Handler{
		catalog:   cat,
		engine:    engine,
		posters:   posters,
		batchSize: batchSize,
		startTime: time.Now(),
	}
}

// titlesView is the data payload of the titles endpoint.
type titlesView struct {
	Titles []string `json:"titles"`
	Count  int      `json:"count"`
}

// recommendationsView is the data payload of the recommendations endpoint.
type recommendationsView struct {
	Query           string                             `json:"query"`
	Items           []recommend.EnrichedRecommendation `json:"items"`
	TotalCandidates int                                `json:"total_candidates"`
	PostersEnabled  bool                               `json:"posters_enabled"`
}

// Titles returns all catalog titles. The sort parameter selects "catalog"
// (load order, the default) or "alpha" for the selector-friendly
// alphabetical ordering.
//
// GET /api/v1/titles?sort=alpha
func (h *Handler) Titles(w http.ResponseWriter, r *http.Request) {
	req := TitlesRequest{Sort: r.URL.Query().Get("sort")}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	start := time.Now()

	var titles []string
	if req.Sort == "alpha" {
		titles = h.catalog.TitlesSorted()
	} else {
		titles = h.catalog.Titles()
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: titlesView{
			Titles: titles,
			Count:  len(titles),
		},
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// Recommendations returns the top-k most similar titles for a query title,
// optionally enriched with poster URLs.
//
// GET /api/v1/recommendations?title=The+Matrix&k=10&posters=true
//
// Parameters:
//   - title: required query title, matched exactly against the catalog
//   - k: result count; omitted or -1 uses the server default, 0 returns
//     an empty list, values above the server maximum are capped
//   - posters: whether to enrich results with poster URLs (default true;
//     a no-op when no TMDB key is configured)
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	req := RecommendationsRequest{
		Title: r.URL.Query().Get("title"),
		K:     getIntParam(r, "k", -1),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	start := time.Now()

	result, err := h.engine.Recommend(r.Context(), req.Title, req.K)
	if err != nil {
		if errors.Is(err, recommend.ErrTitleNotFound) {
			respondError(w, http.StatusNotFound, "NOT_FOUND",
				"title not in catalog", nil)
			return
		}
		if r.Context().Err() != nil {
			// Client went away; nothing useful to write.
			return
		}
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR",
			"recommendation failed", err)
		return
	}

	wantPosters := getBoolParam(r, "posters", true) && h.posters.Enabled()

	var posters map[int]string
	if wantPosters {
		ids := make([]int, len(result.Items))
		for i, item := range result.Items {
			ids[i] = item.ID
		}
		posters = h.posters.FetchBatch(r.Context(), ids, h.batchSize)
	}

	logging.Debug().
		Str("title", sanitizeLogValue(req.Title)).
		Int("returned", len(result.Items)).
		Bool("posters", wantPosters).
		Msg("recommendations served")

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: recommendationsView{
			Query:           result.Query,
			Items:           recommend.Assemble(result.Items, posters),
			TotalCandidates: result.TotalCandidates,
			PostersEnabled:  h.posters.Enabled(),
		},
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// healthView is the data payload of the health endpoints.
type healthView struct {
	Status         string `json:"status"`
	CatalogItems   int    `json:"catalog_items,omitempty"`
	PostersEnabled bool   `json:"posters_enabled"`
	UptimeSeconds  int64  `json:"uptime_seconds"`
}

// HealthLive reports process liveness.
//
// GET /api/v1/health/live
func (h *Handler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: healthView{
			Status:         "alive",
			PostersEnabled: h.posters.Enabled(),
			UptimeSeconds:  int64(time.Since(h.startTime).Seconds()),
		},
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}

// Health reports overall service health: catalog size and poster
// enrichment availability.
//
// GET /api/v1/health
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	status := "ok"
	if h.catalog.Len() == 0 {
		status = "degraded"
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: healthView{
			Status:         status,
			CatalogItems:   h.catalog.Len(),
			PostersEnabled: h.posters.Enabled(),
			UptimeSeconds:  int64(time.Since(h.startTime).Seconds()),
		},
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}

// HealthReady reports readiness to serve recommendations. The catalog is
// loaded before the HTTP server starts, so readiness reduces to having a
// non-empty catalog.
//
// GET /api/v1/health/ready
func (h *Handler) HealthReady(w http.ResponseWriter, _ *http.Request) {
	if h.catalog.Len() == 0 {
		respondError(w, http.StatusServiceUnavailable, "NOT_READY",
			"catalog is empty", nil)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: healthView{
			Status:         "ready",
			CatalogItems:   h.catalog.Len(),
			PostersEnabled: h.posters.Enabled(),
			UptimeSeconds:  int64(time.Since(h.startTime).Seconds()),
		},
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}
