// Curatus - Similarity-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatus

package api

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/curatus/internal/catalog"
	"github.com/tomtom215/curatus/internal/poster"
	"github.com/tomtom215/curatus/internal/recommend"
)

type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type recsData struct {
	Query string `json:"query"`
	Items []struct {
		Title     string  `json:"title"`
		ID        int     `json:"id"`
		Score     float64 `json:"score"`
		PosterURL string  `json:"poster_url"`
		HasPoster bool    `json:"has_poster"`
	} `json:"items"`
	TotalCandidates int  `json:"total_candidates"`
	PostersEnabled  bool `json:"posters_enabled"`
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	items := []catalog.Item{
		{ID: 603, Title: "The Matrix"},
		{ID: 27205, Title: "Inception"},
		{ID: 949, Title: "Heat"},
		{ID: 348, Title: "Alien"},
	}
	rows := [][]float64{
		{1.0, 0.9, 0.5, 0.1},
		{0.9, 1.0, 0.4, 0.2},
		{0.5, 0.4, 1.0, 0.3},
		{0.1, 0.2, 0.3, 1.0},
	}
	return catalog.New(items, rows)
}

// newTestRouter assembles a full route tree against the four-item catalog.
// posterClient may serve a disabled client (empty key) to exercise the
// degraded path.
func newTestRouter(t *testing.T, posterClient *poster.Client) http.Handler {
	t.Helper()

	cat := testCatalog(t)
	engine, err := recommend.NewEngine(cat, &recommend.Config{DefaultK: 10, MaxK: 100}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error: %v", err)
	}

	handler := NewHandler(cat, engine, posterClient, 2)
	return NewRouter(handler, NewMiddleware(nil)).Setup()
}

func disabledPosterClient() *poster.Client {
	return poster.NewClient(poster.Config{Timeout: time.Second}, zerolog.Nop())
}

func doGet(t *testing.T, h http.Handler, url string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("response is not valid JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return rec, env
}

func TestTitles(t *testing.T) {
	h := newTestRouter(t, disabledPosterClient())

	rec, env := doGet(t, h, "/api/v1/titles")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if env.Status != "success" {
		t.Errorf("envelope status = %q", env.Status)
	}

	var data struct {
		Titles []string `json:"titles"`
		Count  int      `json:"count"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatal(err)
	}
	if data.Count != 4 || len(data.Titles) != 4 {
		t.Errorf("count = %d, titles = %v", data.Count, data.Titles)
	}
	// catalog order, not alphabetical
	if data.Titles[0] != "The Matrix" {
		t.Errorf("titles[0] = %q, want The Matrix", data.Titles[0])
	}
}

func TestTitlesSortedAlpha(t *testing.T) {
	h := newTestRouter(t, disabledPosterClient())

	_, env := doGet(t, h, "/api/v1/titles?sort=alpha")

	var data struct {
		Titles []string `json:"titles"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatal(err)
	}
	if data.Titles[0] != "Alien" {
		t.Errorf("titles[0] = %q, want Alien", data.Titles[0])
	}
}

func TestTitlesInvalidSort(t *testing.T) {
	h := newTestRouter(t, disabledPosterClient())

	rec, env := doGet(t, h, "/api/v1/titles?sort=bogus")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("error = %+v, want VALIDATION_ERROR", env.Error)
	}
}

func TestRecommendationsWithoutPosters(t *testing.T) {
	h := newTestRouter(t, disabledPosterClient())

	rec, env := doGet(t, h, "/api/v1/recommendations?title=The+Matrix")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200\nbody: %s", rec.Code, rec.Body.String())
	}

	var data recsData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatal(err)
	}
	if data.Query != "The Matrix" {
		t.Errorf("query = %q", data.Query)
	}
	if len(data.Items) != 3 {
		t.Fatalf("got %d items, want 3", len(data.Items))
	}
	if data.Items[0].Title != "Inception" {
		t.Errorf("items[0] = %q, want Inception (highest similarity)", data.Items[0].Title)
	}
	for _, item := range data.Items {
		if item.HasPoster || item.PosterURL != "" {
			t.Errorf("item %q carries a poster with enrichment disabled", item.Title)
		}
	}
	if data.PostersEnabled {
		t.Error("posters_enabled = true with no API key")
	}
	if data.TotalCandidates != 3 {
		t.Errorf("total_candidates = %d, want 3", data.TotalCandidates)
	}
}

func TestRecommendationsMissingTitle(t *testing.T) {
	h := newTestRouter(t, disabledPosterClient())

	rec, env := doGet(t, h, "/api/v1/recommendations")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("error = %+v", env.Error)
	}
}

func TestRecommendationsUnknownTitle(t *testing.T) {
	h := newTestRouter(t, disabledPosterClient())

	rec, env := doGet(t, h, "/api/v1/recommendations?title=Nope")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "NOT_FOUND" {
		t.Errorf("error = %+v", env.Error)
	}
}

func TestRecommendationsKZero(t *testing.T) {
	h := newTestRouter(t, disabledPosterClient())

	_, env := doGet(t, h, "/api/v1/recommendations?title=Heat&k=0")

	var data recsData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatal(err)
	}
	if len(data.Items) != 0 {
		t.Errorf("got %d items for k=0, want 0", len(data.Items))
	}
}

func TestRecommendationsWithPosters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"poster_path":"/p.jpg"}`))
	}))
	defer srv.Close()

	client := poster.NewClient(poster.Config{
		APIKey:       "test-key",
		APIBaseURL:   srv.URL,
		ImageBaseURL: "https://image.tmdb.org/t/p/w500",
		Timeout:      time.Second,
		BatchSize:    2,
	}, zerolog.Nop())

	h := newTestRouter(t, client)

	_, env := doGet(t, h, "/api/v1/recommendations?title=The+Matrix&k=2")

	var data recsData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatal(err)
	}
	if len(data.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(data.Items))
	}
	for _, item := range data.Items {
		if !item.HasPoster {
			t.Errorf("item %q missing poster", item.Title)
		}
		if item.PosterURL != "https://image.tmdb.org/t/p/w500/p.jpg" {
			t.Errorf("poster_url = %q", item.PosterURL)
		}
	}
	if !data.PostersEnabled {
		t.Error("posters_enabled = false with API key configured")
	}
}

func TestRecommendationsPostersParamFalse(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"poster_path":"/p.jpg"}`))
	}))
	defer srv.Close()

	client := poster.NewClient(poster.Config{
		APIKey:     "test-key",
		APIBaseURL: srv.URL,
		Timeout:    time.Second,
	}, zerolog.Nop())

	h := newTestRouter(t, client)

	_, env := doGet(t, h, "/api/v1/recommendations?title=The+Matrix&posters=false")

	var data recsData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatal(err)
	}
	for _, item := range data.Items {
		if item.HasPoster {
			t.Errorf("item %q enriched despite posters=false", item.Title)
		}
	}
	if calls.Load() != 0 {
		t.Errorf("issued %d poster fetches with posters=false", calls.Load())
	}
}

func TestHealthEndpoints(t *testing.T) {
	h := newTestRouter(t, disabledPosterClient())

	for _, path := range []string{"/api/v1/health/live", "/api/v1/health/ready", "/api/v1/health"} {
		rec, env := doGet(t, h, path)
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d, want 200", path, rec.Code)
		}
		if env.Status != "success" {
			t.Errorf("%s envelope status = %q", path, env.Status)
		}
	}
}

func TestResponseHeaders(t *testing.T) {
	h := newTestRouter(t, disabledPosterClient())

	rec, _ := doGet(t, h, "/api/v1/titles")
	if rec.Header().Get("ETag") == "" {
		t.Error("missing ETag header")
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestRouter(t, disabledPosterClient())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
