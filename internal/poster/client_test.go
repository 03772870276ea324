// Curatus - Similarity-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatus

package poster

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// newTMDBStub starts a fake TMDB endpoint. Behavior per movie id is
// controlled by the handler map; unknown ids return 404.
func newTMDBStub(t *testing.T, handlers map[int]http.HandlerFunc, calls *atomic.Int64) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			calls.Add(1)
		}

		parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/"), "/")
		if len(parts) != 2 || parts[0] != "movie" {
			http.NotFound(w, r)
			return
		}
		id, err := strconv.Atoi(parts[1])
		if err != nil {
			http.NotFound(w, r)
			return
		}

		if h, ok := handlers[id]; ok {
			h(w, r)
			return
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"status_code":34,"status_message":"The resource you requested could not be found."}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func posterJSON(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":7,"title":"Stub Movie","poster_path":"` + path + `"}`))
	}
}

func newTestClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return NewClient(Config{
		APIKey:       apiKey,
		APIBaseURL:   baseURL,
		ImageBaseURL: "https://image.tmdb.org/t/p/w500",
		Timeout:      timeout,
		BatchSize:    2,
		// Unpaced in tests; pacing is the limiter's concern, not the
		// fetch logic's.
		RequestInterval: 0,
	}, zerolog.Nop())
}

func TestFetchPosterSuccess(t *testing.T) {
	srv := newTMDBStub(t, map[int]http.HandlerFunc{
		7: posterJSON("/seven.jpg"),
	}, nil)
	client := newTestClient(srv.URL, "test-key", time.Second)

	url, ok := client.FetchPoster(context.Background(), 7)
	if !ok {
		t.Fatal("expected poster, got absent")
	}
	if want := "https://image.tmdb.org/t/p/w500/seven.jpg"; url != want {
		t.Errorf("url = %q, want %q", url, want)
	}
}

func TestFetchPosterNoKeySkipsNetwork(t *testing.T) {
	var calls atomic.Int64
	srv := newTMDBStub(t, nil, &calls)
	client := newTestClient(srv.URL, "", time.Second)

	if _, ok := client.FetchPoster(context.Background(), 7); ok {
		t.Error("expected absent without an API key")
	}
	if calls.Load() != 0 {
		t.Errorf("issued %d network calls without an API key", calls.Load())
	}
}

func TestFetchPosterNotFoundStatus(t *testing.T) {
	srv := newTMDBStub(t, nil, nil) // every id 404s
	client := newTestClient(srv.URL, "test-key", time.Second)

	if _, ok := client.FetchPoster(context.Background(), 99999); ok {
		t.Error("expected absent for 404 response")
	}
}

func TestFetchPosterInBandError(t *testing.T) {
	srv := newTMDBStub(t, map[int]http.HandlerFunc{
		7: func(w http.ResponseWriter, _ *http.Request) {
			// HTTP 200 carrying a TMDB error payload
			_, _ = w.Write([]byte(`{"status_code":7,"status_message":"Invalid API key"}`))
		},
	}, nil)
	client := newTestClient(srv.URL, "bad-key", time.Second)

	if _, ok := client.FetchPoster(context.Background(), 7); ok {
		t.Error("expected absent for in-band TMDB error")
	}
}

func TestFetchPosterMissingPosterPath(t *testing.T) {
	srv := newTMDBStub(t, map[int]http.HandlerFunc{
		7: func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"id":7,"title":"No Art","poster_path":null}`))
		},
	}, nil)
	client := newTestClient(srv.URL, "test-key", time.Second)

	if _, ok := client.FetchPoster(context.Background(), 7); ok {
		t.Error("expected absent when response lacks image metadata")
	}
}

func TestFetchPosterTimeout(t *testing.T) {
	srv := newTMDBStub(t, map[int]http.HandlerFunc{
		42: func(w http.ResponseWriter, _ *http.Request) {
			time.Sleep(500 * time.Millisecond)
			posterJSON("/late.jpg")(w, nil)
		},
	}, nil)
	client := newTestClient(srv.URL, "test-key", 50*time.Millisecond)

	start := time.Now()
	_, ok := client.FetchPoster(context.Background(), 42)
	if ok {
		t.Error("expected absent on timeout")
	}
	if elapsed := time.Since(start); elapsed > 400*time.Millisecond {
		t.Errorf("timeout not enforced, took %s", elapsed)
	}
}

func TestFetchBatchEmptyIDs(t *testing.T) {
	var calls atomic.Int64
	srv := newTMDBStub(t, nil, &calls)
	client := newTestClient(srv.URL, "test-key", time.Second)

	posters := client.FetchBatch(context.Background(), nil, 2)
	if len(posters) != 0 {
		t.Errorf("got %d posters for empty id list", len(posters))
	}
	if calls.Load() != 0 {
		t.Errorf("issued %d network calls for empty id list", calls.Load())
	}
}

func TestFetchBatchNoKeySkipsNetwork(t *testing.T) {
	var calls atomic.Int64
	srv := newTMDBStub(t, nil, &calls)
	client := newTestClient(srv.URL, "", time.Second)

	posters := client.FetchBatch(context.Background(), []int{1, 2, 3}, 2)
	if len(posters) != 0 {
		t.Errorf("got %d posters without an API key", len(posters))
	}
	if calls.Load() != 0 {
		t.Errorf("issued %d network calls without an API key", calls.Load())
	}
}

func TestFetchBatchPartialFailure(t *testing.T) {
	srv := newTMDBStub(t, map[int]http.HandlerFunc{
		42: func(w http.ResponseWriter, _ *http.Request) {
			time.Sleep(500 * time.Millisecond) // forces client timeout
			posterJSON("/late.jpg")(w, nil)
		},
		7: posterJSON("/seven.jpg"),
	}, nil)
	client := newTestClient(srv.URL, "test-key", 100*time.Millisecond)

	posters := client.FetchBatch(context.Background(), []int{42, 7}, 2)

	if len(posters) != 1 {
		t.Fatalf("got %d posters, want 1: %v", len(posters), posters)
	}
	if url, ok := posters[7]; !ok || url != "https://image.tmdb.org/t/p/w500/seven.jpg" {
		t.Errorf("posters[7] = %q, %v", url, ok)
	}
	if _, ok := posters[42]; ok {
		t.Error("timed-out id must be omitted from the result mapping")
	}
}

func TestFetchBatchCancellationReturnsPartial(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	slow := func(path string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
			posterJSON(path)(w, r)
		}
	}
	srv := newTMDBStub(t, map[int]http.HandlerFunc{
		1: func(w http.ResponseWriter, r *http.Request) {
			posterJSON("/one.jpg")(w, r)
			cancel() // cancel as soon as the first fetch completes
		},
		2: slow("/two.jpg"),
		3: slow("/three.jpg"),
	}, nil)
	client := newTestClient(srv.URL, "test-key", time.Second)

	posters := client.FetchBatch(ctx, []int{1, 2, 3}, 1)

	if _, ok := posters[1]; !ok {
		t.Error("completed work discarded on cancellation")
	}
	if len(posters) >= 3 {
		t.Errorf("cancellation did not abort the batch: %v", posters)
	}
}

func TestFetchBatchChunking(t *testing.T) {
	var calls atomic.Int64
	handlers := map[int]http.HandlerFunc{}
	for id := 1; id <= 5; id++ {
		handlers[id] = posterJSON("/p" + strconv.Itoa(id) + ".jpg")
	}
	srv := newTMDBStub(t, handlers, &calls)
	client := newTestClient(srv.URL, "test-key", time.Second)

	posters := client.FetchBatch(context.Background(), []int{1, 2, 3, 4, 5}, 2)

	if len(posters) != 5 {
		t.Errorf("got %d posters, want 5", len(posters))
	}
	if calls.Load() != 5 {
		t.Errorf("issued %d calls, want 5 (one per id)", calls.Load())
	}
}

func TestFetchPosterUsesCache(t *testing.T) {
	var calls atomic.Int64
	srv := newTMDBStub(t, map[int]http.HandlerFunc{
		7: posterJSON("/seven.jpg"),
	}, &calls)

	cache, err := OpenCache(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatalf("OpenCache() error: %v", err)
	}
	defer func() { _ = cache.Close() }()

	client := newTestClient(srv.URL, "test-key", time.Second)
	client.SetCache(cache)

	first, ok := client.FetchPoster(context.Background(), 7)
	if !ok {
		t.Fatal("first fetch failed")
	}
	second, ok := client.FetchPoster(context.Background(), 7)
	if !ok || second != first {
		t.Errorf("cached fetch = %q, %v; want %q", second, ok, first)
	}
	if calls.Load() != 1 {
		t.Errorf("issued %d network calls, want 1 (second served from cache)", calls.Load())
	}
}

func TestEnabled(t *testing.T) {
	if newTestClient("http://127.0.0.1:0", "", time.Second).Enabled() {
		t.Error("Enabled() = true without key")
	}
	if !newTestClient("http://127.0.0.1:0", "k", time.Second).Enabled() {
		t.Error("Enabled() = false with key")
	}
}
