// Curatus - Similarity-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatus

package recommend

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/curatus/internal/catalog"
)

// fourItemCatalog builds the reference fixture: item0's similarity row is
// [1.0, 0.9, 0.9, 0.1], so recommending for item0 must return item1 then
// item2 (tie broken by ascending row index).
func fourItemCatalog() *catalog.Catalog {
	return catalog.New(
		[]catalog.Item{
			{ID: 100, Title: "item0"},
			{ID: 101, Title: "item1"},
			{ID: 102, Title: "item2"},
			{ID: 103, Title: "item3"},
		},
		[][]float64{
			{1.0, 0.9, 0.9, 0.1},
			{0.9, 1.0, 0.4, 0.2},
			{0.9, 0.4, 1.0, 0.3},
			{0.1, 0.2, 0.3, 1.0},
		},
	)
}

func newTestEngine(t *testing.T, cat *catalog.Catalog) *Engine {
	t.Helper()
	eng, err := NewEngine(cat, DefaultConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error: %v", err)
	}
	return eng
}

func TestRecommendTieBreak(t *testing.T) {
	eng := newTestEngine(t, fourItemCatalog())

	resp, err := eng.Recommend(context.Background(), "item0", 2)
	if err != nil {
		t.Fatalf("Recommend() error: %v", err)
	}

	if len(resp.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(resp.Items))
	}
	if resp.Items[0].Title != "item1" || resp.Items[1].Title != "item2" {
		t.Errorf("order = [%s, %s], want [item1, item2] (tie broken by row index)",
			resp.Items[0].Title, resp.Items[1].Title)
	}
	if resp.Items[0].Score != 0.9 || resp.Items[1].Score != 0.9 {
		t.Errorf("scores = [%v, %v], want [0.9, 0.9]", resp.Items[0].Score, resp.Items[1].Score)
	}
}

func TestRecommendExcludesQueryItem(t *testing.T) {
	eng := newTestEngine(t, fourItemCatalog())

	resp, err := eng.Recommend(context.Background(), "item0", -1)
	if err != nil {
		t.Fatal(err)
	}
	for _, item := range resp.Items {
		if item.Title == "item0" {
			t.Error("query item appeared in its own recommendations")
		}
	}
}

func TestRecommendScoresNonIncreasing(t *testing.T) {
	eng := newTestEngine(t, fourItemCatalog())

	for _, title := range []string{"item0", "item1", "item2", "item3"} {
		resp, err := eng.Recommend(context.Background(), title, -1)
		if err != nil {
			t.Fatalf("Recommend(%s) error: %v", title, err)
		}
		if len(resp.Items) > 3 {
			t.Errorf("Recommend(%s) returned %d items from a 4-item catalog", title, len(resp.Items))
		}
		for i := 1; i < len(resp.Items); i++ {
			if resp.Items[i].Score > resp.Items[i-1].Score {
				t.Errorf("Recommend(%s): score increased at position %d", title, i)
			}
		}
	}
}

func TestRecommendNotFound(t *testing.T) {
	eng := newTestEngine(t, fourItemCatalog())

	_, err := eng.Recommend(context.Background(), "No Such Movie", 10)
	if !errors.Is(err, ErrTitleNotFound) {
		t.Errorf("error = %v, want ErrTitleNotFound", err)
	}
}

func TestRecommendZeroK(t *testing.T) {
	eng := newTestEngine(t, fourItemCatalog())

	resp, err := eng.Recommend(context.Background(), "item0", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Items) != 0 {
		t.Errorf("k=0 returned %d items, want 0", len(resp.Items))
	}
}

func TestRecommendFewerCandidatesThanK(t *testing.T) {
	eng := newTestEngine(t, fourItemCatalog())

	resp, err := eng.Recommend(context.Background(), "item0", 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Items) != 3 {
		t.Errorf("got %d items, want exactly 3 (N-1, no padding)", len(resp.Items))
	}
}

func TestRecommendCapsAtMaxK(t *testing.T) {
	items := make([]catalog.Item, 200)
	rows := make([][]float64, 200)
	for i := range items {
		items[i] = catalog.Item{ID: i, Title: fmt.Sprintf("movie-%03d", i)}
		rows[i] = make([]float64, 200)
		for j := range rows[i] {
			rows[i][j] = 1.0 / float64(1+abs(i-j))
		}
	}
	eng := newTestEngine(t, catalog.New(items, rows))

	resp, err := eng.Recommend(context.Background(), "movie-000", 150)
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Items) != DefaultConfig().MaxK {
		t.Errorf("got %d items, want MaxK=%d", len(resp.Items), DefaultConfig().MaxK)
	}
}

func TestRecommendDeterminism(t *testing.T) {
	eng := newTestEngine(t, fourItemCatalog())

	first, err := eng.Recommend(context.Background(), "item3", -1)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 20; i++ {
		again, err := eng.Recommend(context.Background(), "item3", -1)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(first.Items, again.Items) {
			t.Fatalf("run %d differs: %v vs %v", i, first.Items, again.Items)
		}
	}
}

func TestRecommendDefaultK(t *testing.T) {
	items := make([]catalog.Item, 30)
	rows := make([][]float64, 30)
	for i := range items {
		items[i] = catalog.Item{ID: i, Title: fmt.Sprintf("movie-%02d", i)}
		rows[i] = make([]float64, 30)
		for j := range rows[i] {
			rows[i][j] = 1.0 / float64(1+abs(i-j))
		}
	}
	eng := newTestEngine(t, catalog.New(items, rows))

	resp, err := eng.Recommend(context.Background(), "movie-00", -1)
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Items) != DefaultConfig().DefaultK {
		t.Errorf("got %d items, want default k %d", len(resp.Items), DefaultConfig().DefaultK)
	}
	if resp.TotalCandidates != 29 {
		t.Errorf("TotalCandidates = %d, want 29", resp.TotalCandidates)
	}
}

func TestRecommendCancelledContext(t *testing.T) {
	eng := newTestEngine(t, fourItemCatalog())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := eng.Recommend(ctx, "item0", 2); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestNewEngineValidation(t *testing.T) {
	if _, err := NewEngine(nil, DefaultConfig(), zerolog.Nop()); err == nil {
		t.Error("NewEngine accepted a nil catalog")
	}
	if _, err := NewEngine(fourItemCatalog(), &Config{DefaultK: 0, MaxK: 10}, zerolog.Nop()); err == nil {
		t.Error("NewEngine accepted an invalid config")
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
