// Curatus - Similarity-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatus

// Package catalog holds the read-only movie catalog and its precomputed
// similarity matrix.
//
// Both are loaded once at startup from a gob-encoded artifact produced by the
// offline training pipeline and never mutated afterwards, so every method is
// safe for unsynchronized concurrent use.
package catalog

import "sort"

// Item is a single recommendable movie.
type Item struct {
	// ID is the TMDB movie identifier.
	ID int `json:"id"`

	// Title is the display title, used as the lookup key.
	Title string `json:"title"`
}

// Matrix is a square similarity matrix indexed by catalog row.
// matrix[i][j] is the pairwise similarity of items i and j.
type Matrix struct {
	rows [][]float64
}

// Dim returns the matrix dimension.
func (m *Matrix) Dim() int {
	return len(m.rows)
}

// Row returns the dense similarity row for the given index.
// The returned slice is the backing storage and must not be modified.
func (m *Matrix) Row(i int) []float64 {
	return m.rows[i]
}

// Catalog is the immutable set of recommendable items together with their
// similarity matrix.
type Catalog struct {
	items     []Item
	titleRows map[string]int
	matrix    *Matrix

	// duplicateTitles counts titles that appeared more than once in the
	// artifact. Lookups resolve to the first occurrence in catalog order.
	duplicateTitles int
}

// New builds a Catalog from an item table and similarity rows.
// Inputs must already satisfy the artifact invariants (see Load); New is
// exported for tests and for the offline pipeline.
func New(items []Item, rows [][]float64) *Catalog {
	titleRows := make(map[string]int, len(items))
	duplicates := 0
	for i, item := range items {
		if _, seen := titleRows[item.Title]; seen {
			duplicates++
			continue // first occurrence wins
		}
		titleRows[item.Title] = i
	}

	return &Catalog{
		items:           items,
		titleRows:       titleRows,
		matrix:          &Matrix{rows: rows},
		duplicateTitles: duplicates,
	}
}

// Len returns the number of items in the catalog.
func (c *Catalog) Len() int {
	return len(c.items)
}

// ItemAt returns the item at the given row index.
func (c *Catalog) ItemAt(row int) Item {
	return c.items[row]
}

// RowByTitle resolves a title to its similarity matrix row index.
// When the artifact contains duplicate titles, the first occurrence in
// catalog order wins; this is a documented contract, not incidental ordering.
func (c *Catalog) RowByTitle(title string) (int, bool) {
	row, ok := c.titleRows[title]
	return row, ok
}

// Titles returns all titles in catalog load order.
// The slice is freshly allocated on each call.
func (c *Catalog) Titles() []string {
	titles := make([]string, len(c.items))
	for i, item := range c.items {
		titles[i] = item.Title
	}
	return titles
}

// TitlesSorted returns all titles in lexicographic order, for UIs that
// present an alphabetized picker.
func (c *Catalog) TitlesSorted() []string {
	titles := c.Titles()
	sort.Strings(titles)
	return titles
}

// Matrix returns the similarity matrix.
func (c *Catalog) Matrix() *Matrix {
	return c.matrix
}

// DuplicateTitles returns how many titles appeared more than once in the
// artifact.
func (c *Catalog) DuplicateTitles() int {
	return c.duplicateTitles
}
