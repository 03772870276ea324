// Curatus - Similarity-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatus

package catalog

import (
	"encoding/gob"
	"errors"
	"fmt"
	"os"

	"github.com/tomtom215/curatus/internal/logging"
)

// Sentinel errors for artifact loading. Both are fatal at startup: the
// service cannot recommend anything without a valid catalog.
var (
	// ErrArtifactMissing indicates the artifact file does not exist.
	ErrArtifactMissing = errors.New("catalog artifact not found")

	// ErrArtifactCorrupt indicates the artifact exists but could not be
	// decoded, or its contents violate the catalog invariants.
	ErrArtifactCorrupt = errors.New("catalog artifact corrupt")
)

// Artifact is the on-disk representation of the precomputed catalog.
// It is produced by the offline training pipeline and consumed by Load.
type Artifact struct {
	// Items is the item table in row order.
	Items []Item

	// Similarity is the square similarity matrix; Similarity[i] is the
	// dense row for Items[i].
	Similarity [][]float64
}

// Load reads and validates a gob-encoded catalog artifact.
//
// Errors wrap ErrArtifactMissing when the file does not exist and
// ErrArtifactCorrupt for decode failures and invariant violations
// (item count != matrix dimension, non-square rows).
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrArtifactMissing, path)
		}
		return nil, fmt.Errorf("open catalog artifact %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	var art Artifact
	if err := gob.NewDecoder(f).Decode(&art); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrArtifactCorrupt, path, err)
	}

	if err := art.validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrArtifactCorrupt, path, err)
	}

	cat := New(art.Items, art.Similarity)

	logger := logging.WithComponent("catalog")
	logger.Info().
		Str("path", path).
		Int("items", cat.Len()).
		Msg("catalog loaded")
	if cat.DuplicateTitles() > 0 {
		logger.Warn().
			Int("duplicates", cat.DuplicateTitles()).
			Msg("catalog contains duplicate titles; lookups resolve to the first occurrence")
	}

	return cat, nil
}

// validate checks the artifact invariants.
func (a *Artifact) validate() error {
	if len(a.Items) == 0 {
		return errors.New("empty item table")
	}
	if len(a.Similarity) != len(a.Items) {
		return fmt.Errorf("item count %d does not match matrix dimension %d",
			len(a.Items), len(a.Similarity))
	}
	for i, row := range a.Similarity {
		if len(row) != len(a.Items) {
			return fmt.Errorf("matrix row %d has length %d, want %d",
				i, len(row), len(a.Items))
		}
	}
	return nil
}

// Save writes a gob-encoded catalog artifact. Used by the offline pipeline
// and by tests to build fixtures; the server itself only ever calls Load.
func Save(path string, art *Artifact) error {
	if err := art.validate(); err != nil {
		return fmt.Errorf("invalid artifact: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create catalog artifact %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	if err := gob.NewEncoder(f).Encode(art); err != nil {
		return fmt.Errorf("encode catalog artifact: %w", err)
	}
	return nil
}
