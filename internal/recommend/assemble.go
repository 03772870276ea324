// Curatus - Similarity-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatus

package recommend

// Assemble merges ranked recommendations with whatever poster URLs were
// successfully fetched.
//
// Rank order is preserved exactly; enrichment never re-ranks. An id missing
// from posters produces HasPoster=false with an empty URL, the explicit
// "no poster available" marker.
func Assemble(recs []Recommendation, posters map[int]string) []EnrichedRecommendation {
	out := make([]EnrichedRecommendation, len(recs))
	for i, rec := range recs {
		url, ok := posters[rec.ID]
		out[i] = EnrichedRecommendation{
			Title:     rec.Title,
			ID:        rec.ID,
			Score:     rec.Score,
			PosterURL: url,
			HasPoster: ok && url != "",
		}
	}
	return out
}
