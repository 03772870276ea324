// Curatus - Similarity-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatus

package api

// RecommendationsRequest holds the validated query parameters for the
// recommendations endpoint. K of -1 means "use the server default".
type RecommendationsRequest struct {
	Title string `validate:"required,min=1,max=512"`
	K     int    `validate:"min=-1"`
}

// TitlesRequest holds the validated query parameters for the titles endpoint.
type TitlesRequest struct {
	Sort string `validate:"omitempty,oneof=catalog alpha"`
}
