// Curatus - Similarity-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatus

// Package api provides the HTTP surface using the Chi router with
// production middleware from the Chi ecosystem (go-chi/cors,
// go-chi/httprate). All endpoints respond with the models.APIResponse
// envelope encoded via goccy/go-json.
package api
