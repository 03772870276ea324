// Curatus - Similarity-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatus

// Package models defines the wire types shared by all HTTP endpoints.
package models

import (
	"time"
)

// APIResponse is the standardized envelope used by every HTTP endpoint.
//
// Status field values:
//   - "success": request completed, see Data
//   - "error": request failed, see Error
//
// Example successful response:
//
//	{
//	  "status": "success",
//	  "data": {"query": "The Matrix", "items": [...]},
//	  "metadata": {"timestamp": "2026-09-01T12:00:00Z", "query_time_ms": 3}
//	}
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "error": {"code": "NOT_FOUND", "message": "title not in catalog"},
//	  "metadata": {"timestamp": "2026-09-01T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries per-response observability fields. QueryTimeMS is the
// server-side processing time, which for recommendation requests includes
// poster enrichment when it was requested.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	Cached      bool      `json:"cached,omitempty"`
}

// APIError carries structured error details.
//
// Common error codes:
//   - VALIDATION_ERROR: invalid request parameters
//   - NOT_FOUND: the queried title is not in the catalog
//   - RATE_LIMIT_EXCEEDED: too many requests
//   - INTERNAL_ERROR: unexpected server failure
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
