// Curatus - Similarity-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatus

// Package middleware provides HTTP middleware shared across routes:
// request ID propagation and Prometheus request instrumentation.
// CORS and rate limiting use the Chi ecosystem middleware directly
// and are configured in the api package.
package middleware
