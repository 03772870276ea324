// Curatus - Similarity-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatus

// Package services adapts the process's long-running components to
// suture's Serve(ctx) lifecycle: the HTTP server and the poster cache
// GC loop.
package services
