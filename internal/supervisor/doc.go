// Curatus - Similarity-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatus

// Package supervisor builds the suture/v4 supervision tree that runs the
// long-lived parts of the process. Supervisor events are logged through
// sutureslog, bridged onto the zerolog global logger via the logging
// package's slog adapter.
package supervisor
