// Campmap - Campground Listings and Map Clustering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campmap

// Package logging provides the process-wide zerolog logger for Campmap.
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//
//	logging.Info().Str("view", id).Msg("Map view mounted")
//	logging.Ctx(ctx).Debug().Str("reason", reason).Msg("Cluster click ignored")
//
// # Configuration
//
// Level and format normally come from the `logging` section of the
// application config (LOG_LEVEL, LOG_FORMAT, LOG_CALLER).
//
// # Context
//
// HTTP middleware stores a request id and a short correlation id in the
// request context. Ctx(ctx) returns a logger that carries both, so map
// interaction diagnostics can be traced back to the click request that
// produced them.
//
// # slog
//
// NewSlogLogger bridges zerolog to log/slog for libraries such as
// sutureslog that only accept a *slog.Logger.
package logging
