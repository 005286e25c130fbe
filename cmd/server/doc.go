// Campmap - Campground Listings and Map Clustering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campmap

/*
Package main is the entry point for the Campmap server.

Campmap serves campground listings and hosts server-side cluster maps over
them. Clients mount a map view, then drive it with clicks, camera moves and
filter changes over REST, and follow its state over a WebSocket.

# Architecture

	RootSupervisor ("campmap")
	├── DataSupervisor ("data-layer")
	│   └── Catalog value log GC (on-disk catalog only)
	├── MessagingSupervisor ("messaging-layer")
	│   ├── WebSocket hub
	│   ├── View and catalog broadcasts
	│   └── Idle view reaper
	└── APISupervisor ("api-layer")
	    └── HTTP server

Startup order:

 1. Configuration: koanf v2 (defaults, config.yaml, environment)
 2. Logging: zerolog, JSON or console
 3. Geocoder: static table or MapTiler (rate limited, circuit breaker, cache)
 4. Catalog: BadgerDB location store, optionally seeded
 5. View registry: headless map engine per mounted view
 6. WebSocket hub and API handlers
 7. Supervisor tree, then signal handling

# Configuration

	HTTP_PORT=3000              # listen port
	MAP_API_KEY=<key>           # empty: views mount degraded
	BADGER_PATH=/data/campmap   # or BADGER_IN_MEMORY=true
	SEED_DATA=true              # seed development locations on an empty catalog
	GEOCODER_PROVIDER=static    # static or maptiler
	LOG_LEVEL=info
	LOG_FORMAT=json

See internal/config for the full list.

# Example

	export MAP_API_KEY=your-maptiler-key
	export BADGER_IN_MEMORY=true
	export SEED_DATA=true
	export LOG_FORMAT=console
	./campmap

	curl -X POST localhost:3000/api/v1/map/views -d '{"q":"lake"}'

# Signals

SIGINT and SIGTERM cancel the root context. The HTTP server drains for up to
HTTP_TIMEOUT, every service stops, mounted views are unmounted and the
catalog is closed.
*/
package main
