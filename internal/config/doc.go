// Campmap - Campground Listings and Map Clustering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campmap

/*
Package config provides centralized configuration management for Campmap.

Configuration is loaded with Koanf v2 in three layers, later layers winning:

 1. Built-in defaults (defaultConfig)
 2. Optional YAML file (CONFIG_PATH, ./config.yaml, /etc/campmap/config.yaml)
 3. Environment variables mapped explicitly in envTransformFunc

# Environment Variables

HTTP Server:
  - HTTP_HOST: Bind address (default: 0.0.0.0)
  - HTTP_PORT: Listen port (default: 3000)
  - HTTP_TIMEOUT: Read/write timeout (default: 30s)
  - ENVIRONMENT: development or production

Map:
  - MAP_API_KEY: Map provider key. When empty every mounted view is degraded
    to an empty container and a warning is logged at startup.
  - MAP_STYLE: Style identifier (default: streets-v2)
  - MAP_CENTER_LNG, MAP_CENTER_LAT, MAP_ZOOM: Initial camera
  - MAP_CLUSTER_MAX_ZOOM (default: 14), MAP_CLUSTER_RADIUS (default: 50)

Storage:
  - BADGER_PATH: Location catalog directory (default: /data/campmap)
  - BADGER_IN_MEMORY: Keep the catalog in memory only
  - SEED_DATA: Seed development locations on an empty catalog
  - BADGER_GC_INTERVAL: Value log garbage collection interval (default: 10m, 0 disables)

Geocoding:
  - GEOCODER_PROVIDER: maptiler or static (default: static)
  - GEOCODER_URL, GEOCODER_API_KEY (falls back to MAP_API_KEY)
  - GEOCODER_RATE_LIMIT, GEOCODER_BURST, GEOCODER_CACHE_TTL

Views:
  - VIEW_IDLE_TTL, VIEW_REAP_INTERVAL, VIEW_MAX_MOUNTED

Security:
  - CORS_ORIGINS (comma-separated), RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW,
    DISABLE_RATE_LIMIT

Logging:
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

# Usage

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal().Err(err).Msg("Failed to load configuration")
	}
*/
package config
