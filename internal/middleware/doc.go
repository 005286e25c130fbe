// Campmap - Campground Listings and Map Clustering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campmap

/*
Package middleware provides the HTTP middleware used by the Campmap router.

Components:

  - RequestID: X-Request-ID propagation, stored in the context for logging
  - PrometheusMetrics: request count, latency and in-flight gauge, labelled
    by chi route pattern
  - Compression: gzip for the GeoJSON and rendered-feature endpoints
  - PerformanceMonitor: sliding-window latency percentiles and slow-request
    logging, exposed at /api/v1/health/performance

The HandlerFunc-shaped middleware (RequestID, PrometheusMetrics, Compression)
is adapted to chi with api.chiMiddleware:

	r.Route("/api/v1/locations", func(r chi.Router) {
	    r.Use(chiMiddleware(middleware.PrometheusMetrics))
	    r.With(chiMiddleware(middleware.Compression)).Get("/geojson", h.LocationsGeoJSON)
	})

Writers wrapped by these middlewares still support http.Hijacker, so the map
view WebSocket endpoint can sit behind them.
*/
package middleware
