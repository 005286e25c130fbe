// Campmap - Campground Listings and Map Clustering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campmap

/*
Package api provides the Campmap HTTP API on a chi router.

# Endpoints

Health:

	GET    /api/v1/health/live
	GET    /api/v1/health/ready
	GET    /api/v1/health/performance

Locations (the campground catalog):

	GET    /api/v1/locations?q=&categories=&page=
	POST   /api/v1/locations
	GET    /api/v1/locations/geojson?q=&categories=
	GET    /api/v1/locations/{id}
	PUT    /api/v1/locations/{id}
	DELETE /api/v1/locations/{id}
	POST   /api/v1/locations/{id}/reviews
	DELETE /api/v1/locations/{id}/reviews/{reviewID}

Map views (server-side clustered maps over a filtered listing):

	POST   /api/v1/map/views
	GET    /api/v1/map/views
	GET    /api/v1/map/views/{id}
	DELETE /api/v1/map/views/{id}
	PUT    /api/v1/map/views/{id}/filter
	POST   /api/v1/map/views/{id}/click
	POST   /api/v1/map/views/{id}/camera
	GET    /api/v1/map/views/{id}/features
	GET    /api/v1/map/views/{id}/ws

Prometheus metrics are served at /metrics.

# Responses

Every JSON response except the GeoJSON export uses the envelope

	{"success": true, "data": ..., "meta": {"request_id": "...", "timestamp": "..."}}
	{"success": false, "error": {"code": "NOT_FOUND", "message": "..."}, "meta": {...}}

Domain errors map to codes in errors.go. Map interactions that do nothing
are successful responses whose outcomes carry a reason.

# Middleware

Global: request id with logging context, RealIP, access log, Recoverer,
CORS (go-chi/cors) and the performance monitor. Route groups add httprate
limits, security headers and Prometheus instrumentation; the GeoJSON and
features routes are gzip compressed.
*/
package api
