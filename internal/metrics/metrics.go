// Campmap - Campground Listings and Map Clustering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campmap

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campmap_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "campmap_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "campmap_api_active_requests",
			Help: "Number of API requests currently being served",
		},
	)

	// Map View Metrics
	MapViewsMounted = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "campmap_map_views_mounted",
			Help: "Number of currently mounted map views",
		},
	)

	MapViewsDegraded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "campmap_map_views_degraded",
			Help: "Number of currently mounted map views without a usable map",
		},
	)

	MapClicks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campmap_map_clicks_total",
			Help: "Total number of handled map clicks by layer and outcome",
		},
		[]string{"layer", "action", "reason"},
	)

	MapSourceSyncs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campmap_map_source_syncs_total",
			Help: "Total number of location source syncs",
		},
		[]string{"result"}, // "applied", "dropped"
	)

	MapSourceFeatures = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "campmap_map_source_features",
			Help:    "Number of features written to a map source per sync",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	// Catalog Metrics
	CatalogOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campmap_catalog_operations_total",
			Help: "Total number of catalog operations",
		},
		[]string{"operation", "result"},
	)

	// Geocoder Metrics
	GeocoderRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campmap_geocoder_requests_total",
			Help: "Total number of forward geocoding requests",
		},
		[]string{"provider", "result"}, // result: "success", "no_results", "error"
	)

	GeocoderRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "campmap_geocoder_request_duration_seconds",
			Help:    "Duration of forward geocoding requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	GeocoderCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "campmap_geocoder_cache_hits_total",
			Help: "Total number of geocoder cache hits",
		},
	)

	GeocoderCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "campmap_geocoder_cache_misses_total",
			Help: "Total number of geocoder cache misses",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "campmap_websocket_connections_active",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campmap_websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
		[]string{"type"},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordMapClick records the outcome of a map click.
func RecordMapClick(layer, action, reason string) {
	MapClicks.WithLabelValues(layer, action, reason).Inc()
}

// RecordSourceSync records a location source sync. Dropped syncs carry no
// feature count.
func RecordSourceSync(applied bool, features int) {
	if !applied {
		MapSourceSyncs.WithLabelValues("dropped").Inc()
		return
	}
	MapSourceSyncs.WithLabelValues("applied").Inc()
	MapSourceFeatures.Observe(float64(features))
}

// RecordCatalogOperation records a catalog operation and whether it failed.
func RecordCatalogOperation(operation string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	CatalogOperations.WithLabelValues(operation, result).Inc()
}

// RecordGeocode records a forward geocoding request.
func RecordGeocode(provider, result string, duration time.Duration) {
	GeocoderRequests.WithLabelValues(provider, result).Inc()
	GeocoderRequestDuration.WithLabelValues(provider).Observe(duration.Seconds())
}
