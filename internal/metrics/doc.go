// Campmap - Campground Listings and Map Clustering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campmap

/*
Package metrics provides Prometheus metrics collection and export for observability.

Collectors are registered with the default registry through promauto and
exposed at /metrics by the API router:

	curl http://localhost:3000/metrics

# Available Metrics

HTTP:
  - campmap_api_requests_total{method,endpoint,status}
  - campmap_api_request_duration_seconds{method,endpoint}
  - campmap_api_active_requests

Map views:
  - campmap_map_views_mounted
  - campmap_map_views_degraded
  - campmap_map_clicks_total{layer,action,reason}
  - campmap_map_source_syncs_total{result}
  - campmap_map_source_features

Catalog and geocoding:
  - campmap_catalog_operations_total{operation,result}
  - campmap_geocoder_requests_total{provider,result}
  - campmap_geocoder_request_duration_seconds{provider}
  - campmap_geocoder_cache_hits_total / _misses_total

Circuit breaker and WebSocket:
  - circuit_breaker_state{name}
  - circuit_breaker_requests_total{name,result}
  - circuit_breaker_consecutive_failures{name}
  - circuit_breaker_state_transitions_total{name,from_state,to_state}
  - campmap_websocket_connections_active
  - campmap_websocket_messages_sent_total

Record* helpers keep label values consistent between call sites.
*/
package metrics
