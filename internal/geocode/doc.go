// Campmap - Campground Listings and Map Clustering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campmap

// Package geocode turns free-form addresses into coordinates.
//
// Two providers are available:
//
//   - MapTilerClient calls the MapTiler geocoding API. Requests are rate
//     limited, pass through a circuit breaker and successful lookups are
//     cached.
//   - Static answers from a fixed address table. It needs no network and
//     is the default in development and tests.
//
// Both return ErrNoResults when the address cannot be resolved; callers
// treat that as an invalid address rather than a service failure.
package geocode
