// Campmap - Campground Listings and Map Clustering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campmap

/*
Package cache provides a thread-safe in-memory cache with TTL support.

It sits in front of the forward geocoder so that repeated addresses (the
same campground edited twice, a duplicate submission) do not spend the
outbound request budget.

# Overview

The cache provides:
  - Thread-safe concurrent access (sync.RWMutex)
  - Time-to-live expiration, checked lazily on Get and swept periodically
  - Typed values through a generic Cache[V]
  - Hit, miss and eviction counters for monitoring

# Usage Example

	c := cache.New[geo.LngLat](24 * time.Hour)
	defer c.Close()

	key := cache.GenerateKey("geocode", strings.ToLower(address))
	if ll, ok := c.Get(key); ok {
	    return ll, nil
	}
	ll, err := lookup(ctx, address)
	if err == nil {
	    c.Set(key, ll)
	}

# Cleanup

New starts one goroutine that removes expired entries every cleanup
interval (5 minutes by default). Close stops it; a closed cache keeps
working but no longer sweeps.
*/
package cache
