// Campmap - Campground Listings and Map Clustering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campmap

/*
Package mapview drives an interactive clustered map of locations.

The package is written against the Map interface, the contract of the
mapping service that actually projects and draws features. Three
components sit on top of it:

  - Renderer owns the single map instance of a mounted view. It declares the
    clustered "locations" source and the clusters, cluster-count and
    unclustered-point layers once, when the style finishes loading.
  - Interaction reacts to clicks. A cluster click eases the camera to the
    cluster's expansion zoom; a point click opens a popup linking to the
    location, anchored on the world copy that was clicked.
  - Synchronizer replaces the source data with the current location list
    whenever that list changes, without recreating the map.

# Failure Model

Nothing in this package returns click or sync failures to the user. A click
that cannot be handled yields an Outcome with ActionNone and a reason, which
is logged at debug level. If the map cannot be constructed (for example the
API key is missing) the Renderer is degraded: it renders nothing, every
operation is a no-op and nothing panics.

# Concurrency

All access to the map goes through the Renderer, which serializes it with a
mutex. The only asynchronous step, cluster expansion-zoom resolution, runs
with the mutex released and is followed by a liveness check so that a view
unmounted in the meantime is never touched.
*/
package mapview
