// Campmap - Campground Listings and Map Clustering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campmap

// Package views hosts mounted cluster map views.
//
// A view is what a browser tab showing the campground map holds: one
// mapview.Renderer over a headless mapengine.Map, the click Interaction the
// renderer wires, and a Synchronizer whose location source reads the catalog
// with the view's current filter.
//
// # Lifecycle
//
//	reg := views.NewRegistry(catalog, views.ConfigFrom(cfg))
//	view, err := reg.Mount(ctx, views.MountRequest{Filter: catalog.Filter{Query: "lake"}})
//	res, err := reg.Click(ctx, view.ID(), mapview.ScreenPoint{X: 512, Y: 300})
//	reg.Unmount(view.ID())
//
// Every catalog mutation resynchronizes every mounted view, and SetFilter
// resynchronizes the one view whose list changed. Views whose map could not
// be created (for example without MAP_API_KEY) stay mounted in a degraded
// state: they accept requests and do nothing.
//
// Views idle for longer than the configured TTL are unmounted by Reap, which
// the supervisor calls periodically.
//
// # Updates
//
// Subscribe delivers an Update after every sync, click, camera move, filter
// change and unmount. The HTTP layer forwards them to websocket clients.
package views
