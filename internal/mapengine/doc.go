// Campmap - Campground Listings and Map Clustering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campmap

// Package mapengine is an in-process implementation of mapview.Map.
//
// It keeps everything a browser map would keep for one view: the camera,
// the declared GeoJSON sources and style layers, the registered click
// handlers and the open popups. Clustered sources are backed by a
// cluster.Index that is rebuilt whenever the source data is replaced.
//
// # Projection
//
// Screen positions use 512px Web Mercator tiles, so the world is
// 512*2^zoom pixels wide. The viewport is not clamped to one world: when
// it reaches past the antimeridian, features are drawn again on the
// neighbouring world copy and Unproject returns longitudes outside
// [-180, 180] for clicks on that copy.
//
// # Clicks
//
// Click hit-tests the style layers from the top down. Every open popup is
// closed first, then each layer with a registered handler and at least one
// feature under the pointer receives a ClickEvent listing those features,
// topmost first. Handlers run without any engine lock held.
//
// # Usage
//
//	factory := mapengine.NewFactory(mapengine.Options{ValidStyle: config.ValidStyle})
//	r := mapview.Mount(ctx, factory, cfg)
//
// A map created with DeferLoad set stays in the not-loaded state until
// FinishLoad is called, which lets callers exercise the window between
// construction and style load.
package mapengine
