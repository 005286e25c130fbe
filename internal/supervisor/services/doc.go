// Campmap - Campground Listings and Map Clustering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campmap

/*
Package services adapts Campmap components to suture.Service.

Every wrapper has a Serve(ctx) error that returns ctx.Err() on shutdown and a
String() name used in supervisor events. Components are taken through small
interfaces so this package does not import api, views or catalog.

# Services

HTTPServerService ("http-server"):
  - Runs *http.Server.ListenAndServe in a goroutine
  - Drains connections with Shutdown on cancel, bounded by a timeout

WebSocketHubService ("websocket-hub"):
  - Delegates to websocket.Hub.RunWithContext

BroadcastService ("view-broadcasts"):
  - Holds the api.Handler subscriptions that push view updates and catalog
    changes into the hub

ViewReaperService ("view-reaper"):
  - Calls views.Registry.Reap on a ticker (VIEW_REAP_INTERVAL)

CatalogGCService ("catalog-gc"):
  - Runs Badger value log GC on the catalog (BADGER_GC_INTERVAL)
  - Failures are logged, not returned, so a busy disk does not trip the
    data layer's backoff
*/
package services
