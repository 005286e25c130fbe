// Campmap - Campground Listings and Map Clustering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campmap

/*
Package supervisor runs Campmap's long-lived goroutines under suture v4.

# Tree

	RootSupervisor ("campmap")
	├── DataSupervisor ("data-layer")
	│   └── CatalogGCService (when BADGER_GC_INTERVAL > 0 and the catalog is on disk)
	├── MessagingSupervisor ("messaging-layer")
	│   ├── WebSocketHubService
	│   ├── BroadcastService (view updates and catalog changes to the hub)
	│   └── ViewReaperService (unmounts idle map views)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Each layer counts failures on its own, so a reaper that keeps crashing backs
off without restarting the HTTP listener.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddMessagingService(services.NewWebSocketHubService(hub))
	tree.AddMessagingService(services.NewViewReaperService(registry, cfg.Views.ReapInterval))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))

	errCh := tree.ServeBackground(ctx)

# Events

Supervisor events (service start, failure, backoff, unstopped service) are
logged through sutureslog. main hands it an slog.Logger backed by the global
zerolog logger, so events share the JSON stream with the rest of the process.

# Return values

A service that returns nil is not restarted. A service that returns an error
is restarted after the configured backoff. On shutdown services return
ctx.Err().

# Not supervised

The Badger database and the mounted map views are plain values owned by
main and the view registry. They have no goroutine of their own to restart.
*/
package supervisor
