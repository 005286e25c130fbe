// Campmap - Campground Listings and Map Clustering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campmap

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/campmap/internal/api"
	"github.com/tomtom215/campmap/internal/catalog"
	"github.com/tomtom215/campmap/internal/config"
	"github.com/tomtom215/campmap/internal/geocode"
	"github.com/tomtom215/campmap/internal/logging"
	"github.com/tomtom215/campmap/internal/supervisor"
	"github.com/tomtom215/campmap/internal/supervisor/services"
	"github.com/tomtom215/campmap/internal/views"
	ws "github.com/tomtom215/campmap/internal/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// The default logger is already usable here.
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("environment", cfg.Server.Environment).
		Str("addr", cfg.Server.Addr()).
		Bool("in_memory", cfg.Database.InMemory).
		Str("geocoder", cfg.Geocoding.Provider).
		Msg("Starting Campmap")

	if cfg.Map.APIKey == "" {
		logging.Warn().Msg("MAP_API_KEY is empty, map views will mount degraded")
	}

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("Campmap stopped with an error")
	}
	logging.Info().Msg("Campmap stopped gracefully")
}

//nolint:gocyclo // sequential setup steps
func run(cfg *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	geocoder, err := geocode.New(cfg.Geocoding, cfg.Map.APIKey)
	if err != nil {
		return err
	}
	if closer, ok := geocoder.(geocode.Closer); ok {
		defer closer.Close()
	}

	cat, err := catalog.Open(cfg.Database, geocoder, catalog.WithPageSize(cfg.API.PageSize))
	if err != nil {
		return err
	}
	defer func() {
		if err := cat.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing catalog")
		}
	}()

	if cfg.Database.SeedData {
		seeded, err := cat.Seed(ctx, catalog.SeedLocations(geocode.DefaultPlaces()))
		if err != nil {
			return err
		}
		logging.Info().Int("created", seeded).Msg("Development locations seeded")
	}

	registry := views.NewRegistry(cat, views.ConfigFrom(cfg))
	defer registry.Close()

	wsHub := ws.NewHub()
	handler := api.NewHandler(cat, registry, wsHub, cfg)

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           api.NewRouter(handler, cfg).SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
		// No WriteTimeout: WebSocket streams set their own write deadlines.
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.Timeout,
	})
	if err != nil {
		return err
	}

	if !cfg.Database.InMemory && cfg.Database.GCInterval > 0 {
		tree.AddDataService(services.NewCatalogGCService(cat, cfg.Database.GCInterval))
	}
	tree.AddMessagingService(services.NewWebSocketHubService(wsHub))
	tree.AddMessagingService(services.NewBroadcastService(handler))
	tree.AddMessagingService(services.NewViewReaperService(registry, cfg.Views.ReapInterval))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.Timeout))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	// ServeBackground sends exactly once and never closes the channel.
	treeErr := <-errCh
	if errors.Is(treeErr, context.Canceled) {
		treeErr = nil
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}
	return treeErr
}
