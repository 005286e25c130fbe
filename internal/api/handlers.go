// Campmap - Campground Listings and Map Clustering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campmap

package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/campmap/internal/catalog"
	"github.com/tomtom215/campmap/internal/config"
	"github.com/tomtom215/campmap/internal/logging"
	"github.com/tomtom215/campmap/internal/middleware"
	"github.com/tomtom215/campmap/internal/views"
	ws "github.com/tomtom215/campmap/internal/websocket"
)

// Handler contains dependencies for API handlers
//
// Handler methods are split across files:
//   - handlers.go: Handler struct, constructor, WebSocket upgrader
//   - handlers_health.go: liveness, readiness and performance endpoints
//   - handlers_locations.go: location listing, CRUD, reviews and GeoJSON
//   - handlers_views.go: mounted map views and their WebSocket stream
type Handler struct {
	catalog   *catalog.Catalog
	views     *views.Registry
	wsHub     *ws.Hub
	config    *config.Config
	startTime time.Time
	perfMon   *middleware.PerformanceMonitor
}

// NewHandler creates the API handler.
//
//	handler := api.NewHandler(cat, registry, hub, cfg)
//	router := api.NewRouter(handler, cfg)
//	http.ListenAndServe(cfg.Server.Addr(), router.SetupChi())
func NewHandler(cat *catalog.Catalog, registry *views.Registry, hub *ws.Hub, cfg *config.Config) *Handler {
	return &Handler{
		catalog:   cat,
		views:     registry,
		wsHub:     hub,
		config:    cfg,
		startTime: time.Now(),
		perfMon:   middleware.NewPerformanceMonitor(1000),
	}
}

// PerformanceMonitor returns the monitor fed by the router.
func (h *Handler) PerformanceMonitor() *middleware.PerformanceMonitor {
	return h.perfMon
}

// StartBroadcasts forwards view updates to the clients following each view
// and catalog changes to every client. The returned func stops forwarding.
func (h *Handler) StartBroadcasts() (stop func()) {
	stopViews := h.views.Subscribe(func(u views.Update) {
		h.wsHub.BroadcastViewUpdate(u.ViewID, u)
	})
	stopCatalog := h.catalog.Subscribe(func(ev catalog.Event) {
		h.wsHub.BroadcastJSON(ws.MessageTypeCatalogChange, ev)
	})
	return func() {
		stopViews()
		stopCatalog()
	}
}

// getUpgrader creates a WebSocket upgrader with origin checking and a
// handshake timeout.
func (h *Handler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin accepts upgrades from the configured CORS origins.
// Browsers always send Origin, so a missing header is rejected.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		logging.Warn().Msg("WebSocket connection rejected: missing Origin header")
		return false
	}

	if h.config == nil {
		return true
	}

	for _, allowed := range h.config.Security.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	logging.Warn().Str("origin", sanitizeLogValue(origin)).Msg("WebSocket connection rejected from unauthorized origin")
	return false
}
