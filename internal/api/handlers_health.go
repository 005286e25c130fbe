// Campmap - Campground Listings and Map Clustering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campmap

package api

import (
	"context"
	"net/http"
	"time"
)

// readinessTimeout bounds the catalog ping of the readiness probe.
const readinessTimeout = 2 * time.Second

// HealthStatus is the readiness probe payload.
type HealthStatus struct {
	Status           string  `json:"status"`
	CatalogOK        bool    `json:"catalog_ok"`
	MapAvailable     bool    `json:"map_available"`
	MountedViews     int     `json:"mounted_views"`
	WebSocketClients int     `json:"websocket_clients"`
	Uptime           float64 `json:"uptime_seconds"`
}

// HealthLive reports that the process is serving requests.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, r, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady reports 200 when the catalog answers and 503 otherwise. A
// missing map API key does not make the service unready: listings still
// work and map views mount degraded.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	status := HealthStatus{
		Status:       "ready",
		CatalogOK:    h.catalog != nil && h.catalog.Ping(ctx) == nil,
		MapAvailable: h.config != nil && h.config.Map.APIKey != "",
		Uptime:       time.Since(h.startTime).Seconds(),
	}
	if h.views != nil {
		status.MountedViews = h.views.Len()
	}
	if h.wsHub != nil {
		status.WebSocketClients = h.wsHub.GetClientCount()
	}

	rw := NewResponseWriter(w, r)
	if !status.CatalogOK {
		status.Status = "not_ready"
		rw.ErrorWithDetails(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Location catalog unavailable", status)
		return
	}
	rw.Success(status)
}

// HealthPerformance returns per-route latency percentiles over the recent
// request window.
func (h *Handler) HealthPerformance(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, r, map[string]interface{}{
		"endpoints": h.perfMon.GetStats(),
		"recent":    h.perfMon.GetRecentMetrics(getIntParam(r, "recent", 20)),
	})
}
