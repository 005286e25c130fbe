// Campmap - Campground Listings and Map Clustering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campmap

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/campmap/internal/catalog"
	"github.com/tomtom215/campmap/internal/logging"
	"github.com/tomtom215/campmap/internal/mapview"
	"github.com/tomtom215/campmap/internal/views"
	ws "github.com/tomtom215/campmap/internal/websocket"
)

// registerTimeout bounds the wait for the hub to accept a new client.
const registerTimeout = 5 * time.Second

// MountView mounts a map view over the listings matching the request filter.
// A view whose map cannot be created (no API key) is still mounted and
// reported as degraded.
func (h *Handler) MountView(w http.ResponseWriter, r *http.Request) {
	var req MountViewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondServiceError(w, r, err)
		return
	}

	mount := views.MountRequest{
		Filter: catalog.Filter{Query: req.Query, Categories: req.Categories},
		Width:  req.Width,
		Height: req.Height,
	}
	if req.Camera != nil {
		cam := req.Camera.Camera()
		mount.Camera = &cam
	}

	v, err := h.views.Mount(r.Context(), mount)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/v1/map/views/"+v.ID())
	NewResponseWriter(w, r).Created(v.State())
}

// ListViews returns the state of every mounted view.
func (h *Handler) ListViews(w http.ResponseWriter, r *http.Request) {
	mounted := h.views.List()
	states := make([]views.State, len(mounted))
	for i, v := range mounted {
		states[i] = v.State()
	}
	WriteSuccess(w, r, states)
}

// GetView returns a view's state.
func (h *Handler) GetView(w http.ResponseWriter, r *http.Request) {
	v, err := h.views.Touch(chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	WriteSuccess(w, r, v.State())
}

// UnmountView tears a view down.
func (h *Handler) UnmountView(w http.ResponseWriter, r *http.Request) {
	if err := h.views.Unmount(chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, r, err)
		return
	}
	NewResponseWriter(w, r).NoContent()
}

// SetViewFilter replaces the listings a view shows and resynchronizes it.
func (h *Handler) SetViewFilter(w http.ResponseWriter, r *http.Request) {
	var req FilterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondServiceError(w, r, err)
		return
	}

	st, err := h.views.SetFilter(r.Context(), chi.URLParam(r, "id"), req.Filter())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	WriteSuccess(w, r, st)
}

// ClickView dispatches a click at a pixel of the view. Map interactions that
// do nothing (nothing under the pointer, map still loading, degraded map)
// are reported as outcomes with a reason, never as errors.
func (h *Handler) ClickView(w http.ResponseWriter, r *http.Request) {
	var req ClickRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondServiceError(w, r, err)
		return
	}

	res, err := h.views.Click(r.Context(), chi.URLParam(r, "id"), mapview.ScreenPoint{X: req.X, Y: req.Y})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	WriteSuccess(w, r, res)
}

// MoveView eases a view's camera.
func (h *Handler) MoveView(w http.ResponseWriter, r *http.Request) {
	var req CameraRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondServiceError(w, r, err)
		return
	}

	st, err := h.views.Move(r.Context(), chi.URLParam(r, "id"), req.Camera())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	WriteSuccess(w, r, st)
}

// ViewFeatures renders the view: the clusters and points visible in its
// viewport with evaluated paint, plus open popups.
func (h *Handler) ViewFeatures(w http.ResponseWriter, r *http.Request) {
	frame, err := h.views.Features(chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	WriteSuccess(w, r, frame)
}

// ViewWebSocket upgrades to a WebSocket that receives the view's updates.
func (h *Handler) ViewWebSocket(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.views.Touch(id); err != nil {
		respondServiceError(w, r, err)
		return
	}

	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		logging.Ctx(r.Context()).Warn().Err(err).Str("view", id).Msg("WebSocket upgrade failed")
		return
	}

	client := ws.NewClient(h.wsHub, conn, id)
	select {
	case h.wsHub.Register <- client:
	case <-time.After(registerTimeout):
		// The hub is not running, most likely because the server is stopping.
		_ = conn.Close()
		logging.Ctx(r.Context()).Warn().Str("view", id).Msg("WebSocket hub unavailable")
		return
	}
	client.Start()

	logging.Ctx(r.Context()).Debug().Str("view", id).Uint64("client", client.ID()).Msg("WebSocket client following map view")
}
