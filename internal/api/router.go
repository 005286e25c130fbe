// Campmap - Campground Listings and Map Clustering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campmap

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/campmap/internal/config"
	"github.com/tomtom215/campmap/internal/middleware"
)

// Router wires the handler into a chi route tree.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router for handler using cfg's security settings.
func NewRouter(handler *Handler, cfg *config.Config) *Router {
	return &Router{
		handler:       handler,
		chiMiddleware: NewChiMiddleware(ChiMiddlewareConfigFrom(cfg)),
	}
}

// chiMiddleware adapts http.HandlerFunc middleware to Chi's func(http.Handler) http.Handler.
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// SetupChi builds the route tree.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()
	h := router.handler
	mw := router.chiMiddleware

	// Global middleware, applied to every route in order.
	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(AccessLog())
	r.Use(chimiddleware.Recoverer)
	r.Use(mw.CORS()) // must be global to answer OPTIONS preflight
	r.Use(h.perfMon.Middleware)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteNotFound(w, r, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed")
	})

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(mw.RateLimitCustom(RateLimitHealth))
		r.Use(APISecurityHeaders())
		r.Get("/live", h.HealthLive)
		r.Get("/ready", h.HealthReady)
		r.Get("/performance", h.HealthPerformance)
	})

	r.Route("/api/v1/locations", func(r chi.Router) {
		r.Use(mw.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))

		r.Get("/", h.ListLocations)
		r.With(chiMiddleware(middleware.Compression)).Get("/geojson", h.LocationsGeoJSON)
		r.Get("/{id}", h.GetLocation)

		r.Group(func(r chi.Router) {
			r.Use(mw.RateLimitCustom(RateLimitWrite))
			r.Post("/", h.CreateLocation)
			r.Put("/{id}", h.UpdateLocation)
			r.Delete("/{id}", h.DeleteLocation)
			r.Post("/{id}/reviews", h.CreateReview)
			r.Delete("/{id}/reviews/{reviewID}", h.DeleteReview)
		})
	})

	r.Route("/api/v1/map/views", func(r chi.Router) {
		r.Use(mw.RateLimitCustom(RateLimitInteractive))
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))

		r.With(mw.RateLimitCustom(RateLimitMount)).Post("/", h.MountView)
		r.Get("/", h.ListViews)
		r.Get("/{id}", h.GetView)
		r.Delete("/{id}", h.UnmountView)
		r.Put("/{id}/filter", h.SetViewFilter)
		r.Post("/{id}/click", h.ClickView)
		r.Post("/{id}/camera", h.MoveView)
		r.With(chiMiddleware(middleware.Compression)).Get("/{id}/features", h.ViewFeatures)
		r.Get("/{id}/ws", h.ViewWebSocket)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
