// Campmap - Campground Listings and Map Clustering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campmap

package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/campmap/internal/config"
	"github.com/tomtom215/campmap/internal/middleware"
)

func TestHealth(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t, nil)

	rec := e.do(t, http.MethodGet, "/api/v1/health/live", nil)
	expectStatus(t, rec, http.StatusOK)
	var live map[string]interface{}
	decodeData(t, rec, &live)
	if live["alive"] != true {
		t.Errorf("live = %v", live)
	}

	e.mountView(t, map[string]interface{}{})
	rec = e.do(t, http.MethodGet, "/api/v1/health/ready", nil)
	expectStatus(t, rec, http.StatusOK)
	var ready HealthStatus
	decodeData(t, rec, &ready)
	if !ready.CatalogOK || !ready.MapAvailable || ready.MountedViews != 1 || ready.Status != "ready" {
		t.Errorf("ready = %+v", ready)
	}

	rec = e.do(t, http.MethodGet, "/api/v1/health/performance?recent=5", nil)
	expectStatus(t, rec, http.StatusOK)
	var perf struct {
		Endpoints []middleware.EndpointStats  `json:"endpoints"`
		Recent    []middleware.RequestMetrics `json:"recent"`
	}
	decodeData(t, rec, &perf)
	if len(perf.Recent) == 0 || len(perf.Endpoints) == 0 {
		t.Errorf("performance = %+v, want recorded requests", perf)
	}
}

func TestHealthReady_NoCatalog(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t, func(cfg *config.Config) { cfg.Map.APIKey = "" })
	h := NewHandler(e.catalog, e.views, e.hub, e.cfg)

	// A missing map key leaves the service ready; a missing catalog does not.
	rec := httptest.NewRecorder()
	h.HealthReady(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health/ready", nil))
	expectStatus(t, rec, http.StatusOK)

	h.catalog = nil
	rec = httptest.NewRecorder()
	h.HealthReady(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health/ready", nil))
	expectError(t, rec, http.StatusServiceUnavailable, ErrCodeServiceUnavailable)
}

func TestRouter_Fallbacks(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t, nil)

	expectError(t, e.do(t, http.MethodGet, "/api/v1/nowhere", nil), http.StatusNotFound, ErrCodeNotFound)
	expectError(t, e.do(t, http.MethodPatch, "/api/v1/locations/abc", nil), http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed)
}

func TestRouter_RequestIDAndHeaders(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t, nil)

	rec := e.do(t, http.MethodGet, "/api/v1/locations", nil)
	expectStatus(t, rec, http.StatusOK)

	id := rec.Header().Get(middleware.RequestIDHeader)
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("X-Request-ID %q is not a UUID", id)
	}
	env := decodeEnvelope(t, rec)
	if env.Meta == nil || env.Meta.RequestID != id {
		t.Errorf("meta request id = %+v, want %q", env.Meta, id)
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing security headers")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health/live", nil)
	req.Header.Set(middleware.RequestIDHeader, "upstream-42")
	rec = serve(e.router, req)
	if got := rec.Header().Get(middleware.RequestIDHeader); got != "upstream-42" {
		t.Errorf("upstream request id = %q", got)
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t, func(cfg *config.Config) {
		cfg.Security.CORSOrigins = []string{"https://camp.example"}
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/locations", nil)
	req.Header.Set("Origin", "https://camp.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := serve(e.router, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://camp.example" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

func TestRouter_RateLimit(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t, func(cfg *config.Config) {
		cfg.Security.RateLimitDisabled = false
		cfg.Security.RateLimitReqs = 2
		cfg.Security.RateLimitWindow = time.Minute
	})

	for i := 0; i < 2; i++ {
		expectStatus(t, e.do(t, http.MethodGet, "/api/v1/locations", nil), http.StatusOK)
	}
	expectError(t, e.do(t, http.MethodGet, "/api/v1/locations", nil), http.StatusTooManyRequests, ErrCodeTooManyRequests)

	// Health probes have their own budget.
	expectStatus(t, e.do(t, http.MethodGet, "/api/v1/health/live", nil), http.StatusOK)
}

func TestRouter_Metrics(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t, nil)

	rec := e.do(t, http.MethodGet, "/metrics", nil)
	expectStatus(t, rec, http.StatusOK)
}

func TestCheckWebSocketOrigin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		origins []string
		origin  string
		want    bool
	}{
		{"missing origin", []string{"*"}, "", false},
		{"wildcard", []string{"*"}, "https://any.example", true},
		{"listed", []string{"https://camp.example"}, "https://camp.example", true},
		{"unlisted", []string{"https://camp.example"}, "https://evil.example", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := testAPIConfig()
			cfg.Security.CORSOrigins = tt.origins
			h := &Handler{config: cfg}

			req := httptest.NewRequest(http.MethodGet, "/api/v1/map/views/x/ws", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if got := h.checkWebSocketOrigin(req); got != tt.want {
				t.Errorf("checkWebSocketOrigin() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSanitizeLogValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"line\nbreak", "line\\x0abreak"},
		{"tab\there", "tab\\x09here"},
	}
	for _, tt := range tests {
		if got := sanitizeLogValue(tt.in); got != tt.want {
			t.Errorf("sanitizeLogValue(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
