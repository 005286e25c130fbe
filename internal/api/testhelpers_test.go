// Campmap - Campground Listings and Map Clustering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campmap

package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/campmap/internal/catalog"
	"github.com/tomtom215/campmap/internal/config"
	"github.com/tomtom215/campmap/internal/geocode"
	"github.com/tomtom215/campmap/internal/views"
	ws "github.com/tomtom215/campmap/internal/websocket"
)

// testEnv is a fully wired API over an in-memory catalog.
type testEnv struct {
	cfg     *config.Config
	catalog *catalog.Catalog
	views   *views.Registry
	hub     *ws.Hub
	handler *Handler
	router  http.Handler
}

func testAPIConfig() *config.Config {
	return &config.Config{
		Map: config.MapConfig{
			APIKey:         "test-key",
			Style:          "streets-v2",
			CenterLng:      -103.59179687498357,
			CenterLat:      40.66995747013945,
			Zoom:           3,
			MaxZoom:        22,
			ClusterMaxZoom: 14,
			ClusterRadius:  50,
		},
		Database: config.DatabaseConfig{InMemory: true},
		API:      config.APIConfig{PageSize: 12},
		Views: config.ViewsConfig{
			IdleTTL:       30 * time.Minute,
			MaxMounted:    10,
			DefaultWidth:  1024,
			DefaultHeight: 600,
		},
		Security: config.SecurityConfig{
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: true,
			CORSOrigins:       []string{"*"},
		},
	}
}

// newTestEnv wires the API. mutate may adjust the config first.
func newTestEnv(t *testing.T, mutate func(*config.Config)) *testEnv {
	t.Helper()

	cfg := testAPIConfig()
	if mutate != nil {
		mutate(cfg)
	}

	cat, err := catalog.Open(cfg.Database, geocode.NewStatic(geocode.DefaultPlaces()), catalog.WithPageSize(cfg.API.PageSize))
	if err != nil {
		t.Fatalf("catalog.Open() error = %v", err)
	}
	registry := views.NewRegistry(cat, views.ConfigFrom(cfg))
	hub := ws.NewHub()

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = hub.RunWithContext(ctx) }()

	handler := NewHandler(cat, registry, hub, cfg)
	stop := handler.StartBroadcasts()

	t.Cleanup(func() {
		stop()
		cancel()
		registry.Close()
		_ = cat.Close()
	})

	return &testEnv{
		cfg:     cfg,
		catalog: cat,
		views:   registry,
		hub:     hub,
		handler: handler,
		router:  NewRouter(handler, cfg).SetupChi(),
	}
}

// do sends a request through the router. body is JSON-encoded unless it is
// a string, which is sent verbatim.
func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// envelope is the decoded API response with raw data.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
	Meta    *APIMeta        `json:"meta"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v\nbody: %s", err, rec.Body.String())
	}
	return env
}

// expectStatus fails the test unless rec has status want.
func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d\nbody: %s", rec.Code, want, rec.Body.String())
	}
}

// expectError checks the status and error code of a failed response.
func expectError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) envelope {
	t.Helper()
	expectStatus(t, rec, status)
	env := decodeEnvelope(t, rec)
	if env.Success || env.Error == nil {
		t.Fatalf("expected error envelope, got %s", rec.Body.String())
	}
	if env.Error.Code != code {
		t.Fatalf("error code = %q, want %q (%s)", env.Error.Code, code, env.Error.Message)
	}
	return env
}

// decodeData decodes the envelope data into v.
func decodeData(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) envelope {
	t.Helper()
	env := decodeEnvelope(t, rec)
	if !env.Success {
		t.Fatalf("expected success, got %s", rec.Body.String())
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("decode data: %v\nbody: %s", err, rec.Body.String())
	}
	return env
}

func locationBody(title, address string, cats ...string) map[string]interface{} {
	if len(cats) == 0 {
		cats = []string{"tent"}
	}
	return map[string]interface{}{
		"title":       title,
		"address":     address,
		"description": "A quiet spot",
		"price":       25,
		"categories":  cats,
	}
}

func (e *testEnv) mustCreate(t *testing.T, title, address string, cats ...string) catalog.Location {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/v1/locations", locationBody(title, address, cats...))
	expectStatus(t, rec, http.StatusCreated)
	var loc catalog.Location
	decodeData(t, rec, &loc)
	return loc
}

func newRequest(method, path string) *http.Request {
	return httptest.NewRequest(method, path, nil)
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}
