// Campmap - Campground Listings and Map Clustering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campmap

package mapview

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/paulmach/orb/geojson"

	"github.com/tomtom215/campmap/internal/geo"
)

// fakeMap records every call made by the renderer.
type fakeMap struct {
	mu          sync.Mutex
	opts        MapOptions
	styleLoaded bool
	loadFns     []func()
	sources     map[string]*fakeSource
	layers      []Layer
	handlers    map[string]ClickHandler
	rendered    map[string][]*geojson.Feature
	camera      Camera
	eases       []Camera
	popups      []Popup
	removed     bool
}

func newFakeMap(opts MapOptions) *fakeMap {
	return &fakeMap{
		opts:     opts,
		sources:  map[string]*fakeSource{},
		handlers: map[string]ClickHandler{},
		rendered: map[string][]*geojson.Feature{},
		camera:   Camera{Center: opts.Center, Zoom: opts.Zoom},
	}
}

func (m *fakeMap) OnLoad(fn func()) {
	m.mu.Lock()
	if !m.styleLoaded {
		m.loadFns = append(m.loadFns, fn)
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()
	fn()
}

// finishLoad completes style loading and runs load handlers.
func (m *fakeMap) finishLoad() {
	m.mu.Lock()
	m.styleLoaded = true
	fns := m.loadFns
	m.loadFns = nil
	m.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func (m *fakeMap) IsStyleLoaded() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.styleLoaded
}

func (m *fakeMap) AddSource(id string, spec SourceSpec) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sources[id]; ok {
		return errors.New("source exists")
	}
	m.sources[id] = &fakeSource{spec: spec, data: spec.Data}
	return nil
}

func (m *fakeMap) Source(id string) (GeoJSONSource, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sources[id]
	if !ok {
		return nil, false
	}
	return s, true
}

func (m *fakeMap) AddLayer(layer Layer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.layers {
		if l.ID == layer.ID {
			return errors.New("layer exists")
		}
	}
	m.layers = append(m.layers, layer)
	return nil
}

func (m *fakeMap) OnClick(layerID string, handler ClickHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[layerID] = handler
}

func (m *fakeMap) QueryRenderedFeatures(_ ScreenPoint, layerIDs ...string) []*geojson.Feature {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*geojson.Feature
	for _, id := range layerIDs {
		out = append(out, m.rendered[id]...)
	}
	return out
}

func (m *fakeMap) EaseTo(cam Camera) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.camera = cam
	m.eases = append(m.eases, cam)
}

func (m *fakeMap) Camera() Camera {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.camera
}

func (m *fakeMap) AddPopup(p Popup) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.popups = append(m.popups, p)
}

func (m *fakeMap) Remove() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removed = true
}

// click fires the handler registered for layer, as the map would.
func (m *fakeMap) click(ctx context.Context, layer string, ev ClickEvent) {
	m.mu.Lock()
	h := m.handlers[layer]
	m.mu.Unlock()
	if h != nil {
		h(ctx, ev)
	}
}

func (m *fakeMap) setRendered(layer string, features ...*geojson.Feature) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rendered[layer] = features
}

func (m *fakeMap) snapshot() (eases []Camera, popups []Popup) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Camera(nil), m.eases...), append([]Popup(nil), m.popups...)
}

func (m *fakeMap) locations(t *testing.T) *fakeSource {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sources[SourceID]
	if !ok {
		t.Fatal("locations source not registered")
	}
	return s
}

type fakeSource struct {
	mu        sync.Mutex
	spec      SourceSpec
	data      *geojson.FeatureCollection
	sets      int
	expansion func(ctx context.Context, clusterID int) (int, error)
}

func (s *fakeSource) SetData(fc *geojson.FeatureCollection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = fc
	s.sets++
	return nil
}

func (s *fakeSource) ClusterExpansionZoom(ctx context.Context, clusterID int) (int, error) {
	s.mu.Lock()
	fn := s.expansion
	s.mu.Unlock()
	if fn == nil {
		return 0, errors.New("no expansion configured")
	}
	return fn(ctx, clusterID)
}

func (s *fakeSource) setExpansion(fn func(ctx context.Context, clusterID int) (int, error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expansion = fn
}

func (s *fakeSource) current() (*geojson.FeatureCollection, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data, s.sets
}

// fakeFactory returns a factory producing a single fakeMap and the map itself.
func fakeFactory(t *testing.T) (Factory, func() *fakeMap, *int) {
	t.Helper()
	var (
		mu    sync.Mutex
		made  *fakeMap
		calls int
	)
	factory := func(_ context.Context, opts MapOptions) (Map, error) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		made = newFakeMap(opts)
		return made, nil
	}
	get := func() *fakeMap {
		mu.Lock()
		defer mu.Unlock()
		return made
	}
	return factory, get, &calls
}

// mountLoaded mounts a renderer over a fake map whose style has loaded.
func mountLoaded(t *testing.T) (*Renderer, *fakeMap) {
	t.Helper()
	factory, get, _ := fakeFactory(t)
	r := Mount(context.Background(), factory, DefaultConfig())
	t.Cleanup(r.Unmount)
	m := get()
	m.finishLoad()
	if !r.Ready() {
		t.Fatal("renderer not ready after load")
	}
	return r, m
}

func record(id, title, label string, lng, lat float64) geo.LocationRecord {
	return geo.LocationRecord{
		ID:            id,
		Title:         title,
		LocationLabel: label,
		Coordinates:   &geo.LngLat{Lng: lng, Lat: lat},
	}
}
