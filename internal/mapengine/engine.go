// Campmap - Campground Listings and Map Clustering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campmap

package mapengine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/campmap/internal/geo"
	"github.com/tomtom215/campmap/internal/logging"
	"github.com/tomtom215/campmap/internal/mapview"
)

// Construction and declaration errors.
var (
	ErrMissingAPIKey  = errors.New("map API key is required")
	ErrUnknownStyle   = errors.New("unknown map style")
	ErrRemoved        = errors.New("map has been removed")
	ErrSourceExists   = errors.New("source already exists")
	ErrLayerExists    = errors.New("layer already exists")
	ErrUnknownSource  = errors.New("layer references unknown source")
	ErrInvalidOptions = errors.New("invalid map options")
)

// Zoom and latitude limits of the Web Mercator camera.
const (
	MinZoom = 0
	MaxZoom = 22
	MaxLat  = 85.051129
)

// Default viewport size used when MapOptions leaves it unset.
const (
	DefaultWidth  = 1024
	DefaultHeight = 600
)

// Options configures maps created by New and NewFactory.
type Options struct {
	// ValidStyle reports whether a style name is known. Nil accepts any
	// non-empty name.
	ValidStyle func(style string) bool

	// DeferLoad keeps new maps in the not-loaded state until FinishLoad.
	DeferLoad bool

	// ExpansionLatency delays ClusterExpansionZoom, standing in for the
	// round trip to a worker.
	ExpansionLatency time.Duration

	// OnCreate, if set, receives every map NewFactory creates.
	OnCreate func(m *Map)
}

// Map is a headless interactive map. It implements mapview.Map.
type Map struct {
	opts   Options
	width  int
	height int
	style  string
	log    zerolog.Logger

	mu          sync.RWMutex
	camera      mapview.Camera
	styleLoaded bool
	loadFns     []func()
	sources     map[string]*Source
	layers      []mapview.Layer
	handlers    map[string]mapview.ClickHandler
	popups      []mapview.Popup
	removed     bool
}

var _ mapview.Map = (*Map)(nil)

// New creates a map. It fails with ErrMissingAPIKey without a key and with
// ErrUnknownStyle for a style opts does not accept.
func New(ctx context.Context, opts Options, mo mapview.MapOptions) (*Map, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(mo.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	if mo.Style == "" || (opts.ValidStyle != nil && !opts.ValidStyle(mo.Style)) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStyle, mo.Style)
	}
	if mo.Width < 0 || mo.Height < 0 || !mo.Center.Valid() {
		return nil, ErrInvalidOptions
	}

	m := &Map{
		opts:        opts,
		width:       mo.Width,
		height:      mo.Height,
		style:       mo.Style,
		log:         logging.WithComponent("mapengine"),
		styleLoaded: !opts.DeferLoad,
		sources:     make(map[string]*Source),
		handlers:    make(map[string]mapview.ClickHandler),
	}
	if m.width == 0 {
		m.width = DefaultWidth
	}
	if m.height == 0 {
		m.height = DefaultHeight
	}
	m.camera = constrain(mapview.Camera{Center: mo.Center, Zoom: mo.Zoom})

	m.log.Debug().
		Str("style", mo.Style).
		Int("width", m.width).
		Int("height", m.height).
		Msg("Map created")
	return m, nil
}

// NewFactory returns a mapview.Factory creating maps with opts.
func NewFactory(opts Options) mapview.Factory {
	return func(ctx context.Context, mo mapview.MapOptions) (mapview.Map, error) {
		m, err := New(ctx, opts, mo)
		if err != nil {
			return nil, err
		}
		if opts.OnCreate != nil {
			opts.OnCreate(m)
		}
		return m, nil
	}
}

// constrain clamps zoom and latitude and wraps the center longitude.
func constrain(cam mapview.Camera) mapview.Camera {
	if math.IsNaN(cam.Zoom) {
		cam.Zoom = MinZoom
	}
	cam.Zoom = math.Max(MinZoom, math.Min(MaxZoom, cam.Zoom))
	cam.Center.Lat = geo.ClampLat(cam.Center.Lat, MaxLat)
	if cam.Center.Lng < -180 || cam.Center.Lng > 180 {
		cam.Center.Lng = geo.NormalizeLng(cam.Center.Lng)
	}
	return cam
}

// Style returns the style name the map was created with.
func (m *Map) Style() string {
	return m.style
}

// Size returns the viewport size in pixels.
func (m *Map) Size() (width, height int) {
	return m.width, m.height
}

// OnLoad implements mapview.Map.
func (m *Map) OnLoad(fn func()) {
	m.mu.Lock()
	if m.removed {
		m.mu.Unlock()
		return
	}
	if !m.styleLoaded {
		m.loadFns = append(m.loadFns, fn)
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()
	fn()
}

// FinishLoad completes a deferred style load and runs the load handlers.
// It is a no-op once the style has loaded.
func (m *Map) FinishLoad() {
	m.mu.Lock()
	if m.removed || m.styleLoaded {
		m.mu.Unlock()
		return
	}
	m.styleLoaded = true
	fns := m.loadFns
	m.loadFns = nil
	m.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// IsStyleLoaded implements mapview.Map.
func (m *Map) IsStyleLoaded() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.styleLoaded && !m.removed
}

// AddSource implements mapview.Map.
func (m *Map) AddSource(id string, spec mapview.SourceSpec) error {
	src := newSource(id, spec, m.opts.ExpansionLatency)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.removed {
		return ErrRemoved
	}
	if _, ok := m.sources[id]; ok {
		return fmt.Errorf("%w: %s", ErrSourceExists, id)
	}
	m.sources[id] = src
	return nil
}

// Source implements mapview.Map.
func (m *Map) Source(id string) (mapview.GeoJSONSource, bool) {
	src, ok := m.source(id)
	if !ok {
		return nil, false
	}
	return src, true
}

func (m *Map) source(id string) (*Source, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	src, ok := m.sources[id]
	return src, ok && !m.removed
}

// AddLayer implements mapview.Map. Layers are drawn in the order added.
func (m *Map) AddLayer(layer mapview.Layer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.removed {
		return ErrRemoved
	}
	for _, l := range m.layers {
		if l.ID == layer.ID {
			return fmt.Errorf("%w: %s", ErrLayerExists, layer.ID)
		}
	}
	if _, ok := m.sources[layer.Source]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSource, layer.Source)
	}
	m.layers = append(m.layers, layer)
	return nil
}

// Layers returns the declared layers, bottom first.
func (m *Map) Layers() []mapview.Layer {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]mapview.Layer(nil), m.layers...)
}

// OnClick implements mapview.Map. A later handler for the same layer
// replaces the earlier one.
func (m *Map) OnClick(layerID string, handler mapview.ClickHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.removed {
		return
	}
	m.handlers[layerID] = handler
}

// EaseTo implements mapview.Map. The move completes immediately.
func (m *Map) EaseTo(cam mapview.Camera) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.removed {
		return
	}
	m.camera = constrain(cam)
}

// Camera implements mapview.Map.
func (m *Map) Camera() mapview.Camera {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.camera
}

// AddPopup implements mapview.Map.
func (m *Map) AddPopup(p mapview.Popup) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.removed {
		return
	}
	m.popups = append(m.popups, p)
}

// Popups returns the open popups.
func (m *Map) Popups() []mapview.Popup {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]mapview.Popup(nil), m.popups...)
}

// ClosePopups closes every open popup.
func (m *Map) ClosePopups() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.popups = nil
}

// Remove implements mapview.Map.
func (m *Map) Remove() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.removed {
		return
	}
	m.removed = true
	m.sources = make(map[string]*Source)
	m.layers = nil
	m.handlers = make(map[string]mapview.ClickHandler)
	m.loadFns = nil
	m.popups = nil
	m.log.Debug().Msg("Map removed")
}

// Removed reports whether Remove has been called.
func (m *Map) Removed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.removed
}
