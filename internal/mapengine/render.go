// Campmap - Campground Listings and Map Clustering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campmap

package mapengine

import (
	"context"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/tomtom215/campmap/internal/cluster"
	"github.com/tomtom215/campmap/internal/geo"
	"github.com/tomtom215/campmap/internal/mapview"
)

// TileSize is the size of one Web Mercator tile in pixels.
const TileSize = 512

// renderPadding widens the viewport so that circles centred just outside
// it are still drawn and hit.
const renderPadding = 32

// RenderedFeature is one feature drawn by one layer.
type RenderedFeature struct {
	Layer   string              `json:"layer"`
	Feature *geojson.Feature    `json:"feature"`
	LngLat  geo.LngLat          `json:"lngLat"`
	Point   mapview.ScreenPoint `json:"point"`

	Color       string  `json:"color,omitempty"`
	Radius      float64 `json:"radius,omitempty"`
	StrokeWidth float64 `json:"strokeWidth,omitempty"`
	StrokeColor string  `json:"strokeColor,omitempty"`

	Text     string  `json:"text,omitempty"`
	TextSize float64 `json:"textSize,omitempty"`
}

// Frame is the drawn state of the map. Features are ordered bottom to top.
type Frame struct {
	Camera   mapview.Camera    `json:"camera"`
	Width    int               `json:"width"`
	Height   int               `json:"height"`
	Bounds   orb.Bound         `json:"bounds"`
	Loaded   bool              `json:"loaded"`
	Features []RenderedFeature `json:"features"`
	Popups   []mapview.Popup   `json:"popups"`
}

type viewport struct {
	cam    mapview.Camera
	width  float64
	height float64
}

func (v viewport) worldSize() float64 {
	return TileSize * math.Exp2(v.cam.Zoom)
}

// project does not wrap: longitudes outside [-180, 180] land on the
// neighbouring world copies.
func (v viewport) project(ll geo.LngLat) mapview.ScreenPoint {
	ws := v.worldSize()
	return mapview.ScreenPoint{
		X: (cluster.LngX(ll.Lng)-cluster.LngX(v.cam.Center.Lng))*ws + v.width/2,
		Y: (cluster.LatY(ll.Lat)-cluster.LatY(v.cam.Center.Lat))*ws + v.height/2,
	}
}

func (v viewport) unproject(p mapview.ScreenPoint) geo.LngLat {
	ws := v.worldSize()
	x := cluster.LngX(v.cam.Center.Lng) + (p.X-v.width/2)/ws
	y := cluster.LatY(v.cam.Center.Lat) + (p.Y-v.height/2)/ws
	y = math.Max(0, math.Min(1, y))
	return geo.LngLat{Lng: cluster.XLng(x), Lat: cluster.YLat(y)}
}

// bounds returns the viewport extended by pad pixels. West and east are
// not normalized.
func (v viewport) bounds(pad float64) orb.Bound {
	nw := v.unproject(mapview.ScreenPoint{X: -pad, Y: -pad})
	se := v.unproject(mapview.ScreenPoint{X: v.width + pad, Y: v.height + pad})
	return orb.Bound{
		Min: orb.Point{nw.Lng, se.Lat},
		Max: orb.Point{se.Lng, nw.Lat},
	}
}

// query converts a viewport bound into the bound handed to sources.
func query(b orb.Bound) orb.Bound {
	if b.Max.Lon()-b.Min.Lon() >= 360 {
		return orb.Bound{Min: orb.Point{-180, b.Min.Lat()}, Max: orb.Point{180, b.Max.Lat()}}
	}
	return b
}

func (m *Map) viewport() viewport {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return viewport{cam: m.camera, width: float64(m.width), height: float64(m.height)}
}

// Project returns the screen position of ll under the current camera.
func (m *Map) Project(ll geo.LngLat) mapview.ScreenPoint {
	return m.viewport().project(ll)
}

// Unproject returns the coordinate under screen point p. Points beyond the
// antimeridian yield longitudes outside [-180, 180].
func (m *Map) Unproject(p mapview.ScreenPoint) geo.LngLat {
	return m.viewport().unproject(p)
}

// Bounds returns the visible area.
func (m *Map) Bounds() orb.Bound {
	return m.viewport().bounds(0)
}

// Render draws every layer over the current viewport.
func (m *Map) Render() Frame {
	m.mu.RLock()
	vp := viewport{cam: m.camera, width: float64(m.width), height: float64(m.height)}
	loaded := m.styleLoaded && !m.removed
	layers := append([]mapview.Layer(nil), m.layers...)
	sources := make(map[string]*Source, len(m.sources))
	for id, s := range m.sources {
		sources[id] = s
	}
	popups := append([]mapview.Popup(nil), m.popups...)
	m.mu.RUnlock()

	frame := Frame{
		Camera:   vp.cam,
		Width:    int(vp.width),
		Height:   int(vp.height),
		Bounds:   vp.bounds(0),
		Loaded:   loaded,
		Features: []RenderedFeature{},
		Popups:   popups,
	}
	if !loaded {
		return frame
	}

	padded := vp.bounds(renderPadding)
	zoom := int(math.Floor(vp.cam.Zoom))
	bySource := make(map[string][]*geojson.Feature)

	for _, layer := range layers {
		src, ok := sources[layer.Source]
		if !ok {
			continue
		}
		feats, ok := bySource[layer.Source]
		if !ok {
			feats = src.features(query(padded), zoom)
			bySource[layer.Source] = feats
		}
		for _, f := range feats {
			if !layer.Filter.Match(f.Properties) {
				continue
			}
			p, ok := f.Geometry.(orb.Point)
			if !ok {
				continue
			}
			for _, lng := range copiesWithin(p.Lon(), padded.Min.Lon(), padded.Max.Lon()) {
				ll := geo.LngLat{Lng: lng, Lat: p.Lat()}
				frame.Features = append(frame.Features, style(layer, f, ll, vp.project(ll)))
			}
		}
	}
	return frame
}

// copiesWithin returns lng shifted onto every world copy in [west, east].
func copiesWithin(lng, west, east float64) []float64 {
	var out []float64
	for k := math.Ceil((west - lng) / 360); lng+360*k <= east; k++ {
		out = append(out, lng+360*k)
	}
	return out
}

func style(layer mapview.Layer, f *geojson.Feature, ll geo.LngLat, pt mapview.ScreenPoint) RenderedFeature {
	rf := RenderedFeature{Layer: layer.ID, Feature: f, LngLat: ll, Point: pt}
	switch {
	case layer.Type == mapview.LayerCircle && layer.Circle != nil:
		rf.Color = layer.Circle.Color.Eval(f.Properties)
		rf.Radius = layer.Circle.Radius.Eval(f.Properties)
		rf.StrokeWidth = layer.Circle.StrokeWidth
		rf.StrokeColor = layer.Circle.StrokeColor
	case layer.Type == mapview.LayerSymbol && layer.Symbol != nil:
		rf.Text = layer.Symbol.Text(f.Properties)
		rf.TextSize = layer.Symbol.TextSize
	}
	return rf
}

// hit reports whether p falls on the drawn feature.
func (rf RenderedFeature) hit(p mapview.ScreenPoint) bool {
	dx, dy := p.X-rf.Point.X, p.Y-rf.Point.Y
	if rf.Text != "" {
		halfW := 0.3 * rf.TextSize * float64(len(rf.Text))
		return math.Abs(dx) <= halfW && math.Abs(dy) <= rf.TextSize/2
	}
	r := rf.Radius + rf.StrokeWidth
	return dx*dx+dy*dy <= r*r
}

// hits returns the rendered features under p, topmost first, limited to
// layerIDs when any are given.
func (f Frame) hits(p mapview.ScreenPoint, layerIDs ...string) []RenderedFeature {
	var want map[string]bool
	if len(layerIDs) > 0 {
		want = make(map[string]bool, len(layerIDs))
		for _, id := range layerIDs {
			want[id] = true
		}
	}
	var out []RenderedFeature
	for i := len(f.Features) - 1; i >= 0; i-- {
		rf := f.Features[i]
		if want != nil && !want[rf.Layer] {
			continue
		}
		if rf.hit(p) {
			out = append(out, rf)
		}
	}
	return out
}

// QueryRenderedFeatures implements mapview.Map.
func (m *Map) QueryRenderedFeatures(p mapview.ScreenPoint, layerIDs ...string) []*geojson.Feature {
	hits := m.Render().hits(p, layerIDs...)
	out := make([]*geojson.Feature, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.Feature)
	}
	return out
}

// Click closes the open popups and then dispatches a ClickEvent to every
// layer handler with features under p, top layer first. It returns the
// number of handlers invoked.
func (m *Map) Click(ctx context.Context, p mapview.ScreenPoint) int {
	m.mu.Lock()
	if m.removed {
		m.mu.Unlock()
		return 0
	}
	m.popups = nil
	handlers := make(map[string]mapview.ClickHandler, len(m.handlers))
	for id, h := range m.handlers {
		handlers[id] = h
	}
	m.mu.Unlock()

	frame := m.Render()
	hits := frame.hits(p)
	ll := m.Unproject(p)

	var (
		order   []string
		byLayer = make(map[string][]*geojson.Feature)
	)
	for _, h := range hits {
		if _, ok := handlers[h.Layer]; !ok {
			continue
		}
		if _, seen := byLayer[h.Layer]; !seen {
			order = append(order, h.Layer)
		}
		byLayer[h.Layer] = append(byLayer[h.Layer], h.Feature)
	}

	for _, layer := range order {
		handlers[layer](ctx, mapview.ClickEvent{Point: p, LngLat: ll, Features: byLayer[layer]})
	}
	return len(order)
}
