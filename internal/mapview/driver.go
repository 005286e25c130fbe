// Campmap - Campground Listings and Map Clustering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campmap

package mapview

import (
	"context"

	"github.com/paulmach/orb/geojson"

	"github.com/tomtom215/campmap/internal/geo"
)

// MapOptions configures map construction. The API key is passed explicitly
// rather than through any package-level setting.
type MapOptions struct {
	APIKey string
	Style  string
	Center geo.LngLat
	Zoom   float64
	Width  int
	Height int
}

// Factory constructs a map. It fails when the mapping service cannot be
// initialized, for example without a valid API key.
type Factory func(ctx context.Context, opts MapOptions) (Map, error)

// Camera is the map view state.
type Camera struct {
	Center geo.LngLat `json:"center"`
	Zoom   float64    `json:"zoom"`
}

// ScreenPoint is a pixel position relative to the map container's top-left corner.
type ScreenPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Popup is an HTML popup anchored at a coordinate.
type Popup struct {
	LngLat geo.LngLat `json:"lngLat"`
	HTML   string     `json:"html"`
}

// ClickEvent describes a click on a layer. Features holds the features of
// that layer under the pointer, topmost first.
type ClickEvent struct {
	Point    ScreenPoint
	LngLat   geo.LngLat
	Features []*geojson.Feature
}

// ClickHandler handles a click on a layer.
type ClickHandler func(ctx context.Context, ev ClickEvent)

// SourceSpec declares a GeoJSON source.
type SourceSpec struct {
	Data           *geojson.FeatureCollection
	Cluster        bool
	ClusterMaxZoom int
	ClusterRadius  int
}

// GeoJSONSource is a registered GeoJSON source.
type GeoJSONSource interface {
	// SetData replaces the source's entire feature collection.
	SetData(fc *geojson.FeatureCollection) error

	// ClusterExpansionZoom resolves the zoom at which a cluster splits.
	// It may block; implementations honor ctx.
	ClusterExpansionZoom(ctx context.Context, clusterID int) (int, error)
}

// Map is the contract of the interactive mapping service.
//
// Implementations must not hold internal locks while invoking load or click
// handlers, since handlers call back into the map.
type Map interface {
	// OnLoad registers fn to run once the style has loaded. If the style is
	// already loaded fn runs immediately.
	OnLoad(fn func())
	IsStyleLoaded() bool

	AddSource(id string, spec SourceSpec) error
	Source(id string) (GeoJSONSource, bool)
	AddLayer(layer Layer) error

	OnClick(layerID string, handler ClickHandler)
	QueryRenderedFeatures(point ScreenPoint, layerIDs ...string) []*geojson.Feature

	EaseTo(cam Camera)
	Camera() Camera
	AddPopup(p Popup)

	// Remove releases the map. The map must not be used afterwards.
	Remove()
}
