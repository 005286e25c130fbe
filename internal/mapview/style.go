// Campmap - Campground Listings and Map Clustering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campmap

package mapview

import (
	"strings"

	"github.com/paulmach/orb/geojson"
)

// Source and layer identifiers.
const (
	SourceID = "locations"

	LayerClusters     = "clusters"
	LayerClusterCount = "cluster-count"
	LayerUnclustered  = "unclustered-point"
)

// Cluster feature properties set by clustered sources.
const (
	PropClusterID  = "cluster_id"
	PropPointCount = "point_count"
)

// LayerType is the rendering primitive of a layer.
type LayerType string

// Layer types.
const (
	LayerCircle LayerType = "circle"
	LayerSymbol LayerType = "symbol"
)

// Filter selects features by the presence of a property. The zero Filter
// matches everything.
type Filter struct {
	Has    string `json:"has,omitempty"`
	Negate bool   `json:"negate,omitempty"`
}

// Match reports whether props pass the filter.
func (f Filter) Match(props geojson.Properties) bool {
	if f.Has == "" {
		return true
	}
	_, ok := props[f.Has]
	return ok != f.Negate
}

// ColorStop is a threshold in a ColorStep.
type ColorStop struct {
	Threshold float64 `json:"threshold"`
	Color     string  `json:"color"`
}

// ColorStep picks a color by stepping a numeric property through
// thresholds. With no stops it is a constant.
type ColorStep struct {
	Property string      `json:"property,omitempty"`
	Base     string      `json:"base"`
	Stops    []ColorStop `json:"stops,omitempty"`
}

// Eval returns the color for props.
func (s ColorStep) Eval(props geojson.Properties) string {
	v, ok := number(props[s.Property])
	out := s.Base
	if !ok {
		return out
	}
	for _, stop := range s.Stops {
		if v < stop.Threshold {
			break
		}
		out = stop.Color
	}
	return out
}

// NumberStop is a threshold in a NumberStep.
type NumberStop struct {
	Threshold float64 `json:"threshold"`
	Value     float64 `json:"value"`
}

// NumberStep is the numeric counterpart of ColorStep.
type NumberStep struct {
	Property string       `json:"property,omitempty"`
	Base     float64      `json:"base"`
	Stops    []NumberStop `json:"stops,omitempty"`
}

// Eval returns the value for props.
func (s NumberStep) Eval(props geojson.Properties) float64 {
	v, ok := number(props[s.Property])
	out := s.Base
	if !ok {
		return out
	}
	for _, stop := range s.Stops {
		if v < stop.Threshold {
			break
		}
		out = stop.Value
	}
	return out
}

// CirclePaint styles a circle layer.
type CirclePaint struct {
	Color       ColorStep  `json:"circleColor"`
	Radius      NumberStep `json:"circleRadius"`
	StrokeWidth float64    `json:"circleStrokeWidth,omitempty"`
	StrokeColor string     `json:"circleStrokeColor,omitempty"`
}

// SymbolLayout styles a symbol layer.
type SymbolLayout struct {
	TextField string   `json:"textField"`
	TextFont  []string `json:"textFont"`
	TextSize  float64  `json:"textSize"`
}

// Text expands {property} placeholders in TextField from props.
func (s SymbolLayout) Text(props geojson.Properties) string {
	var b strings.Builder
	field := s.TextField
	for {
		open := strings.IndexByte(field, '{')
		if open < 0 {
			break
		}
		end := strings.IndexByte(field[open:], '}')
		if end < 0 {
			break
		}
		b.WriteString(field[:open])
		if v, ok := props[field[open+1:open+end]]; ok && v != nil {
			b.WriteString(formatValue(v))
		}
		field = field[open+end+1:]
	}
	b.WriteString(field)
	return b.String()
}

// Layer declares a style layer over a source.
type Layer struct {
	ID     string        `json:"id"`
	Type   LayerType     `json:"type"`
	Source string        `json:"source"`
	Filter Filter        `json:"filter"`
	Circle *CirclePaint  `json:"circle,omitempty"`
	Symbol *SymbolLayout `json:"symbol,omitempty"`
}

// ClusterLayers returns the three layers drawn over the clustered source,
// bottom to top: cluster circles in three tiers by point count, the
// abbreviated count label and single points with a white stroke.
func ClusterLayers(source string) []Layer {
	hasCount := Filter{Has: PropPointCount}
	return []Layer{
		{
			ID:     LayerClusters,
			Type:   LayerCircle,
			Source: source,
			Filter: hasCount,
			Circle: &CirclePaint{
				Color: ColorStep{
					Property: PropPointCount,
					Base:     "darkorange",
					Stops:    []ColorStop{{Threshold: 10, Color: "orange"}, {Threshold: 30, Color: "gold"}},
				},
				Radius: NumberStep{
					Property: PropPointCount,
					Base:     15,
					Stops:    []NumberStop{{Threshold: 10, Value: 20}, {Threshold: 30, Value: 25}},
				},
			},
		},
		{
			ID:     LayerClusterCount,
			Type:   LayerSymbol,
			Source: source,
			Filter: hasCount,
			Symbol: &SymbolLayout{
				TextField: "{point_count_abbreviated}",
				TextFont:  []string{"DIN Offc Pro Medium", "Arial Unicode MS Bold"},
				TextSize:  12,
			},
		},
		{
			ID:     LayerUnclustered,
			Type:   LayerCircle,
			Source: source,
			Filter: Filter{Has: PropPointCount, Negate: true},
			Circle: &CirclePaint{
				Color:       ColorStep{Base: "orangered"},
				Radius:      NumberStep{Base: 4},
				StrokeWidth: 1,
				StrokeColor: "#fff",
			},
		},
	}
}
