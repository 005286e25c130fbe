// Campmap - Campground Listings and Map Clustering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campmap

package cluster

// maxSupportedZoom is the highest MaxZoom representable in a cluster id,
// which reserves five bits for the origin zoom.
const maxSupportedZoom = 30

// Options controls clustering.
type Options struct {
	MinZoom   int     // lowest zoom at which clusters are generated
	MaxZoom   int     // highest zoom at which clusters are generated
	MinPoints int     // minimum points to form a cluster
	Radius    float64 // cluster radius in pixels
	Extent    int     // tile extent the radius is relative to
	NodeSize  int     // KD index leaf size
}

// DefaultOptions returns the options used for map sources: clusters up to
// zoom 14 with a 50px radius on 512px tiles.
func DefaultOptions() Options {
	return Options{
		MinZoom:   0,
		MaxZoom:   14,
		MinPoints: 2,
		Radius:    50,
		Extent:    512,
		NodeSize:  64,
	}
}

// normalize fills unset fields with defaults and clamps zooms.
func (o Options) normalize() Options {
	d := DefaultOptions()
	if o.MinZoom < 0 {
		o.MinZoom = 0
	}
	if o.MaxZoom <= 0 {
		o.MaxZoom = d.MaxZoom
	}
	if o.MaxZoom > maxSupportedZoom {
		o.MaxZoom = maxSupportedZoom
	}
	if o.MinZoom > o.MaxZoom {
		o.MinZoom = o.MaxZoom
	}
	if o.MinPoints < 2 {
		o.MinPoints = d.MinPoints
	}
	if o.Radius <= 0 {
		o.Radius = d.Radius
	}
	if o.Extent <= 0 {
		o.Extent = d.Extent
	}
	if o.NodeSize <= 0 {
		o.NodeSize = d.NodeSize
	}
	return o
}
