// Campmap - Campground Listings and Map Clustering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campmap

package mapengine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/tomtom215/campmap/internal/cluster"
	"github.com/tomtom215/campmap/internal/geo"
	"github.com/tomtom215/campmap/internal/mapview"
)

// ErrNotClustered is returned by ClusterExpansionZoom on a plain source.
var ErrNotClustered = errors.New("source is not clustered")

// Source is a GeoJSON source. It implements mapview.GeoJSONSource.
type Source struct {
	id      string
	spec    mapview.SourceSpec
	latency time.Duration

	mu      sync.RWMutex
	data    *geojson.FeatureCollection
	index   *cluster.Index
	version uint64
}

var _ mapview.GeoJSONSource = (*Source)(nil)

func newSource(id string, spec mapview.SourceSpec, latency time.Duration) *Source {
	s := &Source{id: id, spec: spec, latency: latency}
	s.data, s.index = s.build(spec.Data)
	return s
}

// clusterOptions maps the source declaration onto index options.
func (s *Source) clusterOptions() cluster.Options {
	opts := cluster.DefaultOptions()
	if s.spec.ClusterMaxZoom > 0 {
		opts.MaxZoom = s.spec.ClusterMaxZoom
	}
	if s.spec.ClusterRadius > 0 {
		opts.Radius = float64(s.spec.ClusterRadius)
	}
	return opts
}

// build copies fc and, for clustered sources, indexes it. A nil collection
// is treated as empty.
func (s *Source) build(fc *geojson.FeatureCollection) (*geojson.FeatureCollection, *cluster.Index) {
	data := geojson.NewFeatureCollection()
	data.Features = make([]*geojson.Feature, 0)
	if fc != nil {
		data.Features = append(data.Features, fc.Features...)
	}
	if !s.spec.Cluster {
		return data, nil
	}
	return data, cluster.New(s.clusterOptions()).Load(data)
}

// ID returns the source id.
func (s *Source) ID() string {
	return s.id
}

// SetData replaces the whole collection. Readers see either the old or the
// new collection, never a mix.
func (s *Source) SetData(fc *geojson.FeatureCollection) error {
	data, index := s.build(fc)

	s.mu.Lock()
	s.data = data
	s.index = index
	s.version++
	s.mu.Unlock()
	return nil
}

// Data returns the current collection. Callers must not modify it.
func (s *Source) Data() *geojson.FeatureCollection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data
}

// Version counts SetData calls.
func (s *Source) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// ClusterExpansionZoom resolves the zoom at which clusterID splits. It
// waits for the configured latency or until ctx is done.
func (s *Source) ClusterExpansionZoom(ctx context.Context, clusterID int) (int, error) {
	s.mu.RLock()
	index := s.index
	s.mu.RUnlock()
	if index == nil {
		return 0, ErrNotClustered
	}

	if s.latency > 0 {
		timer := time.NewTimer(s.latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-timer.C:
		}
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return index.ExpansionZoom(clusterID)
}

// ClusterLeaves returns up to limit points of a cluster after offset.
func (s *Source) ClusterLeaves(clusterID, limit, offset int) ([]*geojson.Feature, error) {
	s.mu.RLock()
	index := s.index
	s.mu.RUnlock()
	if index == nil {
		return nil, ErrNotClustered
	}
	return index.Leaves(clusterID, limit, offset)
}

// features returns the features intersecting bound at zoom: clusters and
// points for clustered sources, Point features otherwise. bound is in
// normalized longitudes; bounds covering the world span 360 degrees.
func (s *Source) features(bound orb.Bound, zoom int) []*geojson.Feature {
	s.mu.RLock()
	data, index := s.data, s.index
	s.mu.RUnlock()

	if index != nil {
		return index.Clusters(bound, zoom)
	}

	var out []*geojson.Feature
	for _, f := range data.Features {
		p, ok := f.Geometry.(orb.Point)
		if !ok {
			continue
		}
		if p.Lat() < bound.Min.Lat() || p.Lat() > bound.Max.Lat() {
			continue
		}
		if !containsLng(bound, p.Lon()) {
			continue
		}
		out = append(out, f)
	}
	return out
}

// containsLng reports whether lng falls within the longitude span of
// bound, including spans that cross the antimeridian.
func containsLng(bound orb.Bound, lng float64) bool {
	if bound.Max.Lon()-bound.Min.Lon() >= 360 {
		return true
	}
	minLng := geo.NormalizeLng(bound.Min.Lon())
	maxLng := 180.0
	if bound.Max.Lon() != 180 {
		maxLng = geo.NormalizeLng(bound.Max.Lon())
	}
	lng = geo.NormalizeLng(lng)
	if minLng > maxLng {
		return lng >= minLng || lng <= maxLng
	}
	return lng >= minLng && lng <= maxLng
}
