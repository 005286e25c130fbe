// Campmap - Campground Listings and Map Clustering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campmap

package geocode

import (
	"context"
	"time"

	"github.com/tomtom215/campmap/internal/geo"
	"github.com/tomtom215/campmap/internal/metrics"
)

// Provider names.
const (
	ProviderStatic   = "static"
	ProviderMapTiler = "maptiler"
)

// Static resolves addresses from a fixed table.
type Static struct {
	places map[string]geo.LngLat
}

// NewStatic returns a geocoder answering from places. Keys are matched
// case-insensitively with whitespace collapsed.
func NewStatic(places map[string]geo.LngLat) *Static {
	s := &Static{places: make(map[string]geo.LngLat, len(places))}
	for addr, ll := range places {
		s.places[normalize(addr)] = ll
	}
	return s
}

// Name implements Geocoder.
func (s *Static) Name() string {
	return ProviderStatic
}

// Forward implements Geocoder.
func (s *Static) Forward(ctx context.Context, address string) (geo.LngLat, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return geo.LngLat{}, err
	}
	key := normalize(address)
	if key == "" {
		return geo.LngLat{}, ErrEmptyAddress
	}
	ll, ok := s.places[key]
	if !ok {
		metrics.RecordGeocode(ProviderStatic, "no_results", time.Since(start))
		return geo.LngLat{}, ErrNoResults
	}
	metrics.RecordGeocode(ProviderStatic, "success", time.Since(start))
	return ll, nil
}

// DefaultPlaces is the development address table, covering the seed data.
func DefaultPlaces() map[string]geo.LngLat {
	return map[string]geo.LngLat{
		"Boulder, CO":           {Lng: -105.2705, Lat: 40.015},
		"Estes Park, CO":        {Lng: -105.5217, Lat: 40.3772},
		"Moab, UT":              {Lng: -109.5498, Lat: 38.5733},
		"Springdale, UT":        {Lng: -112.9985, Lat: 37.1889},
		"Flagstaff, AZ":         {Lng: -111.6513, Lat: 35.1983},
		"Jackson, WY":           {Lng: -110.7624, Lat: 43.4799},
		"West Yellowstone, MT":  {Lng: -111.1041, Lat: 44.6621},
		"Bend, OR":              {Lng: -121.3153, Lat: 44.0582},
		"Yosemite Valley, CA":   {Lng: -119.5885, Lat: 37.7456},
		"Big Sur, CA":           {Lng: -121.8081, Lat: 36.2704},
		"Gatlinburg, TN":        {Lng: -83.5102, Lat: 35.7143},
		"Bar Harbor, ME":        {Lng: -68.2039, Lat: 44.3876},
		"Anchorage, AK":         {Lng: -149.9003, Lat: 61.2181},
		"Hilo, HI":              {Lng: -155.0868, Lat: 19.7241},
		"Taveuni, Fiji":         {Lng: -179.9667, Lat: -16.8667},
		"Chatham Islands, NZ":   {Lng: -176.5597, Lat: -43.9536},
		"Marfa, TX":             {Lng: -104.0208, Lat: 30.3094},
		"Ely, MN":               {Lng: -91.8671, Lat: 47.9032},
		"Asheville, NC":         {Lng: -82.5515, Lat: 35.5951},
		"Sedona, AZ":            {Lng: -111.7610, Lat: 34.8697},
		"Lake Tahoe, CA":        {Lng: -120.0324, Lat: 39.0968},
		"Glacier National Park": {Lng: -113.7870, Lat: 48.7596},
	}
}
