// Campmap - Campground Listings and Map Clustering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campmap

package geo

import (
	"github.com/paulmach/orb/geojson"
)

// PopupProperty is the feature property holding serialized PopupData.
const PopupProperty = "popup"

// Report describes what ToFeatureCollection left out.
type Report struct {
	// Skipped lists the ids of records without valid coordinates.
	Skipped []string
}

// ToFeatureCollection builds one Point feature per record with valid
// coordinates, preserving input order. The returned collection is new on
// every call and is never nil, even for empty input.
func ToFeatureCollection(records []LocationRecord) (*geojson.FeatureCollection, Report) {
	fc := geojson.NewFeatureCollection()
	fc.Features = make([]*geojson.Feature, 0, len(records))

	var report Report
	for _, r := range records {
		if !r.HasValidCoordinates() {
			report.Skipped = append(report.Skipped, r.ID)
			continue
		}
		fc.Append(NewPointFeature(LocationPoint{
			ID:            r.ID,
			Title:         r.Title,
			LocationLabel: r.LocationLabel,
			Coordinates:   *r.Coordinates,
		}))
	}
	return fc, report
}

// NewPointFeature returns the feature for a single point.
func NewPointFeature(p LocationPoint) *geojson.Feature {
	f := geojson.NewFeature(p.Coordinates.Point())
	f.Properties[PopupProperty] = p.Popup().Encode()
	return f
}
