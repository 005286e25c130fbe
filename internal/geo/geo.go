// Campmap - Campground Listings and Map Clustering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campmap

package geo

import (
	"math"

	"github.com/paulmach/orb"
)

// LngLat is a WGS84 coordinate in degrees.
type LngLat struct {
	Lng float64 `json:"lng"`
	Lat float64 `json:"lat"`
}

// Valid reports whether the coordinate is finite and within -180..180, -90..90.
func (c LngLat) Valid() bool {
	if math.IsNaN(c.Lng) || math.IsNaN(c.Lat) || math.IsInf(c.Lng, 0) || math.IsInf(c.Lat, 0) {
		return false
	}
	return c.Lng >= -180 && c.Lng <= 180 && c.Lat >= -90 && c.Lat <= 90
}

// Point returns the coordinate as an orb.Point (lng, lat).
func (c LngLat) Point() orb.Point {
	return orb.Point{c.Lng, c.Lat}
}

// FromPoint converts an orb.Point to a LngLat.
func FromPoint(p orb.Point) LngLat {
	return LngLat{Lng: p.Lon(), Lat: p.Lat()}
}

// LocationRecord is a listing as supplied by the hosting view's data layer.
// A nil Coordinates means the record was never geocoded.
type LocationRecord struct {
	ID            string
	Title         string
	LocationLabel string
	Coordinates   *LngLat
}

// HasValidCoordinates reports whether the record can be placed on the map.
func (r LocationRecord) HasValidCoordinates() bool {
	return r.Coordinates != nil && r.Coordinates.Valid()
}

// LocationPoint is the render-time view of a record with valid coordinates.
type LocationPoint struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	LocationLabel string `json:"locationLabel"`
	Coordinates   LngLat `json:"coordinates"`
}

// Popup returns the metadata carried by the point's feature.
func (p LocationPoint) Popup() PopupData {
	return PopupData{ID: p.ID, Title: p.Title, LocationLabel: p.LocationLabel}
}

// PointsFromRecords returns one LocationPoint per record with valid
// coordinates, in input order.
func PointsFromRecords(records []LocationRecord) []LocationPoint {
	points := make([]LocationPoint, 0, len(records))
	for _, r := range records {
		if !r.HasValidCoordinates() {
			continue
		}
		points = append(points, LocationPoint{
			ID:            r.ID,
			Title:         r.Title,
			LocationLabel: r.LocationLabel,
			Coordinates:   *r.Coordinates,
		})
	}
	return points
}
