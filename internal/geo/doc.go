// Campmap - Campground Listings and Map Clustering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campmap

// Package geo converts location records into the GeoJSON point features that
// feed the clustered map source, and provides the popup metadata codec and
// longitude helpers shared by the map packages.
//
// Every feature carries its popup metadata as a JSON string under the
// "popup" property:
//
//	{"id":"1","title":"Pine Ridge","locationLabel":"Boulder, CO"}
//
// The conversion is pure. Records without valid WGS84 coordinates are
// skipped and reported in Report.Skipped rather than failing the batch.
package geo
