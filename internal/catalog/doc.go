// Campmap - Campground Listings and Map Clustering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campmap

// Package catalog stores campground listings in BadgerDB.
//
// Each location is one JSON document (goccy/go-json) under the key
// "location:{id}", with its reviews embedded. A second key
// "location_dup:{title}\x00{address}" maps the normalized title and address
// pair to the owning id and enforces that a title is unique per address.
//
// # Queries
//
// List and Search scan the location prefix and apply the listing filter:
//
//   - Query matches the title as a case-insensitive substring
//   - Categories matches a location carrying any of the named categories;
//     an empty filter means DefaultCategories
//
// List returns one page (12 per page by default) and the page count of the
// filtered result. Search returns every match and feeds the map views.
//
// # Geocoding
//
// Create and Update forward geocode the address with the configured
// geocode.Geocoder. An address without a match fails with ErrInvalidAddress.
//
// # Change notification
//
// Subscribe registers a callback invoked after every committed mutation.
// Mounted map views use it to resynchronize their clustered source.
package catalog
