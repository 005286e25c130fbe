// Campmap - Campground Listings and Map Clustering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campmap

package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/campmap/internal/catalog"
	"github.com/tomtom215/campmap/internal/geo"
	"github.com/tomtom215/campmap/internal/logging"
)

// SkippedHeader carries the number of listings left off a GeoJSON response
// because they have no usable coordinates.
const SkippedHeader = "X-Campmap-Skipped"

// ListLocations returns one page of listings.
//
// Query: q (case-insensitive title substring), categories (comma separated;
// empty means every default category), page (1-based).
func (h *Handler) ListLocations(w http.ResponseWriter, r *http.Request) {
	page, err := h.catalog.List(r.Context(), filterFromQuery(r))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	NewResponseWriter(w, r).SuccessWithPagination(page.Locations, &PaginationMeta{
		Page:    page.Page,
		Pages:   page.Pages,
		Limit:   page.Limit,
		Total:   page.Total,
		Count:   len(page.Locations),
		HasMore: page.Page < page.Pages,
	})
}

// CreateLocation geocodes and stores a new listing.
func (h *Handler) CreateLocation(w http.ResponseWriter, r *http.Request) {
	var in catalog.LocationInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondServiceError(w, r, err)
		return
	}

	loc, err := h.catalog.Create(r.Context(), in)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	logging.Ctx(r.Context()).Info().Str("location", loc.ID).Msg("Location created")
	w.Header().Set("Location", "/api/v1/locations/"+loc.ID)
	NewResponseWriter(w, r).Created(loc)
}

// GetLocation returns a listing with its reviews.
func (h *Handler) GetLocation(w http.ResponseWriter, r *http.Request) {
	loc, err := h.catalog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	WriteSuccess(w, r, loc)
}

// UpdateLocation replaces a listing's fields and re-geocodes its address.
func (h *Handler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	var in catalog.UpdateInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondServiceError(w, r, err)
		return
	}

	loc, err := h.catalog.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	WriteSuccess(w, r, loc)
}

// DeleteLocation removes a listing.
func (h *Handler) DeleteLocation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.catalog.Delete(r.Context(), id); err != nil {
		respondServiceError(w, r, err)
		return
	}
	logging.Ctx(r.Context()).Info().Str("location", id).Msg("Location deleted")
	NewResponseWriter(w, r).NoContent()
}

// CreateReview adds a review to a listing.
func (h *Handler) CreateReview(w http.ResponseWriter, r *http.Request) {
	var in catalog.ReviewInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondServiceError(w, r, err)
		return
	}

	review, err := h.catalog.AddReview(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Created(review)
}

// DeleteReview removes a review from a listing.
func (h *Handler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteReview(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "reviewID")); err != nil {
		respondServiceError(w, r, err)
		return
	}
	NewResponseWriter(w, r).NoContent()
}

// LocationsGeoJSON returns every listing matching the filter as a GeoJSON
// FeatureCollection, the same data a mounted map view loads into its
// clustered source. The page parameter is ignored. The body is bare GeoJSON
// rather than the API envelope so mapping clients can load it directly.
func (h *Handler) LocationsGeoJSON(w http.ResponseWriter, r *http.Request) {
	f := filterFromQuery(r)
	f.Page = 0

	locs, err := h.catalog.Search(r.Context(), f)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	fc, report := geo.ToFeatureCollection(catalog.Records(locs))
	if len(report.Skipped) > 0 {
		logging.Ctx(r.Context()).Debug().
			Strs("skipped", report.Skipped).
			Msg("Locations without coordinates left off GeoJSON")
	}

	body, err := json.Marshal(fc)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/geo+json")
	w.Header().Set(SkippedHeader, strconv.Itoa(len(report.Skipped)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("Failed to write GeoJSON response")
	}
}
