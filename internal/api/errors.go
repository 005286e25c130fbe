// Campmap - Campground Listings and Map Clustering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campmap

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/campmap/internal/catalog"
	"github.com/tomtom215/campmap/internal/geocode"
	"github.com/tomtom215/campmap/internal/logging"
	"github.com/tomtom215/campmap/internal/mapengine"
	"github.com/tomtom215/campmap/internal/mapview"
	"github.com/tomtom215/campmap/internal/validation"
	"github.com/tomtom215/campmap/internal/views"
)

// Request decoding errors.
var (
	ErrEmptyBody    = errors.New("request body is empty")
	ErrBodyTooLarge = errors.New("request body too large")
	ErrInvalidJSON  = errors.New("request body is not valid JSON")
)

// errorResponse is how a domain error is presented to clients.
type errorResponse struct {
	status  int
	code    string
	message string
}

// classify maps domain errors onto HTTP responses. Unknown errors map to 500
// and are the only ones logged at error level.
func classify(err error) (errorResponse, bool) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		return errorResponse{http.StatusNotFound, ErrCodeNotFound, "Location not found"}, true
	case errors.Is(err, catalog.ErrReviewNotFound):
		return errorResponse{http.StatusNotFound, ErrCodeNotFound, "Review not found"}, true
	case errors.Is(err, catalog.ErrDuplicate):
		return errorResponse{http.StatusConflict, ErrCodeDuplicate, "A location with this title and address already exists"}, true
	case errors.Is(err, catalog.ErrInvalidAddress):
		return errorResponse{http.StatusBadRequest, ErrCodeInvalidAddress, "Address could not be located"}, true
	case errors.Is(err, views.ErrViewNotFound), errors.Is(err, mapview.ErrUnmounted):
		return errorResponse{http.StatusNotFound, ErrCodeNotFound, "Map view not found"}, true
	case errors.Is(err, views.ErrTooManyViews):
		return errorResponse{http.StatusTooManyRequests, ErrCodeTooManyViews, "Too many map views are mounted"}, true
	case errors.Is(err, mapview.ErrDegraded),
		errors.Is(err, mapengine.ErrMissingAPIKey),
		errors.Is(err, mapengine.ErrUnknownStyle):
		return errorResponse{http.StatusConflict, ErrCodeMapUnavailable, "Map is unavailable"}, true
	case errors.Is(err, mapview.ErrNotReady):
		return errorResponse{http.StatusConflict, ErrCodeMapNotReady, "Map is still loading"}, true
	case errors.Is(err, catalog.ErrClosed), errors.Is(err, views.ErrClosed):
		return errorResponse{http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Service is shutting down"}, true
	case errors.Is(err, geocode.ErrNoResults), errors.Is(err, geocode.ErrEmptyAddress):
		return errorResponse{http.StatusBadRequest, ErrCodeInvalidAddress, "Address could not be located"}, true
	case errors.Is(err, ErrBodyTooLarge):
		return errorResponse{http.StatusRequestEntityTooLarge, ErrCodeBadRequest, err.Error()}, true
	case errors.Is(err, ErrEmptyBody), errors.Is(err, ErrInvalidJSON):
		return errorResponse{http.StatusBadRequest, ErrCodeBadRequest, err.Error()}, true
	}
	return errorResponse{http.StatusInternalServerError, ErrCodeInternalError, "Internal server error"}, false
}

// respondServiceError writes the response for an error returned by the
// catalog, the view registry or request decoding.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	rw := NewResponseWriter(w, r)

	var verr *validation.RequestValidationError
	if errors.As(err, &verr) {
		apiErr := verr.ToAPIError()
		if apiErr.Details == nil {
			rw.ValidationError(apiErr.Message, nil)
			return
		}
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return
	}

	resp, known := classify(err)
	if !known {
		logging.Ctx(r.Context()).Error().Err(err).Str("path", sanitizeLogValue(r.URL.Path)).Msg("Request failed")
	}
	rw.Error(resp.status, resp.code, resp.message)
}
