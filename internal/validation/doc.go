// Campmap - Campground Listings and Map Clustering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campmap

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is built once with WithRequiredStructEnabled and
// the Campmap custom tags. Field names in messages are taken from the json
// struct tag, so a failure on CreateLocationRequest.Title reads "title is required".
//
// # Quick Start
//
//	type CreateLocationRequest struct {
//	    Title      string   `json:"title" validate:"notblank,max=120"`
//	    Address    string   `json:"address" validate:"notblank,max=250"`
//	    Price      float64  `json:"price" validate:"gte=0,lte=10000"`
//	    Categories []string `json:"categories" validate:"max=10,dive,slug"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
//	    return
//	}
//
// # Custom Tags
//
//   - notblank: string is non-empty after trimming whitespace
//   - slug: lowercase category slug, letters digits and hyphens, at most 32 characters
//
// The built-in tags used across the API are required, min, max, gte, lte,
// oneof, url, latitude, longitude and dive.
//
// # Errors
//
// ValidateStruct returns *RequestValidationError, which lists one
// ValidationError per failing field. ToAPIError converts it into the
// VALIDATION_ERROR code used by the HTTP envelope; a single failure carries
// field, tag and value details, several failures carry a fields list.
package validation
