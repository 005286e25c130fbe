// Campmap - Campground Listings and Map Clustering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campmap

package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/campmap/internal/catalog"
	"github.com/tomtom215/campmap/internal/geo"
	"github.com/tomtom215/campmap/internal/mapview"
	"github.com/tomtom215/campmap/internal/validation"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// MountViewRequest mounts a map view. Query and categories select the
// listings shown, exactly as on the listing endpoint.
type MountViewRequest struct {
	Query      string         `json:"q" validate:"max=120"`
	Categories []string       `json:"categories" validate:"max=10,dive,slug"`
	Width      int            `json:"width" validate:"omitempty,min=64,max=4096"`
	Height     int            `json:"height" validate:"omitempty,min=64,max=4096"`
	Camera     *CameraRequest `json:"camera"`
}

// FilterRequest replaces a view's listing filter.
type FilterRequest struct {
	Query      string   `json:"q" validate:"max=120"`
	Categories []string `json:"categories" validate:"max=10,dive,slug"`
}

// ClickRequest is a click at a pixel of the view.
type ClickRequest struct {
	X float64 `json:"x" validate:"gte=0,lte=4096"`
	Y float64 `json:"y" validate:"gte=0,lte=4096"`
}

// CameraRequest moves a view's camera.
type CameraRequest struct {
	Lng  float64 `json:"lng" validate:"longitude"`
	Lat  float64 `json:"lat" validate:"latitude"`
	Zoom float64 `json:"zoom" validate:"gte=0,lte=22"`
}

// Camera converts the request into a renderer camera.
func (c *CameraRequest) Camera() mapview.Camera {
	return mapview.Camera{Center: geo.LngLat{Lng: c.Lng, Lat: c.Lat}, Zoom: c.Zoom}
}

// Filter converts the request into a catalog filter.
func (f *FilterRequest) Filter() catalog.Filter {
	return catalog.Filter{Query: strings.TrimSpace(f.Query), Categories: f.Categories}
}

// decodeJSON reads a bounded JSON body into v and validates it. Unknown
// fields are rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return ErrBodyTooLarge
		}
		return fmt.Errorf("%w: %s", ErrInvalidJSON, err.Error())
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return ErrEmptyBody
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidJSON, err.Error())
	}

	if verr := validation.ValidateStruct(v); verr != nil {
		return verr
	}
	return nil
}

// filterFromQuery reads ?q=, ?categories=a,b (or repeated ?category=) and
// ?page= from the URL.
func filterFromQuery(r *http.Request) catalog.Filter {
	query := r.URL.Query()
	cats := catalog.ParseCategories(query.Get("categories"))
	for _, c := range query["category"] {
		cats = append(cats, catalog.ParseCategories(c)...)
	}
	return catalog.Filter{
		Query:      strings.TrimSpace(query.Get("q")),
		Categories: cats,
		Page:       getIntParam(r, "page", 1),
	}
}

// getIntParam extracts an integer query parameter with a default value
func getIntParam(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}

// sanitizeLogValue escapes control characters so request data cannot forge
// log lines.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&result, "\\x%02x", r)
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}
