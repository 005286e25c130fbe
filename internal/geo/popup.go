// Campmap - Campground Listings and Map Clustering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campmap

package geo

import (
	"errors"
	"fmt"
	"html"
	"net/url"
	"strings"

	"github.com/goccy/go-json"
	"github.com/paulmach/orb/geojson"
)

// Popup decoding errors.
var (
	ErrPopupMissing   = errors.New("feature has no popup metadata")
	ErrPopupNotString = errors.New("popup metadata is not a string")
	ErrPopupMalformed = errors.New("popup metadata is malformed")
	ErrPopupNoID      = errors.New("popup metadata has no id")
)

// PopupData is the metadata serialized onto every point feature.
type PopupData struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	LocationLabel string `json:"locationLabel"`
}

// Encode returns the JSON form stored in the feature's popup property.
func (p PopupData) Encode() string {
	// Marshalling three strings cannot fail.
	b, _ := json.Marshal(p) //nolint:errchkjson
	return string(b)
}

// DecodePopup reads the popup metadata from feature properties.
func DecodePopup(props geojson.Properties) (PopupData, error) {
	raw, ok := props[PopupProperty]
	if !ok || raw == nil {
		return PopupData{}, ErrPopupMissing
	}
	s, ok := raw.(string)
	if !ok {
		return PopupData{}, fmt.Errorf("%w: got %T", ErrPopupNotString, raw)
	}

	var p PopupData
	if err := json.Unmarshal([]byte(s), &p); err != nil {
		return PopupData{}, fmt.Errorf("%w: %v", ErrPopupMalformed, err)
	}
	if p.ID == "" {
		return PopupData{}, ErrPopupNoID
	}
	return p, nil
}

// DetailPath returns the location detail link for id.
func DetailPath(id string) string {
	return "/location/" + url.PathEscape(id)
}

// PopupHTML renders the popup fragment: a heading linking to the detail view
// followed by the location label as plain text.
func PopupHTML(p PopupData) string {
	var b strings.Builder
	b.WriteString(`<h5><a href="`)
	b.WriteString(html.EscapeString(DetailPath(p.ID)))
	b.WriteString(`">`)
	b.WriteString(html.EscapeString(p.Title))
	b.WriteString(`</a></h5><span>`)
	b.WriteString(html.EscapeString(p.LocationLabel))
	b.WriteString(`</span>`)
	return b.String()
}
