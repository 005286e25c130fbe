// Campmap - Campground Listings and Map Clustering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campmap

package catalog

import (
	"errors"
	"time"

	"github.com/tomtom215/campmap/internal/geo"
)

// Catalog errors.
var (
	ErrNotFound       = errors.New("location not found")
	ErrReviewNotFound = errors.New("review not found")
	ErrDuplicate      = errors.New("location with this name at this address already exists")
	ErrInvalidAddress = errors.New("invalid address provided")
	ErrClosed         = errors.New("catalog is closed")
)

// DefaultPageSize is the number of locations per listing page.
const DefaultPageSize = 12

// DefaultCategories is the category set searched when a filter names none.
var DefaultCategories = []string{"tent", "rv", "cabin", "glamping", "backcountry", "lakeside"}

// Image is an uploaded photo reference. The files themselves live with the
// image host.
type Image struct {
	URL      string `json:"url" validate:"required,url,max=500"`
	Filename string `json:"filename" validate:"notblank,max=200"`
}

// Review is a visitor rating embedded in its location.
type Review struct {
	ID        string    `json:"id"`
	Rating    int       `json:"rating"`
	Body      string    `json:"body"`
	Author    string    `json:"author,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Location is a campground listing.
type Location struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Label       string      `json:"location"`
	Address     string      `json:"address"`
	Description string      `json:"description"`
	Price       float64     `json:"price"`
	Categories  []string    `json:"categories"`
	Images      []Image     `json:"images"`
	Geometry    *geo.LngLat `json:"geometry,omitempty"`
	Reviews     []Review    `json:"reviews"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// LocationLabel is the short place name shown under the title, falling back
// to the address.
func (l *Location) LocationLabel() string {
	if l.Label != "" {
		return l.Label
	}
	return l.Address
}

// Record converts the listing into the map data layer's record.
func (l *Location) Record() geo.LocationRecord {
	rec := geo.LocationRecord{
		ID:            l.ID,
		Title:         l.Title,
		LocationLabel: l.LocationLabel(),
	}
	if l.Geometry != nil {
		ll := *l.Geometry
		rec.Coordinates = &ll
	}
	return rec
}

// AverageRating returns the mean review rating, or 0 without reviews.
func (l *Location) AverageRating() float64 {
	if len(l.Reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range l.Reviews {
		sum += r.Rating
	}
	return float64(sum) / float64(len(l.Reviews))
}

// Records converts listings into map records, preserving order.
func Records(locations []Location) []geo.LocationRecord {
	records := make([]geo.LocationRecord, len(locations))
	for i := range locations {
		records[i] = locations[i].Record()
	}
	return records
}

// LocationInput carries the editable fields of a listing.
type LocationInput struct {
	Title       string   `json:"title" validate:"notblank,max=120"`
	Label       string   `json:"location" validate:"max=120"`
	Address     string   `json:"address" validate:"notblank,max=250"`
	Description string   `json:"description" validate:"max=5000"`
	Price       float64  `json:"price" validate:"gte=0,lte=100000"`
	Categories  []string `json:"categories" validate:"min=1,max=10,dive,slug"`
	Images      []Image  `json:"images" validate:"max=20,dive"`
}

// UpdateInput replaces the editable fields of a listing. Images are appended
// after the filenames in DeleteImages are removed.
type UpdateInput struct {
	LocationInput
	DeleteImages []string `json:"deleteImages" validate:"max=20"`
}

// ReviewInput is a new review.
type ReviewInput struct {
	Rating int    `json:"rating" validate:"gte=1,lte=5"`
	Body   string `json:"body" validate:"notblank,max=2000"`
	Author string `json:"author" validate:"max=80"`
}

// Filter selects listings.
type Filter struct {
	Query      string
	Categories []string
	Page       int
}

// Page is one page of a filtered listing.
type Page struct {
	Locations []Location `json:"locations"`
	Total     int        `json:"total"`
	Pages     int        `json:"pages"`
	Limit     int        `json:"limit"`
	Page      int        `json:"page"`
}

// EventKind names a catalog mutation.
type EventKind string

// Event kinds.
const (
	EventCreated       EventKind = "created"
	EventUpdated       EventKind = "updated"
	EventDeleted       EventKind = "deleted"
	EventReviewAdded   EventKind = "review_added"
	EventReviewDeleted EventKind = "review_deleted"
)

// Event describes a committed mutation.
type Event struct {
	Kind EventKind `json:"kind"`
	ID   string    `json:"id"`
}
