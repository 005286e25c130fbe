// Campmap - Campground Listings and Map Clustering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campmap

package geocode

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tomtom215/campmap/internal/config"
	"github.com/tomtom215/campmap/internal/geo"
)

// Geocoding errors.
var (
	ErrNoResults       = errors.New("no geocoding results")
	ErrEmptyAddress    = errors.New("address is empty")
	ErrUnknownProvider = errors.New("unknown geocoding provider")
)

// Geocoder resolves an address to the coordinates of its best match.
type Geocoder interface {
	Forward(ctx context.Context, address string) (geo.LngLat, error)
	Name() string
}

// Closer is implemented by geocoders holding background resources.
type Closer interface {
	Close()
}

// New builds the geocoder selected by cfg. mapKey is used when the
// geocoder has no key of its own.
func New(cfg config.GeocodingConfig, mapKey string) (Geocoder, error) {
	switch cfg.Provider {
	case "", ProviderStatic:
		return NewStatic(DefaultPlaces()), nil
	case ProviderMapTiler:
		return NewMapTilerClient(MapTilerConfig{
			BaseURL:            cfg.BaseURL,
			APIKey:             cfg.EffectiveAPIKey(mapKey),
			Timeout:            cfg.Timeout,
			RateLimit:          cfg.RateLimit,
			Burst:              cfg.Burst,
			CacheTTL:           cfg.CacheTTL,
			BreakerMaxFailures: cfg.BreakerMaxFailures,
			BreakerTimeout:     cfg.BreakerTimeout,
		})
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}

// normalize folds case and collapses whitespace so that trivially
// different spellings of an address share a cache entry.
func normalize(address string) string {
	return strings.Join(strings.Fields(strings.ToLower(address)), " ")
}
