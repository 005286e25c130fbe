// Campmap - Campground Listings and Map Clustering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campmap

package config

import (
	"fmt"
	"math"
	"time"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateMap,
		c.validateDatabase,
		c.validateGeocoding,
		c.validateAPI,
		c.validateViews,
		c.validateRateLimits,
		c.validateLogging,
	}
	for _, validate := range validators {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	if c.Server.Environment != "development" && c.Server.Environment != "production" {
		return fmt.Errorf("ENVIRONMENT must be one of: development, production")
	}
	return nil
}

// validStyles defines the map styles understood by the map engine
var validStyles = map[string]bool{
	"streets-v2":    true,
	"outdoor-v2":    true,
	"satellite":     true,
	"topo-v2":       true,
	"basic-v2":      true,
	"dataviz":       true,
	"winter-v2":     true,
	"hybrid":        true,
	"backdrop":      true,
	"landscape":     true,
	"ocean":         true,
	"toner-v2":      true,
	"openstreetmap": true,
}

// ValidStyle reports whether style is a known map style identifier.
func ValidStyle(style string) bool {
	return validStyles[style]
}

func (c *Config) validateMap() error {
	m := c.Map
	if !validStyles[m.Style] {
		return fmt.Errorf("MAP_STYLE %q is not a known style", m.Style)
	}
	if !finite(m.CenterLng) || m.CenterLng < -180 || m.CenterLng > 180 {
		return fmt.Errorf("MAP_CENTER_LNG must be between -180 and 180")
	}
	if !finite(m.CenterLat) || m.CenterLat < -90 || m.CenterLat > 90 {
		return fmt.Errorf("MAP_CENTER_LAT must be between -90 and 90")
	}
	if m.MinZoom < 0 || m.MaxZoom > 24 || m.MinZoom > m.MaxZoom {
		return fmt.Errorf("MAP_MIN_ZOOM and MAP_MAX_ZOOM must satisfy 0 <= min <= max <= 24")
	}
	if m.Zoom < m.MinZoom || m.Zoom > m.MaxZoom {
		return fmt.Errorf("MAP_ZOOM must be between MAP_MIN_ZOOM and MAP_MAX_ZOOM")
	}
	if m.ClusterMaxZoom < 1 || m.ClusterMaxZoom > 24 {
		return fmt.Errorf("MAP_CLUSTER_MAX_ZOOM must be between 1 and 24")
	}
	if m.ClusterRadius < 1 || m.ClusterRadius > 512 {
		return fmt.Errorf("MAP_CLUSTER_RADIUS must be between 1 and 512")
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if !c.Database.InMemory && c.Database.Path == "" {
		return fmt.Errorf("BADGER_PATH is required unless BADGER_IN_MEMORY=true")
	}
	if c.Database.GCInterval < 0 {
		return fmt.Errorf("BADGER_GC_INTERVAL must not be negative")
	}
	return nil
}

func (c *Config) validateGeocoding() error {
	g := c.Geocoding
	switch g.Provider {
	case "static":
		return nil
	case "maptiler":
	default:
		return fmt.Errorf("GEOCODER_PROVIDER must be one of: maptiler, static")
	}

	if err := validateHTTPURL(g.BaseURL, "GEOCODER_URL"); err != nil {
		return fmt.Errorf("GEOCODER_URL is invalid: %w", err)
	}
	if g.EffectiveAPIKey(c.Map.APIKey) == "" {
		return fmt.Errorf("GEOCODER_API_KEY or MAP_API_KEY is required when GEOCODER_PROVIDER=maptiler")
	}
	if g.Timeout <= 0 {
		return fmt.Errorf("GEOCODER_TIMEOUT must be positive")
	}
	if g.RateLimit <= 0 || g.Burst < 1 {
		return fmt.Errorf("GEOCODER_RATE_LIMIT must be positive and GEOCODER_BURST at least 1")
	}
	if g.BreakerMaxFailures < 1 {
		return fmt.Errorf("GEOCODER_BREAKER_MAX_FAILURES must be at least 1")
	}
	return nil
}

func (c *Config) validateAPI() error {
	if c.API.PageSize < 1 || c.API.PageSize > 100 {
		return fmt.Errorf("API_PAGE_SIZE must be between 1 and 100")
	}
	return nil
}

func (c *Config) validateViews() error {
	v := c.Views
	if v.IdleTTL < time.Second {
		return fmt.Errorf("VIEW_IDLE_TTL must be at least 1s")
	}
	if v.ReapInterval < time.Second {
		return fmt.Errorf("VIEW_REAP_INTERVAL must be at least 1s")
	}
	if v.MaxMounted < 1 {
		return fmt.Errorf("VIEW_MAX_MOUNTED must be at least 1")
	}
	if v.DefaultWidth < 1 || v.DefaultHeight < 1 {
		return fmt.Errorf("VIEW_DEFAULT_WIDTH and VIEW_DEFAULT_HEIGHT must be positive")
	}
	return nil
}

// Rate limit constants
const (
	minRateLimitRequests = 1
	maxRateLimitRequests = 100000
	minRateLimitWindow   = time.Second
	maxRateLimitWindow   = time.Hour
)

func (c *Config) validateRateLimits() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

// validLogLevels defines the allowed log levels
var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validLogFormats defines the allowed log formats
var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

// IsProduction reports whether ENVIRONMENT=production.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// HasWildcardCORS reports whether any CORS origin is "*".
func (c *Config) HasWildcardCORS() bool {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
