// Campmap - Campground Listings and Map Clustering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campmap

package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Map       MapConfig       `koanf:"map"`
	Database  DatabaseConfig  `koanf:"database"`
	Geocoding GeocodingConfig `koanf:"geocoding"`
	API       APIConfig       `koanf:"api"`
	Views     ViewsConfig     `koanf:"views"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"` // development or production
}

// Addr returns the listen address in host:port form.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// MapConfig holds the map provider settings and the clustered source constants
// applied to every mounted view.
type MapConfig struct {
	APIKey         string  `koanf:"api_key"`
	Style          string  `koanf:"style"`
	CenterLng      float64 `koanf:"center_lng"`
	CenterLat      float64 `koanf:"center_lat"`
	Zoom           float64 `koanf:"zoom"`
	MinZoom        float64 `koanf:"min_zoom"`
	MaxZoom        float64 `koanf:"max_zoom"`
	ClusterMaxZoom int     `koanf:"cluster_max_zoom"`
	ClusterRadius  int     `koanf:"cluster_radius"`
}

// DatabaseConfig holds the location catalog storage settings
type DatabaseConfig struct {
	Path       string        `koanf:"path"`
	InMemory   bool          `koanf:"in_memory"`
	SeedData   bool          `koanf:"seed_data"`
	GCInterval time.Duration `koanf:"gc_interval"` // value log GC; 0 disables
}

// GeocodingConfig holds forward geocoder settings
type GeocodingConfig struct {
	Provider  string        `koanf:"provider"` // maptiler or static
	BaseURL   string        `koanf:"base_url"`
	APIKey    string        `koanf:"api_key"`
	Timeout   time.Duration `koanf:"timeout"`
	RateLimit float64       `koanf:"rate_limit"` // requests per second
	Burst     int           `koanf:"burst"`
	CacheTTL  time.Duration `koanf:"cache_ttl"`

	// Circuit breaker
	BreakerMaxFailures uint32        `koanf:"breaker_max_failures"`
	BreakerTimeout     time.Duration `koanf:"breaker_timeout"`
}

// EffectiveAPIKey returns the geocoder key, falling back to the map key.
func (g GeocodingConfig) EffectiveAPIKey(mapKey string) string {
	if g.APIKey != "" {
		return g.APIKey
	}
	return mapKey
}

// APIConfig holds listing API settings
type APIConfig struct {
	PageSize int `koanf:"page_size"`
}

// ViewsConfig holds mounted map view hosting settings
type ViewsConfig struct {
	IdleTTL       time.Duration `koanf:"idle_ttl"`
	ReapInterval  time.Duration `koanf:"reap_interval"`
	MaxMounted    int           `koanf:"max_mounted"`
	DefaultWidth  int           `koanf:"default_width"`
	DefaultHeight int           `koanf:"default_height"`
}

// SecurityConfig holds CORS and rate limiting settings
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Load reads configuration from defaults, the optional config file and the
// environment.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
