// Campmap - Campground Listings and Map Clustering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campmap

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/campmap/config.yaml",
	"/etc/campmap/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all default values.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        3000,
			Host:        "0.0.0.0",
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Map: MapConfig{
			APIKey:         "",
			Style:          "streets-v2",
			CenterLng:      -103.59179687498357,
			CenterLat:      40.66995747013945,
			Zoom:           3,
			MinZoom:        0,
			MaxZoom:        22,
			ClusterMaxZoom: 14,
			ClusterRadius:  50,
		},
		Database: DatabaseConfig{
			Path:       "/data/campmap",
			InMemory:   false,
			SeedData:   false,
			GCInterval: 10 * time.Minute,
		},
		Geocoding: GeocodingConfig{
			Provider:           "static",
			BaseURL:            "https://api.maptiler.com",
			Timeout:            10 * time.Second,
			RateLimit:          5,
			Burst:              5,
			CacheTTL:           24 * time.Hour,
			BreakerMaxFailures: 5,
			BreakerTimeout:     30 * time.Second,
		},
		API: APIConfig{
			PageSize: 12,
		},
		Views: ViewsConfig{
			IdleTTL:       30 * time.Minute,
			ReapInterval:  time.Minute,
			MaxMounted:    1000,
			DefaultWidth:  1024,
			DefaultHeight: 600,
		},
		Security: SecurityConfig{
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			CORSOrigins:       []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults
//  2. Config file (optional YAML)
//  3. Environment variables
func LoadWithKoanf() (*Config, error) {
	k, err := loadKoanf()
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func loadKoanf() (*koanf.Koanf, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// MAP_API_KEY -> map.api_key, BADGER_PATH -> database.path, ...
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}
	return k, nil
}

// findConfigFile returns the first existing config file, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths are parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated env values to slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
var envMappings = map[string]string{
	// Server
	"http_port":    "server.port",
	"http_host":    "server.host",
	"http_timeout": "server.timeout",
	"environment":  "server.environment",

	// Map
	"map_api_key":          "map.api_key",
	"map_style":            "map.style",
	"map_center_lng":       "map.center_lng",
	"map_center_lat":       "map.center_lat",
	"map_zoom":             "map.zoom",
	"map_min_zoom":         "map.min_zoom",
	"map_max_zoom":         "map.max_zoom",
	"map_cluster_max_zoom": "map.cluster_max_zoom",
	"map_cluster_radius":   "map.cluster_radius",

	// Database
	"badger_path":        "database.path",
	"badger_in_memory":   "database.in_memory",
	"seed_data":          "database.seed_data",
	"badger_gc_interval": "database.gc_interval",

	// Geocoding
	"geocoder_provider":             "geocoding.provider",
	"geocoder_url":                  "geocoding.base_url",
	"geocoder_api_key":              "geocoding.api_key",
	"geocoder_timeout":              "geocoding.timeout",
	"geocoder_rate_limit":           "geocoding.rate_limit",
	"geocoder_burst":                "geocoding.burst",
	"geocoder_cache_ttl":            "geocoding.cache_ttl",
	"geocoder_breaker_max_failures": "geocoding.breaker_max_failures",
	"geocoder_breaker_timeout":      "geocoding.breaker_timeout",

	// API
	"api_page_size": "api.page_size",

	// Views
	"view_idle_ttl":       "views.idle_ttl",
	"view_reap_interval":  "views.reap_interval",
	"view_max_mounted":    "views.max_mounted",
	"view_default_width":  "views.default_width",
	"view_default_height": "views.default_height",

	// Security
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"cors_origins":        "security.cors_origins",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
// Unmapped variables return "" and are skipped.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - MAP_API_KEY -> map.api_key
//   - BADGER_PATH -> database.path
func envTransformFunc(key string) string {
	if path, ok := envMappings[strings.ToLower(key)]; ok {
		return path
	}
	return ""
}
