// Campmap - Campground Listings and Map Clustering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campmap

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestDefaultConfig verifies that defaultConfig() returns proper defaults
func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Server.Port != 3000 {
		t.Errorf("Server.Port = %d, want 3000", cfg.Server.Port)
	}
	if cfg.Map.Style != "streets-v2" {
		t.Errorf("Map.Style = %q, want streets-v2", cfg.Map.Style)
	}
	if cfg.Map.CenterLng != -103.59179687498357 || cfg.Map.CenterLat != 40.66995747013945 {
		t.Errorf("Map center = (%v, %v), want continental US default", cfg.Map.CenterLng, cfg.Map.CenterLat)
	}
	if cfg.Map.Zoom != 3 {
		t.Errorf("Map.Zoom = %v, want 3", cfg.Map.Zoom)
	}
	if cfg.Map.ClusterMaxZoom != 14 {
		t.Errorf("Map.ClusterMaxZoom = %d, want 14", cfg.Map.ClusterMaxZoom)
	}
	if cfg.Map.ClusterRadius != 50 {
		t.Errorf("Map.ClusterRadius = %d, want 50", cfg.Map.ClusterRadius)
	}
	if cfg.API.PageSize != 12 {
		t.Errorf("API.PageSize = %d, want 12", cfg.API.PageSize)
	}
	if cfg.Geocoding.Provider != "static" {
		t.Errorf("Geocoding.Provider = %q, want static", cfg.Geocoding.Provider)
	}
	if cfg.Views.IdleTTL != 30*time.Minute {
		t.Errorf("Views.IdleTTL = %v, want 30m", cfg.Views.IdleTTL)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaultConfig().Validate() error = %v", err)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"HTTP_PORT", "server.port"},
		{"HTTP_HOST", "server.host"},
		{"ENVIRONMENT", "server.environment"},
		{"MAP_API_KEY", "map.api_key"},
		{"MAP_STYLE", "map.style"},
		{"MAP_CLUSTER_RADIUS", "map.cluster_radius"},
		{"BADGER_PATH", "database.path"},
		{"BADGER_IN_MEMORY", "database.in_memory"},
		{"GEOCODER_PROVIDER", "geocoding.provider"},
		{"GEOCODER_URL", "geocoding.base_url"},
		{"VIEW_IDLE_TTL", "views.idle_ttl"},
		{"RATE_LIMIT_REQUESTS", "security.rate_limit_reqs"},
		{"CORS_ORIGINS", "security.cors_origins"},
		{"LOG_LEVEL", "logging.level"},
		{"log_format", "logging.format"},

		// Unknown (should return empty)
		{"RANDOM_VAR", ""},
		{"PATH", ""},
		{"HOME", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := envTransformFunc(tt.input); got != tt.expected {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

// isolateConfigFile points CONFIG_PATH at path (or at nothing) and moves the
// working directory to an empty temp dir so no stray config.yaml is picked up.
func isolateConfigFile(t *testing.T, path string) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv(ConfigPathEnvVar, path)
}

func TestFindConfigFile(t *testing.T) {
	t.Run("no config file exists", func(t *testing.T) {
		isolateConfigFile(t, "")
		if got := findConfigFile(); got != "" {
			t.Errorf("findConfigFile() = %q, want empty string", got)
		}
	})

	t.Run("config.yaml exists", func(t *testing.T) {
		isolateConfigFile(t, "")
		if err := os.WriteFile("config.yaml", []byte("server:\n  port: 1\n"), 0o600); err != nil {
			t.Fatalf("Failed to create config file: %v", err)
		}
		if got := findConfigFile(); got != "config.yaml" {
			t.Errorf("findConfigFile() = %q, want config.yaml", got)
		}
	})

	t.Run("CONFIG_PATH takes precedence", func(t *testing.T) {
		customPath := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(customPath, []byte("server:\n  port: 1\n"), 0o600); err != nil {
			t.Fatalf("Failed to create config file: %v", err)
		}
		isolateConfigFile(t, customPath)
		if err := os.WriteFile("config.yaml", []byte("server:\n  port: 2\n"), 0o600); err != nil {
			t.Fatalf("Failed to create config file: %v", err)
		}
		if got := findConfigFile(); got != customPath {
			t.Errorf("findConfigFile() = %q, want %q", got, customPath)
		}
	})

	t.Run("CONFIG_PATH with non-existent file", func(t *testing.T) {
		isolateConfigFile(t, "/non/existent/config.yaml")
		if got := findConfigFile(); got != "" {
			t.Errorf("findConfigFile() = %q, want empty string", got)
		}
	})
}

func TestLoadWithKoanfEnvVars(t *testing.T) {
	isolateConfigFile(t, "")
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("MAP_API_KEY", "map-key")
	t.Setenv("MAP_CLUSTER_RADIUS", "80")
	t.Setenv("BADGER_IN_MEMORY", "true")
	t.Setenv("VIEW_IDLE_TTL", "5m")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Map.APIKey != "map-key" {
		t.Errorf("Map.APIKey = %q, want map-key", cfg.Map.APIKey)
	}
	if cfg.Map.ClusterRadius != 80 {
		t.Errorf("Map.ClusterRadius = %d, want 80", cfg.Map.ClusterRadius)
	}
	if !cfg.Database.InMemory {
		t.Error("Database.InMemory = false, want true")
	}
	if cfg.Views.IdleTTL != 5*time.Minute {
		t.Errorf("Views.IdleTTL = %v, want 5m", cfg.Views.IdleTTL)
	}
	if len(cfg.Security.CORSOrigins) != 2 || cfg.Security.CORSOrigins[1] != "https://b.example" {
		t.Errorf("Security.CORSOrigins = %v, want two trimmed origins", cfg.Security.CORSOrigins)
	}

	// Defaults still applied for unset values
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want 0.0.0.0 (default)", cfg.Server.Host)
	}
	if cfg.Map.ClusterMaxZoom != 14 {
		t.Errorf("Map.ClusterMaxZoom = %d, want 14 (default)", cfg.Map.ClusterMaxZoom)
	}
}

func TestLoadWithKoanfEnvOverridesFile(t *testing.T) {
	configContent := `
server:
  port: 8888
  host: "127.0.0.1"

map:
  style: "outdoor-v2"
  zoom: 5

logging:
  level: "warn"
`
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(configContent), 0o600); err != nil {
		t.Fatalf("Failed to create config file: %v", err)
	}
	isolateConfigFile(t, configPath)
	t.Setenv("HTTP_PORT", "9999")
	t.Setenv("BADGER_PATH", "/custom/campmap")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	// From file
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server.Host = %q, want 127.0.0.1 (from file)", cfg.Server.Host)
	}
	if cfg.Map.Style != "outdoor-v2" {
		t.Errorf("Map.Style = %q, want outdoor-v2 (from file)", cfg.Map.Style)
	}
	if cfg.Map.Zoom != 5 {
		t.Errorf("Map.Zoom = %v, want 5 (from file)", cfg.Map.Zoom)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn (from file)", cfg.Logging.Level)
	}

	// Env overrides
	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %d, want 9999 (env override)", cfg.Server.Port)
	}
	if cfg.Database.Path != "/custom/campmap" {
		t.Errorf("Database.Path = %q, want /custom/campmap (env override)", cfg.Database.Path)
	}
}

func TestLoadWithKoanfValidation(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		wantErr bool
	}{
		{name: "defaults are valid", envVars: map[string]string{}},
		{name: "invalid port", envVars: map[string]string{"HTTP_PORT": "70000"}, wantErr: true},
		{name: "unknown style", envVars: map[string]string{"MAP_STYLE": "neon"}, wantErr: true},
		{name: "center latitude out of range", envVars: map[string]string{"MAP_CENTER_LAT": "95"}, wantErr: true},
		{name: "zoom above max", envVars: map[string]string{"MAP_ZOOM": "30"}, wantErr: true},
		{name: "zero cluster max zoom", envVars: map[string]string{"MAP_CLUSTER_MAX_ZOOM": "0"}, wantErr: true},
		{name: "zero cluster radius", envVars: map[string]string{"MAP_CLUSTER_RADIUS": "0"}, wantErr: true},
		{name: "maptiler without key", envVars: map[string]string{"GEOCODER_PROVIDER": "maptiler"}, wantErr: true},
		{
			name:    "maptiler with map key fallback",
			envVars: map[string]string{"GEOCODER_PROVIDER": "maptiler", "MAP_API_KEY": "k"},
		},
		{name: "unknown provider", envVars: map[string]string{"GEOCODER_PROVIDER": "nominatim"}, wantErr: true},
		{name: "invalid log level", envVars: map[string]string{"LOG_LEVEL": "verbose"}, wantErr: true},
		{name: "invalid rate limit", envVars: map[string]string{"RATE_LIMIT_REQUESTS": "0"}, wantErr: true},
		{
			name:    "rate limit disabled skips bounds",
			envVars: map[string]string{"RATE_LIMIT_REQUESTS": "0", "DISABLE_RATE_LIMIT": "true"},
		},
		{name: "empty badger path", envVars: map[string]string{"BADGER_PATH": ""}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateConfigFile(t, "")
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			_, err := LoadWithKoanf()
			if (err != nil) != tt.wantErr {
				t.Errorf("LoadWithKoanf() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateDatabase(t *testing.T) {
	cfg := defaultConfig()
	cfg.Database.Path = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for empty path without in-memory mode")
	}
	cfg.Database.InMemory = true
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error for in-memory mode: %v", err)
	}
}

func TestHasWildcardCORS(t *testing.T) {
	cfg := defaultConfig()
	if !cfg.HasWildcardCORS() {
		t.Error("expected wildcard CORS by default")
	}
	cfg.Security.CORSOrigins = []string{"https://campmap.example"}
	if cfg.HasWildcardCORS() {
		t.Error("expected no wildcard CORS")
	}
}
