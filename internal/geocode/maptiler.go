// Campmap - Campground Listings and Map Clustering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campmap

package geocode

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/campmap/internal/cache"
	"github.com/tomtom215/campmap/internal/geo"
	"github.com/tomtom215/campmap/internal/logging"
	"github.com/tomtom215/campmap/internal/metrics"
)

// DefaultMapTilerURL is the public MapTiler API.
const DefaultMapTilerURL = "https://api.maptiler.com"

// MapTilerConfig configures a MapTilerClient. Zero values take defaults.
type MapTilerConfig struct {
	BaseURL   string
	APIKey    string
	Timeout   time.Duration
	RateLimit float64 // requests per second
	Burst     int
	CacheTTL  time.Duration

	BreakerMaxFailures uint32
	BreakerTimeout     time.Duration

	HTTPClient *http.Client
}

func (c *MapTilerConfig) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultMapTilerURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.RateLimit <= 0 {
		c.RateLimit = 5
	}
	if c.Burst <= 0 {
		c.Burst = 1
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = 24 * time.Hour
	}
	if c.BreakerMaxFailures == 0 {
		c.BreakerMaxFailures = 5
	}
	if c.BreakerTimeout <= 0 {
		c.BreakerTimeout = 30 * time.Second
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
}

// MapTilerClient geocodes through the MapTiler API.
//
// Lookups that find nothing are cached and count as successes for the
// circuit breaker; transport errors and non-200 responses trip it after
// BreakerMaxFailures consecutive failures.
type MapTilerClient struct {
	cfg     MapTilerConfig
	limiter *rate.Limiter
	cb      *gobreaker.CircuitBreaker[geo.LngLat]
	cache   *cache.Cache[lookup]
	name    string
}

// lookup is a cached result; found is false for addresses without a match.
type lookup struct {
	LngLat geo.LngLat
	Found  bool
}

// NewMapTilerClient returns a client for cfg. The API key is required.
func NewMapTilerClient(cfg MapTilerConfig) (*MapTilerClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("maptiler geocoder requires an API key")
	}
	cfg.applyDefaults()
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid maptiler base URL: %w", err)
	}

	c := &MapTilerClient{
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.Burst),
		cache:   cache.New[lookup](cfg.CacheTTL),
		name:    "geocoder-maptiler",
	}

	metrics.CircuitBreakerState.WithLabelValues(c.name).Set(0)
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(c.name).Set(0)

	c.cb = gobreaker.NewCircuitBreaker[geo.LngLat](gobreaker.Settings{
		Name:        c.name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerMaxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNoResults) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("[CIRCUIT BREAKER] State transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	})
	return c, nil
}

// Name implements Geocoder.
func (c *MapTilerClient) Name() string {
	return ProviderMapTiler
}

// Close releases the result cache.
func (c *MapTilerClient) Close() {
	c.cache.Close()
}

// State returns the circuit breaker state.
func (c *MapTilerClient) State() gobreaker.State {
	return c.cb.State()
}

// Forward implements Geocoder.
func (c *MapTilerClient) Forward(ctx context.Context, address string) (geo.LngLat, error) {
	query := normalize(address)
	if query == "" {
		return geo.LngLat{}, ErrEmptyAddress
	}

	key := cache.GenerateKey("geocode", query)
	if hit, ok := c.cache.Get(key); ok {
		metrics.GeocoderCacheHits.Inc()
		if !hit.Found {
			return geo.LngLat{}, ErrNoResults
		}
		return hit.LngLat, nil
	}
	metrics.GeocoderCacheMisses.Inc()

	if err := c.limiter.Wait(ctx); err != nil {
		return geo.LngLat{}, fmt.Errorf("geocoder rate limit: %w", err)
	}

	start := time.Now()
	ll, err := c.cb.Execute(func() (geo.LngLat, error) {
		return c.query(ctx, query)
	})
	c.record(err, time.Since(start))

	switch {
	case err == nil:
		c.cache.Set(key, lookup{LngLat: ll, Found: true})
		return ll, nil
	case errors.Is(err, ErrNoResults):
		c.cache.Set(key, lookup{})
		return geo.LngLat{}, ErrNoResults
	default:
		return geo.LngLat{}, err
	}
}

func (c *MapTilerClient) record(err error, d time.Duration) {
	switch {
	case err == nil:
		metrics.RecordGeocode(ProviderMapTiler, "success", d)
		metrics.CircuitBreakerRequests.WithLabelValues(c.name, "success").Inc()
		metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(c.name).Set(0)
	case errors.Is(err, ErrNoResults):
		metrics.RecordGeocode(ProviderMapTiler, "no_results", d)
		metrics.CircuitBreakerRequests.WithLabelValues(c.name, "success").Inc()
	case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.RecordGeocode(ProviderMapTiler, "rejected", d)
		metrics.CircuitBreakerRequests.WithLabelValues(c.name, "rejected").Inc()
		logging.Warn().Err(err).Msg("[CIRCUIT BREAKER] Geocoding request rejected")
	default:
		metrics.RecordGeocode(ProviderMapTiler, "error", d)
		metrics.CircuitBreakerRequests.WithLabelValues(c.name, "failure").Inc()
		counts := c.cb.Counts()
		metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(c.name).Set(float64(counts.ConsecutiveFailures))
	}
}

// query performs GET {base}/geocoding/{query}.json?key=...&limit=1.
func (c *MapTilerClient) query(ctx context.Context, query string) (geo.LngLat, error) {
	params := url.Values{}
	params.Set("key", c.cfg.APIKey)
	params.Set("limit", "1")
	reqURL := fmt.Sprintf("%s/geocoding/%s.json?%s", c.cfg.BaseURL, url.PathEscape(query), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return geo.LngLat{}, fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return geo.LngLat{}, fmt.Errorf("geocoding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return geo.LngLat{}, fmt.Errorf("geocoding request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	fc := geojson.NewFeatureCollection()
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(fc); err != nil {
		return geo.LngLat{}, fmt.Errorf("failed to decode geocoding response: %w", err)
	}
	return firstMatch(fc)
}

// firstMatch returns the position of the first feature: its point, or the
// centre of its bounds for other geometries.
func firstMatch(fc *geojson.FeatureCollection) (geo.LngLat, error) {
	if len(fc.Features) == 0 || fc.Features[0].Geometry == nil {
		return geo.LngLat{}, ErrNoResults
	}
	var p orb.Point
	switch g := fc.Features[0].Geometry.(type) {
	case orb.Point:
		p = g
	default:
		p = g.Bound().Center()
	}
	ll := geo.FromPoint(p)
	if !ll.Valid() {
		return geo.LngLat{}, fmt.Errorf("geocoding result has invalid coordinates %v", p)
	}
	return ll, nil
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
