// Campmap - Campground Listings and Map Clustering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campmap

package mapview

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog"

	"github.com/tomtom215/campmap/internal/geo"
	"github.com/tomtom215/campmap/internal/logging"
)

// Renderer state errors. They never reach users; callers turn them into
// outcomes or dropped syncs.
var (
	ErrDegraded  = errors.New("map unavailable")
	ErrUnmounted = errors.New("map view unmounted")
	ErrNotReady  = errors.New("map not ready")
)

// Config configures a mounted map.
type Config struct {
	APIKey string
	Style  string
	Center geo.LngLat
	Zoom   float64
	Width  int
	Height int

	ClusterMaxZoom int
	ClusterRadius  int

	// OnOutcome, if set, observes every click outcome (metrics).
	OnOutcome func(ctx context.Context, out Outcome)
}

// DefaultConfig returns a continental-scale view over the streets style with
// clusters up to zoom 14 and a 50px cluster radius.
func DefaultConfig() Config {
	return Config{
		Style:          "streets-v2",
		Center:         geo.LngLat{Lng: -103.59179687498357, Lat: 40.66995747013945},
		Zoom:           3,
		Width:          1024,
		Height:         600,
		ClusterMaxZoom: 14,
		ClusterRadius:  50,
	}
}

// Renderer owns the map instance of one mounted view. The instance is never
// exposed; other components reach it through Renderer methods.
type Renderer struct {
	cfg Config
	log zerolog.Logger

	// ctx is cancelled by Unmount and marks the view's liveness.
	ctx    context.Context
	cancel context.CancelFunc

	interaction *Interaction

	mu          sync.Mutex
	m           Map // nil when degraded or unmounted
	degradedErr error
	loaded      bool
	sourceReady bool
	readyHooks  []func(context.Context)
}

// Mount creates the map exactly once and arranges for the source and layers
// to be declared when the style has loaded. A factory failure yields a
// degraded Renderer rather than an error.
func Mount(ctx context.Context, factory Factory, cfg Config) *Renderer {
	liveCtx, cancel := context.WithCancel(context.Background())
	r := &Renderer{
		cfg:    cfg,
		log:    logging.WithComponent("mapview"),
		ctx:    liveCtx,
		cancel: cancel,
	}
	r.interaction = &Interaction{r: r}

	m, err := factory(ctx, MapOptions{
		APIKey: cfg.APIKey,
		Style:  cfg.Style,
		Center: cfg.Center,
		Zoom:   cfg.Zoom,
		Width:  cfg.Width,
		Height: cfg.Height,
	})
	if err != nil {
		r.degradedErr = fmt.Errorf("%w: %w", ErrDegraded, err)
		logging.Ctx(ctx).Warn().Err(err).Msg("Map initialization failed, rendering empty container")
		return r
	}
	if m == nil {
		r.degradedErr = fmt.Errorf("%w: factory returned no map", ErrDegraded)
		logging.Ctx(ctx).Warn().Msg("Map factory returned no map, rendering empty container")
		return r
	}

	r.mu.Lock()
	r.m = m
	r.mu.Unlock()

	m.OnLoad(r.handleLoad)
	return r
}

// handleLoad declares the clustered source and its layers, wires the click
// handlers and releases everything waiting for the map to become ready.
func (r *Renderer) handleLoad() {
	r.mu.Lock()
	if r.m == nil || r.loaded {
		r.mu.Unlock()
		return
	}
	r.loaded = true

	if err := r.declareLocked(); err != nil {
		r.log.Error().Err(err).Msg("Failed to declare map source and layers")
		r.mu.Unlock()
		return
	}

	r.m.OnClick(LayerClusters, r.dispatch(LayerClusters, r.interaction.ClusterClick))
	r.m.OnClick(LayerUnclustered, r.dispatch(LayerUnclustered, r.interaction.PointClick))

	r.sourceReady = true
	hooks := r.readyHooks
	r.readyHooks = nil
	r.mu.Unlock()

	r.log.Debug().Msg("Map loaded, clustered source declared")
	for _, hook := range hooks {
		hook(r.ctx)
	}
}

func (r *Renderer) declareLocked() error {
	empty := geojson.NewFeatureCollection()
	empty.Features = []*geojson.Feature{}

	err := r.m.AddSource(SourceID, SourceSpec{
		Data:           empty,
		Cluster:        true,
		ClusterMaxZoom: r.cfg.ClusterMaxZoom,
		ClusterRadius:  r.cfg.ClusterRadius,
	})
	if err != nil {
		return fmt.Errorf("add source %s: %w", SourceID, err)
	}
	for _, layer := range ClusterLayers(SourceID) {
		if err := r.m.AddLayer(layer); err != nil {
			return fmt.Errorf("add layer %s: %w", layer.ID, err)
		}
	}
	return nil
}

// dispatch adapts an Interaction method to a ClickHandler that reports the
// outcome.
func (r *Renderer) dispatch(layer string, handle func(context.Context, ClickEvent) Outcome) ClickHandler {
	return func(ctx context.Context, ev ClickEvent) {
		out := handle(ctx, ev)
		out.Layer = layer
		if r.cfg.OnOutcome != nil {
			r.cfg.OnOutcome(ctx, out)
		}
		if sink := outcomeSinkFrom(ctx); sink != nil {
			sink(out)
		}
	}
}

// whenReady runs fn once the source is registered, immediately if it already is.
func (r *Renderer) whenReady(fn func(context.Context)) {
	r.mu.Lock()
	if r.m == nil {
		r.mu.Unlock()
		return
	}
	if !r.sourceReady {
		r.readyHooks = append(r.readyHooks, fn)
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()
	fn(r.ctx)
}

// withMap runs fn with the map while holding the view lock. It fails with
// ErrDegraded, ErrUnmounted or ErrNotReady instead of calling fn when the
// map cannot be used.
func (r *Renderer) withMap(fn func(Map) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.stateLocked(); err != nil {
		return err
	}
	return fn(r.m)
}

func (r *Renderer) stateLocked() error {
	switch {
	case r.degradedErr != nil:
		return r.degradedErr
	case r.m == nil || r.ctx.Err() != nil:
		return ErrUnmounted
	case !r.sourceReady || !r.m.IsStyleLoaded():
		return ErrNotReady
	}
	return nil
}

// Interaction returns the click handler bound to this renderer.
func (r *Renderer) Interaction() *Interaction {
	return r.interaction
}

// Degraded reports whether the map failed to initialize.
func (r *Renderer) Degraded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.degradedErr != nil
}

// Err returns the initialization failure of a degraded renderer, or nil.
func (r *Renderer) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.degradedErr
}

// Ready reports whether the map is mounted, styled and has its source.
func (r *Renderer) Ready() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stateLocked() == nil
}

// Camera returns the current camera. ok is false for degraded or unmounted views.
func (r *Renderer) Camera() (cam Camera, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.degradedErr != nil || r.m == nil {
		return Camera{}, false
	}
	return r.m.Camera(), true
}

// MoveTo eases the camera as a user pan or zoom would.
func (r *Renderer) MoveTo(cam Camera) error {
	return r.withMap(func(m Map) error {
		m.EaseTo(cam)
		return nil
	})
}

// Done is closed when the view is unmounted.
func (r *Renderer) Done() <-chan struct{} {
	return r.ctx.Done()
}

// Unmount tears the map down. Pending interactions observe the unmount and
// do nothing. Calling Unmount more than once is safe.
func (r *Renderer) Unmount() {
	r.cancel()

	r.mu.Lock()
	m := r.m
	r.m = nil
	r.sourceReady = false
	r.readyHooks = nil
	r.mu.Unlock()

	if m != nil {
		m.Remove()
		r.log.Debug().Msg("Map removed")
	}
}
