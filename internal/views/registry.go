// Campmap - Campground Listings and Map Clustering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campmap

package views

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/campmap/internal/catalog"
	"github.com/tomtom215/campmap/internal/config"
	"github.com/tomtom215/campmap/internal/geo"
	"github.com/tomtom215/campmap/internal/logging"
	"github.com/tomtom215/campmap/internal/mapengine"
	"github.com/tomtom215/campmap/internal/mapview"
	"github.com/tomtom215/campmap/internal/metrics"
)

// Registry errors.
var (
	ErrViewNotFound = errors.New("map view not found")
	ErrTooManyViews = errors.New("too many mounted map views")
	ErrClosed       = errors.New("view registry is closed")
)

// Store is the part of the catalog the registry reads.
type Store interface {
	Search(ctx context.Context, f catalog.Filter) ([]catalog.Location, error)
	Subscribe(fn func(catalog.Event)) func()
}

// Config configures a Registry.
type Config struct {
	// Map is the base renderer configuration for every view.
	Map mapview.Config

	// Engine configures the headless maps.
	Engine mapengine.Options

	// MaxMounted caps concurrently mounted views. Zero means no limit.
	MaxMounted int

	// IdleTTL is how long a view may go without requests before Reap
	// unmounts it. Zero disables reaping.
	IdleTTL time.Duration

	// Clock defaults to time.Now.
	Clock func() time.Time
}

// ConfigFrom builds the registry configuration from the application config.
func ConfigFrom(cfg *config.Config) Config {
	mc := mapview.DefaultConfig()
	mc.APIKey = cfg.Map.APIKey
	mc.Style = cfg.Map.Style
	mc.Center = geo.LngLat{Lng: cfg.Map.CenterLng, Lat: cfg.Map.CenterLat}
	mc.Zoom = cfg.Map.Zoom
	mc.ClusterMaxZoom = cfg.Map.ClusterMaxZoom
	mc.ClusterRadius = cfg.Map.ClusterRadius
	mc.Width = cfg.Views.DefaultWidth
	mc.Height = cfg.Views.DefaultHeight

	return Config{
		Map:        mc,
		Engine:     mapengine.Options{ValidStyle: config.ValidStyle},
		MaxMounted: cfg.Views.MaxMounted,
		IdleTTL:    cfg.Views.IdleTTL,
	}
}

// MountRequest describes a view to mount. Zero sizes use the configured
// defaults and a nil Camera uses the configured initial camera.
type MountRequest struct {
	Filter catalog.Filter
	Width  int
	Height int
	Camera *mapview.Camera
}

// UpdateKind names the event behind an Update.
type UpdateKind string

// Update kinds.
const (
	UpdateSynced    UpdateKind = "synced"
	UpdateClicked   UpdateKind = "clicked"
	UpdateMoved     UpdateKind = "moved"
	UpdateFiltered  UpdateKind = "filtered"
	UpdateUnmounted UpdateKind = "unmounted"
)

// Update is pushed to subscribers whenever a view changes.
type Update struct {
	Kind    UpdateKind       `json:"kind"`
	ViewID  string           `json:"view_id"`
	State   State            `json:"state"`
	Outcome *mapview.Outcome `json:"outcome,omitempty"`
}

// Registry owns the mounted views.
type Registry struct {
	store Store
	cfg   Config
	now   func() time.Time
	log   zerolog.Logger

	mu      sync.RWMutex
	views   map[string]*View
	pending int
	closed  bool

	subMu   sync.RWMutex
	subs    map[uint64]func(Update)
	nextSub uint64

	unsubscribeStore func()
}

// NewRegistry creates a registry reading locations from store. It
// subscribes to store changes until Close.
func NewRegistry(store Store, cfg Config) *Registry {
	r := &Registry{
		store: store,
		cfg:   cfg,
		now:   cfg.Clock,
		log:   logging.WithComponent("views"),
		views: make(map[string]*View),
		subs:  make(map[uint64]func(Update)),
	}
	if r.now == nil {
		r.now = time.Now
	}
	r.unsubscribeStore = store.Subscribe(r.handleCatalogEvent)
	return r
}

// Mount creates a view. A view whose map cannot be created is still
// mounted, in the degraded state.
func (r *Registry) Mount(ctx context.Context, req MountRequest) (*View, error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, ErrClosed
	}
	if r.cfg.MaxMounted > 0 && len(r.views)+r.pending >= r.cfg.MaxMounted {
		r.mu.Unlock()
		return nil, ErrTooManyViews
	}
	// pending counts views being built so concurrent mounts respect MaxMounted.
	r.pending++
	r.mu.Unlock()

	now := r.now()
	v := &View{
		id:         uuid.New().String(),
		filter:     req.Filter,
		mountedAt:  now,
		lastActive: now,
	}

	mc := r.cfg.Map
	if req.Width > 0 {
		mc.Width = req.Width
	}
	if req.Height > 0 {
		mc.Height = req.Height
	}
	if req.Camera != nil {
		mc.Center = req.Camera.Center
		mc.Zoom = req.Camera.Zoom
	}
	mc.OnOutcome = func(_ context.Context, out mapview.Outcome) {
		metrics.RecordMapClick(out.Layer, string(out.Action), out.Reason)
	}

	engine := r.cfg.Engine
	engine.OnCreate = func(m *mapengine.Map) {
		v.m = m
	}

	v.renderer = mapview.Mount(ctx, mapengine.NewFactory(engine), mc)
	v.syncer = mapview.NewSynchronizer(v.renderer, r.locationSource(v),
		mapview.WithSyncObserver(func(ctx context.Context, res mapview.SyncResult) {
			metrics.RecordSourceSync(true, res.Features)
			v.recordSync(r.now(), res)
			r.publish(Update{Kind: UpdateSynced, ViewID: v.id, State: v.State()})
		}))

	metrics.MapViewsMounted.Inc()
	if v.renderer.Degraded() {
		metrics.MapViewsDegraded.Inc()
	}

	r.mu.Lock()
	r.pending--
	if r.closed {
		r.mu.Unlock()
		r.unmount(v)
		return nil, ErrClosed
	}
	r.views[v.id] = v
	r.mu.Unlock()

	logging.Ctx(ctx).Info().
		Str("view", v.id).
		Bool("degraded", v.renderer.Degraded()).
		Msg("Map view mounted")
	return v, nil
}

// locationSource reads the catalog with the view's filter at call time.
func (r *Registry) locationSource(v *View) mapview.LocationSource {
	return func(ctx context.Context) ([]geo.LocationRecord, error) {
		locs, err := r.store.Search(ctx, v.Filter())
		if err != nil {
			return nil, fmt.Errorf("search locations: %w", err)
		}
		return catalog.Records(locs), nil
	}
}

// Get returns the view with id.
func (r *Registry) Get(id string) (*View, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.views[id]
	if !ok {
		return nil, ErrViewNotFound
	}
	return v, nil
}

// Touch returns the view with id and marks it active.
func (r *Registry) Touch(id string) (*View, error) {
	v, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	v.touch(r.now())
	return v, nil
}

// List returns the mounted views ordered by mount time.
func (r *Registry) List() []*View {
	r.mu.RLock()
	out := make([]*View, 0, len(r.views))
	for _, v := range r.views {
		out = append(out, v)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].mountedAt.Equal(out[j].mountedAt) {
			return out[i].mountedAt.Before(out[j].mountedAt)
		}
		return out[i].id < out[j].id
	})
	return out
}

// Len returns the number of mounted views.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.views)
}

// Unmount removes the view with id and tears its map down.
func (r *Registry) Unmount(id string) error {
	r.mu.Lock()
	v, ok := r.views[id]
	if ok {
		delete(r.views, id)
	}
	r.mu.Unlock()
	if !ok {
		return ErrViewNotFound
	}

	r.unmount(v)
	r.publish(Update{Kind: UpdateUnmounted, ViewID: id, State: v.State()})
	return nil
}

func (r *Registry) unmount(v *View) {
	v.renderer.Unmount()
	metrics.MapViewsMounted.Dec()
	if v.renderer.Degraded() {
		metrics.MapViewsDegraded.Dec()
	}
	r.log.Debug().Str("view", v.id).Msg("Map view unmounted")
}

// SetFilter replaces the view's filter and resynchronizes its source.
func (r *Registry) SetFilter(ctx context.Context, id string, f catalog.Filter) (State, error) {
	v, err := r.Touch(id)
	if err != nil {
		return State{}, err
	}
	v.events.Lock()
	v.setFilter(f)
	v.syncer.Sync(ctx)
	v.events.Unlock()

	st := v.State()
	r.publish(Update{Kind: UpdateFiltered, ViewID: id, State: st})
	return st, nil
}

// Sync resynchronizes the view's source and reports whether data was applied.
func (r *Registry) Sync(ctx context.Context, id string) (bool, error) {
	v, err := r.Touch(id)
	if err != nil {
		return false, err
	}
	v.events.Lock()
	applied := v.syncer.Sync(ctx)
	v.events.Unlock()
	if !applied {
		metrics.RecordSourceSync(false, 0)
	}
	return applied, nil
}

// ClickResult reports what a click on a view did.
type ClickResult struct {
	Handlers int               `json:"handlers"`
	Outcomes []mapview.Outcome `json:"outcomes"`
	State    State             `json:"state"`
}

// Click dispatches a click at p. Clicks on a degraded view report a single
// ignored outcome.
func (r *Registry) Click(ctx context.Context, id string, p mapview.ScreenPoint) (ClickResult, error) {
	v, err := r.Touch(id)
	if err != nil {
		return ClickResult{}, err
	}

	res := ClickResult{Outcomes: []mapview.Outcome{}}
	if v.m == nil {
		res.Outcomes = append(res.Outcomes, mapview.Outcome{Action: mapview.ActionNone, Reason: mapview.ReasonDegraded})
		res.State = v.State()
		return res, nil
	}

	var mu sync.Mutex
	ctx = mapview.WithOutcomeSink(ctx, func(out mapview.Outcome) {
		mu.Lock()
		res.Outcomes = append(res.Outcomes, out)
		mu.Unlock()
	})
	v.events.Lock()
	res.Handlers = v.m.Click(ctx, p)

	mu.Lock()
	outcomes := append([]mapview.Outcome{}, res.Outcomes...)
	mu.Unlock()

	for i := range outcomes {
		v.recordOutcome(outcomes[i])
	}
	res.Outcomes = outcomes
	res.State = v.State()
	v.events.Unlock()

	for i := range outcomes {
		out := outcomes[i]
		r.publish(Update{Kind: UpdateClicked, ViewID: id, State: res.State, Outcome: &out})
	}
	if len(outcomes) == 0 {
		r.publish(Update{Kind: UpdateClicked, ViewID: id, State: res.State})
	}
	return res, nil
}

// Move eases the view's camera.
func (r *Registry) Move(ctx context.Context, id string, cam mapview.Camera) (State, error) {
	v, err := r.Touch(id)
	if err != nil {
		return State{}, err
	}
	v.events.Lock()
	err = v.renderer.MoveTo(cam)
	v.events.Unlock()
	if err != nil {
		return State{}, err
	}
	logging.Ctx(ctx).Debug().Str("view", id).Float64("zoom", cam.Zoom).Msg("Map view moved")

	st := v.State()
	r.publish(Update{Kind: UpdateMoved, ViewID: id, State: st})
	return st, nil
}

// Features renders the view.
func (r *Registry) Features(id string) (mapengine.Frame, error) {
	v, err := r.Touch(id)
	if err != nil {
		return mapengine.Frame{}, err
	}
	return v.Frame()
}

// Reap unmounts views idle for longer than the TTL and returns how many
// were removed.
func (r *Registry) Reap(now time.Time) int {
	if r.cfg.IdleTTL <= 0 {
		return 0
	}

	var idle []*View
	r.mu.Lock()
	for id, v := range r.views {
		if now.Sub(v.LastActive()) > r.cfg.IdleTTL {
			idle = append(idle, v)
			delete(r.views, id)
		}
	}
	r.mu.Unlock()

	for _, v := range idle {
		r.unmount(v)
		r.publish(Update{Kind: UpdateUnmounted, ViewID: v.id, State: v.State()})
	}
	if len(idle) > 0 {
		r.log.Info().Int("reaped", len(idle)).Dur("idle_ttl", r.cfg.IdleTTL).Msg("Idle map views unmounted")
	}
	return len(idle)
}

// Close unmounts every view and stops following catalog changes.
func (r *Registry) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	all := make([]*View, 0, len(r.views))
	for _, v := range r.views {
		all = append(all, v)
	}
	r.views = make(map[string]*View)
	r.mu.Unlock()

	r.unsubscribeStore()
	for _, v := range all {
		r.unmount(v)
	}
}

// Subscribe registers fn for view updates and returns a function removing it.
// fn must not block.
func (r *Registry) Subscribe(fn func(Update)) func() {
	r.subMu.Lock()
	id := r.nextSub
	r.nextSub++
	r.subs[id] = fn
	r.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.subMu.Lock()
			delete(r.subs, id)
			r.subMu.Unlock()
		})
	}
}

func (r *Registry) publish(u Update) {
	r.subMu.RLock()
	fns := make([]func(Update), 0, len(r.subs))
	for _, fn := range r.subs {
		fns = append(fns, fn)
	}
	r.subMu.RUnlock()

	for _, fn := range fns {
		fn(u)
	}
}

// handleCatalogEvent resynchronizes every view after a catalog change.
func (r *Registry) handleCatalogEvent(ev catalog.Event) {
	ctx := logging.ContextWithNewCorrelationID(context.Background())
	views := r.List()
	applied := 0
	for _, v := range views {
		v.events.Lock()
		ok := v.syncer.Sync(ctx)
		v.events.Unlock()
		if ok {
			applied++
		} else {
			metrics.RecordSourceSync(false, 0)
		}
	}
	logging.Ctx(ctx).Debug().
		Str("event", string(ev.Kind)).
		Str("location", ev.ID).
		Int("views", len(views)).
		Int("synced", applied).
		Msg("Map views resynchronized after catalog change")
}
