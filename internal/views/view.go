// Campmap - Campground Listings and Map Clustering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campmap

package views

import (
	"sync"
	"time"

	"github.com/tomtom215/campmap/internal/catalog"
	"github.com/tomtom215/campmap/internal/mapengine"
	"github.com/tomtom215/campmap/internal/mapview"
)

// View is one mounted map.
type View struct {
	id        string
	mountedAt time.Time

	// Set once during Mount. m is nil for degraded views.
	renderer *mapview.Renderer
	syncer   *mapview.Synchronizer
	m        *mapengine.Map

	// events serializes clicks, camera moves and syncs on this view.
	events sync.Mutex

	mu          sync.Mutex
	filter      catalog.Filter
	lastActive  time.Time
	lastSync    time.Time
	syncs       int
	features    int
	skipped     []string
	lastOutcome *mapview.Outcome
}

// State is a snapshot of a view.
type State struct {
	ID          string           `json:"id"`
	Query       string           `json:"query,omitempty"`
	Categories  []string         `json:"categories,omitempty"`
	Degraded    bool             `json:"degraded"`
	Error       string           `json:"error,omitempty"`
	Ready       bool             `json:"ready"`
	Unmounted   bool             `json:"unmounted"`
	Camera      *mapview.Camera  `json:"camera,omitempty"`
	Popups      []mapview.Popup  `json:"popups"`
	Features    int              `json:"features"`
	Skipped     []string         `json:"skipped,omitempty"`
	Syncs       int              `json:"syncs"`
	LastSync    *time.Time       `json:"last_sync,omitempty"`
	LastOutcome *mapview.Outcome `json:"last_outcome,omitempty"`
	MountedAt   time.Time        `json:"mounted_at"`
	LastActive  time.Time        `json:"last_active"`
}

// ID returns the view id.
func (v *View) ID() string {
	return v.id
}

// Degraded reports whether the view's map failed to initialize.
func (v *View) Degraded() bool {
	return v.renderer.Degraded()
}

// Filter returns the current filter.
func (v *View) Filter() catalog.Filter {
	v.mu.Lock()
	defer v.mu.Unlock()
	f := v.filter
	f.Categories = append([]string(nil), v.filter.Categories...)
	return f
}

// LastActive returns when the view last served a request.
func (v *View) LastActive() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastActive
}

// Frame renders the view. Degraded views fail with mapview.ErrDegraded.
func (v *View) Frame() (mapengine.Frame, error) {
	if v.m == nil {
		if err := v.renderer.Err(); err != nil {
			return mapengine.Frame{}, err
		}
		return mapengine.Frame{}, mapview.ErrDegraded
	}
	select {
	case <-v.renderer.Done():
		return mapengine.Frame{}, mapview.ErrUnmounted
	default:
	}
	return v.m.Render(), nil
}

// State returns a snapshot of the view.
func (v *View) State() State {
	st := State{
		ID:        v.id,
		Degraded:  v.renderer.Degraded(),
		Ready:     v.renderer.Ready(),
		Popups:    []mapview.Popup{},
		MountedAt: v.mountedAt,
	}
	if err := v.renderer.Err(); err != nil {
		st.Error = err.Error()
	}
	select {
	case <-v.renderer.Done():
		st.Unmounted = true
	default:
	}
	if cam, ok := v.renderer.Camera(); ok {
		st.Camera = &cam
	}
	if v.m != nil && !st.Unmounted {
		st.Popups = append(st.Popups, v.m.Popups()...)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	st.Query = v.filter.Query
	st.Categories = append([]string(nil), v.filter.Categories...)
	st.Features = v.features
	st.Skipped = append([]string(nil), v.skipped...)
	st.Syncs = v.syncs
	if !v.lastSync.IsZero() {
		t := v.lastSync
		st.LastSync = &t
	}
	if v.lastOutcome != nil {
		out := *v.lastOutcome
		st.LastOutcome = &out
	}
	st.LastActive = v.lastActive
	return st
}

func (v *View) touch(now time.Time) {
	v.mu.Lock()
	v.lastActive = now
	v.mu.Unlock()
}

func (v *View) setFilter(f catalog.Filter) {
	v.mu.Lock()
	v.filter = f
	v.filter.Page = 0
	v.mu.Unlock()
}

func (v *View) recordSync(now time.Time, res mapview.SyncResult) {
	v.mu.Lock()
	v.lastSync = now
	v.syncs++
	v.features = res.Features
	v.skipped = res.Skipped
	v.mu.Unlock()
}

func (v *View) recordOutcome(out mapview.Outcome) {
	v.mu.Lock()
	v.lastOutcome = &out
	v.mu.Unlock()
}
