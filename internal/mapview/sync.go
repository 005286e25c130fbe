// Campmap - Campground Listings and Map Clustering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campmap

package mapview

import (
	"context"
	"errors"
	"sync"

	"github.com/tomtom215/campmap/internal/geo"
	"github.com/tomtom215/campmap/internal/logging"
)

// LocationSource returns the current location list. It is called on every
// sync so that a sync never uses a list captured earlier.
type LocationSource func(ctx context.Context) ([]geo.LocationRecord, error)

// SyncResult describes a completed sync.
type SyncResult struct {
	Features int
	Skipped  []string
}

// Synchronizer keeps the clustered source in step with the location list.
type Synchronizer struct {
	r      *Renderer
	source LocationSource

	onSync func(ctx context.Context, res SyncResult)

	// mu orders syncs so that a later sync always reads a later list.
	mu sync.Mutex
}

// SyncOption configures a Synchronizer.
type SyncOption func(*Synchronizer)

// WithSyncObserver registers fn to observe every applied sync.
func WithSyncObserver(fn func(ctx context.Context, res SyncResult)) SyncOption {
	return func(s *Synchronizer) {
		s.onSync = fn
	}
}

// NewSynchronizer binds source to r. The first sync runs as soon as the map
// has loaded, or right away if it already has.
func NewSynchronizer(r *Renderer, source LocationSource, opts ...SyncOption) *Synchronizer {
	s := &Synchronizer{r: r, source: source}
	for _, opt := range opts {
		opt(s)
	}
	r.whenReady(func(ctx context.Context) {
		s.Sync(ctx)
	})
	return s
}

// Sync replaces the source's data with the current list. It does nothing
// and returns false while the map is not ready; the next sync reads the list
// afresh, so nothing is lost.
func (s *Synchronizer) Sync(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.r.Ready() {
		logging.Ctx(ctx).Debug().Msg("Map not ready, location sync dropped")
		return false
	}

	records, err := s.source(ctx)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Failed to read locations for map sync")
		return false
	}

	fc, report := geo.ToFeatureCollection(records)
	if len(report.Skipped) > 0 {
		logging.Ctx(ctx).Debug().Strs("location_ids", report.Skipped).Msg("Locations without coordinates left off the map")
	}

	err = s.r.withMap(func(m Map) error {
		src, ok := m.Source(SourceID)
		if !ok {
			return ErrNotReady
		}
		return src.SetData(fc)
	})
	if err != nil {
		if !errors.Is(err, ErrNotReady) && !errors.Is(err, ErrUnmounted) {
			logging.Ctx(ctx).Warn().Err(err).Msg("Failed to replace map source data")
		}
		return false
	}

	if s.onSync != nil {
		s.onSync(ctx, SyncResult{Features: len(fc.Features), Skipped: report.Skipped})
	}
	return true
}
