// Campmap - Campground Listings and Map Clustering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campmap

package services

import (
	"context"
	"time"

	"github.com/tomtom215/campmap/internal/logging"
)

// GCDiscardRatio is the fraction of stale data a value log file needs
// before Badger rewrites it.
const GCDiscardRatio = 0.5

// GarbageCollector is satisfied by *catalog.Catalog.
type GarbageCollector interface {
	CollectGarbage(ctx context.Context, discardRatio float64) (int, error)
}

// CatalogGCService runs Badger value log GC on the catalog at a fixed
// interval. GC errors are logged and retried on the next tick.
type CatalogGCService struct {
	gc       GarbageCollector
	interval time.Duration
	name     string
}

// NewCatalogGCService wraps gc. interval must be positive.
func NewCatalogGCService(gc GarbageCollector, interval time.Duration) *CatalogGCService {
	return &CatalogGCService{
		gc:       gc,
		interval: interval,
		name:     "catalog-gc",
	}
}

// Serve collects once per interval until ctx is canceled.
func (s *CatalogGCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.collect(ctx)
		}
	}
}

func (s *CatalogGCService) collect(ctx context.Context) {
	start := time.Now()
	rewrites, err := s.gc.CollectGarbage(ctx, GCDiscardRatio)
	if err != nil {
		if ctx.Err() == nil {
			logging.Warn().Err(err).Msg("Catalog value log GC failed")
		}
		return
	}
	if rewrites > 0 {
		logging.Info().
			Int("rewrites", rewrites).
			Dur("duration", time.Since(start)).
			Msg("Catalog value log GC completed")
	}
}

// String names the service in supervisor events.
func (s *CatalogGCService) String() string {
	return s.name
}
