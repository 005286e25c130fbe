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

// DefaultReapInterval is used when the configured interval is not positive.
const DefaultReapInterval = time.Minute

// Reaper is satisfied by *views.Registry.
type Reaper interface {
	Reap(now time.Time) int
}

// ViewReaperService periodically unmounts map views nobody has touched
// within the registry's idle TTL.
type ViewReaperService struct {
	reaper   Reaper
	interval time.Duration
	now      func() time.Time
	name     string
}

// NewViewReaperService wraps r.
func NewViewReaperService(r Reaper, interval time.Duration) *ViewReaperService {
	if interval <= 0 {
		interval = DefaultReapInterval
	}
	return &ViewReaperService{
		reaper:   r,
		interval: interval,
		now:      time.Now,
		name:     "view-reaper",
	}
}

// Serve reaps once per interval until ctx is canceled.
func (s *ViewReaperService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	logging.Debug().Dur("interval", s.interval).Msg("View reaper started")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.reaper.Reap(s.now())
		}
	}
}

// String names the service in supervisor events.
func (s *ViewReaperService) String() string {
	return s.name
}
