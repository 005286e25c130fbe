// Campmap - Campground Listings and Map Clustering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campmap

package services

import (
	"context"
)

// Broadcaster is satisfied by *api.Handler. StartBroadcasts subscribes to
// view and catalog events and returns the function that unsubscribes.
type Broadcaster interface {
	StartBroadcasts() (stop func())
}

// BroadcastService keeps the view and catalog subscriptions that feed the
// WebSocket hub alive for the lifetime of the tree.
type BroadcastService struct {
	broadcaster Broadcaster
	name        string
}

// NewBroadcastService wraps b.
func NewBroadcastService(b Broadcaster) *BroadcastService {
	return &BroadcastService{
		broadcaster: b,
		name:        "view-broadcasts",
	}
}

// Serve subscribes, blocks until ctx is canceled, then unsubscribes.
func (s *BroadcastService) Serve(ctx context.Context) error {
	stop := s.broadcaster.StartBroadcasts()
	<-ctx.Done()
	stop()
	return ctx.Err()
}

// String names the service in supervisor events.
func (s *BroadcastService) String() string {
	return s.name
}
