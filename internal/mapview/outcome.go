// Campmap - Campground Listings and Map Clustering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campmap

package mapview

import "context"

// Action is the visible effect of a click.
type Action string

// Click actions.
const (
	ActionNone  Action = "none"
	ActionEase  Action = "ease"
	ActionPopup Action = "popup"
)

// Reasons a click was ignored.
const (
	ReasonNoFeature       = "no_feature"
	ReasonNoClusterID     = "no_cluster_id"
	ReasonNotPoint        = "not_point_geometry"
	ReasonNoMetadata      = "no_metadata"
	ReasonBadMetadata     = "malformed_metadata"
	ReasonExpansionFailed = "expansion_zoom_failed"
	ReasonNotReady        = "map_not_ready"
	ReasonUnmounted       = "unmounted"
	ReasonDegraded        = "degraded"
)

// Outcome reports what a click did. Camera is set for ActionEase and Popup
// for ActionPopup; Reason is set for ActionNone.
type Outcome struct {
	Layer  string  `json:"layer"`
	Action Action  `json:"action"`
	Reason string  `json:"reason,omitempty"`
	Camera *Camera `json:"camera,omitempty"`
	Popup  *Popup  `json:"popup,omitempty"`
}

func ignored(layer, reason string) Outcome {
	return Outcome{Layer: layer, Action: ActionNone, Reason: reason}
}

// OutcomeSink receives the outcome of a click dispatched under a context.
type OutcomeSink func(Outcome)

type sinkKey struct{}

// WithOutcomeSink returns ctx carrying sink. Click handlers wired by the
// Renderer report their outcome to it, letting the code that dispatched a
// click observe what happened without sharing state between clicks.
func WithOutcomeSink(ctx context.Context, sink OutcomeSink) context.Context {
	return context.WithValue(ctx, sinkKey{}, sink)
}

func outcomeSinkFrom(ctx context.Context) OutcomeSink {
	if sink, ok := ctx.Value(sinkKey{}).(OutcomeSink); ok {
		return sink
	}
	return nil
}
