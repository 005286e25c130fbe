// Campmap - Campground Listings and Map Clustering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campmap

package mapview

import (
	"context"
	"errors"

	"github.com/paulmach/orb"

	"github.com/tomtom215/campmap/internal/geo"
	"github.com/tomtom215/campmap/internal/logging"
)

// Interaction handles clicks on the cluster and unclustered-point layers.
type Interaction struct {
	r *Renderer
}

// abortError carries the reason an interaction stopped early.
type abortError struct{ reason string }

func (e abortError) Error() string { return e.reason }

// reasonFor maps renderer state errors and aborts to outcome reasons.
func reasonFor(err error) string {
	var abort abortError
	switch {
	case errors.As(err, &abort):
		return abort.reason
	case errors.Is(err, ErrDegraded):
		return ReasonDegraded
	case errors.Is(err, ErrUnmounted):
		return ReasonUnmounted
	default:
		return ReasonNotReady
	}
}

// ClusterClick eases the camera onto the clicked cluster at the zoom where it
// splits into its children. The topmost cluster feature under the pointer
// must carry a cluster_id and Point geometry.
func (ix *Interaction) ClusterClick(ctx context.Context, ev ClickEvent) Outcome {
	var (
		clusterID int
		center    orb.Point
		source    GeoJSONSource
	)

	err := ix.r.withMap(func(m Map) error {
		features := m.QueryRenderedFeatures(ev.Point, LayerClusters)
		if len(features) == 0 || features[0] == nil {
			return abortError{ReasonNoFeature}
		}
		f := features[0]

		id, ok := ClusterID(f.Properties)
		if !ok {
			return abortError{ReasonNoClusterID}
		}
		p, ok := f.Geometry.(orb.Point)
		if !ok {
			return abortError{ReasonNotPoint}
		}
		src, ok := m.Source(SourceID)
		if !ok {
			return abortError{ReasonNotReady}
		}

		clusterID, center, source = id, p, src
		return nil
	})
	if err != nil {
		return ix.ignore(ctx, LayerClusters, reasonFor(err), err)
	}

	zoom, err := ix.expansionZoom(ctx, source, clusterID)
	if err != nil {
		if ix.r.ctx.Err() != nil {
			return ix.ignore(ctx, LayerClusters, ReasonUnmounted, err)
		}
		logging.Ctx(ctx).Warn().Err(err).Int("cluster_id", clusterID).Msg("Cluster expansion zoom failed")
		return ignored(LayerClusters, ReasonExpansionFailed)
	}

	cam := Camera{Center: geo.FromPoint(center), Zoom: float64(zoom)}
	err = ix.r.withMap(func(m Map) error {
		m.EaseTo(cam)
		return nil
	})
	if err != nil {
		return ix.ignore(ctx, LayerClusters, reasonFor(err), err)
	}

	logging.Ctx(ctx).Debug().
		Int("cluster_id", clusterID).
		Float64("zoom", cam.Zoom).
		Msg("Cluster expanded")
	return Outcome{Layer: LayerClusters, Action: ActionEase, Camera: &cam}
}

// expansionZoom resolves the cluster's expansion zoom without holding the
// view lock. The call is abandoned if the view is unmounted first.
func (ix *Interaction) expansionZoom(ctx context.Context, source GeoJSONSource, clusterID int) (int, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(ix.r.ctx, cancel)
	defer stop()

	return source.ClusterExpansionZoom(ctx, clusterID)
}

// PointClick opens a popup for the clicked location. The first feature of
// the event must carry popup metadata and Point geometry. The popup is
// anchored on the world copy nearest the click.
func (ix *Interaction) PointClick(ctx context.Context, ev ClickEvent) Outcome {
	if len(ev.Features) == 0 || ev.Features[0] == nil {
		return ix.ignore(ctx, LayerUnclustered, ReasonNoFeature, nil)
	}
	f := ev.Features[0]

	p, ok := f.Geometry.(orb.Point)
	if !ok {
		return ix.ignore(ctx, LayerUnclustered, ReasonNotPoint, nil)
	}

	data, err := geo.DecodePopup(f.Properties)
	if err != nil {
		reason := ReasonBadMetadata
		if errors.Is(err, geo.ErrPopupMissing) {
			reason = ReasonNoMetadata
		}
		return ix.ignore(ctx, LayerUnclustered, reason, err)
	}

	popup := Popup{
		LngLat: geo.LngLat{Lng: geo.WrapNear(p.Lon(), ev.LngLat.Lng), Lat: p.Lat()},
		HTML:   geo.PopupHTML(data),
	}
	err = ix.r.withMap(func(m Map) error {
		m.AddPopup(popup)
		return nil
	})
	if err != nil {
		return ix.ignore(ctx, LayerUnclustered, reasonFor(err), err)
	}

	logging.Ctx(ctx).Debug().Str("location_id", data.ID).Msg("Popup opened")
	return Outcome{Layer: LayerUnclustered, Action: ActionPopup, Popup: &popup}
}

func (ix *Interaction) ignore(ctx context.Context, layer, reason string, err error) Outcome {
	evt := logging.Ctx(ctx).Debug().Str("layer", layer).Str("reason", reason)
	if err != nil {
		evt = evt.Err(err)
	}
	evt.Msg("Map click ignored")
	return ignored(layer, reason)
}
