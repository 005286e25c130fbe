// Campmap - Campground Listings and Map Clustering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campmap

package mapview

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/tomtom215/campmap/internal/geo"
)

func clusterFeature(id int, lng, lat float64) *geojson.Feature {
	f := geojson.NewFeature(orb.Point{lng, lat})
	f.Properties["cluster"] = true
	f.Properties[PropClusterID] = id
	f.Properties[PropPointCount] = 12
	return f
}

func fixedExpansion(zoom int) func(context.Context, int) (int, error) {
	return func(context.Context, int) (int, error) { return zoom, nil }
}

func TestClusterClick_EasesToExpansionZoom(t *testing.T) {
	t.Parallel()

	r, m := mountLoaded(t)
	m.setRendered(LayerClusters, clusterFeature(1234, -105.27, 40.02))

	var gotID int
	m.locations(t).setExpansion(func(_ context.Context, id int) (int, error) {
		gotID = id
		return 9, nil
	})

	out := r.Interaction().ClusterClick(context.Background(), ClickEvent{Point: ScreenPoint{X: 100, Y: 100}})

	if out.Action != ActionEase {
		t.Fatalf("Action = %s (%s), want ease", out.Action, out.Reason)
	}
	if gotID != 1234 {
		t.Errorf("expansion resolved for cluster %d, want 1234", gotID)
	}
	want := Camera{Center: geo.LngLat{Lng: -105.27, Lat: 40.02}, Zoom: 9}
	if out.Camera == nil || *out.Camera != want {
		t.Errorf("outcome camera = %+v, want %+v", out.Camera, want)
	}
	eases, popups := m.snapshot()
	if len(eases) != 1 || eases[0] != want {
		t.Errorf("eases = %+v, want [%+v]", eases, want)
	}
	if len(popups) != 0 {
		t.Errorf("popups = %+v, want none", popups)
	}
}

func TestClusterClick_FloatClusterID(t *testing.T) {
	t.Parallel()

	r, m := mountLoaded(t)
	f := clusterFeature(0, 10, 20)
	f.Properties[PropClusterID] = float64(77)
	m.setRendered(LayerClusters, f)
	m.locations(t).setExpansion(fixedExpansion(4))

	if out := r.Interaction().ClusterClick(context.Background(), ClickEvent{}); out.Action != ActionEase {
		t.Errorf("Action = %s (%s), want ease", out.Action, out.Reason)
	}
}

func TestClusterClick_Aborts(t *testing.T) {
	t.Parallel()

	noID := clusterFeature(1, 0, 0)
	delete(noID.Properties, PropClusterID)
	line := clusterFeature(1, 0, 0)
	line.Geometry = orb.LineString{{0, 0}, {1, 1}}

	tests := []struct {
		name      string
		rendered  []*geojson.Feature
		expansion func(context.Context, int) (int, error)
		reason    string
	}{
		{"no feature at point", nil, fixedExpansion(5), ReasonNoFeature},
		{"missing cluster id", []*geojson.Feature{noID}, fixedExpansion(5), ReasonNoClusterID},
		{"non-point geometry", []*geojson.Feature{line}, fixedExpansion(5), ReasonNotPoint},
		{
			"expansion failure",
			[]*geojson.Feature{clusterFeature(1, 0, 0)},
			func(context.Context, int) (int, error) { return 0, errors.New("network down") },
			ReasonExpansionFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r, m := mountLoaded(t)
			m.setRendered(LayerClusters, tt.rendered...)
			m.locations(t).setExpansion(tt.expansion)
			before := m.Camera()

			out := r.Interaction().ClusterClick(context.Background(), ClickEvent{})

			if out.Action != ActionNone || out.Reason != tt.reason {
				t.Errorf("outcome = %+v, want none/%s", out, tt.reason)
			}
			eases, popups := m.snapshot()
			if len(eases) != 0 || len(popups) != 0 {
				t.Errorf("view changed: eases=%v popups=%v", eases, popups)
			}
			if m.Camera() != before {
				t.Errorf("camera changed to %+v", m.Camera())
			}
		})
	}
}

func TestClusterClick_UnmountDuringExpansion(t *testing.T) {
	t.Parallel()

	t.Run("resolution abandoned", func(t *testing.T) {
		t.Parallel()

		r, m := mountLoaded(t)
		m.setRendered(LayerClusters, clusterFeature(1, 0, 0))
		started := make(chan struct{})
		m.locations(t).setExpansion(func(ctx context.Context, _ int) (int, error) {
			close(started)
			<-ctx.Done()
			return 0, ctx.Err()
		})

		done := make(chan Outcome, 1)
		go func() { done <- r.Interaction().ClusterClick(context.Background(), ClickEvent{}) }()

		<-started
		r.Unmount()

		select {
		case out := <-done:
			if out.Action != ActionNone || out.Reason != ReasonUnmounted {
				t.Errorf("outcome = %+v, want unmounted no-op", out)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("cluster click did not observe unmount")
		}
		if eases, _ := m.snapshot(); len(eases) != 0 {
			t.Errorf("eased an unmounted view: %v", eases)
		}
	})

	t.Run("late resolution ignored", func(t *testing.T) {
		t.Parallel()

		r, m := mountLoaded(t)
		m.setRendered(LayerClusters, clusterFeature(1, 0, 0))
		started := make(chan struct{})
		release := make(chan struct{})
		m.locations(t).setExpansion(func(context.Context, int) (int, error) {
			close(started)
			<-release
			return 8, nil
		})

		done := make(chan Outcome, 1)
		go func() { done <- r.Interaction().ClusterClick(context.Background(), ClickEvent{}) }()

		<-started
		r.Unmount()
		close(release)

		out := <-done
		if out.Action != ActionNone || out.Reason != ReasonUnmounted {
			t.Errorf("outcome = %+v, want unmounted no-op", out)
		}
		if eases, _ := m.snapshot(); len(eases) != 0 {
			t.Errorf("eased an unmounted view: %v", eases)
		}
	})
}

func TestClusterClick_LockReleasedDuringExpansion(t *testing.T) {
	t.Parallel()

	r, m := mountLoaded(t)
	m.setRendered(LayerClusters, clusterFeature(1, 0, 0))
	started := make(chan struct{})
	release := make(chan struct{})
	m.locations(t).setExpansion(func(context.Context, int) (int, error) {
		close(started)
		<-release
		return 6, nil
	})

	done := make(chan Outcome, 1)
	go func() { done <- r.Interaction().ClusterClick(context.Background(), ClickEvent{}) }()
	<-started

	// Other work on the view proceeds while the resolution is pending.
	if !r.Ready() {
		t.Error("view not usable while expansion pending")
	}
	close(release)

	if out := <-done; out.Action != ActionEase {
		t.Errorf("outcome = %+v, want ease", out)
	}
}

func pointFeature(id, title, label string, lng, lat float64) *geojson.Feature {
	return geo.NewPointFeature(geo.LocationPoint{
		ID:            id,
		Title:         title,
		LocationLabel: label,
		Coordinates:   geo.LngLat{Lng: lng, Lat: lat},
	})
}

func TestPointClick_OpensPopup(t *testing.T) {
	t.Parallel()

	r, m := mountLoaded(t)
	f := pointFeature("1", "Pine Ridge", "Boulder, CO", -105.27, 40.02)

	out := r.Interaction().PointClick(context.Background(), ClickEvent{
		LngLat:   geo.LngLat{Lng: -105.26, Lat: 40.03},
		Features: []*geojson.Feature{f},
	})

	if out.Action != ActionPopup || out.Popup == nil {
		t.Fatalf("outcome = %+v, want popup", out)
	}
	_, popups := m.snapshot()
	if len(popups) != 1 {
		t.Fatalf("len(popups) = %d, want 1", len(popups))
	}
	p := popups[0]
	if p.LngLat != (geo.LngLat{Lng: -105.27, Lat: 40.02}) {
		t.Errorf("popup anchor = %+v", p.LngLat)
	}
	if p.HTML != `<h5><a href="/location/1">Pine Ridge</a></h5><span>Boulder, CO</span>` {
		t.Errorf("popup HTML = %s", p.HTML)
	}
}

func TestPointClick_WrapCorrection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		featureLng float64
		clickLng   float64
		wantLng    float64
	}{
		{"click east of antimeridian", -179.5, 179.8, 180.5},
		{"click west of antimeridian", 179.5, -179.8, -180.5},
		{"click on next world copy", 10, 369, 370},
		{"click two copies west", -20, -740, -740},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r, m := mountLoaded(t)
			out := r.Interaction().PointClick(context.Background(), ClickEvent{
				LngLat:   geo.LngLat{Lng: tt.clickLng, Lat: 0},
				Features: []*geojson.Feature{pointFeature("x", "X", "Y", tt.featureLng, 0)},
			})
			if out.Action != ActionPopup {
				t.Fatalf("outcome = %+v, want popup", out)
			}
			_, popups := m.snapshot()
			got := popups[0].LngLat.Lng
			if math.Abs(got-tt.wantLng) > 1e-9 {
				t.Errorf("anchor lng = %v, want %v", got, tt.wantLng)
			}
			if math.Abs(got-tt.clickLng) > 180 {
				t.Errorf("anchor lng %v more than 180 from click %v", got, tt.clickLng)
			}
		})
	}
}

func TestPointClick_Aborts(t *testing.T) {
	t.Parallel()

	noMeta := geojson.NewFeature(orb.Point{1, 1})
	badMeta := geojson.NewFeature(orb.Point{1, 1})
	badMeta.Properties[geo.PopupProperty] = "{oops"
	line := pointFeature("1", "A", "B", 0, 0)
	line.Geometry = orb.LineString{{0, 0}, {1, 1}}

	tests := []struct {
		name     string
		features []*geojson.Feature
		reason   string
	}{
		{"no features", nil, ReasonNoFeature},
		{"missing metadata", []*geojson.Feature{noMeta}, ReasonNoMetadata},
		{"malformed metadata", []*geojson.Feature{badMeta}, ReasonBadMetadata},
		{"non-point geometry", []*geojson.Feature{line}, ReasonNotPoint},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r, m := mountLoaded(t)
			out := r.Interaction().PointClick(context.Background(), ClickEvent{Features: tt.features})
			if out.Action != ActionNone || out.Reason != tt.reason {
				t.Errorf("outcome = %+v, want none/%s", out, tt.reason)
			}
			if _, popups := m.snapshot(); len(popups) != 0 {
				t.Errorf("popups = %v, want none", popups)
			}
		})
	}
}

func TestPointClick_AfterUnmount(t *testing.T) {
	t.Parallel()

	r, m := mountLoaded(t)
	r.Unmount()

	out := r.Interaction().PointClick(context.Background(), ClickEvent{
		Features: []*geojson.Feature{pointFeature("1", "A", "B", 0, 0)},
	})
	if out.Reason != ReasonUnmounted {
		t.Errorf("outcome = %+v, want unmounted", out)
	}
	if _, popups := m.snapshot(); len(popups) != 0 {
		t.Error("popup added to unmounted map")
	}
}

func TestClickHandlers_ReportOutcome(t *testing.T) {
	t.Parallel()

	var observed []Outcome
	factory, get, _ := fakeFactory(t)
	cfg := DefaultConfig()
	cfg.OnOutcome = func(_ context.Context, out Outcome) { observed = append(observed, out) }
	r := Mount(context.Background(), factory, cfg)
	defer r.Unmount()
	m := get()
	m.finishLoad()

	var sunk Outcome
	ctx := WithOutcomeSink(context.Background(), func(out Outcome) { sunk = out })

	m.click(ctx, LayerUnclustered, ClickEvent{
		Features: []*geojson.Feature{pointFeature("9", "Nine", "Here", 5, 5)},
	})

	if sunk.Layer != LayerUnclustered || sunk.Action != ActionPopup {
		t.Errorf("sink outcome = %+v", sunk)
	}
	if len(observed) != 1 || observed[0].Layer != LayerUnclustered {
		t.Errorf("observed = %+v", observed)
	}
	if !strings.Contains(sunk.Popup.HTML, "/location/9") {
		t.Errorf("popup HTML = %s", sunk.Popup.HTML)
	}

	m.click(ctx, LayerClusters, ClickEvent{})
	if sunk.Layer != LayerClusters || sunk.Reason != ReasonNoFeature {
		t.Errorf("sink outcome = %+v", sunk)
	}
}
