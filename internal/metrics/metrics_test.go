// Campmap - Campground Listings and Map Clustering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campmap

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/locations", "200"))

	RecordAPIRequest("GET", "/api/v1/locations", "200", 15*time.Millisecond)

	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/locations", "200"))
	if after != before+1 {
		t.Errorf("requests counter = %v, want %v", after, before+1)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)

	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != before+1 {
		t.Errorf("active requests = %v, want %v", got, before+1)
	}
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Errorf("active requests = %v, want %v", got, before)
	}
}

func TestRecordMapClick(t *testing.T) {
	c := MapClicks.WithLabelValues("clusters", "none", "no_feature")
	before := testutil.ToFloat64(c)

	RecordMapClick("clusters", "none", "no_feature")

	if got := testutil.ToFloat64(c); got != before+1 {
		t.Errorf("clicks = %v, want %v", got, before+1)
	}
}

func TestRecordSourceSync(t *testing.T) {
	applied := MapSourceSyncs.WithLabelValues("applied")
	dropped := MapSourceSyncs.WithLabelValues("dropped")
	a0, d0 := testutil.ToFloat64(applied), testutil.ToFloat64(dropped)

	RecordSourceSync(true, 42)
	RecordSourceSync(false, 0)
	RecordSourceSync(false, 0)

	if got := testutil.ToFloat64(applied); got != a0+1 {
		t.Errorf("applied = %v, want %v", got, a0+1)
	}
	if got := testutil.ToFloat64(dropped); got != d0+2 {
		t.Errorf("dropped = %v, want %v", got, d0+2)
	}
}

func TestRecordCatalogOperation(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		result string
	}{
		{"success", nil, "success"},
		{"failure", errors.New("boom"), "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := CatalogOperations.WithLabelValues("create", tt.result)
			before := testutil.ToFloat64(c)
			RecordCatalogOperation("create", tt.err)
			if got := testutil.ToFloat64(c); got != before+1 {
				t.Errorf("%s counter = %v, want %v", tt.result, got, before+1)
			}
		})
	}
}

func TestRecordGeocode(t *testing.T) {
	c := GeocoderRequests.WithLabelValues("static", "no_results")
	before := testutil.ToFloat64(c)

	RecordGeocode("static", "no_results", time.Millisecond)

	if got := testutil.ToFloat64(c); got != before+1 {
		t.Errorf("geocoder counter = %v, want %v", got, before+1)
	}
}
