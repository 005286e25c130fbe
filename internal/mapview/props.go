// Campmap - Campground Listings and Map Clustering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campmap

package mapview

import (
	"math"
	"strconv"

	"github.com/paulmach/orb/geojson"
)

// number converts a numeric property value. Values decoded from JSON are
// float64; values set in-process may be any integer type.
func number(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

// ClusterID returns the integral cluster_id property of a cluster feature.
func ClusterID(props geojson.Properties) (int, bool) {
	v, ok := number(props[PropClusterID])
	if !ok || math.IsNaN(v) || v != math.Trunc(v) || v < 0 || v >= 1<<53 {
		return 0, false
	}
	return int(v), true
}

func formatValue(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	}
	if n, ok := number(v); ok {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return ""
}
