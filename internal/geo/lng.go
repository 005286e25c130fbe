// Campmap - Campground Listings and Map Clustering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campmap

package geo

import (
	"math"

	"github.com/paulmach/orb"
)

// maxWrapInput bounds the longitudes WrapNear will adjust; NaN, infinities and
// absurd magnitudes are returned unchanged.
const maxWrapInput = 1e9

// WrapNear shifts lng by multiples of 360 until it lies within 180 degrees of ref.
// A point straddling the antimeridian is thereby anchored on the world copy
// the user clicked.
func WrapNear(lng, ref float64) float64 {
	if !(math.Abs(lng) < maxWrapInput && math.Abs(ref) < maxWrapInput) {
		return lng
	}
	if d := ref - lng; math.Abs(d) > 360 {
		lng += 360 * math.Trunc(d/360)
	}
	for math.Abs(ref-lng) > 180 {
		if ref > lng {
			lng += 360
		} else {
			lng -= 360
		}
	}
	return lng
}

// NormalizeLng maps any longitude into [-180, 180).
func NormalizeLng(lng float64) float64 {
	return math.Mod(math.Mod(lng+180, 360)+360, 360) - 180
}

// ClampLat limits lat to the given absolute bound.
func ClampLat(lat, limit float64) float64 {
	return math.Max(-limit, math.Min(limit, lat))
}

// Bound returns the bounding box of points, or an empty bound at the origin
// when there are none.
func Bound(points []LocationPoint) orb.Bound {
	if len(points) == 0 {
		return orb.Bound{}
	}
	b := points[0].Coordinates.Point().Bound()
	for _, p := range points[1:] {
		b = b.Extend(p.Coordinates.Point())
	}
	return b
}
