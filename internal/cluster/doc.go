// Campmap - Campground Listings and Map Clustering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campmap

/*
Package cluster implements hierarchical point clustering for map sources.

Points are projected into Web Mercator unit space and merged zoom by zoom,
from MaxZoom down to MinZoom, into clusters of neighbours lying within
Radius pixels of a tile Extent. A static KD index is kept per zoom level so
that viewport queries, child lookups and expansion-zoom resolution are cheap.

Cluster features carry the properties map renderers expect:

	cluster                  true
	cluster_id               identifier usable with Children, Leaves, ExpansionZoom
	point_count              number of points in the cluster
	point_count_abbreviated  "3", "1.2k", "15k"

Usage:

	idx := cluster.New(cluster.DefaultOptions()).Load(fc)
	features := idx.Clusters(orb.Bound{Min: orb.Point{-125, 25}, Max: orb.Point{-65, 50}}, 4)
	zoom, err := idx.ExpansionZoom(clusterID)

An Index is immutable once Load returns and may be queried concurrently.
*/
package cluster
