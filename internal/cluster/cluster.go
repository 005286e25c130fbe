// Campmap - Campground Listings and Map Clustering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campmap

package cluster

import (
	"errors"
	"math"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ErrClusterNotFound is returned for ids that do not name a cluster in the index.
var ErrClusterNotFound = errors.New("no cluster with the specified id")

// Cluster feature property names.
const (
	PropCluster         = "cluster"
	PropClusterID       = "cluster_id"
	PropPointCount      = "point_count"
	PropPointCountAbbrv = "point_count_abbreviated"
)

// unclustered marks a node not yet merged at any zoom.
const unclustered = math.MaxInt

// node is a point or cluster at one zoom level, in projected unit space.
type node struct {
	x, y      float64
	zoom      int // last zoom at which this node was processed
	id        int // point index for points, cluster id for clusters
	parentID  int // cluster id this node was merged into, or -1
	numPoints int // 0 for original points
	isCluster bool
}

func (n *node) count() int {
	if n.isCluster {
		return n.numPoints
	}
	return 1
}

// level holds the nodes of one zoom and their KD index.
type level struct {
	nodes []*node
	index *kdIndex
}

func newLevel(nodes []*node, nodeSize int) *level {
	xs := make([]float64, len(nodes))
	ys := make([]float64, len(nodes))
	for i, n := range nodes {
		xs[i], ys[i] = n.x, n.y
	}
	return &level{nodes: nodes, index: newKDIndex(xs, ys, nodeSize)}
}

// Index is a hierarchical cluster index over point features.
type Index struct {
	opts   Options
	points []*geojson.Feature
	levels []*level // indexed by zoom, MinZoom..MaxZoom+1
}

// New returns an empty index. Call Load before querying.
func New(opts Options) *Index {
	opts = opts.normalize()
	return &Index{
		opts:   opts,
		levels: make([]*level, opts.MaxZoom+2),
	}
}

// Options returns the normalized options in effect.
func (ix *Index) Options() Options {
	return ix.opts
}

// Load indexes the Point features of fc; other geometries are ignored.
// Load must complete before the index is shared between goroutines.
func (ix *Index) Load(fc *geojson.FeatureCollection) *Index {
	ix.points = ix.points[:0]
	if fc != nil {
		for _, f := range fc.Features {
			if f == nil {
				continue
			}
			if _, ok := f.Geometry.(orb.Point); ok {
				ix.points = append(ix.points, f)
			}
		}
	}

	nodes := make([]*node, len(ix.points))
	for i, f := range ix.points {
		p := f.Geometry.(orb.Point)
		nodes[i] = &node{
			x:        LngX(p.Lon()),
			y:        LatY(p.Lat()),
			zoom:     unclustered,
			id:       i,
			parentID: -1,
		}
	}

	ix.levels[ix.opts.MaxZoom+1] = newLevel(nodes, ix.opts.NodeSize)
	for z := ix.opts.MaxZoom; z >= ix.opts.MinZoom; z-- {
		nodes = ix.cluster(nodes, z)
		ix.levels[z] = newLevel(nodes, ix.opts.NodeSize)
	}
	return ix
}

// Len returns the number of indexed points.
func (ix *Index) Len() int {
	return len(ix.points)
}

// cluster merges the nodes of zoom+1 into the nodes of zoom.
func (ix *Index) cluster(nodes []*node, zoom int) []*node {
	r := ix.opts.Radius / (float64(ix.opts.Extent) * math.Pow(2, float64(zoom)))
	prev := ix.levels[zoom+1]
	next := make([]*node, 0, len(nodes))

	for i, p := range nodes {
		if p.zoom <= zoom {
			continue
		}
		p.zoom = zoom

		neighbors := prev.index.Within(p.x, p.y, r)

		originCount := p.count()
		total := originCount
		for _, nid := range neighbors {
			if b := prev.nodes[nid]; b.zoom > zoom {
				total += b.count()
			}
		}

		if total > originCount && total >= ix.opts.MinPoints {
			wx := p.x * float64(originCount)
			wy := p.y * float64(originCount)
			id := (i << 5) + (zoom + 1) + len(ix.points)

			for _, nid := range neighbors {
				b := prev.nodes[nid]
				if b.zoom <= zoom {
					continue
				}
				b.zoom = zoom
				c := float64(b.count())
				wx += b.x * c
				wy += b.y * c
				b.parentID = id
			}

			p.parentID = id
			next = append(next, &node{
				x:         wx / float64(total),
				y:         wy / float64(total),
				zoom:      unclustered,
				id:        id,
				parentID:  -1,
				numPoints: total,
				isCluster: true,
			})
			continue
		}

		next = append(next, p)
		if total > 1 {
			for _, nid := range neighbors {
				b := prev.nodes[nid]
				if b.zoom <= zoom {
					continue
				}
				b.zoom = zoom
				next = append(next, b)
			}
		}
	}
	return next
}

// Clusters returns the clusters and points visible in bound at zoom.
// Bounds crossing the antimeridian (Min.Lon > Max.Lon after normalization)
// are split in two; bounds spanning 360 degrees or more cover the world.
func (ix *Index) Clusters(bound orb.Bound, zoom int) []*geojson.Feature {
	minLng := normalizeLng(bound.Min.Lon())
	minLat := math.Max(-90, math.Min(90, bound.Min.Lat()))
	maxLng := 180.0
	if bound.Max.Lon() != 180 {
		maxLng = normalizeLng(bound.Max.Lon())
	}
	maxLat := math.Max(-90, math.Min(90, bound.Max.Lat()))

	if bound.Max.Lon()-bound.Min.Lon() >= 360 {
		minLng, maxLng = -180, 180
	} else if minLng > maxLng {
		east := ix.Clusters(orb.Bound{Min: orb.Point{minLng, minLat}, Max: orb.Point{180, maxLat}}, zoom)
		west := ix.Clusters(orb.Bound{Min: orb.Point{-180, minLat}, Max: orb.Point{maxLng, maxLat}}, zoom)
		return append(east, west...)
	}

	lvl := ix.levels[ix.limitZoom(zoom)]
	if lvl == nil {
		return nil
	}
	ids := lvl.index.Range(LngX(minLng), LatY(maxLat), LngX(maxLng), LatY(minLat))
	features := make([]*geojson.Feature, 0, len(ids))
	for _, id := range ids {
		features = append(features, ix.feature(lvl.nodes[id]))
	}
	return features
}

// Children returns the immediate children of a cluster.
func (ix *Index) Children(clusterID int) ([]*geojson.Feature, error) {
	originID := ix.originID(clusterID)
	originZoom := ix.originZoom(clusterID)
	if originZoom < 0 || originZoom >= len(ix.levels) || ix.levels[originZoom] == nil {
		return nil, ErrClusterNotFound
	}
	lvl := ix.levels[originZoom]
	if originID < 0 || originID >= len(lvl.nodes) {
		return nil, ErrClusterNotFound
	}
	origin := lvl.nodes[originID]

	r := ix.opts.Radius / (float64(ix.opts.Extent) * math.Pow(2, float64(originZoom-1)))
	var children []*geojson.Feature
	for _, id := range lvl.index.Within(origin.x, origin.y, r) {
		if c := lvl.nodes[id]; c.parentID == clusterID {
			children = append(children, ix.feature(c))
		}
	}
	if len(children) == 0 {
		return nil, ErrClusterNotFound
	}
	return children, nil
}

// Leaves returns up to limit original points of a cluster, skipping offset.
// A limit below 1 defaults to 10.
func (ix *Index) Leaves(clusterID, limit, offset int) ([]*geojson.Feature, error) {
	if limit < 1 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	var leaves []*geojson.Feature
	if _, err := ix.appendLeaves(&leaves, clusterID, limit, offset, 0); err != nil {
		return nil, err
	}
	return leaves, nil
}

func (ix *Index) appendLeaves(result *[]*geojson.Feature, clusterID, limit, offset, skipped int) (int, error) {
	children, err := ix.Children(clusterID)
	if err != nil {
		return skipped, err
	}

	for _, child := range children {
		if id, count, ok := ClusterInfo(child); ok {
			if skipped+count <= offset {
				skipped += count
			} else {
				skipped, err = ix.appendLeaves(result, id, limit, offset, skipped)
				if err != nil {
					return skipped, err
				}
			}
		} else if skipped < offset {
			skipped++
		} else {
			*result = append(*result, child)
		}
		if len(*result) == limit {
			break
		}
	}
	return skipped, nil
}

// ExpansionZoom returns the zoom at which a cluster splits into more than
// one child.
func (ix *Index) ExpansionZoom(clusterID int) (int, error) {
	zoom := ix.originZoom(clusterID) - 1
	for zoom <= ix.opts.MaxZoom {
		children, err := ix.Children(clusterID)
		if err != nil {
			return 0, err
		}
		zoom++
		if len(children) != 1 {
			break
		}
		id, _, ok := ClusterInfo(children[0])
		if !ok {
			break
		}
		clusterID = id
	}
	return zoom, nil
}

func (ix *Index) limitZoom(z int) int {
	return max(ix.opts.MinZoom, min(z, ix.opts.MaxZoom+1))
}

func (ix *Index) originID(clusterID int) int {
	return (clusterID - len(ix.points)) >> 5
}

func (ix *Index) originZoom(clusterID int) int {
	d := clusterID - len(ix.points)
	if d < 0 {
		return -1
	}
	return d % 32
}

// feature returns the GeoJSON form of n. Points return the original
// feature, which callers must not mutate.
func (ix *Index) feature(n *node) *geojson.Feature {
	if !n.isCluster {
		return ix.points[n.id]
	}
	f := geojson.NewFeature(orb.Point{XLng(n.x), YLat(n.y)})
	f.ID = n.id
	f.Properties[PropCluster] = true
	f.Properties[PropClusterID] = n.id
	f.Properties[PropPointCount] = n.numPoints
	f.Properties[PropPointCountAbbrv] = Abbreviate(n.numPoints)
	return f
}

// ClusterInfo extracts cluster_id and point_count from a cluster feature.
// Numeric properties decoded from JSON arrive as float64 and are accepted.
func ClusterInfo(f *geojson.Feature) (id, count int, ok bool) {
	if f == nil || f.Properties == nil {
		return 0, 0, false
	}
	if c, _ := f.Properties[PropCluster].(bool); !c {
		return 0, 0, false
	}
	id, ok = toInt(f.Properties[PropClusterID])
	if !ok {
		return 0, 0, false
	}
	count, _ = toInt(f.Properties[PropPointCount])
	return id, count, true
}

func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}

// Abbreviate formats a point count for labels: 999, 1.2k, 15k.
func Abbreviate(count int) string {
	switch {
	case count >= 10000:
		return strconv.Itoa(int(math.Round(float64(count)/1000))) + "k"
	case count >= 1000:
		return strconv.FormatFloat(math.Round(float64(count)/100)/10, 'f', -1, 64) + "k"
	default:
		return strconv.Itoa(count)
	}
}

func normalizeLng(lng float64) float64 {
	return math.Mod(math.Mod(lng+180, 360)+360, 360) - 180
}
