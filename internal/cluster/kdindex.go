// Campmap - Campground Listings and Map Clustering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campmap

package cluster

import "math"

// kdIndex is a static 2D KD index over points stored as flat x,y pairs.
// Leaves hold up to nodeSize points and are scanned linearly.
type kdIndex struct {
	ids      []int
	coords   []float64
	nodeSize int
}

func newKDIndex(xs, ys []float64, nodeSize int) *kdIndex {
	n := len(xs)
	k := &kdIndex{
		ids:      make([]int, n),
		coords:   make([]float64, 2*n),
		nodeSize: nodeSize,
	}
	for i := 0; i < n; i++ {
		k.ids[i] = i
		k.coords[2*i] = xs[i]
		k.coords[2*i+1] = ys[i]
	}
	k.sort(0, n-1, 0)
	return k
}

// Range returns the ids of points inside the axis-aligned box.
func (k *kdIndex) Range(minX, minY, maxX, maxY float64) []int {
	if len(k.ids) == 0 {
		return nil
	}
	var result []int
	stack := []int{0, len(k.ids) - 1, 0}

	for len(stack) > 0 {
		axis := stack[len(stack)-1]
		right := stack[len(stack)-2]
		left := stack[len(stack)-3]
		stack = stack[:len(stack)-3]

		if right-left <= k.nodeSize {
			for i := left; i <= right; i++ {
				x, y := k.coords[2*i], k.coords[2*i+1]
				if x >= minX && x <= maxX && y >= minY && y <= maxY {
					result = append(result, k.ids[i])
				}
			}
			continue
		}

		m := (left + right) >> 1
		x, y := k.coords[2*m], k.coords[2*m+1]
		if x >= minX && x <= maxX && y >= minY && y <= maxY {
			result = append(result, k.ids[m])
		}

		if (axis == 0 && minX <= x) || (axis == 1 && minY <= y) {
			stack = append(stack, left, m-1, 1-axis)
		}
		if (axis == 0 && maxX >= x) || (axis == 1 && maxY >= y) {
			stack = append(stack, m+1, right, 1-axis)
		}
	}
	return result
}

// Within returns the ids of points within radius r of (qx, qy).
func (k *kdIndex) Within(qx, qy, r float64) []int {
	if len(k.ids) == 0 {
		return nil
	}
	var result []int
	stack := []int{0, len(k.ids) - 1, 0}
	r2 := r * r

	for len(stack) > 0 {
		axis := stack[len(stack)-1]
		right := stack[len(stack)-2]
		left := stack[len(stack)-3]
		stack = stack[:len(stack)-3]

		if right-left <= k.nodeSize {
			for i := left; i <= right; i++ {
				if sqDist(k.coords[2*i], k.coords[2*i+1], qx, qy) <= r2 {
					result = append(result, k.ids[i])
				}
			}
			continue
		}

		m := (left + right) >> 1
		x, y := k.coords[2*m], k.coords[2*m+1]
		if sqDist(x, y, qx, qy) <= r2 {
			result = append(result, k.ids[m])
		}

		if (axis == 0 && qx-r <= x) || (axis == 1 && qy-r <= y) {
			stack = append(stack, left, m-1, 1-axis)
		}
		if (axis == 0 && qx+r >= x) || (axis == 1 && qy+r >= y) {
			stack = append(stack, m+1, right, 1-axis)
		}
	}
	return result
}

func (k *kdIndex) sort(left, right, axis int) {
	if right-left <= k.nodeSize {
		return
	}
	m := (left + right) >> 1
	k.selectK(m, left, right, axis)
	k.sort(left, m-1, 1-axis)
	k.sort(m+1, right, 1-axis)
}

// selectK rearranges items so that the k-th lies in its sorted position on
// axis, with smaller items before it and larger after (Floyd-Rivest).
func (k *kdIndex) selectK(kth, left, right, axis int) {
	for right > left {
		if right-left > 600 {
			n := float64(right - left + 1)
			m := float64(kth - left + 1)
			z := math.Log(n)
			s := 0.5 * math.Exp(2*z/3)
			sd := 0.5 * math.Sqrt(z*s*(n-s)/n)
			if m-n/2 < 0 {
				sd = -sd
			}
			newLeft := max(left, int(math.Floor(float64(kth)-m*s/n+sd)))
			newRight := min(right, int(math.Floor(float64(kth)+(n-m)*s/n+sd)))
			k.selectK(kth, newLeft, newRight, axis)
		}

		t := k.coords[2*kth+axis]
		i, j := left, right

		k.swap(left, kth)
		if k.coords[2*right+axis] > t {
			k.swap(left, right)
		}

		for i < j {
			k.swap(i, j)
			i++
			j--
			for k.coords[2*i+axis] < t {
				i++
			}
			for k.coords[2*j+axis] > t {
				j--
			}
		}

		if k.coords[2*left+axis] == t {
			k.swap(left, j)
		} else {
			j++
			k.swap(j, right)
		}

		if j <= kth {
			left = j + 1
		}
		if kth <= j {
			right = j - 1
		}
	}
}

func (k *kdIndex) swap(i, j int) {
	k.ids[i], k.ids[j] = k.ids[j], k.ids[i]
	k.coords[2*i], k.coords[2*j] = k.coords[2*j], k.coords[2*i]
	k.coords[2*i+1], k.coords[2*j+1] = k.coords[2*j+1], k.coords[2*i+1]
}

func sqDist(ax, ay, bx, by float64) float64 {
	dx, dy := ax-bx, ay-by
	return dx*dx + dy*dy
}
