// Copyright 2026 The tinycart Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import "math"

// Stroking converts a flattened path into closed outline polygons which
// are rasterized as one non-zero fill. Overlap between segment quads and
// join wedges is harmless because the outline becomes a single coverage
// mask before any blending happens.

// strokeStyle bundles the state stroking needs.
type strokeStyle struct {
	width      float64
	cap        LineCap
	join       LineJoin
	miterLimit float64
	dash       []float64
	dashOffset float64
}

// strokeOutline builds the outline polygons for a path.
func strokeOutline(subs []subpath, st strokeStyle) []subpath {
	if st.width <= 0 {
		return nil
	}
	half := st.width / 2
	var out []subpath

	for _, sp := range subs {
		pts := sp.pts
		if len(pts) < 2 {
			continue
		}
		if sp.closed {
			pts = append(append([]point(nil), pts...), pts[0])
		}
		runs := dashRuns(pts, st.dash, st.dashOffset)
		for _, run := range runs {
			out = append(out, strokeRun(run, half, st, sp.closed && len(runs) == 1)...)
		}
	}
	return out
}

// dashRuns splits a polyline into the "on" runs of the dash pattern.
// An empty pattern yields the polyline unchanged.
func dashRuns(pts []point, pattern []float64, offset float64) [][]point {
	if len(pattern) == 0 {
		return [][]point{pts}
	}
	total := 0.0
	for _, d := range pattern {
		if d < 0 {
			return [][]point{pts}
		}
		total += d
	}
	if total <= 0 {
		return [][]point{pts}
	}

	// Position within the repeating pattern.
	pos := math.Mod(offset, total)
	if pos < 0 {
		pos += total
	}
	idx := 0
	for pos >= pattern[idx] {
		pos -= pattern[idx]
		idx = (idx + 1) % len(pattern)
	}
	on := idx%2 == 0
	remain := pattern[idx] - pos

	var runs [][]point
	var run []point
	if on {
		run = []point{pts[0]}
	}

	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		segLen := math.Hypot(b.x-a.x, b.y-a.y)
		for segLen > 0 {
			if segLen < remain {
				remain -= segLen
				if on {
					run = append(run, b)
				}
				break
			}
			// The dash boundary falls inside this segment.
			t := remain / segLen
			mid := point{a.x + (b.x-a.x)*t, a.y + (b.y-a.y)*t}
			if on {
				run = append(run, mid)
				if len(run) >= 2 {
					runs = append(runs, run)
				}
				run = nil
			} else {
				run = []point{mid}
			}
			on = !on
			segLen -= remain
			a = mid
			idx = (idx + 1) % len(pattern)
			remain = pattern[idx]
		}
	}
	if on && len(run) >= 2 {
		runs = append(runs, run)
	}
	return runs
}

// strokeRun emits outline polygons for one polyline run.
func strokeRun(pts []point, half float64, st strokeStyle, closed bool) []subpath {
	var out []subpath
	n := len(pts)
	if n < 2 {
		return nil
	}

	for i := 1; i < n; i++ {
		a, b := pts[i-1], pts[i]
		dx, dy := b.x-a.x, b.y-a.y
		length := math.Hypot(dx, dy)
		if length == 0 {
			continue
		}
		ux, uy := dx/length, dy/length
		nx, ny := -uy*half, ux*half

		// Square caps extend the end segments of open runs.
		if !closed && st.cap == LineCapSquare {
			if i == 1 {
				a = point{a.x - ux*half, a.y - uy*half}
			}
			if i == n-1 {
				b = point{b.x + ux*half, b.y + uy*half}
			}
		}
		out = append(out, subpath{
			pts: []point{
				{a.x + nx, a.y + ny},
				{b.x + nx, b.y + ny},
				{b.x - nx, b.y - ny},
				{a.x - nx, a.y - ny},
			},
			closed: true,
		})
	}

	// Joins at interior vertices. For closed runs pts[0] == pts[n-1],
	// which makes that vertex a joint as well.
	for i := 1; i < n-1; i++ {
		out = append(out, joinWedges(pts[i-1], pts[i], pts[i+1], half, st)...)
	}
	if closed && n >= 3 {
		out = append(out, joinWedges(pts[n-2], pts[0], pts[1], half, st)...)
	}

	if !closed && st.cap == LineCapRound {
		out = append(out, circlePoly(pts[0].x, pts[0].y, half))
		out = append(out, circlePoly(pts[n-1].x, pts[n-1].y, half))
	}
	return out
}

// joinWedges fills the gap at a vertex between two segments.
func joinWedges(prev, v, next point, half float64, st strokeStyle) []subpath {
	if st.join == LineJoinRound {
		return []subpath{circlePoly(v.x, v.y, half)}
	}

	u1x, u1y := unit(v.x-prev.x, v.y-prev.y)
	u2x, u2y := unit(next.x-v.x, next.y-v.y)
	if u1x == 0 && u1y == 0 || u2x == 0 && u2y == 0 {
		return nil
	}
	// Outer side of the turn.
	turn := cross(u1x, u1y, u2x, u2y)
	if turn == 0 {
		return nil
	}
	sign := 1.0
	if turn > 0 {
		sign = -1
	}
	n1x, n1y := -u1y*half*sign, u1x*half*sign
	n2x, n2y := -u2y*half*sign, u2x*half*sign

	bevel := subpath{
		pts:    []point{{v.x, v.y}, {v.x + n1x, v.y + n1y}, {v.x + n2x, v.y + n2y}},
		closed: true,
	}
	if st.join == LineJoinBevel {
		return []subpath{bevel}
	}

	// Miter: extend to the intersection of the two offset edges, falling
	// back to bevel past the miter limit.
	mx, my := n1x+n2x, n1y+n2y
	mlen := math.Hypot(mx, my)
	if mlen == 0 {
		return []subpath{bevel}
	}
	cosHalf := mlen / (2 * half)
	if cosHalf <= 0 {
		return []subpath{bevel}
	}
	miterLen := half / cosHalf
	limit := st.miterLimit
	if limit <= 0 {
		limit = 10
	}
	if miterLen/half > limit {
		return []subpath{bevel}
	}
	mx, my = mx/mlen*miterLen, my/mlen*miterLen
	return []subpath{{
		pts: []point{
			{v.x, v.y},
			{v.x + n1x, v.y + n1y},
			{v.x + mx, v.y + my},
			{v.x + n2x, v.y + n2y},
		},
		closed: true,
	}}
}

func circlePoly(cx, cy, r float64) subpath {
	n := arcSegments(r, 2*math.Pi)
	pts := make([]point, n)
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		sin, cos := math.Sincos(a)
		pts[i] = point{cx + cos*r, cy + sin*r}
	}
	return subpath{pts: pts, closed: true}
}

func unit(x, y float64) (float64, float64) {
	l := math.Hypot(x, y)
	if l == 0 {
		return 0, 0
	}
	return x / l, y / l
}
