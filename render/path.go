// Copyright 2026 The tinycart Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import "math"

// Path is a flattened path: curves are subdivided into line segments at
// append time, in device coordinates (the surface applies its transform
// before appending). That keeps rasterization, hit-testing and stroking on
// one representation.
type Path struct {
	subpaths []subpath
	current  subpath
}

type subpath struct {
	pts    []point
	closed bool
}

type point struct{ x, y float64 }

// flattenTolerance bounds curve subdivision error, in device pixels.
const flattenTolerance = 0.25

func (p *Path) reset() {
	p.subpaths = nil
	p.current = subpath{}
}

// moveTo starts a new subpath. Device coordinates.
func (p *Path) moveTo(x, y float64) {
	p.flushCurrent()
	p.current = subpath{pts: []point{{x, y}}}
}

// lineTo appends a segment, implicitly starting a subpath if none is open.
func (p *Path) lineTo(x, y float64) {
	if len(p.current.pts) == 0 {
		p.current = subpath{pts: []point{{x, y}}}
		return
	}
	p.current.pts = append(p.current.pts, point{x, y})
}

func (p *Path) closePath() {
	if len(p.current.pts) >= 2 {
		p.current.closed = true
		p.flushCurrent()
	}
}

func (p *Path) flushCurrent() {
	if len(p.current.pts) >= 2 {
		p.subpaths = append(p.subpaths, p.current)
	}
	p.current = subpath{}
}

// all returns every subpath including the open one.
func (p *Path) all() []subpath {
	if len(p.current.pts) >= 2 {
		return append(append([]subpath(nil), p.subpaths...), p.current)
	}
	return p.subpaths
}

func (p *Path) empty() bool {
	return len(p.subpaths) == 0 && len(p.current.pts) < 2
}

// --------------------------------------------------------------------------
// Curve flattening
// --------------------------------------------------------------------------

// quadTo flattens a quadratic Bezier from the current device-space point.
func (p *Path) quadTo(x0, y0, cx, cy, x1, y1 float64) {
	// Promote to cubic; one flattener handles both.
	c1x := x0 + 2.0/3.0*(cx-x0)
	c1y := y0 + 2.0/3.0*(cy-y0)
	c2x := x1 + 2.0/3.0*(cx-x1)
	c2y := y1 + 2.0/3.0*(cy-y1)
	p.cubicTo(x0, y0, c1x, c1y, c2x, c2y, x1, y1)
}

// cubicTo flattens a cubic Bezier from the current device-space point.
func (p *Path) cubicTo(x0, y0, c1x, c1y, c2x, c2y, x1, y1 float64) {
	p.flattenCubic(x0, y0, c1x, c1y, c2x, c2y, x1, y1, 0)
	p.lineTo(x1, y1)
}

func (p *Path) flattenCubic(x0, y0, c1x, c1y, c2x, c2y, x1, y1 float64, depth int) {
	if depth > 16 || cubicFlat(x0, y0, c1x, c1y, c2x, c2y, x1, y1) {
		return
	}
	// de Casteljau split at t=0.5.
	m1x, m1y := (x0+c1x)/2, (y0+c1y)/2
	m2x, m2y := (c1x+c2x)/2, (c1y+c2y)/2
	m3x, m3y := (c2x+x1)/2, (c2y+y1)/2
	mm1x, mm1y := (m1x+m2x)/2, (m1y+m2y)/2
	mm2x, mm2y := (m2x+m3x)/2, (m2y+m3y)/2
	mx, my := (mm1x+mm2x)/2, (mm1y+mm2y)/2

	p.flattenCubic(x0, y0, m1x, m1y, mm1x, mm1y, mx, my, depth+1)
	p.lineTo(mx, my)
	p.flattenCubic(mx, my, mm2x, mm2y, m3x, m3y, x1, y1, depth+1)
}

// cubicFlat reports whether the control points lie within tolerance of the
// chord, so the curve can be drawn as a line.
func cubicFlat(x0, y0, c1x, c1y, c2x, c2y, x1, y1 float64) bool {
	d1 := distToSegment(c1x, c1y, x0, y0, x1, y1)
	d2 := distToSegment(c2x, c2y, x0, y0, x1, y1)
	return d1 <= flattenTolerance && d2 <= flattenTolerance
}

// arcSegments picks a segment count for an arc sweep so the chord error
// stays below tolerance.
func arcSegments(radius, sweep float64) int {
	if radius <= 0 {
		return 1
	}
	// Max angular step for chord error e: 2*acos(1 - e/r).
	step := 2 * math.Acos(math.Max(-1, 1-flattenTolerance/radius))
	if step <= 0 || math.IsNaN(step) {
		return 64
	}
	n := int(math.Ceil(math.Abs(sweep) / step))
	if n < 2 {
		n = 2
	}
	if n > 256 {
		n = 256
	}
	return n
}

// --------------------------------------------------------------------------
// Geometry helpers shared by hit-testing
// --------------------------------------------------------------------------

// distToSegment returns the distance from (px,py) to segment (ax,ay)-(bx,by).
func distToSegment(px, py, ax, ay, bx, by float64) float64 {
	dx, dy := bx-ax, by-ay
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return math.Hypot(px-ax, py-ay)
	}
	t := ((px-ax)*dx + (py-ay)*dy) / lenSq
	t = math.Max(0, math.Min(1, t))
	return math.Hypot(px-(ax+t*dx), py-(ay+t*dy))
}

// windingNumber accumulates the winding of closed subpaths around (x, y).
// Open subpaths are treated as closed, matching canvas hit-test semantics.
func windingNumber(subs []subpath, x, y float64) int {
	winding := 0
	for _, sp := range subs {
		pts := sp.pts
		n := len(pts)
		if n < 2 {
			continue
		}
		for i := 0; i < n; i++ {
			a := pts[i]
			b := pts[(i+1)%n]
			if a.y <= y {
				if b.y > y && cross(b.x-a.x, b.y-a.y, x-a.x, y-a.y) > 0 {
					winding++
				}
			} else if b.y <= y && cross(b.x-a.x, b.y-a.y, x-a.x, y-a.y) < 0 {
				winding--
			}
		}
	}
	return winding
}

// crossingCount counts edge crossings of a rightward ray, for even-odd.
func crossingCount(subs []subpath, x, y float64) int {
	count := 0
	for _, sp := range subs {
		pts := sp.pts
		n := len(pts)
		if n < 2 {
			continue
		}
		for i := 0; i < n; i++ {
			a := pts[i]
			b := pts[(i+1)%n]
			if (a.y > y) != (b.y > y) {
				xt := a.x + (y-a.y)/(b.y-a.y)*(b.x-a.x)
				if xt > x {
					count++
				}
			}
		}
	}
	return count
}

func cross(ax, ay, bx, by float64) float64 { return ax*by - ay*bx }
