// Copyright 2026 The tinycart Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"sort"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/tinycart/tinycart"
)

// gfxState is the full graphics state captured by Save/Restore.
type gfxState struct {
	transform tinycart.Matrix

	fill   Paint
	stroke Paint

	lineWidth  float64
	lineCap    LineCap
	lineJoin   LineJoin
	miterLimit float64
	dash       []float64
	dashOffset float64

	globalAlpha float64
	composite   string
	smoothing   bool
	filter      string

	fontSize   float64
	fontFamily string
	textAlign  string
	baseline   string
	direction  string

	shadowColor   color.RGBA
	shadowBlur    float64
	shadowOffsetX float64
	shadowOffsetY float64

	clip *image.Alpha // nil means unclipped
}

func defaultState() gfxState {
	return gfxState{
		transform:   tinycart.Identity(),
		fill:        Solid(color.RGBA{0, 0, 0, 255}),
		stroke:      Solid(color.RGBA{0, 0, 0, 255}),
		lineWidth:   1,
		miterLimit:  10,
		globalAlpha: 1,
		composite:   "source-over",
		smoothing:   true,
		fontSize:    10,
		fontFamily:  "sans-serif",
		textAlign:   "start",
		baseline:    "alphabetic",
		direction:   "ltr",
	}
}

// ImageSurface is the software drawing surface, rendering into an
// *image.RGBA with analytic anti-aliasing from x/image/vector.
type ImageSurface struct {
	w, h int
	img  *image.RGBA

	state gfxState
	stack []gfxState

	path Path
	// pen is the canvas-space pen position, needed by arcTo and the
	// curve commands whose geometry is relative to it.
	penX, penY float64
	hasPen     bool
}

// NewImageSurface creates a surface with the given dimensions. Dimensions
// below 1 are clamped to 1.
func NewImageSurface(w, h int) *ImageSurface {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return &ImageSurface{
		w:     w,
		h:     h,
		img:   image.NewRGBA(image.Rect(0, 0, w, h)),
		state: defaultState(),
	}
}

func (s *ImageSurface) Size() (int, int) { return s.w, s.h }

// Resize reallocates the backing image. Like a canvas resize, the surface
// contents are cleared.
func (s *ImageSurface) Resize(w, h int) {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	s.w, s.h = w, h
	s.img = image.NewRGBA(image.Rect(0, 0, w, h))
	s.state.clip = nil
}

func (s *ImageSurface) Clear() {
	for i := range s.img.Pix {
		s.img.Pix[i] = 0
	}
}

// --------------------------------------------------------------------------
// State stack and transforms
// --------------------------------------------------------------------------

func (s *ImageSurface) Save() {
	saved := s.state
	saved.dash = append([]float64(nil), s.state.dash...)
	s.stack = append(s.stack, saved)
}

func (s *ImageSurface) Restore() {
	if len(s.stack) == 0 {
		return
	}
	s.state = s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
}

func (s *ImageSurface) Translate(x, y float64) {
	s.state.transform = s.state.transform.Translate(x, y)
}

func (s *ImageSurface) Rotate(angle float64) {
	s.state.transform = s.state.transform.Rotate(angle)
}

func (s *ImageSurface) Scale(sx, sy float64) {
	s.state.transform = s.state.transform.Scale(sx, sy)
}

func (s *ImageSurface) Transform(m tinycart.Matrix) {
	s.state.transform = s.state.transform.Mul(m)
}

func (s *ImageSurface) SetTransform(m tinycart.Matrix) {
	s.state.transform = m
}

func (s *ImageSurface) ResetTransform() {
	s.state.transform = tinycart.Identity()
}

// --------------------------------------------------------------------------
// Style state
// --------------------------------------------------------------------------

func (s *ImageSurface) SetFillStyle(p Paint)   { s.state.fill = p }
func (s *ImageSurface) SetStrokeStyle(p Paint) { s.state.stroke = p }

func (s *ImageSurface) SetLineWidth(w float64) {
	if w > 0 {
		s.state.lineWidth = w
	}
}

func (s *ImageSurface) SetLineCap(c LineCap)          { s.state.lineCap = c }
func (s *ImageSurface) SetLineJoin(j LineJoin)        { s.state.lineJoin = j }
func (s *ImageSurface) SetMiterLimit(limit float64)   { s.state.miterLimit = limit }
func (s *ImageSurface) SetLineDashOffset(o float64)   { s.state.dashOffset = o }
func (s *ImageSurface) SetGlobalAlpha(a float64)      { s.state.globalAlpha = math.Max(0, math.Min(1, a)) }
func (s *ImageSurface) SetCompositeOperation(m string) { s.state.composite = m }
func (s *ImageSurface) SetImageSmoothing(on bool)     { s.state.smoothing = on }
func (s *ImageSurface) SetTextAlign(a string)         { s.state.textAlign = a }
func (s *ImageSurface) SetTextBaseline(b string)      { s.state.baseline = b }
func (s *ImageSurface) SetDirection(d string)         { s.state.direction = d }
func (s *ImageSurface) SetFilter(f string)            { s.state.filter = f }

func (s *ImageSurface) SetLineDash(segments []float64) {
	s.state.dash = append([]float64(nil), segments...)
}

func (s *ImageSurface) SetShadow(c color.RGBA, blur, ox, oy float64) {
	s.state.shadowColor = c
	s.state.shadowBlur = blur
	s.state.shadowOffsetX = ox
	s.state.shadowOffsetY = oy
}

func (s *ImageSurface) SetShadowColor(c color.RGBA)  { s.state.shadowColor = c }
func (s *ImageSurface) SetShadowBlur(b float64)      { s.state.shadowBlur = b }
func (s *ImageSurface) SetShadowOffsetX(x float64)   { s.state.shadowOffsetX = x }
func (s *ImageSurface) SetShadowOffsetY(y float64)   { s.state.shadowOffsetY = y }

func (s *ImageSurface) ClearShadow() {
	s.state.shadowColor = color.RGBA{}
	s.state.shadowBlur = 0
	s.state.shadowOffsetX = 0
	s.state.shadowOffsetY = 0
}

func (s *ImageSurface) SetFont(size float64, family string) {
	if size > 0 {
		s.state.fontSize = size
	}
	if family != "" {
		s.state.fontFamily = family
	}
}

func (s *ImageSurface) Font() (float64, string) {
	return s.state.fontSize, s.state.fontFamily
}

// --------------------------------------------------------------------------
// Path building
// --------------------------------------------------------------------------

// xy transforms a canvas-space point to device space and tracks the pen.
func (s *ImageSurface) xy(x, y float64) (float64, float64) {
	s.penX, s.penY = x, y
	s.hasPen = true
	return s.state.transform.Apply(x, y)
}

func (s *ImageSurface) BeginPath() {
	s.path.reset()
	s.hasPen = false
}

func (s *ImageSurface) ClosePath() { s.path.closePath() }

func (s *ImageSurface) MoveTo(x, y float64) {
	dx, dy := s.xy(x, y)
	s.path.moveTo(dx, dy)
}

func (s *ImageSurface) LineTo(x, y float64) {
	dx, dy := s.xy(x, y)
	s.path.lineTo(dx, dy)
}

// sampleArc appends an arc in canvas space, transforming each sample.
func (s *ImageSurface) sampleArc(cx, cy, rx, ry, rot, a0, a1 float64, ccw bool) {
	sweep := a1 - a0
	if ccw {
		if sweep > 0 {
			sweep -= 2 * math.Pi
		}
		if sweep == 0 {
			sweep = -2 * math.Pi
		}
	} else {
		if sweep < 0 {
			sweep += 2 * math.Pi
		}
		if sweep == 0 && a0 != a1 {
			sweep = 2 * math.Pi
		}
	}
	if math.Abs(sweep) > 2*math.Pi {
		sweep = math.Copysign(2*math.Pi, sweep)
	}
	n := arcSegments(math.Max(rx, ry), sweep)
	sinR, cosR := math.Sincos(rot)
	for i := 0; i <= n; i++ {
		a := a0 + sweep*float64(i)/float64(n)
		sinA, cosA := math.Sincos(a)
		// Ellipse point, rotated by rot about the center.
		ex, ey := rx*cosA, ry*sinA
		px := cx + ex*cosR - ey*sinR
		py := cy + ex*sinR + ey*cosR
		dx, dy := s.xy(px, py)
		if i == 0 && !s.hasSegments() {
			s.path.moveTo(dx, dy)
		} else {
			s.path.lineTo(dx, dy)
		}
	}
}

func (s *ImageSurface) hasSegments() bool {
	return len(s.path.current.pts) > 0
}

func (s *ImageSurface) Arc(x, y, radius, a0, a1 float64, ccw bool) {
	if radius < 0 {
		return
	}
	s.sampleArc(x, y, radius, radius, 0, a0, a1, ccw)
}

func (s *ImageSurface) Ellipse(x, y, rx, ry, rotation, a0, a1 float64, ccw bool) {
	if rx < 0 || ry < 0 {
		return
	}
	s.sampleArc(x, y, rx, ry, rotation, a0, a1, ccw)
}

func (s *ImageSurface) ArcTo(x1, y1, x2, y2, radius float64) {
	if !s.hasPen || radius <= 0 {
		s.LineTo(x1, y1)
		return
	}
	x0, y0 := s.penX, s.penY
	// Unit vectors from the corner toward the two endpoints.
	u1x, u1y := unit(x0-x1, y0-y1)
	u2x, u2y := unit(x2-x1, y2-y1)
	cr := cross(u1x, u1y, u2x, u2y)
	if cr == 0 {
		s.LineTo(x1, y1)
		return
	}
	angle := math.Acos(math.Max(-1, math.Min(1, u1x*u2x+u1y*u2y)))
	dist := radius / math.Tan(angle/2)
	// Tangent points on each leg.
	t1x, t1y := x1+u1x*dist, y1+u1y*dist
	t2x, t2y := x1+u2x*dist, y1+u2y*dist
	// Arc center lies along the angle bisector.
	bx, by := unit(u1x+u2x, u1y+u2y)
	centerDist := math.Hypot(dist, radius)
	cx, cy := x1+bx*centerDist, y1+by*centerDist

	s.LineTo(t1x, t1y)
	a0 := math.Atan2(t1y-cy, t1x-cx)
	a1 := math.Atan2(t2y-cy, t2x-cx)
	s.sampleArc(cx, cy, radius, radius, 0, a0, a1, cr > 0)
	s.penX, s.penY = t2x, t2y
}

func (s *ImageSurface) QuadraticCurveTo(cpx, cpy, x, y float64) {
	if !s.hasPen {
		s.MoveTo(x, y)
		return
	}
	x0, y0 := s.state.transform.Apply(s.penX, s.penY)
	cx, cy := s.state.transform.Apply(cpx, cpy)
	dx, dy := s.xy(x, y)
	s.path.quadTo(x0, y0, cx, cy, dx, dy)
}

func (s *ImageSurface) BezierCurveTo(c1x, c1y, c2x, c2y, x, y float64) {
	if !s.hasPen {
		s.MoveTo(x, y)
		return
	}
	x0, y0 := s.state.transform.Apply(s.penX, s.penY)
	d1x, d1y := s.state.transform.Apply(c1x, c1y)
	d2x, d2y := s.state.transform.Apply(c2x, c2y)
	dx, dy := s.xy(x, y)
	s.path.cubicTo(x0, y0, d1x, d1y, d2x, d2y, dx, dy)
}

func (s *ImageSurface) RoundRect(x, y, w, h float64, radii []float64) {
	// Per-corner radii in canvas order: top-left, top-right,
	// bottom-right, bottom-left.
	var r [4]float64
	switch len(radii) {
	case 0:
	case 1:
		r = [4]float64{radii[0], radii[0], radii[0], radii[0]}
	case 2:
		r = [4]float64{radii[0], radii[1], radii[0], radii[1]}
	case 3:
		r = [4]float64{radii[0], radii[1], radii[2], radii[1]}
	default:
		r = [4]float64{radii[0], radii[1], radii[2], radii[3]}
	}
	maxR := math.Min(w, h) / 2
	for i := range r {
		r[i] = math.Max(0, math.Min(r[i], maxR))
	}

	s.MoveTo(x+r[0], y)
	s.LineTo(x+w-r[1], y)
	if r[1] > 0 {
		s.sampleArc(x+w-r[1], y+r[1], r[1], r[1], 0, -math.Pi/2, 0, false)
	}
	s.LineTo(x+w, y+h-r[2])
	if r[2] > 0 {
		s.sampleArc(x+w-r[2], y+h-r[2], r[2], r[2], 0, 0, math.Pi/2, false)
	}
	s.LineTo(x+r[3], y+h)
	if r[3] > 0 {
		s.sampleArc(x+r[3], y+h-r[3], r[3], r[3], 0, math.Pi/2, math.Pi, false)
	}
	s.LineTo(x, y+r[0])
	if r[0] > 0 {
		s.sampleArc(x+r[0], y+r[0], r[0], r[0], 0, math.Pi, 3*math.Pi/2, false)
	}
	s.ClosePath()
}

// --------------------------------------------------------------------------
// Rasterization and compositing
// --------------------------------------------------------------------------

// rasterize renders subpaths into a coverage mask.
func (s *ImageSurface) rasterize(subs []subpath, rule FillRule) *image.Alpha {
	mask := image.NewAlpha(image.Rect(0, 0, s.w, s.h))
	if len(subs) == 0 {
		return mask
	}
	if rule == FillRuleEvenOdd {
		scanlineEvenOdd(mask, subs)
		return mask
	}
	z := vector.NewRasterizer(s.w, s.h)
	for _, sp := range subs {
		if len(sp.pts) < 2 {
			continue
		}
		z.MoveTo(float32(sp.pts[0].x), float32(sp.pts[0].y))
		for _, pt := range sp.pts[1:] {
			z.LineTo(float32(pt.x), float32(pt.y))
		}
		z.ClosePath()
	}
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	return mask
}

// scanlineEvenOdd fills a mask with the even-odd rule (aliased; the
// analytic rasterizer only supports non-zero winding).
func scanlineEvenOdd(mask *image.Alpha, subs []subpath) {
	b := mask.Bounds()
	xs := make([]float64, 0, 16)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		cy := float64(y) + 0.5
		xs = xs[:0]
		for _, sp := range subs {
			pts := sp.pts
			n := len(pts)
			for i := 0; i < n; i++ {
				a := pts[i]
				c := pts[(i+1)%n]
				if (a.y > cy) != (c.y > cy) {
					xs = append(xs, a.x+(cy-a.y)/(c.y-a.y)*(c.x-a.x))
				}
			}
		}
		if len(xs) < 2 {
			continue
		}
		sort.Float64s(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			x0 := int(math.Ceil(xs[i] - 0.5))
			x1 := int(math.Floor(xs[i+1] - 0.5))
			for x := max(x0, b.Min.X); x <= x1 && x < b.Max.X; x++ {
				mask.SetAlpha(x, y, color.Alpha{255})
			}
		}
	}
}

// paintMask blends a paint through a coverage mask onto the image,
// honoring clip, global alpha, shadow and the composite mode.
func (s *ImageSurface) paintMask(mask *image.Alpha, p Paint) {
	if s.state.clip != nil {
		intersectMask(mask, s.state.clip)
	}
	if s.state.shadowColor.A > 0 && (s.state.shadowBlur > 0 ||
		s.state.shadowOffsetX != 0 || s.state.shadowOffsetY != 0) {
		shadow := offsetMask(mask, s.state.shadowOffsetX, s.state.shadowOffsetY)
		if s.state.shadowBlur > 0 {
			boxBlurMask(shadow, int(math.Round(s.state.shadowBlur/2)))
		}
		if s.state.clip != nil {
			intersectMask(shadow, s.state.clip)
		}
		s.blendMask(shadow, Solid(s.state.shadowColor))
	}
	s.blendMask(mask, p)
}

func (s *ImageSurface) blendMask(mask *image.Alpha, p Paint) {
	additive := s.state.composite == "lighter"
	ga := s.state.globalAlpha
	pix := s.img.Pix
	for y := 0; y < s.h; y++ {
		row := mask.Pix[y*mask.Stride : y*mask.Stride+s.w]
		for x := 0; x < s.w; x++ {
			cov := row[x]
			if cov == 0 {
				continue
			}
			src := p.ColorAt(float64(x)+0.5, float64(y)+0.5)
			a := float64(cov) / 255 * ga * float64(src.A) / 255
			if a <= 0 {
				continue
			}
			i := y*s.img.Stride + x*4
			sr := float64(src.R) * a
			sg := float64(src.G) * a
			sb := float64(src.B) * a
			sa := 255 * a
			if additive {
				pix[i+0] = clamp8(float64(pix[i+0]) + sr)
				pix[i+1] = clamp8(float64(pix[i+1]) + sg)
				pix[i+2] = clamp8(float64(pix[i+2]) + sb)
				pix[i+3] = clamp8(float64(pix[i+3]) + sa)
			} else {
				inv := 1 - a
				pix[i+0] = clamp8(sr + float64(pix[i+0])*inv)
				pix[i+1] = clamp8(sg + float64(pix[i+1])*inv)
				pix[i+2] = clamp8(sb + float64(pix[i+2])*inv)
				pix[i+3] = clamp8(sa + float64(pix[i+3])*inv)
			}
		}
	}
}

func clamp8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}

func intersectMask(dst, clip *image.Alpha) {
	for i := range dst.Pix {
		dst.Pix[i] = uint8(uint32(dst.Pix[i]) * uint32(clip.Pix[i]) / 255)
	}
}

func offsetMask(src *image.Alpha, ox, oy float64) *image.Alpha {
	b := src.Bounds()
	dst := image.NewAlpha(b)
	ix, iy := int(math.Round(ox)), int(math.Round(oy))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		sy := y - iy
		if sy < b.Min.Y || sy >= b.Max.Y {
			continue
		}
		for x := b.Min.X; x < b.Max.X; x++ {
			sx := x - ix
			if sx < b.Min.X || sx >= b.Max.X {
				continue
			}
			dst.Pix[y*dst.Stride+x] = src.Pix[sy*src.Stride+sx]
		}
	}
	return dst
}

// boxBlurMask applies one horizontal and one vertical box pass, a cheap
// stand-in for the Gaussian a browser canvas uses.
func boxBlurMask(m *image.Alpha, radius int) {
	if radius < 1 {
		return
	}
	b := m.Bounds()
	w, h := b.Dx(), b.Dy()
	tmp := make([]uint8, len(m.Pix))
	win := 2*radius + 1

	for y := 0; y < h; y++ {
		row := m.Pix[y*m.Stride : y*m.Stride+w]
		sum := 0
		for x := -radius; x <= radius; x++ {
			sum += int(rowAt(row, x))
		}
		for x := 0; x < w; x++ {
			tmp[y*m.Stride+x] = uint8(sum / win)
			sum += int(rowAt(row, x+radius+1)) - int(rowAt(row, x-radius))
		}
	}
	for x := 0; x < w; x++ {
		sum := 0
		for y := -radius; y <= radius; y++ {
			sum += int(colAt(tmp, m.Stride, h, x, y))
		}
		for y := 0; y < h; y++ {
			m.Pix[y*m.Stride+x] = uint8(sum / win)
			sum += int(colAt(tmp, m.Stride, h, x, y+radius+1)) - int(colAt(tmp, m.Stride, h, x, y-radius))
		}
	}
}

func rowAt(row []uint8, x int) uint8 {
	if x < 0 || x >= len(row) {
		return 0
	}
	return row[x]
}

func colAt(pix []uint8, stride, h, x, y int) uint8 {
	if y < 0 || y >= h {
		return 0
	}
	return pix[y*stride+x]
}

// --------------------------------------------------------------------------
// Path consumption
// --------------------------------------------------------------------------

func (s *ImageSurface) FillPath(rule FillRule) {
	subs := s.path.all()
	if len(subs) == 0 {
		return
	}
	s.paintMask(s.rasterize(subs, rule), s.state.fill)
}

func (s *ImageSurface) StrokePath() {
	subs := s.path.all()
	if len(subs) == 0 {
		return
	}
	outline := strokeOutline(subs, s.strokeStyleState())
	if len(outline) == 0 {
		return
	}
	s.paintMask(s.rasterize(outline, FillRuleNonZero), s.state.stroke)
}

func (s *ImageSurface) strokeStyleState() strokeStyle {
	// The stroke width is specified in canvas units; approximate the
	// device width with the transform's average scale.
	sx := math.Hypot(s.state.transform.A, s.state.transform.D)
	sy := math.Hypot(s.state.transform.B, s.state.transform.E)
	scale := (sx + sy) / 2
	if scale <= 0 {
		scale = 1
	}
	return strokeStyle{
		width:      s.state.lineWidth * scale,
		cap:        s.state.lineCap,
		join:       s.state.lineJoin,
		miterLimit: s.state.miterLimit,
		dash:       scaleDash(s.state.dash, scale),
		dashOffset: s.state.dashOffset * scale,
	}
}

func scaleDash(dash []float64, scale float64) []float64 {
	if len(dash) == 0 || scale == 1 {
		return dash
	}
	out := make([]float64, len(dash))
	for i, d := range dash {
		out[i] = d * scale
	}
	return out
}

func (s *ImageSurface) Clip(rule FillRule) {
	subs := s.path.all()
	if len(subs) == 0 {
		return
	}
	mask := s.rasterize(subs, rule)
	if s.state.clip != nil {
		intersectMask(mask, s.state.clip)
	}
	s.state.clip = mask
}

// --------------------------------------------------------------------------
// Direct primitives
// --------------------------------------------------------------------------

// tempPath runs a path-building function against a scratch path without
// disturbing the user's current path or pen.
func (s *ImageSurface) tempPath(build func()) []subpath {
	savedPath := s.path
	savedPenX, savedPenY, savedPen := s.penX, s.penY, s.hasPen
	s.path = Path{}
	build()
	subs := s.path.all()
	s.path = savedPath
	s.penX, s.penY, s.hasPen = savedPenX, savedPenY, savedPen
	return subs
}

func (s *ImageSurface) rectSubs(x, y, w, h float64) []subpath {
	return s.tempPath(func() {
		s.MoveTo(x, y)
		s.LineTo(x+w, y)
		s.LineTo(x+w, y+h)
		s.LineTo(x, y+h)
		s.path.closePath()
	})
}

func (s *ImageSurface) FillRect(x, y, w, h float64, p Paint) {
	s.paintMask(s.rasterize(s.rectSubs(x, y, w, h), FillRuleNonZero), p)
}

func (s *ImageSurface) StrokeRect(x, y, w, h float64, p Paint) {
	outline := strokeOutline(s.rectSubs(x, y, w, h), s.strokeStyleState())
	s.paintMask(s.rasterize(outline, FillRuleNonZero), p)
}

func (s *ImageSurface) circleSubs(x, y, r float64) []subpath {
	return s.tempPath(func() {
		s.sampleArc(x, y, r, r, 0, 0, 2*math.Pi, false)
		s.path.closePath()
	})
}

func (s *ImageSurface) FillCircle(x, y, r float64, p Paint) {
	if r <= 0 {
		return
	}
	s.paintMask(s.rasterize(s.circleSubs(x, y, r), FillRuleNonZero), p)
}

func (s *ImageSurface) StrokeCircle(x, y, r float64, p Paint) {
	if r <= 0 {
		return
	}
	outline := strokeOutline(s.circleSubs(x, y, r), s.strokeStyleState())
	s.paintMask(s.rasterize(outline, FillRuleNonZero), p)
}

func (s *ImageSurface) StrokeLine(x1, y1, x2, y2 float64, p Paint) {
	subs := s.tempPath(func() {
		s.MoveTo(x1, y1)
		s.LineTo(x2, y2)
	})
	outline := strokeOutline(subs, s.strokeStyleState())
	s.paintMask(s.rasterize(outline, FillRuleNonZero), p)
}

// --------------------------------------------------------------------------
// Text
// --------------------------------------------------------------------------

// The surface renders text with an embedded bitmap face scaled to the
// font size. The font family is carried as state for the script side to
// read back, but every family maps to the one embedded face.
var textFace = basicfont.Face7x13

func (s *ImageSurface) FillText(text string, x, y float64, p Paint) {
	mask := s.textMask(text, x, y)
	if mask != nil {
		s.paintMask(mask, p)
	}
}

func (s *ImageSurface) StrokeText(text string, x, y float64, p Paint) {
	mask := s.textMask(text, x, y)
	if mask == nil {
		return
	}
	outlineMask(mask)
	s.paintMask(mask, p)
}

// textMask rasterizes a string into a surface-sized coverage mask.
func (s *ImageSurface) textMask(text string, x, y float64) *image.Alpha {
	if text == "" {
		return nil
	}
	adv := font.MeasureString(textFace, text).Ceil()
	if adv <= 0 {
		return nil
	}
	lineH := textFace.Ascent + textFace.Descent
	small := image.NewAlpha(image.Rect(0, 0, adv, lineH))
	d := font.Drawer{
		Dst:  small,
		Src:  image.NewUniform(color.Alpha{255}),
		Face: textFace,
		Dot:  fixed.P(0, textFace.Ascent),
	}
	d.DrawString(text)

	scale := s.state.fontSize / float64(lineH)
	if scale <= 0 {
		scale = 1
	}
	dw := float64(adv) * scale
	dh := float64(lineH) * scale

	// Anchor adjustments. Alignment is horizontal, baseline vertical.
	align := s.state.textAlign
	if align == "start" {
		align = "left"
		if s.state.direction == "rtl" {
			align = "right"
		}
	} else if align == "end" {
		align = "right"
		if s.state.direction == "rtl" {
			align = "left"
		}
	}
	switch align {
	case "center":
		x -= dw / 2
	case "right":
		x -= dw
	}
	ascent := float64(textFace.Ascent) * scale
	switch s.state.baseline {
	case "top":
		// y is already the top edge
	case "middle":
		y -= dh / 2
	case "bottom":
		y -= dh
	default: // alphabetic
		y -= ascent
	}

	// The anchor goes through the transform; the glyphs themselves are
	// drawn axis-aligned, which is all the bitmap face supports.
	dx, dy := s.state.transform.Apply(x, y)

	mask := image.NewAlpha(image.Rect(0, 0, s.w, s.h))
	scaleAlpha(mask, small, dx, dy, scale)
	return mask
}

// scaleAlpha nearest-neighbor scales a small mask into the surface mask.
func scaleAlpha(dst, src *image.Alpha, ox, oy, scale float64) {
	sb := src.Bounds()
	dw := int(math.Ceil(float64(sb.Dx()) * scale))
	dh := int(math.Ceil(float64(sb.Dy()) * scale))
	db := dst.Bounds()
	for y := 0; y < dh; y++ {
		ty := int(math.Floor(oy)) + y
		if ty < db.Min.Y || ty >= db.Max.Y {
			continue
		}
		sy := int(float64(y) / scale)
		if sy >= sb.Dy() {
			sy = sb.Dy() - 1
		}
		for x := 0; x < dw; x++ {
			tx := int(math.Floor(ox)) + x
			if tx < db.Min.X || tx >= db.Max.X {
				continue
			}
			sx := int(float64(x) / scale)
			if sx >= sb.Dx() {
				sx = sb.Dx() - 1
			}
			v := src.Pix[sy*src.Stride+sx]
			if v > 0 {
				dst.Pix[ty*dst.Stride+tx] = v
			}
		}
	}
}

// outlineMask reduces a filled mask to its one-pixel boundary, the
// stroke-text approximation for a bitmap face.
func outlineMask(m *image.Alpha) {
	b := m.Bounds()
	w, h := b.Dx(), b.Dy()
	src := append([]uint8(nil), m.Pix...)
	at := func(x, y int) uint8 {
		if x < 0 || x >= w || y < 0 || y >= h {
			return 0
		}
		return src[y*m.Stride+x]
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if at(x, y) == 0 {
				continue
			}
			interior := at(x-1, y) > 0 && at(x+1, y) > 0 && at(x, y-1) > 0 && at(x, y+1) > 0
			if interior {
				m.Pix[y*m.Stride+x] = 0
			}
		}
	}
}

// --------------------------------------------------------------------------
// Images and raw pixels
// --------------------------------------------------------------------------

func (s *ImageSurface) DrawImage(img *image.RGBA, dx, dy, dw, dh float64) {
	if img == nil {
		return
	}
	sb := img.Bounds()
	if dw <= 0 {
		dw = float64(sb.Dx())
	}
	if dh <= 0 {
		dh = float64(sb.Dy())
	}
	// Transform the destination corners; the blit stays axis-aligned, so
	// rotation degrades to its bounding placement.
	x0, y0 := s.state.transform.Apply(dx, dy)
	x1, y1 := s.state.transform.Apply(dx+dw, dy+dh)
	rect := image.Rect(
		int(math.Round(math.Min(x0, x1))), int(math.Round(math.Min(y0, y1))),
		int(math.Round(math.Max(x0, x1))), int(math.Round(math.Max(y0, y1))),
	)
	if rect.Empty() {
		return
	}
	var scaler xdraw.Scaler = xdraw.NearestNeighbor
	if s.state.smoothing {
		scaler = xdraw.ApproxBiLinear
	}
	scaler.Scale(s.img, rect, img, sb, xdraw.Over, nil)
}

func (s *ImageSurface) PutPixels(x, y, w, h int, pixels []byte, dirty *tinycart.DirtyRect) {
	if w <= 0 || h <= 0 || len(pixels) < w*h*4 {
		return
	}
	x0, y0, x1, y1 := 0, 0, w, h
	if dirty != nil {
		x0, y0 = dirty.X, dirty.Y
		x1, y1 = dirty.X+dirty.W, dirty.Y+dirty.H
	}
	for sy := max(y0, 0); sy < y1 && sy < h; sy++ {
		ty := y + sy
		if ty < 0 || ty >= s.h {
			continue
		}
		for sx := max(x0, 0); sx < x1 && sx < w; sx++ {
			tx := x + sx
			if tx < 0 || tx >= s.w {
				continue
			}
			si := (sy*w + sx) * 4
			ti := ty*s.img.Stride + tx*4
			copy(s.img.Pix[ti:ti+4], pixels[si:si+4])
		}
	}
}

func (s *ImageSurface) ReadPixels(x, y, w, h int) []byte {
	if w <= 0 || h <= 0 {
		return nil
	}
	out := make([]byte, w*h*4)
	for sy := 0; sy < h; sy++ {
		ty := y + sy
		if ty < 0 || ty >= s.h {
			continue
		}
		for sx := 0; sx < w; sx++ {
			tx := x + sx
			if tx < 0 || tx >= s.w {
				continue
			}
			si := (sy*w + sx) * 4
			ti := ty*s.img.Stride + tx*4
			copy(out[si:si+4], s.img.Pix[ti:ti+4])
		}
	}
	return out
}

func (s *ImageSurface) WritePixels(x, y, w, h int, pixels []byte) {
	s.PutPixels(x, y, w, h, pixels, nil)
}

// --------------------------------------------------------------------------
// Hit-testing and output
// --------------------------------------------------------------------------

func (s *ImageSurface) IsPointInPath(x, y float64, rule FillRule) bool {
	subs := s.path.all()
	if len(subs) == 0 {
		return false
	}
	if rule == FillRuleEvenOdd {
		return crossingCount(subs, x, y)%2 == 1
	}
	return windingNumber(subs, x, y) != 0
}

func (s *ImageSurface) IsPointInStroke(x, y float64) bool {
	subs := s.path.all()
	half := s.state.lineWidth / 2
	for _, sp := range subs {
		pts := sp.pts
		n := len(pts)
		if n < 2 {
			continue
		}
		limit := n - 1
		if sp.closed {
			limit = n
		}
		for i := 0; i < limit; i++ {
			a := pts[i]
			b := pts[(i+1)%n]
			if distToSegment(x, y, a.x, a.y, b.x, b.y) <= half {
				return true
			}
		}
	}
	return false
}

// Snapshot returns a copy of the surface contents.
func (s *ImageSurface) Snapshot() *image.RGBA {
	out := image.NewRGBA(s.img.Bounds())
	copy(out.Pix, s.img.Pix)
	return out
}

// EncodePNG writes the surface contents as a PNG image.
func (s *ImageSurface) EncodePNG(w io.Writer) error {
	return png.Encode(w, s.img)
}
