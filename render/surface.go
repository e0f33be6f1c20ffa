// Copyright 2026 The tinycart Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render executes draw batches against a raster drawing surface.
//
// Renderer dispatches decoded draw instructions to a Surface, which is the
// immediate-mode 2D API of the host's drawing target. ImageSurface is the
// software implementation over an *image.RGBA.
package render

import (
	"image"
	"image/color"
	"io"

	"github.com/tinycart/tinycart"
)

// FillRule specifies how to determine which areas are inside a path.
type FillRule uint8

const (
	// FillRuleNonZero uses the non-zero winding rule.
	FillRuleNonZero FillRule = iota
	// FillRuleEvenOdd uses the even-odd rule.
	FillRuleEvenOdd
)

// ParseFillRule maps a wire rule string to a FillRule. Anything that is
// not "evenodd" is the default non-zero rule.
func ParseFillRule(s string) FillRule {
	if s == "evenodd" {
		return FillRuleEvenOdd
	}
	return FillRuleNonZero
}

// LineCap specifies the shape of line endpoints.
type LineCap uint8

const (
	// LineCapButt specifies a flat line cap.
	LineCapButt LineCap = iota
	// LineCapRound specifies a rounded line cap.
	LineCapRound
	// LineCapSquare specifies a square line cap.
	LineCapSquare
)

// ParseLineCap maps a wire cap string to a LineCap, defaulting to butt.
func ParseLineCap(s string) LineCap {
	switch s {
	case "round":
		return LineCapRound
	case "square":
		return LineCapSquare
	}
	return LineCapButt
}

// LineJoin specifies the shape of line joins.
type LineJoin uint8

const (
	// LineJoinMiter specifies a sharp (mitered) join.
	LineJoinMiter LineJoin = iota
	// LineJoinRound specifies a rounded join.
	LineJoinRound
	// LineJoinBevel specifies a beveled join.
	LineJoinBevel
)

// ParseLineJoin maps a wire join string to a LineJoin, defaulting to miter.
func ParseLineJoin(s string) LineJoin {
	switch s {
	case "round":
		return LineJoinRound
	case "bevel":
		return LineJoinBevel
	}
	return LineJoinMiter
}

// Surface is the immediate-mode 2D API a renderer draws through. The
// method set mirrors the canvas model the draw instructions were produced
// against: a current path, a transform stack, fill/stroke styles, and a
// handful of direct primitives that take an explicit paint.
type Surface interface {
	Size() (w, h int)
	Resize(w, h int)
	Clear()

	// State stack and transforms.
	Save()
	Restore()
	Translate(x, y float64)
	Rotate(angle float64)
	Scale(sx, sy float64)
	Transform(m tinycart.Matrix)
	SetTransform(m tinycart.Matrix)
	ResetTransform()

	// Style state.
	SetFillStyle(p Paint)
	SetStrokeStyle(p Paint)
	SetLineWidth(w float64)
	SetLineCap(c LineCap)
	SetLineJoin(j LineJoin)
	SetMiterLimit(limit float64)
	SetLineDash(segments []float64)
	SetLineDashOffset(offset float64)
	SetGlobalAlpha(a float64)
	SetCompositeOperation(mode string)
	SetImageSmoothing(enabled bool)
	SetTextAlign(align string)
	SetTextBaseline(baseline string)
	SetDirection(dir string)
	SetFilter(filter string)
	SetShadow(c color.RGBA, blur, offsetX, offsetY float64)
	SetShadowColor(c color.RGBA)
	SetShadowBlur(blur float64)
	SetShadowOffsetX(x float64)
	SetShadowOffsetY(y float64)
	ClearShadow()
	SetFont(size float64, family string)
	Font() (size float64, family string)

	// Direct primitives with an explicit paint.
	FillRect(x, y, w, h float64, p Paint)
	StrokeRect(x, y, w, h float64, p Paint)
	FillCircle(x, y, r float64, p Paint)
	StrokeCircle(x, y, r float64, p Paint)
	StrokeLine(x1, y1, x2, y2 float64, p Paint)
	FillText(text string, x, y float64, p Paint)
	StrokeText(text string, x, y float64, p Paint)
	DrawImage(img *image.RGBA, dx, dy, dw, dh float64)

	// Current path.
	BeginPath()
	ClosePath()
	MoveTo(x, y float64)
	LineTo(x, y float64)
	Arc(x, y, radius, startAngle, endAngle float64, counterclockwise bool)
	ArcTo(x1, y1, x2, y2, radius float64)
	QuadraticCurveTo(cpx, cpy, x, y float64)
	BezierCurveTo(cp1x, cp1y, cp2x, cp2y, x, y float64)
	Ellipse(x, y, rx, ry, rotation, startAngle, endAngle float64, counterclockwise bool)
	RoundRect(x, y, w, h float64, radii []float64)
	FillPath(rule FillRule)
	StrokePath()
	Clip(rule FillRule)

	// Auxiliary operations used by read-back and editors.
	PutPixels(x, y, w, h int, pixels []byte, dirty *tinycart.DirtyRect)
	ReadPixels(x, y, w, h int) []byte
	WritePixels(x, y, w, h int, pixels []byte)
	IsPointInPath(x, y float64, rule FillRule) bool
	IsPointInStroke(x, y float64) bool
	Snapshot() *image.RGBA
	EncodePNG(w io.Writer) error
}

// BlankPixels allocates a zeroed RGBA pixel block for a w x h rectangle.
func BlankPixels(w, h int) []byte {
	if w <= 0 || h <= 0 {
		return nil
	}
	return make([]byte, w*h*4)
}
