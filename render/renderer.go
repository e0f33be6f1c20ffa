// Copyright 2026 The tinycart Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"image"
	"image/color"

	"github.com/tinycart/tinycart"
)

// Renderer executes decoded draw batches against a Surface.
//
// It holds the active color used by the simplified geometry instructions
// (setColor + drawRect/fillRect/...); everything else is state on the
// surface itself. Unrecognized instruction variants are skipped, so a
// newer script can drive an older renderer and lose only the
// instructions the renderer does not know.
type Renderer struct {
	surface Surface
	color   color.RGBA

	// OnResize, when set, is called after a resizeCanvas instruction so
	// the host can propagate the new logical size.
	OnResize func(w, h int)
}

// NewRenderer creates a renderer over a surface. The active color starts
// as opaque white.
func NewRenderer(s Surface) *Renderer {
	return &Renderer{
		surface: s,
		color:   color.RGBA{255, 255, 255, 255},
	}
}

// Surface returns the surface the renderer draws to.
func (r *Renderer) Surface() Surface { return r.surface }

// Render executes a batch in order. Individual instruction failures (a
// malformed color, an undersized pattern) skip that instruction only.
func (r *Renderer) Render(batch tinycart.Batch) {
	for _, cmd := range batch {
		r.apply(cmd)
	}
}

func (r *Renderer) apply(cmd tinycart.Command) {
	s := r.surface
	switch c := cmd.(type) {

	case tinycart.ClearCommand:
		s.Clear()
	case tinycart.ResizeCanvasCommand:
		s.Resize(c.Width, c.Height)
		if r.OnResize != nil {
			w, h := s.Size()
			r.OnResize(w, h)
		}

	case tinycart.SetColorCommand:
		a := uint8(255)
		if c.Alpha != nil {
			v := *c.Alpha
			if v < 0 {
				v = 0
			} else if v > 1 {
				v = 1
			}
			a = uint8(v*255 + 0.5)
		}
		r.color = color.RGBA{c.R, c.G, c.B, a}

	case tinycart.SetLineWidthCommand:
		s.SetLineWidth(c.Width)
	case tinycart.SetLineCapCommand:
		s.SetLineCap(ParseLineCap(c.Cap))
	case tinycart.SetLineJoinCommand:
		s.SetLineJoin(ParseLineJoin(c.Join))
	case tinycart.SetMiterLimitCommand:
		s.SetMiterLimit(c.Limit)
	case tinycart.SetLineDashCommand:
		s.SetLineDash(c.Segments)
	case tinycart.SetLineDashOffsetCommand:
		s.SetLineDashOffset(c.Offset)

	case tinycart.SetShadowCommand:
		col, err := ParseColor(c.Color)
		if err != nil {
			r.skip(cmd, err)
			return
		}
		s.SetShadow(col, c.Blur, c.OffsetX, c.OffsetY)
	case tinycart.SetShadowColorCommand:
		col, err := ParseColor(c.Color)
		if err != nil {
			r.skip(cmd, err)
			return
		}
		s.SetShadowColor(col)
	case tinycart.SetShadowBlurCommand:
		s.SetShadowBlur(c.Blur)
	case tinycart.SetShadowOffsetXCommand:
		s.SetShadowOffsetX(c.X)
	case tinycart.SetShadowOffsetYCommand:
		s.SetShadowOffsetY(c.Y)
	case tinycart.ClearShadowCommand:
		s.ClearShadow()

	case tinycart.SetFillStyleCommand:
		p, err := PaintFromStyle(c.Style)
		if err != nil {
			r.skip(cmd, err)
			return
		}
		s.SetFillStyle(p)
	case tinycart.SetStrokeStyleCommand:
		p, err := PaintFromStyle(c.Style)
		if err != nil {
			r.skip(cmd, err)
			return
		}
		s.SetStrokeStyle(p)
	case tinycart.SetGlobalAlphaCommand:
		s.SetGlobalAlpha(c.Alpha)
	case tinycart.SetCompositeOperationCommand:
		s.SetCompositeOperation(c.Mode)
	case tinycart.SetImageSmoothingCommand:
		s.SetImageSmoothing(c.Enabled)
	case tinycart.SetTextAlignCommand:
		s.SetTextAlign(c.Align)
	case tinycart.SetTextBaselineCommand:
		s.SetTextBaseline(c.Baseline)
	case tinycart.SetDirectionCommand:
		s.SetDirection(c.Direction)
	case tinycart.SetFilterCommand:
		s.SetFilter(c.Filter)

	case tinycart.DrawRectCommand:
		s.StrokeRect(c.X, c.Y, c.W, c.H, Solid(r.color))
	case tinycart.FillRectCommand:
		s.FillRect(c.X, c.Y, c.W, c.H, Solid(r.color))
	case tinycart.DrawCircleCommand:
		s.StrokeCircle(c.X, c.Y, c.R, Solid(r.color))
	case tinycart.FillCircleCommand:
		s.FillCircle(c.X, c.Y, c.R, Solid(r.color))
	case tinycart.DrawLineCommand:
		s.StrokeLine(c.X1, c.Y1, c.X2, c.Y2, Solid(r.color))

	case tinycart.DrawTextCommand:
		restore := r.overrideFont(c.Size, c.Family)
		s.FillText(c.Text, c.X, c.Y, Solid(r.color))
		restore()
	case tinycart.StrokeTextCommand:
		restore := r.overrideFont(c.Size, c.Family)
		s.StrokeText(c.Text, c.X, c.Y, Solid(r.color))
		restore()

	case tinycart.DrawImageCommand:
		img := rgbaFromPixels(c.Width, c.Height, c.Pixels)
		if img == nil {
			r.skip(cmd, errBadPixels)
			return
		}
		s.DrawImage(img, c.DX, c.DY, c.DW, c.DH)

	case tinycart.BeginPathCommand:
		s.BeginPath()
	case tinycart.ClosePathCommand:
		s.ClosePath()
	case tinycart.MoveToCommand:
		s.MoveTo(c.X, c.Y)
	case tinycart.LineToCommand:
		s.LineTo(c.X, c.Y)
	case tinycart.ArcCommand:
		s.Arc(c.X, c.Y, c.Radius, c.StartAngle, c.EndAngle, c.Counterclockwise)
	case tinycart.ArcToCommand:
		s.ArcTo(c.X1, c.Y1, c.X2, c.Y2, c.Radius)
	case tinycart.QuadraticCurveToCommand:
		s.QuadraticCurveTo(c.CPX, c.CPY, c.X, c.Y)
	case tinycart.BezierCurveToCommand:
		s.BezierCurveTo(c.CP1X, c.CP1Y, c.CP2X, c.CP2Y, c.X, c.Y)
	case tinycart.EllipseCommand:
		s.Ellipse(c.X, c.Y, c.RadiusX, c.RadiusY, c.Rotation,
			c.StartAngle, c.EndAngle, c.Counterclockwise)
	case tinycart.RoundRectCommand:
		s.RoundRect(c.X, c.Y, c.W, c.H, c.Radii)
	case tinycart.FillCommand:
		s.FillPath(ParseFillRule(c.Rule))
	case tinycart.StrokeCommand:
		s.StrokePath()
	case tinycart.ClipCommand:
		s.Clip(ParseFillRule(c.Rule))

	case tinycart.TranslateCommand:
		s.Translate(c.X, c.Y)
	case tinycart.RotateCommand:
		s.Rotate(c.Angle)
	case tinycart.ScaleCommand:
		s.Scale(c.X, c.Y)
	case tinycart.TransformCommand:
		s.Transform(tinycart.FromCanvas(c.A, c.B, c.C, c.D, c.E, c.F))
	case tinycart.SetTransformCommand:
		s.SetTransform(tinycart.FromCanvas(c.A, c.B, c.C, c.D, c.E, c.F))
	case tinycart.ResetTransformCommand:
		s.ResetTransform()
	case tinycart.SaveCommand:
		s.Save()
	case tinycart.RestoreCommand:
		s.Restore()

	case tinycart.PutPixelsCommand:
		s.PutPixels(c.X, c.Y, c.Width, c.Height, c.Pixels, c.Dirty)

	default:
		// Unknown variants (including UnknownCommand) are skipped so
		// newer scripts degrade instead of failing.
		tinycart.Logger().Debug("skipping unrecognized draw instruction",
			"op", cmd.Type().Op())
	}
}

// overrideFont applies an instruction-local font override and returns a
// function restoring the previous font. A zero size or empty family
// leaves that half of the font untouched.
func (r *Renderer) overrideFont(size float64, family string) func() {
	if size <= 0 && family == "" {
		return func() {}
	}
	prevSize, prevFamily := r.surface.Font()
	r.surface.SetFont(size, family)
	return func() { r.surface.SetFont(prevSize, prevFamily) }
}

var errBadPixels = errors.New("render: pixel block smaller than its declared size")

// rgbaFromPixels wraps a raw RGBA byte block as an image, or nil if the
// block is undersized.
func rgbaFromPixels(w, h int, pixels []byte) *image.RGBA {
	if w <= 0 || h <= 0 || len(pixels) < w*h*4 {
		return nil
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	copy(img.Pix, pixels)
	return img
}

func (r *Renderer) skip(cmd tinycart.Command, err error) {
	tinycart.Logger().Debug("skipping draw instruction",
		"op", cmd.Type().Op(), "error", err)
}
