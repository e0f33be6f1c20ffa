// Copyright 2026 The tinycart Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"image/color"
	"testing"

	"github.com/tinycart/tinycart"
)

func TestRendererSimplifiedPrimitives(t *testing.T) {
	s := NewImageSurface(20, 20)
	r := NewRenderer(s)

	r.Render(tinycart.Batch{
		tinycart.SetColorCommand{R: 255, G: 0, B: 0},
		tinycart.FillRectCommand{X: 0, Y: 0, W: 10, H: 10},
		tinycart.SetColorCommand{R: 0, G: 0, B: 255},
		tinycart.FillCircleCommand{X: 15, Y: 15, R: 4},
	})

	if got := pixelAt(s, 5, 5); got != red {
		t.Errorf("rect = %v, want red", got)
	}
	if got := pixelAt(s, 15, 15); got != blue {
		t.Errorf("circle = %v, want blue", got)
	}
}

func TestRendererSetColorAlpha(t *testing.T) {
	s := NewImageSurface(10, 10)
	r := NewRenderer(s)

	half := 0.5
	r.Render(tinycart.Batch{
		tinycart.SetColorCommand{R: 0, G: 0, B: 0},
		tinycart.FillRectCommand{X: 0, Y: 0, W: 10, H: 10},
		tinycart.SetColorCommand{R: 255, G: 255, B: 255, Alpha: &half},
		tinycart.FillRectCommand{X: 0, Y: 0, W: 10, H: 10},
	})

	got := pixelAt(s, 5, 5)
	if got.R < 120 || got.R > 136 {
		t.Errorf("half-alpha blend = %v, want mid gray", got)
	}
}

func TestRendererUnknownCommandSkipped(t *testing.T) {
	s := NewImageSurface(10, 10)
	r := NewRenderer(s)

	r.Render(tinycart.Batch{
		tinycart.UnknownCommand{Op: "sparkle"},
		tinycart.SetColorCommand{R: 0, G: 255, B: 0},
		tinycart.FillRectCommand{X: 0, Y: 0, W: 10, H: 10},
	})

	if got := pixelAt(s, 5, 5); got != green {
		t.Errorf("after unknown = %v, want green (batch continued)", got)
	}
}

func TestRendererPathBatch(t *testing.T) {
	s := NewImageSurface(30, 30)
	r := NewRenderer(s)

	r.Render(tinycart.Batch{
		tinycart.SetFillStyleCommand{Style: tinycart.Style{Kind: "color", Color: "#00ff00"}},
		tinycart.BeginPathCommand{},
		tinycart.MoveToCommand{X: 5, Y: 5},
		tinycart.LineToCommand{X: 25, Y: 5},
		tinycart.LineToCommand{X: 25, Y: 25},
		tinycart.LineToCommand{X: 5, Y: 25},
		tinycart.ClosePathCommand{},
		tinycart.FillCommand{},
	})

	if got := pixelAt(s, 15, 15); got != green {
		t.Errorf("path fill = %v, want green", got)
	}
}

func TestRendererTransformBatch(t *testing.T) {
	s := NewImageSurface(20, 20)
	r := NewRenderer(s)

	r.Render(tinycart.Batch{
		tinycart.SetColorCommand{R: 255, G: 0, B: 0},
		tinycart.SaveCommand{},
		tinycart.TranslateCommand{X: 10, Y: 10},
		tinycart.FillRectCommand{X: 0, Y: 0, W: 5, H: 5},
		tinycart.RestoreCommand{},
		tinycart.FillRectCommand{X: 0, Y: 0, W: 5, H: 5},
	})

	if got := pixelAt(s, 12, 12); got != red {
		t.Errorf("translated rect = %v, want red", got)
	}
	if got := pixelAt(s, 2, 2); got != red {
		t.Errorf("restored rect = %v, want red", got)
	}
}

func TestRendererFontOverrideIsLocal(t *testing.T) {
	s := NewImageSurface(60, 30)
	r := NewRenderer(s)

	r.Render(tinycart.Batch{
		tinycart.DrawTextCommand{Text: "A", X: 5, Y: 15, Size: 20, Family: "mono"},
	})

	size, family := s.Font()
	if size != 10 || family != "sans-serif" {
		t.Errorf("font after override = %v %q, want default restored", size, family)
	}
}

func TestRendererResizeCallback(t *testing.T) {
	s := NewImageSurface(10, 10)
	r := NewRenderer(s)

	var gotW, gotH int
	r.OnResize = func(w, h int) { gotW, gotH = w, h }
	r.Render(tinycart.Batch{
		tinycart.ResizeCanvasCommand{Width: 32, Height: 24},
	})

	if gotW != 32 || gotH != 24 {
		t.Errorf("OnResize got %dx%d, want 32x24", gotW, gotH)
	}
	w, h := s.Size()
	if w != 32 || h != 24 {
		t.Errorf("surface size = %dx%d, want 32x24", w, h)
	}
}

func TestRendererBadStyleSkipsInstruction(t *testing.T) {
	s := NewImageSurface(10, 10)
	r := NewRenderer(s)

	r.Render(tinycart.Batch{
		tinycart.SetFillStyleCommand{Style: tinycart.Style{Kind: "color", Color: "banana"}},
		tinycart.SetColorCommand{R: 0, G: 0, B: 255},
		tinycart.FillRectCommand{X: 0, Y: 0, W: 10, H: 10},
	})

	if got := pixelAt(s, 5, 5); got != blue {
		t.Errorf("after bad style = %v, want blue (batch continued)", got)
	}
}

func TestRendererPutPixels(t *testing.T) {
	s := NewImageSurface(10, 10)
	r := NewRenderer(s)

	block := []byte{1, 2, 3, 255}
	r.Render(tinycart.Batch{
		tinycart.PutPixelsCommand{X: 4, Y: 4, Width: 1, Height: 1, Pixels: block},
	})

	if got := pixelAt(s, 4, 4); got != (color.RGBA{1, 2, 3, 255}) {
		t.Errorf("putPixels = %v, want {1 2 3 255}", got)
	}
}
