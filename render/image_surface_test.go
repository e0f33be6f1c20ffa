// Copyright 2026 The tinycart Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"bytes"
	"image/color"
	"image/png"
	"math"
	"testing"

	"github.com/tinycart/tinycart"
)

func pixelAt(s *ImageSurface, x, y int) color.RGBA {
	return s.Snapshot().RGBAAt(x, y)
}

var (
	red   = color.RGBA{255, 0, 0, 255}
	green = color.RGBA{0, 255, 0, 255}
	blue  = color.RGBA{0, 0, 255, 255}
)

func TestFillRect(t *testing.T) {
	s := NewImageSurface(20, 20)
	s.FillRect(5, 5, 10, 10, Solid(red))

	if got := pixelAt(s, 10, 10); got != red {
		t.Errorf("inside = %v, want red", got)
	}
	if got := pixelAt(s, 1, 1); got != (color.RGBA{}) {
		t.Errorf("outside = %v, want transparent", got)
	}
}

func TestClear(t *testing.T) {
	s := NewImageSurface(8, 8)
	s.FillRect(0, 0, 8, 8, Solid(red))
	s.Clear()
	if got := pixelAt(s, 4, 4); got != (color.RGBA{}) {
		t.Errorf("after clear = %v, want transparent", got)
	}
}

func TestResizeClears(t *testing.T) {
	s := NewImageSurface(8, 8)
	s.FillRect(0, 0, 8, 8, Solid(red))
	s.Resize(16, 12)

	w, h := s.Size()
	if w != 16 || h != 12 {
		t.Fatalf("size = %dx%d, want 16x12", w, h)
	}
	if got := pixelAt(s, 4, 4); got != (color.RGBA{}) {
		t.Errorf("after resize = %v, want transparent", got)
	}
}

func TestTranslateAffectsFill(t *testing.T) {
	s := NewImageSurface(20, 20)
	s.Translate(10, 10)
	s.FillRect(0, 0, 5, 5, Solid(green))

	if got := pixelAt(s, 12, 12); got != green {
		t.Errorf("translated fill = %v, want green", got)
	}
	if got := pixelAt(s, 2, 2); got != (color.RGBA{}) {
		t.Errorf("origin = %v, want transparent", got)
	}
}

func TestSaveRestore(t *testing.T) {
	s := NewImageSurface(20, 20)
	s.Save()
	s.Translate(10, 10)
	s.Restore()
	s.FillRect(0, 0, 5, 5, Solid(blue))

	if got := pixelAt(s, 2, 2); got != blue {
		t.Errorf("after restore = %v, want blue at origin", got)
	}
	if got := pixelAt(s, 12, 12); got != (color.RGBA{}) {
		t.Errorf("translated area = %v, want transparent", got)
	}
}

func TestFillCircle(t *testing.T) {
	s := NewImageSurface(40, 40)
	s.FillCircle(20, 20, 10, Solid(red))

	if got := pixelAt(s, 20, 20); got != red {
		t.Errorf("center = %v, want red", got)
	}
	if got := pixelAt(s, 20, 12); got != red {
		t.Errorf("inside edge = %v, want red", got)
	}
	if got := pixelAt(s, 2, 2); got != (color.RGBA{}) {
		t.Errorf("corner = %v, want transparent", got)
	}
}

func TestStrokeLineWidth(t *testing.T) {
	s := NewImageSurface(40, 40)
	s.SetLineWidth(6)
	s.StrokeLine(5, 20, 35, 20, Solid(blue))

	if got := pixelAt(s, 20, 20); got != blue {
		t.Errorf("on line = %v, want blue", got)
	}
	if got := pixelAt(s, 20, 22); got != blue {
		t.Errorf("within half-width = %v, want blue", got)
	}
	if got := pixelAt(s, 20, 30); got != (color.RGBA{}) {
		t.Errorf("far from line = %v, want transparent", got)
	}
}

func TestPathFillNonZero(t *testing.T) {
	s := NewImageSurface(30, 30)
	s.SetFillStyle(Solid(green))
	s.BeginPath()
	s.MoveTo(5, 5)
	s.LineTo(25, 5)
	s.LineTo(25, 25)
	s.LineTo(5, 25)
	s.ClosePath()
	s.FillPath(FillRuleNonZero)

	if got := pixelAt(s, 15, 15); got != green {
		t.Errorf("inside = %v, want green", got)
	}
}

func TestPathFillEvenOdd(t *testing.T) {
	s := NewImageSurface(40, 40)
	s.SetFillStyle(Solid(red))
	s.BeginPath()
	// Outer and inner rectangle wound the same way: even-odd leaves a
	// hole, non-zero would fill it.
	s.MoveTo(5, 5)
	s.LineTo(35, 5)
	s.LineTo(35, 35)
	s.LineTo(5, 35)
	s.ClosePath()
	s.MoveTo(15, 15)
	s.LineTo(25, 15)
	s.LineTo(25, 25)
	s.LineTo(15, 25)
	s.ClosePath()
	s.FillPath(FillRuleEvenOdd)

	if got := pixelAt(s, 10, 10); got != red {
		t.Errorf("ring = %v, want red", got)
	}
	if got := pixelAt(s, 20, 20); got != (color.RGBA{}) {
		t.Errorf("hole = %v, want transparent", got)
	}
}

func TestClipLimitsFill(t *testing.T) {
	s := NewImageSurface(30, 30)
	s.BeginPath()
	s.MoveTo(0, 0)
	s.LineTo(15, 0)
	s.LineTo(15, 30)
	s.LineTo(0, 30)
	s.ClosePath()
	s.Clip(FillRuleNonZero)

	s.FillRect(0, 0, 30, 30, Solid(blue))
	if got := pixelAt(s, 7, 15); got != blue {
		t.Errorf("inside clip = %v, want blue", got)
	}
	if got := pixelAt(s, 25, 15); got != (color.RGBA{}) {
		t.Errorf("outside clip = %v, want transparent", got)
	}
}

func TestGlobalAlphaBlends(t *testing.T) {
	s := NewImageSurface(10, 10)
	s.FillRect(0, 0, 10, 10, Solid(color.RGBA{0, 0, 0, 255}))
	s.SetGlobalAlpha(0.5)
	s.FillRect(0, 0, 10, 10, Solid(color.RGBA{255, 255, 255, 255}))

	got := pixelAt(s, 5, 5)
	if got.R < 120 || got.R > 136 {
		t.Errorf("blend = %v, want mid gray", got)
	}
	if got.A != 255 {
		t.Errorf("alpha = %d, want 255", got.A)
	}
}

func TestCompositeLighter(t *testing.T) {
	s := NewImageSurface(10, 10)
	s.FillRect(0, 0, 10, 10, Solid(color.RGBA{100, 0, 0, 255}))
	s.SetCompositeOperation("lighter")
	s.FillRect(0, 0, 10, 10, Solid(color.RGBA{100, 0, 0, 255}))

	got := pixelAt(s, 5, 5)
	if got.R < 195 || got.R > 205 {
		t.Errorf("additive red = %d, want about 200", got.R)
	}
}

func TestShadowOffset(t *testing.T) {
	s := NewImageSurface(40, 40)
	s.SetShadow(color.RGBA{0, 0, 0, 255}, 0, 8, 8)
	s.FillRect(10, 10, 10, 10, Solid(red))

	if got := pixelAt(s, 15, 15); got != red {
		t.Errorf("shape = %v, want red", got)
	}
	// Shadow area right+below the shape, outside the shape itself.
	if got := pixelAt(s, 25, 25); got.A == 0 {
		t.Error("shadow area is transparent, want dark pixels")
	}

	s.ClearShadow()
	s.FillRect(28, 2, 4, 4, Solid(blue))
	if got := pixelAt(s, 38, 12); got.A != 0 {
		t.Errorf("shadow after ClearShadow = %v, want none", got)
	}
}

func TestFillText(t *testing.T) {
	s := NewImageSurface(120, 40)
	s.SetTextBaseline("top")
	s.FillText("HELLO", 5, 5, Solid(red))

	found := 0
	img := s.Snapshot()
	for y := 0; y < 40; y++ {
		for x := 0; x < 120; x++ {
			if img.RGBAAt(x, y) == red {
				found++
			}
		}
	}
	if found < 20 {
		t.Errorf("text coverage = %d pixels, want at least 20", found)
	}
}

func TestPutAndReadPixels(t *testing.T) {
	s := NewImageSurface(10, 10)
	block := make([]byte, 2*2*4)
	for i := 0; i < 4; i++ {
		block[i*4+0] = 9
		block[i*4+1] = 8
		block[i*4+2] = 7
		block[i*4+3] = 255
	}
	s.PutPixels(3, 3, 2, 2, block, nil)

	got := s.ReadPixels(3, 3, 2, 2)
	if !bytes.Equal(got, block) {
		t.Errorf("ReadPixels = %v, want %v", got, block)
	}

	// Reads beyond the surface come back zeroed.
	edge := s.ReadPixels(9, 9, 2, 2)
	if len(edge) != 16 {
		t.Fatalf("edge read length = %d, want 16", len(edge))
	}
	for i := 4; i < 16; i++ {
		if edge[i] != 0 {
			t.Errorf("out-of-bounds byte %d = %d, want 0", i, edge[i])
			break
		}
	}
}

func TestPutPixelsDirtyRect(t *testing.T) {
	s := NewImageSurface(10, 10)
	block := make([]byte, 4*4*4)
	for i := range block {
		block[i] = 255
	}
	s.PutPixels(0, 0, 4, 4, block, &tinycart.DirtyRect{X: 1, Y: 1, W: 2, H: 2})

	if got := pixelAt(s, 0, 0); got.A != 0 {
		t.Errorf("outside dirty rect = %v, want untouched", got)
	}
	if got := pixelAt(s, 2, 2); got.A != 255 {
		t.Errorf("inside dirty rect = %v, want written", got)
	}
}

func TestIsPointInPath(t *testing.T) {
	s := NewImageSurface(30, 30)
	s.BeginPath()
	s.MoveTo(5, 5)
	s.LineTo(25, 5)
	s.LineTo(25, 25)
	s.LineTo(5, 25)
	s.ClosePath()

	if !s.IsPointInPath(15, 15, FillRuleNonZero) {
		t.Error("center should be in path")
	}
	if s.IsPointInPath(2, 2, FillRuleNonZero) {
		t.Error("corner should not be in path")
	}
	if !s.IsPointInPath(15, 15, FillRuleEvenOdd) {
		t.Error("center should be in path (even-odd)")
	}
}

func TestIsPointInStroke(t *testing.T) {
	s := NewImageSurface(30, 30)
	s.SetLineWidth(4)
	s.BeginPath()
	s.MoveTo(5, 15)
	s.LineTo(25, 15)

	if !s.IsPointInStroke(15, 16) {
		t.Error("point within half-width should be in stroke")
	}
	if s.IsPointInStroke(15, 25) {
		t.Error("distant point should not be in stroke")
	}
}

func TestArcBuildsCircle(t *testing.T) {
	s := NewImageSurface(40, 40)
	s.SetFillStyle(Solid(blue))
	s.BeginPath()
	s.Arc(20, 20, 10, 0, 2*math.Pi, false)
	s.ClosePath()
	s.FillPath(FillRuleNonZero)

	if got := pixelAt(s, 20, 20); got != blue {
		t.Errorf("circle center = %v, want blue", got)
	}
	if got := pixelAt(s, 3, 3); got != (color.RGBA{}) {
		t.Errorf("far corner = %v, want transparent", got)
	}
}

func TestEncodePNG(t *testing.T) {
	s := NewImageSurface(12, 8)
	s.FillRect(0, 0, 12, 8, Solid(green))

	var buf bytes.Buffer
	if err := s.EncodePNG(&buf); err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 12 || b.Dy() != 8 {
		t.Errorf("decoded size = %dx%d, want 12x8", b.Dx(), b.Dy())
	}
}

func TestBlankPixels(t *testing.T) {
	if got := BlankPixels(3, 2); len(got) != 24 {
		t.Errorf("BlankPixels(3,2) length = %d, want 24", len(got))
	}
	if BlankPixels(0, 5) != nil {
		t.Error("BlankPixels with zero width should be nil")
	}
}
