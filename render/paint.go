// Copyright 2026 The tinycart Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"
	"image/color"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/tinycart/tinycart"
)

// Paint produces a color for a device-space position. Solid colors ignore
// the position; gradients and patterns evaluate it per pixel.
type Paint interface {
	ColorAt(x, y float64) color.RGBA
}

// Solid returns a paint with one color everywhere.
func Solid(c color.RGBA) Paint { return solidPaint{c} }

type solidPaint struct{ c color.RGBA }

func (p solidPaint) ColorAt(x, y float64) color.RGBA { return p.c }

// ParseColor parses a CSS-style color string: "#rgb", "#rgba", "#rrggbb",
// "#rrggbbaa", or an X11/W3C color name.
func ParseColor(s string) (color.RGBA, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if strings.HasPrefix(s, "#") {
		return parseHexColor(s)
	}
	if c, ok := namedColors[s]; ok {
		return c, nil
	}
	return color.RGBA{}, fmt.Errorf("render: unsupported color %q", s)
}

// namedColors covers the handful of names the script runtime emits; all
// other colors arrive as hex strings.
var namedColors = map[string]color.RGBA{
	"black":       {0, 0, 0, 255},
	"white":       {255, 255, 255, 255},
	"red":         {255, 0, 0, 255},
	"green":       {0, 128, 0, 255},
	"blue":        {0, 0, 255, 255},
	"yellow":      {255, 255, 0, 255},
	"cyan":        {0, 255, 255, 255},
	"magenta":     {255, 0, 255, 255},
	"gray":        {128, 128, 128, 255},
	"transparent": {},
}

func parseHexColor(s string) (color.RGBA, error) {
	hex := s[1:]
	var alpha uint8 = 255
	switch len(hex) {
	case 4: // #rgba
		v, err := strconv.ParseUint(hex[3:4], 16, 8)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("render: bad color %q", s)
		}
		alpha = uint8(v * 17)
		hex = hex[:3]
	case 8: // #rrggbbaa
		v, err := strconv.ParseUint(hex[6:8], 16, 8)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("render: bad color %q", s)
		}
		alpha = uint8(v)
		hex = hex[:6]
	}
	c, err := colorful.Hex("#" + hex)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("render: bad color %q", s)
	}
	r, g, b := c.RGB255()
	return color.RGBA{r, g, b, alpha}, nil
}

// gradientStop is a resolved color stop.
type gradientStop struct {
	offset float64
	color  color.RGBA
}

func resolveStops(stops []tinycart.GradientStop) ([]gradientStop, error) {
	out := make([]gradientStop, 0, len(stops))
	for _, s := range stops {
		c, err := ParseColor(s.Color)
		if err != nil {
			return nil, err
		}
		out = append(out, gradientStop{offset: s.Offset, color: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].offset < out[j].offset })
	return out, nil
}

// colorAtOffset interpolates the stop list at t, clamped to the ends.
func colorAtOffset(stops []gradientStop, t float64) color.RGBA {
	if len(stops) == 0 {
		return color.RGBA{}
	}
	if t <= stops[0].offset {
		return stops[0].color
	}
	last := stops[len(stops)-1]
	if t >= last.offset {
		return last.color
	}
	for i := 1; i < len(stops); i++ {
		if t <= stops[i].offset {
			a, b := stops[i-1], stops[i]
			span := b.offset - a.offset
			if span <= 0 {
				return b.color
			}
			f := (t - a.offset) / span
			return lerpColor(a.color, b.color, f)
		}
	}
	return last.color
}

func lerpColor(a, b color.RGBA, t float64) color.RGBA {
	lerp := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t))
	}
	return color.RGBA{
		R: lerp(a.R, b.R),
		G: lerp(a.G, b.G),
		B: lerp(a.B, b.B),
		A: lerp(a.A, b.A),
	}
}

type linearGradient struct {
	x0, y0, dx, dy float64
	lenSq          float64
	stops          []gradientStop
}

func (p linearGradient) ColorAt(x, y float64) color.RGBA {
	if p.lenSq == 0 {
		return colorAtOffset(p.stops, 0)
	}
	t := ((x-p.x0)*p.dx + (y-p.y0)*p.dy) / p.lenSq
	return colorAtOffset(p.stops, t)
}

type radialGradient struct {
	x1, y1, r0, r1 float64
	stops          []gradientStop
}

func (p radialGradient) ColorAt(x, y float64) color.RGBA {
	d := math.Hypot(x-p.x1, y-p.y1)
	span := p.r1 - p.r0
	if span <= 0 {
		return colorAtOffset(p.stops, 1)
	}
	return colorAtOffset(p.stops, (d-p.r0)/span)
}

type patternPaint struct {
	w, h             int
	pixels           []byte
	repeatX, repeatY bool
}

func (p patternPaint) ColorAt(x, y float64) color.RGBA {
	ix, iy := int(math.Floor(x)), int(math.Floor(y))
	if p.repeatX {
		ix = ((ix % p.w) + p.w) % p.w
	} else if ix < 0 || ix >= p.w {
		return color.RGBA{}
	}
	if p.repeatY {
		iy = ((iy % p.h) + p.h) % p.h
	} else if iy < 0 || iy >= p.h {
		return color.RGBA{}
	}
	i := (iy*p.w + ix) * 4
	return color.RGBA{p.pixels[i], p.pixels[i+1], p.pixels[i+2], p.pixels[i+3]}
}

// PaintFromStyle converts a wire style descriptor to a Paint.
func PaintFromStyle(s tinycart.Style) (Paint, error) {
	switch s.Kind {
	case "", "color":
		c, err := ParseColor(s.Color)
		if err != nil {
			return nil, err
		}
		return solidPaint{c}, nil
	case "linearGradient":
		stops, err := resolveStops(s.Stops)
		if err != nil {
			return nil, err
		}
		dx, dy := s.X1-s.X0, s.Y1-s.Y0
		return linearGradient{
			x0: s.X0, y0: s.Y0, dx: dx, dy: dy,
			lenSq: dx*dx + dy*dy,
			stops: stops,
		}, nil
	case "radialGradient":
		stops, err := resolveStops(s.Stops)
		if err != nil {
			return nil, err
		}
		return radialGradient{x1: s.X1, y1: s.Y1, r0: s.R0, r1: s.R1, stops: stops}, nil
	case "pattern":
		if s.Width <= 0 || s.Height <= 0 || len(s.Pixels) < s.Width*s.Height*4 {
			return nil, fmt.Errorf("render: pattern needs %dx%dx4 pixels, got %d",
				s.Width, s.Height, len(s.Pixels))
		}
		return patternPaint{
			w: s.Width, h: s.Height, pixels: s.Pixels,
			repeatX: s.Repeat == "" || s.Repeat == "repeat" || s.Repeat == "repeat-x",
			repeatY: s.Repeat == "" || s.Repeat == "repeat" || s.Repeat == "repeat-y",
		}, nil
	default:
		return nil, fmt.Errorf("render: unknown style kind %q", s.Kind)
	}
}
