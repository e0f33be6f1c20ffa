// Copyright 2026 The tinycart Authors
// SPDX-License-Identifier: BSD-3-Clause

package tinycart

// CommandType identifies the variant of a draw instruction.
// The numeric values are internal; the wire format identifies variants
// by their string tag (see Op).
type CommandType uint8

const (
	// Canvas-wide commands
	CmdClear CommandType = iota
	CmdResizeCanvas

	// Simplified direct-color commands
	CmdSetColor

	// Line style commands
	CmdSetLineWidth
	CmdSetLineCap
	CmdSetLineJoin
	CmdSetMiterLimit
	CmdSetLineDash
	CmdSetLineDashOffset

	// Shadow commands
	CmdSetShadow
	CmdSetShadowColor
	CmdSetShadowBlur
	CmdSetShadowOffsetX
	CmdSetShadowOffsetY
	CmdClearShadow

	// Style commands
	CmdSetFillStyle
	CmdSetStrokeStyle
	CmdSetGlobalAlpha
	CmdSetCompositeOperation
	CmdSetImageSmoothing
	CmdSetTextAlign
	CmdSetTextBaseline
	CmdSetDirection
	CmdSetFilter

	// Geometry primitives
	CmdDrawRect
	CmdFillRect
	CmdDrawCircle
	CmdFillCircle
	CmdDrawLine
	CmdDrawText
	CmdStrokeText
	CmdDrawImage

	// Path construction and consumption
	CmdBeginPath
	CmdClosePath
	CmdMoveTo
	CmdLineTo
	CmdArc
	CmdArcTo
	CmdQuadraticCurveTo
	CmdBezierCurveTo
	CmdEllipse
	CmdRoundRect
	CmdFill
	CmdStroke
	CmdClip

	// Transform stack
	CmdTranslate
	CmdRotate
	CmdScale
	CmdTransform
	CmdSetTransform
	CmdResetTransform
	CmdSave
	CmdRestore

	// Raw pixel access
	CmdPutPixels

	// CmdUnknown is produced by the decoder for tags this version does
	// not recognize. Renderers skip it.
	CmdUnknown
)

// commandOps maps CommandType values to their wire tags.
var commandOps = [...]string{
	CmdClear:                 "clear",
	CmdResizeCanvas:          "resizeCanvas",
	CmdSetColor:              "setColor",
	CmdSetLineWidth:          "setLineWidth",
	CmdSetLineCap:            "setLineCap",
	CmdSetLineJoin:           "setLineJoin",
	CmdSetMiterLimit:         "setMiterLimit",
	CmdSetLineDash:           "setLineDash",
	CmdSetLineDashOffset:     "setLineDashOffset",
	CmdSetShadow:             "setShadow",
	CmdSetShadowColor:        "setShadowColor",
	CmdSetShadowBlur:         "setShadowBlur",
	CmdSetShadowOffsetX:      "setShadowOffsetX",
	CmdSetShadowOffsetY:      "setShadowOffsetY",
	CmdClearShadow:           "clearShadow",
	CmdSetFillStyle:          "setFillStyle",
	CmdSetStrokeStyle:        "setStrokeStyle",
	CmdSetGlobalAlpha:        "setGlobalAlpha",
	CmdSetCompositeOperation: "setCompositeOperation",
	CmdSetImageSmoothing:     "setImageSmoothing",
	CmdSetTextAlign:          "setTextAlign",
	CmdSetTextBaseline:       "setTextBaseline",
	CmdSetDirection:          "setDirection",
	CmdSetFilter:             "setFilter",
	CmdDrawRect:              "drawRect",
	CmdFillRect:              "fillRect",
	CmdDrawCircle:            "drawCircle",
	CmdFillCircle:            "fillCircle",
	CmdDrawLine:              "drawLine",
	CmdDrawText:              "drawText",
	CmdStrokeText:            "strokeText",
	CmdDrawImage:             "drawImage",
	CmdBeginPath:             "beginPath",
	CmdClosePath:             "closePath",
	CmdMoveTo:                "moveTo",
	CmdLineTo:                "lineTo",
	CmdArc:                   "arc",
	CmdArcTo:                 "arcTo",
	CmdQuadraticCurveTo:      "quadraticCurveTo",
	CmdBezierCurveTo:         "bezierCurveTo",
	CmdEllipse:               "ellipse",
	CmdRoundRect:             "roundRect",
	CmdFill:                  "fill",
	CmdStroke:                "stroke",
	CmdClip:                  "clip",
	CmdTranslate:             "translate",
	CmdRotate:                "rotate",
	CmdScale:                 "scale",
	CmdTransform:             "transform",
	CmdSetTransform:          "setTransform",
	CmdResetTransform:        "resetTransform",
	CmdSave:                  "save",
	CmdRestore:               "restore",
	CmdPutPixels:             "putPixels",
	CmdUnknown:               "unknown",
}

// Op returns the wire tag for a CommandType.
func (c CommandType) Op() string {
	if int(c) < len(commandOps) {
		return commandOps[c]
	}
	return "unknown"
}

// String returns the wire tag, for diagnostics.
func (c CommandType) String() string { return c.Op() }

// Command is the interface implemented by all draw-instruction variants.
// Within a batch, commands are applied strictly in submission order.
type Command interface {
	// Type returns the CommandType for this command.
	Type() CommandType
}

// Batch is one frame's ordered sequence of draw instructions. A batch is
// produced by one script-side tick and consumed by exactly one
// presentation-side frame; an unread batch is overwritten by the next one.
type Batch []Command

// --------------------------------------------------------------------------
// Canvas-wide commands
// --------------------------------------------------------------------------

// ClearCommand erases the whole drawing surface.
type ClearCommand struct{}

func (ClearCommand) Type() CommandType { return CmdClear }

// ResizeCanvasCommand changes the logical canvas size.
type ResizeCanvasCommand struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (ResizeCanvasCommand) Type() CommandType { return CmdResizeCanvas }

// --------------------------------------------------------------------------
// Simplified direct-color commands
// --------------------------------------------------------------------------

// SetColorCommand sets the active color used by the simplified geometry
// primitives (DrawRect, FillRect, DrawCircle, ...). Components are 0-255.
// Alpha is optional; nil means fully opaque.
type SetColorCommand struct {
	R     uint8    `json:"r"`
	G     uint8    `json:"g"`
	B     uint8    `json:"b"`
	Alpha *float64 `json:"a,omitempty"`
}

func (SetColorCommand) Type() CommandType { return CmdSetColor }

// --------------------------------------------------------------------------
// Line style commands
// --------------------------------------------------------------------------

// SetLineWidthCommand sets the stroke line width in logical pixels.
type SetLineWidthCommand struct {
	Width float64 `json:"width"`
}

func (SetLineWidthCommand) Type() CommandType { return CmdSetLineWidth }

// SetLineCapCommand sets the line cap style: "butt", "round" or "square".
type SetLineCapCommand struct {
	Cap string `json:"cap"`
}

func (SetLineCapCommand) Type() CommandType { return CmdSetLineCap }

// SetLineJoinCommand sets the line join style: "miter", "round" or "bevel".
type SetLineJoinCommand struct {
	Join string `json:"join"`
}

func (SetLineJoinCommand) Type() CommandType { return CmdSetLineJoin }

// SetMiterLimitCommand sets the miter limit for miter joins.
type SetMiterLimitCommand struct {
	Limit float64 `json:"limit"`
}

func (SetMiterLimitCommand) Type() CommandType { return CmdSetMiterLimit }

// SetLineDashCommand sets the dash pattern (alternating dash and gap
// lengths). Empty means solid.
type SetLineDashCommand struct {
	Segments []float64 `json:"segments"`
}

func (SetLineDashCommand) Type() CommandType { return CmdSetLineDash }

// SetLineDashOffsetCommand sets the starting offset into the dash pattern.
type SetLineDashOffsetCommand struct {
	Offset float64 `json:"offset"`
}

func (SetLineDashOffsetCommand) Type() CommandType { return CmdSetLineDashOffset }

// --------------------------------------------------------------------------
// Shadow commands
// --------------------------------------------------------------------------

// SetShadowCommand sets all shadow parameters atomically.
type SetShadowCommand struct {
	Color   string  `json:"color"`
	Blur    float64 `json:"blur"`
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
}

func (SetShadowCommand) Type() CommandType { return CmdSetShadow }

// SetShadowColorCommand sets only the shadow color.
type SetShadowColorCommand struct {
	Color string `json:"color"`
}

func (SetShadowColorCommand) Type() CommandType { return CmdSetShadowColor }

// SetShadowBlurCommand sets only the shadow blur radius.
type SetShadowBlurCommand struct {
	Blur float64 `json:"blur"`
}

func (SetShadowBlurCommand) Type() CommandType { return CmdSetShadowBlur }

// SetShadowOffsetXCommand sets only the horizontal shadow offset.
type SetShadowOffsetXCommand struct {
	X float64 `json:"x"`
}

func (SetShadowOffsetXCommand) Type() CommandType { return CmdSetShadowOffsetX }

// SetShadowOffsetYCommand sets only the vertical shadow offset.
type SetShadowOffsetYCommand struct {
	Y float64 `json:"y"`
}

func (SetShadowOffsetYCommand) Type() CommandType { return CmdSetShadowOffsetY }

// ClearShadowCommand disables the shadow entirely.
type ClearShadowCommand struct{}

func (ClearShadowCommand) Type() CommandType { return CmdClearShadow }

// --------------------------------------------------------------------------
// Style commands
// --------------------------------------------------------------------------

// Style describes a fill or stroke style: a plain color, a gradient, or a
// repeating pattern. Kind selects which of the remaining fields apply.
type Style struct {
	// Kind is one of "color", "linearGradient", "radialGradient", "pattern".
	Kind string `json:"kind"`

	// Color is a CSS-style color string ("#rrggbb", "#rgb", "#rrggbbaa").
	Color string `json:"color,omitempty"`

	// Gradient geometry. Linear gradients run from (X0,Y0) to (X1,Y1);
	// radial gradients between circles (X0,Y0,R0) and (X1,Y1,R1).
	X0 float64 `json:"x0,omitempty"`
	Y0 float64 `json:"y0,omitempty"`
	X1 float64 `json:"x1,omitempty"`
	Y1 float64 `json:"y1,omitempty"`
	R0 float64 `json:"r0,omitempty"`
	R1 float64 `json:"r1,omitempty"`

	// Stops are the gradient color stops, offsets in [0,1].
	Stops []GradientStop `json:"stops,omitempty"`

	// Pattern source: raw RGBA pixels and the repetition mode
	// ("repeat", "repeat-x", "repeat-y", "no-repeat").
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
	Pixels []byte `json:"pixels,omitempty"`
	Repeat string `json:"repeat,omitempty"`
}

// GradientStop is a color at a position along a gradient.
type GradientStop struct {
	Offset float64 `json:"offset"`
	Color  string  `json:"color"`
}

// SetFillStyleCommand sets the general fill style.
type SetFillStyleCommand struct {
	Style Style `json:"style"`
}

func (SetFillStyleCommand) Type() CommandType { return CmdSetFillStyle }

// SetStrokeStyleCommand sets the general stroke style.
type SetStrokeStyleCommand struct {
	Style Style `json:"style"`
}

func (SetStrokeStyleCommand) Type() CommandType { return CmdSetStrokeStyle }

// SetGlobalAlphaCommand sets the global alpha multiplier, 0-1.
type SetGlobalAlphaCommand struct {
	Alpha float64 `json:"alpha"`
}

func (SetGlobalAlphaCommand) Type() CommandType { return CmdSetGlobalAlpha }

// SetCompositeOperationCommand sets the global composite mode
// ("source-over", "lighter", ...). Unsupported modes render as source-over.
type SetCompositeOperationCommand struct {
	Mode string `json:"mode"`
}

func (SetCompositeOperationCommand) Type() CommandType { return CmdSetCompositeOperation }

// SetImageSmoothingCommand toggles image interpolation for blits.
type SetImageSmoothingCommand struct {
	Enabled bool `json:"enabled"`
}

func (SetImageSmoothingCommand) Type() CommandType { return CmdSetImageSmoothing }

// SetTextAlignCommand sets the horizontal text anchor
// ("left", "center", "right", "start", "end").
type SetTextAlignCommand struct {
	Align string `json:"align"`
}

func (SetTextAlignCommand) Type() CommandType { return CmdSetTextAlign }

// SetTextBaselineCommand sets the vertical text anchor
// ("top", "middle", "alphabetic", "bottom").
type SetTextBaselineCommand struct {
	Baseline string `json:"baseline"`
}

func (SetTextBaselineCommand) Type() CommandType { return CmdSetTextBaseline }

// SetDirectionCommand sets the text direction ("ltr", "rtl", "inherit").
type SetDirectionCommand struct {
	Direction string `json:"direction"`
}

func (SetDirectionCommand) Type() CommandType { return CmdSetDirection }

// SetFilterCommand sets the CSS-style filter string. Renderers that do not
// implement a given filter ignore it.
type SetFilterCommand struct {
	Filter string `json:"filter"`
}

func (SetFilterCommand) Type() CommandType { return CmdSetFilter }

// --------------------------------------------------------------------------
// Geometry primitives
// --------------------------------------------------------------------------

// DrawRectCommand strokes a rectangle outline in the active color.
type DrawRectCommand struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

func (DrawRectCommand) Type() CommandType { return CmdDrawRect }

// FillRectCommand fills a rectangle in the active color.
type FillRectCommand struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

func (FillRectCommand) Type() CommandType { return CmdFillRect }

// DrawCircleCommand strokes a circle outline in the active color.
type DrawCircleCommand struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	R float64 `json:"r"`
}

func (DrawCircleCommand) Type() CommandType { return CmdDrawCircle }

// FillCircleCommand fills a circle in the active color.
type FillCircleCommand struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	R float64 `json:"r"`
}

func (FillCircleCommand) Type() CommandType { return CmdFillCircle }

// DrawLineCommand strokes a line segment in the active color.
type DrawLineCommand struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

func (DrawLineCommand) Type() CommandType { return CmdDrawLine }

// DrawTextCommand fills text at a position. Size and Family, when present,
// override the active font for this instruction only.
type DrawTextCommand struct {
	Text   string  `json:"text"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Size   float64 `json:"size,omitempty"`
	Family string  `json:"family,omitempty"`
}

func (DrawTextCommand) Type() CommandType { return CmdDrawText }

// StrokeTextCommand strokes text outlines at a position. Size and Family
// behave as in DrawTextCommand.
type StrokeTextCommand struct {
	Text   string  `json:"text"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Size   float64 `json:"size,omitempty"`
	Family string  `json:"family,omitempty"`
}

func (StrokeTextCommand) Type() CommandType { return CmdStrokeText }

// DrawImageCommand blits raw RGBA pixels at a destination position,
// optionally scaled to DW x DH.
type DrawImageCommand struct {
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Pixels []byte  `json:"pixels"`
	DX     float64 `json:"dx"`
	DY     float64 `json:"dy"`
	DW     float64 `json:"dw,omitempty"`
	DH     float64 `json:"dh,omitempty"`
}

func (DrawImageCommand) Type() CommandType { return CmdDrawImage }

// --------------------------------------------------------------------------
// Path construction and consumption
// --------------------------------------------------------------------------

// BeginPathCommand starts a new empty path.
type BeginPathCommand struct{}

func (BeginPathCommand) Type() CommandType { return CmdBeginPath }

// ClosePathCommand closes the current subpath.
type ClosePathCommand struct{}

func (ClosePathCommand) Type() CommandType { return CmdClosePath }

// MoveToCommand starts a new subpath at (X, Y).
type MoveToCommand struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (MoveToCommand) Type() CommandType { return CmdMoveTo }

// LineToCommand appends a line segment to (X, Y).
type LineToCommand struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (LineToCommand) Type() CommandType { return CmdLineTo }

// ArcCommand appends a circular arc.
type ArcCommand struct {
	X                float64 `json:"x"`
	Y                float64 `json:"y"`
	Radius           float64 `json:"radius"`
	StartAngle       float64 `json:"startAngle"`
	EndAngle         float64 `json:"endAngle"`
	Counterclockwise bool    `json:"counterclockwise,omitempty"`
}

func (ArcCommand) Type() CommandType { return CmdArc }

// ArcToCommand appends an arc tangent to two lines.
type ArcToCommand struct {
	X1     float64 `json:"x1"`
	Y1     float64 `json:"y1"`
	X2     float64 `json:"x2"`
	Y2     float64 `json:"y2"`
	Radius float64 `json:"radius"`
}

func (ArcToCommand) Type() CommandType { return CmdArcTo }

// QuadraticCurveToCommand appends a quadratic Bezier segment.
type QuadraticCurveToCommand struct {
	CPX float64 `json:"cpx"`
	CPY float64 `json:"cpy"`
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
}

func (QuadraticCurveToCommand) Type() CommandType { return CmdQuadraticCurveTo }

// BezierCurveToCommand appends a cubic Bezier segment.
type BezierCurveToCommand struct {
	CP1X float64 `json:"cp1x"`
	CP1Y float64 `json:"cp1y"`
	CP2X float64 `json:"cp2x"`
	CP2Y float64 `json:"cp2y"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

func (BezierCurveToCommand) Type() CommandType { return CmdBezierCurveTo }

// EllipseCommand appends an elliptical arc.
type EllipseCommand struct {
	X                float64 `json:"x"`
	Y                float64 `json:"y"`
	RadiusX          float64 `json:"radiusX"`
	RadiusY          float64 `json:"radiusY"`
	Rotation         float64 `json:"rotation"`
	StartAngle       float64 `json:"startAngle"`
	EndAngle         float64 `json:"endAngle"`
	Counterclockwise bool    `json:"counterclockwise,omitempty"`
}

func (EllipseCommand) Type() CommandType { return CmdEllipse }

// RoundRectCommand appends a rounded rectangle subpath. Radii follows the
// canvas convention: 1 value for all corners, or up to 4 per-corner values.
type RoundRectCommand struct {
	X     float64   `json:"x"`
	Y     float64   `json:"y"`
	W     float64   `json:"w"`
	H     float64   `json:"h"`
	Radii []float64 `json:"radii,omitempty"`
}

func (RoundRectCommand) Type() CommandType { return CmdRoundRect }

// FillCommand fills the current path with the fill style.
// Rule is "nonzero" (default) or "evenodd".
type FillCommand struct {
	Rule string `json:"rule,omitempty"`
}

func (FillCommand) Type() CommandType { return CmdFill }

// StrokeCommand strokes the current path with the stroke style.
type StrokeCommand struct{}

func (StrokeCommand) Type() CommandType { return CmdStroke }

// ClipCommand intersects the clip region with the current path.
type ClipCommand struct {
	Rule string `json:"rule,omitempty"`
}

func (ClipCommand) Type() CommandType { return CmdClip }

// --------------------------------------------------------------------------
// Transform stack
// --------------------------------------------------------------------------

// TranslateCommand translates the current transform.
type TranslateCommand struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (TranslateCommand) Type() CommandType { return CmdTranslate }

// RotateCommand rotates the current transform (radians).
type RotateCommand struct {
	Angle float64 `json:"angle"`
}

func (RotateCommand) Type() CommandType { return CmdRotate }

// ScaleCommand scales the current transform.
type ScaleCommand struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (ScaleCommand) Type() CommandType { return CmdScale }

// TransformCommand multiplies the current transform by a matrix given in
// canvas order: a (m11), b (m12), c (m21), d (m22), e (dx), f (dy).
type TransformCommand struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
	C float64 `json:"c"`
	D float64 `json:"d"`
	E float64 `json:"e"`
	F float64 `json:"f"`
}

func (TransformCommand) Type() CommandType { return CmdTransform }

// SetTransformCommand replaces the current transform (canvas order, see
// TransformCommand).
type SetTransformCommand struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
	C float64 `json:"c"`
	D float64 `json:"d"`
	E float64 `json:"e"`
	F float64 `json:"f"`
}

func (SetTransformCommand) Type() CommandType { return CmdSetTransform }

// ResetTransformCommand resets the current transform to identity.
type ResetTransformCommand struct{}

func (ResetTransformCommand) Type() CommandType { return CmdResetTransform }

// SaveCommand pushes the full graphics state onto the state stack.
type SaveCommand struct{}

func (SaveCommand) Type() CommandType { return CmdSave }

// RestoreCommand pops the state stack. No-op when the stack is empty.
type RestoreCommand struct{}

func (RestoreCommand) Type() CommandType { return CmdRestore }

// --------------------------------------------------------------------------
// Raw pixel access
// --------------------------------------------------------------------------

// DirtyRect is an optional sub-rectangle limiting a PutPixels write,
// in coordinates relative to the pixel block.
type DirtyRect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// PutPixelsCommand writes raw RGBA pixels at (X, Y), bypassing transform,
// alpha and composite state.
type PutPixelsCommand struct {
	X      int        `json:"x"`
	Y      int        `json:"y"`
	Width  int        `json:"width"`
	Height int        `json:"height"`
	Pixels []byte     `json:"pixels"`
	Dirty  *DirtyRect `json:"dirty,omitempty"`
}

func (PutPixelsCommand) Type() CommandType { return CmdPutPixels }

// --------------------------------------------------------------------------
// Forward compatibility
// --------------------------------------------------------------------------

// UnknownCommand holds a wire tag this version does not recognize.
// It is preserved through a batch so instruction counts stay stable, and
// renderers skip it.
type UnknownCommand struct {
	Op string `json:"-"`
}

func (UnknownCommand) Type() CommandType { return CmdUnknown }
