// Copyright 2026 The tinycart Authors
// SPDX-License-Identifier: BSD-3-Clause

package tinycart

import (
	"encoding/json"
	"fmt"
)

// The wire encoding for a draw batch is a JSON array of envelopes, one per
// command: {"op":"<tag>", ...variant fields}. It is human-readable, cheap to
// produce on the script side, and tolerant of tags added by newer versions
// of either side: an unrecognized op decodes to UnknownCommand instead of
// failing the batch.

// decodeAs unmarshals a raw envelope into a concrete command variant.
func decodeAs[T Command](raw json.RawMessage) (Command, error) {
	var c T
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	return c, nil
}

// commandDecoders maps wire tags to their variant decoders.
var commandDecoders = map[string]func(json.RawMessage) (Command, error){
	"clear":                 decodeAs[ClearCommand],
	"resizeCanvas":          decodeAs[ResizeCanvasCommand],
	"setColor":              decodeAs[SetColorCommand],
	"setLineWidth":          decodeAs[SetLineWidthCommand],
	"setLineCap":            decodeAs[SetLineCapCommand],
	"setLineJoin":           decodeAs[SetLineJoinCommand],
	"setMiterLimit":         decodeAs[SetMiterLimitCommand],
	"setLineDash":           decodeAs[SetLineDashCommand],
	"setLineDashOffset":     decodeAs[SetLineDashOffsetCommand],
	"setShadow":             decodeAs[SetShadowCommand],
	"setShadowColor":        decodeAs[SetShadowColorCommand],
	"setShadowBlur":         decodeAs[SetShadowBlurCommand],
	"setShadowOffsetX":      decodeAs[SetShadowOffsetXCommand],
	"setShadowOffsetY":      decodeAs[SetShadowOffsetYCommand],
	"clearShadow":           decodeAs[ClearShadowCommand],
	"setFillStyle":          decodeAs[SetFillStyleCommand],
	"setStrokeStyle":        decodeAs[SetStrokeStyleCommand],
	"setGlobalAlpha":        decodeAs[SetGlobalAlphaCommand],
	"setCompositeOperation": decodeAs[SetCompositeOperationCommand],
	"setImageSmoothing":     decodeAs[SetImageSmoothingCommand],
	"setTextAlign":          decodeAs[SetTextAlignCommand],
	"setTextBaseline":       decodeAs[SetTextBaselineCommand],
	"setDirection":          decodeAs[SetDirectionCommand],
	"setFilter":             decodeAs[SetFilterCommand],
	"drawRect":              decodeAs[DrawRectCommand],
	"fillRect":              decodeAs[FillRectCommand],
	"drawCircle":            decodeAs[DrawCircleCommand],
	"fillCircle":            decodeAs[FillCircleCommand],
	"drawLine":              decodeAs[DrawLineCommand],
	"drawText":              decodeAs[DrawTextCommand],
	"strokeText":            decodeAs[StrokeTextCommand],
	"drawImage":             decodeAs[DrawImageCommand],
	"beginPath":             decodeAs[BeginPathCommand],
	"closePath":             decodeAs[ClosePathCommand],
	"moveTo":                decodeAs[MoveToCommand],
	"lineTo":                decodeAs[LineToCommand],
	"arc":                   decodeAs[ArcCommand],
	"arcTo":                 decodeAs[ArcToCommand],
	"quadraticCurveTo":      decodeAs[QuadraticCurveToCommand],
	"bezierCurveTo":         decodeAs[BezierCurveToCommand],
	"ellipse":               decodeAs[EllipseCommand],
	"roundRect":             decodeAs[RoundRectCommand],
	"fill":                  decodeAs[FillCommand],
	"stroke":                decodeAs[StrokeCommand],
	"clip":                  decodeAs[ClipCommand],
	"translate":             decodeAs[TranslateCommand],
	"rotate":                decodeAs[RotateCommand],
	"scale":                 decodeAs[ScaleCommand],
	"transform":             decodeAs[TransformCommand],
	"setTransform":          decodeAs[SetTransformCommand],
	"resetTransform":        decodeAs[ResetTransformCommand],
	"save":                  decodeAs[SaveCommand],
	"restore":               decodeAs[RestoreCommand],
	"putPixels":             decodeAs[PutPixelsCommand],
}

// EncodeBatch serializes a batch into its wire form.
func EncodeBatch(b Batch) ([]byte, error) {
	out := make([]byte, 0, 64+32*len(b))
	out = append(out, '[')
	for i, cmd := range b {
		if i > 0 {
			out = append(out, ',')
		}
		body, err := json.Marshal(cmd)
		if err != nil {
			return nil, fmt.Errorf("encode %s command: %w", cmd.Type(), err)
		}
		out = append(out, '{')
		out = append(out, `"op":`...)
		out = append(out, '"')
		out = append(out, cmd.Type().Op()...)
		out = append(out, '"')
		// Splice the variant fields after the op tag. body is always a
		// JSON object for command structs.
		if len(body) > 2 {
			out = append(out, ',')
			out = append(out, body[1:len(body)-1]...)
		}
		out = append(out, '}')
	}
	out = append(out, ']')
	return out, nil
}

// DecodeBatch parses a wire-form batch. Envelopes with an unrecognized op
// decode to UnknownCommand; a malformed payload is an error, which callers
// treat as "no batch pending".
func DecodeBatch(data []byte) (Batch, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode draw batch: %w", err)
	}
	batch := make(Batch, 0, len(raw))
	for i, env := range raw {
		var probe struct {
			Op string `json:"op"`
		}
		if err := json.Unmarshal(env, &probe); err != nil {
			return nil, fmt.Errorf("decode draw batch: command %d: %w", i, err)
		}
		dec, ok := commandDecoders[probe.Op]
		if !ok {
			batch = append(batch, UnknownCommand{Op: probe.Op})
			continue
		}
		cmd, err := dec(env)
		if err != nil {
			return nil, fmt.Errorf("decode draw batch: command %d (%s): %w", i, probe.Op, err)
		}
		batch = append(batch, cmd)
	}
	return batch, nil
}
