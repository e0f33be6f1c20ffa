// Copyright 2026 The tinycart Authors
// SPDX-License-Identifier: BSD-3-Clause

package tinycart

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	alpha := 0.5
	batch := Batch{
		ClearCommand{},
		SetColorCommand{R: 255, G: 128, B: 0, Alpha: &alpha},
		FillRectCommand{X: 10, Y: 20, W: 100, H: 50},
		SetFillStyleCommand{Style: Style{
			Kind: "linearGradient",
			X0:   0, Y0: 0, X1: 100, Y1: 0,
			Stops: []GradientStop{
				{Offset: 0, Color: "#ff0000"},
				{Offset: 1, Color: "#0000ff"},
			},
		}},
		DrawTextCommand{Text: "hello", X: 5, Y: 15, Size: 12},
	}

	encoded, err := EncodeBatch(batch)
	require.NoError(t, err)

	decoded, err := DecodeBatch(encoded)
	require.NoError(t, err)
	require.Equal(t, batch, decoded)
}

func TestEncodeBatchEnvelopes(t *testing.T) {
	encoded, err := EncodeBatch(Batch{
		ClearCommand{},
		FillRectCommand{X: 1, Y: 2, W: 3, H: 4},
	})
	require.NoError(t, err)

	var raw []map[string]any
	require.NoError(t, json.Unmarshal(encoded, &raw))
	require.Len(t, raw, 2)
	assert.Equal(t, "clear", raw[0]["op"])
	assert.Equal(t, "fillRect", raw[1]["op"])
	assert.Equal(t, 3.0, raw[1]["w"])
}

func TestDecodeUnknownOp(t *testing.T) {
	decoded, err := DecodeBatch([]byte(
		`[{"op":"fillRect","x":1,"y":2,"w":3,"h":4},{"op":"sparkle","n":7}]`))
	require.NoError(t, err)
	require.Len(t, decoded, 2)

	unknown, ok := decoded[1].(UnknownCommand)
	require.True(t, ok)
	assert.Equal(t, "sparkle", unknown.Op)
	assert.Equal(t, CmdUnknown, unknown.Type())
}

func TestDecodeMalformedBatch(t *testing.T) {
	_, err := DecodeBatch([]byte(`{"op":"clear"}`))
	assert.Error(t, err)

	_, err = DecodeBatch([]byte(`[{"op":42}]`))
	assert.Error(t, err)
}

func TestDecodeEmptyBatch(t *testing.T) {
	decoded, err := DecodeBatch([]byte(`[]`))
	require.NoError(t, err)
	assert.Empty(t, decoded)
}

func TestCommandOpNames(t *testing.T) {
	assert.Equal(t, "fillRect", CmdFillRect.Op())
	assert.Equal(t, "setColor", CmdSetColor.Op())
	assert.Equal(t, "unknown", CmdUnknown.Op())
	assert.Equal(t, "unknown", CommandType(250).Op())
}
