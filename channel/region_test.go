// Copyright 2026 The tinycart Authors
// SPDX-License-Identifier: BSD-3-Clause

package channel

import (
	"strings"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinycart/tinycart"
)

// The struct overlay must reproduce the documented byte offsets exactly;
// both execution contexts address the same block by offset.
func TestRegionLayout(t *testing.T) {
	var r Region

	offsets := map[string]uintptr{
		"frameReady":       unsafe.Offsetof(r.frameReady),
		"batchCount":       unsafe.Offsetof(r.batchCount),
		"batchLen":         unsafe.Offsetof(r.batchLen),
		"deltaBits":        unsafe.Offsetof(r.deltaBits),
		"totalBits":        unsafe.Offsetof(r.totalBits),
		"frameNumber":      unsafe.Offsetof(r.frameNumber),
		"mouseXBits":       unsafe.Offsetof(r.mouseXBits),
		"mouseYBits":       unsafe.Offsetof(r.mouseYBits),
		"mouseDown":        unsafe.Offsetof(r.mouseDown),
		"keysDownCount":    unsafe.Offsetof(r.keysDownCount),
		"keysDown":         unsafe.Offsetof(r.keysDown),
		"keysPressedCount": unsafe.Offsetof(r.keysPressedCount),
		"keysPressed":      unsafe.Offsetof(r.keysPressed),
		"mousePressed":     unsafe.Offsetof(r.mousePressed),
		"canvasWidth":      unsafe.Offsetof(r.canvasWidth),
		"canvasHeight":     unsafe.Offsetof(r.canvasHeight),
		"audioVolumeBits":  unsafe.Offsetof(r.audioVolumeBits),
		"audioFlags":       unsafe.Offsetof(r.audioFlags),
		"audioTrack":       unsafe.Offsetof(r.audioTrack),
		"gamepads":         unsafe.Offsetof(r.gamepads),
		"payload":          unsafe.Offsetof(r.payload),
	}
	want := map[string]uintptr{
		"frameReady":       offFrameReady,
		"batchCount":       offBatchCount,
		"batchLen":         offBatchLen,
		"deltaBits":        offDeltaTime,
		"totalBits":        offTotalTime,
		"frameNumber":      offFrameNumber,
		"mouseXBits":       offMouseX,
		"mouseYBits":       offMouseY,
		"mouseDown":        offMouseDown,
		"keysDownCount":    offKeysDownCount,
		"keysDown":         offKeysDown,
		"keysPressedCount": offKeysPressedCount,
		"keysPressed":      offKeysPressed,
		"mousePressed":     offMousePressed,
		"canvasWidth":      offCanvasWidth,
		"canvasHeight":     offCanvasHeight,
		"audioVolumeBits":  offAudioVolume,
		"audioFlags":       offAudioFlags,
		"audioTrack":       offAudioTrack,
		"gamepads":         offGamepads,
		"payload":          PayloadOffset,
	}
	for name, got := range offsets {
		assert.Equal(t, want[name], got, "offset of %s", name)
	}
	assert.Equal(t, uintptr(RegionSize), unsafe.Sizeof(r))
}

func TestKeySlotPacking(t *testing.T) {
	slot := make([]byte, keySlotSize)

	packKeySlot(slot, "KeyA")
	assert.Equal(t, "KeyA", unpackKeySlot(slot))

	// Longer names keep a valid 7-byte prefix.
	packKeySlot(slot, "ArrowLeft")
	assert.Equal(t, "ArrowLe", unpackKeySlot(slot))

	packKeySlot(slot, "")
	assert.Equal(t, "", unpackKeySlot(slot))
}

func TestKeyTableTruncation(t *testing.T) {
	keys := make([]string, 40)
	for i := range keys {
		keys[i] = strings.Repeat("k", i%9+1)
	}
	table := make([]byte, keyTableSize)

	count := writeKeyTable(table, keys)
	require.Equal(t, uint32(tinycart.MaxTrackedKeys), count)

	got := readKeyTable(table, count)
	require.Len(t, got, tinycart.MaxTrackedKeys)
	for i, k := range got {
		want := keys[i]
		if len(want) > tinycart.MaxKeyNameLen {
			want = want[:tinycart.MaxKeyNameLen]
		}
		assert.Equal(t, want, k, "slot %d", i)
	}
}

func TestGamepadSlotRoundTrip(t *testing.T) {
	slot := make([]byte, gamepadSlotSize)

	in := tinycart.GamepadState{
		Connected: true,
		ID:        "vendor-pad-00012345", // longer than the slot keeps
		Buttons:   []float64{1, 0, 0.5},
		Pressed:   []int{0, 2},
		Axes:      []float64{-0.25, 0.75},
	}
	writeGamepadSlot(slot, in)
	out := readGamepadSlot(slot)

	assert.True(t, out.Connected)
	assert.Equal(t, in.ID[:tinycart.MaxGamepadIDLen], out.ID)
	assert.Equal(t, []int{0, 2}, out.Pressed)
	require.Len(t, out.Buttons, tinycart.MaxGamepadButtons)
	assert.InDelta(t, 1, out.Buttons[0], 1e-6)
	assert.InDelta(t, 0.5, out.Buttons[2], 1e-6)
	require.Len(t, out.Axes, tinycart.MaxGamepadAxes)
	assert.InDelta(t, -0.25, out.Axes[0], 1e-6)
	assert.InDelta(t, 0.75, out.Axes[1], 1e-6)
}

func TestGamepadSlotDisconnected(t *testing.T) {
	slot := make([]byte, gamepadSlotSize)
	writeGamepadSlot(slot, tinycart.GamepadState{Connected: true, ID: "p"})
	writeGamepadSlot(slot, tinycart.GamepadState{})

	out := readGamepadSlot(slot)
	assert.False(t, out.Connected)
	assert.Empty(t, out.ID)
	assert.Nil(t, out.Buttons)
}
