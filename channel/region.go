// Copyright 2026 The tinycart Authors
// SPDX-License-Identifier: BSD-3-Clause

package channel

import (
	"encoding/binary"
	"math"
	"sync/atomic"

	"github.com/tinycart/tinycart"
)

// The shared region is a single contiguous 64 KiB block with fixed byte
// offsets, addressable from both execution contexts. Scalar fields are
// individual atomic words; the single-writer discipline (presentation side
// writes input/timing/frame-ready, script side writes the draw batch) means
// they need atomic, not mutually exclusive, access. The multi-word tables
// (key slots, gamepad slots, draw payload) are guarded by the handle's
// mutex because a torn read there would yield garbage names or a corrupt
// batch.
//
// Layout (byte offsets):
//
//	0    frame-ready flag          u32
//	4    draw-batch command count  u32
//	8    draw-batch payload length u32
//	16   delta time                f64
//	24   total time                f64
//	32   frame number              u32
//	36   pointer X                 f32
//	40   pointer Y                 f32
//	44   pointer buttons held      u32 bitmask
//	48   keys-held count           u32, slots at 52 (32 x 8 bytes)
//	308  keys-pressed count        u32, slots at 312 (32 x 8 bytes)
//	568  pointer buttons pressed   u32 bitmask
//	572  canvas width              u32
//	576  canvas height             u32
//	580  audio master volume       f32
//	584  audio flags               u32 (bit 0 = muted)
//	588  audio track               u32
//	608  gamepad slots             4 x 96 bytes
//	1024 draw-batch payload        remainder of the region
//
// Readers must ignore unknown trailing fields; only the documented ones
// may be assumed to exist.
const (
	// RegionSize is the total size of the shared region in bytes.
	RegionSize = 64 * 1024
	// PayloadOffset is where the serialized draw batch begins.
	PayloadOffset = 1024
	// PayloadCapacity is the maximum encoded draw-batch size.
	PayloadCapacity = RegionSize - PayloadOffset

	keySlotSize  = 8
	keyTableSize = tinycart.MaxTrackedKeys * keySlotSize

	gamepadSlotSize = 96

	offFrameReady       = 0
	offBatchCount       = 4
	offBatchLen         = 8
	offDeltaTime        = 16
	offTotalTime        = 24
	offFrameNumber      = 32
	offMouseX           = 36
	offMouseY           = 40
	offMouseDown        = 44
	offKeysDownCount    = 48
	offKeysDown         = 52
	offKeysPressedCount = 308
	offKeysPressed      = 312
	offMousePressed     = 568
	offCanvasWidth      = 572
	offCanvasHeight     = 576
	offAudioVolume      = 580
	offAudioFlags       = 584
	offAudioTrack       = 588
	offGamepads         = 608
)

// Region is the struct overlay for the shared block. Field order and the
// explicit padding reproduce the documented offsets exactly; a layout test
// asserts them with unsafe.Offsetof.
type Region struct {
	frameReady atomic.Uint32 // 0
	batchCount atomic.Uint32 // 4
	batchLen   atomic.Uint32 // 8
	_          [4]byte       // 12

	deltaBits   atomic.Uint64 // 16, float64 bits
	totalBits   atomic.Uint64 // 24
	frameNumber atomic.Uint32 // 32

	mouseXBits atomic.Uint32 // 36, float32 bits
	mouseYBits atomic.Uint32 // 40
	mouseDown  atomic.Uint32 // 44

	keysDownCount atomic.Uint32      // 48
	keysDown      [keyTableSize]byte // 52

	keysPressedCount atomic.Uint32      // 308
	keysPressed      [keyTableSize]byte // 312

	mousePressed atomic.Uint32 // 568
	canvasWidth  atomic.Uint32 // 572
	canvasHeight atomic.Uint32 // 576

	audioVolumeBits atomic.Uint32 // 580, float32 bits
	audioFlags      atomic.Uint32 // 584, bit 0 = muted
	audioTrack      atomic.Uint32 // 588
	_               [16]byte      // 592

	gamepads [tinycart.MaxGamepads][gamepadSlotSize]byte // 608
	_        [32]byte                                    // 992

	payload [PayloadCapacity]byte // 1024
}

const audioFlagMuted = 1 << 0

// packKeySlot writes a key name into an 8-byte slot: a length byte
// followed by up to 7 name bytes. Longer names keep a valid prefix.
func packKeySlot(slot []byte, name string) {
	n := len(name)
	if n > tinycart.MaxKeyNameLen {
		n = tinycart.MaxKeyNameLen
	}
	slot[0] = byte(n)
	copy(slot[1:1+n], name[:n])
	for i := 1 + n; i < keySlotSize; i++ {
		slot[i] = 0
	}
}

// unpackKeySlot reads a key name back from an 8-byte slot.
func unpackKeySlot(slot []byte) string {
	n := int(slot[0])
	if n > tinycart.MaxKeyNameLen {
		n = tinycart.MaxKeyNameLen
	}
	return string(slot[1 : 1+n])
}

// writeKeyTable fills a slot table from a key list, truncating to the slot
// count, and returns the number of slots written.
func writeKeyTable(table []byte, keys []string) uint32 {
	n := len(keys)
	if n > tinycart.MaxTrackedKeys {
		n = tinycart.MaxTrackedKeys
	}
	for i := 0; i < n; i++ {
		packKeySlot(table[i*keySlotSize:(i+1)*keySlotSize], keys[i])
	}
	return uint32(n)
}

// readKeyTable reconstructs a key list from a slot table.
func readKeyTable(table []byte, count uint32) []string {
	n := int(count)
	if n > tinycart.MaxTrackedKeys {
		n = tinycart.MaxTrackedKeys
	}
	if n == 0 {
		return nil
	}
	keys := make([]string, n)
	for i := 0; i < n; i++ {
		keys[i] = unpackKeySlot(table[i*keySlotSize : (i+1)*keySlotSize])
	}
	return keys
}

// Gamepad slot layout, offsets within the 96-byte slot:
//
//	0   flags      u32 (bit 0 = connected)
//	4   pressed    u32 bitmask of newly-down button indices
//	8   id         length byte + 15 bytes
//	24  buttons    12 x f32
//	72  axes       6 x f32
const (
	padOffFlags   = 0
	padOffPressed = 4
	padOffID      = 8
	padOffButtons = 24
	padOffAxes    = 72

	padFlagConnected = 1 << 0
)

func writeGamepadSlot(slot []byte, g tinycart.GamepadState) {
	var flags uint32
	if g.Connected {
		flags |= padFlagConnected
	}
	binary.LittleEndian.PutUint32(slot[padOffFlags:], flags)

	var pressed uint32
	for _, idx := range g.Pressed {
		if idx >= 0 && idx < tinycart.MaxGamepadButtons {
			pressed |= 1 << uint(idx)
		}
	}
	binary.LittleEndian.PutUint32(slot[padOffPressed:], pressed)

	id := g.ID
	if len(id) > tinycart.MaxGamepadIDLen {
		id = id[:tinycart.MaxGamepadIDLen]
	}
	slot[padOffID] = byte(len(id))
	copy(slot[padOffID+1:padOffID+1+tinycart.MaxGamepadIDLen], id)
	for i := padOffID + 1 + len(id); i < padOffButtons; i++ {
		slot[i] = 0
	}

	for i := 0; i < tinycart.MaxGamepadButtons; i++ {
		var v float64
		if i < len(g.Buttons) {
			v = g.Buttons[i]
		}
		binary.LittleEndian.PutUint32(slot[padOffButtons+i*4:], math.Float32bits(float32(v)))
	}
	for i := 0; i < tinycart.MaxGamepadAxes; i++ {
		var v float64
		if i < len(g.Axes) {
			v = g.Axes[i]
		}
		binary.LittleEndian.PutUint32(slot[padOffAxes+i*4:], math.Float32bits(float32(v)))
	}
}

func readGamepadSlot(slot []byte) tinycart.GamepadState {
	flags := binary.LittleEndian.Uint32(slot[padOffFlags:])
	g := tinycart.GamepadState{
		Connected: flags&padFlagConnected != 0,
	}
	if !g.Connected {
		return g
	}

	idLen := int(slot[padOffID])
	if idLen > tinycart.MaxGamepadIDLen {
		idLen = tinycart.MaxGamepadIDLen
	}
	g.ID = string(slot[padOffID+1 : padOffID+1+idLen])

	pressed := binary.LittleEndian.Uint32(slot[padOffPressed:])
	for i := 0; i < tinycart.MaxGamepadButtons; i++ {
		if pressed&(1<<uint(i)) != 0 {
			g.Pressed = append(g.Pressed, i)
		}
	}

	g.Buttons = make([]float64, tinycart.MaxGamepadButtons)
	for i := range g.Buttons {
		bits := binary.LittleEndian.Uint32(slot[padOffButtons+i*4:])
		g.Buttons[i] = float64(math.Float32frombits(bits))
	}
	g.Axes = make([]float64, tinycart.MaxGamepadAxes)
	for i := range g.Axes {
		bits := binary.LittleEndian.Uint32(slot[padOffAxes+i*4:])
		g.Axes[i] = float64(math.Float32frombits(bits))
	}
	return g
}
