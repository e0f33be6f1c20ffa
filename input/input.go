// Copyright 2026 The tinycart Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package input captures host input events and produces per-frame
// snapshots for the script side.
//
// The capture distinguishes held state (true while a key or button is
// down) from edge state (true only for the frame in which it went down).
// Edge sets are cleared once per frame by Update; held sets are cleared
// only by release events or focus loss.
package input

import (
	"math"
	"sync"

	"github.com/tinycart/tinycart"
)

// MouseButton identifies a mouse button in the snapshot bitmasks.
type MouseButton uint8

const (
	MouseLeft MouseButton = iota
	MouseMiddle
	MouseRight
)

// GamepadProvider polls the host's connected gamepads. Implementations
// return one state per gamepad slot; a zero Connected slot means nothing
// is plugged in there.
type GamepadProvider interface {
	Poll() []tinycart.GamepadState
}

// Capture accumulates input events between frames and renders them into
// InputSnapshot values. All methods are safe for concurrent use; events
// typically arrive on the host's UI thread while Snapshot runs on the
// frame loop.
type Capture struct {
	mu sync.Mutex

	keysDown    map[string]bool
	keysPressed map[string]bool

	mouseX, mouseY float64
	buttonsDown    uint32
	buttonsPressed uint32

	gamepads     [tinycart.MaxGamepads]tinycart.GamepadState
	prevGamepads [tinycart.MaxGamepads]tinycart.GamepadState

	provider GamepadProvider

	// Display geometry for coordinate mapping. canvasW/H is the logical
	// canvas size; dispX/Y/W/H is the rectangle the canvas occupies on
	// the physical display after letterboxing.
	canvasW, canvasH float64
	dispX, dispY     float64
	dispW, dispH     float64
	devicePixelRatio float64
}

// NewCapture creates an empty capture. The canvas defaults to 800x600
// with a 1:1 display mapping until the host reports geometry.
func NewCapture() *Capture {
	return &Capture{
		keysDown:         make(map[string]bool),
		keysPressed:      make(map[string]bool),
		canvasW:          800,
		canvasH:          600,
		dispW:            800,
		dispH:            600,
		devicePixelRatio: 1,
	}
}

// SetGamepadProvider installs the gamepad poll source. A nil provider
// leaves all gamepad slots disconnected.
func (c *Capture) SetGamepadProvider(p GamepadProvider) {
	c.mu.Lock()
	c.provider = p
	c.mu.Unlock()
}

// --------------------------------------------------------------------------
// Display geometry
// --------------------------------------------------------------------------

// SetCanvasSize sets the logical canvas size used for coordinate mapping.
func (c *Capture) SetCanvasSize(w, h int) {
	c.mu.Lock()
	if w > 0 {
		c.canvasW = float64(w)
	}
	if h > 0 {
		c.canvasH = float64(h)
	}
	c.mu.Unlock()
}

// SetDisplayRect sets the rectangle, in physical display pixels, that the
// canvas occupies after letterboxing.
func (c *Capture) SetDisplayRect(x, y, w, h float64) {
	c.mu.Lock()
	c.dispX, c.dispY = x, y
	if w > 0 {
		c.dispW = w
	}
	if h > 0 {
		c.dispH = h
	}
	c.mu.Unlock()
}

// SetDevicePixelRatio sets the scale between host event coordinates and
// physical display pixels.
func (c *Capture) SetDevicePixelRatio(r float64) {
	c.mu.Lock()
	if r > 0 {
		c.devicePixelRatio = r
	}
	c.mu.Unlock()
}

// mapToCanvas converts host event coordinates to logical canvas
// coordinates, clamped to the canvas bounds.
func (c *Capture) mapToCanvas(x, y float64) (float64, float64) {
	px := x*c.devicePixelRatio - c.dispX
	py := y*c.devicePixelRatio - c.dispY
	cx := px / c.dispW * c.canvasW
	cy := py / c.dispH * c.canvasH
	cx = math.Max(0, math.Min(cx, c.canvasW))
	cy = math.Max(0, math.Min(cy, c.canvasH))
	return cx, cy
}

// --------------------------------------------------------------------------
// Event intake
// --------------------------------------------------------------------------

// KeyDown records a key press. Repeated down events for a held key do
// not retrigger the pressed edge.
func (c *Capture) KeyDown(key string) {
	c.mu.Lock()
	if !c.keysDown[key] {
		c.keysPressed[key] = true
	}
	c.keysDown[key] = true
	c.mu.Unlock()
}

// KeyUp records a key release.
func (c *Capture) KeyUp(key string) {
	c.mu.Lock()
	delete(c.keysDown, key)
	c.mu.Unlock()
}

// MouseMove records a cursor position in host event coordinates.
func (c *Capture) MouseMove(x, y float64) {
	c.mu.Lock()
	c.mouseX, c.mouseY = c.mapToCanvas(x, y)
	c.mu.Unlock()
}

// MouseDown records a button press at a position.
func (c *Capture) MouseDown(b MouseButton, x, y float64) {
	bit := uint32(1) << b
	c.mu.Lock()
	c.mouseX, c.mouseY = c.mapToCanvas(x, y)
	if c.buttonsDown&bit == 0 {
		c.buttonsPressed |= bit
	}
	c.buttonsDown |= bit
	c.mu.Unlock()
}

// MouseUp records a button release at a position.
func (c *Capture) MouseUp(b MouseButton, x, y float64) {
	bit := uint32(1) << b
	c.mu.Lock()
	c.mouseX, c.mouseY = c.mapToCanvas(x, y)
	c.buttonsDown &^= bit
	c.mu.Unlock()
}

// FocusLost clears all input state. Without this, a key released while
// the window is unfocused would read as held forever.
func (c *Capture) FocusLost() {
	c.mu.Lock()
	clear(c.keysDown)
	clear(c.keysPressed)
	c.buttonsDown = 0
	c.buttonsPressed = 0
	c.mu.Unlock()
}

// --------------------------------------------------------------------------
// Frame loop
// --------------------------------------------------------------------------

// PollGamepads samples the gamepad provider and derives pressed edges
// against the previous poll. It is called once per frame, before the
// frame's snapshot is taken.
func (c *Capture) PollGamepads() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.prevGamepads = c.gamepads
	c.gamepads = [tinycart.MaxGamepads]tinycart.GamepadState{}
	if c.provider == nil {
		return
	}
	polled := c.provider.Poll()
	for i := 0; i < len(polled) && i < tinycart.MaxGamepads; i++ {
		st := polled[i].Clone()
		// Button pressed edges are derived here so providers only need
		// to report the current analog values.
		st.Pressed = st.Pressed[:0]
		for b, v := range st.Buttons {
			if v <= gamepadButtonThreshold {
				continue
			}
			if !gamepadButtonDown(c.prevGamepads[i], b) {
				st.Pressed = append(st.Pressed, b)
			}
		}
		c.gamepads[i] = st
	}
}

// Update clears the per-frame edge state. It is called once per frame,
// after the frame's snapshot has been taken. Held state is untouched.
func (c *Capture) Update() {
	c.mu.Lock()
	clear(c.keysPressed)
	c.buttonsPressed = 0
	c.mu.Unlock()
}

const gamepadButtonThreshold = 0.5

func gamepadButtonDown(st tinycart.GamepadState, b int) bool {
	return st.Connected && b < len(st.Buttons) && st.Buttons[b] > gamepadButtonThreshold
}

// Snapshot renders the current input state as an immutable snapshot.
func (c *Capture) Snapshot() tinycart.InputSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := tinycart.InputSnapshot{
		KeysDown:            setToSlice(c.keysDown),
		KeysPressed:         setToSlice(c.keysPressed),
		MouseX:              c.mouseX,
		MouseY:              c.mouseY,
		MouseButtonsDown:    c.buttonsDown,
		MouseButtonsPressed: c.buttonsPressed,
	}
	for i := range c.gamepads {
		snap.Gamepads[i] = c.gamepads[i].Clone()
	}
	return snap
}

func setToSlice(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}
