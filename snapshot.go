// Copyright 2026 The tinycart Authors
// SPDX-License-Identifier: BSD-3-Clause

package tinycart

// Fixed limits shared by the channel wire layout and input capture.
// Inputs beyond these limits are truncated, never dropped as an error.
const (
	// MaxTrackedKeys is the number of key slots in a snapshot.
	MaxTrackedKeys = 32
	// MaxKeyNameLen is the longest key name carried per slot; longer
	// names are truncated to this prefix.
	MaxKeyNameLen = 7
	// MaxGamepads is the number of gamepad slots.
	MaxGamepads = 4
	// MaxGamepadButtons is the number of button values per gamepad.
	MaxGamepadButtons = 12
	// MaxGamepadAxes is the number of axis values per gamepad.
	MaxGamepadAxes = 6
	// MaxGamepadIDLen is the longest gamepad identifier carried.
	MaxGamepadIDLen = 15
)

// GamepadState is the sampled state of one gamepad slot.
type GamepadState struct {
	Connected bool      `json:"connected"`
	ID        string    `json:"id,omitempty"`
	Buttons   []float64 `json:"buttons,omitempty"` // analog values 0-1
	Pressed   []int     `json:"pressed,omitempty"` // indices newly down this frame
	Axes      []float64 `json:"axes,omitempty"`    // values -1..1
}

// Clone returns a deep copy of the gamepad state.
func (g GamepadState) Clone() GamepadState {
	out := g
	out.Buttons = append([]float64(nil), g.Buttons...)
	out.Pressed = append([]int(nil), g.Pressed...)
	out.Axes = append([]float64(nil), g.Axes...)
	return out
}

// InputSnapshot is the per-frame input sample the presentation side hands
// to the script side. It is a level snapshot, overwritten each frame:
// the script side always sees the most recent sample, never a backlog.
type InputSnapshot struct {
	KeysDown    []string `json:"keysDown,omitempty"`
	KeysPressed []string `json:"keysPressed,omitempty"`

	// Pointer position in logical drawing-surface coordinates.
	MouseX float64 `json:"mouseX"`
	MouseY float64 `json:"mouseY"`

	// Button bitmasks: bit n set means button n.
	MouseButtonsDown    uint32 `json:"mouseButtonsDown"`
	MouseButtonsPressed uint32 `json:"mouseButtonsPressed"`

	Gamepads [MaxGamepads]GamepadState `json:"gamepads"`
}

// Clone returns a deep copy, so a transport can hand the snapshot across
// without sharing slice backing arrays.
func (s InputSnapshot) Clone() InputSnapshot {
	out := s
	out.KeysDown = append([]string(nil), s.KeysDown...)
	out.KeysPressed = append([]string(nil), s.KeysPressed...)
	for i := range s.Gamepads {
		out.Gamepads[i] = s.Gamepads[i].Clone()
	}
	return out
}

// TimingSnapshot carries the per-frame timing the presentation side writes.
type TimingSnapshot struct {
	// DeltaTime is the seconds elapsed since the previous frame.
	DeltaTime float64 `json:"deltaTime"`
	// TotalTime is the seconds elapsed since the run started.
	TotalTime float64 `json:"totalTime"`
	// FrameNumber increases by one per presentation frame.
	FrameNumber uint32 `json:"frameNumber"`
}

// AudioState is the narrow audio control surface the channel carries.
type AudioState struct {
	MasterVolume float64 `json:"masterVolume"`
	Muted        bool    `json:"muted"`
	Track        uint32  `json:"track"`
}
