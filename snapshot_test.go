// Copyright 2026 The tinycart Authors
// SPDX-License-Identifier: BSD-3-Clause

package tinycart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInputSnapshotClone(t *testing.T) {
	s := InputSnapshot{
		KeysDown:    []string{"KeyA", "KeyD"},
		KeysPressed: []string{"Space"},
		MouseX:      10, MouseY: 20,
		MouseButtonsDown: 1,
	}
	s.Gamepads[0] = GamepadState{
		Connected: true,
		ID:        "pad-0",
		Buttons:   []float64{1, 0, 0.5},
		Pressed:   []int{0},
		Axes:      []float64{-0.25, 0.75},
	}

	c := s.Clone()
	require.Equal(t, s, c)

	c.KeysDown[0] = "KeyX"
	c.Gamepads[0].Buttons[0] = 0
	c.Gamepads[0].Axes[0] = 0
	assert.Equal(t, "KeyA", s.KeysDown[0])
	assert.Equal(t, 1.0, s.Gamepads[0].Buttons[0])
	assert.Equal(t, -0.25, s.Gamepads[0].Axes[0])
}

func TestGamepadStateCloneEmpty(t *testing.T) {
	var g GamepadState
	assert.Equal(t, g, g.Clone())
}
