// Copyright 2026 The tinycart Authors
// SPDX-License-Identifier: BSD-3-Clause

package channel

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinycart/tinycart"
)

func newMessagePairT(t *testing.T) Pair {
	t.Helper()
	pair, err := CreatePair(Options{Mode: ModeMessagePassing})
	require.NoError(t, err)
	t.Cleanup(pair.Dispose)
	return pair
}

const (
	eventually = time.Second
	pollEvery  = time.Millisecond
)

func TestMessageBatchDelivery(t *testing.T) {
	pair := newMessagePairT(t)

	batch := tinycart.Batch{
		tinycart.SetColorCommand{R: 1, G: 2, B: 3},
		tinycart.FillCircleCommand{X: 10, Y: 20, R: 5},
	}
	require.NoError(t, pair.Script.SendDrawCommands(batch))

	var got tinycart.Batch
	require.Eventually(t, func() bool {
		if b := pair.Presentation.DrawCommands(); len(b) > 0 {
			got = b
			return true
		}
		return false
	}, eventually, pollEvery)
	require.Equal(t, batch, got)

	// Delivery cleared the cache.
	assert.Empty(t, pair.Presentation.DrawCommands())
}

func TestMessageBatchMostRecentWins(t *testing.T) {
	pair := newMessagePairT(t)
	pres := pair.Presentation.(*messageChannel)

	first, err := tinycart.EncodeBatch(tinycart.Batch{tinycart.ClearCommand{}})
	require.NoError(t, err)
	second, err := tinycart.EncodeBatch(tinycart.Batch{
		tinycart.ClearCommand{}, tinycart.SaveCommand{},
	})
	require.NoError(t, err)

	// Two deliveries before any read: the later one replaces the earlier.
	pres.receive(message{kind: msgDrawBatch, encoded: first})
	pres.receive(message{kind: msgDrawBatch, encoded: second})

	got := pres.DrawCommands()
	require.Len(t, got, 2)
}

func TestMessageInputTimingPropagation(t *testing.T) {
	pair := newMessagePairT(t)

	in := tinycart.InputSnapshot{MouseX: 55, MouseY: 66, KeysDown: []string{"KeyQ"}}
	pair.Presentation.SetInputState(in)
	pair.Presentation.SetTimingInfo(tinycart.TimingSnapshot{DeltaTime: 0.016, FrameNumber: 9})

	require.Eventually(t, func() bool {
		return pair.Script.InputState().MouseX == 55
	}, eventually, pollEvery)
	assert.Equal(t, []string{"KeyQ"}, pair.Script.InputState().KeysDown)

	require.Eventually(t, func() bool {
		return pair.Script.TimingInfo().FrameNumber == 9
	}, eventually, pollEvery)
	assert.Equal(t, 0.016, pair.Script.DeltaTime())
}

func TestMessageSnapshotIsolation(t *testing.T) {
	pair := newMessagePairT(t)

	in := tinycart.InputSnapshot{KeysDown: []string{"KeyZ"}}
	pair.Presentation.SetInputState(in)
	in.KeysDown[0] = "KeyX" // sender mutation after the fact

	require.Eventually(t, func() bool {
		return len(pair.Script.InputState().KeysDown) == 1
	}, eventually, pollEvery)
	assert.Equal(t, "KeyZ", pair.Script.InputState().KeysDown[0])
}

func TestMessageFrameHandshake(t *testing.T) {
	pair := newMessagePairT(t)

	pair.Presentation.SignalFrameReady()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, pair.Script.WaitForFrame(ctx))

	short, cancelShort := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancelShort()
	require.ErrorIs(t, pair.Script.WaitForFrame(short), context.DeadlineExceeded)
}

func TestMessagePixelReadback(t *testing.T) {
	pair := newMessagePairT(t)

	go func() {
		req := <-pair.Presentation.PixelRequests()
		req.Resolve([]byte{1, 2, 3, 4})
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	pixels, err := pair.Script.RequestPixels(ctx, 0, 0, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, pixels)
}

func TestMessageCanvasAndAudio(t *testing.T) {
	pair := newMessagePairT(t)

	pair.Presentation.SetCanvasSize(640, 360)
	require.Eventually(t, func() bool {
		w, _ := pair.Script.CanvasSize()
		return w == 640
	}, eventually, pollEvery)

	pair.Script.SetAudioState(tinycart.AudioState{MasterVolume: 0.25, Track: 2})
	require.Eventually(t, func() bool {
		return pair.Presentation.AudioState().Track == 2
	}, eventually, pollEvery)
	assert.Equal(t, 0.25, pair.Presentation.AudioState().MasterVolume)
}

func TestMessageDispose(t *testing.T) {
	pair := newMessagePairT(t)

	waitErr := make(chan error, 1)
	go func() {
		waitErr <- pair.Script.WaitForFrame(context.Background())
	}()
	time.Sleep(10 * time.Millisecond)

	pair.Script.Dispose()
	pair.Script.Dispose() // idempotent

	require.ErrorIs(t, <-waitErr, ErrDisposed)
	assert.ErrorIs(t, pair.Script.SendDrawCommands(tinycart.Batch{}), ErrDisposed)

	// The other endpoint keeps serving its cache; no fault crosses over.
	pair.Presentation.SetCanvasSize(100, 100)
	w, _ := pair.Presentation.CanvasSize()
	assert.Equal(t, 100, w)
}
