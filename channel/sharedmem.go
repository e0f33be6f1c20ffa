// Copyright 2026 The tinycart Authors
// SPDX-License-Identifier: BSD-3-Clause

package channel

import (
	"context"
	"math"
	"sync"

	"github.com/google/uuid"

	"github.com/tinycart/tinycart"
)

// SharedHandle owns the shared region and the synchronization state both
// endpoints attach to. The orchestrator transfers it into the isolated
// context at creation time.
type SharedHandle struct {
	region *Region

	// mu guards the multi-word table and payload bytes of the region.
	// Scalar fields are accessed atomically without it.
	mu sync.Mutex

	// frameCh wakes a WaitForFrame call; the frame-ready flag in the
	// region stays authoritative, the channel is only the wakeup.
	frameCh chan struct{}

	// pixelCh carries read-back requests to the presentation side.
	pixelCh chan PixelRequest

	done     chan struct{}
	disposed sync.Once
}

func newSharedHandle() *SharedHandle {
	return &SharedHandle{
		region:  new(Region),
		frameCh: make(chan struct{}, 1),
		pixelCh: make(chan PixelRequest, 8),
		done:    make(chan struct{}),
	}
}

// Region exposes the raw region, for tests and for hosts that map it
// elsewhere.
func (h *SharedHandle) Region() *Region { return h.region }

func (h *SharedHandle) dispose() {
	h.disposed.Do(func() { close(h.done) })
}

func (h *SharedHandle) isDisposed() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// sharedChannel is one endpoint of the shared-memory transport. Both
// endpoints see the same handle; the single-writer-per-field discipline
// is upheld by the callers (the orchestrator and the script context), not
// enforced here.
type sharedChannel struct {
	h *SharedHandle
}

func newSharedChannel(h *SharedHandle) *sharedChannel {
	return &sharedChannel{h: h}
}

func (c *sharedChannel) SendDrawCommands(batch tinycart.Batch) error {
	if c.h.isDisposed() {
		return ErrDisposed
	}
	encoded, err := tinycart.EncodeBatch(batch)
	if err != nil {
		return err
	}
	if len(encoded) > PayloadCapacity {
		tinycart.Logger().Warn("draw batch exceeds shared region capacity, dropping frame",
			"encoded", len(encoded), "capacity", PayloadCapacity, "commands", len(batch))
		return ErrBatchTooLarge
	}

	r := c.h.region
	c.h.mu.Lock()
	copy(r.payload[:], encoded)
	r.batchCount.Store(uint32(len(batch)))
	r.batchLen.Store(uint32(len(encoded)))
	c.h.mu.Unlock()
	return nil
}

func (c *sharedChannel) DrawCommands() tinycart.Batch {
	r := c.h.region
	if r.batchLen.Load() == 0 {
		return nil
	}

	c.h.mu.Lock()
	n := r.batchLen.Load()
	if n == 0 || int(n) > PayloadCapacity {
		r.batchCount.Store(0)
		r.batchLen.Store(0)
		c.h.mu.Unlock()
		return nil
	}
	encoded := make([]byte, n)
	copy(encoded, r.payload[:n])
	r.batchCount.Store(0)
	r.batchLen.Store(0)
	c.h.mu.Unlock()

	batch, err := tinycart.DecodeBatch(encoded)
	if err != nil {
		tinycart.Logger().Warn("stored draw batch failed to decode, treating as empty",
			"error", err, "bytes", n)
		return nil
	}
	return batch
}

func (c *sharedChannel) SetInputState(s tinycart.InputSnapshot) {
	r := c.h.region

	c.h.mu.Lock()
	downCount := writeKeyTable(r.keysDown[:], s.KeysDown)
	pressedCount := writeKeyTable(r.keysPressed[:], s.KeysPressed)
	for i := range r.gamepads {
		writeGamepadSlot(r.gamepads[i][:], s.Gamepads[i])
	}
	r.keysDownCount.Store(downCount)
	r.keysPressedCount.Store(pressedCount)
	c.h.mu.Unlock()

	r.mouseXBits.Store(math.Float32bits(float32(s.MouseX)))
	r.mouseYBits.Store(math.Float32bits(float32(s.MouseY)))
	r.mouseDown.Store(s.MouseButtonsDown)
	r.mousePressed.Store(s.MouseButtonsPressed)
}

func (c *sharedChannel) InputState() tinycart.InputSnapshot {
	r := c.h.region
	var s tinycart.InputSnapshot

	c.h.mu.Lock()
	s.KeysDown = readKeyTable(r.keysDown[:], r.keysDownCount.Load())
	s.KeysPressed = readKeyTable(r.keysPressed[:], r.keysPressedCount.Load())
	for i := range r.gamepads {
		s.Gamepads[i] = readGamepadSlot(r.gamepads[i][:])
	}
	c.h.mu.Unlock()

	s.MouseX = float64(math.Float32frombits(r.mouseXBits.Load()))
	s.MouseY = float64(math.Float32frombits(r.mouseYBits.Load()))
	s.MouseButtonsDown = r.mouseDown.Load()
	s.MouseButtonsPressed = r.mousePressed.Load()
	return s
}

func (c *sharedChannel) SetTimingInfo(t tinycart.TimingSnapshot) {
	r := c.h.region
	r.deltaBits.Store(math.Float64bits(t.DeltaTime))
	r.totalBits.Store(math.Float64bits(t.TotalTime))
	r.frameNumber.Store(t.FrameNumber)
}

func (c *sharedChannel) TimingInfo() tinycart.TimingSnapshot {
	r := c.h.region
	return tinycart.TimingSnapshot{
		DeltaTime:   math.Float64frombits(r.deltaBits.Load()),
		TotalTime:   math.Float64frombits(r.totalBits.Load()),
		FrameNumber: r.frameNumber.Load(),
	}
}

func (c *sharedChannel) DeltaTime() float64 {
	return math.Float64frombits(c.h.region.deltaBits.Load())
}

func (c *sharedChannel) TotalTime() float64 {
	return math.Float64frombits(c.h.region.totalBits.Load())
}

func (c *sharedChannel) SignalFrameReady() {
	c.h.region.frameReady.Store(1)
	select {
	case c.h.frameCh <- struct{}{}:
	default:
	}
}

func (c *sharedChannel) WaitForFrame(ctx context.Context) error {
	for {
		if c.h.region.frameReady.CompareAndSwap(1, 0) {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.h.done:
			return ErrDisposed
		case <-c.h.frameCh:
		}
	}
}

func (c *sharedChannel) CanvasSize() (int, int) {
	r := c.h.region
	return int(r.canvasWidth.Load()), int(r.canvasHeight.Load())
}

func (c *sharedChannel) SetCanvasSize(w, h int) {
	r := c.h.region
	r.canvasWidth.Store(uint32(w))
	r.canvasHeight.Store(uint32(h))
}

func (c *sharedChannel) RequestPixels(ctx context.Context, x, y, w, h int) ([]byte, error) {
	if c.h.isDisposed() {
		return nil, ErrDisposed
	}
	resp := make(chan []byte, 1)
	req := PixelRequest{
		ID: uuid.New(),
		X:  x, Y: y, W: w, H: h,
		resolve: func(p []byte) {
			select {
			case resp <- p:
			default:
			}
		},
	}
	select {
	case c.h.pixelCh <- req:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.h.done:
		return nil, ErrDisposed
	}
	select {
	case pixels := <-resp:
		return pixels, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.h.done:
		return nil, ErrDisposed
	}
}

func (c *sharedChannel) PixelRequests() <-chan PixelRequest {
	return c.h.pixelCh
}

func (c *sharedChannel) SetAudioState(a tinycart.AudioState) {
	r := c.h.region
	r.audioVolumeBits.Store(math.Float32bits(float32(a.MasterVolume)))
	var flags uint32
	if a.Muted {
		flags |= audioFlagMuted
	}
	r.audioFlags.Store(flags)
	r.audioTrack.Store(a.Track)
}

func (c *sharedChannel) AudioState() tinycart.AudioState {
	r := c.h.region
	return tinycart.AudioState{
		MasterVolume: float64(math.Float32frombits(r.audioVolumeBits.Load())),
		Muted:        r.audioFlags.Load()&audioFlagMuted != 0,
		Track:        r.audioTrack.Load(),
	}
}

func (c *sharedChannel) Dispose() {
	c.h.dispose()
}
