// Copyright 2026 The tinycart Authors
// SPDX-License-Identifier: BSD-3-Clause

package channel

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/tinycart/tinycart"
)

// The message-passing transport is the fallback when a shared region
// cannot be provisioned. Each endpoint keeps its own most-recently-received
// copy of every field and serves synchronous getters from that cache; the
// cache is updated by a pump goroutine as messages arrive. A get
// immediately after a remote set may observe stale data until the message
// is delivered — the accepted latency cost of this path.
//
// Delivery is FIFO per direction (a buffered Go channel). Payloads are
// structurally copied: draw batches travel in encoded form, snapshots as
// deep copies, so neither side can observe the other's mutations.

type msgKind uint8

const (
	msgDrawBatch msgKind = iota
	msgInput
	msgTiming
	msgFrameReady
	msgCanvasSize
	msgAudio
	msgPixelRequest
	msgPixelResponse
)

type message struct {
	kind msgKind

	encoded []byte // msgDrawBatch, msgPixelResponse pixels
	input   tinycart.InputSnapshot
	timing  tinycart.TimingSnapshot
	audio   tinycart.AudioState

	width, height int

	id         uuid.UUID
	x, y, w, h int
}

// portBuffer bounds each direction of the transport. A full buffer drops
// the newest message with a diagnostic rather than blocking a frame.
const portBuffer = 64

type messageChannel struct {
	out chan<- message
	in  <-chan message

	mu      sync.Mutex
	batch   []byte // most recent unread encoded batch, nil when none
	input   tinycart.InputSnapshot
	timing  tinycart.TimingSnapshot
	audio   tinycart.AudioState
	cw, ch  int
	pending map[uuid.UUID]chan []byte

	frameFlag atomic.Uint32
	frameCh   chan struct{}
	pixelCh   chan PixelRequest

	done     chan struct{}
	disposed sync.Once
}

// newMessagePair builds two connected endpoints and starts their pumps.
func newMessagePair() (pres, script *messageChannel) {
	toScript := make(chan message, portBuffer)
	toPres := make(chan message, portBuffer)
	pres = newMessageChannel(toScript, toPres)
	script = newMessageChannel(toPres, toScript)
	return pres, script
}

func newMessageChannel(out chan<- message, in <-chan message) *messageChannel {
	c := &messageChannel{
		out:     out,
		in:      in,
		pending: make(map[uuid.UUID]chan []byte),
		frameCh: make(chan struct{}, 1),
		pixelCh: make(chan PixelRequest, 8),
		done:    make(chan struct{}),
	}
	go c.pump()
	return c
}

// pump delivers incoming messages into the local cache.
func (c *messageChannel) pump() {
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.in:
			c.receive(msg)
		}
	}
}

func (c *messageChannel) receive(msg message) {
	switch msg.kind {
	case msgDrawBatch:
		c.mu.Lock()
		c.batch = msg.encoded // overwrites an unread batch: most-recent-wins
		c.mu.Unlock()
	case msgInput:
		c.mu.Lock()
		c.input = msg.input
		c.mu.Unlock()
	case msgTiming:
		c.mu.Lock()
		c.timing = msg.timing
		c.mu.Unlock()
	case msgAudio:
		c.mu.Lock()
		c.audio = msg.audio
		c.mu.Unlock()
	case msgCanvasSize:
		c.mu.Lock()
		c.cw, c.ch = msg.width, msg.height
		c.mu.Unlock()
	case msgFrameReady:
		c.frameFlag.Store(1)
		select {
		case c.frameCh <- struct{}{}:
		default:
		}
	case msgPixelRequest:
		req := PixelRequest{
			ID: msg.id,
			X:  msg.x, Y: msg.y, W: msg.w, H: msg.h,
		}
		req.resolve = func(pixels []byte) {
			c.send(message{kind: msgPixelResponse, id: req.ID, encoded: pixels})
		}
		select {
		case c.pixelCh <- req:
		default:
			tinycart.Logger().Warn("pixel read-back request dropped, queue full", "id", msg.id)
		}
	case msgPixelResponse:
		c.mu.Lock()
		waiter, ok := c.pending[msg.id]
		if ok {
			delete(c.pending, msg.id)
		}
		c.mu.Unlock()
		if ok {
			select {
			case waiter <- msg.encoded:
			default:
			}
		}
	}
}

// send delivers a message to the other side without ever blocking a frame.
func (c *messageChannel) send(msg message) {
	select {
	case <-c.done:
		return
	default:
	}
	select {
	case c.out <- msg:
	default:
		tinycart.Logger().Warn("message channel full, dropping message", "kind", msg.kind)
	}
}

func (c *messageChannel) SendDrawCommands(batch tinycart.Batch) error {
	select {
	case <-c.done:
		return ErrDisposed
	default:
	}
	encoded, err := tinycart.EncodeBatch(batch)
	if err != nil {
		return err
	}
	c.send(message{kind: msgDrawBatch, encoded: encoded})
	return nil
}

func (c *messageChannel) DrawCommands() tinycart.Batch {
	c.mu.Lock()
	encoded := c.batch
	c.batch = nil
	c.mu.Unlock()
	if encoded == nil {
		return nil
	}
	batch, err := tinycart.DecodeBatch(encoded)
	if err != nil {
		tinycart.Logger().Warn("received draw batch failed to decode, treating as empty",
			"error", err, "bytes", len(encoded))
		return nil
	}
	return batch
}

func (c *messageChannel) SetInputState(s tinycart.InputSnapshot) {
	clone := s.Clone()
	c.mu.Lock()
	c.input = clone
	c.mu.Unlock()
	c.send(message{kind: msgInput, input: s.Clone()})
}

func (c *messageChannel) InputState() tinycart.InputSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.input.Clone()
}

func (c *messageChannel) SetTimingInfo(t tinycart.TimingSnapshot) {
	c.mu.Lock()
	c.timing = t
	c.mu.Unlock()
	c.send(message{kind: msgTiming, timing: t})
}

func (c *messageChannel) TimingInfo() tinycart.TimingSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timing
}

func (c *messageChannel) DeltaTime() float64 { return c.TimingInfo().DeltaTime }
func (c *messageChannel) TotalTime() float64 { return c.TimingInfo().TotalTime }

func (c *messageChannel) SignalFrameReady() {
	c.send(message{kind: msgFrameReady})
}

func (c *messageChannel) WaitForFrame(ctx context.Context) error {
	for {
		if c.frameFlag.CompareAndSwap(1, 0) {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.done:
			return ErrDisposed
		case <-c.frameCh:
		}
	}
}

func (c *messageChannel) CanvasSize() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cw, c.ch
}

func (c *messageChannel) SetCanvasSize(w, h int) {
	c.mu.Lock()
	c.cw, c.ch = w, h
	c.mu.Unlock()
	c.send(message{kind: msgCanvasSize, width: w, height: h})
}

func (c *messageChannel) RequestPixels(ctx context.Context, x, y, w, h int) ([]byte, error) {
	select {
	case <-c.done:
		return nil, ErrDisposed
	default:
	}
	id := uuid.New()
	waiter := make(chan []byte, 1)
	c.mu.Lock()
	c.pending[id] = waiter
	c.mu.Unlock()

	c.send(message{kind: msgPixelRequest, id: id, x: x, y: y, w: w, h: h})

	select {
	case pixels := <-waiter:
		return pixels, nil
	case <-ctx.Done():
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
		return nil, ctx.Err()
	case <-c.done:
		return nil, ErrDisposed
	}
}

func (c *messageChannel) PixelRequests() <-chan PixelRequest {
	return c.pixelCh
}

func (c *messageChannel) SetAudioState(a tinycart.AudioState) {
	c.mu.Lock()
	c.audio = a
	c.mu.Unlock()
	c.send(message{kind: msgAudio, audio: a})
}

func (c *messageChannel) AudioState() tinycart.AudioState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.audio
}

// Dispose stops the pump and releases waiters. It only tears down the
// local endpoint; the remote side keeps its cache and sees no fault.
func (c *messageChannel) Dispose() {
	c.disposed.Do(func() { close(c.done) })
}
