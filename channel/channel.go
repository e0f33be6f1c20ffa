// Copyright 2026 The tinycart Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package channel implements the per-frame transport between the
// presentation side and the isolated script side.
//
// Two implementations exist behind one interface: a shared-memory channel
// over a single fixed-layout region (the fast path), and a message-passing
// channel over paired in-process ports (the fallback when a shared region
// cannot be provisioned). CreatePair selects between them and returns one
// endpoint per side bound to the same transport.
//
// The transport is not a general RPC system. It has exactly two peers and
// one purpose: carry draw batches, input snapshots and timing once per
// frame, plus the narrow auxiliary requests (pixel read-back, audio state).
package channel

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/tinycart/tinycart"
)

// Mode identifies the selected transport.
type Mode string

const (
	// ModeAuto lets CreatePair pick based on host capabilities.
	ModeAuto Mode = ""
	// ModeSharedMemory is the fixed-layout shared region transport.
	ModeSharedMemory Mode = "shared-memory"
	// ModeMessagePassing is the ordered, structural-copy fallback.
	ModeMessagePassing Mode = "message-passing"
)

var (
	// ErrDisposed is returned by operations on a disposed endpoint.
	ErrDisposed = errors.New("channel: endpoint disposed")
	// ErrBatchTooLarge is returned when an encoded draw batch does not fit
	// the shared region's payload capacity. The write is skipped entirely;
	// the previous batch (or none) stays in place.
	ErrBatchTooLarge = errors.New("channel: draw batch exceeds payload capacity")
)

// PixelRequest is a pixel read-back request crossing from the script side
// to the presentation side. The presentation side answers it with raw RGBA
// bytes via Resolve; the requesting script-side call is awaiting the
// response keyed by ID.
type PixelRequest struct {
	ID         uuid.UUID
	X, Y, W, H int

	resolve func([]byte)
}

// Resolve answers the request. It is safe to call exactly once; extra
// calls are ignored by the waiting side.
func (r PixelRequest) Resolve(pixels []byte) {
	if r.resolve != nil {
		r.resolve(pixels)
	}
}

// Channel is the contract both transports implement. Both endpoints of a
// pair expose all operations; by convention the script side writes draw
// batches and reads input/timing, and the presentation side does the
// reverse. No field has more than one writer.
type Channel interface {
	// SendDrawCommands replaces any unread draw batch with this one
	// (most-recent-wins, no queueing). An oversized batch is skipped
	// entirely with a diagnostic and ErrBatchTooLarge.
	SendDrawCommands(batch tinycart.Batch) error

	// DrawCommands returns the pending draw batch and atomically clears
	// it. It returns an empty batch when nothing is pending or when the
	// stored payload failed to decode (logged, never raised).
	DrawCommands() tinycart.Batch

	// SetInputState publishes this frame's input snapshot.
	SetInputState(s tinycart.InputSnapshot)
	// InputState returns the most recent input snapshot.
	InputState() tinycart.InputSnapshot

	// SetTimingInfo publishes this frame's timing snapshot.
	SetTimingInfo(t tinycart.TimingSnapshot)
	// TimingInfo returns the most recent timing snapshot.
	TimingInfo() tinycart.TimingSnapshot
	// DeltaTime returns the most recent delta time, in seconds.
	DeltaTime() float64
	// TotalTime returns the most recent total elapsed time, in seconds.
	TotalTime() float64

	// SignalFrameReady raises the one-shot per-frame signal that releases
	// a WaitForFrame call on the other side.
	SignalFrameReady()
	// WaitForFrame suspends until the other side signals the current
	// frame, the context is done, or the endpoint is disposed.
	WaitForFrame(ctx context.Context) error

	// CanvasSize returns the logical canvas size.
	CanvasSize() (w, h int)
	// SetCanvasSize publishes the logical canvas size.
	SetCanvasSize(w, h int)

	// RequestPixels submits a pixel read-back request and blocks until
	// the other side resolves it or ctx is done.
	RequestPixels(ctx context.Context, x, y, w, h int) ([]byte, error)
	// PixelRequests delivers incoming read-back requests for the local
	// side to resolve.
	PixelRequests() <-chan PixelRequest

	// SetAudioState publishes the audio control state.
	SetAudioState(a tinycart.AudioState)
	// AudioState returns the most recent audio control state.
	AudioState() tinycart.AudioState

	// Dispose tears the endpoint down. It is idempotent, never blocks,
	// and is not observable as a crash by the other side mid-frame:
	// blocked waits return ErrDisposed and later operations no-op.
	Dispose()
}

// Options configures CreatePair.
type Options struct {
	// Mode forces a transport. ModeAuto selects ModeSharedMemory when
	// SharedAllowed is set, else ModeMessagePassing.
	Mode Mode

	// SharedAllowed reports the host capability probe: a cross-context
	// shared region can be allocated and the isolation precondition
	// (cross-origin isolation or equivalent) is satisfied.
	SharedAllowed bool
}

// Pair is a communicating pair of endpoints bound to one transport.
type Pair struct {
	// Presentation is the endpoint kept by the process orchestrator.
	Presentation Channel
	// Script is the endpoint transferred into the isolated context.
	Script Channel
	// Mode is the transport actually selected.
	Mode Mode
	// Handle is the shared region handle in shared-memory mode, nil
	// otherwise. It is transferred into the isolated context at creation
	// time together with the script endpoint.
	Handle *SharedHandle
}

// Dispose tears down both endpoints. Idempotent.
func (p Pair) Dispose() {
	if p.Presentation != nil {
		p.Presentation.Dispose()
	}
	if p.Script != nil {
		p.Script.Dispose()
	}
}

// CreatePair constructs both endpoints over a fresh transport.
func CreatePair(opts Options) (Pair, error) {
	mode := opts.Mode
	if mode == ModeAuto {
		if opts.SharedAllowed {
			mode = ModeSharedMemory
		} else {
			mode = ModeMessagePassing
		}
	}
	switch mode {
	case ModeSharedMemory:
		h := newSharedHandle()
		return Pair{
			Presentation: newSharedChannel(h),
			Script:       newSharedChannel(h),
			Mode:         ModeSharedMemory,
			Handle:       h,
		}, nil
	case ModeMessagePassing:
		pres, script := newMessagePair()
		return Pair{
			Presentation: pres,
			Script:       script,
			Mode:         ModeMessagePassing,
		}, nil
	default:
		return Pair{}, fmt.Errorf("channel: unknown transport mode %q", mode)
	}
}
