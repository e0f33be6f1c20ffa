// Copyright 2026 The tinycart Authors
// SPDX-License-Identifier: BSD-3-Clause

package runtime

import (
	"context"
	"errors"
	"fmt"

	"github.com/tinycart/tinycart/channel"
)

// ScriptRunner executes user script code against a channel endpoint. The
// orchestrator stays agnostic of the scripting engine; anything that can
// load source text and advance one tick per frame fits.
type ScriptRunner interface {
	// Load compiles or otherwise prepares the script. The endpoint is
	// the script side of the transport pair and stays valid until the
	// orchestrator disposes it.
	Load(source string, ch channel.Channel) error

	// Tick runs one frame of the script. A returned error aborts the
	// run and surfaces as a lifecycle error message.
	Tick() error
}

// scriptContext hosts a runner on its own goroutine, isolated from the
// presentation side. The only things crossing the boundary are the
// channel endpoint and lifecycle messages.
type scriptContext struct {
	runner ScriptRunner
	ch     channel.Channel
	out    chan<- Message
}

// run drives the tick loop, gated on the frame handshake. A panic in
// script code is recovered and converted into an error so the
// presentation side observes a clean lifecycle failure, never a crash.
func (sc *scriptContext) run(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("script panic: %v", r)
		}
	}()

	for {
		if werr := sc.ch.WaitForFrame(ctx); werr != nil {
			if errors.Is(werr, context.Canceled) || errors.Is(werr, context.DeadlineExceeded) {
				return nil
			}
			if errors.Is(werr, channel.ErrDisposed) {
				return nil
			}
			return werr
		}
		if terr := sc.runner.Tick(); terr != nil {
			return terr
		}
	}
}
