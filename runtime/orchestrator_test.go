// Copyright 2026 The tinycart Authors
// SPDX-License-Identifier: BSD-3-Clause

package runtime

import (
	"errors"
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinycart/tinycart"
	"github.com/tinycart/tinycart/channel"
	"github.com/tinycart/tinycart/render"
)

// manualScheduler lets tests drive frames deterministically.
type manualScheduler struct {
	ch chan time.Time
}

func newManualScheduler() *manualScheduler {
	return &manualScheduler{ch: make(chan time.Time, 1)}
}

func (s *manualScheduler) Start(fps int) <-chan time.Time { return s.ch }
func (s *manualScheduler) Stop()                          {}

func (s *manualScheduler) tick() {
	select {
	case s.ch <- time.Now():
	default:
	}
}

// stubRunner scripts the runner behavior per tick.
type stubRunner struct {
	onTick func(ch channel.Channel, tick int) error

	ch    channel.Channel
	ticks int
}

func (r *stubRunner) Load(source string, ch channel.Channel) error {
	r.ch = ch
	return nil
}

func (r *stubRunner) Tick() error {
	r.ticks++
	if r.onTick != nil {
		return r.onTick(r.ch, r.ticks)
	}
	return nil
}

type fixture struct {
	orch      *Orchestrator
	sched     *manualScheduler
	surface   *render.ImageSurface
	exitCodes chan int
	errors    chan string
}

func newFixture(t *testing.T, runner ScriptRunner) *fixture {
	t.Helper()
	f := &fixture{
		sched:     newManualScheduler(),
		surface:   render.NewImageSurface(16, 16),
		exitCodes: make(chan int, 1),
		errors:    make(chan string, 1),
	}
	orch, err := New(Options{
		Runner:    runner,
		Renderer:  render.NewRenderer(f.surface),
		Scheduler: f.sched,
		OnError:   func(msg string) { f.errors <- msg },
		OnExit:    func(code int) { f.exitCodes <- code },
	})
	require.NoError(t, err)
	f.orch = orch
	return f
}

func (f *fixture) waitExit(t *testing.T) int {
	t.Helper()
	select {
	case code := <-f.exitCodes:
		return code
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for exit")
		return -1
	}
}

func TestStartThenStopExitsZero(t *testing.T) {
	f := newFixture(t, &stubRunner{})

	require.NoError(t, f.orch.Start(""))
	require.Eventually(t, func() bool {
		return f.orch.State() == StateRunning
	}, time.Second, time.Millisecond)
	assert.True(t, f.orch.IsRunning())

	f.sched.tick()
	f.orch.Stop()
	f.orch.Stop() // idempotent

	assert.Equal(t, 0, f.waitExit(t))
	assert.Equal(t, StateStopped, f.orch.State())
	assert.False(t, f.orch.IsRunning())
}

func TestStopBeforeReadyExitsZero(t *testing.T) {
	f := newFixture(t, &stubRunner{})

	require.NoError(t, f.orch.Start(""))
	// No wait for the running state: the stop may land while the run is
	// still initializing.
	f.orch.Stop()

	assert.Equal(t, 0, f.waitExit(t))
	assert.Equal(t, StateStopped, f.orch.State())
}

func TestScriptErrorExitsOne(t *testing.T) {
	f := newFixture(t, &stubRunner{
		onTick: func(ch channel.Channel, tick int) error {
			return errors.New("boom")
		},
	})

	require.NoError(t, f.orch.Start(""))
	require.Eventually(t, func() bool {
		return f.orch.State() == StateRunning
	}, time.Second, time.Millisecond)
	f.sched.tick()

	assert.Equal(t, 1, f.waitExit(t))
	assert.Equal(t, StateError, f.orch.State())
	assert.False(t, f.orch.IsRunning())
	select {
	case msg := <-f.errors:
		assert.Contains(t, msg, "boom")
	default:
		t.Fatal("expected an error callback")
	}
}

func TestScriptPanicIsRecovered(t *testing.T) {
	f := newFixture(t, &stubRunner{
		onTick: func(ch channel.Channel, tick int) error {
			panic("kaboom")
		},
	})

	require.NoError(t, f.orch.Start(""))
	require.Eventually(t, func() bool {
		return f.orch.State() == StateRunning
	}, time.Second, time.Millisecond)
	f.sched.tick()

	assert.Equal(t, 1, f.waitExit(t))
	select {
	case msg := <-f.errors:
		assert.Contains(t, msg, "script panic")
		assert.Contains(t, msg, "kaboom")
	default:
		t.Fatal("expected an error callback")
	}
}

func TestStartWhileRunningFails(t *testing.T) {
	f := newFixture(t, &stubRunner{})

	require.NoError(t, f.orch.Start(""))
	assert.ErrorIs(t, f.orch.Start(""), ErrAlreadyStarted)

	f.orch.Stop()
	f.waitExit(t)

	// Restart after a stop is allowed.
	require.NoError(t, f.orch.Start(""))
	f.orch.Stop()
	f.waitExit(t)
}

func TestFrameLoopRendersBatches(t *testing.T) {
	f := newFixture(t, &stubRunner{
		onTick: func(ch channel.Channel, tick int) error {
			return ch.SendDrawCommands(tinycart.Batch{
				tinycart.SetColorCommand{R: 255},
				tinycart.FillRectCommand{X: 0, Y: 0, W: 16, H: 16},
			})
		},
	})

	require.NoError(t, f.orch.Start(""))
	require.Eventually(t, func() bool {
		return f.orch.State() == StateRunning
	}, time.Second, time.Millisecond)

	// The batch produced by tick N is consumed on a later frame, so keep
	// driving frames until the surface shows it.
	require.Eventually(t, func() bool {
		f.sched.tick()
		img := f.surface.Snapshot()
		return img.RGBAAt(8, 8) == color.RGBA{255, 0, 0, 255}
	}, 2*time.Second, 5*time.Millisecond)

	f.orch.Stop()
	f.waitExit(t)
}

func TestTimingReachesScript(t *testing.T) {
	timing := make(chan tinycart.TimingSnapshot, 16)
	f := newFixture(t, &stubRunner{
		onTick: func(ch channel.Channel, tick int) error {
			timing <- ch.TimingInfo()
			return nil
		},
	})

	require.NoError(t, f.orch.Start(""))
	require.Eventually(t, func() bool {
		return f.orch.State() == StateRunning
	}, time.Second, time.Millisecond)

	f.sched.tick()
	select {
	case ts := <-timing:
		assert.NotZero(t, ts.FrameNumber)
	case <-time.After(2 * time.Second):
		t.Fatal("script never observed a frame")
	}

	f.orch.Stop()
	f.waitExit(t)
}

func TestHandleInputIsNoOp(t *testing.T) {
	f := newFixture(t, &stubRunner{})
	f.orch.HandleInput(struct{}{})
	f.orch.SetDevicePixelRatio(2)
	assert.Equal(t, StateIdle, f.orch.State())
}
