// Copyright 2026 The tinycart Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package runtime orchestrates the lifecycle of a sandboxed script: it
// provisions the transport pair, hosts the script context on its own
// goroutine, and drives the presentation frame loop.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tinycart/tinycart"
	"github.com/tinycart/tinycart/channel"
	"github.com/tinycart/tinycart/input"
	"github.com/tinycart/tinycart/render"
)

// ErrAlreadyStarted is returned by Start while a run is in progress.
var ErrAlreadyStarted = errors.New("runtime: already started")

// Options configures an Orchestrator.
type Options struct {
	// Runner executes the loaded script. Required.
	Runner ScriptRunner
	// Renderer consumes draw batches. Required.
	Renderer *render.Renderer
	// Capture supplies input snapshots. A fresh capture is created when
	// nil.
	Capture *input.Capture
	// Scheduler paces the frame loop. Defaults to a wall-clock ticker.
	Scheduler FrameScheduler
	// TargetFPS is the frame rate target. Defaults to 60.
	TargetFPS int

	// Transport forces a transport mode; empty selects automatically
	// based on SharedAllowed.
	Transport channel.Mode
	// SharedAllowed reports the host's shared-region capability probe.
	SharedAllowed bool

	// OnOutput receives human-readable runtime and script output lines.
	OnOutput func(line string)
	// OnError receives the description of a failed run.
	OnError func(msg string)
	// OnExit receives the exit code: 0 after a requested stop, 1 after
	// an error.
	OnExit func(code int)
}

// Orchestrator owns one script run at a time and walks the lifecycle
// idle -> initializing -> running -> stopped or error. Start and Stop
// never block on the run itself.
type Orchestrator struct {
	opts Options

	mu       sync.Mutex
	state    State
	pair     channel.Pair
	cancel   context.CancelFunc
	stopping bool
	dpr      float64
}

// New creates an orchestrator in the idle state.
func New(opts Options) (*Orchestrator, error) {
	if opts.Runner == nil {
		return nil, errors.New("runtime: Options.Runner is required")
	}
	if opts.Renderer == nil {
		return nil, errors.New("runtime: Options.Renderer is required")
	}
	if opts.Capture == nil {
		opts.Capture = input.NewCapture()
	}
	if opts.Scheduler == nil {
		opts.Scheduler = NewTickerScheduler()
	}
	if opts.TargetFPS <= 0 {
		opts.TargetFPS = 60
	}
	return &Orchestrator{opts: opts, state: StateIdle}, nil
}

// State returns the current lifecycle state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// IsRunning reports whether a run is in progress (initializing counts).
func (o *Orchestrator) IsRunning() bool {
	s := o.State()
	return s == StateInitializing || s == StateRunning
}

// SetDevicePixelRatio records the host display scale. The value is
// applied to the input capture immediately and re-applied on every
// start, so it may be set before the first run.
func (o *Orchestrator) SetDevicePixelRatio(r float64) {
	if r <= 0 {
		return
	}
	o.mu.Lock()
	o.dpr = r
	o.mu.Unlock()
	o.opts.Capture.SetDevicePixelRatio(r)
}

// HandleInput is reserved for routing host input events through the
// orchestrator. Input currently flows through the Capture directly.
func (o *Orchestrator) HandleInput(event any) {}

// Start begins a run with the given script source. It returns once the
// run is launched; loading and execution proceed in the background, with
// results delivered through the callbacks. Restarting after stopped or
// error is allowed.
func (o *Orchestrator) Start(source string) error {
	o.mu.Lock()
	if o.state == StateInitializing || o.state == StateRunning {
		o.mu.Unlock()
		return ErrAlreadyStarted
	}
	o.state = StateInitializing
	o.stopping = false

	pair, err := channel.CreatePair(channel.Options{
		Mode:          o.opts.Transport,
		SharedAllowed: o.opts.SharedAllowed,
	})
	if err != nil {
		o.state = StateError
		o.mu.Unlock()
		return err
	}
	o.pair = pair

	ctx, cancel := context.WithCancel(context.Background())
	o.cancel = cancel
	if o.dpr > 0 {
		o.opts.Capture.SetDevicePixelRatio(o.dpr)
	}
	o.mu.Unlock()

	o.emit(Message{Kind: MsgStateChanged, State: StateInitializing})
	switch pair.Mode {
	case channel.ModeSharedMemory:
		o.output("transport: shared memory (high-performance mode)")
	default:
		o.output("transport: message passing (compatibility mode)")
	}

	go o.supervise(ctx, pair, source)
	return nil
}

// Stop requests a graceful shutdown. It never blocks and is idempotent;
// calls outside a run are no-ops.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if o.state != StateInitializing && o.state != StateRunning {
		o.mu.Unlock()
		return
	}
	o.stopping = true
	cancel := o.cancel
	o.mu.Unlock()

	o.emit(Message{Kind: MsgStop})
	if cancel != nil {
		cancel()
	}
}

// supervise runs the load phase and then both run goroutines, collecting
// the first failure.
func (o *Orchestrator) supervise(ctx context.Context, pair channel.Pair, source string) {
	o.emit(Message{Kind: MsgInit})

	// Publish the canvas geometry before the script can observe the
	// endpoint.
	w, h := o.opts.Renderer.Surface().Size()
	pair.Presentation.SetCanvasSize(w, h)
	o.opts.Capture.SetCanvasSize(w, h)
	o.opts.Renderer.OnResize = func(w, h int) {
		pair.Presentation.SetCanvasSize(w, h)
		o.opts.Capture.SetCanvasSize(w, h)
	}

	if err := o.opts.Runner.Load(source, pair.Script); err != nil {
		o.finish(fmt.Errorf("load: %w", err))
		return
	}

	o.setState(StateRunning)
	o.emit(Message{Kind: MsgReady})
	o.emit(Message{Kind: MsgStart})

	g, gctx := errgroup.WithContext(ctx)
	sc := &scriptContext{runner: o.opts.Runner, ch: pair.Script}
	g.Go(func() error { return sc.run(gctx) })
	g.Go(func() error { return o.frameLoop(gctx, pair.Presentation) })
	o.finish(g.Wait())
}

// finish tears the run down and reports the outcome exactly once.
func (o *Orchestrator) finish(err error) {
	o.mu.Lock()
	stopping := o.stopping
	pair := o.pair
	o.pair = channel.Pair{}
	o.mu.Unlock()

	pair.Dispose()

	if err != nil && !errors.Is(err, context.Canceled) && !stopping {
		tinycart.Logger().Warn("script run failed", "error", err)
		o.setState(StateError)
		o.emit(Message{Kind: MsgError, Text: err.Error()})
		if o.opts.OnError != nil {
			o.opts.OnError(err.Error())
		}
		if o.opts.OnExit != nil {
			o.opts.OnExit(1)
		}
		return
	}
	o.setState(StateStopped)
	if o.opts.OnExit != nil {
		o.opts.OnExit(0)
	}
}

// frameLoop is the presentation side of the per-frame protocol: publish
// input and timing, release the script's frame gate, consume whatever
// batch the previous tick produced, and answer pixel read-backs.
func (o *Orchestrator) frameLoop(ctx context.Context, ch channel.Channel) error {
	frames := o.opts.Scheduler.Start(o.opts.TargetFPS)
	defer o.opts.Scheduler.Stop()

	capture := o.opts.Capture
	renderer := o.opts.Renderer
	start := time.Now()
	last := start
	var frame uint32

	for {
		var now time.Time
		select {
		case <-ctx.Done():
			return nil
		case now = <-frames:
		}
		frame++
		dt := now.Sub(last).Seconds()
		last = now

		capture.PollGamepads()
		ch.SetInputState(capture.Snapshot())
		ch.SetTimingInfo(tinycart.TimingSnapshot{
			DeltaTime:   dt,
			TotalTime:   now.Sub(start).Seconds(),
			FrameNumber: frame,
		})
		capture.Update()

		ch.SignalFrameReady()

		if batch := ch.DrawCommands(); len(batch) > 0 {
			renderer.Render(batch)
		}
		o.drainPixelRequests(ch)
	}
}

func (o *Orchestrator) drainPixelRequests(ch channel.Channel) {
	surface := o.opts.Renderer.Surface()
	for {
		select {
		case req := <-ch.PixelRequests():
			req.Resolve(surface.ReadPixels(req.X, req.Y, req.W, req.H))
		default:
			return
		}
	}
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
	o.emit(Message{Kind: MsgStateChanged, State: s})
}

func (o *Orchestrator) output(line string) {
	o.emit(Message{Kind: MsgOutput, Text: line})
	if o.opts.OnOutput != nil {
		o.opts.OnOutput(line)
	}
}

func (o *Orchestrator) emit(m Message) {
	tinycart.Logger().Debug("lifecycle message",
		"kind", m.Kind.String(), "state", m.State.String(), "text", m.Text)
}
