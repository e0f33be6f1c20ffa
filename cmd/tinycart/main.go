// Copyright 2026 The tinycart Authors
// SPDX-License-Identifier: BSD-3-Clause

// Command tinycart runs a built-in demo script through the sandboxed
// canvas runtime and captures the final frame as a PNG.
package main

import (
	"flag"
	"log"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/tinycart/tinycart"
	"github.com/tinycart/tinycart/channel"
	"github.com/tinycart/tinycart/config"
	"github.com/tinycart/tinycart/input"
	"github.com/tinycart/tinycart/render"
	"github.com/tinycart/tinycart/runtime"
)

func main() {
	var (
		configPath = flag.String("config", "", "TOML config file")
		output     = flag.String("output", "tinycart.png", "output file")
		duration   = flag.Duration("duration", 2*time.Second, "how long to run")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	level, _ := cfg.LogLevel()
	tinycart.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))

	surface := render.NewImageSurface(cfg.Canvas.Width, cfg.Canvas.Height)
	renderer := render.NewRenderer(surface)

	exited := make(chan int, 1)
	orch, err := runtime.New(runtime.Options{
		Runner:        &demoRunner{},
		Renderer:      renderer,
		Capture:       input.NewCapture(),
		TargetFPS:     cfg.Runtime.TargetFPS,
		Transport:     cfg.TransportMode(),
		SharedAllowed: cfg.Transport.SharedAllowed,
		OnOutput:      func(line string) { log.Println(line) },
		OnError:       func(msg string) { log.Printf("Script error: %s", msg) },
		OnExit:        func(code int) { exited <- code },
	})
	if err != nil {
		log.Fatalf("Failed to create runtime: %v", err)
	}

	if err := orch.Start(""); err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	time.Sleep(*duration)
	orch.Stop()
	code := <-exited

	f, err := os.Create(*output)
	if err != nil {
		log.Fatalf("Failed to create output: %v", err)
	}
	defer f.Close()
	if err := surface.EncodePNG(f); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}
	log.Printf("Capture saved to %s (%dx%d)\n", *output, cfg.Canvas.Width, cfg.Canvas.Height)
	os.Exit(code)
}

// demoRunner is a stand-in script engine: a bouncing ball that follows
// the mouse-free demo loop, emitting one draw batch per tick.
type demoRunner struct {
	ch   channel.Channel
	x, y float64
	vx   float64
	vy   float64
}

func (d *demoRunner) Load(source string, ch channel.Channel) error {
	d.ch = ch
	d.x, d.y = 100, 100
	d.vx, d.vy = 180, 140
	return nil
}

func (d *demoRunner) Tick() error {
	w, h := d.ch.CanvasSize()
	dt := d.ch.DeltaTime()
	d.x += d.vx * dt
	d.y += d.vy * dt
	if d.x < 20 || d.x > float64(w)-20 {
		d.vx = -d.vx
	}
	if d.y < 20 || d.y > float64(h)-20 {
		d.vy = -d.vy
	}
	pulse := 20 + 5*math.Sin(d.ch.TotalTime()*4)

	batch := tinycart.Batch{
		tinycart.ClearCommand{},
		tinycart.SetColorCommand{R: 24, G: 24, B: 48},
		tinycart.FillRectCommand{X: 0, Y: 0, W: float64(w), H: float64(h)},
		tinycart.SetColorCommand{R: 255, G: 120, B: 60},
		tinycart.FillCircleCommand{X: d.x, Y: d.y, R: pulse},
		tinycart.SetColorCommand{R: 230, G: 230, B: 230},
		tinycart.DrawTextCommand{Text: "tinycart", X: 12, Y: 24, Size: 16},
	}
	return d.ch.SendDrawCommands(batch)
}
