// Copyright 2026 The tinycart Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package config loads the runtime configuration from a TOML file.
package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/tinycart/tinycart/channel"
)

// Config is the runtime configuration. Zero values are replaced by the
// defaults before validation.
type Config struct {
	Canvas    CanvasConfig    `toml:"canvas"`
	Runtime   RuntimeConfig   `toml:"runtime"`
	Transport TransportConfig `toml:"transport"`
	Log       LogConfig       `toml:"log"`
}

// CanvasConfig sets the logical drawing surface size.
type CanvasConfig struct {
	Width  int `toml:"width"`
	Height int `toml:"height"`
}

// RuntimeConfig sets frame pacing.
type RuntimeConfig struct {
	TargetFPS int `toml:"target_fps"`
}

// TransportConfig overrides transport selection. Mode may be empty
// (automatic), "shared-memory" or "message-passing".
type TransportConfig struct {
	Mode          string `toml:"mode"`
	SharedAllowed bool   `toml:"shared_allowed"`
}

// LogConfig sets the log level: "debug", "info", "warn" or "error".
type LogConfig struct {
	Level string `toml:"level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Canvas:    CanvasConfig{Width: 800, Height: 600},
		Runtime:   RuntimeConfig{TargetFPS: 60},
		Transport: TransportConfig{SharedAllowed: true},
		Log:       LogConfig{Level: "info"},
	}
}

// Load reads a TOML file over the defaults. A missing file is not an
// error; it yields the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("config: unknown key %q", undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	if c.Canvas.Width < 1 || c.Canvas.Height < 1 {
		return fmt.Errorf("config: canvas size %dx%d is not positive",
			c.Canvas.Width, c.Canvas.Height)
	}
	if c.Runtime.TargetFPS < 1 || c.Runtime.TargetFPS > 240 {
		return fmt.Errorf("config: target_fps %d outside 1..240", c.Runtime.TargetFPS)
	}
	switch channel.Mode(c.Transport.Mode) {
	case channel.ModeAuto, channel.ModeSharedMemory, channel.ModeMessagePassing:
	default:
		return fmt.Errorf("config: unknown transport mode %q", c.Transport.Mode)
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// TransportMode returns the configured transport override.
func (c Config) TransportMode() channel.Mode {
	return channel.Mode(c.Transport.Mode)
}

// LogLevel maps the configured level name to a slog level.
func (c Config) LogLevel() (slog.Level, error) {
	switch c.Log.Level {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("config: unknown log level %q", c.Log.Level)
}
