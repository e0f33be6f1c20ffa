// Copyright 2026 The tinycart Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package tinycart holds the shared contract between the presentation
// side and the sandboxed script side of the canvas runtime: the
// draw-instruction variants and their wire codec, the per-frame input,
// timing and audio snapshots, the 2D affine transform, and the
// package-level logger.
//
// The moving parts live in the subpackages: channel carries the
// per-frame protocol over shared memory or message passing, render
// executes draw batches against a raster surface, input captures host
// events into snapshots, runtime orchestrates the script lifecycle, and
// config loads the TOML runtime configuration.
package tinycart
