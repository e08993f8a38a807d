// Copyright 2026 The strata Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render provides render target abstractions for strata blocks.
//
// A RenderTarget is where a block's output goes: a CPU-backed pixmap for
// Canvas blocks, or a GPU texture for WebGL blocks. The package follows
// the principle that strata RECEIVES GPU devices from the host application
// (via DeviceHandle); it does not create them unless explicitly asked to
// (see internal/gpudev).
package render
