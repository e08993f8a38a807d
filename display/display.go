// Copyright 2026 The strata Authors
// SPDX-License-Identifier: BSD-3-Clause

package display

import (
	"github.com/gopix/strata"
	"github.com/gopix/strata/internal/gpudev"
	"github.com/gopix/strata/render"
)

// Options configures a Display. The zero value is usable and yields a
// CPU-only display of default size.
type Options struct {
	// Width and Height are the display surface size in pixels.
	// Zero values default to 640x480.
	Width, Height int

	// DeviceHandle is the GPU device shared by the host application.
	// WebGL blocks render through it. Nil leaves WebGL blocks on their
	// CPU staging surfaces unless RequestDevice is set.
	DeviceHandle render.DeviceHandle

	// RequestDevice stands up a dedicated wgpu device when the host
	// does not share one; on success it becomes the display's device
	// handle and WebGL blocks render through it. Failure is non-fatal:
	// the display logs a warning and WebGL blocks stay on CPU staging.
	RequestDevice bool
}

// Display drives the per-frame update of a backbone tree. It is the
// frame-loop boundary of the engine: hosts mutate the scene, hand the
// resulting drawable lists and change intervals to the root backbone,
// then call UpdateDisplay once per frame.
//
// Display is not safe for concurrent use.
type Display struct {
	width, height int

	root *BackboneDrawable

	// Every live backbone created against this display, the root
	// included. SetSize walks them all.
	backbones []*BackboneDrawable

	frame       uint64
	needsUpdate bool

	handle render.DeviceHandle
	gpu    *gpudev.Device

	disposed bool
}

// New creates a display with a fresh root backbone.
func New(opts Options) *Display {
	if opts.Width <= 0 {
		opts.Width = 640
	}
	if opts.Height <= 0 {
		opts.Height = 480
	}
	d := &Display{
		width:  opts.Width,
		height: opts.Height,
		handle: opts.DeviceHandle,
	}
	if opts.RequestDevice && opts.DeviceHandle == nil {
		dev, err := gpudev.Open("strata-display")
		if err != nil {
			strata.Logger().Warn("display: GPU device unavailable, WebGL blocks stay on CPU",
				"err", err)
		} else {
			d.gpu = dev
			d.handle = dev
			strata.Logger().Info("display: dedicated GPU device adopted")
		}
	}
	d.root = NewBackboneDrawable(d, nil, nil)
	return d
}

// RootBackbone returns the display's root backbone.
func (d *Display) RootBackbone() *BackboneDrawable { return d.root }

// Size returns the display surface size in pixels.
func (d *Display) Size() (width, height int) { return d.width, d.height }

// SetSize resizes the display surface. Every backbone created against
// this display is invalidated; full-display canvas surfaces are
// rescaled immediately so a presented frame stays plausible until the
// next update repaints them.
func (d *Display) SetSize(width, height int) {
	if width == d.width && height == d.height {
		return
	}
	d.width, d.height = width, height
	for _, b := range d.backbones {
		d.invalidateFits(b, width, height)
	}
	d.root.MarkDirty()
}

// invalidateFits forces every fitted block under the backbone to
// recompute its surface size.
func (d *Display) invalidateFits(b *BackboneDrawable, width, height int) {
	for _, blk := range b.blocks {
		switch fb := blk.(type) {
		case *CanvasBlock:
			fb.fitDirty = true
			if fb.fit == FitFullDisplay && fb.target != nil {
				fb.target.Rescale(width, height)
			}
		case *WebGLBlock:
			fb.fitDirty = true
		}
		blk.MarkDirty()
	}
}

// registerBackbone adds a backbone to the resize walk.
func (d *Display) registerBackbone(b *BackboneDrawable) {
	d.backbones = append(d.backbones, b)
}

// unregisterBackbone removes a disposed backbone from the resize walk.
func (d *Display) unregisterBackbone(b *BackboneDrawable) {
	for i, bb := range d.backbones {
		if bb == b {
			d.backbones = append(d.backbones[:i], d.backbones[i+1:]...)
			return
		}
	}
}

// Frame returns the display's frame counter.
func (d *Display) Frame() uint64 { return d.frame }

// DeviceHandle returns the GPU device shared with WebGL blocks, or nil
// for a CPU-only display.
func (d *Display) DeviceHandle() render.DeviceHandle { return d.handle }

// MarkDirtyDrawable receives the root backbone's dirty notification.
func (d *Display) MarkDirtyDrawable(dr *Drawable) {
	d.needsUpdate = true
}

// NeedsUpdate reports whether any backbone flagged work since the last
// UpdateDisplay.
func (d *Display) NeedsUpdate() bool { return d.needsUpdate }

// UpdateDisplay runs one synchronous frame pass: it advances the frame
// counter and walks the dirty backbone/block tree, flushing deferred
// structural changes and repainting. The pass always runs to
// completion; there is no cancellable unit of work.
func (d *Display) UpdateDisplay() {
	if d.disposed {
		return
	}
	d.frame++
	d.root.Update()
	d.needsUpdate = false
}

// Dispose tears down the display, its backbone tree, and any dedicated
// GPU device. The display must not be used afterwards.
func (d *Display) Dispose() {
	if d.disposed {
		return
	}
	d.disposed = true
	d.root.Dispose()
	if d.gpu != nil {
		d.gpu.Close()
		d.gpu = nil
	}
}
