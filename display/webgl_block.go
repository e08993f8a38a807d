// Copyright 2026 The strata Authors
// SPDX-License-Identifier: BSD-3-Clause

package display

import (
	"github.com/gopix/strata"
	"github.com/gopix/strata/render"
)

// WebGLBlock renders its drawable run into a GPU-backed texture target.
// Drawables paint into the target's CPU staging surface; the staged
// content is uploaded when the host flushes the display's textures.
// Without a device handle the block degrades to the staging surface
// only, which keeps headless hosts and tests working.
type WebGLBlock struct {
	fittedBlock

	target *render.TextureTarget
}

func newWebGLBlock(backbone *BackboneDrawable, renderer strata.Renderer) Block {
	b := acquireWebGLBlock()
	b.initFitted(backbone, renderer)
	if backbone != nil && backbone.display != nil && backbone.display.DeviceHandle() == nil {
		strata.Logger().Warn("display: WebGL block without device handle, staging on CPU",
			"block", b.ID())
	}
	return b
}

// Target returns the block's texture target, or nil before first update.
func (b *WebGLBlock) Target() *render.TextureTarget { return b.target }

// Update repaints the staging surface when dirty and flags it for GPU
// upload.
func (b *WebGLBlock) Update() {
	if !b.updateBase() {
		return
	}

	resized := b.refit()
	w := uint32(b.fitBounds.Width())
	h := uint32(b.fitBounds.Height())
	if b.target == nil || resized {
		if b.target != nil {
			b.target.Destroy()
		}
		var handle render.DeviceHandle
		if b.backbone != nil && b.backbone.display != nil {
			handle = b.backbone.display.DeviceHandle()
		}
		b.target = render.NewTextureTarget(handle, render.DefaultTextureDescriptor(w, h))
	}

	staging := b.target.Staging()
	staging.Clear()
	ctx := &PaintContext{
		Image:  staging.Image(),
		Target: b.target,
	}
	if b.backbone != nil && b.backbone.display != nil {
		ctx.Frame = b.backbone.display.Frame()
	}
	b.eachDrawable(func(d *Drawable) {
		if d.painter != nil {
			d.painter.Paint(ctx)
		}
	})
	b.target.MarkDirty()
}

// Dispose destroys the texture target and returns the block to its pool.
func (b *WebGLBlock) Dispose() {
	b.assertNotDisposed("Dispose")
	if b.target != nil {
		b.target.Destroy()
		b.target = nil
	}
	releaseWebGLBlock(b)
}

func (b *WebGLBlock) base() *blockBase { return &b.blockBase }

var _ Block = (*WebGLBlock)(nil)
