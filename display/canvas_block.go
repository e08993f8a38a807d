// Copyright 2026 The strata Authors
// SPDX-License-Identifier: BSD-3-Clause

package display

import (
	"github.com/gopix/strata"
	"github.com/gopix/strata/render"
)

// CanvasBlock renders its drawable run into a CPU pixmap. Canvas content
// is order-dependent, so any membership or paint change repaints the
// whole run.
type CanvasBlock struct {
	fittedBlock

	target *render.PixmapTarget
}

func newCanvasBlock(backbone *BackboneDrawable, renderer strata.Renderer) Block {
	b := acquireCanvasBlock()
	b.initFitted(backbone, renderer)
	return b
}

// Target returns the block's pixmap target.
func (b *CanvasBlock) Target() *render.PixmapTarget { return b.target }

// Update repaints the owned range when dirty.
func (b *CanvasBlock) Update() {
	if !b.updateBase() {
		return
	}

	resized := b.refit()
	w := int(b.fitBounds.Width())
	h := int(b.fitBounds.Height())
	if b.target == nil {
		b.target = render.NewPixmapTarget(w, h)
	} else if resized {
		b.target.Resize(w, h)
	}

	b.target.Clear()
	ctx := &PaintContext{
		Image:  b.target.Image(),
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
}

// Dispose releases the pixmap and returns the block to its pool.
func (b *CanvasBlock) Dispose() {
	b.assertNotDisposed("Dispose")
	b.target = nil
	releaseCanvasBlock(b)
}

func (b *CanvasBlock) base() *blockBase { return &b.blockBase }
