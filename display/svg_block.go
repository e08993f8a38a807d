// Copyright 2026 The strata Authors
// SPDX-License-Identifier: BSD-3-Clause

package display

import (
	"bytes"
	"fmt"

	"github.com/gopix/strata"
)

// SVGBlock renders its drawable run as one document fragment: a group
// element wrapping each drawable's emitted markup in list order. The
// fragment is rebuilt from scratch on every dirty update; retained
// per-element mutation is the host's concern.
type SVGBlock struct {
	fittedBlock

	buf bytes.Buffer
}

func newSVGBlock(backbone *BackboneDrawable, renderer strata.Renderer) Block {
	b := acquireSVGBlock()
	b.initFitted(backbone, renderer)
	b.buf.Reset()
	return b
}

// Fragment returns the current document fragment.
func (b *SVGBlock) Fragment() string { return b.buf.String() }

// Update rebuilds the fragment when dirty.
func (b *SVGBlock) Update() {
	if !b.updateBase() {
		return
	}
	b.refit()

	b.buf.Reset()
	fmt.Fprintf(&b.buf, "<g data-block=\"%d\">", b.ID())
	ctx := &PaintContext{SVG: &b.buf}
	if b.backbone != nil && b.backbone.display != nil {
		ctx.Frame = b.backbone.display.Frame()
	}
	b.eachDrawable(func(d *Drawable) {
		if d.painter != nil {
			d.painter.Paint(ctx)
		}
	})
	b.buf.WriteString("</g>")
}

// Dispose clears the fragment and returns the block to its pool.
func (b *SVGBlock) Dispose() {
	b.assertNotDisposed("Dispose")
	b.buf.Reset()
	releaseSVGBlock(b)
}

func (b *SVGBlock) base() *blockBase { return &b.blockBase }

var _ Block = (*SVGBlock)(nil)
var _ Block = (*CanvasBlock)(nil)
