// Copyright 2026 The strata Authors
// SPDX-License-Identifier: BSD-3-Clause

package display

import (
	"fmt"

	"github.com/gopix/strata"
)

// DOMBlock wraps exactly one drawable around a host element. DOM blocks
// never batch and are never reused by the stitcher: each one is uniquely
// tied to its single drawable and is destroyed with it.
type DOMBlock struct {
	blockBase

	element any // opaque host element provided by the painter
}

func newDOMBlock(backbone *BackboneDrawable, renderer strata.Renderer) Block {
	b := acquireDOMBlock()
	b.initBase(backbone, renderer)
	b.element = nil
	return b
}

// Element returns the wrapped host element, or nil before first update.
func (b *DOMBlock) Element() any { return b.element }

// AddDrawable attaches the block's single drawable.
func (b *DOMBlock) AddDrawable(d *Drawable) {
	if b.count >= 1 {
		panic(fmt.Sprintf("display: DOM block %d cannot own a second drawable", b.ID()))
	}
	b.blockBase.AddDrawable(d)
}

// NotifyInterval records the owned range, which must span one drawable.
func (b *DOMBlock) NotifyInterval(first, last *Drawable) {
	if first != last {
		panic(fmt.Sprintf("display: DOM block %d notified of a multi-drawable interval", b.ID()))
	}
	b.blockBase.NotifyInterval(first, last)
}

// Update refreshes the wrapped element from the drawable's painter.
func (b *DOMBlock) Update() {
	if !b.updateBase() {
		return
	}
	d := b.first
	if d == nil || d.painter == nil {
		return
	}
	ctx := &PaintContext{}
	if b.backbone != nil && b.backbone.display != nil {
		ctx.Frame = b.backbone.display.Frame()
	}
	d.painter.Paint(ctx)
	if ep, ok := d.painter.(ElementProvider); ok {
		b.element = ep.Element()
	}
}

// Dispose detaches the element and returns the block to its pool.
func (b *DOMBlock) Dispose() {
	b.assertNotDisposed("Dispose")
	b.element = nil
	releaseDOMBlock(b)
}

func (b *DOMBlock) base() *blockBase { return &b.blockBase }

var _ Block = (*DOMBlock)(nil)
