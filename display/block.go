// Copyright 2026 The strata Authors
// SPDX-License-Identifier: BSD-3-Clause

package display

import (
	"errors"
	"fmt"

	"github.com/gopix/strata"
)

// ErrUnsupportedRenderer is the panic cause when a renderer code with no
// registered block family reaches block allocation. This always
// indicates a classification bug upstream; drawables are never silently
// skipped.
var ErrUnsupportedRenderer = errors.New("display: unsupported renderer")

// Block aggregates a contiguous run of drawables of one renderer family
// and renders them together. The synchronization engine calls these
// methods without knowledge of backend internals.
type Block interface {
	Parent

	// Renderer returns the block's renderer classification. Only the
	// family bits are significant for stitching.
	Renderer() strata.Renderer

	// ZIndex returns the block's stacking index within its backbone.
	ZIndex() int

	// SetZIndex assigns the stacking index. Callers maintain strict
	// monotonicity across the backbone's block list.
	SetZIndex(z int)

	// AddDrawable attaches a drawable whose pending addition resolved
	// to this block. The drawable's parent is already set.
	AddDrawable(d *Drawable)

	// RemoveDrawable detaches a drawable from the block.
	RemoveDrawable(d *Drawable)

	// NotifyInterval informs the block of the final contiguous range it
	// owns. Called exactly once per reconciliation pass that changed
	// the range, after the full run is known.
	NotifyInterval(first, last *Drawable)

	// FirstDrawable returns the first drawable of the owned range.
	FirstDrawable() *Drawable

	// LastDrawable returns the last drawable of the owned range.
	LastDrawable() *Drawable

	// Update flushes pending repaints. Skipped by the backbone when the
	// block is clean.
	Update()

	// MarkDirty flags the block for update and notifies the backbone.
	MarkDirty()

	// Dispose releases the block's resources and returns it to its
	// pool. DOM blocks are disposed whenever their drawable goes away;
	// other families may instead be reused by the stitcher.
	Dispose()

	// base exposes the shared block state to the stitcher. Keeping it
	// unexported closes the set of block implementations to this
	// package and its registered factories.
	base() *blockBase
}

// blockBase carries the state shared by every block family. A block is
// itself a drawable: its embedded Drawable links it to the owning
// backbone for dirty propagation.
type blockBase struct {
	Drawable

	backbone *BackboneDrawable

	first, last *Drawable // contiguous owned range
	count       int       // attached drawables

	zIndex int
	used   bool // reuse bookkeeping during stitching

	dirtyDrawables []*Drawable
}

// initBase resets the shared state for a freshly acquired block. Every
// field is restored to its initial value here, in the pool's reinit
// path, so no stale reference from a previous tenant can leak out.
func (b *blockBase) initBase(backbone *BackboneDrawable, renderer strata.Renderer) {
	b.Drawable.reset(renderer, nil)
	if backbone != nil {
		b.Drawable.parent = backbone
	}
	b.backbone = backbone
	b.first, b.last = nil, nil
	b.count = 0
	b.zIndex = 0
	b.used = true
	b.dirtyDrawables = b.dirtyDrawables[:0]
}

// clearBase nulls cross-references before the block returns to a pool.
func (b *blockBase) clearBase() {
	b.Drawable.clear()
	b.backbone = nil
	b.first, b.last = nil, nil
	b.count = 0
	b.used = false
	for i := range b.dirtyDrawables {
		b.dirtyDrawables[i] = nil
	}
	b.dirtyDrawables = b.dirtyDrawables[:0]
}

// ZIndex returns the block's stacking index.
func (b *blockBase) ZIndex() int { return b.zIndex }

// SetZIndex assigns the stacking index.
func (b *blockBase) SetZIndex(z int) { b.zIndex = z }

// FirstDrawable returns the first drawable of the owned range.
func (b *blockBase) FirstDrawable() *Drawable { return b.first }

// LastDrawable returns the last drawable of the owned range.
func (b *blockBase) LastDrawable() *Drawable { return b.last }

// Count returns the number of attached drawables.
func (b *blockBase) Count() int { return b.count }

// MarkDirtyDrawable queues the drawable for repaint and dirties the
// block. Drawable.MarkDirty guarantees each drawable is queued at most
// once per frame.
func (b *blockBase) MarkDirtyDrawable(d *Drawable) {
	b.assertNotDisposed("MarkDirtyDrawable")
	b.dirtyDrawables = append(b.dirtyDrawables, d)
	b.MarkDirty()
}

// AddDrawable attaches a drawable whose pending addition resolved here.
func (b *blockBase) AddDrawable(d *Drawable) {
	b.assertNotDisposed("AddDrawable")
	b.count++
	// Force a first paint of the new content.
	d.dirty = false
	d.MarkDirty()
}

// RemoveDrawable detaches a drawable. Membership changed, so the block
// must repaint.
func (b *blockBase) RemoveDrawable(d *Drawable) {
	b.assertNotDisposed("RemoveDrawable")
	if b.count <= 0 {
		panic(fmt.Sprintf("display: removing drawable %d from empty block", d.ID()))
	}
	b.count--
	for i, dd := range b.dirtyDrawables {
		if dd == d {
			b.dirtyDrawables = append(b.dirtyDrawables[:i], b.dirtyDrawables[i+1:]...)
			break
		}
	}
	b.MarkDirty()
}

// NotifyInterval records the block's owned range.
func (b *blockBase) NotifyInterval(first, last *Drawable) {
	b.assertNotDisposed("NotifyInterval")
	b.first, b.last = first, last
	b.MarkDirty()
}

// updateBase clears per-frame dirty state and reports whether any work
// was pending. Concrete blocks call this at the top of Update.
func (b *blockBase) updateBase() bool {
	if !b.dirty {
		return false
	}
	b.Drawable.Update()
	for i, d := range b.dirtyDrawables {
		if !d.Disposed() {
			d.Update()
		}
		b.dirtyDrawables[i] = nil
	}
	b.dirtyDrawables = b.dirtyDrawables[:0]
	return true
}

// eachDrawable walks the owned range in order.
func (b *blockBase) eachDrawable(fn func(d *Drawable)) {
	for d := b.first; d != nil; d = d.next {
		fn(d)
		if d == b.last {
			break
		}
	}
}
