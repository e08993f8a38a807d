// Copyright 2026 The strata Authors
// SPDX-License-Identifier: BSD-3-Clause

package display

import (
	"bytes"
	"fmt"
	"image"

	"github.com/gopix/strata"
	"github.com/gopix/strata/render"
)

// Parent renders a drawable and receives its dirty notifications.
// Blocks, backbones and the Display itself all act as parents.
type Parent interface {
	// MarkDirtyDrawable queues the drawable for repaint on the next
	// update pass and marks the parent itself dirty.
	MarkDirtyDrawable(d *Drawable)
}

// Painter renders a drawable's visual content onto the surface of the
// block that owns it. The fields of PaintContext that are non-nil depend
// on the owning block's renderer family.
//
// Painters are opaque to the synchronization engine; a drawable with a
// nil painter participates in stitching but renders nothing.
type Painter interface {
	Paint(ctx *PaintContext)
}

// Bounded is an optional interface for painters that can report content
// bounds. Fitted blocks union these bounds to size their backing surface.
type Bounded interface {
	Bounds() strata.Rect
}

// ElementProvider is an optional interface for painters owned by DOM
// blocks. The returned element is the host object the block wraps.
type ElementProvider interface {
	Element() any
}

// PaintContext carries the surface a painter draws onto.
type PaintContext struct {
	// Frame is the display frame counter at paint time.
	Frame uint64

	// Image is the raster surface for Canvas and WebGL blocks.
	Image *image.RGBA

	// SVG is the fragment sink for SVG blocks.
	SVG *bytes.Buffer

	// Target is the owning block's render target when it has one.
	Target render.RenderTarget
}

// Drawable is one renderable unit bound to a single (node, renderer)
// pair. Drawables form a doubly-linked list per backbone; each node also
// carries "old" link snapshots describing the list as it was before the
// current update pass, which the stitcher diffs against.
//
// Drawables are pooled. A disposed drawable must not be touched; every
// mutator panics on use after dispose, since silent corruption of a
// pooled object is far harder to diagnose than a crash.
type Drawable struct {
	id       uint64
	renderer strata.Renderer

	prev, next       *Drawable // live list
	oldPrev, oldNext *Drawable // snapshot of the list from the previous pass

	parent        Parent // block or backbone currently rendering this drawable
	pendingParent Parent

	pendingAddition bool
	pendingRemoval  bool
	pendingQueued   bool // already queued in the backbone's pending list

	dirty    bool
	disposed bool

	painter Painter
}

// ID returns the drawable's stable numeric identity.
func (d *Drawable) ID() uint64 { return d.id }

// Renderer returns the drawable's renderer classification. It is
// immutable: changing renderer requires disposing this drawable and
// creating a new one.
func (d *Drawable) Renderer() strata.Renderer { return d.renderer }

// Parent returns the block or backbone currently rendering the drawable.
func (d *Drawable) Parent() Parent { return d.parent }

// Dirty reports whether the drawable needs repainting.
func (d *Drawable) Dirty() bool { return d.dirty }

// Disposed reports whether the drawable has been returned to the pool.
func (d *Drawable) Disposed() bool { return d.disposed }

// NextDrawable returns the next drawable in the live list.
func (d *Drawable) NextDrawable() *Drawable { return d.next }

// PreviousDrawable returns the previous drawable in the live list.
func (d *Drawable) PreviousDrawable() *Drawable { return d.prev }

// OldNextDrawable returns the next drawable in the previous pass's list.
func (d *Drawable) OldNextDrawable() *Drawable { return d.oldNext }

// OldPreviousDrawable returns the previous drawable in the previous
// pass's list.
func (d *Drawable) OldPreviousDrawable() *Drawable { return d.oldPrev }

func (d *Drawable) assertNotDisposed(op string) {
	if d.disposed {
		panic(fmt.Sprintf("display: %s on disposed drawable %d", op, d.id))
	}
}

// MarkDirty flags the drawable for repaint and notifies its parent.
// The operation is idempotent within one frame: marking an already-dirty
// drawable is a no-op, so parents never see duplicate queue entries.
func (d *Drawable) MarkDirty() {
	d.assertNotDisposed("MarkDirty")
	if d.dirty {
		return
	}
	d.dirty = true
	if d.parent != nil {
		d.parent.MarkDirtyDrawable(d)
	}
}

// Update clears the dirty flag. It is the only place the flag is
// cleared, and is safe to call on an already-clean drawable.
func (d *Drawable) Update() {
	d.assertNotDisposed("Update")
	d.dirty = false
}

// NotePendingAddition records that the drawable will be added to the
// given parent on the next update pass. The structural add is deferred
// so that add/remove notifications arriving mid-frame cannot leave the
// list inconsistent.
func (d *Drawable) NotePendingAddition(p Parent) {
	d.assertNotDisposed("NotePendingAddition")
	d.pendingParent = p
	d.pendingAddition = true
}

// NotePendingRemoval records that the drawable will be removed from its
// current parent on the next update pass.
func (d *Drawable) NotePendingRemoval() {
	d.assertNotDisposed("NotePendingRemoval")
	d.pendingRemoval = true
}

// PendingAddition reports whether a deferred add is recorded.
func (d *Drawable) PendingAddition() bool { return d.pendingAddition }

// PendingRemoval reports whether a deferred removal is recorded.
func (d *Drawable) PendingRemoval() bool { return d.pendingRemoval }

// PendingParent returns the target parent of a deferred add, or nil.
func (d *Drawable) PendingParent() Parent { return d.pendingParent }

// applyPendingState flushes deferred add/remove bookkeeping. Removal is
// applied before addition so a drawable moving between blocks leaves its
// old block first. Called by the owning backbone during its update pass.
func (d *Drawable) applyPendingState() {
	d.assertNotDisposed("applyPendingState")
	if d.pendingRemoval {
		if blk, ok := d.parent.(Block); ok {
			blk.RemoveDrawable(d)
		}
		d.parent = nil
	}
	if d.pendingAddition {
		blk, ok := d.pendingParent.(Block)
		if !ok {
			panic(fmt.Sprintf("display: drawable %d has non-block pending parent", d.id))
		}
		d.parent = blk
		blk.AddDrawable(d)
	}
	d.pendingAddition = false
	d.pendingRemoval = false
	d.pendingQueued = false
	d.pendingParent = nil
	if d.parent != nil {
		d.syncOldLinks()
	} else {
		// Removed from the list entirely; clear links so no stale
		// references survive into the pool.
		d.prev, d.next = nil, nil
		d.oldPrev, d.oldNext = nil, nil
	}
}

// syncOldLinks snapshots the live links as the "old" list for the next
// pass's diffing.
func (d *Drawable) syncOldLinks() {
	d.oldPrev = d.prev
	d.oldNext = d.next
}

// Dispose removes the drawable from circulation and returns it to the
// pool. The drawable must already be detached from any block; disposing
// an attached drawable indicates broken removal ordering and panics.
func (d *Drawable) Dispose() {
	d.assertNotDisposed("Dispose")
	if d.parent != nil || d.pendingAddition {
		panic(fmt.Sprintf("display: disposing drawable %d still attached to a block", d.id))
	}
	releaseDrawable(d)
}

// LinkDrawables joins a and b so that b follows a in the live list.
// Either may be nil to terminate the list on that side.
func LinkDrawables(a, b *Drawable) {
	if a != nil {
		a.assertNotDisposed("LinkDrawables")
		a.next = b
	}
	if b != nil {
		b.assertNotDisposed("LinkDrawables")
		b.prev = a
	}
}

// SyncOldLinks snapshots the live links of every drawable from first
// through last inclusive. Hosts call this after building an initial list
// so the next diff has a baseline.
func SyncOldLinks(first, last *Drawable) {
	for d := first; d != nil; d = d.next {
		d.syncOldLinks()
		if d == last {
			break
		}
	}
}
