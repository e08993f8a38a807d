// Copyright 2026 The strata Authors
// SPDX-License-Identifier: BSD-3-Clause

package display

import (
	"fmt"

	"github.com/gopix/strata"
)

// zIndexStep is the gap left between bumped z-indices so overlay content
// can be inserted later without a full reindex.
const zIndexStep = 20

// BackboneDrawable is a composite drawable owning an ordered list of
// blocks. It creates and destroys blocks as renderer-family boundaries
// shift in its drawable list, and applies the aggregate
// opacity/visibility/clip of the scene nodes between its own instance
// and its filter root on behalf of everything beneath it.
type BackboneDrawable struct {
	Drawable

	display *Display

	blocks []Block

	// Range rendered last frame, diffed against on the next stitch.
	lastFirst, lastLast *Drawable

	// removedDrawables guards double-removal when the owner detaches
	// drawables before disposing the backbone.
	removedDrawables bool

	willApplyTransform bool
	willApplyFilters   bool

	watchedFilterNodes []FilterNode
	unsubscribes       []func()

	opacityDirty    bool
	visibilityDirty bool
	clipDirty       bool

	aggregateOpacity float64
	aggregateVisible bool

	lastZIndex int

	pendingChanges  []*Drawable
	blocksToDispose []Block

	stitcher stitcher
}

// NewBackboneDrawable creates a backbone for the given instance. The
// nodes of the instances from instance up to (but excluding) filterRoot
// are watched for opacity/visibility/clip changes; their aggregate is
// recomputed lazily on Update, never in the change callback itself.
// Both instance and filterRoot may be nil for a backbone with no
// watched filters (e.g. a display root).
func NewBackboneDrawable(d *Display, instance, filterRoot *Instance) *BackboneDrawable {
	b := &BackboneDrawable{
		display:          d,
		aggregateOpacity: 1,
		aggregateVisible: true,
	}
	b.Drawable.reset(0, nil)
	if d != nil {
		b.Drawable.parent = d
		d.registerBackbone(b)
	}

	for i := instance; i != nil && i != filterRoot; i = i.parent {
		node := i.node
		if node == nil {
			continue
		}
		b.watchedFilterNodes = append(b.watchedFilterNodes, node)
		b.unsubscribes = append(b.unsubscribes,
			node.OnOpacityChange(func() {
				b.opacityDirty = true
				b.MarkDirty()
			}),
			node.OnVisibleChange(func() {
				b.visibilityDirty = true
				b.MarkDirty()
			}),
			node.OnClipChange(func() {
				b.clipDirty = true
				b.MarkDirty()
			}),
		)
	}
	b.willApplyFilters = len(b.watchedFilterNodes) > 0
	b.willApplyTransform = instance != nil && instance != filterRoot
	b.opacityDirty = b.willApplyFilters
	b.visibilityDirty = b.willApplyFilters
	if b.willApplyFilters {
		b.dirty = true
	}
	return b
}

// Blocks returns the backbone's ordered block list.
func (b *BackboneDrawable) Blocks() []Block { return b.blocks }

// FirstDrawable returns the start of the range rendered last pass.
func (b *BackboneDrawable) FirstDrawable() *Drawable { return b.lastFirst }

// LastDrawable returns the end of the range rendered last pass.
func (b *BackboneDrawable) LastDrawable() *Drawable { return b.lastLast }

// LastZIndex returns one past the highest assigned block z-index.
// Overlay consumers can append content above every block at this index
// without forcing a reindex.
func (b *BackboneDrawable) LastZIndex() int { return b.lastZIndex }

// WillApplyTransform reports whether the backbone applies the ancestor
// transform itself rather than delegating to its blocks.
func (b *BackboneDrawable) WillApplyTransform() bool { return b.willApplyTransform }

// WillApplyFilters reports whether the backbone aggregates ancestor
// filter state.
func (b *BackboneDrawable) WillApplyFilters() bool { return b.willApplyFilters }

// AppliedOpacity returns the aggregate opacity, the product of every
// watched node's opacity, as of the last Update.
func (b *BackboneDrawable) AppliedOpacity() float64 { return b.aggregateOpacity }

// AppliedVisible returns the aggregate visibility, the logical AND of
// every watched node's visibility, as of the last Update.
func (b *BackboneDrawable) AppliedVisible() bool { return b.aggregateVisible }

// MarkDirtyDrawable receives dirty notifications from the backbone's
// blocks and propagates them up to the display.
func (b *BackboneDrawable) MarkDirtyDrawable(d *Drawable) {
	b.MarkDirty()
}

// MarkRemovedDrawables records that the owner already detached every
// drawable, so Dispose must not detach them again.
func (b *BackboneDrawable) MarkRemovedDrawables() {
	b.removedDrawables = true
}

// notePendingChange queues a drawable for structural flush on the next
// Update. Each drawable is queued at most once per pass.
func (b *BackboneDrawable) notePendingChange(d *Drawable) {
	if d.pendingQueued {
		return
	}
	d.pendingQueued = true
	b.pendingChanges = append(b.pendingChanges, d)
}

// markForDisposal defers a block's disposal until after the next flush,
// so drawables still pointing at the block can be detached from it
// first.
func (b *BackboneDrawable) markForDisposal(blk Block) {
	b.blocksToDispose = append(b.blocksToDispose, blk)
}

// allocateBlock creates a block for the renderer and dirties it for its
// first paint.
func (b *BackboneDrawable) allocateBlock(renderer strata.Renderer) Block {
	blk := newBlock(b, renderer)
	blk.MarkDirty()
	return blk
}

// Rebuild discards the existing block partition and rebuilds it from
// the entire new range in one walk: one block per maximal run of
// same-family drawables, with a forced boundary after every DOM
// drawable. Used on first build and on full-subtree invalidation.
//
// An empty range (first == nil) yields zero blocks; that is a valid
// state, not an error.
func (b *BackboneDrawable) Rebuild(first, last, oldFirst, oldLast *Drawable, firstCI, lastCI *ChangeInterval) {
	b.assertNotDisposed("Rebuild")

	// Detach the old list. Old drawables absent from the new list are
	// left for the owner to dispose.
	for d := oldFirst; d != nil; {
		next := d.oldNext
		d.parent = nil
		d.pendingParent = nil
		d.pendingAddition = false
		d.pendingRemoval = false
		d.pendingQueued = false
		if d == oldLast {
			break
		}
		d = next
	}
	for _, blk := range b.blocks {
		blk.Dispose()
	}
	b.blocks = b.blocks[:0]
	b.pendingChanges = b.pendingChanges[:0]

	var open Block
	var runFirst, prev *Drawable
	for d := first; d != nil; d = d.next {
		if open == nil || !open.Renderer().SameFamily(d.renderer) || d.renderer.IsDOM() {
			if open != nil {
				open.NotifyInterval(runFirst, prev)
			}
			open = b.allocateBlock(d.renderer)
			b.blocks = append(b.blocks, open)
			runFirst = d
		}
		d.NotePendingAddition(open)
		b.notePendingChange(d)
		prev = d
		if d == last {
			break
		}
	}
	if open != nil {
		open.NotifyInterval(runFirst, prev)
	}

	b.ReindexBlocks()
	b.lastFirst, b.lastLast = first, last
	b.MarkDirty()
}

// Stitch incrementally reconciles the block partition against the
// change intervals, reusing blocks whose renderer family still matches
// instead of destroying and recreating them. It is the lower-churn
// alternative to Rebuild when only some intervals are non-empty.
func (b *BackboneDrawable) Stitch(first, last, oldFirst, oldLast *Drawable, firstCI, lastCI *ChangeInterval) {
	b.assertNotDisposed("Stitch")
	if AssertionsEnabled() && lastCI != nil && lastCI.next != nil {
		panic("display: last change interval has a successor")
	}
	b.stitcher.stitch(b, first, last, oldFirst, oldLast, firstCI)
}

// rebuildBlockList reconstructs the ordered blocks slice from the
// drawables' (pending) block assignments, notifying each block whose
// owned range changed. Called after stitching changed the partition.
func (b *BackboneDrawable) rebuildBlockList(first, last *Drawable) {
	b.blocks = b.blocks[:0]
	if first == nil {
		return
	}
	var open Block
	var runFirst, prev *Drawable
	for d := first; d != nil; d = d.next {
		blk := blockOfPending(d)
		if blk == nil {
			panic(fmt.Sprintf("display: drawable %d has no block assignment after stitch", d.id))
		}
		if blk != open {
			if open != nil {
				b.notifyIntervalIfChanged(open, runFirst, prev)
			}
			open = blk
			runFirst = d
			b.blocks = append(b.blocks, blk)
		}
		prev = d
		if d == last {
			break
		}
	}
	if open != nil {
		b.notifyIntervalIfChanged(open, runFirst, prev)
	}
}

// notifyIntervalIfChanged informs the block of its final range, exactly
// once per pass, skipping blocks whose range is untouched.
func (b *BackboneDrawable) notifyIntervalIfChanged(blk Block, first, last *Drawable) {
	base := blk.base()
	if base.first == first && base.last == last {
		return
	}
	blk.NotifyInterval(first, last)
}

// ReindexBlocks restores strict z-index monotonicity with the minimum
// number of index changes. A block whose stored index already exceeds
// the running index is left untouched; a block that must move takes the
// midpoint below its successor when the gap allows, otherwise a fixed
// step up, leaving room for future insertions.
func (b *BackboneDrawable) ReindexBlocks() {
	z := 0
	for k, blk := range b.blocks {
		cur := blk.ZIndex()
		if cur > z {
			z = cur
			continue
		}
		idx := z + zIndexStep
		if k+1 < len(b.blocks) {
			if next := b.blocks[k+1].ZIndex(); next-1 > z {
				idx = (z + next) / 2
			}
		}
		blk.SetZIndex(idx)
		z = idx
	}
	b.lastZIndex = z + 1
}

// Update flushes deferred structural changes, recomputes invalidated
// filter aggregates, and updates dirty blocks. It is a no-op on a clean
// or disposed backbone.
func (b *BackboneDrawable) Update() {
	if b.disposed || !b.dirty {
		return
	}
	b.Drawable.Update()

	for i, d := range b.pendingChanges {
		if !d.Disposed() {
			d.applyPendingState()
		}
		b.pendingChanges[i] = nil
	}
	b.pendingChanges = b.pendingChanges[:0]

	for i, blk := range b.blocksToDispose {
		blk.Dispose()
		b.blocksToDispose[i] = nil
	}
	b.blocksToDispose = b.blocksToDispose[:0]

	if b.opacityDirty {
		o := 1.0
		for _, n := range b.watchedFilterNodes {
			o *= n.Opacity()
		}
		b.aggregateOpacity = o
		b.opacityDirty = false
	}
	if b.visibilityDirty {
		v := true
		for _, n := range b.watchedFilterNodes {
			v = v && n.Visible()
		}
		b.aggregateVisible = v
		b.visibilityDirty = false
	}
	if b.clipDirty {
		// Clip aggregation is reserved; invalidations are absorbed
		// without effect.
		b.clipDirty = false
	}

	for _, blk := range b.blocks {
		if blk.base().dirty {
			blk.Update()
		}
	}

	if AssertionsEnabled() {
		b.audit()
	}
}

// Dispose tears the backbone down: drawables are detached (unless the
// owner already did), filter subscriptions are released, and all blocks
// are disposed. Leaking a subscription here would keep the backbone
// alive from the node side, so every watched node is unsubscribed.
func (b *BackboneDrawable) Dispose() {
	b.assertNotDisposed("Dispose")

	if !b.removedDrawables {
		for d := b.lastFirst; d != nil; {
			next := d.next
			d.parent = nil
			d.pendingParent = nil
			d.pendingAddition = false
			d.pendingRemoval = false
			d.pendingQueued = false
			if d == b.lastLast {
				break
			}
			d = next
		}
		b.removedDrawables = true
	}

	for _, un := range b.unsubscribes {
		un()
	}
	b.unsubscribes = nil
	b.watchedFilterNodes = nil

	for _, blk := range b.blocks {
		blk.Dispose()
	}
	b.blocks = b.blocks[:0]
	for _, blk := range b.blocksToDispose {
		blk.Dispose()
	}
	b.blocksToDispose = nil
	b.pendingChanges = nil
	b.lastFirst, b.lastLast = nil, nil
	if b.display != nil {
		b.display.unregisterBackbone(b)
	}
	b.disposed = true
}

// blockOfPending resolves the block a drawable will belong to after the
// current pass flushes: the pending parent when an addition is
// recorded, otherwise the current parent.
func blockOfPending(d *Drawable) Block {
	if d.pendingAddition {
		if blk, ok := d.pendingParent.(Block); ok {
			return blk
		}
	}
	if blk, ok := d.parent.(Block); ok {
		return blk
	}
	return nil
}
