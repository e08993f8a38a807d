// Copyright 2026 The strata Authors
// SPDX-License-Identifier: BSD-3-Clause

package display

import "github.com/gopix/strata"

// stitcher reconciles a backbone's block partition against a chain of
// change intervals. It is a per-backbone value holding only scratch
// buffers; all durable state lives on the backbone and its blocks.
//
// Ordering is load-bearing: within one interval, removals complete
// before additions, because reuse eligibility depends on knowing which
// blocks emptied. Across intervals, processing follows the ascending
// chain order, because later intervals resolve their boundary blocks
// against the pending state earlier intervals left behind.
type stitcher struct {
	// reusable holds blocks that emptied during this pass and may be
	// claimed by a new run of the same renderer family.
	reusable []Block

	// emptied is per-interval scratch for the blocks whose drawables
	// were spanned by the interval's removals.
	emptied []Block
}

func (s *stitcher) stitch(b *BackboneDrawable, first, last, oldFirst, oldLast *Drawable, firstCI *ChangeInterval) {
	anyChange := false
	for ci := firstCI; ci != nil; ci = ci.next {
		if ci.Constrict() {
			continue
		}
		anyChange = true
		s.processInterval(b, ci, first, oldFirst, oldLast)
	}

	s.removeUnusedBlocks(b)

	if anyChange {
		b.rebuildBlockList(first, last)
		b.ReindexBlocks()
		b.MarkDirty()
	}
	b.lastFirst, b.lastLast = first, last
}

func (s *stitcher) processInterval(b *BackboneDrawable, ci *ChangeInterval, first, oldFirst, oldLast *Drawable) {
	before, after := ci.drawableBefore, ci.drawableAfter

	// The boundary drawables keep their parent block, but their live
	// neighbours changed. Queue them so the flush re-snapshots their
	// old links; otherwise a later stitch would walk into drawables
	// removed on this pass.
	if before != nil {
		b.notePendingChange(before)
	}
	if after != nil {
		b.notePendingChange(after)
	}

	// Phase 1: mark every old drawable spanned by the interval as
	// pending removal, collecting the blocks they empty out of.
	s.emptied = s.emptied[:0]
	oldStart := oldFirst
	if before != nil {
		oldStart = before.oldNext
	}
	for d := oldStart; d != nil && d != after; d = d.oldNext {
		d.NotePendingRemoval()
		b.notePendingChange(d)
		if blk, ok := d.parent.(Block); ok {
			s.noteEmptied(blk)
		}
		if d == oldLast {
			break
		}
	}

	// Phase 2: resolve the boundary blocks and pool everything between
	// them. A block fully contained in the changed region joins the
	// reusable pool instead of being destroyed, so a same-family run
	// created moments later can claim it.
	var firstBlock, lastBlock Block
	if before != nil {
		firstBlock = blockOfPending(before)
	}
	if after != nil {
		lastBlock = blockOfPending(after)
	}
	for _, blk := range s.emptied {
		if blk != firstBlock && blk != lastBlock && blk.base().used {
			s.noteReusable(b, blk)
		}
	}

	// Phase 3: walk the new drawables inside the interval, opening a
	// block per family run. The pool is searched before allocating.
	open := firstBlock
	newStart := first
	if before != nil {
		newStart = before.next
	}
	for d := newStart; d != nil && d != after; d = d.next {
		if open == nil || !open.Renderer().SameFamily(d.renderer) || d.renderer.IsDOM() {
			open = s.getBlockForRenderer(b, d.renderer)
		}
		d.NotePendingAddition(open)
		b.notePendingChange(d)
	}

	// Phase 4: glue or split at the far boundary. If the run flowing
	// out of the interval has the same family as the block holding the
	// after-anchor, that block is absorbed so one family region does
	// not end up split across two blocks. If instead the interval
	// opened a foreign-family block in the middle of the boundary
	// block, the boundary block's tail must move to a fresh block of
	// its own family, or its range would no longer be contiguous.
	if after == nil || open == nil || lastBlock == nil || lastBlock == open {
		return
	}
	switch {
	case !lastBlock.Renderer().IsDOM() && open.Renderer().SameFamily(lastBlock.Renderer()):
		for d := after; d != nil && blockOfPending(d) == lastBlock; d = d.next {
			d.NotePendingRemoval()
			d.NotePendingAddition(open)
			b.notePendingChange(d)
		}
		if lastBlock != firstBlock {
			// Fully absorbed; the head side kept nothing.
			s.noteReusable(b, lastBlock)
		}
	case lastBlock == firstBlock:
		tail := s.getBlockForRenderer(b, after.renderer)
		for d := after; d != nil && blockOfPending(d) == lastBlock; d = d.next {
			d.NotePendingRemoval()
			d.NotePendingAddition(tail)
			b.notePendingChange(d)
		}
	}
}

// noteEmptied records a block touched by removals, once.
func (s *stitcher) noteEmptied(blk Block) {
	for _, e := range s.emptied {
		if e == blk {
			return
		}
	}
	s.emptied = append(s.emptied, blk)
}

// noteReusable moves a block into the reusable pool. DOM blocks are
// uniquely tied to their single drawable and go straight to disposal.
func (s *stitcher) noteReusable(b *BackboneDrawable, blk Block) {
	if blk.Renderer().IsDOM() {
		blk.base().used = false
		b.markForDisposal(blk)
		return
	}
	blk.base().used = false
	s.reusable = append(s.reusable, blk)
}

// getBlockForRenderer returns a block for the renderer's family,
// claiming a pooled block when one matches. DOM runs always allocate.
func (s *stitcher) getBlockForRenderer(b *BackboneDrawable, renderer strata.Renderer) Block {
	if !renderer.IsDOM() {
		for i, blk := range s.reusable {
			if blk.Renderer().SameFamily(renderer) {
				s.reusable = append(s.reusable[:i], s.reusable[i+1:]...)
				blk.base().used = true
				blk.MarkDirty()
				return blk
			}
		}
	}
	return b.allocateBlock(renderer)
}

// removeUnusedBlocks tears down every pooled block that no new run
// claimed: it is marked for disposal after the next structural flush.
func (s *stitcher) removeUnusedBlocks(b *BackboneDrawable) {
	for i, blk := range s.reusable {
		if !blk.base().used {
			b.markForDisposal(blk)
		}
		s.reusable[i] = nil
	}
	s.reusable = s.reusable[:0]
}
