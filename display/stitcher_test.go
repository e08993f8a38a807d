// Copyright 2026 The strata Authors
// SPDX-License-Identifier: BSD-3-Clause

package display

import (
	"testing"

	"github.com/gopix/strata"
)

// stitchOne runs a single-interval stitch over the root backbone and
// flushes the display.
func stitchOne(d *Display, first, last, oldFirst, oldLast, before, after *Drawable) {
	ci := AcquireChangeInterval(before, after)
	d.RootBackbone().Stitch(first, last, oldFirst, oldLast, ci, ci)
	d.UpdateDisplay()
	ReleaseChangeIntervals(ci)
}

func TestStitchReplaceMergesSurroundingBlocks(t *testing.T) {
	// svg svg | canvas | svg svg. Replacing the canvas drawable with an
	// svg one must leave a single svg block over all five drawables.
	d, ds := buildDisplay(t, strata.SVG, strata.SVG, strata.Canvas, strata.SVG, strata.SVG)
	root := d.RootBackbone()
	if len(root.Blocks()) != 3 {
		t.Fatalf("precondition: got %d blocks, want 3", len(root.Blocks()))
	}

	n := AcquireDrawable(strata.SVG, &stubPainter{id: "n"})
	LinkDrawables(ds[1], n)
	LinkDrawables(n, ds[3])
	stitchOne(d, ds[0], ds[4], ds[0], ds[4], ds[1], ds[3])

	blocks := root.Blocks()
	if len(blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(blocks))
	}
	if !blocks[0].Renderer().IsSVG() {
		t.Errorf("merged block family = %s, want svg", blocks[0].Renderer())
	}
	if blocks[0].FirstDrawable() != ds[0] || blocks[0].LastDrawable() != ds[4] {
		t.Error("merged block does not cover the whole range")
	}
	if ds[2].Parent() != nil {
		t.Fatal("replaced drawable still attached")
	}
	ds[2].Dispose()
}

func TestStitchDegenerateIntervalKeepsPartition(t *testing.T) {
	d, ds := buildDisplay(t, strata.Canvas, strata.Canvas, strata.Canvas)
	root := d.RootBackbone()

	before := append([]Block(nil), root.Blocks()...)
	firstBefore := before[0].FirstDrawable()
	lastBefore := before[0].LastDrawable()
	zBefore := before[0].ZIndex()

	stitchOne(d, ds[0], ds[2], ds[0], ds[2], ds[1], ds[1])

	after := root.Blocks()
	if len(after) != len(before) || after[0] != before[0] {
		t.Fatal("degenerate interval changed the block list")
	}
	if after[0].FirstDrawable() != firstBefore || after[0].LastDrawable() != lastBefore {
		t.Fatal("degenerate interval changed the block range")
	}
	if after[0].ZIndex() != zBefore {
		t.Fatal("degenerate interval changed the z-index")
	}
}

func TestStitchAppendExtendsBlock(t *testing.T) {
	d, ds := buildDisplay(t, strata.Canvas, strata.Canvas)
	root := d.RootBackbone()

	n := AcquireDrawable(strata.Canvas, &stubPainter{id: "n"})
	LinkDrawables(ds[1], n)
	stitchOne(d, ds[0], n, ds[0], ds[1], ds[1], nil)

	blocks := root.Blocks()
	if len(blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(blocks))
	}
	if blocks[0].LastDrawable() != n {
		t.Fatal("appended drawable not covered by the block")
	}
}

func TestStitchAppendForeignFamilyOpensBlock(t *testing.T) {
	d, ds := buildDisplay(t, strata.Canvas, strata.Canvas)
	root := d.RootBackbone()

	n := AcquireDrawable(strata.SVG, &stubPainter{id: "n"})
	LinkDrawables(ds[1], n)
	stitchOne(d, ds[0], n, ds[0], ds[1], ds[1], nil)

	blocks := root.Blocks()
	if len(blocks) != 2 {
		t.Fatalf("got %d blocks, want 2", len(blocks))
	}
	if !blocks[1].Renderer().IsSVG() {
		t.Errorf("appended block family = %s, want svg", blocks[1].Renderer())
	}
	if blocks[1].ZIndex() <= blocks[0].ZIndex() {
		t.Fatal("appended block not stacked above")
	}
}

func TestStitchPrepend(t *testing.T) {
	d, ds := buildDisplay(t, strata.Canvas, strata.Canvas)
	root := d.RootBackbone()

	n := AcquireDrawable(strata.Canvas, &stubPainter{id: "n"})
	LinkDrawables(n, ds[0])
	stitchOne(d, n, ds[1], ds[0], ds[1], nil, ds[0])

	blocks := root.Blocks()
	if len(blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(blocks))
	}
	if blocks[0].FirstDrawable() != n || blocks[0].LastDrawable() != ds[1] {
		t.Fatal("prepended drawable not covered by the block")
	}
}

func TestStitchRemovalMergesNeighbours(t *testing.T) {
	d, ds := buildDisplay(t, strata.SVG, strata.Canvas, strata.SVG)
	root := d.RootBackbone()

	// Drop the canvas drawable; the two svg blocks around it must merge.
	LinkDrawables(ds[0], ds[2])
	stitchOne(d, ds[0], ds[2], ds[0], ds[2], ds[0], ds[2])

	blocks := root.Blocks()
	if len(blocks) != 1 || !blocks[0].Renderer().IsSVG() {
		t.Fatalf("got %d blocks, want 1 svg block", len(blocks))
	}
	if ds[1].Parent() != nil {
		t.Fatal("removed drawable still attached")
	}
	ds[1].Dispose()
}

func TestStitchReusesEmptiedBlock(t *testing.T) {
	d, ds := buildDisplay(t, strata.SVG, strata.Canvas, strata.SVG)
	root := d.RootBackbone()
	reused := root.Blocks()[1]

	// Replace the canvas drawable with two fresh canvas drawables. The
	// emptied canvas block must be claimed for them instead of a new
	// allocation.
	n1 := AcquireDrawable(strata.Canvas, &stubPainter{id: "n1"})
	n2 := AcquireDrawable(strata.Canvas, &stubPainter{id: "n2"})
	LinkDrawables(ds[0], n1)
	LinkDrawables(n1, n2)
	LinkDrawables(n2, ds[2])
	stitchOne(d, ds[0], ds[2], ds[0], ds[2], ds[0], ds[2])

	blocks := root.Blocks()
	if len(blocks) != 3 {
		t.Fatalf("got %d blocks, want 3", len(blocks))
	}
	if blocks[1] != reused {
		t.Fatal("emptied canvas block was not reused")
	}
	if blocks[1].FirstDrawable() != n1 || blocks[1].LastDrawable() != n2 {
		t.Fatal("reused block owns the wrong range")
	}
	ds[1].Dispose()
}

func TestStitchSplitsBlockOnForeignInsert(t *testing.T) {
	// One canvas block; replacing an interior drawable with an svg one
	// must split the block in three, keeping the tail contiguous.
	d, ds := buildDisplay(t,
		strata.Canvas, strata.Canvas, strata.Canvas, strata.Canvas,
		strata.Canvas, strata.Canvas, strata.Canvas)
	root := d.RootBackbone()

	n := AcquireDrawable(strata.SVG, &stubPainter{id: "n"})
	LinkDrawables(ds[4], n)
	LinkDrawables(n, ds[6])
	stitchOne(d, ds[0], ds[6], ds[0], ds[6], ds[4], ds[6])

	blocks := root.Blocks()
	if len(blocks) != 3 {
		t.Fatalf("got %d blocks, want 3", len(blocks))
	}
	if !blocks[0].Renderer().IsCanvas() || !blocks[1].Renderer().IsSVG() || !blocks[2].Renderer().IsCanvas() {
		t.Fatalf("block families = %s, %s, %s",
			blocks[0].Renderer(), blocks[1].Renderer(), blocks[2].Renderer())
	}
	if blocks[0].FirstDrawable() != ds[0] || blocks[0].LastDrawable() != ds[4] {
		t.Error("head block owns the wrong range")
	}
	if blocks[1].FirstDrawable() != n || blocks[1].LastDrawable() != n {
		t.Error("inserted block owns the wrong range")
	}
	if blocks[2].FirstDrawable() != ds[6] || blocks[2].LastDrawable() != ds[6] {
		t.Error("tail block owns the wrong range")
	}
	ds[5].Dispose()
}

func TestStitchMultipleIntervals(t *testing.T) {
	d, ds := buildDisplay(t,
		strata.Canvas, strata.Canvas, strata.Canvas, strata.Canvas,
		strata.Canvas, strata.Canvas, strata.Canvas)
	root := d.RootBackbone()

	// Two disjoint same-family replacements in one pass.
	r1 := AcquireDrawable(strata.Canvas, &stubPainter{id: "r1"})
	r2 := AcquireDrawable(strata.Canvas, &stubPainter{id: "r2"})
	LinkDrawables(ds[0], r1)
	LinkDrawables(r1, ds[2])
	LinkDrawables(ds[4], r2)
	LinkDrawables(r2, ds[6])

	ci1 := AcquireChangeInterval(ds[0], ds[2])
	ci2 := AcquireChangeInterval(ds[4], ds[6])
	ci1.SetNext(ci2)
	root.Stitch(ds[0], ds[6], ds[0], ds[6], ci1, ci2)
	d.UpdateDisplay()
	ReleaseChangeIntervals(ci1)

	blocks := root.Blocks()
	if len(blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(blocks))
	}
	if blocks[0].FirstDrawable() != ds[0] || blocks[0].LastDrawable() != ds[6] {
		t.Fatal("block does not cover the stitched range")
	}
	if ds[1].Parent() != nil || ds[5].Parent() != nil {
		t.Fatal("replaced drawables still attached")
	}
	ds[1].Dispose()
	ds[5].Dispose()
}

func TestStitchBlockListHasNoDuplicates(t *testing.T) {
	d, ds := buildDisplay(t, strata.SVG, strata.Canvas, strata.SVG, strata.Canvas, strata.SVG)
	root := d.RootBackbone()

	// Collapse everything to svg in one pass.
	n1 := AcquireDrawable(strata.SVG, &stubPainter{id: "n1"})
	n2 := AcquireDrawable(strata.SVG, &stubPainter{id: "n2"})
	LinkDrawables(ds[0], n1)
	LinkDrawables(n1, ds[2])
	LinkDrawables(ds[2], n2)
	LinkDrawables(n2, ds[4])

	ci1 := AcquireChangeInterval(ds[0], ds[2])
	ci2 := AcquireChangeInterval(ds[2], ds[4])
	ci1.SetNext(ci2)
	root.Stitch(ds[0], ds[4], ds[0], ds[4], ci1, ci2)
	d.UpdateDisplay()
	ReleaseChangeIntervals(ci1)

	seen := map[Block]bool{}
	for _, blk := range root.Blocks() {
		if seen[blk] {
			t.Fatalf("block with z-index %d listed twice", blk.ZIndex())
		}
		seen[blk] = true
	}
	z := 0
	for _, blk := range root.Blocks() {
		if blk.ZIndex() <= z {
			t.Fatalf("z-index %d not strictly above %d", blk.ZIndex(), z)
		}
		z = blk.ZIndex()
	}
	ds[1].Dispose()
	ds[3].Dispose()
}

func TestStitchAllEmptyIntervalsIsNoop(t *testing.T) {
	d, ds := buildDisplay(t, strata.Canvas, strata.SVG)
	root := d.RootBackbone()
	before := append([]Block(nil), root.Blocks()...)

	ci1 := AcquireChangeInterval(ds[0], ds[0])
	ci2 := AcquireChangeInterval(ds[1], ds[1])
	ci1.SetNext(ci2)
	root.Stitch(ds[0], ds[1], ds[0], ds[1], ci1, ci2)
	d.UpdateDisplay()
	ReleaseChangeIntervals(ci1)

	after := root.Blocks()
	if len(after) != len(before) {
		t.Fatalf("got %d blocks, want %d", len(after), len(before))
	}
	for i := range after {
		if after[i] != before[i] {
			t.Fatalf("block %d replaced by an empty stitch", i)
		}
	}
}

func TestStitchTwiceAcrossSameBoundary(t *testing.T) {
	// Replace the interior drawable, then replace its replacement across
	// the same boundary drawables. The second pass walks the old list
	// from the boundary's snapshot, so the first pass must have
	// refreshed it.
	d, ds := buildDisplay(t, strata.Canvas, strata.Canvas, strata.Canvas, strata.Canvas)
	root := d.RootBackbone()

	r1 := AcquireDrawable(strata.Canvas, &stubPainter{id: "r1"})
	LinkDrawables(ds[1], r1)
	LinkDrawables(r1, ds[3])
	stitchOne(d, ds[0], ds[3], ds[0], ds[3], ds[1], ds[3])
	ds[2].Dispose()

	if ds[1].OldNextDrawable() != r1 {
		t.Fatal("boundary old link still names the removed drawable")
	}
	if ds[3].OldPreviousDrawable() != r1 {
		t.Fatal("boundary old back link still names the removed drawable")
	}

	// The disposed drawable is back in the pool; the next acquire may
	// hand out its storage.
	r2 := AcquireDrawable(strata.Canvas, &stubPainter{id: "r2"})
	LinkDrawables(ds[1], r2)
	LinkDrawables(r2, ds[3])
	stitchOne(d, ds[0], ds[3], ds[0], ds[3], ds[1], ds[3])
	r1.Dispose()

	blocks := root.Blocks()
	if len(blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(blocks))
	}
	if blocks[0].FirstDrawable() != ds[0] || blocks[0].LastDrawable() != ds[3] {
		t.Fatal("block range does not cover the stitched list")
	}
	if r2.Parent() != blocks[0] {
		t.Fatal("second replacement not attached to the block")
	}
	if ds[1].OldNextDrawable() != r2 || ds[3].OldPreviousDrawable() != r2 {
		t.Fatal("boundary old links not refreshed by the second pass")
	}
}
