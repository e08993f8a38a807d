// Copyright 2026 The strata Authors
// SPDX-License-Identifier: BSD-3-Clause

package display

import (
	"errors"
	"testing"

	"github.com/gopix/strata"
)

func TestRebuildSingleFamilyRun(t *testing.T) {
	d, ds := buildDisplay(t, strata.Canvas, strata.Canvas, strata.Canvas, strata.Canvas, strata.Canvas)
	root := d.RootBackbone()

	blocks := root.Blocks()
	if len(blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(blocks))
	}
	blk := blocks[0]
	if !blk.Renderer().IsCanvas() {
		t.Errorf("block renderer = %s, want canvas", blk.Renderer())
	}
	if blk.FirstDrawable() != ds[0] || blk.LastDrawable() != ds[4] {
		t.Error("block does not cover the full range")
	}
	if blk.ZIndex() != 20 {
		t.Errorf("block z-index = %d, want 20", blk.ZIndex())
	}
	if root.LastZIndex() != 21 {
		t.Errorf("LastZIndex = %d, want 21", root.LastZIndex())
	}
}

func TestRebuildSplitsAtFamilyBoundary(t *testing.T) {
	d, ds := buildDisplay(t, strata.Canvas, strata.Canvas, strata.Canvas, strata.SVG, strata.SVG)
	blocks := d.RootBackbone().Blocks()

	if len(blocks) != 2 {
		t.Fatalf("got %d blocks, want 2", len(blocks))
	}
	if !blocks[0].Renderer().IsCanvas() || !blocks[1].Renderer().IsSVG() {
		t.Fatalf("block families = %s, %s", blocks[0].Renderer(), blocks[1].Renderer())
	}
	if blocks[0].FirstDrawable() != ds[0] || blocks[0].LastDrawable() != ds[2] {
		t.Error("canvas block owns the wrong range")
	}
	if blocks[1].FirstDrawable() != ds[3] || blocks[1].LastDrawable() != ds[4] {
		t.Error("svg block owns the wrong range")
	}
	if blocks[0].ZIndex() != 20 || blocks[1].ZIndex() != 40 {
		t.Errorf("z-indices = %d, %d, want 20, 40", blocks[0].ZIndex(), blocks[1].ZIndex())
	}
}

func TestRebuildDOMNeverBatches(t *testing.T) {
	d, ds := buildDisplay(t, strata.DOM, strata.DOM)
	blocks := d.RootBackbone().Blocks()

	if len(blocks) != 2 {
		t.Fatalf("got %d blocks, want 2", len(blocks))
	}
	for i, blk := range blocks {
		if blk.FirstDrawable() != ds[i] || blk.LastDrawable() != ds[i] {
			t.Errorf("DOM block %d does not wrap exactly drawable %d", i, ds[i].ID())
		}
	}
}

func TestRebuildEmptyRange(t *testing.T) {
	d := newTestDisplay(t)
	root := d.RootBackbone()
	root.Rebuild(nil, nil, nil, nil, nil, nil)
	d.UpdateDisplay()
	if len(root.Blocks()) != 0 {
		t.Fatalf("empty rebuild produced %d blocks", len(root.Blocks()))
	}
	if root.FirstDrawable() != nil || root.LastDrawable() != nil {
		t.Fatal("empty rebuild kept a range")
	}
}

func TestRebuildReplacesPartition(t *testing.T) {
	d, ds := buildDisplay(t, strata.Canvas, strata.Canvas)
	root := d.RootBackbone()

	// Second full rebuild with a different family list.
	ns := makeList(nil, strata.SVG, strata.SVG, strata.SVG)
	root.Rebuild(ns[0], ns[2], ds[0], ds[1], nil, nil)
	d.UpdateDisplay()

	blocks := root.Blocks()
	if len(blocks) != 1 || !blocks[0].Renderer().IsSVG() {
		t.Fatalf("rebuild did not replace the partition: %d blocks", len(blocks))
	}
	for _, old := range ds {
		if old.Parent() != nil {
			t.Fatalf("old drawable %d still attached after rebuild", old.ID())
		}
		old.Dispose()
	}
}

func TestRebuildUnsupportedRendererPanics(t *testing.T) {
	d := newTestDisplay(t)
	bad := AcquireDrawable(0, nil)
	defer func() {
		err, ok := recover().(error)
		if !ok || !errors.Is(err, ErrUnsupportedRenderer) {
			t.Fatalf("panic value = %v, want ErrUnsupportedRenderer", err)
		}
		bad.Dispose()
	}()
	d.RootBackbone().Rebuild(bad, bad, nil, nil, nil, nil)
}

func TestReindexBlocksPrefersMidpoints(t *testing.T) {
	d, _ := buildDisplay(t, strata.Canvas, strata.SVG, strata.Canvas)
	root := d.RootBackbone()
	blocks := root.Blocks()
	if len(blocks) != 3 {
		t.Fatalf("got %d blocks, want 3", len(blocks))
	}

	// Force the middle block out of order; the reindex must fix it by
	// taking the midpoint and leave its neighbours untouched.
	blocks[1].SetZIndex(5)
	root.ReindexBlocks()
	got := []int{blocks[0].ZIndex(), blocks[1].ZIndex(), blocks[2].ZIndex()}
	want := []int{20, 40, 60}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("z-indices = %v, want %v", got, want)
		}
	}
	if root.LastZIndex() != 61 {
		t.Errorf("LastZIndex = %d, want 61", root.LastZIndex())
	}
}

func TestReindexBlocksStepsWhenNoGap(t *testing.T) {
	d, _ := buildDisplay(t, strata.Canvas, strata.SVG)
	root := d.RootBackbone()
	blocks := root.Blocks()

	// Successor sits directly above: no midpoint available, so the
	// displaced block steps past it and the successor moves too.
	blocks[0].SetZIndex(0)
	blocks[1].SetZIndex(1)
	root.ReindexBlocks()
	if z0, z1 := blocks[0].ZIndex(), blocks[1].ZIndex(); z1 <= z0 || z0 <= 0 {
		t.Fatalf("z-indices = %d, %d, want strictly increasing positives", z0, z1)
	}
}

func TestBackboneDisposeDetaches(t *testing.T) {
	SetAssertions(true)
	d := New(Options{Width: 10, Height: 10})
	ds := makeList(nil, strata.Canvas, strata.Canvas)
	d.RootBackbone().Rebuild(ds[0], ds[1], nil, nil, nil, nil)
	d.UpdateDisplay()

	d.Dispose()
	for _, dr := range ds {
		if dr.Parent() != nil {
			t.Fatalf("drawable %d still attached after display dispose", dr.ID())
		}
		dr.Dispose()
	}
}

func TestUpdateSettles(t *testing.T) {
	d, _ := buildDisplay(t, strata.Canvas, strata.SVG)
	d.UpdateDisplay()
	d.UpdateDisplay()
	if d.NeedsUpdate() {
		t.Fatal("display never settles")
	}
}
