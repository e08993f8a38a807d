// Copyright 2026 The strata Authors
// SPDX-License-Identifier: BSD-3-Clause

package display

import (
	"fmt"
	"sync/atomic"
)

// Structural invariant checks are the primary regression-catching
// mechanism for this subsystem, but walking every list after every pass
// is too expensive for production. They are off by default; enable them
// in instrumented builds and tests. Use-after-dispose panics are always
// on regardless of this switch.
var auditsEnabled atomic.Bool

// SetAssertions toggles structural invariant auditing after every
// rebuild, stitch and update pass. Safe for concurrent use.
func SetAssertions(enabled bool) { auditsEnabled.Store(enabled) }

// AssertionsEnabled reports whether structural audits run.
func AssertionsEnabled() bool { return auditsEnabled.Load() }

// audit verifies the backbone's structural invariants, panicking on the
// first violation. A detected violation halts the pass; continuing with
// inconsistent state would corrupt the pools for future frames.
func (b *BackboneDrawable) audit() {
	b.auditList()
	b.auditCoverage()
	b.auditZOrder()
}

// auditList checks that the live list between the backbone's endpoints
// is a consistent doubly-linked chain: the forward walk reaches the last
// drawable in exactly as many steps as the backward walk reaches the
// first.
func (b *BackboneDrawable) auditList() {
	first, last := b.lastFirst, b.lastLast
	if first == nil && last == nil {
		return
	}
	if (first == nil) != (last == nil) {
		panic("display: backbone range has one nil endpoint")
	}

	forward := 0
	d := first
	for {
		if d == nil {
			panic("display: forward walk fell off the list before reaching the last drawable")
		}
		forward++
		if forward > maxAuditSteps {
			panic("display: forward walk exceeded bound, list cycle suspected")
		}
		if d == last {
			break
		}
		d = d.next
	}

	backward := 0
	d = last
	for {
		if d == nil {
			panic("display: backward walk fell off the list before reaching the first drawable")
		}
		backward++
		if backward > maxAuditSteps {
			panic("display: backward walk exceeded bound, list cycle suspected")
		}
		if d == first {
			break
		}
		d = d.prev
	}

	if forward != backward {
		panic(fmt.Sprintf("display: list walk mismatch, %d forward vs %d backward", forward, backward))
	}
}

// auditCoverage checks that the blocks' ranges concatenate to exactly
// the backbone's range: no gaps, no overlaps, every drawable attached to
// the block that claims it.
func (b *BackboneDrawable) auditCoverage() {
	if b.lastFirst == nil {
		if len(b.blocks) != 0 {
			panic(fmt.Sprintf("display: empty backbone owns %d blocks", len(b.blocks)))
		}
		return
	}
	if len(b.blocks) == 0 {
		panic("display: non-empty backbone owns no blocks")
	}

	expect := b.lastFirst
	for k, blk := range b.blocks {
		base := blk.base()
		if base.first == nil || base.last == nil {
			panic(fmt.Sprintf("display: block %d has a nil range endpoint", blk.ZIndex()))
		}
		if base.first != expect {
			panic(fmt.Sprintf("display: coverage gap before block %d", k))
		}
		steps := 0
		for d := base.first; ; d = d.next {
			if d == nil {
				panic(fmt.Sprintf("display: block %d range is not contiguous", k))
			}
			if steps++; steps > maxAuditSteps {
				panic("display: block range walk exceeded bound")
			}
			if p, ok := d.parent.(Block); !ok || p != blk {
				panic(fmt.Sprintf("display: drawable %d not attached to its covering block", d.id))
			}
			if d == base.last {
				break
			}
		}
		expect = base.last.next
	}
	if b.blocks[len(b.blocks)-1].base().last != b.lastLast {
		panic("display: blocks do not cover the backbone's full range")
	}
}

// auditZOrder checks that z-indices are positive and strictly increasing
// in block order.
func (b *BackboneDrawable) auditZOrder() {
	prev := 0
	for _, blk := range b.blocks {
		z := blk.ZIndex()
		if z <= 0 {
			panic(fmt.Sprintf("display: non-positive block z-index %d", z))
		}
		if z <= prev {
			panic(fmt.Sprintf("display: non-monotonic block z-index %d after %d", z, prev))
		}
		prev = z
	}
}

// maxAuditSteps bounds audit walks so a corrupted cycle fails fast
// instead of hanging.
const maxAuditSteps = 1 << 20
