// Copyright 2026 The strata Authors
// SPDX-License-Identifier: BSD-3-Clause

package display

// ChangeInterval describes a contiguous region of the drawable list that
// differs between the previous pass's list and the current one. It is
// bounded on each side by an unchanged drawable, or by nil where the
// interval touches the start or end of the whole list.
//
// Intervals are produced in ascending list order, chained through Next,
// and are non-overlapping. The last interval in a chain has a nil Next.
// An interval that constricts away entirely reports IsEmpty but stays in
// the chain; downstream traversal relies on the chain structure staying
// constant.
type ChangeInterval struct {
	drawableBefore *Drawable
	drawableAfter  *Drawable
	next           *ChangeInterval
	collapsed      bool
}

// DrawableBefore returns the unchanged drawable preceding the interval,
// or nil if the interval touches the start of the list.
func (ci *ChangeInterval) DrawableBefore() *Drawable { return ci.drawableBefore }

// DrawableAfter returns the unchanged drawable following the interval,
// or nil if the interval touches the end of the list.
func (ci *ChangeInterval) DrawableAfter() *Drawable { return ci.drawableAfter }

// Next returns the next interval in list order, or nil.
func (ci *ChangeInterval) Next() *ChangeInterval { return ci.next }

// SetNext chains the given interval after this one. The chain must
// follow ascending list order.
func (ci *ChangeInterval) SetNext(next *ChangeInterval) { ci.next = next }

// IsEmpty reports whether the interval spans no changed drawables.
// Empty intervals are skipped by stitching but remain in the chain.
func (ci *ChangeInterval) IsEmpty() bool {
	if ci.collapsed {
		return true
	}
	// Degenerate form: identical boundaries span nothing.
	return ci.drawableBefore != nil && ci.drawableBefore == ci.drawableAfter
}

// Constrict shrinks the interval by excluding leading and trailing
// drawables that occupy the same position in both the old and new lists,
// minimizing the work downstream stitching must do. It returns true if
// the interval is empty afterwards.
//
// A boundary can only be trimmed inward from an anchored side; an open
// (nil) end stays open.
func (ci *ChangeInterval) Constrict() bool {
	for ci.drawableBefore != nil {
		if ci.checkCollapsed() {
			return true
		}
		cand := ci.drawableBefore.next
		if cand == nil || cand != ci.drawableBefore.oldNext || cand == ci.drawableAfter {
			break
		}
		ci.drawableBefore = cand
	}
	for ci.drawableAfter != nil {
		if ci.checkCollapsed() {
			return true
		}
		cand := ci.drawableAfter.prev
		if cand == nil || cand != ci.drawableAfter.oldPrev || cand == ci.drawableBefore {
			break
		}
		ci.drawableAfter = cand
	}
	return ci.checkCollapsed()
}

// checkCollapsed detects the fully-trimmed states and records emptiness.
func (ci *ChangeInterval) checkCollapsed() bool {
	if ci.collapsed {
		return true
	}
	before, after := ci.drawableBefore, ci.drawableAfter
	switch {
	case before != nil && before == after:
		ci.collapsed = true
	case before != nil && after != nil &&
		before.next == after && before.oldNext == after:
		ci.collapsed = true
	case before != nil && after == nil &&
		before.next == nil && before.oldNext == nil:
		ci.collapsed = true
	case before == nil && after != nil &&
		after.prev == nil && after.oldPrev == nil:
		ci.collapsed = true
	}
	return ci.collapsed
}
