// Copyright 2026 The strata Authors
// SPDX-License-Identifier: BSD-3-Clause

package display

import "github.com/gopix/strata"

// Fit is a block's surface sizing policy.
type Fit uint8

const (
	// FitFullDisplay sizes the block's backing surface to the display.
	FitFullDisplay Fit = iota

	// FitBounds sizes the backing surface to the union of the owned
	// drawables' content bounds.
	FitBounds
)

// String returns a human-readable name for the fit policy.
func (f Fit) String() string {
	switch f {
	case FitFullDisplay:
		return "full-display"
	case FitBounds:
		return "bounds"
	default:
		return "unknown"
	}
}

// fittedBlock extends blockBase with a bounding-box fit policy used by
// block families that own a sized backing surface (Canvas, WebGL).
type fittedBlock struct {
	blockBase

	fit       Fit
	fitBounds strata.Rect
	fitDirty  bool
}

func (b *fittedBlock) initFitted(backbone *BackboneDrawable, renderer strata.Renderer) {
	b.initBase(backbone, renderer)
	if renderer.IsFitted() {
		b.fit = FitBounds
	} else {
		b.fit = FitFullDisplay
	}
	b.fitBounds = strata.EmptyRect()
	b.fitDirty = true
}

// Fit returns the block's sizing policy.
func (b *fittedBlock) Fit() Fit { return b.fit }

// FitBounds returns the most recently computed fit rectangle.
func (b *fittedBlock) FitBounds() strata.Rect { return b.fitBounds }

// NotifyInterval additionally invalidates the fit, since the owned range
// determines the content bounds.
func (b *fittedBlock) NotifyInterval(first, last *Drawable) {
	b.blockBase.NotifyInterval(first, last)
	b.fitDirty = true
}

// refit recomputes the fit rectangle if invalidated, returning true when
// the rectangle changed and the backing surface must be resized.
func (b *fittedBlock) refit() bool {
	if !b.fitDirty {
		return false
	}
	b.fitDirty = false

	var bounds strata.Rect
	switch b.fit {
	case FitBounds:
		bounds = strata.EmptyRect()
		b.eachDrawable(func(d *Drawable) {
			if bd, ok := d.painter.(Bounded); ok {
				bounds = bounds.Union(bd.Bounds())
			}
		})
		if bounds.IsEmpty() {
			bounds = b.displayRect()
		}
	default:
		bounds = b.displayRect()
	}

	if bounds.Equals(b.fitBounds) {
		return false
	}
	b.fitBounds = bounds
	return true
}

func (b *fittedBlock) displayRect() strata.Rect {
	if b.backbone == nil || b.backbone.display == nil {
		return strata.EmptyRect()
	}
	w, h := b.backbone.display.Size()
	return strata.NewRect(0, 0, float64(w), float64(h))
}
