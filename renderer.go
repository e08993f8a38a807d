package strata

import "fmt"

// Renderer is a bitmask classifying how a drawable is rendered.
//
// The low bits select exactly one backend family (Canvas, SVG, DOM or
// WebGL); the high bits carry capability flags that refine behavior within
// a family. Renderer values are immutable per drawable: changing a
// drawable's renderer means disposing the old drawable and creating a new
// one.
type Renderer uint32

// Backend family bits. Exactly one must be set in a valid Renderer.
const (
	// Canvas renders via an immediate-mode raster surface.
	Canvas Renderer = 1 << iota

	// SVG renders via a retained vector document.
	SVG

	// DOM renders via a single host element. DOM blocks never batch:
	// each one wraps exactly one drawable.
	DOM

	// WebGL renders via a GPU-backed surface.
	WebGL
)

// Capability flag bits.
const (
	// Accelerated marks a renderer whose transform updates are applied
	// on a fast path without repainting content.
	Accelerated Renderer = 1 << (16 + iota)

	// Fitted marks a renderer whose block sizes its backing surface to
	// content bounds instead of the full display.
	Fitted
)

// familyMask selects the backend family bits of a Renderer.
const familyMask = Canvas | SVG | DOM | WebGL

// Family returns the backend family bits of r with all capability flags
// cleared.
func (r Renderer) Family() Renderer {
	return r & familyMask
}

// Valid reports whether r selects exactly one backend family.
func (r Renderer) Valid() bool {
	f := r.Family()
	return f != 0 && f&(f-1) == 0
}

// SameFamily reports whether r and other select the same backend family.
func (r Renderer) SameFamily(other Renderer) bool {
	return r.Family() == other.Family()
}

// IsCanvas reports whether r selects the Canvas family.
func (r Renderer) IsCanvas() bool { return r&Canvas != 0 }

// IsSVG reports whether r selects the SVG family.
func (r Renderer) IsSVG() bool { return r&SVG != 0 }

// IsDOM reports whether r selects the DOM family.
func (r Renderer) IsDOM() bool { return r&DOM != 0 }

// IsWebGL reports whether r selects the WebGL family.
func (r Renderer) IsWebGL() bool { return r&WebGL != 0 }

// IsAccelerated reports whether the Accelerated capability flag is set.
func (r Renderer) IsAccelerated() bool { return r&Accelerated != 0 }

// IsFitted reports whether the Fitted capability flag is set.
func (r Renderer) IsFitted() bool { return r&Fitted != 0 }

// String returns a human-readable description of the renderer, e.g.
// "canvas", "webgl+accelerated" or "svg+fitted".
func (r Renderer) String() string {
	var s string
	switch r.Family() {
	case Canvas:
		s = "canvas"
	case SVG:
		s = "svg"
	case DOM:
		s = "dom"
	case WebGL:
		s = "webgl"
	default:
		return fmt.Sprintf("renderer(%#x)", uint32(r))
	}
	if r.IsAccelerated() {
		s += "+accelerated"
	}
	if r.IsFitted() {
		s += "+fitted"
	}
	return s
}
