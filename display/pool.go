// Copyright 2026 The strata Authors
// SPDX-License-Identifier: BSD-3-Clause

package display

import (
	"sync"
	"sync/atomic"

	"github.com/gopix/strata"
)

// Pooling keeps per-frame reconciliation allocation-free after warmup.
// Every pooled type is fully reset inside the pool's acquire path, so a
// fresh tenant can never observe a stale reference from a previous one.

var drawableIDCounter atomic.Uint64

// nextDrawableID issues a process-unique drawable identity.
func nextDrawableID() uint64 { return drawableIDCounter.Add(1) }

// reset reinitializes every field for a new tenancy.
func (d *Drawable) reset(renderer strata.Renderer, painter Painter) {
	d.id = nextDrawableID()
	d.renderer = renderer
	d.prev, d.next = nil, nil
	d.oldPrev, d.oldNext = nil, nil
	d.parent = nil
	d.pendingParent = nil
	d.pendingAddition = false
	d.pendingRemoval = false
	d.pendingQueued = false
	d.dirty = false
	d.disposed = false
	d.painter = painter
}

// clear nulls every reference before the drawable returns to the pool.
func (d *Drawable) clear() {
	d.prev, d.next = nil, nil
	d.oldPrev, d.oldNext = nil, nil
	d.parent = nil
	d.pendingParent = nil
	d.pendingAddition = false
	d.pendingRemoval = false
	d.pendingQueued = false
	d.dirty = false
	d.disposed = true
	d.painter = nil
}

// DrawablePool manages a pool of reusable drawables.
type DrawablePool struct {
	pool sync.Pool
}

// NewDrawablePool creates a new drawable pool.
func NewDrawablePool() *DrawablePool {
	return &DrawablePool{
		pool: sync.Pool{
			New: func() any {
				return &Drawable{disposed: true}
			},
		},
	}
}

// Get retrieves a drawable from the pool, fully reset, with a fresh
// identity and the given renderer and painter.
func (p *DrawablePool) Get(renderer strata.Renderer, painter Painter) *Drawable {
	d := p.pool.Get().(*Drawable)
	d.reset(renderer, painter)
	return d
}

// Put returns a drawable to the pool. The drawable is cleared and
// marked disposed; any later use panics.
func (p *DrawablePool) Put(d *Drawable) {
	if d == nil {
		return
	}
	d.clear()
	p.pool.Put(d)
}

// Warmup pre-allocates drawables to avoid allocation during critical
// paths.
func (p *DrawablePool) Warmup(count int) {
	ds := make([]*Drawable, count)
	for i := 0; i < count; i++ {
		ds[i] = p.pool.Get().(*Drawable)
	}
	for i := 0; i < count; i++ {
		p.pool.Put(ds[i])
	}
}

// DefaultDrawablePool is the package-wide drawable pool.
var DefaultDrawablePool = NewDrawablePool()

// AcquireDrawable retrieves a drawable from the default pool.
func AcquireDrawable(renderer strata.Renderer, painter Painter) *Drawable {
	return DefaultDrawablePool.Get(renderer, painter)
}

// releaseDrawable returns a drawable to the default pool.
// Reached through Drawable.Dispose so disposal ordering is enforced.
func releaseDrawable(d *Drawable) {
	DefaultDrawablePool.Put(d)
}

// ChangeIntervalPool manages a pool of reusable change intervals.
type ChangeIntervalPool struct {
	pool sync.Pool
}

// NewChangeIntervalPool creates a new change interval pool.
func NewChangeIntervalPool() *ChangeIntervalPool {
	return &ChangeIntervalPool{
		pool: sync.Pool{
			New: func() any {
				return &ChangeInterval{}
			},
		},
	}
}

// Get retrieves an interval bounded by the given drawables.
// Either bound may be nil for an interval touching a list edge.
func (p *ChangeIntervalPool) Get(before, after *Drawable) *ChangeInterval {
	ci := p.pool.Get().(*ChangeInterval)
	ci.drawableBefore = before
	ci.drawableAfter = after
	ci.next = nil
	ci.collapsed = false
	return ci
}

// Put returns an interval to the pool, releasing its chain references.
func (p *ChangeIntervalPool) Put(ci *ChangeInterval) {
	if ci == nil {
		return
	}
	ci.drawableBefore = nil
	ci.drawableAfter = nil
	ci.next = nil
	ci.collapsed = false
	p.pool.Put(ci)
}

// DefaultChangeIntervalPool is the package-wide interval pool.
var DefaultChangeIntervalPool = NewChangeIntervalPool()

// AcquireChangeInterval retrieves an interval from the default pool.
func AcquireChangeInterval(before, after *Drawable) *ChangeInterval {
	return DefaultChangeIntervalPool.Get(before, after)
}

// ReleaseChangeIntervals returns a whole interval chain to the default
// pool. Hosts call this after a synchronization pass completes.
func ReleaseChangeIntervals(first *ChangeInterval) {
	for ci := first; ci != nil; {
		next := ci.next
		DefaultChangeIntervalPool.Put(ci)
		ci = next
	}
}

// Block pools, one per family. DOM blocks are pooled here for allocation
// reuse only; the stitcher never reuses a live DOM block across stitches.

var canvasBlockPool = sync.Pool{New: func() any { return &CanvasBlock{} }}
var svgBlockPool = sync.Pool{New: func() any { return &SVGBlock{} }}
var domBlockPool = sync.Pool{New: func() any { return &DOMBlock{} }}
var webglBlockPool = sync.Pool{New: func() any { return &WebGLBlock{} }}

func acquireCanvasBlock() *CanvasBlock { return canvasBlockPool.Get().(*CanvasBlock) }
func acquireSVGBlock() *SVGBlock       { return svgBlockPool.Get().(*SVGBlock) }
func acquireDOMBlock() *DOMBlock       { return domBlockPool.Get().(*DOMBlock) }
func acquireWebGLBlock() *WebGLBlock   { return webglBlockPool.Get().(*WebGLBlock) }

func releaseCanvasBlock(b *CanvasBlock) {
	b.clearBase()
	canvasBlockPool.Put(b)
}

func releaseSVGBlock(b *SVGBlock) {
	b.clearBase()
	svgBlockPool.Put(b)
}

func releaseDOMBlock(b *DOMBlock) {
	b.clearBase()
	domBlockPool.Put(b)
}

func releaseWebGLBlock(b *WebGLBlock) {
	b.clearBase()
	webglBlockPool.Put(b)
}
