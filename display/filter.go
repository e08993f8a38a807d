// Copyright 2026 The strata Authors
// SPDX-License-Identifier: BSD-3-Clause

package display

// FilterNode is the scene-graph-facing surface a backbone watches for
// the opacity/visibility/clip state it applies on behalf of everything
// beneath it. The display core only reads these properties and
// subscribes to their changes; the scene graph itself lives outside
// this package.
type FilterNode interface {
	// Opacity returns the node's opacity in [0, 1].
	Opacity() float64

	// Visible returns whether the node is visible.
	Visible() bool

	// ClipEnabled returns whether the node clips its content.
	// Clip aggregation is reserved; the value is read but not yet
	// composed.
	ClipEnabled() bool

	// OnOpacityChange registers an opacity listener and returns its
	// unsubscribe function.
	OnOpacityChange(fn func()) (unsubscribe func())

	// OnVisibleChange registers a visibility listener and returns its
	// unsubscribe function.
	OnVisibleChange(fn func()) (unsubscribe func())

	// OnClipChange registers a clip listener and returns its
	// unsubscribe function.
	OnClipChange(fn func()) (unsubscribe func())
}

// FilterState is a concrete FilterNode for hosts that have no richer
// node representation, and for tests. Listeners fire synchronously from
// the setter.
type FilterState struct {
	opacity float64
	visible bool
	clip    bool

	nextID           int
	opacityListeners map[int]func()
	visibleListeners map[int]func()
	clipListeners    map[int]func()
}

// NewFilterState creates a filter node with opacity 1, visible, no clip.
func NewFilterState() *FilterState {
	return &FilterState{
		opacity:          1,
		visible:          true,
		opacityListeners: make(map[int]func()),
		visibleListeners: make(map[int]func()),
		clipListeners:    make(map[int]func()),
	}
}

// Opacity returns the node's opacity.
func (f *FilterState) Opacity() float64 { return f.opacity }

// Visible returns whether the node is visible.
func (f *FilterState) Visible() bool { return f.visible }

// ClipEnabled returns whether the node clips its content.
func (f *FilterState) ClipEnabled() bool { return f.clip }

// SetOpacity updates the opacity and notifies listeners.
func (f *FilterState) SetOpacity(v float64) {
	if f.opacity == v {
		return
	}
	f.opacity = v
	for _, fn := range f.opacityListeners {
		fn()
	}
}

// SetVisible updates visibility and notifies listeners.
func (f *FilterState) SetVisible(v bool) {
	if f.visible == v {
		return
	}
	f.visible = v
	for _, fn := range f.visibleListeners {
		fn()
	}
}

// SetClipEnabled updates the clip flag and notifies listeners.
func (f *FilterState) SetClipEnabled(v bool) {
	if f.clip == v {
		return
	}
	f.clip = v
	for _, fn := range f.clipListeners {
		fn()
	}
}

func (f *FilterState) subscribe(m map[int]func(), fn func()) func() {
	id := f.nextID
	f.nextID++
	m[id] = fn
	return func() { delete(m, id) }
}

// OnOpacityChange registers an opacity listener.
func (f *FilterState) OnOpacityChange(fn func()) func() {
	return f.subscribe(f.opacityListeners, fn)
}

// OnVisibleChange registers a visibility listener.
func (f *FilterState) OnVisibleChange(fn func()) func() {
	return f.subscribe(f.visibleListeners, fn)
}

// OnClipChange registers a clip listener.
func (f *FilterState) OnClipChange(fn func()) func() {
	return f.subscribe(f.clipListeners, fn)
}

// Instance ties a filter node into the display's ancestor chain. A
// backbone collects the nodes between its own instance and its filter
// root once, at construction.
type Instance struct {
	node   FilterNode
	parent *Instance
}

// NewInstance creates an instance for the node under the given parent.
// Parent may be nil for a root instance.
func NewInstance(node FilterNode, parent *Instance) *Instance {
	return &Instance{node: node, parent: parent}
}

// Node returns the instance's filter node.
func (i *Instance) Node() FilterNode { return i.node }

// Parent returns the instance's parent, or nil at the root.
func (i *Instance) Parent() *Instance { return i.parent }
