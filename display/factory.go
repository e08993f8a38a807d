// Copyright 2026 The strata Authors
// SPDX-License-Identifier: BSD-3-Clause

package display

import (
	"fmt"
	"sync"

	"github.com/gopix/strata"
)

// BlockFactory creates a block for one renderer family.
type BlockFactory func(backbone *BackboneDrawable, renderer strata.Renderer) Block

// factory registry. The four built-in families are registered at init;
// hosts may replace a family's factory to substitute their own backend.
var (
	factoryMu sync.RWMutex
	factories = make(map[strata.Renderer]BlockFactory)
)

func init() {
	RegisterBlockFactory(strata.Canvas, newCanvasBlock)
	RegisterBlockFactory(strata.SVG, newSVGBlock)
	RegisterBlockFactory(strata.DOM, newDOMBlock)
	RegisterBlockFactory(strata.WebGL, newWebGLBlock)
}

// RegisterBlockFactory registers a factory for a renderer family.
// If the family already has a factory, it is replaced.
func RegisterBlockFactory(family strata.Renderer, factory BlockFactory) {
	factoryMu.Lock()
	defer factoryMu.Unlock()
	factories[family.Family()] = factory
}

// blockFactoryFor returns the factory for a family, or nil.
func blockFactoryFor(family strata.Renderer) BlockFactory {
	factoryMu.RLock()
	defer factoryMu.RUnlock()
	return factories[family.Family()]
}

// newBlock allocates a block for the renderer. An invalid or
// unregistered renderer is a hard error: it indicates a classification
// bug upstream, and silently skipping the drawable would corrupt the
// partition.
func newBlock(backbone *BackboneDrawable, renderer strata.Renderer) Block {
	if !renderer.Valid() {
		panic(fmt.Errorf("%w: %s", ErrUnsupportedRenderer, renderer))
	}
	factory := blockFactoryFor(renderer)
	if factory == nil {
		panic(fmt.Errorf("%w: no factory for %s", ErrUnsupportedRenderer, renderer.Family()))
	}
	return factory(backbone, renderer)
}
