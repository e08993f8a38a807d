// Package strata provides a retained-mode display engine for interactive
// 2D graphics with multi-backend rendering.
//
// # Overview
//
// strata keeps a logical scene in sync with a set of rendering "blocks":
// aggregated rendering contexts that each own a contiguous run of drawables
// sharing one renderer family (Canvas, SVG, DOM or WebGL). When the scene
// changes, only the changed regions of the drawable list are reconciled
// ("stitched") against the existing block partition, avoiding full tree
// re-walks on every frame.
//
// # Quick Start
//
//	import (
//	    "github.com/gopix/strata"
//	    "github.com/gopix/strata/display"
//	)
//
//	d := display.New(display.Options{Width: 800, Height: 600})
//	root := d.RootBackbone()
//
//	a := display.AcquireDrawable(strata.Canvas, painter)
//	b := display.AcquireDrawable(strata.SVG, painter)
//	display.LinkDrawables(a, b)
//	root.Rebuild(a, b, nil, nil, nil, nil)
//
//	d.UpdateDisplay()
//
// # Architecture
//
// The module is organized into:
//   - Root package: renderer classification, geometry, logging
//   - display: drawables, change intervals, blocks, backbones, stitching
//   - render: render targets and GPU device integration
package strata
