// Copyright 2026 The strata Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package display implements the drawable/block synchronization engine at
// the heart of strata.
//
// A Display owns a tree of backbones. Each BackboneDrawable owns an
// ordered list of rendering blocks, where every block renders one
// contiguous run of drawables sharing a renderer family. Scene changes
// arrive as a new drawable linked list plus a chain of ChangeIntervals
// describing where it differs from the previous frame's list; the
// stitcher reconciles the block partition against those intervals with
// minimal churn, reusing blocks whose renderer family still matches.
//
// All work is synchronous and frame-driven. Nothing in this package is
// safe for concurrent use; a Display and everything beneath it must be
// driven from a single goroutine.
package display
