// Copyright 2026 The strata Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"image"

	"github.com/gogpu/gputypes"
	xdraw "golang.org/x/image/draw"
)

// RenderTarget defines where a block's rendering output goes.
//
// A RenderTarget is an abstraction over different rendering destinations:
//   - PixmapTarget: CPU-backed *image.RGBA for Canvas blocks
//   - TextureTarget: GPU texture for WebGL blocks
//
// Targets may support CPU access (Pixels), GPU access (TextureView), or
// both. The block implementation chooses the appropriate access method.
type RenderTarget interface {
	// Width returns the target width in pixels.
	Width() int

	// Height returns the target height in pixels.
	Height() int

	// Format returns the pixel format of the target.
	Format() gputypes.TextureFormat

	// TextureView returns the GPU texture view for this target.
	// Returns nil for CPU-only targets.
	TextureView() TextureView

	// Pixels returns direct access to pixel data.
	// Returns nil for GPU-only targets.
	// For RGBA format, each pixel is 4 bytes: R, G, B, A.
	Pixels() []byte

	// Stride returns the number of bytes per row.
	Stride() int
}

// PixmapTarget is a CPU-backed render target using *image.RGBA.
//
// This target backs Canvas blocks and is the CPU fallback for WebGL
// blocks that have no device. It provides direct pixel access.
type PixmapTarget struct {
	img *image.RGBA
}

// NewPixmapTarget creates a new CPU-backed render target.
func NewPixmapTarget(width, height int) *PixmapTarget {
	return &PixmapTarget{
		img: image.NewRGBA(image.Rect(0, 0, width, height)),
	}
}

// NewPixmapTargetFromImage wraps an existing *image.RGBA as a render target.
// The image is used directly without copying.
func NewPixmapTargetFromImage(img *image.RGBA) *PixmapTarget {
	return &PixmapTarget{img: img}
}

// Width returns the target width in pixels.
func (t *PixmapTarget) Width() int {
	return t.img.Bounds().Dx()
}

// Height returns the target height in pixels.
func (t *PixmapTarget) Height() int {
	return t.img.Bounds().Dy()
}

// Format returns the pixel format (RGBA8).
func (t *PixmapTarget) Format() gputypes.TextureFormat {
	return gputypes.TextureFormatRGBA8Unorm
}

// TextureView returns nil as this is a CPU-only target.
func (t *PixmapTarget) TextureView() TextureView {
	return nil
}

// Pixels returns the raw RGBA pixel data.
func (t *PixmapTarget) Pixels() []byte {
	return t.img.Pix
}

// Stride returns the number of bytes per row.
func (t *PixmapTarget) Stride() int {
	return t.img.Stride
}

// Image returns the underlying *image.RGBA.
func (t *PixmapTarget) Image() *image.RGBA {
	return t.img
}

// Clear sets every pixel to transparent black.
func (t *PixmapTarget) Clear() {
	pix := t.img.Pix
	for i := range pix {
		pix[i] = 0
	}
}

// Resize replaces the backing image with one of the given dimensions,
// discarding previous content. It is a no-op if the size is unchanged.
func (t *PixmapTarget) Resize(width, height int) {
	if width == t.Width() && height == t.Height() {
		return
	}
	t.img = image.NewRGBA(image.Rect(0, 0, width, height))
}

// Rescale resizes the target to the given dimensions, scaling existing
// content into the new backing image so a live surface stays visually
// plausible until its owner repaints. It is a no-op if the size is
// unchanged.
func (t *PixmapTarget) Rescale(width, height int) {
	if width == t.Width() && height == t.Height() {
		return
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), t.img, t.img.Bounds(), xdraw.Src, nil)
	t.img = dst
}
