// Copyright 2026 The strata Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// Texture target errors.
var (
	// ErrNoTextureCreator is returned when uploading without a host that
	// can create GPU textures.
	ErrNoTextureCreator = errors.New("render: host does not implement gpucontext.TextureCreator")

	// ErrTargetDestroyed is returned when operating on a destroyed target.
	ErrTargetDestroyed = errors.New("render: target destroyed")
)

// textureDestroyer matches the Destroy signature of host texture types.
type textureDestroyer interface {
	Destroy()
}

// TextureTarget is a GPU-backed render target for WebGL blocks.
//
// Blocks draw into a CPU staging pixmap; Upload pushes the staging
// content to a GPU texture created through the host's TextureCreator.
// The texture is created lazily on first Upload and updated in place
// afterwards via gpucontext.TextureUpdater when the host supports it.
//
// TextureTarget is NOT safe for concurrent use.
type TextureTarget struct {
	handle    DeviceHandle
	desc      TextureDescriptor
	staging   *PixmapTarget
	texture   any // lazily created host texture
	dirty     bool
	destroyed bool
}

// NewTextureTarget creates a GPU render target of the given size.
// The handle may be nil; the target then behaves as a CPU staging
// surface until a handle is attached.
func NewTextureTarget(handle DeviceHandle, desc TextureDescriptor) *TextureTarget {
	return &TextureTarget{
		handle:  handle,
		desc:    desc,
		staging: NewPixmapTarget(int(desc.Width), int(desc.Height)),
		dirty:   true,
	}
}

// Width returns the target width in pixels.
func (t *TextureTarget) Width() int { return int(t.desc.Width) }

// Height returns the target height in pixels.
func (t *TextureTarget) Height() int { return int(t.desc.Height) }

// Format returns the pixel format of the target.
func (t *TextureTarget) Format() gputypes.TextureFormat { return t.desc.Format }

// TextureView returns the GPU texture view, or nil when the texture has
// not been created yet or the host texture does not expose a view.
func (t *TextureTarget) TextureView() TextureView {
	if v, ok := t.texture.(interface{ CreateView() TextureView }); ok {
		return v.CreateView()
	}
	return nil
}

// Pixels returns the staging pixel data.
func (t *TextureTarget) Pixels() []byte { return t.staging.Pixels() }

// Stride returns the number of bytes per row of the staging surface.
func (t *TextureTarget) Stride() int { return t.staging.Stride() }

// Staging returns the CPU staging surface blocks draw into.
func (t *TextureTarget) Staging() *PixmapTarget { return t.staging }

// Handle returns the device handle, or nil for a CPU-only target.
func (t *TextureTarget) Handle() DeviceHandle { return t.handle }

// MarkDirty flags the staging content for GPU upload on next Upload.
func (t *TextureTarget) MarkDirty() { t.dirty = true }

// Upload pushes the staging surface to the GPU texture, creating the
// texture on first use. The creator typically comes from the host's
// draw context. Upload is a no-op when the target is clean.
func (t *TextureTarget) Upload(creator gpucontext.TextureCreator) error {
	if t.destroyed {
		return ErrTargetDestroyed
	}
	if !t.dirty && t.texture != nil {
		return nil
	}

	data := t.staging.Pixels()
	if t.texture == nil {
		if creator == nil {
			return ErrNoTextureCreator
		}
		tex, err := creator.NewTextureFromRGBA(t.Width(), t.Height(), data)
		if err != nil {
			return fmt.Errorf("render: texture creation failed: %w", err)
		}
		t.texture = tex
		t.dirty = false
		return nil
	}

	if updater, ok := t.texture.(gpucontext.TextureUpdater); ok {
		if err := updater.UpdateData(data); err != nil {
			return fmt.Errorf("render: texture update failed: %w", err)
		}
	}
	t.dirty = false
	return nil
}

// Texture returns the current host texture without uploading.
// Returns nil if the texture has not been created yet.
func (t *TextureTarget) Texture() any { return t.texture }

// Destroy releases the GPU texture. Destroy is idempotent.
func (t *TextureTarget) Destroy() {
	if t.destroyed {
		return
	}
	t.destroyed = true
	if d, ok := t.texture.(textureDestroyer); ok {
		d.Destroy()
	}
	t.texture = nil
}
