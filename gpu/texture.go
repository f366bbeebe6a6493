// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"errors"
	"fmt"
	"image"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"

	"github.com/gogpu/pixpaint"
	"github.com/gogpu/pixpaint/internal/blend"
)

// ErrTextureReleased is returned when operating on a released texture.
var ErrTextureReleased = errors.New("gpu: texture has been released")

// DefaultTextureUsage is the usage of staging textures: written by uploads,
// read back by flushes, sampled by the host's preview.
const DefaultTextureUsage = gputypes.TextureUsageCopySrc | gputypes.TextureUsageCopyDst | gputypes.TextureUsageTextureBinding

// FormatFor returns the texture format matching a buffer color space.
func FormatFor(cs pixpaint.ColorSpace) gputypes.TextureFormat {
	if cs == pixpaint.ColorSpaceLinear {
		return gputypes.TextureFormatRGBA8Unorm
	}
	return gputypes.TextureFormatRGBA8UnormSrgb
}

// Texture is a staging texture for stroke preview.
//
// Compositing runs on a host-visible shadow copy using the same blend math
// as the CPU path, so a flush reproduces what the CPU computes. When the
// host's device is a *wgpu.Device the shadow is mirrored into a device
// texture after every change, for the host's renderer to sample through
// View. Otherwise the texture is the shadow alone.
//
// Texture is safe for concurrent use.
type Texture struct {
	mu sync.Mutex

	device *wgpu.Texture
	view   *wgpu.TextureView
	queue  *wgpu.Queue

	format gputypes.TextureFormat
	usage  gputypes.TextureUsage
	label  string

	shadow *pixpaint.PixelBuffer
	dirty  image.Rectangle
	owner  *Accelerator

	released atomic.Bool
}

var _ pixpaint.StagingTexture = (*Texture)(nil)

func newTexture(owner *Accelerator, dev *wgpu.Device, queue *wgpu.Queue, width, height int, cs pixpaint.ColorSpace, label string) (*Texture, error) {
	shadow, err := pixpaint.NewPixelBuffer(width, height, pixpaint.WithColorSpace(cs))
	if err != nil {
		return nil, err
	}
	t := &Texture{
		format: FormatFor(cs),
		usage:  DefaultTextureUsage,
		label:  label,
		shadow: shadow,
		owner:  owner,
	}
	if dev == nil || queue == nil {
		return t, nil
	}

	tex, err := dev.CreateTexture(&wgpu.TextureDescriptor{
		Label: label,
		Size: wgpu.Extent3D{
			Width:              uint32(width),  //nolint:gosec // validated by NewPixelBuffer
			Height:             uint32(height), //nolint:gosec // validated by NewPixelBuffer
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        t.format,
		Usage:         t.usage,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create texture %s: %w", label, err)
	}
	view, err := dev.CreateTextureView(tex, &wgpu.TextureViewDescriptor{
		Label:           label + "-view",
		Format:          t.format,
		Dimension:       gputypes.TextureViewDimension2D,
		Aspect:          gputypes.TextureAspectAll,
		MipLevelCount:   1,
		ArrayLayerCount: 1,
	})
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("gpu: create view %s: %w", label, err)
	}
	t.device, t.view, t.queue = tex, view, queue
	return t, nil
}

// Width returns the texture width in pixels.
func (t *Texture) Width() int { return t.shadow.Width() }

// Height returns the texture height in pixels.
func (t *Texture) Height() int { return t.shadow.Height() }

// Format returns the texture pixel format.
func (t *Texture) Format() gputypes.TextureFormat { return t.format }

// Usage returns the texture usage flags.
func (t *Texture) Usage() gputypes.TextureUsage { return t.usage }

// Label returns the debug label.
func (t *Texture) Label() string { return t.label }

// SizeBytes returns the texture memory footprint.
func (t *Texture) SizeBytes() uint64 {
	return uint64(len(t.shadow.Data())) //nolint:gosec // length is never negative
}

// DeviceTexture returns the device texture, or nil when the texture is a
// host-visible shadow only.
func (t *Texture) DeviceTexture() *wgpu.Texture {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.device
}

// View returns the device texture view, or nil when there is no device
// texture.
func (t *Texture) View() *wgpu.TextureView {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.view
}

// IsReleased reports whether Close has been called.
func (t *Texture) IsReleased() bool { return t.released.Load() }

// UploadFromCPU replaces the texture contents and clip with src.
func (t *Texture) UploadFromCPU(src *pixpaint.PixelBuffer) error {
	if t.released.Load() {
		return ErrTextureReleased
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.shadow.Restore(src.Data()); err != nil {
		return fmt.Errorf("gpu: upload %s: %w", t.label, err)
	}
	t.shadow.SetClip(src.Clip())
	t.dirty = t.shadow.Bounds()
	return t.writeLocked(t.shadow.Bounds())
}

// CompositeStamp composites a tinted stamp into the texture.
func (t *Texture) CompositeStamp(stamp *pixpaint.Stamp, x, y int, paint pixpaint.RGBA8, mode pixpaint.BlendMode) error {
	if t.released.Load() {
		return ErrTextureReleased
	}
	if stamp == nil {
		return pixpaint.ErrFallbackToCPU
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	touched := blend.Stamp(t.shadow, stamp, x, y, paint, mode)
	t.dirty = t.dirty.Union(touched)
	return t.writeLocked(touched)
}

// CompositeLayer writes base with layer composited on top into the texture
// for the pixels of r inside the clip.
func (t *Texture) CompositeLayer(base, layer *pixpaint.PixelBuffer, r image.Rectangle) error {
	if t.released.Load() {
		return ErrTextureReleased
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if base.Width() != t.shadow.Width() || base.Height() != t.shadow.Height() ||
		layer.Width() != t.shadow.Width() || layer.Height() != t.shadow.Height() {
		return fmt.Errorf("gpu: composite layer %s: %w", t.label, pixpaint.ErrSizeMismatch)
	}
	r = r.Intersect(t.shadow.Clip())
	if r.Empty() {
		return nil
	}
	blend.Over(t.shadow, base, layer, r)
	t.dirty = t.dirty.Union(r)
	return t.writeLocked(r)
}

// writeLocked copies r of the shadow into the device texture.
func (t *Texture) writeLocked(r image.Rectangle) error {
	if t.device == nil || r.Empty() {
		return nil
	}
	data := t.shadow.Data()[t.shadow.Offset(r.Min.X, r.Min.Y):]
	err := t.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture: t.device,
			Origin:  wgpu.Origin3D{X: uint32(r.Min.X), Y: uint32(r.Min.Y)}, //nolint:gosec // inside bounds
			Aspect:  gputypes.TextureAspectAll,
		},
		data,
		&wgpu.ImageDataLayout{
			BytesPerRow:  uint32(t.shadow.Width() * 4), //nolint:gosec // validated by NewPixelBuffer
			RowsPerImage: uint32(r.Dy()),               //nolint:gosec // inside bounds
		},
		&wgpu.Extent3D{Width: uint32(r.Dx()), Height: uint32(r.Dy()), DepthOrArrayLayers: 1}, //nolint:gosec // inside bounds
	)
	if err != nil {
		return fmt.Errorf("gpu: write %s: %w", t.label, err)
	}
	return nil
}

// FlushToCPU copies the texture into dst, limited to dst's clip.
func (t *Texture) FlushToCPU(dst *pixpaint.PixelBuffer) error {
	if t.released.Load() {
		return ErrTextureReleased
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if dst.Width() != t.shadow.Width() || dst.Height() != t.shadow.Height() {
		return fmt.Errorf("gpu: flush %s: %w", t.label, pixpaint.ErrSizeMismatch)
	}
	dst.CopyRect(t.shadow, dst.Clip())
	return nil
}

// TakeDirty returns the region changed since the last call and resets it.
// Hosts use it to limit preview uploads.
func (t *Texture) TakeDirty() image.Rectangle {
	t.mu.Lock()
	defer t.mu.Unlock()
	r := t.dirty
	t.dirty = image.Rectangle{}
	return r
}

// Close releases the texture. It is safe to call more than once.
func (t *Texture) Close() {
	if t.released.Swap(true) {
		return
	}
	t.mu.Lock()
	if t.view != nil {
		t.view.Release()
		t.view = nil
	}
	if t.device != nil {
		t.device.Release()
		t.device = nil
	}
	t.queue = nil
	t.mu.Unlock()
	if t.owner != nil {
		t.owner.release(t)
	}
}
