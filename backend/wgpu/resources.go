// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"
	"image"
	"image/draw"
	"sync/atomic"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/ink/gpucore"
)

// Texture is a HAL texture with a default view. Pixels are stored
// premultiplied.
type Texture struct {
	device *Device
	label  string
	width  int
	height int
	format gpucore.TextureFormat
	usage  gpucore.TextureUsage

	tex  hal.Texture
	view hal.TextureView

	// state is the last usage recorded for barrier computation. It is
	// guarded by device.mu.
	state gputypes.TextureUsage

	// pending counts command buffers that reference the texture.
	pending  atomic.Int32
	released atomic.Bool
}

// Label returns the debug label.
func (t *Texture) Label() string { return t.label }

// Width returns the width in pixels.
func (t *Texture) Width() int { return t.width }

// Height returns the height in pixels.
func (t *Texture) Height() int { return t.height }

// Format returns the pixel format.
func (t *Texture) Format() gpucore.TextureFormat { return t.format }

// Usage returns the usage flags.
func (t *Texture) Usage() gpucore.TextureUsage { return t.usage }

// Release destroys the texture once no command buffer references it.
func (t *Texture) Release() {
	if t.released.Swap(true) {
		return
	}
	dev := t.device.device
	tex, view := t.tex, t.view
	t.device.retire(&t.pending, func() {
		dev.DestroyTextureView(view)
		dev.DestroyTexture(tex)
	})
}

// Upload writes img into the texture, clipped to the texture bounds.
// Brush images are provided this way.
func (t *Texture) Upload(img image.Image) error {
	if t.released.Load() {
		return gpucore.ErrReleased
	}
	rgba := image.NewRGBA(image.Rect(0, 0, t.width, t.height))
	draw.Draw(rgba, rgba.Rect, img, img.Bounds().Min, draw.Src)
	if t.format == gpucore.TextureFormatBGRA8Unorm {
		swapRB(rgba.Pix)
	}

	d := t.device
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	err := d.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: t.tex, Aspect: gputypes.TextureAspectAll},
		rgba.Pix,
		&hal.ImageDataLayout{BytesPerRow: uint32(rgba.Stride), RowsPerImage: uint32(t.height)},
		&hal.Extent3D{Width: uint32(t.width), Height: uint32(t.height), DepthOrArrayLayers: 1},
	)
	if err != nil {
		return fmt.Errorf("wgpu: upload texture %q: %w", t.label, err)
	}
	t.state = gputypes.TextureUsageCopyDst
	return nil
}

// Buffer is a HAL buffer with an immutable CPU copy of its contents.
type Buffer struct {
	device *Device
	usage  gpucore.BufferUsage
	data   []byte
	buf    hal.Buffer

	pending  atomic.Int32
	released atomic.Bool
}

// Len returns the size in bytes.
func (b *Buffer) Len() int { return len(b.data) }

// Usage returns the usage flags.
func (b *Buffer) Usage() gpucore.BufferUsage { return b.usage }

// Contents returns a copy of the buffer data.
func (b *Buffer) Contents() []byte {
	return append([]byte(nil), b.data...)
}

// Release destroys the buffer once no command buffer references it.
func (b *Buffer) Release() {
	if b.released.Swap(true) {
		return
	}
	dev, buf := b.device.device, b.buf
	b.device.retire(&b.pending, func() {
		dev.DestroyBuffer(buf)
	})
}

// Pipeline selects the HAL pipelines used for one vertex layout and color
// format. The HAL objects themselves live in the device pipeline cache.
type Pipeline struct {
	label  string
	layout gpucore.VertexLayout
	format gpucore.TextureFormat
}

// Label returns the debug label.
func (p *Pipeline) Label() string { return p.label }

// Layout returns the vertex layout.
func (p *Pipeline) Layout() gpucore.VertexLayout { return p.layout }

// ColorFormat returns the attachment format.
func (p *Pipeline) ColorFormat() gpucore.TextureFormat { return p.format }

// swapRB swaps the red and blue channels of 4-byte pixels in place.
func swapRB(pix []byte) {
	for i := 0; i+3 < len(pix); i += 4 {
		pix[i], pix[i+2] = pix[i+2], pix[i]
	}
}

var (
	_ gpucore.Texture         = (*Texture)(nil)
	_ gpucore.TextureUploader = (*Texture)(nil)
	_ gpucore.Buffer          = (*Buffer)(nil)
	_ gpucore.RenderPipeline  = (*Pipeline)(nil)
)
