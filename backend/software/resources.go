// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package software

import (
	"image"
	"sync"
	"sync/atomic"

	"github.com/gogpu/ink/gpucore"
)

// Texture is a CPU texture. Pixels are stored premultiplied as RGBA
// regardless of the declared format.
type Texture struct {
	label  string
	format gpucore.TextureFormat
	usage  gpucore.TextureUsage

	mu  sync.Mutex
	img *image.RGBA

	released atomic.Bool
}

// Label returns the debug label.
func (t *Texture) Label() string { return t.label }

// Width returns the width in pixels.
func (t *Texture) Width() int { return t.img.Rect.Dx() }

// Height returns the height in pixels.
func (t *Texture) Height() int { return t.img.Rect.Dy() }

// Format returns the declared pixel format.
func (t *Texture) Format() gpucore.TextureFormat { return t.format }

// Usage returns the usage flags.
func (t *Texture) Usage() gpucore.TextureUsage { return t.usage }

// Release marks the texture released. Command buffers that already
// reference it still execute against it.
func (t *Texture) Release() {
	t.released.Store(true)
}

// Upload copies img into the texture, clipped to the texture bounds.
// Brush images are provided this way.
func (t *Texture) Upload(img image.Image) error {
	if t.released.Load() {
		return gpucore.ErrReleased
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	copyImage(t.img, img)
	return nil
}

// snapshot returns a copy of the pixels.
func (t *Texture) snapshot() *image.RGBA {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := image.NewRGBA(t.img.Rect)
	copy(out.Pix, t.img.Pix)
	return out
}

var _ gpucore.TextureUploader = (*Texture)(nil)

// Buffer is an immutable CPU buffer.
type Buffer struct {
	usage gpucore.BufferUsage
	data  []byte

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

// Release marks the buffer released.
func (b *Buffer) Release() {
	b.released.Store(true)
}

// Pipeline is a software render pipeline.
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

var (
	_ gpucore.Texture        = (*Texture)(nil)
	_ gpucore.Buffer         = (*Buffer)(nil)
	_ gpucore.RenderPipeline = (*Pipeline)(nil)
)
