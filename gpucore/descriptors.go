// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpucore

import "fmt"

// TextureDescriptor describes parameters for creating a texture.
type TextureDescriptor struct {
	// Label is an optional debug label.
	Label string

	// Width and Height are the texture size in pixels. Both must be > 0.
	Width, Height int

	// Format is the pixel format.
	Format TextureFormat

	// Usage specifies how the texture will be used.
	Usage TextureUsage
}

// Validate checks that the descriptor can be allocated.
func (d *TextureDescriptor) Validate() error {
	if d == nil {
		return fmt.Errorf("%w: nil texture descriptor", ErrInvalidDescriptor)
	}
	if d.Width <= 0 || d.Height <= 0 {
		return fmt.Errorf("%w: texture size %dx%d", ErrInvalidDescriptor, d.Width, d.Height)
	}
	if d.Format.BytesPerPixel() == 0 {
		return fmt.Errorf("%w: texture format %v", ErrInvalidDescriptor, d.Format)
	}
	return nil
}

// ColorAttachment binds a texture to a render pass.
type ColorAttachment struct {
	// Texture receives the pass output. A nil texture makes the pass
	// descriptor unusable.
	Texture Texture

	// LoadAction selects how existing contents are treated.
	LoadAction LoadAction

	// StoreAction selects whether results are kept.
	StoreAction StoreAction

	// ClearColor is used when LoadAction is LoadActionClear.
	ClearColor ClearColor
}

// RenderPassDescriptor describes the attachments of a render pass.
// Only a single color attachment is supported.
type RenderPassDescriptor struct {
	// Label is an optional debug label.
	Label string

	// ColorAttachments holds the pass attachments; index 0 is used.
	ColorAttachments [1]ColorAttachment
}

// Validate checks that the descriptor can start a render pass.
func (d *RenderPassDescriptor) Validate() error {
	if d == nil {
		return fmt.Errorf("%w: nil render pass descriptor", ErrInvalidDescriptor)
	}
	tex := d.ColorAttachments[0].Texture
	if tex == nil {
		return fmt.Errorf("%w: color attachment 0 has no texture", ErrInvalidDescriptor)
	}
	if !tex.Usage().Has(TextureUsageRenderTarget) {
		return fmt.Errorf("%w: texture %q is not a render target", ErrInvalidDescriptor, tex.Label())
	}
	return nil
}

// RenderPipelineDescriptor describes a render pipeline.
type RenderPipelineDescriptor struct {
	// Label is an optional debug label.
	Label string

	// Layout selects the geometry wire layout.
	Layout VertexLayout

	// ColorFormat must match the attachment format at draw time.
	ColorFormat TextureFormat
}
