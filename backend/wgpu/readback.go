// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"context"
	"fmt"
	"image"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/ink/gpucore"
)

// copyPitchAlignment is the required BytesPerRow alignment of
// texture-to-buffer copies.
const copyPitchAlignment = 256

// readback copies t into a staging buffer and returns its pixels.
func (d *Device) readback(ctx context.Context, t *Texture) (*image.RGBA, error) {
	w, h := uint32(t.width), uint32(t.height)
	rowBytes := w * 4
	pitch := uint32(align(uint64(rowBytes), copyPitchAlignment))
	size := uint64(pitch) * uint64(h)

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil, ErrClosed
	}
	staging, enc, cmd, idx, err := d.encodeReadbackLocked(t, pitch, size)
	d.mu.Unlock()
	if err != nil {
		return nil, err
	}

	t.pending.Add(1)
	free := func() {
		t.pending.Add(-1)
		d.device.FreeCommandBuffer(cmd)
		enc.Destroy()
		d.device.DestroyBuffer(staging)
	}

	if err := d.waitSubmission(ctx, idx); err != nil {
		// The copy may still be running; free the objects once it is done.
		d.mu.Lock()
		if !d.closed {
			d.retired = append(d.retired, retiredResource{after: idx, free: free})
		}
		d.mu.Unlock()
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		if !d.owned {
			free()
		}
		return nil, ErrClosed
	}
	defer free()

	mapping, err := d.device.MapBuffer(staging, 0, size)
	if err != nil {
		return nil, fmt.Errorf("wgpu: map staging buffer: %w", err)
	}
	data := unsafe.Slice((*byte)(mapping.Ptr), size)

	img := image.NewRGBA(image.Rect(0, 0, t.width, t.height))
	for y := 0; y < t.height; y++ {
		src := data[y*int(pitch) : y*int(pitch)+int(rowBytes)]
		copy(img.Pix[y*img.Stride:], src)
	}
	if err := d.device.UnmapBuffer(staging); err != nil {
		return nil, fmt.Errorf("wgpu: unmap staging buffer: %w", err)
	}
	if t.format == gpucore.TextureFormatBGRA8Unorm {
		swapRB(img.Pix)
	}
	return img, nil
}

// encodeReadbackLocked records and submits the copy of t into a new
// staging buffer.
func (d *Device) encodeReadbackLocked(t *Texture, pitch uint32, size uint64) (hal.Buffer, hal.CommandEncoder, hal.CommandBuffer, uint64, error) {
	staging, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "ink_readback_staging",
		Size:  size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, nil, nil, 0, fmt.Errorf("wgpu: create staging buffer: %w", err)
	}
	enc, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "ink_readback"})
	if err != nil {
		d.device.DestroyBuffer(staging)
		return nil, nil, nil, 0, fmt.Errorf("wgpu: create command encoder: %w", err)
	}
	fail := func(err error) (hal.Buffer, hal.CommandEncoder, hal.CommandBuffer, uint64, error) {
		enc.Destroy()
		d.device.DestroyBuffer(staging)
		return nil, nil, nil, 0, err
	}
	if err := enc.BeginEncoding("ink_readback"); err != nil {
		return fail(fmt.Errorf("wgpu: begin encoding: %w", err))
	}

	d.transitionLocked(enc, t.tex, &t.state, gputypes.TextureUsageCopySrc)
	enc.CopyTextureToBuffer(t.tex, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{BytesPerRow: pitch, RowsPerImage: uint32(t.height)},
		TextureBase:  hal.ImageCopyTexture{Texture: t.tex, Aspect: gputypes.TextureAspectAll},
		Size:         hal.Extent3D{Width: uint32(t.width), Height: uint32(t.height), DepthOrArrayLayers: 1},
	}})

	cmd, err := enc.EndEncoding()
	if err != nil {
		return fail(fmt.Errorf("wgpu: end encoding: %w", err))
	}
	d.queue.SetSwapchainSuppressed(true)
	idx, err := d.queue.Submit([]hal.CommandBuffer{cmd})
	d.queue.SetSwapchainSuppressed(false)
	if err != nil {
		d.device.FreeCommandBuffer(cmd)
		return fail(fmt.Errorf("wgpu: submit readback: %w", err))
	}
	d.lastSubmit = idx
	return staging, enc, cmd, idx, nil
}
