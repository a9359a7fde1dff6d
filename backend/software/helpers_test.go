// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package software

import (
	"context"
	"testing"
	"time"

	"github.com/gogpu/ink/gpucore"
)

// pixelMatrix encodes the pixel to clip transform of a w x h target.
func pixelMatrix(w, h float32) []byte {
	buf := make([]byte, gpucore.UniformSize)
	gpucore.PutFloat32s(buf,
		2/w, 0, 0, 0,
		0, -2/h, 0, 0,
		0, 0, 1, 0,
		-1, 1, 0, 1)
	return buf
}

func pointBytes(x, y float32, c [4]float32, size float32) []byte {
	buf := make([]byte, gpucore.PointStride)
	gpucore.PutFloat32s(buf, x, y, 0, 1, c[0], c[1], c[2], c[3], size)
	return buf
}

func vertexBytes(coords ...[4]float32) []byte {
	buf := make([]byte, 0, len(coords)*gpucore.VertexStride)
	for _, c := range coords {
		rec := make([]byte, gpucore.VertexStride)
		gpucore.PutFloat32s(rec, c[0], c[1], 0, 1, c[2], c[3])
		buf = append(buf, rec...)
	}
	return buf
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func newTarget(t *testing.T, d *Device, w, h int) gpucore.Texture {
	t.Helper()
	tex, err := d.MakeTexture(&gpucore.TextureDescriptor{
		Label:  "target",
		Width:  w,
		Height: h,
		Format: gpucore.TextureFormatRGBA8Unorm,
		Usage:  gpucore.TextureUsageRenderTarget | gpucore.TextureUsageShaderRead | gpucore.TextureUsageCopySrc,
	})
	if err != nil {
		t.Fatalf("MakeTexture: %v", err)
	}
	return tex
}

func newPipeline(t *testing.T, d *Device, layout gpucore.VertexLayout) gpucore.RenderPipeline {
	t.Helper()
	p, err := d.MakeRenderPipeline(&gpucore.RenderPipelineDescriptor{
		Label:       layout.String(),
		Layout:      layout,
		ColorFormat: gpucore.TextureFormatRGBA8Unorm,
	})
	if err != nil {
		t.Fatalf("MakeRenderPipeline: %v", err)
	}
	return p
}

func passFor(tex gpucore.Texture, load gpucore.LoadAction) *gpucore.RenderPassDescriptor {
	desc := &gpucore.RenderPassDescriptor{Label: "pass"}
	desc.ColorAttachments[0] = gpucore.ColorAttachment{
		Texture:     tex,
		LoadAction:  load,
		StoreAction: gpucore.StoreActionStore,
	}
	return desc
}

// runPass encodes one pass with fn, commits and waits.
func runPass(t *testing.T, d *Device, desc *gpucore.RenderPassDescriptor, fn func(enc gpucore.RenderCommandEncoder)) {
	t.Helper()
	q, err := d.MakeCommandQueue()
	if err != nil {
		t.Fatalf("MakeCommandQueue: %v", err)
	}
	cb, err := q.MakeCommandBuffer()
	if err != nil {
		t.Fatalf("MakeCommandBuffer: %v", err)
	}
	enc, err := cb.MakeRenderCommandEncoder(desc)
	if err != nil {
		t.Fatalf("MakeRenderCommandEncoder: %v", err)
	}
	if fn != nil {
		fn(enc)
	}
	if err := enc.EndEncoding(); err != nil {
		t.Fatalf("EndEncoding: %v", err)
	}
	if err := cb.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if err := cb.Wait(testContext(t)); err != nil {
		t.Fatalf("Wait: %v", err)
	}
}
