// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpucore

import (
	"context"
	"image"
)

// Device is a handle to a GPU (or a CPU stand-in) that allocates resources.
//
// Resource lifecycle:
//   - Resources are created via Make* methods
//   - Resources are released via their Release method
//   - Releasing a resource still referenced by an uncompleted command
//     buffer is allowed; the backend keeps it alive until execution ends
type Device interface {
	// Name returns a human readable device name.
	Name() string

	// MakeTexture allocates a texture. The contents of a new texture are
	// backend defined; use LoadActionClear to get a known state.
	MakeTexture(desc *TextureDescriptor) (Texture, error)

	// MakeBuffer allocates a buffer initialised with a copy of data.
	MakeBuffer(data []byte, usage BufferUsage) (Buffer, error)

	// MakeRenderPipeline creates a pipeline for the given vertex layout.
	MakeRenderPipeline(desc *RenderPipelineDescriptor) (RenderPipeline, error)

	// MakeCommandQueue creates a queue. Buffers committed to one queue
	// execute in commit order.
	MakeCommandQueue() (CommandQueue, error)

	// ReadPixels copies a texture into a new image after all work
	// committed before the call has completed.
	ReadPixels(ctx context.Context, tex Texture) (*image.RGBA, error)
}

// CommandQueue creates command buffers.
type CommandQueue interface {
	// MakeCommandBuffer returns a new buffer in the NotEnqueued state.
	MakeCommandBuffer() (CommandBuffer, error)

	// WaitIdle blocks until every committed buffer has completed.
	WaitIdle(ctx context.Context) error
}

// CommandBuffer records render passes and submits them for execution.
type CommandBuffer interface {
	// MakeRenderCommandEncoder starts a render pass. Only one encoder may
	// be open at a time; a second call before EndEncoding fails with
	// ErrEncoderActive.
	MakeRenderCommandEncoder(desc *RenderPassDescriptor) (RenderCommandEncoder, error)

	// Commit hands the buffer to its queue and returns immediately.
	Commit() error

	// Wait blocks until the buffer completes or ctx is done.
	Wait(ctx context.Context) error

	// Status returns the current execution state.
	Status() CommandBufferStatus

	// Err returns the execution error once Status is CommandBufferStatusError.
	Err() error
}

// RenderCommandEncoder records draw commands for one render pass.
//
// Setters never fail directly. The first invalid call is remembered and
// reported by EndEncoding; the pass is still ended in that case.
type RenderCommandEncoder interface {
	// SetRenderPipeline selects the pipeline for subsequent draws.
	SetRenderPipeline(p RenderPipeline)

	// SetVertexBytes binds a copy of data at a vertex index.
	SetVertexBytes(data []byte, index int)

	// SetVertexBuffer binds a buffer range starting at offset.
	SetVertexBuffer(buf Buffer, offset, index int)

	// SetFragmentBytes binds a copy of data at a fragment index.
	SetFragmentBytes(data []byte, index int)

	// SetFragmentTexture binds a texture at a fragment index. A nil
	// texture unbinds.
	SetFragmentTexture(tex Texture, index int)

	// DrawPrimitives draws count records starting at start from the
	// geometry bound at VertexIndex.
	DrawPrimitives(kind PrimitiveType, start, count int)

	// EndEncoding ends the pass.
	EndEncoding() error
}

// Texture is a 2D image resource.
type Texture interface {
	Label() string
	Width() int
	Height() int
	Format() TextureFormat
	Usage() TextureUsage

	// Release frees the texture once no command buffer references it.
	Release()
}

// TextureUploader is implemented by textures whose pixels can be written
// from the CPU. Brush images are provided this way. The image is copied
// as premultiplied RGBA and clipped to the texture bounds.
type TextureUploader interface {
	Upload(img image.Image) error
}

// Buffer is a linear memory resource.
type Buffer interface {
	// Len returns the buffer size in bytes.
	Len() int

	// Contents returns a copy of the buffer data as last written by the CPU.
	Contents() []byte

	// Release frees the buffer once no command buffer references it.
	Release()
}

// RenderPipeline is a compiled pipeline state.
type RenderPipeline interface {
	Label() string
	Layout() VertexLayout
	ColorFormat() TextureFormat
}
