// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpucore

import "fmt"

// TextureFormat specifies the format of texture data.
type TextureFormat uint32

// Texture formats.
const (
	// TextureFormatUndefined is the zero value.
	TextureFormatUndefined TextureFormat = iota

	// TextureFormatRGBA8Unorm is 8-bit RGBA, normalized unsigned integer.
	TextureFormatRGBA8Unorm

	// TextureFormatBGRA8Unorm is 8-bit BGRA, normalized unsigned integer.
	TextureFormatBGRA8Unorm
)

// String returns the string representation of TextureFormat.
func (f TextureFormat) String() string {
	switch f {
	case TextureFormatUndefined:
		return "Undefined"
	case TextureFormatRGBA8Unorm:
		return "RGBA8Unorm"
	case TextureFormatBGRA8Unorm:
		return "BGRA8Unorm"
	default:
		return fmt.Sprintf("TextureFormat(%d)", int(f))
	}
}

// BytesPerPixel returns the size of one texel, or 0 for unknown formats.
func (f TextureFormat) BytesPerPixel() int {
	switch f {
	case TextureFormatRGBA8Unorm, TextureFormatBGRA8Unorm:
		return 4
	default:
		return 0
	}
}

// TextureUsage is a bitmask specifying how a texture will be used.
type TextureUsage uint32

// Texture usage flags.
const (
	// TextureUsageCopySrc indicates the texture can be used as a copy source.
	TextureUsageCopySrc TextureUsage = 1 << iota

	// TextureUsageCopyDst indicates the texture can be used as a copy destination.
	TextureUsageCopyDst

	// TextureUsageShaderRead indicates the texture can be sampled by shaders.
	TextureUsageShaderRead

	// TextureUsageRenderTarget indicates the texture can be a color attachment.
	TextureUsageRenderTarget
)

// Has reports whether all bits of flag are set.
func (u TextureUsage) Has(flag TextureUsage) bool {
	return u&flag == flag
}

// BufferUsage is a bitmask specifying how a buffer will be used.
type BufferUsage uint32

// Buffer usage flags.
const (
	// BufferUsageVertex indicates the buffer holds vertex data.
	BufferUsageVertex BufferUsage = 1 << iota

	// BufferUsageUniform indicates the buffer holds uniform data.
	BufferUsageUniform

	// BufferUsageCopySrc indicates the buffer can be used as a copy source.
	BufferUsageCopySrc

	// BufferUsageCopyDst indicates the buffer can be used as a copy destination.
	BufferUsageCopyDst
)

// LoadAction selects what happens to an attachment when a pass begins.
type LoadAction int

const (
	// LoadActionDontCare leaves the attachment contents undefined.
	LoadActionDontCare LoadAction = iota

	// LoadActionLoad preserves the existing contents.
	LoadActionLoad

	// LoadActionClear fills the attachment with the clear color.
	LoadActionClear
)

// String returns the string representation of LoadAction.
func (a LoadAction) String() string {
	switch a {
	case LoadActionDontCare:
		return "DontCare"
	case LoadActionLoad:
		return "Load"
	case LoadActionClear:
		return "Clear"
	default:
		return fmt.Sprintf("LoadAction(%d)", int(a))
	}
}

// StoreAction selects what happens to an attachment when a pass ends.
type StoreAction int

const (
	// StoreActionDontCare allows the results to be discarded.
	StoreActionDontCare StoreAction = iota

	// StoreActionStore writes the results back to the texture.
	StoreActionStore
)

// String returns the string representation of StoreAction.
func (a StoreAction) String() string {
	switch a {
	case StoreActionDontCare:
		return "DontCare"
	case StoreActionStore:
		return "Store"
	default:
		return fmt.Sprintf("StoreAction(%d)", int(a))
	}
}

// PrimitiveType is the topology used by DrawPrimitives.
type PrimitiveType int

const (
	// PrimitiveTypePoint draws one round point sprite per Point record.
	PrimitiveTypePoint PrimitiveType = iota

	// PrimitiveTypeTriangle draws every three vertices as a triangle.
	PrimitiveTypeTriangle

	// PrimitiveTypeTriangleStrip draws a strip where each new vertex
	// forms a triangle with the previous two.
	PrimitiveTypeTriangleStrip
)

// String returns the string representation of PrimitiveType.
func (p PrimitiveType) String() string {
	switch p {
	case PrimitiveTypePoint:
		return "Point"
	case PrimitiveTypeTriangle:
		return "Triangle"
	case PrimitiveTypeTriangleStrip:
		return "TriangleStrip"
	default:
		return fmt.Sprintf("PrimitiveType(%d)", int(p))
	}
}

// VertexLayout selects which wire layout a pipeline consumes.
type VertexLayout int

const (
	// VertexLayoutVertex consumes Vertex records (textured quads).
	VertexLayoutVertex VertexLayout = iota

	// VertexLayoutPoint consumes Point records (round brush dots).
	VertexLayoutPoint
)

// String returns the string representation of VertexLayout.
func (l VertexLayout) String() string {
	switch l {
	case VertexLayoutVertex:
		return "Vertex"
	case VertexLayoutPoint:
		return "Point"
	default:
		return fmt.Sprintf("VertexLayout(%d)", int(l))
	}
}

// Stride returns the byte size of one record in this layout, or 0 for an
// unknown layout.
func (l VertexLayout) Stride() int {
	switch l {
	case VertexLayoutVertex:
		return VertexStride
	case VertexLayoutPoint:
		return PointStride
	default:
		return 0
	}
}

// CommandBufferStatus is the execution state of a command buffer.
type CommandBufferStatus int

const (
	// CommandBufferStatusNotEnqueued means the buffer is still recording.
	CommandBufferStatusNotEnqueued CommandBufferStatus = iota

	// CommandBufferStatusCommitted means the buffer was handed to the queue.
	CommandBufferStatusCommitted

	// CommandBufferStatusCompleted means execution finished.
	CommandBufferStatusCompleted

	// CommandBufferStatusError means execution failed; see CommandBuffer.Err.
	CommandBufferStatusError
)

// String returns the string representation of CommandBufferStatus.
func (s CommandBufferStatus) String() string {
	switch s {
	case CommandBufferStatusNotEnqueued:
		return "NotEnqueued"
	case CommandBufferStatusCommitted:
		return "Committed"
	case CommandBufferStatusCompleted:
		return "Completed"
	case CommandBufferStatusError:
		return "Error"
	default:
		return fmt.Sprintf("CommandBufferStatus(%d)", int(s))
	}
}

// ClearColor is the RGBA value written by LoadActionClear.
type ClearColor struct {
	R, G, B, A float64
}

// TransparentBlack is the clear color of a fresh canvas.
var TransparentBlack = ClearColor{}
