// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package ink

import (
	"fmt"

	"github.com/gogpu/ink/gpucore"
)

// TargetFormat is the pixel format of every render target texture.
const TargetFormat = gpucore.TextureFormatRGBA8Unorm

// targetUsage is the usage of every render target texture.
const targetUsage = gpucore.TextureUsageRenderTarget |
	gpucore.TextureUsageShaderRead |
	gpucore.TextureUsageCopySrc

// CommandState is the per-frame command buffer state of a RenderTarget.
type CommandState int

const (
	// CommandStateNoBuffer means no command buffer is open.
	CommandStateNoBuffer CommandState = iota

	// CommandStateBufferOpen means PrepareForDraw opened a command buffer
	// that has not been committed yet.
	CommandStateBufferOpen
)

// String returns the string representation of CommandState.
func (s CommandState) String() string {
	switch s {
	case CommandStateNoBuffer:
		return "NoBuffer"
	case CommandStateBufferOpen:
		return "BufferOpen"
	default:
		return fmt.Sprintf("CommandState(%d)", int(s))
	}
}

// LifecycleState is the lifecycle state of a RenderTarget.
type LifecycleState int

const (
	// LifecycleReady means a texture is bound and encoders can be created.
	LifecycleReady LifecycleState = iota

	// LifecycleDegenerate means no texture could be allocated, either
	// because the size is not positive or because there is no device.
	LifecycleDegenerate

	// LifecycleDisposed means Dispose has been called.
	LifecycleDisposed
)

// String returns the string representation of LifecycleState.
func (s LifecycleState) String() string {
	switch s {
	case LifecycleReady:
		return "Ready"
	case LifecycleDegenerate:
		return "Degenerate"
	case LifecycleDisposed:
		return "Disposed"
	default:
		return fmt.Sprintf("LifecycleState(%d)", int(s))
	}
}

// RenderTarget is a persistent texture that accumulates draws.
//
// The render pass descriptor of a target always loads and stores its
// color attachment, so nothing is erased between frames unless Clear is
// called. The attachment texture and Texture() are the same object
// whenever an encoder can be created.
//
// A RenderTarget is not safe for concurrent use.
type RenderTarget struct {
	// Scale is the view scale factor: pixels per view point.
	Scale float64

	// Zoom scales the texture when presented, without touching its contents.
	Zoom float64

	// ContentOffset is the offset of the zoomed texture in view pixels.
	ContentOffset Vec2

	label  string
	device gpucore.Device
	queue  gpucore.CommandQueue

	width, height int
	transform     Matrix4
	uniforms      gpucore.Buffer

	texture    gpucore.Texture
	descriptor *gpucore.RenderPassDescriptor

	// cmdBuf is the open command buffer, nil in CommandStateNoBuffer.
	cmdBuf gpucore.CommandBuffer

	// needsClear makes the next encoder clear a freshly allocated texture.
	needsClear bool

	err      error
	disposed bool
}

// NewRenderTarget creates a render target of the given pixel size on
// device. It never fails: a degenerate size or a nil device leave the
// target without a texture, which Err reports and MakeEncoder refuses.
func NewRenderTarget(width, height int, device gpucore.Device, opts ...TargetOption) *RenderTarget {
	o := defaultTargetOptions()
	for _, opt := range opts {
		opt(&o)
	}

	rt := &RenderTarget{
		Scale:         o.scale,
		Zoom:          o.zoom,
		ContentOffset: o.contentOffset,
		label:         o.label,
		device:        device,
		width:         width,
		height:        height,
	}

	if device != nil {
		q, err := device.MakeCommandQueue()
		if err != nil {
			Logger().Warn("ink: command queue creation failed", "target", rt.label, "err", err)
		} else {
			rt.queue = q
		}
	}

	rt.texture = rt.makeEmptyTexture()
	rt.descriptor = &gpucore.RenderPassDescriptor{Label: rt.label}
	rt.descriptor.ColorAttachments[0] = gpucore.ColorAttachment{
		Texture:     rt.texture,
		LoadAction:  gpucore.LoadActionLoad,
		StoreAction: gpucore.StoreActionStore,
	}
	rt.updateBuffer(width, height)
	return rt
}

// makeEmptyTexture allocates a texture of the current size and records
// why when it cannot. The returned texture starts cleared on first use.
func (rt *RenderTarget) makeEmptyTexture() gpucore.Texture {
	rt.needsClear = false
	if rt.width <= 0 || rt.height <= 0 {
		rt.err = fmt.Errorf("%w: %dx%d", ErrDegenerateSize, rt.width, rt.height)
		Logger().Debug("ink: degenerate render target", "target", rt.label,
			"width", rt.width, "height", rt.height)
		return nil
	}
	if rt.device == nil {
		rt.err = ErrNoDevice
		return nil
	}

	tex, err := rt.device.MakeTexture(&gpucore.TextureDescriptor{
		Label:  rt.label,
		Width:  rt.width,
		Height: rt.height,
		Format: TargetFormat,
		Usage:  targetUsage,
	})
	if err != nil {
		rt.err = fmt.Errorf("ink: allocate texture: %w", err)
		Logger().Warn("ink: texture allocation failed", "target", rt.label, "err", err)
		return nil
	}

	rt.err = nil
	rt.needsClear = true
	Logger().Debug("ink: texture allocated", "target", rt.label,
		"width", rt.width, "height", rt.height)
	return tex
}

// updateBuffer recomputes the pixel to clip transform for a drawable of
// the given size and uploads it into a new uniform buffer.
func (rt *RenderTarget) updateBuffer(width, height int) {
	rt.width = width
	rt.height = height
	rt.transform = PixelToClip(float32(width), float32(height))

	if rt.uniforms != nil {
		rt.uniforms.Release()
		rt.uniforms = nil
	}
	if rt.device == nil {
		return
	}
	buf, err := rt.device.MakeBuffer(rt.transform.Bytes(), gpucore.BufferUsageUniform)
	if err != nil {
		Logger().Warn("ink: uniform buffer allocation failed", "target", rt.label, "err", err)
		return
	}
	rt.uniforms = buf
}

// replaceTexture swaps in a freshly allocated texture and mirrors it into
// the render pass descriptor.
func (rt *RenderTarget) replaceTexture() {
	old := rt.texture
	rt.texture = rt.makeEmptyTexture()
	rt.descriptor.ColorAttachments[0].Texture = rt.texture
	if old != nil {
		old.Release()
	}
}

// Clear discards the current texture and binds a fresh transparent one of
// the same size. Without Clear, old content persists indefinitely.
func (rt *RenderTarget) Clear() {
	if rt.disposed {
		return
	}
	rt.replaceTexture()
}

// Resize recomputes the pixel to clip transform for a new drawable size.
// The texture is not reallocated; use ResizeTexture for that.
func (rt *RenderTarget) Resize(width, height int) {
	if rt.disposed {
		return
	}
	rt.updateBuffer(width, height)
}

// ResizeTexture recomputes the transform and replaces the texture with a
// blank one of the new size.
func (rt *RenderTarget) ResizeTexture(width, height int) {
	if rt.disposed {
		return
	}
	rt.updateBuffer(width, height)
	rt.replaceTexture()
}

// PrepareForDraw opens a command buffer if none is open. Calling it again
// before Commit keeps the same buffer.
func (rt *RenderTarget) PrepareForDraw() {
	if rt.disposed || rt.cmdBuf != nil || rt.queue == nil {
		return
	}
	cb, err := rt.queue.MakeCommandBuffer()
	if err != nil {
		Logger().Warn("ink: command buffer creation failed", "target", rt.label, "err", err)
		return
	}
	rt.cmdBuf = cb
}

// MakeEncoder starts a render pass on the open command buffer against the
// current descriptor. Encoders on one buffer must be ended before the next
// one is made.
//
// The first encoder after a fresh texture allocation clears it to
// transparent black; every later encoder loads the existing contents.
func (rt *RenderTarget) MakeEncoder() (gpucore.RenderCommandEncoder, error) {
	if rt.disposed {
		return nil, ErrDisposed
	}
	if rt.cmdBuf == nil {
		return nil, ErrNoOpenCommandBuffer
	}
	if rt.descriptor.ColorAttachments[0].Texture == nil {
		if rt.err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNoBoundTexture, rt.err)
		}
		return nil, ErrNoBoundTexture
	}

	desc := rt.descriptor
	if rt.needsClear {
		pass := *rt.descriptor
		pass.ColorAttachments[0].LoadAction = gpucore.LoadActionClear
		pass.ColorAttachments[0].ClearColor = gpucore.TransparentBlack
		desc = &pass
	}

	enc, err := rt.cmdBuf.MakeRenderCommandEncoder(desc)
	if err != nil {
		return nil, fmt.Errorf("ink: make encoder: %w", err)
	}
	rt.needsClear = false
	return enc, nil
}

// Commit submits the open command buffer and forgets it. It returns the
// submitted buffer so callers can wait for completion. It returns nil when
// no buffer was open or when the device refused the buffer, for example
// because an encoder was not ended. A refused buffer is discarded along
// with its draws and the failure is logged.
func (rt *RenderTarget) Commit() gpucore.CommandBuffer {
	if rt.cmdBuf == nil {
		return nil
	}

	// A texture allocated but never encoded still has to read back blank.
	if rt.needsClear && rt.texture != nil {
		if enc, err := rt.MakeEncoder(); err == nil {
			if err := enc.EndEncoding(); err != nil {
				Logger().Warn("ink: clear pass failed", "target", rt.label, "err", err)
			}
		}
	}

	cb := rt.cmdBuf
	rt.cmdBuf = nil
	if err := cb.Commit(); err != nil {
		Logger().Warn("ink: commit failed", "target", rt.label, "err", err)
		return nil
	}
	return cb
}

// Dispose releases the texture and uniform buffer. An open command buffer
// is committed first so that already encoded draws are not lost.
func (rt *RenderTarget) Dispose() {
	if rt.disposed {
		return
	}
	rt.Commit()
	rt.disposed = true

	if rt.texture != nil {
		rt.texture.Release()
		rt.texture = nil
	}
	rt.descriptor.ColorAttachments[0].Texture = nil
	if rt.uniforms != nil {
		rt.uniforms.Release()
		rt.uniforms = nil
	}
	rt.err = ErrDisposed
}

// Texture returns the current texture, or nil if none is allocated.
func (rt *RenderTarget) Texture() gpucore.Texture {
	return rt.texture
}

// Descriptor returns the render pass descriptor. Its load action is
// always LoadActionLoad and its store action StoreActionStore.
func (rt *RenderTarget) Descriptor() *gpucore.RenderPassDescriptor {
	return rt.descriptor
}

// UniformBuffer returns the buffer holding the current transform, or nil
// without a device.
func (rt *RenderTarget) UniformBuffer() gpucore.Buffer {
	return rt.uniforms
}

// Transform returns the current pixel to clip transform.
func (rt *RenderTarget) Transform() Matrix4 {
	return rt.transform
}

// Size returns the drawable size in pixels.
func (rt *RenderTarget) Size() (width, height int) {
	return rt.width, rt.height
}

// CommandBuffer returns the open command buffer, or nil.
func (rt *RenderTarget) CommandBuffer() gpucore.CommandBuffer {
	return rt.cmdBuf
}

// Device returns the device the target was created on.
func (rt *RenderTarget) Device() gpucore.Device {
	return rt.device
}

// Label returns the debug label.
func (rt *RenderTarget) Label() string {
	return rt.label
}

// Err reports why the target has no texture, or nil if it has one.
func (rt *RenderTarget) Err() error {
	return rt.err
}

// State returns the per-frame command buffer state.
func (rt *RenderTarget) State() CommandState {
	if rt.cmdBuf != nil {
		return CommandStateBufferOpen
	}
	return CommandStateNoBuffer
}

// Lifecycle returns the lifecycle state.
func (rt *RenderTarget) Lifecycle() LifecycleState {
	switch {
	case rt.disposed:
		return LifecycleDisposed
	case rt.texture == nil:
		return LifecycleDegenerate
	default:
		return LifecycleReady
	}
}
