// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gpucore defines the backend-neutral GPU object model used by the
// ink render target.
//
// The model follows the command-buffer style of modern GPU APIs:
//
//	Device
//	  +-- MakeTexture / MakeBuffer / MakeRenderPipeline
//	  +-- MakeCommandQueue
//	        +-- MakeCommandBuffer
//	              +-- MakeRenderCommandEncoder(RenderPassDescriptor)
//	              |     +-- SetRenderPipeline / Set*Bytes / Set*Buffer
//	              |     +-- DrawPrimitives
//	              |     +-- EndEncoding
//	              +-- Commit
//	              +-- Wait
//
// Two implementations ship with ink:
//   - backend/software: a pure Go device that rasterizes on the CPU.
//   - backend/wgpu: a device on top of gogpu/wgpu HAL (Vulkan, Metal, ...).
//
// # Wire Layouts
//
// Geometry reaches the device as raw little-endian bytes, the same way it
// reaches a real GPU. The layouts are fixed:
//
//	Vertex  (24 bytes): position vec4<f32>, texCoord vec2<f32>
//	Point   (36 bytes): position vec4<f32>, color vec4<f32>, size f32
//	Color   (16 bytes): color vec4<f32>
//	Uniform (64 bytes): mat4x4<f32>, row-major, translation at 12..14
//
// Geometry is bound at vertex index [VertexIndex], the uniform matrix at
// vertex index [UniformIndex], the color at fragment index 0 and an
// optional brush texture at fragment texture index 0.
//
// # Thread Safety
//
// Devices and queues are safe for concurrent use. Command buffers and
// encoders are not: they are recorded by a single goroutine.
package gpucore
