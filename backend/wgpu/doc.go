// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package wgpu implements gpucore.Device on top of the gogpu/wgpu HAL.
//
// The device runs on Vulkan by default (Metal through MoltenVK on macOS)
// and can wrap a device owned by a host application:
//
//	dev, err := wgpu.Open()                      // standalone Vulkan device
//	dev, err := wgpu.NewFromProvider(provider)   // share a gogpu window's device
//	dev, err := wgpu.NewFromHAL(halDev, halQueue) // any hal.Device
//
// Importing the package registers the "wgpu" factory with the backend
// registry.
//
// # Execution Model
//
// Render passes are recorded on the CPU and encoded into a single HAL
// command buffer when the gpucore command buffer is committed. Each commit
// uploads one transient vertex buffer and one uniform buffer holding a
// 256-byte aligned block per draw:
//
//	transform mat4x4<f32> | tint vec4<f32> | viewport vec4<f32>
//
// Points are expanded on the CPU into quads and shaded as discs in
// point.wgsl. Vertex geometry bound from a Buffer is drawn straight from
// that buffer without a copy. Textured triangles sample the brush with a
// nearest filter and multiply by the tint (vertex.wgsl); without a brush a
// 1x1 white texture is bound.
//
// Completion is tracked with HAL submission indices. Transient resources
// are freed, and released textures and buffers destroyed, once the queue
// reports the submission that last used them as completed.
//
// # Pipeline Cache
//
// HAL pipelines are created on demand and kept in an LRU cache keyed by
// vertex layout, topology and color format. Evicted pipelines are
// destroyed after the work submitted before the eviction completes.
//
// # Limitations
//
// A pass cannot sample its own attachment as a brush.
package wgpu
