// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	_ "embed"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/ink/backend"
	"github.com/gogpu/ink/gpucore"
)

//go:embed shaders/point.wgsl
var pointShaderSource string

//go:embed shaders/vertex.wgsl
var vertexShaderSource string

// pointVertexStride is the byte stride of an expanded point corner:
//
//	position (vec4<f32>) = 16 bytes (location 0)
//	color    (vec4<f32>) = 16 bytes (location 1)
//	corner   (vec2<f32>) =  8 bytes (location 2)
//	size     (f32)       =  4 bytes (location 3)
const pointVertexStride = 44

// uniformBlockSize is transform (64) + tint (16) + viewport (16).
const uniformBlockSize = 96

// uniformAlign is the offset alignment of per-draw uniform blocks.
const uniformAlign = 256

// pipelineKey identifies a HAL pipeline.
type pipelineKey struct {
	layout   gpucore.VertexLayout
	topology gputypes.PrimitiveTopology
	format   gpucore.TextureFormat
}

// keyFor returns the key of the pipeline that draws kind into format.
func keyFor(kind gpucore.PrimitiveType, format gpucore.TextureFormat) pipelineKey {
	switch kind {
	case gpucore.PrimitiveTypePoint:
		// Points are drawn as quads.
		return pipelineKey{gpucore.VertexLayoutPoint, gputypes.PrimitiveTopologyTriangleList, format}
	case gpucore.PrimitiveTypeTriangleStrip:
		return pipelineKey{gpucore.VertexLayoutVertex, gputypes.PrimitiveTopologyTriangleStrip, format}
	default:
		return pipelineKey{gpucore.VertexLayoutVertex, gputypes.PrimitiveTopologyTriangleList, format}
	}
}

// pipelineCache is an LRU of HAL pipelines. It is guarded by Device.mu.
type pipelineCache struct {
	cache *lru.Cache[pipelineKey, hal.RenderPipeline]
}

func newPipelineCache(size int, evict func(hal.RenderPipeline)) *pipelineCache {
	// NewWithEvict only fails for a non-positive size, which newConfig rules out.
	cache, _ := lru.NewWithEvict[pipelineKey, hal.RenderPipeline](size, func(_ pipelineKey, p hal.RenderPipeline) {
		evict(p)
	})
	return &pipelineCache{cache: cache}
}

func (c *pipelineCache) get(key pipelineKey) (hal.RenderPipeline, bool) {
	return c.cache.Get(key)
}

func (c *pipelineCache) add(key pipelineKey, p hal.RenderPipeline) {
	c.cache.Add(key, p)
}

func (c *pipelineCache) len() int {
	return c.cache.Len()
}

func (c *pipelineCache) purge() {
	c.cache.Purge()
}

// pipelineLocked returns the cached pipeline for key, creating it on a miss.
func (d *Device) pipelineLocked(key pipelineKey) (hal.RenderPipeline, error) {
	if p, ok := d.pipelines.get(key); ok {
		return p, nil
	}
	if err := d.ensureSharedLocked(); err != nil {
		return nil, err
	}
	p, err := d.createPipeline(key)
	if err != nil {
		return nil, err
	}
	d.pipelines.add(key, p)
	backend.Logger().Debug("wgpu: pipeline created",
		"layout", key.layout, "topology", key.topology, "format", key.format)
	return p, nil
}

func (d *Device) createPipeline(key pipelineKey) (hal.RenderPipeline, error) {
	format, err := halFormat(key.format)
	if err != nil {
		return nil, err
	}
	s := d.shared

	module, layout, buffers := s.vertexShader, s.vertexLayout, vertexBufferLayout()
	if key.layout == gpucore.VertexLayoutPoint {
		module, layout, buffers = s.pointShader, s.pointLayout, pointBufferLayout()
	}

	premulBlend := gputypes.BlendStatePremultiplied()
	p, err := d.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  fmt.Sprintf("ink_%v_pipeline", key.layout),
		Layout: layout,
		Vertex: hal.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
			Buffers:    buffers,
		},
		Fragment: &hal.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    format,
					Blend:     &premulBlend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: key.topology,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create %v pipeline: %w", key.layout, err)
	}
	return p, nil
}

func pointBufferLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: pointVertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x4, Offset: 0, ShaderLocation: 0},  // position
				{Format: gputypes.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 1}, // color
				{Format: gputypes.VertexFormatFloat32x2, Offset: 32, ShaderLocation: 2}, // corner
				{Format: gputypes.VertexFormatFloat32, Offset: 40, ShaderLocation: 3},   // size
			},
		},
	}
}

func vertexBufferLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: gpucore.VertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x4, Offset: 0, ShaderLocation: 0},  // position
				{Format: gputypes.VertexFormatFloat32x2, Offset: 16, ShaderLocation: 1}, // texCoord
			},
		},
	}
}

// sharedObjects are created once per device and used by every pipeline.
type sharedObjects struct {
	pointShader  hal.ShaderModule
	vertexShader hal.ShaderModule

	pointGroupLayout  hal.BindGroupLayout
	vertexGroupLayout hal.BindGroupLayout
	pointLayout       hal.PipelineLayout
	vertexLayout      hal.PipelineLayout

	sampler   hal.Sampler
	white     hal.Texture
	whiteView hal.TextureView

	// whiteState is the last usage of white, guarded by Device.mu.
	whiteState gputypes.TextureUsage
}

// ensureSharedLocked creates the shared objects on first use.
func (d *Device) ensureSharedLocked() error {
	if d.shared != nil {
		return nil
	}
	s := &sharedObjects{}
	if err := d.createShared(s); err != nil {
		s.destroy(d.device)
		return err
	}
	d.shared = s
	return nil
}

func (d *Device) createShared(s *sharedObjects) error { //nolint:funlen // one descriptor per object
	var err error
	s.pointShader, err = d.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "ink_point_shader",
		Source: hal.ShaderSource{WGSL: pointShaderSource},
	})
	if err != nil {
		return fmt.Errorf("wgpu: compile point shader: %w", err)
	}
	s.vertexShader, err = d.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "ink_vertex_shader",
		Source: hal.ShaderSource{WGSL: vertexShaderSource},
	})
	if err != nil {
		return fmt.Errorf("wgpu: compile vertex shader: %w", err)
	}

	uniformEntry := gputypes.BindGroupLayoutEntry{
		Binding:    0,
		Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
		Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
	}
	s.pointGroupLayout, err = d.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   "ink_point_group_layout",
		Entries: []gputypes.BindGroupLayoutEntry{uniformEntry},
	})
	if err != nil {
		return fmt.Errorf("wgpu: create point bind group layout: %w", err)
	}
	s.vertexGroupLayout, err = d.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "ink_vertex_group_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			uniformEntry,
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    2,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("wgpu: create vertex bind group layout: %w", err)
	}

	s.pointLayout, err = d.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "ink_point_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{s.pointGroupLayout},
	})
	if err != nil {
		return fmt.Errorf("wgpu: create point pipeline layout: %w", err)
	}
	s.vertexLayout, err = d.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "ink_vertex_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{s.vertexGroupLayout},
	})
	if err != nil {
		return fmt.Errorf("wgpu: create vertex pipeline layout: %w", err)
	}

	s.sampler, err = d.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "ink_brush_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeNearest,
		MinFilter:    gputypes.FilterModeNearest,
		MipmapFilter: gputypes.FilterModeNearest,
		LodMaxClamp:  32,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create sampler: %w", err)
	}

	// A 1x1 opaque white brush stands in when no brush is bound.
	s.white, err = d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "ink_white",
		Size:          hal.Extent3D{Width: 1, Height: 1, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create white texture: %w", err)
	}
	s.whiteView, err = d.device.CreateTextureView(s.white, &hal.TextureViewDescriptor{
		Label:     "ink_white_view",
		Format:    gputypes.TextureFormatRGBA8Unorm,
		Dimension: gputypes.TextureViewDimension2D,
		Aspect:    gputypes.TextureAspectAll,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create white texture view: %w", err)
	}
	err = d.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: s.white, Aspect: gputypes.TextureAspectAll},
		[]byte{0xFF, 0xFF, 0xFF, 0xFF},
		&hal.ImageDataLayout{BytesPerRow: 4, RowsPerImage: 1},
		&hal.Extent3D{Width: 1, Height: 1, DepthOrArrayLayers: 1},
	)
	if err != nil {
		return fmt.Errorf("wgpu: upload white texture: %w", err)
	}
	s.whiteState = gputypes.TextureUsageCopyDst
	return nil
}

// destroy releases the shared objects in reverse creation order.
func (s *sharedObjects) destroy(device hal.Device) {
	if s.whiteView != nil {
		device.DestroyTextureView(s.whiteView)
	}
	if s.white != nil {
		device.DestroyTexture(s.white)
	}
	if s.sampler != nil {
		device.DestroySampler(s.sampler)
	}
	if s.vertexLayout != nil {
		device.DestroyPipelineLayout(s.vertexLayout)
	}
	if s.pointLayout != nil {
		device.DestroyPipelineLayout(s.pointLayout)
	}
	if s.vertexGroupLayout != nil {
		device.DestroyBindGroupLayout(s.vertexGroupLayout)
	}
	if s.pointGroupLayout != nil {
		device.DestroyBindGroupLayout(s.pointGroupLayout)
	}
	if s.vertexShader != nil {
		device.DestroyShaderModule(s.vertexShader)
	}
	if s.pointShader != nil {
		device.DestroyShaderModule(s.pointShader)
	}
}
