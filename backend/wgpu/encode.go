// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/ink/backend"
	"github.com/gogpu/ink/gpucore"
)

// pointCorners are the quad corners each point expands to, as two
// triangles.
var pointCorners = [6][2]float32{
	{-1, -1}, {1, -1}, {-1, 1},
	{1, -1}, {1, 1}, {-1, 1},
}

// frame holds the HAL objects of one submission. They are destroyed when
// the submission completes.
type frame struct {
	encoder  hal.CommandEncoder
	cmd      hal.CommandBuffer
	vertices hal.Buffer
	uniforms hal.Buffer
	groups   []hal.BindGroup
}

func (f *frame) destroy(device hal.Device) {
	for _, g := range f.groups {
		device.DestroyBindGroup(g)
	}
	f.groups = nil
	if f.cmd != nil {
		device.FreeCommandBuffer(f.cmd)
		f.cmd = nil
	}
	if f.encoder != nil {
		f.encoder.Destroy()
		f.encoder = nil
	}
	if f.vertices != nil {
		device.DestroyBuffer(f.vertices)
		f.vertices = nil
	}
	if f.uniforms != nil {
		device.DestroyBuffer(f.uniforms)
		f.uniforms = nil
	}
}

// packedDraw locates one draw in the frame buffers.
type packedDraw struct {
	dc *drawCall

	// vertices is the number of HAL vertices to draw. Zero skips the draw.
	vertices uint32

	// vbuf is nil when the vertices live in the frame vertex buffer.
	vbuf    hal.Buffer
	voffset uint64
	uoffset uint64
}

// pack lays out the vertex and uniform data of every draw.
func pack(passes []*renderPass) (draws [][]packedDraw, vertices, uniforms []byte) {
	draws = make([][]packedDraw, len(passes))
	for i, p := range passes {
		draws[i] = make([]packedDraw, 0, len(p.draws))
		for j := range p.draws {
			dc := &p.draws[j]
			pd := packedDraw{dc: dc, uoffset: uint64(len(uniforms))}
			uniforms = append(uniforms, dc.uniforms[:]...)
			uniforms = append(uniforms, make([]byte, uniformAlign-uniformBlockSize)...)

			switch {
			case dc.kind == gpucore.PrimitiveTypePoint:
				pd.voffset = uint64(len(vertices))
				before := len(vertices)
				vertices = expandPoints(vertices, dc.geometry, dc.count)
				pd.vertices = uint32((len(vertices) - before) / pointVertexStride)
			case dc.buf != nil:
				pd.vbuf = dc.buf.buf
				pd.voffset = uint64(dc.offset)
				pd.vertices = uint32(dc.count)
			default:
				pd.voffset = uint64(len(vertices))
				vertices = append(vertices, dc.geometry...)
				pd.vertices = uint32(dc.count)
			}
			draws[i] = append(draws[i], pd)
		}
	}
	return draws, vertices, uniforms
}

// expandPoints appends six corner vertices per visible point. Points with a
// non-positive size, zero alpha or a non-finite field are dropped.
// Off-screen and oversized points are kept for the rasterizer to clip.
func expandPoints(dst, geometry []byte, count int) []byte {
	var corner [pointVertexStride]byte
	for i := 0; i < count; i++ {
		p := gpucore.DecodePoint(geometry[i*gpucore.PointStride:])
		if !(p.Size > 0) || !(p.Color[3] > 0) || !finitePoint(p) {
			continue
		}
		for _, c := range pointCorners {
			off := gpucore.PutFloat32s(corner[:], p.Position[:]...)
			off += gpucore.PutFloat32s(corner[off:], p.Color[:]...)
			gpucore.PutFloat32s(corner[off:], c[0], c[1], p.Size)
			dst = append(dst, corner[:]...)
		}
	}
	return dst
}

func finitePoint(p gpucore.PointRecord) bool {
	if !finite(p.Size) {
		return false
	}
	for i := range p.Position {
		if !finite(p.Position[i]) || !finite(p.Color[i]) {
			return false
		}
	}
	return true
}

func finite(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// submit encodes the passes of cb into one HAL command buffer and submits
// it. On failure cb completes with the error.
func (d *Device) submit(cb *CommandBuffer) error {
	cb.mu.Lock()
	passes := cb.passes
	cb.mu.Unlock()

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		cb.complete(d.device, ErrClosed)
		return ErrClosed
	}

	if len(passes) == 0 {
		// Nothing to run. It completes after the work submitted before it.
		cb.index = d.lastSubmit
		d.inflight = append(d.inflight, cb)
		d.pollLocked()
		return nil
	}

	f := &frame{}
	idx, err := d.encodeLocked(f, passes)
	if err != nil {
		cb.frame = f
		cb.complete(d.device, err)
		return err
	}
	cb.index = idx
	cb.frame = f
	d.lastSubmit = idx
	d.inflight = append(d.inflight, cb)
	d.pollLocked()
	return nil
}

// encodeLocked records passes into f and submits them. f owns every HAL
// object created along the way, including on failure.
func (d *Device) encodeLocked(f *frame, passes []*renderPass) (uint64, error) {
	if err := d.ensureSharedLocked(); err != nil {
		return 0, err
	}

	draws, vertices, uniforms := pack(passes)
	var err error
	if len(vertices) > 0 {
		if f.vertices, err = d.uploadLocked("ink_frame_vertices", vertices, gputypes.BufferUsageVertex); err != nil {
			return 0, err
		}
	}
	if len(uniforms) > 0 {
		if f.uniforms, err = d.uploadLocked("ink_frame_uniforms", uniforms, gputypes.BufferUsageUniform); err != nil {
			return 0, err
		}
	}

	f.encoder, err = d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "ink_frame"})
	if err != nil {
		return 0, fmt.Errorf("wgpu: create command encoder: %w", err)
	}
	if err := f.encoder.BeginEncoding("ink_frame"); err != nil {
		return 0, fmt.Errorf("wgpu: begin encoding: %w", err)
	}

	for i, p := range passes {
		if err := d.encodePassLocked(f, p, draws[i]); err != nil {
			f.encoder.DiscardEncoding()
			return 0, err
		}
	}

	f.cmd, err = f.encoder.EndEncoding()
	if err != nil {
		return 0, fmt.Errorf("wgpu: end encoding: %w", err)
	}

	d.queue.SetSwapchainSuppressed(true)
	idx, err := d.queue.Submit([]hal.CommandBuffer{f.cmd})
	d.queue.SetSwapchainSuppressed(false)
	if err != nil {
		return 0, fmt.Errorf("wgpu: submit: %w", err)
	}
	backend.Logger().Debug("wgpu: submitted", "index", idx, "passes", len(passes))
	return idx, nil
}

// encodePassLocked records one render pass.
func (d *Device) encodePassLocked(f *frame, p *renderPass, draws []packedDraw) error {
	s := d.shared

	// Bind groups and barriers are set up before the pass begins.
	groups := make([]hal.BindGroup, len(draws))
	for i, pd := range draws {
		if pd.vertices == 0 {
			continue
		}
		entries := []gputypes.BindGroupEntry{{
			Binding: 0,
			Resource: gputypes.BufferBinding{
				Buffer: f.uniforms.NativeHandle(),
				Offset: pd.uoffset,
				Size:   uniformBlockSize,
			},
		}}
		layout := s.pointGroupLayout
		if pd.dc.kind != gpucore.PrimitiveTypePoint {
			layout = s.vertexGroupLayout
			view := s.whiteView
			if b := pd.dc.brush; b != nil {
				d.transitionLocked(f.encoder, b.tex, &b.state, gputypes.TextureUsageTextureBinding)
				view = b.view
			} else {
				d.transitionLocked(f.encoder, s.white, &s.whiteState, gputypes.TextureUsageTextureBinding)
			}
			entries = append(entries,
				gputypes.BindGroupEntry{Binding: 1, Resource: gputypes.TextureViewBinding{TextureView: view.NativeHandle()}},
				gputypes.BindGroupEntry{Binding: 2, Resource: gputypes.SamplerBinding{Sampler: s.sampler.NativeHandle()}},
			)
		}
		g, err := d.device.CreateBindGroup(&hal.BindGroupDescriptor{
			Label:   "ink_draw_group",
			Layout:  layout,
			Entries: entries,
		})
		if err != nil {
			return fmt.Errorf("wgpu: create bind group for pass %q: %w", p.label, err)
		}
		f.groups = append(f.groups, g)
		groups[i] = g
	}

	t := p.target
	d.transitionLocked(f.encoder, t.tex, &t.state, gputypes.TextureUsageRenderAttachment)

	att := hal.RenderPassColorAttachment{
		View:    t.view,
		LoadOp:  gputypes.LoadOpLoad,
		StoreOp: gputypes.StoreOpStore,
	}
	if p.load == gpucore.LoadActionClear {
		att.LoadOp = gputypes.LoadOpClear
		att.ClearValue = premultipliedClear(p.clear)
	}
	if p.store == gpucore.StoreActionDontCare {
		att.StoreOp = gputypes.StoreOpDiscard
	}

	rp := f.encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label:            p.label,
		ColorAttachments: []hal.RenderPassColorAttachment{att},
	})
	for i, pd := range draws {
		if pd.vertices == 0 {
			continue
		}
		pipeline, err := d.pipelineLocked(keyFor(pd.dc.kind, t.format))
		if err != nil {
			rp.End()
			return err
		}
		vbuf := pd.vbuf
		if vbuf == nil {
			vbuf = f.vertices
		}
		rp.SetPipeline(pipeline)
		rp.SetBindGroup(0, groups[i], nil)
		rp.SetVertexBuffer(0, vbuf, pd.voffset)
		rp.Draw(pd.vertices, 1, 0, 0)
	}
	rp.End()
	return nil
}

// transitionLocked records a barrier moving tex from *state to usage.
func (d *Device) transitionLocked(enc hal.CommandEncoder, tex hal.Texture, state *gputypes.TextureUsage, usage gputypes.TextureUsage) {
	if *state == usage {
		return
	}
	enc.TransitionTextures([]hal.TextureBarrier{{
		Texture: tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: *state,
			NewUsage: usage,
		},
	}})
	*state = usage
}

// premultipliedClear converts a straight-alpha clear color to the
// premultiplied value the attachment stores.
func premultipliedClear(c gpucore.ClearColor) gputypes.Color {
	a := clampUnit(c.A)
	return gputypes.Color{R: clampUnit(c.R) * a, G: clampUnit(c.G) * a, B: clampUnit(c.B) * a, A: a}
}

func clampUnit(v float64) float64 {
	switch {
	case v > 1:
		return 1
	case v > 0:
		return v
	default:
		return 0
	}
}
