// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"

	"github.com/gogpu/ink/gpucore"
)

// binding is a byte range bound at a vertex or fragment index. buf is set
// when the range comes from a Buffer, with offset its start in buf.
type binding struct {
	data   []byte
	buf    *Buffer
	offset int
}

// Encoder records draws into one render pass.
type Encoder struct {
	cb   *CommandBuffer
	pass *renderPass

	pipeline *Pipeline
	vertex   map[int]binding
	fragment map[int]binding
	textures map[int]*Texture

	err   error
	ended bool
}

func (e *Encoder) fail(err error) {
	if e.err == nil {
		e.err = err
	}
}

func (e *Encoder) usable() bool {
	if e.ended {
		e.fail(gpucore.ErrEncoderEnded)
		return false
	}
	return true
}

// SetRenderPipeline selects the pipeline for subsequent draws.
func (e *Encoder) SetRenderPipeline(p gpucore.RenderPipeline) {
	if !e.usable() {
		return
	}
	wp, ok := p.(*Pipeline)
	if !ok || wp == nil {
		e.fail(fmt.Errorf("%w: pipeline %T does not belong to the wgpu device", gpucore.ErrNoPipeline, p))
		return
	}
	e.pipeline = wp
}

// SetVertexBytes binds a copy of data at a vertex index.
func (e *Encoder) SetVertexBytes(data []byte, index int) {
	if !e.usable() {
		return
	}
	if err := gpucore.CheckIndex(index); err != nil {
		e.fail(err)
		return
	}
	e.vertex[index] = binding{data: append([]byte(nil), data...)}
}

// SetVertexBuffer binds buf starting at offset at a vertex index.
func (e *Encoder) SetVertexBuffer(buf gpucore.Buffer, offset, index int) {
	if !e.usable() {
		return
	}
	if err := gpucore.CheckIndex(index); err != nil {
		e.fail(err)
		return
	}
	b, ok := buf.(*Buffer)
	if !ok || b == nil || b.device != e.cb.queue.device {
		e.fail(fmt.Errorf("%w: buffer %T does not belong to this wgpu device", gpucore.ErrInvalidDescriptor, buf))
		return
	}
	if b.released.Load() {
		e.fail(gpucore.ErrReleased)
		return
	}
	if offset < 0 || offset > len(b.data) {
		e.fail(fmt.Errorf("%w: offset %d outside buffer of %d bytes", gpucore.ErrLayoutMismatch, offset, len(b.data)))
		return
	}
	e.cb.hold(&b.pending)
	e.vertex[index] = binding{data: b.data[offset:], buf: b, offset: offset}
}

// SetFragmentBytes binds a copy of data at a fragment index.
func (e *Encoder) SetFragmentBytes(data []byte, index int) {
	if !e.usable() {
		return
	}
	if err := gpucore.CheckIndex(index); err != nil {
		e.fail(err)
		return
	}
	e.fragment[index] = binding{data: append([]byte(nil), data...)}
}

// SetFragmentTexture binds a texture at a fragment index.
func (e *Encoder) SetFragmentTexture(tex gpucore.Texture, index int) {
	if !e.usable() {
		return
	}
	if err := gpucore.CheckIndex(index); err != nil {
		e.fail(err)
		return
	}
	if tex == nil {
		delete(e.textures, index)
		return
	}
	t, ok := tex.(*Texture)
	if !ok || t == nil || t.device != e.cb.queue.device {
		e.fail(fmt.Errorf("%w: texture %T does not belong to this wgpu device", gpucore.ErrInvalidDescriptor, tex))
		return
	}
	if t.released.Load() {
		e.fail(gpucore.ErrReleased)
		return
	}
	if t == e.pass.target {
		e.fail(fmt.Errorf("%w: pass %q samples its own attachment", gpucore.ErrInvalidDescriptor, e.pass.label))
		return
	}
	if !t.usage.Has(gpucore.TextureUsageShaderRead) {
		e.fail(fmt.Errorf("%w: texture %q is not shader readable", gpucore.ErrInvalidDescriptor, t.label))
		return
	}
	e.cb.hold(&t.pending)
	e.textures[index] = t
}

// DrawPrimitives records a draw of count records starting at start.
func (e *Encoder) DrawPrimitives(kind gpucore.PrimitiveType, start, count int) {
	if !e.usable() {
		return
	}
	dc, err := e.makeDraw(kind, start, count)
	if err != nil {
		e.fail(err)
		return
	}
	if dc.count > 0 {
		e.pass.draws = append(e.pass.draws, dc)
	}
}

func (e *Encoder) makeDraw(kind gpucore.PrimitiveType, start, count int) (drawCall, error) {
	if e.pipeline == nil {
		return drawCall{}, gpucore.ErrNoPipeline
	}
	want := gpucore.VertexLayoutVertex
	if kind == gpucore.PrimitiveTypePoint {
		want = gpucore.VertexLayoutPoint
	}
	if e.pipeline.layout != want {
		return drawCall{}, fmt.Errorf("%w: %v draw with %v pipeline", gpucore.ErrLayoutMismatch, kind, e.pipeline.layout)
	}
	if e.pipeline.format != e.pass.target.format {
		return drawCall{}, fmt.Errorf("%w: pipeline format %v, attachment format %v",
			gpucore.ErrLayoutMismatch, e.pipeline.format, e.pass.target.format)
	}

	geom, ok := e.vertex[gpucore.VertexIndex]
	if !ok {
		return drawCall{}, fmt.Errorf("%w: no geometry bound at index %d", gpucore.ErrLayoutMismatch, gpucore.VertexIndex)
	}
	stride := want.Stride()
	records := gpucore.RecordCount(want, len(geom.data))
	if start < 0 || count < 0 || start+count > records {
		return drawCall{}, fmt.Errorf("%w: draw [%d, %d) of %d records", gpucore.ErrLayoutMismatch, start, start+count, records)
	}

	dc := drawCall{kind: kind, count: count}
	if geom.buf != nil && kind != gpucore.PrimitiveTypePoint {
		dc.buf = geom.buf
		dc.offset = geom.offset + start*stride
	} else {
		dc.geometry = geom.data[start*stride : (start+count)*stride]
	}

	matrix := identityMatrix
	if u, ok := e.vertex[gpucore.UniformIndex]; ok {
		if len(u.data) < gpucore.UniformSize {
			return drawCall{}, fmt.Errorf("%w: uniform binding has %d bytes", gpucore.ErrLayoutMismatch, len(u.data))
		}
		matrix = gpucore.DecodeMatrix(u.data)
	}
	tint := opaqueWhite
	if c, ok := e.fragment[gpucore.ColorIndex]; ok {
		if len(c.data) < gpucore.ColorSize {
			return drawCall{}, fmt.Errorf("%w: color binding has %d bytes", gpucore.ErrLayoutMismatch, len(c.data))
		}
		tint = gpucore.DecodeColor(c.data)
	}
	t := e.pass.target
	off := gpucore.PutFloat32s(dc.uniforms[:], matrix[:]...)
	off += gpucore.PutFloat32s(dc.uniforms[off:], tint[:]...)
	gpucore.PutFloat32s(dc.uniforms[off:], float32(t.width), float32(t.height), 0, 0)

	if kind != gpucore.PrimitiveTypePoint {
		dc.brush = e.textures[gpucore.BrushTextureIndex]
	}
	return dc, nil
}

// EndEncoding ends the pass and reports the first recording error. The
// draws recorded before the error are kept.
func (e *Encoder) EndEncoding() error {
	if e.ended {
		return gpucore.ErrEncoderEnded
	}
	e.ended = true
	e.cb.endPass(e)
	return e.err
}

var identityMatrix = [16]float32{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 1, 0,
	0, 0, 0, 1,
}

var opaqueWhite = [4]float32{1, 1, 1, 1}

var _ gpucore.RenderCommandEncoder = (*Encoder)(nil)
