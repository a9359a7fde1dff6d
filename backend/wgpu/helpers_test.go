// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/ink/gpucore"
)

// halSpy counts object creation and destruction on a HAL device.
type halSpy struct {
	hal.Device

	mu     sync.Mutex
	counts map[string]int
}

func (s *halSpy) inc(what string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.counts == nil {
		s.counts = make(map[string]int)
	}
	s.counts[what]++
}

func (s *halSpy) count(what string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[what]
}

func (s *halSpy) CreateRenderPipeline(desc *hal.RenderPipelineDescriptor) (hal.RenderPipeline, error) {
	s.inc("create pipeline")
	return s.Device.CreateRenderPipeline(desc)
}

func (s *halSpy) DestroyRenderPipeline(p hal.RenderPipeline) {
	s.inc("destroy pipeline")
	s.Device.DestroyRenderPipeline(p)
}

func (s *halSpy) DestroyTexture(t hal.Texture) {
	s.inc("destroy texture")
	s.Device.DestroyTexture(t)
}

func (s *halSpy) DestroyBuffer(b hal.Buffer) {
	s.inc("destroy buffer")
	s.Device.DestroyBuffer(b)
}

func (s *halSpy) CreateBindGroup(desc *hal.BindGroupDescriptor) (hal.BindGroup, error) {
	s.inc("create bind group")
	return s.Device.CreateBindGroup(desc)
}

// gatedQueue holds back completion while closed is set.
type gatedQueue struct {
	hal.Queue

	closed    atomic.Bool
	submitted atomic.Int32
}

func (q *gatedQueue) Submit(cmds []hal.CommandBuffer) (uint64, error) {
	q.submitted.Add(1)
	return q.Queue.Submit(cmds)
}

func (q *gatedQueue) PollCompleted() uint64 {
	if q.closed.Load() {
		return 0
	}
	return q.Queue.PollCompleted()
}

// newTestDevice wraps a noop HAL device.
func newTestDevice(t *testing.T, opts ...Option) (*Device, *halSpy, *gatedQueue) {
	t.Helper()
	instance, err := noop.API{}.CreateInstance(nil)
	require.NoError(t, err)
	adapters := instance.EnumerateAdapters(nil)
	require.NotEmpty(t, adapters)
	open, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	require.NoError(t, err)

	spy := &halSpy{Device: open.Device}
	queue := &gatedQueue{Queue: open.Queue}
	d, err := NewFromHAL(spy, queue, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d, spy, queue
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
	require.NoError(t, err)
	return tex
}

func newPipeline(t *testing.T, d *Device, layout gpucore.VertexLayout) gpucore.RenderPipeline {
	t.Helper()
	p, err := d.MakeRenderPipeline(&gpucore.RenderPipelineDescriptor{
		Label:       layout.String(),
		Layout:      layout,
		ColorFormat: gpucore.TextureFormatRGBA8Unorm,
	})
	require.NoError(t, err)
	return p
}

func newCommandBuffer(t *testing.T, d *Device) gpucore.CommandBuffer {
	t.Helper()
	q, err := d.MakeCommandQueue()
	require.NoError(t, err)
	cb, err := q.MakeCommandBuffer()
	require.NoError(t, err)
	return cb
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

// encodePass records one pass into a new command buffer without committing.
func encodePass(t *testing.T, d *Device, desc *gpucore.RenderPassDescriptor, fn func(enc gpucore.RenderCommandEncoder)) gpucore.CommandBuffer {
	t.Helper()
	cb := newCommandBuffer(t, d)
	enc, err := cb.MakeRenderCommandEncoder(desc)
	require.NoError(t, err)
	if fn != nil {
		fn(enc)
	}
	require.NoError(t, enc.EndEncoding())
	return cb
}

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

var red = [4]float32{1, 0, 0, 1}
