// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	_ "github.com/gogpu/wgpu/hal/vulkan" // register the Vulkan HAL backend

	"github.com/gogpu/ink/backend"
	"github.com/gogpu/ink/gpucore"
)

func init() {
	backend.Register(backend.BackendWGPU, func() (gpucore.Device, error) {
		return Open()
	})
}

// Errors returned by device construction.
var (
	// ErrNoAdapter is returned when the HAL instance reports no adapters.
	ErrNoAdapter = errors.New("wgpu: no GPU adapter found")

	// ErrNotHAL is returned when a provider does not expose HAL objects.
	ErrNotHAL = errors.New("wgpu: provider does not expose HAL types")

	// ErrClosed is returned by a device after Close.
	ErrClosed = errors.New("wgpu: device closed")
)

// DefaultPipelineCacheSize is the number of HAL pipelines kept by default.
const DefaultPipelineCacheSize = 16

// pollInterval is how often waiters poll the queue for completion.
const pollInterval = time.Millisecond

type config struct {
	name              string
	halBackend        gputypes.Backend
	pipelineCacheSize int
}

// Option configures a Device.
type Option func(*config)

// WithName overrides the device name. By default the adapter name is used.
func WithName(name string) Option {
	return func(c *config) {
		if name != "" {
			c.name = name
		}
	}
}

// WithHALBackend selects the HAL backend Open uses. The default is
// gputypes.BackendVulkan; the backend package must be imported.
func WithHALBackend(b gputypes.Backend) Option {
	return func(c *config) {
		c.halBackend = b
	}
}

// WithPipelineCacheSize sets how many HAL pipelines are cached.
// Values below 1 are ignored.
func WithPipelineCacheSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.pipelineCacheSize = n
		}
	}
}

func newConfig(opts []Option) config {
	c := config{
		halBackend:        gputypes.BackendVulkan,
		pipelineCacheSize: DefaultPipelineCacheSize,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Device is a gpucore.Device backed by a HAL device and queue. It is safe
// for concurrent use.
type Device struct {
	name     string
	device   hal.Device
	queue    hal.Queue
	instance hal.Instance

	// owned is set when Open created the device, which Close then destroys.
	owned bool

	// mu guards everything below and serialises access to the HAL queue.
	mu         sync.Mutex
	closed     bool
	shared     *sharedObjects
	pipelines  *pipelineCache
	inflight   []*CommandBuffer
	retired    []retiredResource
	lastSubmit uint64
}

// retiredResource is a HAL object waiting to be destroyed.
type retiredResource struct {
	// after is the submission index that must complete first.
	after uint64

	// refs, when set, must drop to zero first.
	refs *atomic.Int32

	free func()
}

// Open creates a standalone device on the first discrete or integrated GPU,
// falling back to the first adapter found.
func Open(opts ...Option) (*Device, error) {
	cfg := newConfig(opts)

	b, ok := hal.GetBackend(cfg.halBackend)
	if !ok {
		return nil, fmt.Errorf("%w: hal backend %v not registered", backend.ErrBackendNotAvailable, cfg.halBackend)
	}
	instance, err := b.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoAdapter
	}
	selected := selectAdapter(adapters)

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("wgpu: open device: %w", err)
	}

	if cfg.name == "" {
		cfg.name = selected.Info.Name
	}
	d := newDevice(openDev.Device, openDev.Queue, cfg)
	d.instance = instance
	d.owned = true
	backend.Logger().Info("wgpu: device opened",
		"adapter", selected.Info.Name, "type", selected.Info.DeviceType, "driver", selected.Info.Driver)
	return d, nil
}

// selectAdapter prefers real GPUs over CPU and unknown adapters.
func selectAdapter(adapters []hal.ExposedAdapter) *hal.ExposedAdapter {
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			return &adapters[i]
		}
	}
	return &adapters[0]
}

// NewFromHAL wraps an existing HAL device and queue. The caller keeps
// ownership: Close does not destroy them.
func NewFromHAL(device hal.Device, queue hal.Queue, opts ...Option) (*Device, error) {
	if device == nil || queue == nil {
		return nil, fmt.Errorf("%w: nil HAL device or queue", backend.ErrNoDevice)
	}
	cfg := newConfig(opts)
	if cfg.name == "" {
		cfg.name = "wgpu"
	}
	return newDevice(device, queue, cfg), nil
}

// NewFromProvider shares the device of a host application, such as a
// gogpu window. The provider must also implement HalDevice() any and
// HalQueue() any returning hal.Device and hal.Queue.
func NewFromProvider(provider gpucontext.DeviceProvider, opts ...Option) (*Device, error) {
	if provider == nil {
		return nil, backend.ErrNoDevice
	}
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNotHAL
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNotHAL)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNotHAL)
	}

	info := provider.AdapterInfo()
	d, err := NewFromHAL(device, queue, append([]Option{WithName(info.Name)}, opts...)...)
	if err != nil {
		return nil, err
	}
	backend.Logger().Info("wgpu: using provided device",
		"adapter", info.Name, "surface_format", provider.SurfaceFormat())
	return d, nil
}

func newDevice(device hal.Device, queue hal.Queue, cfg config) *Device {
	d := &Device{
		name:   cfg.name,
		device: device,
		queue:  queue,
	}
	d.pipelines = newPipelineCache(cfg.pipelineCacheSize, d.retirePipeline)
	return d
}

// Name returns the device name.
func (d *Device) Name() string {
	return d.name
}

// MakeTexture allocates a texture and its view.
func (d *Device) MakeTexture(desc *gpucore.TextureDescriptor) (gpucore.Texture, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	format, err := halFormat(desc.Format)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, ErrClosed
	}

	tex, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         desc.Label,
		Size:          hal.Extent3D{Width: uint32(desc.Width), Height: uint32(desc.Height), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         halTextureUsage(desc.Usage),
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create texture %q: %w", desc.Label, err)
	}
	view, err := d.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:     desc.Label + "_view",
		Format:    format,
		Dimension: gputypes.TextureViewDimension2D,
		Aspect:    gputypes.TextureAspectAll,
	})
	if err != nil {
		d.device.DestroyTexture(tex)
		return nil, fmt.Errorf("wgpu: create texture view %q: %w", desc.Label, err)
	}

	backend.Logger().Debug("wgpu: texture created",
		"label", desc.Label, "width", desc.Width, "height", desc.Height, "format", desc.Format)
	return &Texture{
		device: d,
		label:  desc.Label,
		width:  desc.Width,
		height: desc.Height,
		format: desc.Format,
		usage:  desc.Usage,
		tex:    tex,
		view:   view,
	}, nil
}

// MakeBuffer allocates a GPU buffer holding a copy of data. The data is
// also kept on the CPU for Contents and for drawing points.
func (d *Device) MakeBuffer(data []byte, usage gpucore.BufferUsage) (gpucore.Buffer, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty buffer", gpucore.ErrInvalidDescriptor)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, ErrClosed
	}

	buf, err := d.uploadLocked("ink_buffer", data, halBufferUsage(usage))
	if err != nil {
		return nil, err
	}
	return &Buffer{
		device: d,
		usage:  usage,
		data:   append([]byte(nil), data...),
		buf:    buf,
	}, nil
}

// uploadLocked creates a buffer sized for data, padded to a multiple of
// four bytes, and writes data into it.
func (d *Device) uploadLocked(label string, data []byte, usage gputypes.BufferUsage) (hal.Buffer, error) {
	size := align(uint64(len(data)), 4)
	buf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: usage | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create %s: %w", label, err)
	}
	if uint64(len(data)) != size {
		data = append(append(make([]byte, 0, size), data...), make([]byte, size-uint64(len(data)))...)
	}
	if err := d.queue.WriteBuffer(buf, 0, data); err != nil {
		d.device.DestroyBuffer(buf)
		return nil, fmt.Errorf("wgpu: write %s: %w", label, err)
	}
	return buf, nil
}

// MakeRenderPipeline creates a pipeline and compiles the HAL pipelines it
// needs, so shader errors surface here rather than at commit.
func (d *Device) MakeRenderPipeline(desc *gpucore.RenderPipelineDescriptor) (gpucore.RenderPipeline, error) {
	if desc == nil {
		return nil, fmt.Errorf("%w: nil pipeline descriptor", gpucore.ErrInvalidDescriptor)
	}
	if _, err := halFormat(desc.ColorFormat); err != nil {
		return nil, err
	}
	if desc.Layout.Stride() == 0 {
		return nil, fmt.Errorf("%w: pipeline layout %v", gpucore.ErrInvalidDescriptor, desc.Layout)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, ErrClosed
	}
	kind := gpucore.PrimitiveTypeTriangle
	if desc.Layout == gpucore.VertexLayoutPoint {
		kind = gpucore.PrimitiveTypePoint
	}
	if _, err := d.pipelineLocked(keyFor(kind, desc.ColorFormat)); err != nil {
		return nil, err
	}
	return &Pipeline{
		label:  desc.Label,
		layout: desc.Layout,
		format: desc.ColorFormat,
	}, nil
}

// MakeCommandQueue creates a queue on the device.
func (d *Device) MakeCommandQueue() (gpucore.CommandQueue, error) {
	return &CommandQueue{device: d}, nil
}

// ReadPixels waits for all committed work and copies tex into an image.
func (d *Device) ReadPixels(ctx context.Context, tex gpucore.Texture) (*image.RGBA, error) {
	t, ok := tex.(*Texture)
	if !ok || t == nil || t.device != d {
		return nil, fmt.Errorf("%w: texture %T does not belong to this wgpu device", gpucore.ErrInvalidDescriptor, tex)
	}
	if t.released.Load() {
		return nil, gpucore.ErrReleased
	}
	if err := d.WaitIdle(ctx); err != nil {
		return nil, err
	}
	return d.readback(ctx, t)
}

// WaitIdle blocks until every committed command buffer has completed or
// ctx is done.
func (d *Device) WaitIdle(ctx context.Context) error {
	d.mu.Lock()
	target := d.lastSubmit
	d.mu.Unlock()
	return d.waitSubmission(ctx, target)
}

// waitSubmission polls until submission idx has completed.
func (d *Device) waitSubmission(ctx context.Context, idx uint64) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		d.mu.Lock()
		if d.closed {
			d.mu.Unlock()
			return ErrClosed
		}
		done := d.pollLocked()
		d.mu.Unlock()
		if done >= idx {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// poll completes finished work.
func (d *Device) poll() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.closed {
		d.pollLocked()
	}
}

// pollLocked completes finished command buffers, destroys retired
// resources that are no longer in use and returns the completed index.
func (d *Device) pollLocked() uint64 {
	done := d.queue.PollCompleted()

	kept := d.inflight[:0]
	for _, cb := range d.inflight {
		if cb.index <= done {
			cb.complete(d.device, nil)
		} else {
			kept = append(kept, cb)
		}
	}
	clear(d.inflight[len(kept):])
	d.inflight = kept

	live := d.retired[:0]
	for _, r := range d.retired {
		if r.after <= done && (r.refs == nil || r.refs.Load() == 0) {
			r.free()
		} else {
			live = append(live, r)
		}
	}
	clear(d.retired[len(live):])
	d.retired = live
	return done
}

// retire schedules free once refs reaches zero.
func (d *Device) retire(refs *atomic.Int32, free func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.retired = append(d.retired, retiredResource{refs: refs, free: free})
	d.pollLocked()
}

// retirePipeline schedules an evicted pipeline for destruction after the
// next submission, which may still be encoding draws that use it.
func (d *Device) retirePipeline(p hal.RenderPipeline) {
	d.retired = append(d.retired, retiredResource{
		after: d.lastSubmit + 1,
		free:  func() { d.device.DestroyRenderPipeline(p) },
	})
}

// Close waits for the GPU to go idle and destroys every object the device
// created. A device created by Open also destroys its HAL device.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true

	err := d.device.WaitIdle()
	if err != nil {
		backend.Logger().Warn("wgpu: wait idle failed on close", "err", err)
	}
	for _, cb := range d.inflight {
		cb.complete(d.device, ErrClosed)
	}
	d.inflight = nil
	d.pipelines.purge()
	for _, r := range d.retired {
		r.free()
	}
	d.retired = nil
	if d.shared != nil {
		d.shared.destroy(d.device)
		d.shared = nil
	}
	if d.owned {
		d.device.Destroy()
		if d.instance != nil {
			d.instance.Destroy()
		}
	}
	return err
}

// halFormat maps a gpucore format to the HAL format.
func halFormat(f gpucore.TextureFormat) (gputypes.TextureFormat, error) {
	switch f {
	case gpucore.TextureFormatRGBA8Unorm:
		return gputypes.TextureFormatRGBA8Unorm, nil
	case gpucore.TextureFormatBGRA8Unorm:
		return gputypes.TextureFormatBGRA8Unorm, nil
	default:
		return 0, fmt.Errorf("%w: texture format %v", gpucore.ErrInvalidDescriptor, f)
	}
}

// halTextureUsage maps usage flags. Copies in both directions are always
// allowed so that any texture can be uploaded to and read back.
func halTextureUsage(u gpucore.TextureUsage) gputypes.TextureUsage {
	out := gputypes.TextureUsageCopySrc | gputypes.TextureUsageCopyDst
	if u.Has(gpucore.TextureUsageShaderRead) {
		out |= gputypes.TextureUsageTextureBinding
	}
	if u.Has(gpucore.TextureUsageRenderTarget) {
		out |= gputypes.TextureUsageRenderAttachment
	}
	return out
}

// halBufferUsage maps usage flags. Every buffer can be bound as vertex
// input, since SetVertexBuffer accepts any buffer.
func halBufferUsage(u gpucore.BufferUsage) gputypes.BufferUsage {
	out := gputypes.BufferUsageVertex
	if u&gpucore.BufferUsageUniform != 0 {
		out |= gputypes.BufferUsageUniform
	}
	if u&gpucore.BufferUsageCopySrc != 0 {
		out |= gputypes.BufferUsageCopySrc
	}
	return out
}

func align(n, a uint64) uint64 {
	return (n + a - 1) &^ (a - 1)
}

var _ gpucore.Device = (*Device)(nil)
