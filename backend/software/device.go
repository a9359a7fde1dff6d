// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package software

import (
	"context"
	"fmt"
	"image"

	"github.com/gogpu/ink/backend"
	"github.com/gogpu/ink/gpucore"
)

func init() {
	backend.Register(backend.BackendSoftware, func() (gpucore.Device, error) {
		return New(), nil
	})
}

// DefaultStampCacheSize is the number of disc masks kept by default.
const DefaultStampCacheSize = 256

// Option configures a Device.
type Option func(*Device)

// WithName overrides the device name.
func WithName(name string) Option {
	return func(d *Device) {
		if name != "" {
			d.name = name
		}
	}
}

// WithStampCacheSize sets how many disc masks are cached. Values below 1
// disable caching.
func WithStampCacheSize(n int) Option {
	return func(d *Device) {
		d.stampCacheSize = n
	}
}

// Device is a CPU device. It is safe for concurrent use.
type Device struct {
	name           string
	stampCacheSize int

	exec   *executor
	stamps *stampCache
}

// New creates a software device.
func New(opts ...Option) *Device {
	d := &Device{
		name:           "ink software rasterizer",
		stampCacheSize: DefaultStampCacheSize,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.stamps = newStampCache(d.stampCacheSize)
	d.exec = newExecutor(d.execute)
	return d
}

// Name returns the device name.
func (d *Device) Name() string {
	return d.name
}

// MakeTexture allocates a zeroed texture.
func (d *Device) MakeTexture(desc *gpucore.TextureDescriptor) (gpucore.Texture, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	t := &Texture{
		label:  desc.Label,
		format: desc.Format,
		usage:  desc.Usage,
		img:    image.NewRGBA(image.Rect(0, 0, desc.Width, desc.Height)),
	}
	backend.Logger().Debug("software: texture created",
		"label", desc.Label, "width", desc.Width, "height", desc.Height, "format", desc.Format)
	return t, nil
}

// MakeBuffer allocates a buffer holding a copy of data.
func (d *Device) MakeBuffer(data []byte, usage gpucore.BufferUsage) (gpucore.Buffer, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty buffer", gpucore.ErrInvalidDescriptor)
	}
	b := &Buffer{
		usage: usage,
		data:  append([]byte(nil), data...),
	}
	return b, nil
}

// MakeRenderPipeline creates a pipeline. Software pipelines only record
// the layout and color format they were created for.
func (d *Device) MakeRenderPipeline(desc *gpucore.RenderPipelineDescriptor) (gpucore.RenderPipeline, error) {
	if desc == nil {
		return nil, fmt.Errorf("%w: nil pipeline descriptor", gpucore.ErrInvalidDescriptor)
	}
	if desc.ColorFormat.BytesPerPixel() == 0 {
		return nil, fmt.Errorf("%w: pipeline color format %v", gpucore.ErrInvalidDescriptor, desc.ColorFormat)
	}
	if desc.Layout.Stride() == 0 {
		return nil, fmt.Errorf("%w: pipeline layout %v", gpucore.ErrInvalidDescriptor, desc.Layout)
	}
	return &Pipeline{
		label:  desc.Label,
		layout: desc.Layout,
		format: desc.ColorFormat,
	}, nil
}

// MakeCommandQueue creates a queue that submits to the device executor.
func (d *Device) MakeCommandQueue() (gpucore.CommandQueue, error) {
	return &CommandQueue{device: d}, nil
}

// ReadPixels waits for all committed work on the device and copies tex.
func (d *Device) ReadPixels(ctx context.Context, tex gpucore.Texture) (*image.RGBA, error) {
	t, ok := tex.(*Texture)
	if !ok || t == nil {
		return nil, fmt.Errorf("%w: texture %T does not belong to the software device", gpucore.ErrInvalidDescriptor, tex)
	}
	if t.released.Load() {
		return nil, gpucore.ErrReleased
	}
	if err := d.exec.waitIdle(ctx); err != nil {
		return nil, err
	}
	return t.snapshot(), nil
}

// WaitIdle blocks until every committed command buffer on the device has
// completed or ctx is done.
func (d *Device) WaitIdle(ctx context.Context) error {
	return d.exec.waitIdle(ctx)
}

var _ gpucore.Device = (*Device)(nil)
