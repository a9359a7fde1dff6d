// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package ink

// TargetOption configures a RenderTarget during creation.
//
// Example:
//
//	rt := ink.NewRenderTarget(800, 600, dev,
//		ink.WithLabel("canvas"),
//		ink.WithZoom(2))
type TargetOption func(*targetOptions)

// targetOptions holds optional configuration for RenderTarget creation.
type targetOptions struct {
	label         string
	scale         float64
	zoom          float64
	contentOffset Vec2
}

// defaultTargetOptions returns the default render target options.
func defaultTargetOptions() targetOptions {
	return targetOptions{
		label: "ink-render-target",
		scale: 1,
		zoom:  1,
	}
}

// WithLabel sets the debug label used for the texture, buffers and
// command buffers of the render target.
func WithLabel(label string) TargetOption {
	return func(o *targetOptions) {
		if label != "" {
			o.label = label
		}
	}
}

// WithScale sets the view scale factor (pixels per view point).
// Non-positive values are ignored.
func WithScale(scale float64) TargetOption {
	return func(o *targetOptions) {
		if scale > 0 {
			o.scale = scale
		}
	}
}

// WithZoom sets the initial zoom level applied when presenting the
// texture. Non-positive values are ignored.
func WithZoom(zoom float64) TargetOption {
	return func(o *targetOptions) {
		if zoom > 0 {
			o.zoom = zoom
		}
	}
}

// WithContentOffset sets the initial offset of the zoomed texture.
func WithContentOffset(offset Vec2) TargetOption {
	return func(o *targetOptions) {
		o.contentOffset = offset
	}
}
