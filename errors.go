// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package ink

import "errors"

// Render target errors. Each one describes a precondition that was not met;
// none is fatal and callers retry once the precondition holds again.
var (
	// ErrDegenerateSize is reported when width or height is not positive
	// at texture allocation time.
	ErrDegenerateSize = errors.New("ink: degenerate render target size")

	// ErrNoDevice is reported when the render target has no GPU device.
	ErrNoDevice = errors.New("ink: no device")

	// ErrNoOpenCommandBuffer is returned by MakeEncoder when PrepareForDraw
	// has not opened a command buffer.
	ErrNoOpenCommandBuffer = errors.New("ink: no open command buffer")

	// ErrNoBoundTexture is returned by MakeEncoder when the render pass
	// descriptor has no texture attached.
	ErrNoBoundTexture = errors.New("ink: render pass has no bound texture")

	// ErrDisposed is returned when a disposed render target is used.
	ErrDisposed = errors.New("ink: render target disposed")
)
