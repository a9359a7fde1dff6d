// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpucore

import "errors"

// Command recording errors.
var (
	// ErrInvalidDescriptor is returned for descriptors that cannot be used.
	ErrInvalidDescriptor = errors.New("gpucore: invalid descriptor")

	// ErrEncoderActive is returned when a second encoder is requested
	// while another one on the same command buffer is still open.
	ErrEncoderActive = errors.New("gpucore: render command encoder already active")

	// ErrEncoderEnded is returned when an ended encoder is used again.
	ErrEncoderEnded = errors.New("gpucore: render command encoder has already ended")

	// ErrNoPipeline is returned when a draw is recorded without a pipeline.
	ErrNoPipeline = errors.New("gpucore: no render pipeline set")

	// ErrLayoutMismatch is returned when a draw does not fit the pipeline
	// layout or bound geometry.
	ErrLayoutMismatch = errors.New("gpucore: geometry does not match pipeline layout")

	// ErrBufferIndex is returned for unsupported binding indices.
	ErrBufferIndex = errors.New("gpucore: binding index out of range")

	// ErrAlreadyCommitted is returned when a committed buffer is reused.
	ErrAlreadyCommitted = errors.New("gpucore: command buffer already committed")

	// ErrNotCommitted is returned when waiting on a buffer that was never committed.
	ErrNotCommitted = errors.New("gpucore: command buffer not committed")

	// ErrReleased is returned when a released resource is used.
	ErrReleased = errors.New("gpucore: resource has been released")
)
