// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package software

import (
	"context"
	"fmt"
	"sync"

	"github.com/gogpu/ink/gpucore"
)

// renderPass is one recorded render pass.
type renderPass struct {
	label  string
	target *Texture
	load   gpucore.LoadAction
	store  gpucore.StoreAction
	clear  gpucore.ClearColor
	draws  []drawCall
}

// drawCall is a draw with every binding it reads captured at encode time.
type drawCall struct {
	kind     gpucore.PrimitiveType
	geometry []byte
	count    int
	matrix   [16]float32
	tint     [4]float32
	brush    *Texture
}

// CommandBuffer records render passes for the software device.
type CommandBuffer struct {
	queue *CommandQueue

	mu     sync.Mutex
	status gpucore.CommandBufferStatus
	err    error
	passes []*renderPass
	active *Encoder
	done   chan struct{}
}

// MakeRenderCommandEncoder starts a render pass.
func (cb *CommandBuffer) MakeRenderCommandEncoder(desc *gpucore.RenderPassDescriptor) (gpucore.RenderCommandEncoder, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	att := desc.ColorAttachments[0]
	target, ok := att.Texture.(*Texture)
	if !ok {
		return nil, fmt.Errorf("%w: texture %T does not belong to the software device", gpucore.ErrInvalidDescriptor, att.Texture)
	}
	if target.released.Load() {
		return nil, fmt.Errorf("render pass %q: %w", desc.Label, gpucore.ErrReleased)
	}

	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.status != gpucore.CommandBufferStatusNotEnqueued {
		return nil, gpucore.ErrAlreadyCommitted
	}
	if cb.active != nil {
		return nil, gpucore.ErrEncoderActive
	}

	pass := &renderPass{
		label:  desc.Label,
		target: target,
		load:   att.LoadAction,
		store:  att.StoreAction,
		clear:  att.ClearColor,
	}
	enc := &Encoder{
		cb:       cb,
		pass:     pass,
		vertex:   make(map[int]binding),
		fragment: make(map[int]binding),
		textures: make(map[int]*Texture),
	}
	cb.active = enc
	return enc, nil
}

// endPass is called by an encoder when it ends.
func (cb *CommandBuffer) endPass(enc *Encoder) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.active == enc {
		cb.active = nil
	}
	cb.passes = append(cb.passes, enc.pass)
}

// Commit submits the buffer to the device executor.
func (cb *CommandBuffer) Commit() error {
	cb.mu.Lock()
	if cb.status != gpucore.CommandBufferStatusNotEnqueued {
		cb.mu.Unlock()
		return gpucore.ErrAlreadyCommitted
	}
	if cb.active != nil {
		cb.mu.Unlock()
		return gpucore.ErrEncoderActive
	}
	cb.status = gpucore.CommandBufferStatusCommitted
	cb.mu.Unlock()

	cb.queue.enqueue(cb)
	return nil
}

// finish records the execution result and wakes waiters.
func (cb *CommandBuffer) finish(err error) {
	cb.mu.Lock()
	if err != nil {
		cb.status = gpucore.CommandBufferStatusError
		cb.err = err
	} else {
		cb.status = gpucore.CommandBufferStatusCompleted
	}
	cb.mu.Unlock()
	close(cb.done)
}

// Wait blocks until the buffer completes or ctx is done. It returns the
// execution error, if any.
func (cb *CommandBuffer) Wait(ctx context.Context) error {
	if cb.Status() == gpucore.CommandBufferStatusNotEnqueued {
		return gpucore.ErrNotCommitted
	}
	return cb.wait(ctx)
}

func (cb *CommandBuffer) wait(ctx context.Context) error {
	select {
	case <-cb.done:
		return cb.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Status returns the current execution state.
func (cb *CommandBuffer) Status() gpucore.CommandBufferStatus {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.status
}

// Err returns the execution error.
func (cb *CommandBuffer) Err() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.err
}

var _ gpucore.CommandBuffer = (*CommandBuffer)(nil)
