// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/ink/backend"
	"github.com/gogpu/ink/gpucore"
)

// CommandQueue creates command buffers on a device.
type CommandQueue struct {
	device *Device

	mu   sync.Mutex
	last *CommandBuffer
}

// MakeCommandBuffer returns a new buffer in the NotEnqueued state.
func (q *CommandQueue) MakeCommandBuffer() (gpucore.CommandBuffer, error) {
	return &CommandBuffer{
		queue: q,
		done:  make(chan struct{}),
	}, nil
}

// WaitIdle blocks until every buffer committed to q has completed.
func (q *CommandQueue) WaitIdle(ctx context.Context) error {
	q.mu.Lock()
	last := q.last
	q.mu.Unlock()
	if last == nil {
		return nil
	}
	return last.wait(ctx)
}

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
	kind  gpucore.PrimitiveType
	count int

	// geometry holds the records to upload. It is nil when the records
	// are read straight from buf at offset.
	geometry []byte
	buf      *Buffer
	offset   int

	uniforms [uniformBlockSize]byte
	brush    *Texture
}

// CommandBuffer records render passes and encodes them into one HAL
// command buffer on Commit.
type CommandBuffer struct {
	queue *CommandQueue

	mu     sync.Mutex
	status gpucore.CommandBufferStatus
	err    error
	passes []*renderPass
	active *Encoder

	// held are the reference counts this buffer incremented.
	held []*atomic.Int32

	// index and frame are set on submission under device.mu.
	index uint64
	frame *frame

	done chan struct{}
}

// hold keeps a texture or buffer alive until the buffer completes.
func (cb *CommandBuffer) hold(refs *atomic.Int32) {
	refs.Add(1)
	cb.mu.Lock()
	cb.held = append(cb.held, refs)
	cb.mu.Unlock()
}

// MakeRenderCommandEncoder starts a render pass.
func (cb *CommandBuffer) MakeRenderCommandEncoder(desc *gpucore.RenderPassDescriptor) (gpucore.RenderCommandEncoder, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	att := desc.ColorAttachments[0]
	target, ok := att.Texture.(*Texture)
	if !ok || target.device != cb.queue.device {
		return nil, fmt.Errorf("%w: texture %T does not belong to this wgpu device", gpucore.ErrInvalidDescriptor, att.Texture)
	}
	if target.released.Load() {
		return nil, fmt.Errorf("render pass %q: %w", desc.Label, gpucore.ErrReleased)
	}

	cb.mu.Lock()
	if cb.status != gpucore.CommandBufferStatusNotEnqueued {
		cb.mu.Unlock()
		return nil, gpucore.ErrAlreadyCommitted
	}
	if cb.active != nil {
		cb.mu.Unlock()
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
	cb.mu.Unlock()

	cb.hold(&target.pending)
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

// Commit encodes the recorded passes and submits them to the HAL queue.
// An encoding or submission failure puts the buffer into the error state
// and is also returned.
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

	q := cb.queue
	q.mu.Lock()
	q.last = cb
	q.mu.Unlock()

	if err := q.device.submit(cb); err != nil {
		backend.Logger().Warn("wgpu: submit failed", "err", err)
		return err
	}
	return nil
}

// complete frees the transient resources, drops the held references and
// wakes waiters. It is called under device.mu.
func (cb *CommandBuffer) complete(device hal.Device, err error) {
	if cb.frame != nil {
		cb.frame.destroy(device)
		cb.frame = nil
	}

	cb.mu.Lock()
	if cb.status != gpucore.CommandBufferStatusCommitted {
		cb.mu.Unlock()
		return
	}
	for _, refs := range cb.held {
		refs.Add(-1)
	}
	cb.held = nil
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

// wait polls the device until the buffer completes.
func (cb *CommandBuffer) wait(ctx context.Context) error {
	d := cb.queue.device
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		d.poll()
		select {
		case <-cb.done:
			return cb.Err()
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Status polls the queue and returns the current execution state.
func (cb *CommandBuffer) Status() gpucore.CommandBufferStatus {
	cb.queue.device.poll()
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

var (
	_ gpucore.CommandQueue  = (*CommandQueue)(nil)
	_ gpucore.CommandBuffer = (*CommandBuffer)(nil)
)
