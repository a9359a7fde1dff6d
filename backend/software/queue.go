// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package software

import (
	"context"
	"sync"

	"github.com/gogpu/ink/backend"
	"github.com/gogpu/ink/gpucore"
)

// executor runs committed command buffers one at a time in submission
// order. The worker goroutine exits when the backlog is empty and is
// restarted by the next submission, so an idle device owns no goroutine.
type executor struct {
	run func(*CommandBuffer) error

	mu      sync.Mutex
	pending []*CommandBuffer
	running bool

	// last is the most recently submitted buffer. Execution is serial, so
	// its completion implies completion of everything before it.
	last *CommandBuffer
}

func newExecutor(run func(*CommandBuffer) error) *executor {
	return &executor{run: run}
}

// submit enqueues cb and starts the worker if it is not running.
func (e *executor) submit(cb *CommandBuffer) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.pending = append(e.pending, cb)
	e.last = cb
	if !e.running {
		e.running = true
		go e.worker()
	}
}

func (e *executor) worker() {
	for {
		e.mu.Lock()
		if len(e.pending) == 0 {
			e.running = false
			e.mu.Unlock()
			return
		}
		cb := e.pending[0]
		e.pending[0] = nil
		e.pending = e.pending[1:]
		e.mu.Unlock()

		cb.finish(e.run(cb))
	}
}

// waitIdle blocks until every buffer submitted so far has completed.
func (e *executor) waitIdle(ctx context.Context) error {
	e.mu.Lock()
	last := e.last
	e.mu.Unlock()
	if last == nil {
		return nil
	}
	return last.wait(ctx)
}

// CommandQueue creates command buffers that execute on the device.
type CommandQueue struct {
	device *Device
}

// MakeCommandBuffer returns a new buffer in the NotEnqueued state.
func (q *CommandQueue) MakeCommandBuffer() (gpucore.CommandBuffer, error) {
	return &CommandBuffer{
		queue: q,
		done:  make(chan struct{}),
	}, nil
}

// WaitIdle blocks until every buffer committed to q has completed. All
// queues of a device share one serial executor, so this waits for the
// device backlog.
func (q *CommandQueue) WaitIdle(ctx context.Context) error {
	return q.device.exec.waitIdle(ctx)
}

// enqueue submits cb to the device executor.
func (q *CommandQueue) enqueue(cb *CommandBuffer) {
	backend.Logger().Debug("software: command buffer committed", "passes", len(cb.passes))
	q.device.exec.submit(cb)
}

var _ gpucore.CommandQueue = (*CommandQueue)(nil)
