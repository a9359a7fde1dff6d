// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package ink provides an incremental drawing surface for GPU painting.
//
// # Overview
//
// A [RenderTarget] owns a persistent RGBA8 texture. Every render pass it
// starts loads the previous contents and stores the result, so strokes
// drawn in successive frames accumulate until [RenderTarget.Clear] is
// called. Geometry is supplied in pixel space (origin top-left, y down)
// and mapped to clip space by a 4x4 transform that the target keeps in a
// uniform buffer.
//
// # Quick Start
//
//	import (
//		"github.com/gogpu/ink"
//		"github.com/gogpu/ink/backend"
//		_ "github.com/gogpu/ink/backend/software"
//	)
//
//	dev, _, err := backend.OpenDefault()
//	if err != nil {
//		log.Fatal(err)
//	}
//	rt := ink.NewRenderTarget(512, 512, dev)
//	pipe, _ := dev.MakeRenderPipeline(&gpucore.RenderPipelineDescriptor{
//		Layout:      gpucore.VertexLayoutPoint,
//		ColorFormat: gpucore.TextureFormatRGBA8Unorm,
//	})
//
//	rt.Clear()
//	_ = rt.DrawPoints(pipe, []ink.Point{ink.NewPoint(256, 256, ink.Red, 8)})
//	cb := rt.Commit()
//	_ = cb.Wait(ctx)
//
// # Threading
//
// A RenderTarget is not safe for concurrent use. Calls must come from one
// goroutine or be serialized by the caller. Command buffers execute
// asynchronously; [gpucore.CommandBuffer.Wait] reports completion.
//
// # Coordinate System
//
//   - Origin (0,0) at top-left
//   - X increases right
//   - Y increases down
//   - Pixel (width, height) maps to clip (1, -1)
package ink

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
