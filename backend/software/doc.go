// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package software implements a gpucore.Device on the CPU.
//
// Textures are *image.RGBA buffers (premultiplied alpha). Command buffers
// committed to any queue of a device run on one background goroutine in
// commit order, so Commit returns before the draws are visible and
// CommandBuffer.Wait or Device.ReadPixels observe completion.
//
// Points are drawn as anti-aliased discs rasterized with
// golang.org/x/image/vector. Disc coverage masks are cached per diameter
// and sub-pixel offset. Triangles are rasterized directly and either
// filled with the tint color or shaded by sampling the brush texture.
//
// Importing the package registers the "software" backend:
//
//	import _ "github.com/gogpu/ink/backend/software"
package software
