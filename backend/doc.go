// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package backend is the registry of device implementations.
//
// A backend package registers a [DeviceFactory] from its init function, so
// importing it for side effects is enough to make it available:
//
//	import (
//		"github.com/gogpu/ink/backend"
//		_ "github.com/gogpu/ink/backend/software"
//		_ "github.com/gogpu/ink/backend/wgpu"
//	)
//
//	dev, name, err := backend.OpenDefault()
//
// [OpenDefault] tries "wgpu" first and falls back to "software". [Open]
// opens one backend by name.
//
// The package also owns the logger shared by ink and every backend; see
// [SetLogger].
//
// # Available Backends
//
//   - "software": CPU rasterizer, always available
//   - "wgpu": GPU device on gogpu/wgpu HAL (Vulkan by default)
package backend
