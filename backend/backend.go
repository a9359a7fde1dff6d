// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package backend

import (
	"errors"

	"github.com/gogpu/ink/gpucore"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not registered.
	ErrBackendNotAvailable = errors.New("backend: not available")

	// ErrNoDevice is returned when a backend is registered but cannot open a device.
	ErrNoDevice = errors.New("backend: no device")
)

// Backend name constants.
const (
	// BackendSoftware is the name of the CPU rasterizer device.
	BackendSoftware = "software"

	// BackendWGPU is the name of the gogpu/wgpu HAL device.
	BackendWGPU = "wgpu"
)

// DeviceFactory opens a new device. Backends register a factory from an
// init function in their package.
type DeviceFactory func() (gpucore.Device, error)
