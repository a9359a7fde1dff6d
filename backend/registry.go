// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package backend

import (
	"fmt"
	"sort"
	"sync"

	"github.com/gogpu/ink/gpucore"
)

// registry holds registered device factories.
var (
	registryMu sync.RWMutex
	factories  = make(map[string]DeviceFactory)
	// Priority order for OpenDefault (first device that opens wins).
	backendPriority = []string{BackendWGPU, BackendSoftware}
)

// Register registers a device factory with the given name.
// This is typically called from init() functions in backend packages.
// If a backend with the same name is already registered, it is replaced.
func Register(name string, factory DeviceFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	factories[name] = factory
}

// Unregister removes a backend from the registry.
// This is useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(factories, name)
}

// Available returns the sorted names of registered backends.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered checks if a backend with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := factories[name]
	return ok
}

// Open opens a device from the named backend.
func Open(name string) (gpucore.Device, error) {
	registryMu.RLock()
	factory, ok := factories[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrBackendNotAvailable, name)
	}

	dev, err := factory()
	if err != nil {
		return nil, fmt.Errorf("open %s device: %w", name, err)
	}
	if dev == nil {
		return nil, fmt.Errorf("open %s device: %w", name, ErrNoDevice)
	}
	Logger().Info("backend: device opened", "backend", name, "device", dev.Name())
	return dev, nil
}

// OpenDefault opens the best available device. Backends are tried in
// priority order (wgpu, then software, then any other registered backend
// in name order); a backend that fails to open is skipped with a warning.
func OpenDefault() (gpucore.Device, string, error) {
	tried := make(map[string]bool)
	order := append([]string(nil), backendPriority...)
	order = append(order, Available()...)

	var lastErr error
	for _, name := range order {
		if tried[name] || !IsRegistered(name) {
			continue
		}
		tried[name] = true

		dev, err := Open(name)
		if err != nil {
			Logger().Warn("backend: device unavailable, trying next", "backend", name, "err", err)
			lastErr = err
			continue
		}
		return dev, name, nil
	}

	if lastErr != nil {
		return nil, "", lastErr
	}
	return nil, "", ErrBackendNotAvailable
}
