// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/pixpaint"
)

// NullDevice is a DeviceProvider without a device, for headless hosts.
// An Accelerator using it fails Init with ErrNoDevice, which leaves strokes
// on the CPU path.
type NullDevice struct{}

// Device returns nil.
func (NullDevice) Device() gpucontext.Device { return nil }

// Queue returns nil.
func (NullDevice) Queue() gpucontext.Queue { return nil }

// Adapter returns nil.
func (NullDevice) Adapter() gpucontext.Adapter { return nil }

// SurfaceFormat returns the undefined format.
func (NullDevice) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

// AdapterInfo reports an unknown adapter.
func (NullDevice) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Type: gpucontext.AdapterTypeUnknown}
}

var _ gpucontext.DeviceProvider = NullDevice{}

// Register creates an accelerator on provider and registers it. When the
// device is unavailable the error is logged at Warn and nothing is
// registered.
func Register(provider gpucontext.DeviceProvider, opts ...Option) (*Accelerator, error) {
	a := New(append([]Option{WithDeviceProvider(provider)}, opts...)...)
	if err := pixpaint.RegisterAccelerator(a); err != nil {
		pixpaint.Logger().Warn("GPU accelerator not available", "err", err)
		return nil, err
	}
	return a, nil
}
