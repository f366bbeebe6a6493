// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu"

	"github.com/gogpu/pixpaint"
)

var (
	// ErrNoDevice is returned when no GPU device is available.
	ErrNoDevice = errors.New("gpu: no device available")

	// ErrShaderCompile is returned when the stamp shader fails to compile.
	ErrShaderCompile = errors.New("gpu: shader compilation failed")
)

// Option configures an Accelerator.
type Option func(*Accelerator)

// WithDeviceProvider sets the host's GPU device. The accelerator never
// creates a device of its own.
func WithDeviceProvider(p gpucontext.DeviceProvider) Option {
	return func(a *Accelerator) {
		a.provider = p
	}
}

// WithShader sets WGSL source for the host's stamp pipeline. It is compiled
// to SPIR-V during Init.
func WithShader(wgsl string) Option {
	return func(a *Accelerator) {
		a.shaderSource = wgsl
	}
}

// Accelerator provides staging textures on a host-supplied device.
type Accelerator struct {
	mu           sync.Mutex
	provider     gpucontext.DeviceProvider
	shaderSource string
	spirv        []uint32
	textures     map[*Texture]struct{}
	bytes        uint64
	initialized  bool
	logger       *slog.Logger
	nextLabel    int
}

var _ pixpaint.Accelerator = (*Accelerator)(nil)

// New creates an accelerator. It must be initialized, usually through
// pixpaint.RegisterAccelerator, before it hands out textures.
func New(opts ...Option) *Accelerator {
	a := &Accelerator{
		textures: make(map[*Texture]struct{}),
		logger:   pixpaint.Logger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Name returns "wgpu".
func (a *Accelerator) Name() string { return "wgpu" }

// SetLogger sets the logger. It is called by pixpaint.SetLogger.
func (a *Accelerator) SetLogger(l *slog.Logger) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.logger = l
}

// Init checks the device and compiles the stamp shader, if any.
func (a *Accelerator) Init() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.provider == nil || a.provider.Device() == nil {
		return ErrNoDevice
	}
	if a.shaderSource != "" {
		code, err := CompileShader(a.shaderSource)
		if err != nil {
			return err
		}
		a.spirv = code
	}
	a.initialized = true
	info := a.provider.AdapterInfo()
	_, native := a.provider.Device().(*wgpu.Device)
	a.logger.Debug("gpu accelerator initialized",
		"adapter", info.Name, "adapter_type", info.Type,
		"device_textures", native,
		"surface_format", a.provider.SurfaceFormat(), "spirv_words", len(a.spirv))
	return nil
}

// NewStagingTexture allocates a staging texture.
func (a *Accelerator) NewStagingTexture(width, height int, cs pixpaint.ColorSpace) (pixpaint.StagingTexture, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.initialized {
		return nil, ErrNoDevice
	}
	a.nextLabel++
	dev, _ := a.provider.Device().(*wgpu.Device)
	queue, _ := a.provider.Queue().(*wgpu.Queue)
	t, err := newTexture(a, dev, queue, width, height, cs, fmt.Sprintf("stroke-staging-%d", a.nextLabel))
	if err != nil {
		return nil, err
	}
	a.textures[t] = struct{}{}
	a.bytes += t.SizeBytes()
	return t, nil
}

func (a *Accelerator) release(t *Texture) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.textures[t]; ok {
		delete(a.textures, t)
		a.bytes -= t.SizeBytes()
	}
}

// SPIRV returns the compiled stamp shader, or nil when none was supplied.
func (a *Accelerator) SPIRV() []uint32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.spirv
}

// Stats reports live textures and their total size.
func (a *Accelerator) Stats() (textures int, bytes uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.textures), a.bytes
}

// Close releases every live texture.
func (a *Accelerator) Close() {
	a.mu.Lock()
	live := make([]*Texture, 0, len(a.textures))
	for t := range a.textures {
		live = append(live, t)
	}
	a.initialized = false
	a.mu.Unlock()

	for _, t := range live {
		t.Close()
	}
}

// CompileShader compiles WGSL to SPIR-V words.
func CompileShader(wgsl string) ([]uint32, error) {
	b, err := naga.Compile(wgsl)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrShaderCompile, err)
	}
	// SPIR-V is little-endian 32-bit words.
	code := make([]uint32, len(b)/4)
	for i := range code {
		code[i] = uint32(b[i*4]) |
			uint32(b[i*4+1])<<8 |
			uint32(b[i*4+2])<<16 |
			uint32(b[i*4+3])<<24
	}
	return code, nil
}
