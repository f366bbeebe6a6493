package pixpaint

import (
	"errors"
	"image"
	"sync"
)

// ErrFallbackToCPU indicates the GPU accelerator cannot handle this operation.
// The caller should transparently fall back to CPU compositing.
var ErrFallbackToCPU = errors.New("pixpaint: falling back to CPU compositing")

// StagingTexture is a GPU-side copy of a buffer used for live stroke preview.
//
// The CPU PixelBuffer is always the source of truth. A staging texture only
// mirrors it: stamps are composited into it while a stroke is in flight, and
// it is reconciled with the CPU buffer before any undo snapshot is taken and
// before any fill reads pixels.
//
// Strokes that write the buffer directly (Replace, Max) mirror each stamp
// with CompositeStamp. Alpha strokes accumulate on the CPU and are previewed
// with CompositeLayer, so overlapping stamps blend once.
type StagingTexture interface {
	// UploadFromCPU replaces the texture contents with src.
	UploadFromCPU(src *PixelBuffer) error

	// CompositeStamp composites stamp at (x, y), tinted by paint, under mode.
	// Pixels outside clip are not touched.
	// Returns ErrFallbackToCPU if the texture cannot perform the operation.
	CompositeStamp(stamp *Stamp, x, y int, paint RGBA8, mode BlendMode) error

	// CompositeLayer writes base with layer alpha-composited on top into the
	// texture for the pixels of r. base and layer have the texture's size.
	// Returns ErrFallbackToCPU if the texture cannot perform the operation.
	CompositeLayer(base, layer *PixelBuffer, r image.Rectangle) error

	// FlushToCPU writes the texture contents into dst, limited to dst's clip.
	FlushToCPU(dst *PixelBuffer) error

	// Close releases GPU resources. The texture must not be used afterwards.
	Close()
}

// Accelerator is an optional GPU compositing provider.
//
// When registered via RegisterAccelerator, stroke rasterization mirrors
// stamps into a StagingTexture for preview. If the accelerator fails at any
// point the stroke continues on the CPU path alone.
type Accelerator interface {
	// Name returns the accelerator name (e.g., "wgpu").
	Name() string

	// Init initializes GPU resources. Called once during registration.
	Init() error

	// Close releases GPU resources.
	Close()

	// NewStagingTexture allocates a staging texture for a buffer of the given size.
	NewStagingTexture(width, height int, cs ColorSpace) (StagingTexture, error)
}

var (
	accelMu sync.RWMutex
	accel   Accelerator
)

// RegisterAccelerator registers a GPU accelerator for stroke preview.
//
// Only one accelerator can be registered. Subsequent calls replace the previous one.
// The accelerator's Init() method is called during registration.
// If Init() fails, the accelerator is not registered and the error is returned.
func RegisterAccelerator(a Accelerator) error {
	if a == nil {
		return errors.New("pixpaint: accelerator must not be nil")
	}
	if err := a.Init(); err != nil {
		return err
	}
	accelMu.Lock()
	old := accel
	accel = a
	accelMu.Unlock()
	if old != nil {
		old.Close()
	}
	propagateLogger(a, Logger())
	Logger().Info("accelerator registered", "name", a.Name())
	return nil
}

// UnregisterAccelerator closes and removes the registered accelerator, if any.
func UnregisterAccelerator() {
	accelMu.Lock()
	old := accel
	accel = nil
	accelMu.Unlock()
	if old != nil {
		old.Close()
	}
}

// CurrentAccelerator returns the currently registered accelerator, or nil if none.
func CurrentAccelerator() Accelerator {
	accelMu.RLock()
	a := accel
	accelMu.RUnlock()
	return a
}
