// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"bytes"
	"errors"
	"image"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/pixpaint"
	"github.com/gogpu/pixpaint/internal/blend"
)

// mockDevice implements gpucontext.Device for testing.
type mockDevice struct{}

func (m *mockDevice) Poll(wait bool) {}
func (m *mockDevice) Destroy()       {}

// mockProvider implements gpucontext.DeviceProvider for testing.
type mockProvider struct {
	device gpucontext.Device
}

func newMockProvider() *mockProvider {
	return &mockProvider{device: &mockDevice{}}
}

func (m *mockProvider) Device() gpucontext.Device             { return m.device }
func (m *mockProvider) Queue() gpucontext.Queue               { return nil }
func (m *mockProvider) Adapter() gpucontext.Adapter           { return nil }
func (m *mockProvider) SurfaceFormat() gputypes.TextureFormat { return gputypes.TextureFormatBGRA8Unorm }
func (m *mockProvider) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Name: "mock", Type: gpucontext.AdapterTypeSoftware}
}

func initAccelerator(t *testing.T) *Accelerator {
	t.Helper()
	a := New(WithDeviceProvider(newMockProvider()))
	if err := a.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(a.Close)
	return a
}

// dot is a 1x1 opaque white stamp.
func dot() *pixpaint.Stamp {
	return &pixpaint.Stamp{Width: 1, Height: 1, Mask: []uint8{255, 255, 255, 255}}
}

func TestInitRequiresDevice(t *testing.T) {
	tests := []struct {
		name     string
		provider gpucontext.DeviceProvider
	}{
		{"nil provider", nil},
		{"null device", NullDevice{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := New(WithDeviceProvider(tt.provider))
			if err := a.Init(); !errors.Is(err, ErrNoDevice) {
				t.Errorf("Init() error = %v, want ErrNoDevice", err)
			}
			if _, err := a.NewStagingTexture(4, 4, pixpaint.ColorSpaceSRGB); !errors.Is(err, ErrNoDevice) {
				t.Errorf("NewStagingTexture() error = %v, want ErrNoDevice", err)
			}
		})
	}
}

func TestNullDevice(t *testing.T) {
	var d NullDevice
	if d.Device() != nil || d.Queue() != nil || d.Adapter() != nil {
		t.Error("NullDevice returned a non-nil handle")
	}
	if d.SurfaceFormat() != gputypes.TextureFormatUndefined {
		t.Errorf("SurfaceFormat() = %v, want undefined", d.SurfaceFormat())
	}
	if got := d.AdapterInfo().Type; got != gpucontext.AdapterTypeUnknown {
		t.Errorf("AdapterInfo().Type = %v, want unknown", got)
	}
}

func TestShadowOnlyWithoutWGPUDevice(t *testing.T) {
	a := initAccelerator(t)
	st, err := a.NewStagingTexture(2, 2, pixpaint.ColorSpaceSRGB)
	if err != nil {
		t.Fatal(err)
	}
	tex := st.(*Texture)
	if tex.DeviceTexture() != nil || tex.View() != nil {
		t.Error("device texture created for a non-wgpu device")
	}
	if err := tex.UploadFromCPU(pixpaint.MustNewPixelBuffer(2, 2)); err != nil {
		t.Errorf("UploadFromCPU() error = %v", err)
	}
}

func TestInvalidShader(t *testing.T) {
	a := New(WithDeviceProvider(newMockProvider()), WithShader("this is not wgsl"))
	if err := a.Init(); !errors.Is(err, ErrShaderCompile) {
		t.Errorf("Init() error = %v, want ErrShaderCompile", err)
	}
}

func TestTextureFormatFollowsColorSpace(t *testing.T) {
	a := initAccelerator(t)
	tests := []struct {
		cs   pixpaint.ColorSpace
		want gputypes.TextureFormat
	}{
		{pixpaint.ColorSpaceSRGB, gputypes.TextureFormatRGBA8UnormSrgb},
		{pixpaint.ColorSpaceLinear, gputypes.TextureFormatRGBA8Unorm},
	}
	for _, tt := range tests {
		st, err := a.NewStagingTexture(2, 2, tt.cs)
		if err != nil {
			t.Fatal(err)
		}
		tex := st.(*Texture)
		if tex.Format() != tt.want {
			t.Errorf("Format() for %v = %v, want %v", tt.cs, tex.Format(), tt.want)
		}
		if tex.Usage() != DefaultTextureUsage {
			t.Errorf("Usage() = %v, want %v", tex.Usage(), DefaultTextureUsage)
		}
	}
}

func TestTextureRoundTrip(t *testing.T) {
	a := initAccelerator(t)
	src := pixpaint.MustNewPixelBuffer(4, 4)
	src.Clear(pixpaint.Blue)

	st, err := a.NewStagingTexture(4, 4, src.ColorSpace())
	if err != nil {
		t.Fatal(err)
	}
	if err := st.UploadFromCPU(src); err != nil {
		t.Fatal(err)
	}
	if err := st.CompositeStamp(dot(), 1, 2, pixpaint.Red, pixpaint.BlendReplace); err != nil {
		t.Fatal(err)
	}

	dst := pixpaint.MustNewPixelBuffer(4, 4)
	if err := st.FlushToCPU(dst); err != nil {
		t.Fatal(err)
	}
	if got := dst.Pixel(1, 2); got != pixpaint.Red {
		t.Errorf("Pixel(1,2) = %v, want red", got)
	}
	if got := dst.Pixel(0, 0); got != pixpaint.Blue {
		t.Errorf("Pixel(0,0) = %v, want blue", got)
	}
}

func TestTextureMatchesCPU(t *testing.T) {
	a := initAccelerator(t)
	cpu := pixpaint.MustNewPixelBuffer(3, 3)
	cpu.Clear(pixpaint.White)
	st, _ := a.NewStagingTexture(3, 3, cpu.ColorSpace())
	_ = st.UploadFromCPU(cpu)

	paint := pixpaint.RGBA8{R: 200, G: 10, A: 100}
	_ = st.CompositeStamp(dot(), 1, 1, paint, pixpaint.BlendAlpha)
	gpuOut := pixpaint.MustNewPixelBuffer(3, 3)
	_ = st.FlushToCPU(gpuOut)

	blend.Stamp(cpu, dot(), 1, 1, paint, pixpaint.BlendAlpha)
	if !bytes.Equal(gpuOut.Data(), cpu.Data()) {
		t.Error("staging composite differs from the CPU composite")
	}
}

func TestCompositeLayerMatchesCPU(t *testing.T) {
	a := initAccelerator(t)
	base := pixpaint.MustNewPixelBuffer(4, 2)
	base.Clear(pixpaint.White)
	layer := pixpaint.MustNewPixelBuffer(4, 2)
	layer.SetPixel(1, 0, pixpaint.RGBA8{R: 255, A: 128})
	layer.SetPixel(2, 1, pixpaint.RGBA8{B: 255, A: 64})

	st, _ := a.NewStagingTexture(4, 2, base.ColorSpace())
	_ = st.UploadFromCPU(base)
	if err := st.CompositeLayer(base, layer, image.Rect(0, 0, 4, 2)); err != nil {
		t.Fatal(err)
	}
	gpuOut := pixpaint.MustNewPixelBuffer(4, 2)
	_ = st.FlushToCPU(gpuOut)

	cpu := base.Clone()
	blend.Over(cpu, base, layer, cpu.Bounds())
	if !bytes.Equal(gpuOut.Data(), cpu.Data()) {
		t.Error("staging layer composite differs from the CPU composite")
	}
	if err := st.CompositeLayer(base, pixpaint.MustNewPixelBuffer(2, 2), image.Rect(0, 0, 1, 1)); !errors.Is(err, pixpaint.ErrSizeMismatch) {
		t.Errorf("CompositeLayer() error = %v, want ErrSizeMismatch", err)
	}
}

func TestFlushRespectsClip(t *testing.T) {
	a := initAccelerator(t)
	st, _ := a.NewStagingTexture(4, 1, pixpaint.ColorSpaceSRGB)
	full := pixpaint.MustNewPixelBuffer(4, 1)
	full.Clear(pixpaint.Red)
	_ = st.UploadFromCPU(full)

	dst := pixpaint.MustNewPixelBuffer(4, 1, pixpaint.WithClip(image.Rect(1, 0, 3, 1)))
	if err := st.FlushToCPU(dst); err != nil {
		t.Fatal(err)
	}
	want := []pixpaint.RGBA8{pixpaint.Transparent, pixpaint.Red, pixpaint.Red, pixpaint.Transparent}
	for x, w := range want {
		if got := dst.Pixel(x, 0); got != w {
			t.Errorf("Pixel(%d,0) = %v, want %v", x, got, w)
		}
	}
}

func TestTextureSizeMismatch(t *testing.T) {
	a := initAccelerator(t)
	st, _ := a.NewStagingTexture(4, 4, pixpaint.ColorSpaceSRGB)
	small := pixpaint.MustNewPixelBuffer(2, 2)
	if err := st.UploadFromCPU(small); !errors.Is(err, pixpaint.ErrSizeMismatch) {
		t.Errorf("UploadFromCPU() error = %v, want ErrSizeMismatch", err)
	}
	if err := st.FlushToCPU(small); !errors.Is(err, pixpaint.ErrSizeMismatch) {
		t.Errorf("FlushToCPU() error = %v, want ErrSizeMismatch", err)
	}
}

func TestReleasedTexture(t *testing.T) {
	a := initAccelerator(t)
	st, _ := a.NewStagingTexture(2, 2, pixpaint.ColorSpaceSRGB)
	if n, b := a.Stats(); n != 1 || b != 16 {
		t.Errorf("Stats() = %d, %d; want 1, 16", n, b)
	}
	st.Close()
	st.Close()
	if n, b := a.Stats(); n != 0 || b != 0 {
		t.Errorf("Stats() after Close = %d, %d; want 0, 0", n, b)
	}

	buf := pixpaint.MustNewPixelBuffer(2, 2)
	if err := st.UploadFromCPU(buf); !errors.Is(err, ErrTextureReleased) {
		t.Errorf("UploadFromCPU() error = %v, want ErrTextureReleased", err)
	}
	if err := st.CompositeStamp(dot(), 0, 0, pixpaint.Red, pixpaint.BlendReplace); !errors.Is(err, ErrTextureReleased) {
		t.Errorf("CompositeStamp() error = %v, want ErrTextureReleased", err)
	}
	if err := st.CompositeLayer(buf, buf, buf.Bounds()); !errors.Is(err, ErrTextureReleased) {
		t.Errorf("CompositeLayer() error = %v, want ErrTextureReleased", err)
	}
	if err := st.FlushToCPU(buf); !errors.Is(err, ErrTextureReleased) {
		t.Errorf("FlushToCPU() error = %v, want ErrTextureReleased", err)
	}
}

func TestAcceleratorCloseReleasesTextures(t *testing.T) {
	a := New(WithDeviceProvider(newMockProvider()))
	if err := a.Init(); err != nil {
		t.Fatal(err)
	}
	st, _ := a.NewStagingTexture(2, 2, pixpaint.ColorSpaceSRGB)
	a.Close()
	if !st.(*Texture).IsReleased() {
		t.Error("texture not released by accelerator Close")
	}
	if _, err := a.NewStagingTexture(2, 2, pixpaint.ColorSpaceSRGB); !errors.Is(err, ErrNoDevice) {
		t.Errorf("NewStagingTexture() after Close error = %v, want ErrNoDevice", err)
	}
}

func TestTakeDirty(t *testing.T) {
	a := initAccelerator(t)
	st, _ := a.NewStagingTexture(4, 4, pixpaint.ColorSpaceSRGB)
	tex := st.(*Texture)
	_ = tex.CompositeStamp(dot(), 2, 1, pixpaint.Red, pixpaint.BlendReplace)
	if got, want := tex.TakeDirty(), image.Rect(2, 1, 3, 2); got != want {
		t.Errorf("TakeDirty() = %v, want %v", got, want)
	}
	if !tex.TakeDirty().Empty() {
		t.Error("TakeDirty() did not reset")
	}
}

func TestRegister(t *testing.T) {
	t.Cleanup(pixpaint.UnregisterAccelerator)

	if _, err := Register(NullDevice{}); !errors.Is(err, ErrNoDevice) {
		t.Errorf("Register(NullDevice) error = %v, want ErrNoDevice", err)
	}
	if pixpaint.CurrentAccelerator() != nil {
		t.Error("failed Register left an accelerator registered")
	}

	a, err := Register(newMockProvider())
	if err != nil {
		t.Fatal(err)
	}
	if pixpaint.CurrentAccelerator() != a {
		t.Error("CurrentAccelerator() is not the registered accelerator")
	}
}
