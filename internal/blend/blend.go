// Package blend implements per-pixel compositing for the paint engine.
//
// All operations work on straight (non-premultiplied) alpha RGBA8. Three
// modes exist:
//   - Replace: dst = src
//   - Alpha:   out.rgb = src.rgb*sa + dst.rgb*(1-sa), out.a = sa + da*(1-sa)
//   - Max:     per-channel max, alpha included
//
// Alpha blending is done in linear light. For sRGB buffers the RGB channels
// are decoded and re-encoded through the tables in internal/color; linear
// buffers are blended directly.
package blend

import (
	"github.com/gogpu/pixpaint"
	"github.com/gogpu/pixpaint/internal/color"
)

// Func composites src onto dst and returns the result.
type Func func(dst, src pixpaint.RGBA8) pixpaint.RGBA8

// For returns the composite function for a mode and destination color space.
// Unknown modes fall back to Alpha.
func For(mode pixpaint.BlendMode, cs pixpaint.ColorSpace) Func {
	switch mode {
	case pixpaint.BlendReplace:
		return Replace
	case pixpaint.BlendMax:
		return Max
	default:
		if cs == pixpaint.ColorSpaceLinear {
			return AlphaLinear
		}
		return AlphaSRGB
	}
}

// Composite composites a single pixel.
func Composite(dst, src pixpaint.RGBA8, mode pixpaint.BlendMode, cs pixpaint.ColorSpace) pixpaint.RGBA8 {
	return For(mode, cs)(dst, src)
}

// Replace returns src unconditionally.
func Replace(_, src pixpaint.RGBA8) pixpaint.RGBA8 {
	return src
}

// Max returns the per-channel maximum of dst and src, alpha included.
// A fully transparent src leaves dst unchanged.
func Max(dst, src pixpaint.RGBA8) pixpaint.RGBA8 {
	if src.A == 0 {
		return dst
	}
	return pixpaint.RGBA8{
		R: max(dst.R, src.R),
		G: max(dst.G, src.G),
		B: max(dst.B, src.B),
		A: max(dst.A, src.A),
	}
}

// AlphaLinear is straight-alpha "over" for linear-light buffers.
func AlphaLinear(dst, src pixpaint.RGBA8) pixpaint.RGBA8 {
	switch src.A {
	case 0:
		return dst
	case 255:
		return src
	}
	a := unit(src.A)
	ia := 1 - a
	return pixpaint.RGBA8{
		R: mixLinear(dst.R, src.R, a, ia),
		G: mixLinear(dst.G, src.G, a, ia),
		B: mixLinear(dst.B, src.B, a, ia),
		A: overAlpha(dst.A, src.A),
	}
}

// AlphaSRGB is straight-alpha "over" for gamma-encoded buffers. Channels are
// mixed in linear light.
func AlphaSRGB(dst, src pixpaint.RGBA8) pixpaint.RGBA8 {
	switch src.A {
	case 0:
		return dst
	case 255:
		return src
	}
	a := unit(src.A)
	ia := 1 - a
	return pixpaint.RGBA8{
		R: mixSRGB(dst.R, src.R, a, ia),
		G: mixSRGB(dst.G, src.G, a, ia),
		B: mixSRGB(dst.B, src.B, a, ia),
		A: overAlpha(dst.A, src.A),
	}
}

func mixLinear(d, s byte, a, ia float32) byte {
	if d == s {
		return d
	}
	return toByte(unit(s)*a + unit(d)*ia)
}

func mixSRGB(d, s byte, a, ia float32) byte {
	if d == s {
		return d
	}
	return color.LinearToSRGB(color.SRGBToLinear(s)*a + color.SRGBToLinear(d)*ia)
}

// overAlpha computes sa + da*(1-sa).
func overAlpha(da, sa byte) byte {
	return sa + mulDiv255(da, inv255(sa))
}
