// Package color provides sRGB <-> linear conversion through lookup tables.
//
// Straight-alpha blending of gamma-encoded buffers is done in linear light:
// each channel is decoded through a 256-entry table, blended in float32 and
// encoded back through a 4096-entry table. Alpha is never gamma-encoded.
//
// References:
//   - sRGB specification: https://www.w3.org/Graphics/Color/sRGB
package color

import "math"

// toLinear maps an sRGB byte to linear light in [0, 1].
var toLinear [256]float32

// toSRGB maps a linear value quantized to 12 bits to an sRGB byte.
var toSRGB [4096]uint8

func init() {
	for i := range toLinear {
		toLinear[i] = SRGBToLinearSlow(uint8(i))
	}
	for i := range toSRGB {
		toSRGB[i] = LinearToSRGBSlow(float32(i) / 4095)
	}
}

// SRGBToLinear converts an sRGB byte to linear float32 using the lookup table.
//
//	l := SRGBToLinear(128) // ~0.2159, not 0.5
func SRGBToLinear(s uint8) float32 {
	return toLinear[s]
}

// LinearToSRGB converts a linear value to an sRGB byte using the lookup table.
// Input is clamped to [0, 1].
//
//	s := LinearToSRGB(0.5) // 188, not 128
func LinearToSRGB(l float32) uint8 {
	if l <= 0 {
		return 0
	}
	if l >= 1 {
		return 255
	}
	return toSRGB[int(l*4095+0.5)]
}

// SRGBToLinearSlow converts an sRGB byte to linear float32 using math.Pow.
// It is the reference the table is built from.
func SRGBToLinearSlow(s uint8) float32 {
	sf := float64(s) / 255
	if sf <= 0.04045 {
		return float32(sf / 12.92)
	}
	return float32(math.Pow((sf+0.055)/1.055, 2.4))
}

// LinearToSRGBSlow converts linear float32 to an sRGB byte using math.Pow.
// It is the reference the table is built from.
func LinearToSRGBSlow(l float32) uint8 {
	lf := math.Max(0, math.Min(1, float64(l)))
	var s float64
	if lf <= 0.0031308 {
		s = lf * 12.92
	} else {
		s = 1.055*math.Pow(lf, 1.0/2.4) - 0.055
	}
	//nolint:gosec // G115: s is in [0, 1]
	return uint8(math.Round(s * 255))
}
