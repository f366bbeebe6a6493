package blend

// mulDiv255 multiplies two bytes and divides by 255 exactly, rounding to nearest.
//
// Formula: t = a*b + 128; (t + t>>8) >> 8
//
// This is Alvy Ray Smith's formula. Exactness matters here: a fully opaque
// factor must reproduce the other operand bit-for-bit.
func mulDiv255(a, b byte) byte {
	t := uint16(a)*uint16(b) + 128
	return byte((t + t>>8) >> 8)
}

// inv255 computes 255 - x (inverse alpha).
func inv255(x byte) byte {
	return 255 - x
}

// unit converts a byte to [0, 1].
func unit(x byte) float32 {
	return float32(x) / 255
}

// toByte rounds a [0, 1] value back to a byte, clamping out-of-range input.
func toByte(x float32) byte {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 255
	}
	return byte(x*255 + 0.5)
}
