package pixpaint

import "image/color"

// RGBA8 is a straight-alpha (non-premultiplied) 8-bit-per-channel color.
// It is the pixel format of every PixelBuffer and Stamp.
type RGBA8 struct {
	R, G, B, A uint8
}

// Common colors.
var (
	Transparent = RGBA8{}
	Black       = RGBA8{A: 255}
	White       = RGBA8{R: 255, G: 255, B: 255, A: 255}
	Red         = RGBA8{R: 255, A: 255}
	Green       = RGBA8{G: 255, A: 255}
	Blue        = RGBA8{B: 255, A: 255}
)

// RGBA implements the color.Color interface.
func (c RGBA8) RGBA() (r, g, b, a uint32) {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}.RGBA()
}

// NRGBA converts the color to the standard library representation.
func (c RGBA8) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// FromColor converts any color.Color to RGBA8.
func FromColor(c color.Color) RGBA8 {
	n, _ := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGBA8{R: n.R, G: n.G, B: n.B, A: n.A}
}

// Hex creates a color from a hex string.
// Supports formats: "RGB", "RGBA", "RRGGBB", "RRGGBBAA", with or without '#'.
// The second result is false when the string is not a valid hex color.
func Hex(hex string) (RGBA8, bool) {
	if hex != "" && hex[0] == '#' {
		hex = hex[1:]
	}

	var r, g, b, a uint32
	a = 255
	ok := true

	switch len(hex) {
	case 3:
		ok = parseHex(hex[0:1], &r) && parseHex(hex[1:2], &g) && parseHex(hex[2:3], &b)
		r, g, b = r*17, g*17, b*17
	case 4:
		ok = parseHex(hex[0:1], &r) && parseHex(hex[1:2], &g) &&
			parseHex(hex[2:3], &b) && parseHex(hex[3:4], &a)
		r, g, b, a = r*17, g*17, b*17, a*17
	case 6:
		ok = parseHex(hex[0:2], &r) && parseHex(hex[2:4], &g) && parseHex(hex[4:6], &b)
	case 8:
		ok = parseHex(hex[0:2], &r) && parseHex(hex[2:4], &g) &&
			parseHex(hex[4:6], &b) && parseHex(hex[6:8], &a)
	default:
		return Black, false
	}
	if !ok {
		return Black, false
	}

	//nolint:gosec // G115: each component is at most 0xff
	return RGBA8{R: uint8(r), G: uint8(g), B: uint8(b), A: uint8(a)}, true
}

// parseHex is a helper for hex parsing
func parseHex(s string, val *uint32) bool {
	*val = 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		*val *= 16
		switch {
		case '0' <= c && c <= '9':
			*val += uint32(c - '0')
		case 'a' <= c && c <= 'f':
			*val += uint32(c - 'a' + 10)
		case 'A' <= c && c <= 'F':
			*val += uint32(c - 'A' + 10)
		default:
			return false
		}
	}
	return true
}

// ColorSpace is the encoding a PixelBuffer's RGB channels are authored in.
// Alpha is always linear.
type ColorSpace uint8

const (
	// ColorSpaceSRGB marks gamma-encoded (sRGB) color data. This is the default.
	ColorSpaceSRGB ColorSpace = iota
	// ColorSpaceLinear marks linear-light color data.
	ColorSpaceLinear
)

// String returns the color space name.
func (cs ColorSpace) String() string {
	switch cs {
	case ColorSpaceSRGB:
		return "sRGB"
	case ColorSpaceLinear:
		return "linear"
	default:
		return "unknown"
	}
}

// BlendMode selects how a stamp pixel is composited onto a destination pixel.
type BlendMode uint8

const (
	// BlendAlpha is straight-alpha "over". It is the default paint mode.
	BlendAlpha BlendMode = iota
	// BlendReplace overwrites the destination (erasing, final settle).
	BlendReplace
	// BlendMax keeps the per-channel maximum, alpha included.
	BlendMax
)

// String returns the blend mode name.
func (m BlendMode) String() string {
	switch m {
	case BlendAlpha:
		return "alpha"
	case BlendReplace:
		return "replace"
	case BlendMax:
		return "max"
	default:
		return "unknown"
	}
}

// ParseBlendMode parses a blend mode name as produced by String.
func ParseBlendMode(s string) (BlendMode, bool) {
	switch s {
	case "alpha", "":
		return BlendAlpha, true
	case "replace":
		return BlendReplace, true
	case "max":
		return BlendMax, true
	default:
		return BlendAlpha, false
	}
}
