package pixpaint

import "image"

// Stamp is an immutable coverage + color mask: one application of a brush.
// The alpha channel of Mask is coverage, RGB is the brush's intrinsic color
// (white for shape brushes). Pivot is the mask pixel placed on the target
// coordinate when the stamp is applied.
type Stamp struct {
	Width  int
	Height int
	Pivot  image.Point
	Mask   []uint8 // straight-alpha RGBA, 4 bytes per pixel
}

// At returns the mask pixel at (x, y) in stamp space.
func (s *Stamp) At(x, y int) RGBA8 {
	i := (y*s.Width + x) * 4
	return RGBA8{R: s.Mask[i], G: s.Mask[i+1], B: s.Mask[i+2], A: s.Mask[i+3]}
}

// Bounds returns the buffer-space rectangle covered when the stamp is
// applied at (x, y).
func (s *Stamp) Bounds(x, y int) image.Rectangle {
	minX := x - s.Pivot.X
	minY := y - s.Pivot.Y
	return image.Rect(minX, minY, minX+s.Width, minY+s.Height)
}

// Tint multiplies a mask pixel by the paint color. A white opaque mask pixel
// yields the paint color unchanged.
func Tint(mask, paint RGBA8) RGBA8 {
	return RGBA8{
		R: mulDiv255(mask.R, paint.R),
		G: mulDiv255(mask.G, paint.G),
		B: mulDiv255(mask.B, paint.B),
		A: mulDiv255(mask.A, paint.A),
	}
}

// mulDiv255 multiplies two bytes and divides by 255 with rounding.
func mulDiv255(a, b uint8) uint8 {
	t := uint16(a)*uint16(b) + 128
	return uint8((t + t>>8) >> 8)
}
