package brush

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/pixpaint"
)

var (
	// ErrInvalidSize is returned when a brush size is below 1.
	ErrInvalidSize = errors.New("brush: size must be at least 1")

	// ErrNoSprite is returned when a custom brush has no usable sprite.
	ErrNoSprite = errors.New("brush: custom brush needs a sprite")
)

// Shape selects how a stamp mask is rasterized.
type Shape uint8

const (
	// Circle covers every pixel whose center lies within size/2 of the
	// stamp center.
	Circle Shape = iota

	// Square covers the whole size x size mask.
	Square

	// Custom rescales a sprite to fit the size x size box.
	Custom
)

// String returns the lower-case shape name.
func (s Shape) String() string {
	switch s {
	case Circle:
		return "circle"
	case Square:
		return "square"
	case Custom:
		return "custom"
	default:
		return fmt.Sprintf("Shape(%d)", s)
	}
}

// ParseShape parses a shape name as produced by String.
func ParseShape(name string) (Shape, bool) {
	switch name {
	case "circle", "":
		return Circle, true
	case "square":
		return Square, true
	case "custom":
		return Custom, true
	}
	return 0, false
}

// Generate rasterizes a stamp for shape at the given size. sprite is only
// read for Custom and may be nil otherwise.
func Generate(shape Shape, size int, sprite *Sprite) (*pixpaint.Stamp, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSize, size)
	}
	switch shape {
	case Circle:
		return circle(size), nil
	case Square:
		return square(size), nil
	case Custom:
		return custom(sprite, size)
	default:
		return nil, fmt.Errorf("brush: unknown shape %v", shape)
	}
}

// circleRadius returns the inclusion radius for a circle of diameter size.
// A 3 pixel circle is shrunk so it renders as a plus instead of a full square.
func circleRadius(size int) float64 {
	r := float64(size) / 2
	if size == 3 {
		r -= 0.1
	}
	return r
}

func circle(size int) *pixpaint.Stamp {
	s := newStamp(size, size)
	r := circleRadius(size)
	r2 := r * r
	c := float64(size) / 2
	for y := range size {
		dy := float64(y) + 0.5 - c
		for x := range size {
			dx := float64(x) + 0.5 - c
			if dx*dx+dy*dy <= r2 {
				s.setOpaque(x, y)
			}
		}
	}
	return s.Stamp
}

func square(size int) *pixpaint.Stamp {
	s := newStamp(size, size)
	for i := range s.Mask {
		s.Mask[i] = 0xFF
	}
	return s.Stamp
}

// maskBuilder wraps a stamp under construction.
type maskBuilder struct {
	*pixpaint.Stamp
}

// newStamp allocates a transparent mask pivoted on its center pixel.
// Even sizes pivot on the pixel right and below the geometric center.
func newStamp(w, h int) maskBuilder {
	return maskBuilder{&pixpaint.Stamp{
		Width:  w,
		Height: h,
		Pivot:  image.Pt(w/2, h/2),
		Mask:   make([]uint8, w*h*4),
	}}
}

func (m maskBuilder) setOpaque(x, y int) {
	i := (y*m.Width + x) * 4
	m.Mask[i+0] = 0xFF
	m.Mask[i+1] = 0xFF
	m.Mask[i+2] = 0xFF
	m.Mask[i+3] = 0xFF
}
