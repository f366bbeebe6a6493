package pixpaint

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync/atomic"

	xdraw "golang.org/x/image/draw"
)

// Buffer errors.
var (
	// ErrInvalidDimensions is returned when a buffer is created with a
	// non-positive width or height.
	ErrInvalidDimensions = errors.New("pixpaint: invalid dimensions")

	// ErrSizeMismatch is returned when a snapshot does not match the buffer size.
	ErrSizeMismatch = errors.New("pixpaint: snapshot size does not match buffer")
)

// BufferID identifies a PixelBuffer across undo history.
// The zero value is never assigned by NewPixelBuffer.
type BufferID uint64

var nextBufferID atomic.Uint64

// PixelBuffer is a width x height grid of straight-alpha RGBA8 pixels
// backing a texture, plus the clip ("sprite") rectangle edits are confined to.
//
// A texture may back several sprites; each sprite edits the shared buffer
// through its own clip rectangle. Writes outside the clip are dropped even
// when they fall inside the buffer.
//
// PixelBuffer is not safe for concurrent mutation.
type PixelBuffer struct {
	id     BufferID
	width  int
	height int
	data   []uint8 // RGBA, 4 bytes per pixel, row-major
	clip   image.Rectangle
	space  ColorSpace
}

// BufferOption configures a PixelBuffer during creation.
type BufferOption func(*PixelBuffer)

// WithClip sets the clip rectangle. It is intersected with the buffer bounds.
func WithClip(r image.Rectangle) BufferOption {
	return func(b *PixelBuffer) {
		b.clip = r
	}
}

// WithColorSpace declares the encoding of the buffer's RGB channels.
func WithColorSpace(cs ColorSpace) BufferOption {
	return func(b *PixelBuffer) {
		b.space = cs
	}
}

// WithID assigns a host-chosen id instead of an automatically allocated one.
func WithID(id BufferID) BufferOption {
	return func(b *PixelBuffer) {
		b.id = id
	}
}

// NewPixelBuffer creates a transparent buffer. The clip rectangle defaults to
// the whole buffer.
func NewPixelBuffer(width, height int, opts ...BufferOption) (*PixelBuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	b := &PixelBuffer{
		width:  width,
		height: height,
		data:   make([]uint8, width*height*4),
	}
	b.clip = b.Bounds()
	for _, opt := range opts {
		opt(b)
	}
	b.clip = b.clip.Intersect(b.Bounds())
	if b.id == 0 {
		b.id = BufferID(nextBufferID.Add(1))
	}
	return b, nil
}

// MustNewPixelBuffer is like NewPixelBuffer but panics on error.
func MustNewPixelBuffer(width, height int, opts ...BufferOption) *PixelBuffer {
	b, err := NewPixelBuffer(width, height, opts...)
	if err != nil {
		panic(err)
	}
	return b
}

// FromImage creates a buffer holding a straight-alpha copy of img.
func FromImage(img image.Image, opts ...BufferOption) (*PixelBuffer, error) {
	bounds := img.Bounds()
	b, err := NewPixelBuffer(bounds.Dx(), bounds.Dy(), opts...)
	if err != nil {
		return nil, err
	}
	dst := &image.NRGBA{Pix: b.data, Stride: b.width * 4, Rect: b.Bounds()}
	xdraw.Draw(dst, dst.Rect, img, bounds.Min, xdraw.Src)
	return b, nil
}

// ID returns the buffer id.
func (b *PixelBuffer) ID() BufferID {
	return b.id
}

// Width returns the width of the buffer.
func (b *PixelBuffer) Width() int {
	return b.width
}

// Height returns the height of the buffer.
func (b *PixelBuffer) Height() int {
	return b.height
}

// Data returns the raw pixel data (straight-alpha RGBA).
func (b *PixelBuffer) Data() []uint8 {
	return b.data
}

// ColorSpace returns the declared encoding of the RGB channels.
func (b *PixelBuffer) ColorSpace() ColorSpace {
	return b.space
}

// Clip returns the clip rectangle.
func (b *PixelBuffer) Clip() image.Rectangle {
	return b.clip
}

// SetClip replaces the clip rectangle, intersected with the buffer bounds.
func (b *PixelBuffer) SetClip(r image.Rectangle) {
	b.clip = r.Intersect(b.Bounds())
}

// InBounds reports whether (x, y) lies inside the buffer.
func (b *PixelBuffer) InBounds(x, y int) bool {
	return x >= 0 && x < b.width && y >= 0 && y < b.height
}

// Writable reports whether (x, y) lies inside both the buffer and the clip.
func (b *PixelBuffer) Writable(x, y int) bool {
	return b.InBounds(x, y) && image.Pt(x, y).In(b.clip)
}

// Offset returns the byte offset of pixel (x, y). The coordinate must be in bounds.
func (b *PixelBuffer) Offset(x, y int) int {
	return (y*b.width + x) * 4
}

// Pixel returns the color at (x, y), or Transparent when out of bounds.
func (b *PixelBuffer) Pixel(x, y int) RGBA8 {
	if !b.InBounds(x, y) {
		return Transparent
	}
	i := b.Offset(x, y)
	return RGBA8{R: b.data[i], G: b.data[i+1], B: b.data[i+2], A: b.data[i+3]}
}

// SetPixel writes the color at (x, y). Writes outside the clip are ignored.
func (b *PixelBuffer) SetPixel(x, y int, c RGBA8) {
	if !b.Writable(x, y) {
		return
	}
	i := b.Offset(x, y)
	b.data[i+0] = c.R
	b.data[i+1] = c.G
	b.data[i+2] = c.B
	b.data[i+3] = c.A
}

// Clear fills the clip rectangle with a color.
func (b *PixelBuffer) Clear(c RGBA8) {
	for y := b.clip.Min.Y; y < b.clip.Max.Y; y++ {
		for x := b.clip.Min.X; x < b.clip.Max.X; x++ {
			i := b.Offset(x, y)
			b.data[i+0] = c.R
			b.data[i+1] = c.G
			b.data[i+2] = c.B
			b.data[i+3] = c.A
		}
	}
}

// Snapshot returns a copy of the whole pixel array.
func (b *PixelBuffer) Snapshot() []uint8 {
	s := make([]uint8, len(b.data))
	copy(s, b.data)
	return s
}

// Restore overwrites the whole pixel array with a snapshot taken earlier.
// Restore ignores the clip rectangle: snapshots are whole-buffer deltas.
func (b *PixelBuffer) Restore(snapshot []uint8) error {
	if len(snapshot) != len(b.data) {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrSizeMismatch, len(snapshot), len(b.data))
	}
	copy(b.data, snapshot)
	return nil
}

// CopyRect copies the pixels of r from src into b. Both buffers must have
// the same dimensions; r is clipped to b's clip rectangle.
func (b *PixelBuffer) CopyRect(src *PixelBuffer, r image.Rectangle) {
	if src.width != b.width || src.height != b.height {
		panic("pixpaint: CopyRect between buffers of different size")
	}
	r = r.Intersect(b.clip)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		i := b.Offset(r.Min.X, y)
		j := b.Offset(r.Max.X, y)
		copy(b.data[i:j], src.data[i:j])
	}
}

// Clone returns a deep copy sharing the id, clip and color space.
func (b *PixelBuffer) Clone() *PixelBuffer {
	return &PixelBuffer{
		id:     b.id,
		width:  b.width,
		height: b.height,
		data:   b.Snapshot(),
		clip:   b.clip,
		space:  b.space,
	}
}

// ToImage converts the buffer to an image.NRGBA.
func (b *PixelBuffer) ToImage() *image.NRGBA {
	img := image.NewNRGBA(b.Bounds())
	copy(img.Pix, b.data)
	return img
}

// At implements the image.Image interface.
func (b *PixelBuffer) At(x, y int) color.Color {
	return b.Pixel(x, y).NRGBA()
}

// Bounds implements the image.Image interface.
func (b *PixelBuffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.width, b.height)
}

// ColorModel implements the image.Image interface.
func (b *PixelBuffer) ColorModel() color.Model {
	return color.NRGBAModel
}
