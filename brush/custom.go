package brush

import (
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/pixpaint"
)

// Sprite is the source of a custom brush.
type Sprite struct {
	// ID identifies the sprite for caching. Two sprites with the same ID
	// are assumed to hold the same pixels.
	ID uint64

	// Image holds the sprite pixels.
	Image image.Image

	// Rect is the sprite's pixel rect inside Image.
	// An empty Rect selects all of Image.
	Rect image.Rectangle

	// Pivot is the authored pivot, relative to Rect.Min.
	Pivot image.Point
}

func (s *Sprite) rect() image.Rectangle {
	if s.Rect.Empty() {
		return s.Image.Bounds()
	}
	return s.Rect.Intersect(s.Image.Bounds())
}

// custom rescales the sprite so its longer side equals size, keeping the
// aspect ratio. Sampling is nearest-neighbor so edges stay hard.
func custom(sprite *Sprite, size int) (*pixpaint.Stamp, error) {
	if sprite == nil || sprite.Image == nil {
		return nil, ErrNoSprite
	}
	src := sprite.rect()
	if src.Empty() {
		return nil, ErrNoSprite
	}
	sw, sh := src.Dx(), src.Dy()
	longest := max(sw, sh)
	dw := max(1, (sw*size+longest/2)/longest)
	dh := max(1, (sh*size+longest/2)/longest)

	dst := image.NewNRGBA(image.Rect(0, 0, dw, dh))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), sprite.Image, src, xdraw.Src, nil)

	s := &pixpaint.Stamp{
		Width:  dw,
		Height: dh,
		Pivot: image.Pt(
			mapPivot(sprite.Pivot.X, sw, dw),
			mapPivot(sprite.Pivot.Y, sh, dh),
		),
		Mask: make([]uint8, dw*dh*4),
	}
	for y := range dh {
		row := dst.Pix[y*dst.Stride : y*dst.Stride+dw*4]
		copy(s.Mask[y*dw*4:], row)
	}
	// Fully transparent pixels carry no color; zero them so masks compare equal.
	for i := 0; i < len(s.Mask); i += 4 {
		if s.Mask[i+3] == 0 {
			s.Mask[i], s.Mask[i+1], s.Mask[i+2] = 0, 0, 0
		}
	}
	return s, nil
}

// mapPivot scales p from a span of from pixels to one of to pixels.
func mapPivot(p, from, to int) int {
	m := p * to / from
	return min(max(m, 0), to-1)
}

// SpriteFromImage wraps img as a custom brush sprite pivoted on its center.
func SpriteFromImage(id uint64, img image.Image) *Sprite {
	b := img.Bounds()
	return &Sprite{
		ID:    id,
		Image: img,
		Rect:  b,
		Pivot: image.Pt(b.Dx()/2, b.Dy()/2),
	}
}

// SolidSprite returns a w x h sprite filled with c. Useful as a tinted
// rectangular brush.
func SolidSprite(id uint64, w, h int, c color.Color) *Sprite {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	nc := color.NRGBAModel.Convert(c).(color.NRGBA)
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i+0] = nc.R
		img.Pix[i+1] = nc.G
		img.Pix[i+2] = nc.B
		img.Pix[i+3] = nc.A
	}
	return SpriteFromImage(id, img)
}
