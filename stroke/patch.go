package stroke

import (
	"image"

	"github.com/gogpu/pixpaint"
)

// patch holds the pixels of a rectangle as they were before a stamp.
type patch struct {
	rect image.Rectangle
	pix  []uint8
}

func savePatch(buf *pixpaint.PixelBuffer, r image.Rectangle) patch {
	r = r.Intersect(buf.Clip())
	p := patch{rect: r}
	if r.Empty() {
		return p
	}
	row := r.Dx() * 4
	p.pix = make([]uint8, 0, row*r.Dy())
	data := buf.Data()
	for y := r.Min.Y; y < r.Max.Y; y++ {
		i := buf.Offset(r.Min.X, y)
		p.pix = append(p.pix, data[i:i+row]...)
	}
	return p
}

func (p patch) restore(buf *pixpaint.PixelBuffer) {
	if p.rect.Empty() {
		return
	}
	row := p.rect.Dx() * 4
	data := buf.Data()
	for y := p.rect.Min.Y; y < p.rect.Max.Y; y++ {
		i := buf.Offset(p.rect.Min.X, y)
		j := (y - p.rect.Min.Y) * row
		copy(data[i:i+row], p.pix[j:j+row])
	}
}
