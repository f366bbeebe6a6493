package blend

import (
	"image"

	"github.com/gogpu/pixpaint"
)

// Stamp composites s onto buf with its pivot at (x, y), tinting every mask
// pixel by paint. Mask pixels with zero coverage are skipped under every mode,
// and pixels outside the buffer's clip rectangle are never written.
//
// It returns the buffer-space rectangle that may have changed, which is empty
// when the stamp lies entirely outside the clip.
func Stamp(buf *pixpaint.PixelBuffer, s *pixpaint.Stamp, x, y int, paint pixpaint.RGBA8, mode pixpaint.BlendMode) image.Rectangle {
	r := s.Bounds(x, y).Intersect(buf.Clip())
	if r.Empty() {
		return image.Rectangle{}
	}
	fn := For(mode, buf.ColorSpace())
	data := buf.Data()
	ox := x - s.Pivot.X
	oy := y - s.Pivot.Y
	for py := r.Min.Y; py < r.Max.Y; py++ {
		for px := r.Min.X; px < r.Max.X; px++ {
			m := s.At(px-ox, py-oy)
			if m.A == 0 {
				continue
			}
			i := buf.Offset(px, py)
			dst := pixpaint.RGBA8{R: data[i], G: data[i+1], B: data[i+2], A: data[i+3]}
			out := fn(dst, pixpaint.Tint(m, paint))
			data[i+0] = out.R
			data[i+1] = out.G
			data[i+2] = out.B
			data[i+3] = out.A
		}
	}
	return r
}

// Over writes base with layer composited on top (Alpha mode) into dst for the
// pixels of r. The three buffers must share dimensions; r is clipped to
// dst's clip rectangle. dst may alias base but not layer.
func Over(dst, base, layer *pixpaint.PixelBuffer, r image.Rectangle) {
	r = r.Intersect(dst.Clip())
	fn := For(pixpaint.BlendAlpha, dst.ColorSpace())
	d, b, l := dst.Data(), base.Data(), layer.Data()
	for py := r.Min.Y; py < r.Max.Y; py++ {
		for px := r.Min.X; px < r.Max.X; px++ {
			i := dst.Offset(px, py)
			out := fn(
				pixpaint.RGBA8{R: b[i], G: b[i+1], B: b[i+2], A: b[i+3]},
				pixpaint.RGBA8{R: l[i], G: l[i+1], B: l[i+2], A: l[i+3]},
			)
			d[i+0] = out.R
			d[i+1] = out.G
			d[i+2] = out.B
			d[i+3] = out.A
		}
	}
}
