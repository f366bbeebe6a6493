package fill

import (
	"fmt"
	"image"

	"github.com/gogpu/pixpaint"
	"github.com/gogpu/pixpaint/internal/parallel"
)

// Connectivity selects which neighbors a contiguous fill spreads to.
type Connectivity uint8

const (
	// Four spreads to the horizontal and vertical neighbors.
	Four Connectivity = 4
	// Eight also spreads diagonally.
	Eight Connectivity = 8
)

// String returns "4" or "8".
func (c Connectivity) String() string {
	return fmt.Sprintf("%d", uint8(c))
}

// ParseConnectivity converts 4 or 8 to a Connectivity.
func ParseConnectivity(n int) (Connectivity, bool) {
	switch n {
	case 4:
		return Four, true
	case 8:
		return Eight, true
	}
	return 0, false
}

// Options are the fill tool parameters.
type Options struct {
	// Tolerance is the largest per-channel difference that still matches.
	// Zero means exact match.
	Tolerance uint8

	// Connectivity is used by contiguous fill. The zero value means Four.
	Connectivity Connectivity

	// Contiguous restricts the fill to pixels reachable from the seed.
	Contiguous bool

	// Pool runs the row passes. Nil means parallel.Default().
	Pool *parallel.WorkerPool
}

func (o Options) pool() *parallel.WorkerPool {
	if o.Pool != nil {
		return o.Pool
	}
	return parallel.Default()
}

// DefaultOptions returns an exact, 4-connected, contiguous fill.
func DefaultOptions() Options {
	return Options{Connectivity: Four, Contiguous: true}
}

var (
	offsets4 = []image.Point{{0, -1}, {-1, 0}, {1, 0}, {0, 1}}
	offsets8 = []image.Point{
		{-1, -1}, {0, -1}, {1, -1},
		{-1, 0}, {1, 0},
		{-1, 1}, {0, 1}, {1, 1},
	}
)

// Matches reports whether c is within tol of ref on every channel.
// Two fully transparent colors always match.
func Matches(c, ref pixpaint.RGBA8, tol uint8) bool {
	if c.A == 0 && ref.A == 0 {
		return true
	}
	return diff(c.R, ref.R) <= tol &&
		diff(c.G, ref.G) <= tol &&
		diff(c.B, ref.B) <= tol &&
		diff(c.A, ref.A) <= tol
}

func diff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}

// Select returns the pixels a fill from seed would repaint, without writing
// anything. It returns nil when seed is outside the buffer or its clip.
func Select(buf *pixpaint.PixelBuffer, seed image.Point, opts Options) *Selection {
	if !buf.Writable(seed.X, seed.Y) {
		return nil
	}
	ref := buf.Pixel(seed.X, seed.Y)
	if opts.Contiguous {
		return flood(buf, seed, ref, opts)
	}
	return global(buf, ref, opts)
}

// Fill repaints the pixels selected from seed with c and returns how many
// were written. A seed outside the buffer or its clip is a no-op.
func Fill(buf *pixpaint.PixelBuffer, seed image.Point, c pixpaint.RGBA8, opts Options) int {
	sel := Select(buf, seed, opts)
	if sel == nil {
		pixpaint.Logger().Debug("fill seed outside clip", "seed", seed, "clip", buf.Clip())
		return 0
	}
	n := paint(opts.pool(), buf, sel, c)
	pixpaint.Logger().Debug("fill",
		"seed", seed, "contiguous", opts.Contiguous,
		"tolerance", opts.Tolerance, "pixels", n)
	return n
}

// Paint writes c into every selected pixel inside the buffer's clip and
// returns the number written.
func Paint(buf *pixpaint.PixelBuffer, sel *Selection, c pixpaint.RGBA8) int {
	return paint(parallel.Default(), buf, sel, c)
}

func paint(pool *parallel.WorkerPool, buf *pixpaint.PixelBuffer, sel *Selection, c pixpaint.RGBA8) int {
	if sel == nil || sel.width != buf.Width() || sel.height != buf.Height() {
		return 0
	}
	clip := buf.Clip()
	data := buf.Data()
	counts := make([]int, clip.Dy())
	parallel.Rows(pool, clip, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			n := 0
			for x := clip.Min.X; x < clip.Max.X; x++ {
				if !sel.has(sel.index(x, y)) {
					continue
				}
				i := buf.Offset(x, y)
				data[i+0] = c.R
				data[i+1] = c.G
				data[i+2] = c.B
				data[i+3] = c.A
				n++
			}
			counts[y-clip.Min.Y] = n
		}
	})
	total := 0
	for _, n := range counts {
		total += n
	}
	return total
}

// flood walks breadth-first from seed. The buffer is not modified, so every
// comparison sees original colors.
func flood(buf *pixpaint.PixelBuffer, seed image.Point, ref pixpaint.RGBA8, opts Options) *Selection {
	w, h := buf.Width(), buf.Height()
	clip := buf.Clip()
	visited := newSelection(w, h)
	sel := newSelection(w, h)

	offsets := offsets4
	if opts.Connectivity == Eight {
		offsets = offsets8
	}

	start := visited.index(seed.X, seed.Y)
	visited.set(start)
	queue := []image.Point{seed}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		sel.set(sel.index(p.X, p.Y))

		for _, o := range offsets {
			n := p.Add(o)
			if !n.In(clip) {
				continue
			}
			i := visited.index(n.X, n.Y)
			if visited.has(i) {
				continue
			}
			visited.set(i)
			if Matches(buf.Pixel(n.X, n.Y), ref, opts.Tolerance) {
				queue = append(queue, n)
			}
		}
	}
	return sel
}

// global selects every matching pixel in the clip. Rows are matched in
// parallel into per-row lists since one bitmap word can span two rows.
func global(buf *pixpaint.PixelBuffer, ref pixpaint.RGBA8, opts Options) *Selection {
	w, h := buf.Width(), buf.Height()
	clip := buf.Clip()
	sel := newSelection(w, h)
	rows := make([][]int, clip.Dy())

	parallel.Rows(opts.pool(), clip, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			var xs []int
			for x := clip.Min.X; x < clip.Max.X; x++ {
				if Matches(buf.Pixel(x, y), ref, opts.Tolerance) {
					xs = append(xs, x)
				}
			}
			rows[y-clip.Min.Y] = xs
		}
	})
	for dy, xs := range rows {
		y := clip.Min.Y + dy
		for _, x := range xs {
			sel.set(sel.index(x, y))
		}
	}
	return sel
}
