package stroke

import "image"

// Line calls fn for every pixel on the Bresenham line from a to b, both
// ends included.
func Line(a, b image.Point, fn func(image.Point)) {
	dx := abs(b.X - a.X)
	dy := -abs(b.Y - a.Y)
	sx, sy := 1, 1
	if a.X > b.X {
		sx = -1
	}
	if a.Y > b.Y {
		sy = -1
	}
	err := dx + dy
	p := a
	for {
		fn(p)
		if p == b {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			p.X += sx
		}
		if e2 <= dx {
			err += dx
			p.Y += sy
		}
	}
}

// lineAt returns the pixel Line visits at step i. Step 0 is a.
func lineAt(a, b image.Point, i int) image.Point {
	dx, dy := abs(b.X-a.X), abs(b.Y-a.Y)
	sx, sy := 1, 1
	if a.X > b.X {
		sx = -1
	}
	if a.Y > b.Y {
		sy = -1
	}
	if dx >= dy {
		m := 0
		if dx > 0 {
			m = (2*i*dy + dx) / (2 * dx)
		}
		return image.Pt(a.X+i*sx, a.Y+m*sy)
	}
	m := (2*i*dx + dy) / (2 * dy)
	return image.Pt(a.X+m*sx, a.Y+i*sy)
}

// walkWithin calls fn for the pixels of the line from a to b that lie in r,
// in order, leaving out a. Steps outside r are never visited, so the cost is
// bounded by r rather than the line length. It returns how many pixels of
// the line were left out because they fell outside r.
func walkWithin(a, b image.Point, r image.Rectangle, fn func(image.Point)) (skipped int) {
	dx, dy := abs(b.X-a.X), abs(b.Y-a.Y)
	n := max(dx, dy)
	lo, hi := 1, n
	if dx >= dy {
		lo, hi = stepRange(a.X, b.X, r.Min.X, r.Max.X, lo, hi)
	} else {
		lo, hi = stepRange(a.Y, b.Y, r.Min.Y, r.Max.Y, lo, hi)
	}
	inside := 0
	for i := lo; i <= hi; i++ {
		if p := lineAt(a, b, i); p.In(r) {
			fn(p)
			inside++
		}
	}
	return n - inside
}

// stepRange narrows [lo, hi] to the steps whose major coordinate, moving one
// pixel per step from start toward end, lies in [minV, maxV).
func stepRange(start, end, minV, maxV, lo, hi int) (int, int) {
	if end >= start {
		lo = max(lo, minV-start)
		hi = min(hi, maxV-1-start)
	} else {
		lo = max(lo, start-maxV+1)
		hi = min(hi, start-minV)
	}
	return lo, hi
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
