package fill

import (
	"image"
	"math/bits"
)

// Selection is a set of pixels of a buffer, stored as a bitmap.
type Selection struct {
	width, height int
	words         []uint64
}

func newSelection(w, h int) *Selection {
	return &Selection{
		width:  w,
		height: h,
		words:  make([]uint64, (w*h+63)/64),
	}
}

func (s *Selection) index(x, y int) int { return y*s.width + x }

func (s *Selection) set(i int) { s.words[i>>6] |= 1 << (uint(i) & 63) }

func (s *Selection) has(i int) bool { return s.words[i>>6]&(1<<(uint(i)&63)) != 0 }

// Contains reports whether (x, y) is selected.
func (s *Selection) Contains(x, y int) bool {
	if x < 0 || y < 0 || x >= s.width || y >= s.height {
		return false
	}
	return s.has(s.index(x, y))
}

// Len returns the number of selected pixels.
func (s *Selection) Len() int {
	n := 0
	for _, w := range s.words {
		n += bits.OnesCount64(w)
	}
	return n
}

// Bounds returns the smallest rectangle containing every selected pixel.
func (s *Selection) Bounds() image.Rectangle {
	var r image.Rectangle
	for y := range s.height {
		for x := range s.width {
			if s.has(s.index(x, y)) {
				r = r.Union(image.Rect(x, y, x+1, y+1))
			}
		}
	}
	return r
}

// SubsetOf reports whether every pixel of s is also in o.
func (s *Selection) SubsetOf(o *Selection) bool {
	if s.width != o.width || s.height != o.height {
		return false
	}
	for i, w := range s.words {
		if w&^o.words[i] != 0 {
			return false
		}
	}
	return true
}
