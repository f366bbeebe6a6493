package parallel

import (
	"image"
	"sync"
)

// MinParallelPixels is the area below which Rows runs inline.
const MinParallelPixels = 64 * 64

var (
	defaultOnce sync.Once
	defaultPool *WorkerPool
)

// Default returns a process-wide pool sized to GOMAXPROCS, created on first use.
func Default() *WorkerPool {
	defaultOnce.Do(func() {
		defaultPool = NewWorkerPool(0)
	})
	return defaultPool
}

// Rows calls fn once per horizontal band of r, covering every row exactly
// once. Bands run on pool when r is large enough, otherwise fn is called
// once with the whole range. A nil pool always runs inline.
func Rows(pool *WorkerPool, r image.Rectangle, fn func(y0, y1 int)) {
	if r.Empty() {
		return
	}
	rows := r.Dy()
	if pool == nil || r.Dx()*rows < MinParallelPixels || pool.Workers() == 1 {
		fn(r.Min.Y, r.Max.Y)
		return
	}

	bands := min(pool.Workers()*2, rows)
	per := (rows + bands - 1) / bands
	work := make([]func(), 0, bands)
	for y0 := r.Min.Y; y0 < r.Max.Y; y0 += per {
		y1 := min(y0+per, r.Max.Y)
		work = append(work, func() { fn(y0, y1) })
	}
	pool.ExecuteAll(work)
}
