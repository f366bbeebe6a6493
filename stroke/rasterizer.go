package stroke

import (
	"image"
	"log/slog"

	"github.com/gogpu/pixpaint"
	"github.com/gogpu/pixpaint/internal/blend"
	"github.com/gogpu/pixpaint/internal/parallel"
)

// Settings describe the brush for one stroke.
type Settings struct {
	Stamp        *pixpaint.Stamp
	Paint        pixpaint.RGBA8
	Mode         pixpaint.BlendMode
	PixelPerfect bool
}

// Option configures a Rasterizer.
type Option func(*Rasterizer)

// WithPool sets the worker pool used to composite the accumulation layer.
// A nil pool composites on the calling goroutine.
func WithPool(p *parallel.WorkerPool) Option {
	return func(r *Rasterizer) {
		r.pool = p
	}
}

// WithAccelerator overrides the registered accelerator. Passing nil
// disables GPU preview.
func WithAccelerator(a pixpaint.Accelerator) Option {
	return func(r *Rasterizer) {
		r.accel = a
		r.accelSet = true
	}
}

// WithLogger sets the logger. The default is pixpaint.Logger().
func WithLogger(l *slog.Logger) Option {
	return func(r *Rasterizer) {
		if l != nil {
			r.logger = l
		}
	}
}

// visit is a visited pixel and, for pixel-perfect strokes, the state of the
// stamp target before it was stamped.
type visit struct {
	at    image.Point
	patch patch
}

// Rasterizer draws strokes. It is idle until Begin and returns to idle on
// End. A Rasterizer is not safe for concurrent use.
type Rasterizer struct {
	pool     *parallel.WorkerPool
	accel    pixpaint.Accelerator
	accelSet bool
	logger   *slog.Logger

	active   bool
	buf      *pixpaint.PixelBuffer
	settings Settings
	previous image.Point
	visited  []image.Point
	history  []visit // last visits, pixel-perfect only
	dirty    image.Rectangle
	stamps   int

	// Alpha strokes accumulate into layer and composite over base.
	// pending is not yet settled into buf, preview not yet shown in staging.
	base    *pixpaint.PixelBuffer
	layer   *pixpaint.PixelBuffer
	pending image.Rectangle
	preview image.Rectangle

	staging pixpaint.StagingTexture
}

// New creates an idle rasterizer.
func New(opts ...Option) *Rasterizer {
	r := &Rasterizer{
		pool:   parallel.Default(),
		logger: pixpaint.Logger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Begin starts a stroke on buf at the given pixel and stamps it once.
// A stroke already in progress is ended first.
func (r *Rasterizer) Begin(buf *pixpaint.PixelBuffer, s Settings, at image.Point) {
	if buf == nil || s.Stamp == nil {
		panic("stroke: Begin needs a buffer and a stamp")
	}
	if r.active {
		r.End()
	}
	r.active = true
	r.buf = buf
	r.settings = s
	r.previous = at
	r.visited = r.visited[:0]
	r.history = r.history[:0]
	r.dirty = image.Rectangle{}
	r.pending = image.Rectangle{}
	r.preview = image.Rectangle{}
	r.stamps = 0

	if s.Mode == pixpaint.BlendAlpha {
		r.base = buf.Clone()
		r.layer = pixpaint.MustNewPixelBuffer(buf.Width(), buf.Height(),
			pixpaint.WithClip(buf.Clip()), pixpaint.WithColorSpace(buf.ColorSpace()))
	}
	r.openStaging()

	r.logger.Debug("stroke begin", "buffer", buf.ID(), "at", at, "mode", s.Mode,
		"pixel_perfect", s.PixelPerfect)
	r.visit(at, func() { r.stampAt(at) })
	r.present()
}

// Active reports whether a stroke is in progress.
func (r *Rasterizer) Active() bool { return r.active }

// MoveTo extends the stroke to p, stamping every pixel between the previous
// coordinate and p. Repeating the previous coordinate does nothing.
func (r *Rasterizer) MoveTo(p image.Point) {
	if !r.active || p == r.previous {
		return
	}
	from := r.previous
	r.visit(p, func() {
		r.stamps += walkWithin(from, p, r.stampReach(), r.stampAt)
	})
	r.previous = p
	r.present()
}

// visit records p as visited and runs draw, keeping the pixel-perfect
// history in step.
func (r *Rasterizer) visit(p image.Point, draw func()) {
	inside := p.In(r.buf.Clip())
	if !inside {
		r.history = r.history[:0]
		draw()
		return
	}
	if n := len(r.visited); n > 0 && r.visited[n-1] == p {
		draw()
		return
	}
	r.visited = append(r.visited, p)
	if !r.settings.PixelPerfect {
		draw()
		return
	}

	v := visit{at: p, patch: savePatch(r.target(), r.reach(r.previous, p))}
	draw()
	r.history = append(r.history, v)
	if len(r.history) > 3 {
		r.history = r.history[1:]
	}
	r.correctCorner()
}

// reach returns the rectangle stamps between a and b can touch.
func (r *Rasterizer) reach(a, b image.Point) image.Rectangle {
	s := r.settings.Stamp
	return s.Bounds(a.X, a.Y).Union(s.Bounds(b.X, b.Y))
}

// stampReach returns the stamp positions whose stamp can touch the clip.
func (r *Rasterizer) stampReach() image.Rectangle {
	c := r.buf.Clip()
	if c.Empty() {
		return image.Rectangle{}
	}
	b := r.settings.Stamp.Bounds(0, 0)
	return image.Rect(c.Min.X-b.Max.X+1, c.Min.Y-b.Max.Y+1, c.Max.X-b.Min.X, c.Max.Y-b.Min.Y)
}

// isCorner reports whether a2, a1, a0 (oldest first) form an L of two unit
// steps on different axes.
func isCorner(a2, a1, a0 image.Point) bool {
	if a0.X == a1.X && abs(a0.Y-a1.Y) == 1 && a2.Y == a1.Y && abs(a2.X-a1.X) == 1 {
		return true
	}
	return a0.Y == a1.Y && abs(a0.X-a1.X) == 1 && a2.X == a1.X && abs(a2.Y-a1.Y) == 1
}

// correctCorner drops the middle of an L corner: the target is restored to
// its state before the middle pixel was stamped, then the newest pixel is
// stamped again.
func (r *Rasterizer) correctCorner() {
	n := len(r.history)
	if n < 3 {
		return
	}
	a2, a1, a0 := r.history[n-3], r.history[n-2], r.history[n-1]
	if !isCorner(a2.at, a1.at, a0.at) {
		return
	}
	target := r.target()
	a0.patch.restore(target)
	a1.patch.restore(target)
	r.markChanged(a0.patch.rect.Union(a1.patch.rect))

	redo := visit{at: a0.at, patch: savePatch(target, r.reach(a2.at, a0.at))}
	r.stampAt(a0.at)

	r.history = append(r.history[:n-2], redo)
	r.visited = append(r.visited[:len(r.visited)-2], a0.at)
	if r.layer == nil {
		r.resyncStaging()
	}
	r.logger.Debug("stroke corner removed", "corner", a1.at)
}

// target is the buffer stamps are written to.
func (r *Rasterizer) target() *pixpaint.PixelBuffer {
	if r.layer != nil {
		return r.layer
	}
	return r.buf
}

// stampAt applies the stamp at p to the target. Direct strokes mirror the
// stamp to staging; alpha strokes reach staging through present.
func (r *Rasterizer) stampAt(p image.Point) {
	s := r.settings
	mode := s.Mode
	if r.layer != nil {
		mode = pixpaint.BlendMax
	}
	touched := blend.Stamp(r.target(), s.Stamp, p.X, p.Y, s.Paint, mode)
	r.stamps++
	if touched.Empty() {
		return
	}
	r.markChanged(touched)
	if r.staging != nil && r.layer == nil {
		if err := r.staging.CompositeStamp(s.Stamp, p.X, p.Y, s.Paint, s.Mode); err != nil {
			r.dropStaging(err)
		}
	}
}

func (r *Rasterizer) markChanged(rect image.Rectangle) {
	r.dirty = r.dirty.Union(rect)
	r.pending = r.pending.Union(rect)
	r.preview = r.preview.Union(rect)
}

// present shows layer changes. Without staging they are settled into the
// buffer. With staging the texture composites them and the buffer is only
// settled on demand.
func (r *Rasterizer) present() {
	if r.layer == nil {
		return
	}
	if r.staging == nil {
		r.settle()
		return
	}
	rect := r.preview
	r.preview = image.Rectangle{}
	if rect.Empty() {
		return
	}
	if err := r.staging.CompositeLayer(r.base, r.layer, rect); err != nil {
		r.dropStaging(err)
	}
}

// settle composites the accumulation layer over the pre-stroke pixels for
// every rectangle changed since the last settle.
func (r *Rasterizer) settle() {
	if r.layer == nil || r.pending.Empty() {
		r.pending = image.Rectangle{}
		return
	}
	rect := r.pending
	r.pending = image.Rectangle{}
	parallel.Rows(r.pool, rect, func(y0, y1 int) {
		blend.Over(r.buf, r.base, r.layer, image.Rect(rect.Min.X, y0, rect.Max.X, y1))
	})
}

// Reconcile brings the buffer up to date with everything stamped so far and
// re-uploads it to the staging texture. Call it before reading pixels
// mid-stroke.
func (r *Rasterizer) Reconcile() {
	if !r.active {
		return
	}
	r.settle()
	r.resyncStaging()
}

// End finishes the stroke: the layer is settled into the buffer, the
// staging texture is released, and the rasterizer returns to idle. It
// returns the rectangle of pixels the stroke touched.
func (r *Rasterizer) End() image.Rectangle {
	if !r.active {
		return image.Rectangle{}
	}
	r.settle()
	r.closeStaging()

	dirty := r.dirty
	r.logger.Debug("stroke end", "buffer", r.buf.ID(), "stamps", r.stamps,
		"visited", len(r.visited), "dirty", dirty)

	r.active = false
	r.buf = nil
	r.base = nil
	r.layer = nil
	r.settings = Settings{}
	r.history = r.history[:0]
	return dirty
}

// Line draws a complete stroke from a to b.
func (r *Rasterizer) Line(buf *pixpaint.PixelBuffer, s Settings, a, b image.Point) image.Rectangle {
	r.Begin(buf, s, a)
	r.MoveTo(b)
	return r.End()
}

// Visited returns a copy of the pixels visited by the current or last
// stroke, in order.
func (r *Rasterizer) Visited() []image.Point {
	return append([]image.Point(nil), r.visited...)
}

// Dirty returns the union of rectangles changed by the current or last
// stroke.
func (r *Rasterizer) Dirty() image.Rectangle { return r.dirty }

// Stamps returns how many stamps the current or last stroke applied,
// counting stamps that fell outside the clip.
func (r *Rasterizer) Stamps() int { return r.stamps }

// Previous returns the last coordinate passed to Begin or MoveTo.
func (r *Rasterizer) Previous() image.Point { return r.previous }
