// Command pixpaint runs a scripted paint session and writes the result as PNG.
//
// It draws a framed, filled sprite with the configured brush, erases a
// stripe, then undoes and redoes the erase through the undo log.
package main

import (
	"flag"
	"fmt"
	"image"
	"log"
	"log/slog"
	"os"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/anthonynsimon/bild/transform"

	"github.com/gogpu/pixpaint"
	"github.com/gogpu/pixpaint/brush"
	"github.com/gogpu/pixpaint/config"
	"github.com/gogpu/pixpaint/editor"
	"github.com/gogpu/pixpaint/gpu"
	"github.com/gogpu/pixpaint/internal/parallel"
	"github.com/gogpu/pixpaint/undo"
)

func main() {
	var (
		configPath = flag.String("config", "", "TOML configuration file")
		width      = flag.Int("width", 32, "sprite width")
		height     = flag.Int("height", 32, "sprite height")
		brushPath  = flag.String("brush", "", "PNG used as a custom brush")
		output     = flag.String("output", "pixpaint.png", "output file")
		scale      = flag.Int("scale", 1, "nearest-neighbour upscale of the output")
		useGPU     = flag.Bool("gpu", false, "try GPU stroke staging (needs a device)")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	pixpaint.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}

	if *useGPU {
		// Headless: without a host window there is no device, so this logs
		// the CPU fallback.
		if _, err := gpu.Register(gpu.NullDevice{}); err == nil {
			defer pixpaint.UnregisterAccelerator()
		}
	}

	buf, err := pixpaint.NewPixelBuffer(*width, *height)
	if err != nil {
		log.Fatalf("Failed to create buffer: %v", err)
	}
	host := newSession(buf)

	pool := parallel.NewWorkerPool(cfg.Parallel.Workers)
	defer pool.Close()

	ed := editor.New(
		editor.WithUndoOptions(cfg.UndoOptions()...),
		editor.WithPool(pool),
		editor.WithParams(cfg.BrushParams()),
		editor.WithFillOptions(cfg.FillParams()),
	)
	if *brushPath != "" {
		img, err := imgio.Open(*brushPath)
		if err != nil {
			log.Fatalf("Failed to load brush: %v", err)
		}
		ed.SetSprite(brush.SpriteFromImage(1, img))
	}
	if err := ed.Open(host); err != nil {
		log.Fatal(err)
	}
	if err := ed.Activate(); err != nil {
		log.Fatal(err)
	}

	if err := run(ed, host); err != nil {
		log.Fatalf("Session failed: %v", err)
	}
	if err := ed.Close(); err != nil {
		log.Fatal(err)
	}

	var out image.Image = buf.ToImage()
	if *scale > 1 {
		out = transform.Resize(out, *width**scale, *height**scale, transform.NearestNeighbor)
	}
	if err := imgio.Save(*output, out, imgio.PNGEncoder()); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}

	l := ed.Log()
	log.Printf("Saved %s (%dx%d): %d transactions, %d bytes of history, %d saves\n",
		*output, *width, *height, l.Len(), l.MemoryBytes(), host.saves)
}

// run drives the editor the way a host UI would.
func run(ed *editor.Editor, s *session) error {
	w, h := float64(s.buf.Width()-1), float64(s.buf.Height()-1)
	frame := []editor.Pointer{{X: 1, Y: 1}, {X: w - 1, Y: 1}, {X: w - 1, Y: h - 1}, {X: 1, Y: h - 1}, {X: 1, Y: 1}}

	s.next()
	if err := drag(ed, frame...); err != nil {
		return fmt.Errorf("frame: %w", err)
	}

	s.next()
	fillColor, _ := pixpaint.Hex("#3a7bd5")
	ed.SetColor(fillColor)
	if err := ed.SetTool(editor.ToolFill); err != nil {
		return err
	}
	if err := ed.PointerDown(editor.Pointer{X: w / 2, Y: h / 2}); err != nil {
		return fmt.Errorf("fill: %w", err)
	}

	s.next()
	if err := ed.SetTool(editor.ToolErase); err != nil {
		return err
	}
	if err := drag(ed, editor.Pointer{X: 0, Y: h / 2}, editor.Pointer{X: w, Y: h / 2}); err != nil {
		return fmt.Errorf("erase: %w", err)
	}

	// Undo the erase, then redo it.
	if err := ed.HandleUndoRedo(s.group-1, false); err != nil {
		return fmt.Errorf("undo: %w", err)
	}
	return ed.HandleUndoRedo(s.group, true)
}

func drag(ed *editor.Editor, points ...editor.Pointer) error {
	if err := ed.PointerDown(points[0]); err != nil {
		return err
	}
	for _, p := range points[1:] {
		if err := ed.PointerMove(p); err != nil {
			return err
		}
	}
	return ed.PointerUp(points[len(points)-1])
}

// session is a single-sprite host.
type session struct {
	buf   *pixpaint.PixelBuffer
	group int64
	saves int
}

func newSession(buf *pixpaint.PixelBuffer) *session {
	return &session{buf: buf}
}

func (s *session) next() { s.group++ }

func (s *session) LookupBuffer(id pixpaint.BufferID) (*pixpaint.PixelBuffer, error) {
	if id != s.buf.ID() {
		return nil, fmt.Errorf("%w: %d", undo.ErrBufferNotFound, id)
	}
	return s.buf, nil
}

func (s *session) TargetBuffer() (*pixpaint.PixelBuffer, bool) { return s.buf, true }

func (s *session) PixelCoordinate(p editor.Pointer) image.Point {
	return image.Pt(int(p.X), int(p.Y))
}

func (s *session) UndoGroup() int64 { return s.group }

func (s *session) RequestSave(pixpaint.BufferID, []uint8) { s.saves++ }
