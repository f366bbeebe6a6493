// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package editor

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gogpu/pixpaint"
	"github.com/gogpu/pixpaint/brush"
	"github.com/gogpu/pixpaint/fill"
	"github.com/gogpu/pixpaint/internal/parallel"
	"github.com/gogpu/pixpaint/stroke"
	"github.com/gogpu/pixpaint/undo"
)

// Common errors returned by Editor operations.
var (
	// ErrNotOpen is returned when the editor has no host.
	ErrNotOpen = errors.New("editor: not open")

	// ErrAlreadyOpen is returned by Open on an editor that already has a host.
	ErrAlreadyOpen = errors.New("editor: already open")

	// ErrNotActive is returned for input received before Activate.
	ErrNotActive = errors.New("editor: not active")

	// ErrNoTarget is returned when the host has no editable buffer.
	ErrNoTarget = errors.New("editor: no target buffer")
)

type state uint8

const (
	stateClosed state = iota
	stateOpen
	stateActive
)

// Option configures an Editor.
type Option func(*Editor)

// WithUndoLog makes the editor record into l instead of a log of its own.
// The caller is then responsible for l's resolver and Applied hook.
func WithUndoLog(l *undo.Log) Option {
	return func(e *Editor) {
		e.log = l
	}
}

// WithUndoOptions adds options for the editor's own undo log. They are
// ignored when WithUndoLog is used.
func WithUndoOptions(opts ...undo.Option) Option {
	return func(e *Editor) {
		e.undoOpts = append(e.undoOpts, opts...)
	}
}

// WithStrokeOptions configures the stroke rasterizer.
func WithStrokeOptions(opts ...stroke.Option) Option {
	return func(e *Editor) {
		e.strokeOpts = append(e.strokeOpts, opts...)
	}
}

// WithPool runs stroke compositing and fill row passes on p. Fill options
// that name a pool of their own keep it.
func WithPool(p *parallel.WorkerPool) Option {
	return func(e *Editor) {
		e.pool = p
	}
}

// WithBrushCache shares a stamp cache between editors.
func WithBrushCache(c *brush.Cache) Option {
	return func(e *Editor) {
		e.brushes = c
	}
}

// WithParams sets the initial brush parameters.
func WithParams(p brush.Params) Option {
	return func(e *Editor) {
		e.params = p
	}
}

// WithFillOptions sets the initial fill parameters.
func WithFillOptions(o fill.Options) Option {
	return func(e *Editor) {
		e.fillOpts = o
	}
}

// WithLogger sets the editor's logger. The default is pixpaint.Logger().
func WithLogger(l *slog.Logger) Option {
	return func(e *Editor) {
		if l != nil {
			e.logger = l
		}
	}
}

// Editor dispatches host input to the paint engine.
type Editor struct {
	host  Host
	state state

	log        *undo.Log
	undoOpts   []undo.Option
	raster     *stroke.Rasterizer
	strokeOpts []stroke.Option
	brushes    *brush.Cache
	pool       *parallel.WorkerPool
	logger     *slog.Logger

	tool     Tool
	params   brush.Params
	fillOpts fill.Options

	session *session
}

// session is one pointer-down .. pointer-up interaction.
type session struct {
	buf  *pixpaint.PixelBuffer
	tx   *undo.Transaction
	tool Tool
}

// New creates a closed editor.
func New(opts ...Option) *Editor {
	e := &Editor{
		params:   brush.DefaultParams(),
		fillOpts: fill.DefaultOptions(),
		logger:   pixpaint.Logger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		base := []undo.Option{
			undo.WithResolver(undo.ResolverFunc(e.lookup)),
			undo.WithApplied(e.applied),
			undo.WithLogger(e.logger),
		}
		e.log = undo.NewLog(append(base, e.undoOpts...)...)
	}
	if e.brushes == nil {
		e.brushes = brush.NewCache(brush.DefaultCacheSize)
	}
	base := []stroke.Option{stroke.WithLogger(e.logger)}
	if e.pool != nil {
		base = append(base, stroke.WithPool(e.pool))
	}
	e.raster = stroke.New(append(base, e.strokeOpts...)...)
	return e
}

// Open binds the editor to host.
func (e *Editor) Open(host Host) error {
	if host == nil {
		return fmt.Errorf("%w: nil host", ErrNotOpen)
	}
	if e.state != stateClosed {
		return ErrAlreadyOpen
	}
	e.host = host
	e.state = stateOpen
	e.logger.Debug("editor opened")
	return nil
}

// Activate enables pointer input. Activating an active editor does nothing.
func (e *Editor) Activate() error {
	switch e.state {
	case stateClosed:
		return ErrNotOpen
	case stateActive:
		return nil
	}
	e.state = stateActive
	e.logger.Info("editor activated", "tool", e.tool)
	return nil
}

// Deactivate finishes any interaction in progress and stops accepting
// input. The host stays bound.
func (e *Editor) Deactivate() error {
	if e.state != stateActive {
		return nil
	}
	err := e.finish()
	e.state = stateOpen
	e.logger.Info("editor deactivated")
	return err
}

// Close deactivates the editor and releases the host. The undo log is
// kept, so a later Open can undo edits made before.
func (e *Editor) Close() error {
	if e.state == stateClosed {
		return nil
	}
	err := e.Deactivate()
	e.host = nil
	e.state = stateClosed
	e.logger.Debug("editor closed")
	return err
}

// IsOpen reports whether a host is bound.
func (e *Editor) IsOpen() bool { return e.state != stateClosed }

// IsActive reports whether the editor accepts pointer input.
func (e *Editor) IsActive() bool { return e.state == stateActive }

// Interacting reports whether a pointer interaction is in progress.
func (e *Editor) Interacting() bool { return e.session != nil }

// Log returns the undo log the editor records into.
func (e *Editor) Log() *undo.Log { return e.log }

// Tool returns the current tool.
func (e *Editor) Tool() Tool { return e.tool }

// SetTool switches tools, finishing the interaction in progress.
func (e *Editor) SetTool(t Tool) error {
	if t == e.tool {
		return nil
	}
	err := e.finish()
	e.tool = t
	e.logger.Debug("tool selected", "tool", t)
	return err
}

// Shortcut switches to the tool bound to name. It reports whether name was
// bound. The host's InputDeviceShortcuts is used when available, otherwise
// DefaultShortcuts.
func (e *Editor) Shortcut(name string) (bool, error) {
	var shortcuts InputDeviceShortcuts = DefaultShortcuts
	if sc, ok := e.host.(InputDeviceShortcuts); ok {
		shortcuts = sc
	}
	t, ok := shortcuts.ToolForShortcut(name)
	if !ok {
		return false, nil
	}
	return true, e.SetTool(t)
}

// Params returns the brush parameters.
func (e *Editor) Params() brush.Params { return e.params }

// SetParams replaces the brush parameters. They take effect on the next
// stroke.
func (e *Editor) SetParams(p brush.Params) { e.params = p }

// SetColor sets the paint color used by strokes and fills.
func (e *Editor) SetColor(c pixpaint.RGBA8) { e.params.Color = c }

// SetSprite selects a custom brush. A nil sprite reverts to a circle.
func (e *Editor) SetSprite(s *brush.Sprite) {
	e.params.Sprite = s
	if s == nil {
		e.params.Shape = brush.Circle
		return
	}
	e.params.Shape = brush.Custom
}

// InvalidateSprite drops cached stamps built from the sprite with id, for
// use after the sprite's pixels change.
func (e *Editor) InvalidateSprite(id uint64) { e.brushes.Invalidate(id) }

// FillOptions returns the fill parameters.
func (e *Editor) FillOptions() fill.Options { return e.fillOpts }

// SetFillOptions replaces the fill parameters.
func (e *Editor) SetFillOptions(o fill.Options) { e.fillOpts = o }

// HandleUndoRedo moves the undo log to group in response to a host undo or
// redo. An interaction in progress is committed first. Buffers touched by
// the walk are reported through TextureNotifier and SaveRequester.
func (e *Editor) HandleUndoRedo(group int64, isRedo bool) error {
	if e.state == stateClosed {
		return ErrNotOpen
	}
	finishErr := e.finish()
	return errors.Join(finishErr, e.log.Goto(group, isRedo))
}

func (e *Editor) lookup(id pixpaint.BufferID) (*pixpaint.PixelBuffer, error) {
	if e.host == nil {
		return nil, fmt.Errorf("%w: %w", undo.ErrBufferNotFound, ErrNotOpen)
	}
	return e.host.LookupBuffer(id)
}

// applied runs after each successful undo or redo step.
func (e *Editor) applied(id pixpaint.BufferID) {
	buf, err := e.lookup(id)
	if err != nil || buf == nil {
		return
	}
	e.notifyChanged(buf, buf.Bounds())
	e.requestSave(buf)
}
