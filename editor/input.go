// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package editor

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/pixpaint"
	"github.com/gogpu/pixpaint/fill"
	"github.com/gogpu/pixpaint/stroke"
)

// PointerDown starts an interaction with the current tool at p. Fill and
// pick complete immediately; paint and erase run until PointerUp.
func (e *Editor) PointerDown(p Pointer) error {
	if err := e.requireActive(); err != nil {
		return err
	}
	// A press without a release finishes the previous stroke.
	finishErr := e.finish()

	buf, ok := e.host.TargetBuffer()
	if !ok || buf == nil {
		return errors.Join(finishErr, ErrNoTarget)
	}
	at := e.host.PixelCoordinate(p)

	var err error
	switch e.tool {
	case ToolPick:
		e.pick(buf, at)
	case ToolFill:
		err = e.fill(buf, at)
	default:
		err = e.beginStroke(buf, at)
	}
	return errors.Join(finishErr, err)
}

// PointerMove extends the stroke in progress. Without one it does nothing.
func (e *Editor) PointerMove(p Pointer) error {
	if err := e.requireActive(); err != nil {
		return err
	}
	if e.session == nil {
		return nil
	}
	if err := e.checkTarget(); err != nil {
		return err
	}
	e.raster.MoveTo(e.host.PixelCoordinate(p))
	e.notifyChanged(e.session.buf, e.raster.Dirty())
	return nil
}

// PointerUp extends the stroke to p and commits it.
func (e *Editor) PointerUp(p Pointer) error {
	if err := e.requireActive(); err != nil {
		return err
	}
	if e.session == nil {
		return nil
	}
	if err := e.checkTarget(); err != nil {
		return err
	}
	e.raster.MoveTo(e.host.PixelCoordinate(p))
	return e.finish()
}

func (e *Editor) requireActive() error {
	switch e.state {
	case stateClosed:
		return ErrNotOpen
	case stateOpen:
		return ErrNotActive
	}
	return nil
}

// checkTarget finishes the stroke when the host's selection no longer
// points at the buffer being painted.
func (e *Editor) checkTarget() error {
	buf, ok := e.host.TargetBuffer()
	if ok && buf == e.session.buf {
		return nil
	}
	e.logger.Debug("target lost mid-stroke", "buffer", e.session.buf.ID())
	return errors.Join(fmt.Errorf("%w: selection changed during stroke", ErrNoTarget), e.finish())
}

func (e *Editor) beginStroke(buf *pixpaint.PixelBuffer, at image.Point) error {
	params := e.params
	if e.tool == ToolErase {
		params = params.Eraser()
	}
	stamp, err := e.brushes.Stamp(params.Shape, params.Size, params.Sprite)
	if err != nil {
		return err
	}

	tx := e.log.BeginOrReuse(e.host.UndoGroup(), buf)
	e.session = &session{buf: buf, tx: tx, tool: e.tool}
	e.raster.Begin(buf, stroke.Settings{
		Stamp:        stamp,
		Paint:        params.Color,
		Mode:         params.Blend,
		PixelPerfect: params.PixelPerfect,
	}, at)
	e.notifyChanged(buf, e.raster.Dirty())
	return nil
}

// finish ends the interaction in progress, if any, and commits its
// transaction.
func (e *Editor) finish() error {
	s := e.session
	if s == nil {
		return nil
	}
	e.session = nil

	dirty := e.raster.End()
	if err := e.log.Commit(s.tx, s.buf.Snapshot()); err != nil {
		return fmt.Errorf("editor: commit %s: %w", s.tool, err)
	}
	e.notifyChanged(s.buf, dirty)
	e.requestSave(s.buf)
	return nil
}

func (e *Editor) fill(buf *pixpaint.PixelBuffer, at image.Point) error {
	if !buf.Writable(at.X, at.Y) {
		return nil
	}
	e.raster.Reconcile()

	tx := e.log.BeginOrReuse(e.host.UndoGroup(), buf)
	n := fill.Fill(buf, at, e.params.Color, e.fillParams())
	if err := e.log.Commit(tx, buf.Snapshot()); err != nil {
		return fmt.Errorf("editor: commit fill: %w", err)
	}
	if n > 0 {
		e.notifyChanged(buf, buf.Clip())
	}
	e.requestSave(buf)
	return nil
}

// fillParams returns the fill options with the editor's pool filled in.
func (e *Editor) fillParams() fill.Options {
	opts := e.fillOpts
	if opts.Pool == nil {
		opts.Pool = e.pool
	}
	return opts
}

func (e *Editor) pick(buf *pixpaint.PixelBuffer, at image.Point) {
	if !buf.InBounds(at.X, at.Y) {
		return
	}
	c := buf.Pixel(at.X, at.Y)
	e.params.Color = c
	if cp, ok := e.host.(ColorPicker); ok {
		cp.ColorPicked(c)
	}
	e.logger.Debug("color picked", "at", at, "color", c)
}

func (e *Editor) notifyChanged(buf *pixpaint.PixelBuffer, dirty image.Rectangle) {
	if dirty.Empty() {
		return
	}
	if tn, ok := e.host.(TextureNotifier); ok {
		tn.TextureChanged(buf.ID(), dirty)
	}
}

func (e *Editor) requestSave(buf *pixpaint.PixelBuffer) {
	if sr, ok := e.host.(SaveRequester); ok {
		sr.RequestSave(buf.ID(), buf.Snapshot())
	}
}
