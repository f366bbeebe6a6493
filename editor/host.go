// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package editor

import (
	"image"

	"github.com/gogpu/pixpaint"
	"github.com/gogpu/pixpaint/undo"
)

// Pointer is an input-device position in host coordinates.
type Pointer struct {
	X, Y float64
}

// Host is the sprite editor the engine is embedded in.
type Host interface {
	// LookupBuffer resolves buffer ids for undo and redo. Buffers of
	// deleted assets return an error.
	undo.Resolver

	// TargetBuffer returns the buffer of the current selection with its
	// clip set to the selected sprite's rect. ok is false when nothing
	// editable is selected.
	TargetBuffer() (buf *pixpaint.PixelBuffer, ok bool)

	// PixelCoordinate maps a pointer position to buffer pixel space.
	PixelCoordinate(p Pointer) image.Point

	// UndoGroup returns the host's current undo group id.
	UndoGroup() int64
}

// SaveRequester receives the final pixels of a buffer after each committed
// edit and after undo or redo. pixels is a copy owned by the receiver.
type SaveRequester interface {
	RequestSave(id pixpaint.BufferID, pixels []uint8)
}

// TextureNotifier is told which region of a buffer changed.
type TextureNotifier interface {
	TextureChanged(id pixpaint.BufferID, dirty image.Rectangle)
}

// ColorPicker receives colors sampled by the pick tool.
type ColorPicker interface {
	ColorPicked(c pixpaint.RGBA8)
}

// InputDeviceShortcuts maps host shortcut names to tools.
type InputDeviceShortcuts interface {
	ToolForShortcut(name string) (Tool, bool)
}
