// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package editor connects the paint engine to a host sprite editor.
//
// The host owns the UI. It supplies the target buffer, maps pointer positions
// to pixels, hands out undo group ids, and receives "texture changed" and
// "save requested" notifications. The editor turns pointer events into brush
// strokes and fills and wraps every edit in an undo transaction.
//
// # Lifecycle
//
// An Editor goes through two explicit phases before it accepts input:
//
//	ed := editor.New(editor.WithUndoOptions(cfg.UndoOptions()...))
//	if err := ed.Open(host); err != nil { ... }
//	if err := ed.Activate(); err != nil { ... }
//	defer ed.Close()
//
// Open binds the host. Activate enables pointer input. Deactivate finishes
// the interaction in progress and stops input; Close also releases the host.
//
// # Tools
//
//   - ToolPaint stamps the brush along the pointer path
//   - ToolErase paints with a transparent color in replace mode
//   - ToolFill flood-fills from the pressed pixel
//   - ToolPick copies the pressed pixel into the paint color
//
// # Optional host capabilities
//
// A host may also implement SaveRequester, TextureNotifier, ColorPicker and
// InputDeviceShortcuts. The editor checks for each one with a type assertion
// and skips the notification when it is missing.
//
// # Thread Safety
//
// Editor is NOT safe for concurrent use. It is meant to be driven from the
// host's UI event loop.
package editor
