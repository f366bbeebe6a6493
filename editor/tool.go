// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package editor

import "fmt"

// Tool selects what a pointer press does.
type Tool uint8

const (
	// ToolPaint stamps the brush along the pointer path.
	ToolPaint Tool = iota
	// ToolErase clears pixels under the brush.
	ToolErase
	// ToolFill flood-fills from the pressed pixel.
	ToolFill
	// ToolPick samples the pressed pixel into the paint color.
	ToolPick
)

// String returns the tool name.
func (t Tool) String() string {
	switch t {
	case ToolPaint:
		return "paint"
	case ToolErase:
		return "erase"
	case ToolFill:
		return "fill"
	case ToolPick:
		return "pick"
	default:
		return fmt.Sprintf("Tool(%d)", t)
	}
}

// ParseTool parses a tool name as produced by String.
func ParseTool(name string) (Tool, bool) {
	switch name {
	case "paint":
		return ToolPaint, true
	case "erase":
		return ToolErase, true
	case "fill":
		return ToolFill, true
	case "pick":
		return ToolPick, true
	}
	return 0, false
}

// ShortcutMap is a fixed InputDeviceShortcuts table.
type ShortcutMap map[string]Tool

// ToolForShortcut implements InputDeviceShortcuts.
func (m ShortcutMap) ToolForShortcut(name string) (Tool, bool) {
	t, ok := m[name]
	return t, ok
}

// DefaultShortcuts is used when the host does not implement
// InputDeviceShortcuts.
var DefaultShortcuts = ShortcutMap{
	"b": ToolPaint,
	"e": ToolErase,
	"g": ToolFill,
	"i": ToolPick,
}
