package client

import "strings"

// Position is a 1-based line/column cursor location.
type Position struct {
	Line   int
	Column int
}

// Editor is the editing widget as seen by the sync client: a black box that
// holds text and a cursor. Implementations are expected to deliver their
// change notifications by calling Session.HandleLocalChange.
type Editor interface {
	Contents() string
	SetContents(text string)
	Cursor() Position
	SetCursor(pos Position)
}

// clampPosition keeps a cursor valid against new content: the line is capped
// to the new line count and the column to that line's length.
func clampPosition(text string, pos Position) Position {
	lines := strings.Split(text, "\n")
	if pos.Line < 1 {
		pos.Line = 1
	}
	if pos.Line > len(lines) {
		pos.Line = len(lines)
	}
	if pos.Column < 1 {
		pos.Column = 1
	}
	if max := len(lines[pos.Line-1]) + 1; pos.Column > max {
		pos.Column = max
	}
	return pos
}
