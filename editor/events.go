package editor

import (
	"unicode/utf8"

	"github.com/wudi/pdfoverlay/coords"
)

// Modifiers are the keyboard modifiers held during an input event.
type Modifiers struct {
	Shift, Ctrl, Meta, Alt bool
}

// Additive reports whether the event extends the selection instead of
// replacing it.
func (m Modifiers) Additive() bool { return m.Shift || m.Ctrl || m.Meta }

// Command is the platform copy/paste modifier (Ctrl or Meta).
func (m Modifiers) Command() bool { return m.Ctrl || m.Meta }

// PointerEvent carries a position in viewport (client) pixels.
type PointerEvent struct {
	X, Y float64
	Mods Modifiers
}

func (e PointerEvent) Point() coords.Point { return coords.Point{X: e.X, Y: e.Y} }

// Key names used by KeyEvent, following DOM KeyboardEvent.key values.
const (
	KeyArrowUp    = "ArrowUp"
	KeyArrowDown  = "ArrowDown"
	KeyArrowLeft  = "ArrowLeft"
	KeyArrowRight = "ArrowRight"
	KeyDelete     = "Delete"
	KeyBackspace  = "Backspace"
	KeyEnter      = "Enter"
	KeyEscape     = "Escape"
)

type KeyEvent struct {
	Key  string
	Mods Modifiers
}

// printable reports whether the key produces a single character.
func (e KeyEvent) printable() bool {
	return utf8.RuneCountInString(e.Key) == 1 && !e.Mods.Command() && !e.Mods.Alt
}
