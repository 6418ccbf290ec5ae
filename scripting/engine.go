package scripting

import (
	"context"
)

// Engine runs automation scripts against an editing session.
type Engine interface {
	// Execute runs a script and returns its completion value.
	Execute(ctx context.Context, script string) (interface{}, error)

	// RegisterDOM exposes the session to scripts.
	RegisterDOM(dom SessionDOM) error
}

// Modifiers mirror the keyboard modifiers of an input event.
type Modifiers struct {
	Shift bool `json:"shift"`
	Ctrl  bool `json:"ctrl"`
	Meta  bool `json:"meta"`
	Alt   bool `json:"alt"`
}

// WidgetInfo is the read-only view of a widget handed to scripts.
type WidgetInfo struct {
	ID       string  `json:"id"`
	Kind     string  `json:"kind"`
	Page     int     `json:"page"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	W        float64 `json:"w"`
	H        float64 `json:"h"`
	State    string  `json:"state"`
	Text     string  `json:"text,omitempty"`
	Blank    bool    `json:"blank,omitempty"`
	Imported string  `json:"imported,omitempty"`
}

// SessionDOM is the input surface a script drives. Coordinates are client
// pixels, as a pointer device would report them.
type SessionDOM interface {
	SetTool(name string) error
	PointerDown(x, y float64, mods Modifiers) error
	PointerMove(x, y float64)
	PointerUp(x, y float64)
	DoubleClick(x, y float64) error
	Key(key string, mods Modifiers) error
	Type(text string) bool
	Scroll(dx, dy float64)

	SetTextSize(n int) int
	SetTextColor(hex string) error
	SetStrokeWidth(n int) int
	SetStrokeColor(hex string) error

	Widgets() []WidgetInfo
	Log(message string)
}
