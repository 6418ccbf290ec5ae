// Package dom exposes an editor session to automation scripts.
package dom

import (
	"github.com/wudi/pdfoverlay/editor"
	"github.com/wudi/pdfoverlay/observability"
	"github.com/wudi/pdfoverlay/scripting"
)

type Adapter struct {
	s   *editor.Session
	log observability.Logger
}

var _ scripting.SessionDOM = (*Adapter)(nil)

func New(s *editor.Session, log observability.Logger) *Adapter {
	if log == nil {
		log = observability.NopLogger{}
	}
	return &Adapter{s: s, log: log.With(observability.String("component", "script"))}
}

func (a *Adapter) SetTool(name string) error { return a.s.SetTool(name) }

func (a *Adapter) PointerDown(x, y float64, mods scripting.Modifiers) error {
	return a.s.PointerDown(editor.PointerEvent{X: x, Y: y, Mods: editorMods(mods)})
}

func (a *Adapter) PointerMove(x, y float64) { a.s.PointerMove(editor.PointerEvent{X: x, Y: y}) }
func (a *Adapter) PointerUp(x, y float64)   { a.s.PointerUp(editor.PointerEvent{X: x, Y: y}) }

func (a *Adapter) DoubleClick(x, y float64) error {
	return a.s.DoubleClick(editor.PointerEvent{X: x, Y: y})
}

func (a *Adapter) Key(key string, mods scripting.Modifiers) error {
	return a.s.KeyDown(editor.KeyEvent{Key: key, Mods: editorMods(mods)})
}

func (a *Adapter) Type(text string) bool { return a.s.TypeText(text) }

func (a *Adapter) Scroll(dx, dy float64) { a.s.Scroll(dx, dy) }

func (a *Adapter) SetTextSize(n int) int           { return a.s.Settings().SetTextSize(n) }
func (a *Adapter) SetTextColor(hex string) error   { return a.s.Settings().SetTextColor(hex) }
func (a *Adapter) SetStrokeWidth(n int) int        { return a.s.Settings().SetStrokeWidth(n) }
func (a *Adapter) SetStrokeColor(hex string) error { return a.s.Settings().SetStrokeColor(hex) }
func (a *Adapter) Widgets() []scripting.WidgetInfo { return widgetInfos(a.s.Widgets()) }
func (a *Adapter) Log(message string)              { a.log.Info(message) }

func editorMods(m scripting.Modifiers) editor.Modifiers {
	return editor.Modifiers{Shift: m.Shift, Ctrl: m.Ctrl, Meta: m.Meta, Alt: m.Alt}
}
