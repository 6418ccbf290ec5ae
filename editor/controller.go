package editor

import (
	"github.com/wudi/pdfoverlay/coords"
	"github.com/wudi/pdfoverlay/observability"
	"github.com/wudi/pdfoverlay/widget"
)

// PointerDown dispatches a press to the widget chrome, the widget body, the
// page background or nothing, starting the matching gesture.
func (s *Session) PointerDown(ev PointerEvent) error {
	s.cancelGesture()
	pt := ev.Point()
	hit := s.layout.HitTest(s.widgets, pt)

	switch hit.Part {
	case PartDelete:
		s.log.Debug("widget deleted", observability.String("id", hit.Widget.ID))
		s.remove(hit.Widget)
		return nil

	case PartResize:
		w := hit.Widget
		g := &resizeGesture{s: s, w: w, start: pt, startW: w.Geometry.W, startH: w.Geometry.H}
		if w.Signature != nil {
			g.snapshot = w.Signature.Snapshot()
		}
		s.begin(g, pt)
		return nil

	case PartBody:
		w := hit.Widget
		if w.Editing() {
			if w.Signature != nil {
				g := &drawGesture{s: s, w: w}
				w.Signature.Begin(g.local(pt))
				s.begin(g, pt)
			}
			return nil
		}
		return s.pressWidget(w, ev)

	case PartPage:
		return s.pressPage(hit.Page, ev)
	}

	s.deselectAll()
	return nil
}

// pressWidget handles a press on a non-editing widget body.
func (s *Session) pressWidget(w *widget.Widget, ev PointerEvent) error {
	s.exitEditing(w)
	if ev.Mods.Additive() {
		if w.Selected() {
			return w.Deselect()
		}
		if err := w.Select(); err != nil {
			return err
		}
	} else if !w.Selected() {
		for _, o := range s.widgets {
			if o != w {
				_ = o.Deselect()
			}
		}
		if err := w.Select(); err != nil {
			return err
		}
	}
	s.startDrag(ev.Point())
	return nil
}

func (s *Session) startDrag(pt coords.Point) {
	g := &dragGesture{s: s, start: pt}
	for _, w := range s.Selected() {
		g.items = append(g.items, w)
		g.origin = append(g.origin, w.Geometry)
	}
	s.begin(g, pt)
}

// pressPage handles a press on empty overlay space.
func (s *Session) pressPage(page Page, ev PointerEvent) error {
	pt := ev.Point()
	kind, placing := s.tool.places()
	if !placing {
		if ev.Mods.Additive() {
			s.exitEditing(nil)
		} else {
			s.deselectAll()
		}
		s.begin(&marqueeGesture{s: s, start: pt, band: coords.Rect{X: pt.X, Y: pt.Y}}, pt)
		return nil
	}

	if s.anyActive() {
		s.deselectAll()
		return nil
	}

	local, err := s.layout.ToLocal(page.Number, pt)
	if err != nil {
		return err
	}
	w, h := kind.DefaultSize()
	wd, err := widget.New(kind, page.Number, coords.Rect{X: local.X, Y: local.Y, W: w, H: h}, s.settings.Style())
	if err != nil {
		return err
	}
	if kind.HasInterior() {
		if err := wd.Arm(); err != nil {
			return err
		}
	}
	s.add(wd)
	s.log.Debug("widget created",
		observability.String("id", wd.ID),
		observability.String("kind", kind.String()),
		observability.Int("page", page.Number))
	s.begin(&placeGesture{s: s, w: wd, start: pt}, pt)
	return nil
}

// PointerMove feeds the live gesture, if any.
func (s *Session) PointerMove(ev PointerEvent) {
	if s.active != nil {
		s.active.move(ev.Point())
	}
}

// PointerUp releases the live gesture exactly once.
func (s *Session) PointerUp(ev PointerEvent) {
	if s.active == nil {
		return
	}
	s.active.finish(ev.Point())
	s.active = nil
}

// DoubleClick enters edit mode on Text and Signature widgets. On a Field it
// only clears the selection.
func (s *Session) DoubleClick(ev PointerEvent) error {
	s.cancelGesture()
	hit := s.layout.HitTest(s.widgets, ev.Point())
	if hit.Widget == nil || hit.Part != PartBody {
		return nil
	}
	w := hit.Widget
	if !w.Kind.HasInterior() {
		return w.Deselect()
	}
	for _, o := range s.widgets {
		if o != w {
			_ = o.Deselect()
		}
	}
	return w.Edit()
}

// KeyDown routes a key to the editing text widget, the clipboard, or the
// selection.
func (s *Session) KeyDown(ev KeyEvent) error {
	if w, ok := s.EditingWidget(); ok && w.Text != nil && !ev.Mods.Command() {
		switch {
		case ev.Key == KeyBackspace:
			w.Text.Backspace()
			return nil
		case ev.Key == KeyEnter:
			w.Text.Insert("\n")
			return nil
		case ev.printable():
			w.Text.Insert(ev.Key)
			return nil
		}
	}

	if ev.Mods.Command() {
		switch ev.Key {
		case "c", "C":
			s.Copy()
		case "v", "V":
			_, err := s.Paste()
			return err
		}
		return nil
	}

	switch ev.Key {
	case KeyDelete, KeyBackspace:
		for _, w := range s.Selected() {
			s.remove(w)
		}
	case KeyEscape:
		s.deselectAll()
	case KeyArrowUp, KeyArrowDown, KeyArrowLeft, KeyArrowRight:
		s.nudge(ev)
	}
	return nil
}

// TypeText inserts text into the editing Text widget. It reports false when
// no Text widget is in edit mode.
func (s *Session) TypeText(text string) bool {
	w, ok := s.EditingWidget()
	if !ok || w.Text == nil {
		return false
	}
	w.Text.Insert(text)
	return true
}

func (s *Session) nudge(ev KeyEvent) {
	sel := s.Selected()
	if len(sel) == 0 {
		return
	}
	step := 1.0
	if ev.Mods.Shift {
		step = 10
	}
	w := sel[0]
	switch ev.Key {
	case KeyArrowUp:
		w.Geometry.Y -= step
	case KeyArrowDown:
		w.Geometry.Y += step
	case KeyArrowLeft:
		w.Geometry.X -= step
	case KeyArrowRight:
		w.Geometry.X += step
	}
}

func (s *Session) anyActive() bool {
	for _, w := range s.widgets {
		if w.Selected() || w.Editing() {
			return true
		}
	}
	return false
}

func (s *Session) deselectAll() {
	for _, w := range s.widgets {
		_ = w.Deselect()
	}
}

// exitEditing takes every editing widget except keep out of edit mode.
func (s *Session) exitEditing(keep *widget.Widget) {
	for _, w := range s.widgets {
		if w != keep && w.Editing() {
			_ = w.Deselect()
		}
	}
}
