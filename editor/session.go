// Package editor implements the interaction controller of the overlay: a
// session owns the rendered pages, the widgets placed on them, the active
// tool, the clipboard and at most one live pointer gesture. Front ends feed
// it pointer, key and scroll events in client coordinates.
package editor

import (
	"context"
	"errors"
	"fmt"

	"github.com/wudi/pdfoverlay/assemble"
	"github.com/wudi/pdfoverlay/coords"
	"github.com/wudi/pdfoverlay/observability"
	"github.com/wudi/pdfoverlay/widget"
)

var ErrNoPage = errors.New("editor: no such page")

type Options struct {
	// Scale is the render scale the pages were rasterized at.
	Scale  float64
	Gap    float64
	Margin float64
	Style  widget.Style
	Logger observability.Logger
}

type Session struct {
	scale    float64
	layout   *Layout
	widgets  []*widget.Widget
	tool     Tool
	settings *ToolSettings
	clip     *clipboard
	active   *gestureSession
	imported []string
	log      observability.Logger
}

func NewSession(pages []Page, opts Options) (*Session, error) {
	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: document has no pages", ErrNoPage)
	}
	for i, p := range pages {
		if p.Number != i+1 {
			return nil, fmt.Errorf("%w: page %d has number %d", ErrNoPage, i+1, p.Number)
		}
		if err := p.Frame(opts.Scale).Valid(); err != nil {
			return nil, fmt.Errorf("editor: page %d: %w", p.Number, err)
		}
	}
	log := opts.Logger
	if log == nil {
		log = observability.NopLogger{}
	}
	return &Session{
		scale:    opts.Scale,
		layout:   NewLayout(pages, opts.Gap, opts.Margin),
		tool:     ToolSelect,
		settings: NewToolSettings(opts.Style),
		clip:     &clipboard{},
		log:      log,
	}, nil
}

func (s *Session) Scale() float64          { return s.scale }
func (s *Session) Layout() *Layout         { return s.layout }
func (s *Session) Settings() *ToolSettings { return s.settings }
func (s *Session) Tool() Tool              { return s.tool }

// SetTool switches the active tool. Existing selection is left alone.
func (s *Session) SetTool(name string) error {
	t, err := ParseTool(name)
	if err != nil {
		return err
	}
	s.tool = t
	s.log.Debug("tool changed", observability.String("tool", t.String()))
	return nil
}

// Widgets returns the live widgets in z-order, bottom first.
func (s *Session) Widgets() []*widget.Widget {
	return append([]*widget.Widget(nil), s.widgets...)
}

func (s *Session) Widget(id string) (*widget.Widget, bool) {
	for _, w := range s.widgets {
		if w.ID == id {
			return w, true
		}
	}
	return nil, false
}

// Selected lists selected widgets in z-order. Widgets in edit mode are
// excluded.
func (s *Session) Selected() []*widget.Widget {
	var out []*widget.Widget
	for _, w := range s.widgets {
		if w.Selected() && !w.Editing() {
			out = append(out, w)
		}
	}
	return out
}

// EditingWidget returns the widget in edit mode, if any.
func (s *Session) EditingWidget() (*widget.Widget, bool) {
	for _, w := range s.widgets {
		if w.Editing() {
			return w, true
		}
	}
	return nil, false
}

// GestureActive reports whether a pointer gesture is in progress.
func (s *Session) GestureActive() bool { return s.active != nil && s.active.live() }

// Scroll moves the viewport. A live gesture keeps its widgets in page-local
// coordinates, so scrolling mid-gesture is safe.
func (s *Session) Scroll(dx, dy float64) { s.layout.ScrollBy(dx, dy) }

func (s *Session) add(w *widget.Widget) {
	s.widgets = append(s.widgets, w)
}

func (s *Session) remove(w *widget.Widget) {
	for i, x := range s.widgets {
		if x == w {
			s.widgets = append(s.widgets[:i], s.widgets[i+1:]...)
			break
		}
	}
	if !w.Deleted() {
		if err := w.Delete(); err != nil {
			s.log.Warn("delete transition rejected", observability.String("id", w.ID), observability.Error("error", err))
		}
	}
}

// ImportFields turns existing AcroForm text fields into Field widgets. Their
// names are remembered so saving replaces the source copies.
func (s *Session) ImportFields(fields []assemble.FieldInfo) error {
	for _, f := range fields {
		page, ok := s.layout.Page(f.PageIndex + 1)
		if !ok {
			return fmt.Errorf("%w: field %q on page index %d", ErrNoPage, f.Name, f.PageIndex)
		}
		geom := page.Frame(s.scale).ToScreen(f.Rect)
		w, err := widget.New(widget.Field, page.Number, geom, s.settings.Style())
		if err != nil {
			return err
		}
		w.ImportedName = f.Name
		s.add(w)
		s.imported = append(s.imported, f.Name)
	}
	if len(fields) > 0 {
		s.log.Info("imported form fields", observability.Int("count", len(fields)))
	}
	return nil
}

// begin starts a gesture, first releasing any gesture still holding the
// pointer.
func (s *Session) begin(g gesture, start coords.Point) {
	s.cancelGesture()
	s.active = newGestureSession(context.Background(), g, start)
}

func (s *Session) cancelGesture() {
	if s.active == nil {
		return
	}
	if s.active.abandon() {
		s.log.Debug("gesture released by a newer press", observability.String("gesture", s.active.g.name()))
	}
	s.active = nil
}
