package editor

import (
	"errors"
	"testing"

	"github.com/wudi/pdfoverlay/coords"
	"github.com/wudi/pdfoverlay/observability"
	"github.com/wudi/pdfoverlay/widget"
)

const testScale = 1.5

// letterPage is a US Letter page rendered at testScale: 918×1188 pixels.
func letterPage(n int) Page {
	return Page{
		Number:      n,
		PixelWidth:  612 * testScale,
		PixelHeight: 792 * testScale,
		PDFWidth:    612,
		PDFHeight:   792,
	}
}

type recordLogger struct {
	observability.NopLogger
	warns []string
}

func (l *recordLogger) Warn(msg string, _ ...observability.Field) { l.warns = append(l.warns, msg) }
func (l *recordLogger) With(...observability.Field) observability.Logger {
	return l
}

// newTestSession lays out two letter pages with a 20px gap and margin, so
// page 1 starts at client (20, 20) and page 2 at (20, 1228).
func newTestSession(t *testing.T) (*Session, *recordLogger) {
	t.Helper()
	log := &recordLogger{}
	s, err := NewSession([]Page{letterPage(1), letterPage(2)}, Options{
		Scale:  testScale,
		Gap:    20,
		Margin: 20,
		Style:  widget.DefaultStyle(),
		Logger: log,
	})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return s, log
}

// addWidget puts a widget straight into the session at page-local geometry.
func addWidget(t *testing.T, s *Session, kind widget.Kind, page int, geom coords.Rect) *widget.Widget {
	t.Helper()
	w, err := widget.New(kind, page, geom, s.Settings().Style())
	if err != nil {
		t.Fatalf("new widget: %v", err)
	}
	s.add(w)
	return w
}

func down(t *testing.T, s *Session, x, y float64, mods ...Modifiers) {
	t.Helper()
	ev := PointerEvent{X: x, Y: y}
	if len(mods) > 0 {
		ev.Mods = mods[0]
	}
	if err := s.PointerDown(ev); err != nil {
		t.Fatalf("pointer down at (%v, %v): %v", x, y, err)
	}
}

func move(s *Session, x, y float64) { s.PointerMove(PointerEvent{X: x, Y: y}) }
func up(s *Session, x, y float64)   { s.PointerUp(PointerEvent{X: x, Y: y}) }

func click(t *testing.T, s *Session, x, y float64, mods ...Modifiers) {
	t.Helper()
	down(t, s, x, y, mods...)
	up(s, x, y)
}

func drag(t *testing.T, s *Session, x0, y0, x1, y1 float64, mods ...Modifiers) {
	t.Helper()
	down(t, s, x0, y0, mods...)
	move(s, (x0+x1)/2, (y0+y1)/2)
	move(s, x1, y1)
	up(s, x1, y1)
}

func ids(ws []*widget.Widget) map[string]bool {
	out := make(map[string]bool, len(ws))
	for _, w := range ws {
		out[w.ID] = true
	}
	return out
}

func TestNewSession_Validation(t *testing.T) {
	if _, err := NewSession(nil, Options{Scale: 1}); !errors.Is(err, ErrNoPage) {
		t.Fatalf("no pages: expected ErrNoPage, got %v", err)
	}
	if _, err := NewSession([]Page{letterPage(2)}, Options{Scale: 1}); !errors.Is(err, ErrNoPage) {
		t.Fatalf("misnumbered page: expected ErrNoPage, got %v", err)
	}
	flat := letterPage(1)
	flat.PDFHeight = 0
	if _, err := NewSession([]Page{flat}, Options{Scale: 1}); !errors.Is(err, coords.ErrInvalidFrame) {
		t.Fatalf("zero height: expected ErrInvalidFrame, got %v", err)
	}
	if _, err := NewSession([]Page{letterPage(1)}, Options{Scale: 0}); !errors.Is(err, coords.ErrInvalidFrame) {
		t.Fatalf("zero scale: expected ErrInvalidFrame, got %v", err)
	}
}

func TestSetTool(t *testing.T) {
	s, _ := newTestSession(t)
	a := addWidget(t, s, widget.Field, 1, coords.Rect{X: 100, Y: 100, W: 200, H: 30})
	if err := a.Select(); err != nil {
		t.Fatal(err)
	}
	if err := s.SetTool("Text"); err != nil {
		t.Fatalf("set tool: %v", err)
	}
	if s.Tool() != ToolText {
		t.Fatalf("tool = %v", s.Tool())
	}
	if !a.Selected() {
		t.Fatalf("switching tools changed the selection")
	}
	if err := s.SetTool("lasso"); !errors.Is(err, ErrUnknownTool) {
		t.Fatalf("expected ErrUnknownTool, got %v", err)
	}
	if s.Tool() != ToolText {
		t.Fatalf("failed switch changed the tool")
	}
}

func TestLayout_Origins(t *testing.T) {
	s, _ := newTestSession(t)
	l := s.Layout()
	o1, _ := l.Origin(1)
	o2, _ := l.Origin(2)
	if o1 != (coords.Point{X: 20, Y: 20}) || o2 != (coords.Point{X: 20, Y: 1228}) {
		t.Fatalf("origins = %v %v", o1, o2)
	}
	if _, err := l.Origin(3); !errors.Is(err, ErrNoPage) {
		t.Fatalf("expected ErrNoPage, got %v", err)
	}

	s.Scroll(0, 100)
	o1, _ = l.Origin(1)
	if o1 != (coords.Point{X: 20, Y: -80}) {
		t.Fatalf("scrolled origin = %v", o1)
	}
	s.Scroll(-500, -500)
	if l.Scroll() != (coords.Point{}) {
		t.Fatalf("scroll not clamped at zero: %v", l.Scroll())
	}
}

func TestLayout_PageAt(t *testing.T) {
	s, _ := newTestSession(t)
	l := s.Layout()
	if p, ok := l.PageAt(coords.Point{X: 100, Y: 100}); !ok || p.Number != 1 {
		t.Fatalf("page at (100,100) = %v %v", p.Number, ok)
	}
	if p, ok := l.PageAt(coords.Point{X: 100, Y: 1300}); !ok || p.Number != 2 {
		t.Fatalf("page at (100,1300) = %v %v", p.Number, ok)
	}
	if _, ok := l.PageAt(coords.Point{X: 100, Y: 1218}); ok {
		t.Fatalf("gap between pages reported as a page")
	}
	if _, ok := l.PageAt(coords.Point{X: 5, Y: 100}); ok {
		t.Fatalf("margin reported as a page")
	}
}

func TestLayout_HitTest(t *testing.T) {
	s, _ := newTestSession(t)
	l := s.Layout()
	// Client box of a: x 120..320, y 120..150.
	a := addWidget(t, s, widget.Field, 1, coords.Rect{X: 100, Y: 100, W: 200, H: 30})
	b := addWidget(t, s, widget.Field, 1, coords.Rect{X: 250, Y: 100, W: 200, H: 30})

	tests := []struct {
		name   string
		pt     coords.Point
		sel    bool
		part   Part
		widget *widget.Widget
	}{
		{"body", coords.Point{X: 130, Y: 130}, false, PartBody, a},
		{"topmost wins overlap", coords.Point{X: 300, Y: 130}, false, PartBody, b},
		{"chrome hidden when idle", coords.Point{X: 465, Y: 125}, false, PartBody, b},
		{"delete button", coords.Point{X: 465, Y: 125}, true, PartDelete, b},
		{"resize handle", coords.Point{X: 465, Y: 147}, true, PartResize, b},
		{"empty page", coords.Point{X: 600, Y: 600}, false, PartPage, nil},
		{"outside pages", coords.Point{X: 5, Y: 5}, false, PartNone, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_ = b.Deselect()
			if tt.sel {
				if err := b.Select(); err != nil {
					t.Fatal(err)
				}
			}
			hit := l.HitTest(s.Widgets(), tt.pt)
			if hit.Part != tt.part {
				t.Fatalf("part = %v, want %v", hit.Part, tt.part)
			}
			if hit.Widget != tt.widget {
				t.Fatalf("widget = %v, want %v", hit.Widget, tt.widget)
			}
		})
	}
}
