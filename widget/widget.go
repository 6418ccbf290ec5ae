package widget

import (
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/wudi/pdfoverlay/coords"
)

// Font size and stroke width bounds enforced by the toolbar.
const (
	MinFontSize    = 8
	MaxFontSize    = 72
	MinStrokeWidth = 1
	MaxStrokeWidth = 10
)

// TextStyle and StrokeStyle are copied into a widget when it is created.
type TextStyle struct {
	Size  int
	Color Color
}

type StrokeStyle struct {
	Width int
	Color Color
}

// Style bundles the tool defaults applied at creation time.
type Style struct {
	Text   TextStyle
	Stroke StrokeStyle
}

func DefaultStyle() Style {
	return Style{
		Text:   TextStyle{Size: 14, Color: Black},
		Stroke: StrokeStyle{Width: 2, Color: Black},
	}
}

func ClampFontSize(n int) int    { return clamp(n, MinFontSize, MaxFontSize) }
func ClampStrokeWidth(n int) int { return clamp(n, MinStrokeWidth, MaxStrokeWidth) }

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

// TextContent is the payload of a Text widget.
type TextContent struct {
	Content  string
	FontSize int
	Color    Color
}

func (t *TextContent) Insert(s string) { t.Content += s }

// Backspace removes the last rune.
func (t *TextContent) Backspace() {
	if t.Content == "" {
		return
	}
	_, n := utf8.DecodeLastRuneInString(t.Content)
	t.Content = t.Content[:len(t.Content)-n]
}

// Widget is one annotation placed on a page overlay. Geometry is in overlay
// pixels relative to the top-left corner of the owning page.
type Widget struct {
	ID       string
	Kind     Kind
	Geometry coords.Rect
	// Page is the 1-based number of the owning page.
	Page int

	Text      *TextContent
	Signature *Pad

	// ImportedName is the AcroForm name of a field loaded from the source
	// document; empty for widgets drawn in the overlay.
	ImportedName string

	life *Lifecycle
}

// New creates an idle widget. Payload styles are copied from style.
func New(kind Kind, page int, geom coords.Rect, style Style) (*Widget, error) {
	if kind < Field || kind > Signature {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, int(kind))
	}
	life, err := NewLifecycle(kind)
	if err != nil {
		return nil, err
	}
	w := &Widget{
		ID:       uuid.NewString(),
		Kind:     kind,
		Geometry: geom,
		Page:     page,
		life:     life,
	}
	switch kind {
	case Text:
		w.Text = &TextContent{FontSize: ClampFontSize(style.Text.Size), Color: style.Text.Color}
	case Signature:
		w.Signature = NewPad(int(geom.W), int(geom.H), StrokeStyle{
			Width: ClampStrokeWidth(style.Stroke.Width),
			Color: style.Stroke.Color,
		})
	}
	return w, nil
}

func (w *Widget) State() State   { return w.life.State() }
func (w *Widget) Selected() bool { return w.life.Selected() }
func (w *Widget) Editing() bool  { return w.life.Editing() }
func (w *Widget) Deleted() bool  { return w.life.State() == StateDeleted }

// Arm puts a fresh Text or Signature widget into the created state, which is
// both selected and editing.
func (w *Widget) Arm() error { return w.life.Fire(EventArm) }

// Select is a no-op for widgets already selected and not editing.
func (w *Widget) Select() error {
	if w.State() == StateSelected {
		return nil
	}
	return w.life.Fire(EventSelect)
}

func (w *Widget) Deselect() error {
	if w.State() == StateIdle {
		return nil
	}
	return w.life.Fire(EventDeselect)
}

func (w *Widget) Edit() error {
	if w.State() == StateEditing {
		return nil
	}
	return w.life.Fire(EventEdit)
}

func (w *Widget) Delete() error { return w.life.Fire(EventDelete) }

// Clone copies the widget with a new ID into the idle state.
func (w *Widget) Clone() (*Widget, error) {
	c, err := New(w.Kind, w.Page, w.Geometry, Style{})
	if err != nil {
		return nil, err
	}
	if w.Text != nil {
		t := *w.Text
		c.Text = &t
	}
	if w.Signature != nil {
		c.Signature = w.Signature.Clone()
	}
	return c, nil
}
