package editor

import (
	"fmt"

	"github.com/wudi/pdfoverlay/coords"
	"github.com/wudi/pdfoverlay/widget"
)

// Widget chrome sizes in overlay pixels.
const (
	ResizeHandleSize = 10
	DeleteButtonSize = 16
)

// Page is a rendered page as reported by the renderer. Pixel sizes are at the
// session scale; PDF sizes are unscaled user-space units.
type Page struct {
	// Number is 1-based.
	Number      int
	PixelWidth  float64
	PixelHeight float64
	PDFWidth    float64
	PDFHeight   float64
	// OriginX and OriginY are the lower-left corner of the media box.
	OriginX, OriginY float64
}

// Frame returns the coordinate frame of the page at scale.
func (p Page) Frame(scale float64) coords.Frame {
	return coords.Frame{Scale: scale, PageHeight: p.PDFHeight, OriginX: p.OriginX, OriginY: p.OriginY}
}

// Layout stacks page overlays in a single column inside a scrollable
// viewport. All positions it returns are client (viewport) coordinates.
type Layout struct {
	Gap    float64
	Margin float64

	pages   []Page
	offsets []float64
	scrollX float64
	scrollY float64
}

func NewLayout(pages []Page, gap, margin float64) *Layout {
	l := &Layout{Gap: gap, Margin: margin, pages: pages}
	y := margin
	for _, p := range pages {
		l.offsets = append(l.offsets, y)
		y += p.PixelHeight + gap
	}
	return l
}

func (l *Layout) Pages() []Page { return append([]Page(nil), l.pages...) }

// Page looks up a page by its 1-based number.
func (l *Layout) Page(number int) (Page, bool) {
	if number < 1 || number > len(l.pages) {
		return Page{}, false
	}
	return l.pages[number-1], true
}

// Origin is the current client position of the page overlay's top-left
// corner.
func (l *Layout) Origin(number int) (coords.Point, error) {
	if number < 1 || number > len(l.pages) {
		return coords.Point{}, fmt.Errorf("%w: %d", ErrNoPage, number)
	}
	return coords.Point{X: l.Margin - l.scrollX, Y: l.offsets[number-1] - l.scrollY}, nil
}

// Bounds is the client rectangle covered by a page overlay.
func (l *Layout) Bounds(number int) (coords.Rect, error) {
	o, err := l.Origin(number)
	if err != nil {
		return coords.Rect{}, err
	}
	p := l.pages[number-1]
	return coords.Rect{X: o.X, Y: o.Y, W: p.PixelWidth, H: p.PixelHeight}, nil
}

// PageAt returns the page whose overlay contains the client point.
func (l *Layout) PageAt(pt coords.Point) (Page, bool) {
	for _, p := range l.pages {
		b, _ := l.Bounds(p.Number)
		if b.Contains(pt) {
			return p, true
		}
	}
	return Page{}, false
}

func (l *Layout) contentSize() (w, h float64) {
	for i, p := range l.pages {
		w = max(w, p.PixelWidth)
		h = l.offsets[i] + p.PixelHeight
	}
	return w + 2*l.Margin, h + l.Margin
}

// ScrollBy moves the viewport, never above or left of the content.
func (l *Layout) ScrollBy(dx, dy float64) {
	w, h := l.contentSize()
	l.scrollX = min(max(l.scrollX+dx, 0), w)
	l.scrollY = min(max(l.scrollY+dy, 0), h)
}

func (l *Layout) Scroll() coords.Point { return coords.Point{X: l.scrollX, Y: l.scrollY} }

// ToLocal converts a client point to the page's overlay coordinates.
func (l *Layout) ToLocal(number int, pt coords.Point) (coords.Point, error) {
	o, err := l.Origin(number)
	if err != nil {
		return coords.Point{}, err
	}
	return coords.Point{X: pt.X - o.X, Y: pt.Y - o.Y}, nil
}

// ClientRect is the widget's rectangle in client coordinates.
func (l *Layout) ClientRect(w *widget.Widget) coords.Rect {
	o, err := l.Origin(w.Page)
	if err != nil {
		return w.Geometry
	}
	return w.Geometry.Translate(o.X, o.Y)
}

// Part identifies what a hit test landed on.
type Part int

const (
	PartNone Part = iota
	PartPage
	PartBody
	PartResize
	PartDelete
)

func (p Part) String() string {
	switch p {
	case PartPage:
		return "page"
	case PartBody:
		return "body"
	case PartResize:
		return "resize"
	case PartDelete:
		return "delete"
	}
	return "none"
}

type Hit struct {
	Part   Part
	Widget *widget.Widget
	// Page is set for PartPage and for widget parts (the owning page).
	Page Page
}

// chromeVisible reports whether the resize handle and delete button are
// shown (and therefore hit-testable).
func chromeVisible(w *widget.Widget) bool {
	return w.Selected() || w.Editing()
}

// HitTest finds the topmost thing under a client point. widgets is in
// z-order, last on top.
func (l *Layout) HitTest(widgets []*widget.Widget, pt coords.Point) Hit {
	for i := len(widgets) - 1; i >= 0; i-- {
		w := widgets[i]
		r := l.ClientRect(w)
		if !r.Contains(pt) {
			continue
		}
		page, _ := l.Page(w.Page)
		hit := Hit{Part: PartBody, Widget: w, Page: page}
		if chromeVisible(w) {
			del := coords.Rect{X: r.Right() - DeleteButtonSize, Y: r.Y, W: DeleteButtonSize, H: DeleteButtonSize}
			handle := coords.Rect{X: r.Right() - ResizeHandleSize, Y: r.Bottom() - ResizeHandleSize, W: ResizeHandleSize, H: ResizeHandleSize}
			// On widgets shorter than both controls the two squares overlap;
			// the handle takes the shared strip.
			switch {
			case handle.Contains(pt):
				hit.Part = PartResize
			case del.Contains(pt):
				hit.Part = PartDelete
			}
		}
		return hit
	}
	if p, ok := l.PageAt(pt); ok {
		return Hit{Part: PartPage, Page: p}
	}
	return Hit{Part: PartNone}
}
