package editor

import (
	"context"
	"image"
	"math"

	"github.com/wudi/pdfoverlay/coords"
	"github.com/wudi/pdfoverlay/observability"
	"github.com/wudi/pdfoverlay/widget"
)

const (
	// dragSlop is how far the pointer travels before a placement click turns
	// into a rubber-band placement.
	dragSlop = 3
	// MinWidgetSize is the larger side below which a dragged-out widget is
	// discarded on release.
	MinWidgetSize = 20
	minResize     = DeleteButtonSize + ResizeHandleSize
)

// gesture receives the pointer stream between press and release.
type gesture interface {
	name() string
	move(pt coords.Point)
	release(pt coords.Point)
}

// gestureSession owns one gesture and the token that ends it. The release
// callback runs at most once, whichever of finish or a newer gesture gets
// there first.
type gestureSession struct {
	g      gesture
	ctx    context.Context
	cancel context.CancelFunc
	last   coords.Point
}

func newGestureSession(parent context.Context, g gesture, start coords.Point) *gestureSession {
	ctx, cancel := context.WithCancel(parent)
	return &gestureSession{g: g, ctx: ctx, cancel: cancel, last: start}
}

func (s *gestureSession) live() bool { return s.ctx.Err() == nil }

// Done is closed once the gesture has been released.
func (s *gestureSession) Done() <-chan struct{} { return s.ctx.Done() }

func (s *gestureSession) move(pt coords.Point) {
	if !s.live() {
		return
	}
	s.last = pt
	s.g.move(pt)
}

// finish releases the gesture at pt. It reports false when the token was
// already spent.
func (s *gestureSession) finish(pt coords.Point) bool {
	if !s.live() {
		return false
	}
	s.last = pt
	s.cancel()
	s.g.release(pt)
	return true
}

// abandon releases the gesture where the pointer was last seen.
func (s *gestureSession) abandon() bool { return s.finish(s.last) }

// placeGesture follows the press that created a widget. Moving past the slop
// reshapes the widget to the rubber-band box.
type placeGesture struct {
	s       *Session
	w       *widget.Widget
	start   coords.Point
	dragged bool
}

func (g *placeGesture) name() string { return "place" }

func (g *placeGesture) move(pt coords.Point) {
	if !g.dragged && math.Hypot(pt.X-g.start.X, pt.Y-g.start.Y) <= dragSlop {
		return
	}
	g.dragged = true
	box := coords.Normalize(g.start, pt)
	o, err := g.s.layout.Origin(g.w.Page)
	if err != nil {
		return
	}
	g.w.Geometry = box.Translate(-o.X, -o.Y)
	if g.w.Signature != nil {
		g.w.Signature.Resize(int(box.W), int(box.H))
	}
}

func (g *placeGesture) release(pt coords.Point) {
	if !g.dragged {
		return
	}
	if max(g.w.Geometry.W, g.w.Geometry.H) < MinWidgetSize {
		g.s.log.Debug("discarding undersized widget",
			observability.String("id", g.w.ID),
			observability.Float("w", g.w.Geometry.W),
			observability.Float("h", g.w.Geometry.H))
		g.s.remove(g.w)
	}
}

// marqueeGesture selects every widget whose client box overlaps the band.
type marqueeGesture struct {
	s     *Session
	start coords.Point
	band  coords.Rect
}

func (g *marqueeGesture) name() string { return "marquee" }

func (g *marqueeGesture) move(pt coords.Point) {
	g.band = coords.Normalize(g.start, pt)
}

func (g *marqueeGesture) release(pt coords.Point) {
	g.band = coords.Normalize(g.start, pt)
	n := 0
	for _, w := range g.s.widgets {
		if w.Editing() {
			continue
		}
		if g.s.layout.ClientRect(w).Intersects(g.band) {
			if err := w.Select(); err == nil {
				n++
			}
		}
	}
	g.s.log.Debug("marquee selection", observability.Int("selected", n))
}

// dragGesture moves the selection together and re-parents each widget on
// release.
type dragGesture struct {
	s      *Session
	start  coords.Point
	items  []*widget.Widget
	origin []coords.Rect
}

func (g *dragGesture) name() string { return "drag" }

func (g *dragGesture) move(pt coords.Point) {
	dx, dy := pt.X-g.start.X, pt.Y-g.start.Y
	for i, w := range g.items {
		w.Geometry = g.origin[i].Translate(dx, dy)
	}
}

func (g *dragGesture) release(pt coords.Point) {
	g.move(pt)
	target, found := g.s.layout.PageAt(pt)
	for _, w := range g.items {
		client := g.s.layout.ClientRect(w)
		page := w.Page
		if found {
			page = target.Number
		} else {
			g.s.log.Warn("drop outside any page, reverting to owner",
				observability.String("id", w.ID), observability.Int("page", w.Page))
		}
		o, err := g.s.layout.Origin(page)
		if err != nil {
			continue
		}
		if page != w.Page {
			g.s.log.Debug("widget moved to page",
				observability.String("id", w.ID),
				observability.Int("from", w.Page),
				observability.Int("to", page))
		}
		w.Page = page
		w.Geometry = client.Translate(-o.X, -o.Y)
	}
}

// resizeGesture changes width and height from the values at press time.
type resizeGesture struct {
	s        *Session
	w        *widget.Widget
	start    coords.Point
	startW   float64
	startH   float64
	snapshot *image.RGBA
}

func (g *resizeGesture) name() string { return "resize" }

func (g *resizeGesture) move(pt coords.Point) {
	g.w.Geometry.W = max(g.startW+pt.X-g.start.X, minResize)
	g.w.Geometry.H = max(g.startH+pt.Y-g.start.Y, minResize)
	if g.w.Signature != nil {
		g.w.Signature.ResizeFrom(g.snapshot, int(g.w.Geometry.W), int(g.w.Geometry.H))
	}
}

func (g *resizeGesture) release(pt coords.Point) { g.move(pt) }

// drawGesture feeds pointer positions to a signature pad. Points are relative
// to the pad, not to the page.
type drawGesture struct {
	s *Session
	w *widget.Widget
}

func (g *drawGesture) name() string { return "draw" }

func (g *drawGesture) local(pt coords.Point) coords.Point {
	r := g.s.layout.ClientRect(g.w)
	return coords.Point{X: pt.X - r.X, Y: pt.Y - r.Y}
}

func (g *drawGesture) move(pt coords.Point) { g.w.Signature.Extend(g.local(pt)) }

func (g *drawGesture) release(coords.Point) { g.w.Signature.End() }
