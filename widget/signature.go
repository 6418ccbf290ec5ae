package widget

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/vector"

	"github.com/wudi/pdfoverlay/coords"
)

// capSegments is the polygon resolution used for round pen caps.
const capSegments = 12

// Pad is the drawing surface of a Signature widget. Points are relative to
// the pad's own top-left corner. Strokes are rasterized as they arrive, so
// the raster is the source of truth; the stroke list is kept for scripting
// and inspection.
type Pad struct {
	Style StrokeStyle

	raster  *image.RGBA
	strokes [][]coords.Point
	drawing bool
	last    coords.Point
	z       *vector.Rasterizer
}

func NewPad(w, h int, style StrokeStyle) *Pad {
	w, h = max(w, 1), max(h, 1)
	return &Pad{
		Style:  style,
		raster: image.NewRGBA(image.Rect(0, 0, w, h)),
		z:      vector.NewRasterizer(w, h),
	}
}

func (p *Pad) Size() (w, h int) {
	b := p.raster.Bounds()
	return b.Dx(), b.Dy()
}

// Begin starts a new stroke at pt.
func (p *Pad) Begin(pt coords.Point) {
	p.drawing = true
	p.last = pt
	p.strokes = append(p.strokes, []coords.Point{pt})
}

// Extend draws a segment from the previous point to pt. It is ignored when
// no stroke is in progress.
func (p *Pad) Extend(pt coords.Point) {
	if !p.drawing {
		return
	}
	p.segment(p.last, pt)
	p.last = pt
	n := len(p.strokes) - 1
	p.strokes[n] = append(p.strokes[n], pt)
}

func (p *Pad) End() { p.drawing = false }

func (p *Pad) Drawing() bool { return p.drawing }

// Strokes returns a copy of the captured strokes.
func (p *Pad) Strokes() [][]coords.Point {
	out := make([][]coords.Point, len(p.strokes))
	for i, s := range p.strokes {
		out[i] = append([]coords.Point(nil), s...)
	}
	return out
}

func (p *Pad) segment(a, b coords.Point) {
	hw := float64(p.Style.Width) / 2
	if hw < 0.5 {
		hw = 0.5
	}
	src := image.NewUniform(p.Style.Color.NRGBA())
	w, h := p.Size()

	vx, vy := b.X-a.X, b.Y-a.Y
	if l := math.Hypot(vx, vy); l > 0 {
		nx, ny := -vy/l*hw, vx/l*hw
		p.z.Reset(w, h)
		p.z.MoveTo(float32(a.X+nx), float32(a.Y+ny))
		p.z.LineTo(float32(b.X+nx), float32(b.Y+ny))
		p.z.LineTo(float32(b.X-nx), float32(b.Y-ny))
		p.z.LineTo(float32(a.X-nx), float32(a.Y-ny))
		p.z.ClosePath()
		p.z.Draw(p.raster, p.raster.Bounds(), src, image.Point{})
	}

	// Round joins and caps.
	for _, c := range []coords.Point{a, b} {
		p.z.Reset(w, h)
		for i := 0; i <= capSegments; i++ {
			t := 2 * math.Pi * float64(i) / capSegments
			x, y := float32(c.X+hw*math.Cos(t)), float32(c.Y+hw*math.Sin(t))
			if i == 0 {
				p.z.MoveTo(x, y)
			} else {
				p.z.LineTo(x, y)
			}
		}
		p.z.ClosePath()
		p.z.Draw(p.raster, p.raster.Bounds(), src, image.Point{})
	}
}

// Raster returns the live drawing surface.
func (p *Pad) Raster() *image.RGBA { return p.raster }

// Snapshot returns a copy of the current raster.
func (p *Pad) Snapshot() *image.RGBA {
	c := image.NewRGBA(p.raster.Bounds())
	copy(c.Pix, p.raster.Pix)
	return c
}

// Resize replaces the surface with a w×h one and copies the old pixels to its
// top-left corner, cropping or padding with transparency.
func (p *Pad) Resize(w, h int) {
	p.ResizeFrom(p.Snapshot(), w, h)
}

// ResizeFrom is Resize with an explicit source raster, used by resize
// gestures that redraw one snapshot on every move.
func (p *Pad) ResizeFrom(src image.Image, w, h int) {
	w, h = max(w, 1), max(h, 1)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if src != nil {
		xdraw.Copy(dst, image.Point{}, src, src.Bounds(), xdraw.Src, nil)
	}
	p.raster = dst
	p.z = vector.NewRasterizer(w, h)
}

// Blank reports whether nothing has been drawn on the visible surface.
func (p *Pad) Blank() bool {
	for i := 3; i < len(p.raster.Pix); i += 4 {
		if p.raster.Pix[i] != 0 {
			return false
		}
	}
	return true
}

// PNG encodes the surface with a transparent background.
func (p *Pad) PNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, p.raster); err != nil {
		return nil, fmt.Errorf("widget: encode signature: %w", err)
	}
	return buf.Bytes(), nil
}

// RestorePNG paints a previously encoded surface at the origin.
func (p *Pad) RestorePNG(data []byte) error {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("widget: decode signature: %w", err)
	}
	xdraw.Copy(p.raster, image.Point{}, img, img.Bounds(), xdraw.Over, nil)
	return nil
}

// Clone deep-copies the pad, including its raster and strokes.
func (p *Pad) Clone() *Pad {
	w, h := p.Size()
	c := NewPad(w, h, p.Style)
	copy(c.raster.Pix, p.raster.Pix)
	c.strokes = p.Strokes()
	return c
}
