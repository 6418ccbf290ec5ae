package coords

import (
	"errors"
	"math"
)

// ErrInvalidFrame is returned for frames with a non-positive scale or height.
var ErrInvalidFrame = errors.New("coords: scale and page height must be positive")

// Rect is an axis-aligned rectangle. In screen space (X, Y) is the top-left
// corner; in PDF space it is the bottom-left corner.
type Rect struct {
	X, Y, W, H float64
}

// Normalize builds the rectangle spanned by two corners given in any order.
func Normalize(a, b Point) Rect {
	return Rect{
		X: math.Min(a.X, b.X),
		Y: math.Min(a.Y, b.Y),
		W: math.Abs(b.X - a.X),
		H: math.Abs(b.Y - a.Y),
	}
}

func (r Rect) Right() float64  { return r.X + r.W }
func (r Rect) Bottom() float64 { return r.Y + r.H }

func (r Rect) Translate(dx, dy float64) Rect {
	r.X += dx
	r.Y += dy
	return r
}

func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.Right() && p.Y >= r.Y && p.Y <= r.Bottom()
}

// Intersects reports whether r and o overlap. Touching edges count.
func (r Rect) Intersects(o Rect) bool {
	return !(r.Right() < o.X || r.X > o.Right() || r.Bottom() < o.Y || r.Y > o.Bottom())
}

// Frame describes one rendered page: the render scale, the unscaled page
// height and the lower-left corner of its media box.
type Frame struct {
	Scale      float64
	PageHeight float64
	OriginX    float64
	OriginY    float64
}

func (f Frame) Valid() error {
	if f.Scale <= 0 || f.PageHeight <= 0 {
		return ErrInvalidFrame
	}
	return nil
}

// Matrix maps overlay pixels (top-left origin, y down) to PDF user space
// (bottom-left origin, y up).
func (f Frame) Matrix() Matrix {
	return Scale(1/f.Scale, -1/f.Scale).Multiply(Translate(f.OriginX, f.OriginY+f.PageHeight))
}

// ToPDF converts an overlay rectangle to PDF space. The bottom screen edge
// becomes the PDF y.
func (f Frame) ToPDF(r Rect) Rect {
	ll := f.Matrix().Transform(Point{X: r.X, Y: r.Y + r.H})
	return Rect{X: ll.X, Y: ll.Y, W: r.W / f.Scale, H: r.H / f.Scale}
}

// ToScreen is the inverse of ToPDF.
func (f Frame) ToScreen(r Rect) Rect {
	inv, err := f.Matrix().Inverse()
	if err != nil {
		return Rect{}
	}
	tl := inv.Transform(Point{X: r.X, Y: r.Y + r.H})
	return Rect{X: tl.X, Y: tl.Y, W: r.W * f.Scale, H: r.H * f.Scale}
}
