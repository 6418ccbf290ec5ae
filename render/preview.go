package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/wudi/pdfoverlay/assemble"
	"github.com/wudi/pdfoverlay/widget"
)

// FieldOutline is the colour fields are outlined with in previews.
var FieldOutline = color.NRGBA{R: 0x33, G: 0x66, B: 0xcc, A: 0xff}

// Preview rasterizes the overlay of one page: a white sheet of the view's
// pixel size with every live widget of that page drawn at its geometry.
// Page content is not rasterized.
func Preview(v PageView, widgets []*widget.Widget) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, v.PixelWidth, v.PixelHeight))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	for _, w := range widgets {
		if w.Page != v.Index+1 || w.Deleted() {
			continue
		}
		box := pixelRect(w)
		switch w.Kind {
		case widget.Field:
			outline(dst, box, FieldOutline)
		case widget.Text:
			drawText(dst, box, w.Text, v.Scale)
		case widget.Signature:
			if w.Signature == nil {
				continue
			}
			src := w.Signature.Raster()
			xdraw.ApproxBiLinear.Scale(dst, box, src, src.Bounds(), xdraw.Over, nil)
		}
	}
	return dst
}

func pixelRect(w *widget.Widget) image.Rectangle {
	g := w.Geometry
	return image.Rect(
		int(math.Round(g.X)), int(math.Round(g.Y)),
		int(math.Round(g.Right())), int(math.Round(g.Bottom())),
	)
}

func outline(dst *image.RGBA, r image.Rectangle, c color.Color) {
	r = r.Intersect(dst.Bounds())
	if r.Empty() {
		return
	}
	for x := r.Min.X; x < r.Max.X; x++ {
		dst.Set(x, r.Min.Y, c)
		dst.Set(x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		dst.Set(r.Min.X, y, c)
		dst.Set(r.Max.X-1, y, c)
	}
}

// drawText uses the fixed 7x13 face; the saved document uses Helvetica at
// the widget's size, so previews only approximate line width.
func drawText(dst *image.RGBA, box image.Rectangle, t *widget.TextContent, scale float64) {
	if t == nil || t.Content == "" {
		return
	}
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(t.Color.NRGBA()),
		Face: face,
	}
	x := box.Min.X + int(math.Round(assemble.TextInset*scale))
	y := box.Min.Y + face.Metrics().Ascent.Ceil()
	for _, line := range strings.Split(t.Content, "\n") {
		d.Dot = fixed.P(x, y)
		d.DrawString(line)
		y += face.Metrics().Height.Ceil()
	}
}
