package render

import (
	"errors"
	"image/color"
	"testing"

	"github.com/wudi/pdfoverlay/coords"
	"github.com/wudi/pdfoverlay/internal/pdftest"
	"github.com/wudi/pdfoverlay/widget"
)

func TestPixelSize(t *testing.T) {
	tests := []struct {
		w, h, scale float64
		pw, ph      int
	}{
		{612, 792, 1.5, 918, 1188},
		{612, 792, 1, 612, 792},
		{595.28, 841.89, 1.5, 893, 1263},
		{100, 50, 0.333, 34, 17},
	}
	for _, tt := range tests {
		pw, ph := PixelSize(tt.w, tt.h, tt.scale)
		if pw != tt.pw || ph != tt.ph {
			t.Errorf("PixelSize(%v, %v, %v) = %d×%d, want %d×%d", tt.w, tt.h, tt.scale, pw, ph, tt.pw, tt.ph)
		}
	}
}

func TestEditorPage(t *testing.T) {
	v := PageView{Index: 1, PixelWidth: 918, PixelHeight: 1188, PDFWidth: 612, PDFHeight: 792, OriginY: 10}
	p := v.EditorPage()
	if p.Number != 2 || p.PixelHeight != 1188 || p.PDFHeight != 792 || p.OriginY != 10 {
		t.Fatalf("editor page = %+v", p)
	}
}

func TestOpen(t *testing.T) {
	data := pdftest.Document(pdftest.Letter, pdftest.Page{Width: 200, Height: 100})
	r, err := Open(data)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if r.PageCount() != 2 {
		t.Fatalf("pages = %d", r.PageCount())
	}
	v, err := r.Page(1, 1.5)
	if err != nil {
		t.Fatal(err)
	}
	if v.PixelWidth != 300 || v.PixelHeight != 150 || v.PDFHeight != 100 {
		t.Fatalf("view = %+v", v)
	}
	if _, err := r.Page(2, 1.5); err == nil {
		t.Fatalf("expected error for missing page")
	}
	if _, err := r.Page(0, 0); err == nil {
		t.Fatalf("expected error for zero scale")
	}

	pages, err := Pages(r, 1.5)
	if err != nil {
		t.Fatal(err)
	}
	if len(pages) != 2 || pages[0].Number != 1 || pages[0].PixelWidth != 918 {
		t.Fatalf("pages = %+v", pages)
	}
}

func TestPreview(t *testing.T) {
	style := widget.DefaultStyle()
	field, _ := widget.New(widget.Field, 1, coords.Rect{X: 10, Y: 10, W: 50, H: 20}, style)
	text, _ := widget.New(widget.Text, 1, coords.Rect{X: 10, Y: 200, W: 100, H: 20}, style)
	text.Text.Content = "Hi"
	text.Text.Color = widget.Color{R: 255}
	sig, _ := widget.New(widget.Signature, 1, coords.Rect{X: 100, Y: 100, W: 250, H: 120}, style)
	sig.Signature.Begin(coords.Point{X: 10, Y: 10})
	sig.Signature.Extend(coords.Point{X: 120, Y: 80})
	sig.Signature.End()
	other, _ := widget.New(widget.Field, 2, coords.Rect{X: 200, Y: 300, W: 50, H: 20}, style)

	v := PageView{Index: 0, Scale: 1.5, PixelWidth: 918, PixelHeight: 1188}
	img := Preview(v, []*widget.Widget{field, text, sig, other})

	if b := img.Bounds(); b.Dx() != 918 || b.Dy() != 1188 {
		t.Fatalf("bounds = %v", b)
	}
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	if got := img.RGBAAt(10, 10); got != (color.RGBA{R: 0x33, G: 0x66, B: 0xcc, A: 0xff}) {
		t.Errorf("field corner = %v, want outline", got)
	}
	if got := img.RGBAAt(30, 20); got != white {
		t.Errorf("field interior = %v, want white", got)
	}
	if got := img.RGBAAt(200, 300); got != white {
		t.Errorf("widget of another page drawn: %v", got)
	}
	inked := false
	for y := 135; y < 143; y++ {
		if img.RGBAAt(155, y) != white {
			inked = true
		}
	}
	if !inked {
		t.Errorf("signature stroke missing")
	}

	red := false
	for y := 200; y < 220 && !red; y++ {
		for x := 10; x < 110; x++ {
			c := img.RGBAAt(x, y)
			if c.R > 200 && c.G < 100 {
				red = true
				break
			}
		}
	}
	if !red {
		t.Errorf("text not drawn in its colour")
	}
}

func TestOpen_Garbage(t *testing.T) {
	if _, err := Open([]byte("hello")); !errors.Is(err, ErrLoad) {
		t.Fatalf("expected ErrLoad, got %v", err)
	}
}
