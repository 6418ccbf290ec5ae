// Package render reports the page geometry the editor needs to map between
// overlay pixels and PDF space, and rasterizes overlay previews.
package render

import (
	"errors"
	"fmt"
	"math"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/wudi/pdfoverlay/builder"
	"github.com/wudi/pdfoverlay/editor"
)

var ErrLoad = errors.New("render: cannot load document")

// Renderer is the page renderer collaborator. Indices are zero-based.
type Renderer interface {
	PageCount() int
	Page(index int, scale float64) (PageView, error)
}

// PageView is the geometry of one page rendered at a scale.
type PageView struct {
	Index       int
	Scale       float64
	PixelWidth  int
	PixelHeight int
	PDFWidth    float64
	PDFHeight   float64
	// OriginX and OriginY are the lower-left corner of the media box.
	OriginX, OriginY float64
}

// EditorPage converts the view to the editor's page description.
func (v PageView) EditorPage() editor.Page {
	return editor.Page{
		Number:      v.Index + 1,
		PixelWidth:  float64(v.PixelWidth),
		PixelHeight: float64(v.PixelHeight),
		PDFWidth:    v.PDFWidth,
		PDFHeight:   v.PDFHeight,
		OriginX:     v.OriginX,
		OriginY:     v.OriginY,
	}
}

// PixelSize is the raster size of a page of the given PDF size. Fractional
// pixels round up.
func PixelSize(pdfWidth, pdfHeight, scale float64) (w, h int) {
	return int(math.Ceil(pdfWidth * scale)), int(math.Ceil(pdfHeight * scale))
}

// Pages returns editor pages for every page of r at scale.
func Pages(r Renderer, scale float64) ([]editor.Page, error) {
	out := make([]editor.Page, 0, r.PageCount())
	for i := 0; i < r.PageCount(); i++ {
		v, err := r.Page(i, scale)
		if err != nil {
			return nil, err
		}
		out = append(out, v.EditorPage())
	}
	return out, nil
}

type pdfRenderer struct {
	doc *model.Context
}

// Open parses data and keeps the page tree for geometry lookups.
func Open(data []byte) (Renderer, error) {
	doc, err := builder.Read(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	return &pdfRenderer{doc: doc}, nil
}

func (r *pdfRenderer) PageCount() int { return r.doc.PageCount }

func (r *pdfRenderer) Page(index int, scale float64) (PageView, error) {
	if scale <= 0 {
		return PageView{}, fmt.Errorf("render: invalid scale %v", scale)
	}
	if index < 0 || index >= r.doc.PageCount {
		return PageView{}, fmt.Errorf("render: page %d out of range [0, %d)", index, r.doc.PageCount)
	}
	box, err := builder.MediaBox(r.doc, index+1)
	if err != nil {
		return PageView{}, fmt.Errorf("render: page %d: %w", index, err)
	}
	w, h := PixelSize(box.Width(), box.Height(), scale)
	return PageView{
		Index:       index,
		Scale:       scale,
		PixelWidth:  w,
		PixelHeight: h,
		PDFWidth:    box.Width(),
		PDFHeight:   box.Height(),
		OriginX:     box.LLX,
		OriginY:     box.LLY,
	}, nil
}
