// Package pdftest builds small, valid PDF documents for tests.
package pdftest

import (
	"bytes"
	"fmt"
	"strings"
)

// Page describes one page of a generated document.
type Page struct {
	Width, Height float64
	// Content is an optional raw content stream.
	Content string
}

// Letter is a blank US Letter page.
var Letter = Page{Width: 612, Height: 792}

// Field is a text field merged with its widget annotation.
type Field struct {
	// Page is zero-based; a field outside the document is on no page.
	Page  int
	Name  string
	Value string
	// Rect is llx lly urx ury.
	Rect [4]float64
}

// Document writes a PDF 1.4 file with a classic cross-reference table.
func Document(pages ...Page) []byte {
	return Form(pages)
}

// Form is Document with an AcroForm holding fields.
func Form(pages []Page, fields ...Field) []byte {
	if len(pages) == 0 {
		pages = []Page{Letter}
	}
	var buf bytes.Buffer
	var offsets []int
	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	// Pages are objects 3, 5, 7, ... with their content streams right after;
	// fields follow the last content stream.
	firstField := 3 + 2*len(pages)
	annots := make([][]string, len(pages))
	var refs []string
	for i, f := range fields {
		ref := fmt.Sprintf("%d 0 R", firstField+i)
		refs = append(refs, ref)
		if f.Page >= 0 && f.Page < len(pages) {
			annots[f.Page] = append(annots[f.Page], ref)
		}
	}

	buf.WriteString("%PDF-1.4\n")
	if len(fields) > 0 {
		obj(fmt.Sprintf("<</Type/Catalog/Pages 2 0 R/AcroForm<</Fields[%s]>>>>", strings.Join(refs, " ")))
	} else {
		obj("<</Type/Catalog/Pages 2 0 R>>")
	}

	kids := ""
	for i := range pages {
		kids += fmt.Sprintf("%d 0 R ", 3+2*i)
	}
	obj(fmt.Sprintf("<</Type/Pages/Kids[%s]/Count %d>>", kids, len(pages)))
	for i, p := range pages {
		extra := ""
		if len(annots[i]) > 0 {
			extra = "/Annots[" + strings.Join(annots[i], " ") + "]"
		}
		obj(fmt.Sprintf("<</Type/Page/MediaBox[0 0 %g %g]/Parent 2 0 R/Resources<<>>/Contents %d 0 R%s>>",
			p.Width, p.Height, 4+2*i, extra))
		obj(fmt.Sprintf("<</Length %d>>\nstream\n%s\nendstream", len(p.Content), p.Content))
	}
	for _, f := range fields {
		page := ""
		if f.Page >= 0 && f.Page < len(pages) {
			page = fmt.Sprintf("/P %d 0 R", 3+2*f.Page)
		}
		obj(fmt.Sprintf("<</Type/Annot/Subtype/Widget/FT/Tx/T(%s)/V(%s)/Rect[%g %g %g %g]%s>>",
			f.Name, f.Value, f.Rect[0], f.Rect[1], f.Rect[2], f.Rect[3], page))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	fmt.Fprintf(&buf, "%010d %05d f \r\n", 0, 65535)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d %05d n \r\n", off, 0)
	}
	fmt.Fprintf(&buf, "trailer\n<</Size %d/Root 1 0 R>>\nstartxref\n%d\n%%%%EOF", len(offsets)+1, xref)
	return buf.Bytes()
}
