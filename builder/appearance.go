package builder

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Default appearance of fields created by the overlay.
const (
	FieldFontResource      = "Helv"
	FieldDefaultAppearance = "/Helv 12 Tf 0 g"
)

// Annotation flag: print the widget with the page.
const annotPrint = 1 << 2

// FieldOptions describes a new interactive text field.
type FieldOptions struct {
	Name  string
	Value string
	// DefaultAppearance is the DA string; FieldDefaultAppearance when empty.
	DefaultAppearance string
	// BorderWidth in points; zero draws no border.
	BorderWidth float64
}

func (o FieldOptions) da() string {
	if o.DefaultAppearance == "" {
		return FieldDefaultAppearance
	}
	return o.DefaultAppearance
}

// FieldDict is the merged field and widget annotation dictionary for a text
// field at rect. The caller adds /P and /AP.
func FieldDict(rect Rect, opts FieldOptions) types.Dict {
	d := types.Dict{
		"Type":    types.Name("Annot"),
		"Subtype": types.Name("Widget"),
		"FT":      types.Name("Tx"),
		"T":       types.StringLiteral(escapeText(opts.Name)),
		"Rect":    rect.Array(),
		"F":       types.Integer(annotPrint),
		"DA":      types.StringLiteral(opts.da()),
		"Border":  types.Array{types.Integer(0), types.Integer(0), types.Float(opts.BorderWidth)},
	}
	if opts.Value != "" {
		d["V"] = types.StringLiteral(escapeText(string(EncodeWinAnsi(opts.Value))))
	}
	return d
}

// AddTextField creates a text field on the 1-based page with a pre-rendered
// normal appearance, so viewers that ignore NeedAppearances still show the
// value. The widget is appended to the page's /Annots; the caller registers
// the returned reference with the AcroForm.
func AddTextField(ctx *model.Context, pageNr int, rect Rect, opts FieldOptions) (*types.IndirectRef, error) {
	page, pageRef, _, err := ctx.PageDict(pageNr, false)
	if err != nil || page == nil {
		return nil, fmt.Errorf("%w: %d", ErrNoPage, pageNr)
	}
	ap, err := newStream(ctx, TextAppearance(rect, opts), types.Dict{
		"Type":    types.Name("XObject"),
		"Subtype": types.Name("Form"),
		"BBox":    Rect{URX: rect.Width(), URY: rect.Height()}.Array(),
		"Resources": types.Dict{
			"Font": types.Dict{FieldFontResource: HelveticaFont()},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("builder: field %q appearance: %w", opts.Name, err)
	}

	field := FieldDict(rect, opts)
	field["AP"] = types.Dict{"N": *ap}
	if pageRef != nil {
		field["P"] = *pageRef
	}
	ref, err := ctx.IndRefForNewObject(field)
	if err != nil {
		return nil, fmt.Errorf("builder: field %q: %w", opts.Name, err)
	}

	annots, err := array(ctx, page["Annots"])
	if err != nil {
		return nil, fmt.Errorf("builder: page %d annotations: %w", pageNr, err)
	}
	page["Annots"] = append(annots, *ref)
	return ref, nil
}

// AcroForm returns the catalog's interactive form dictionary, creating it
// when the document has none.
func AcroForm(ctx *model.Context) (types.Dict, error) {
	root, err := ctx.Catalog()
	if err != nil {
		return nil, err
	}
	return subDict(ctx, root, "AcroForm")
}

// AddFormFields registers fields with the AcroForm, asks viewers to
// regenerate appearances and adds the Helv font the default appearance
// refers to.
func AddFormFields(ctx *model.Context, fields ...types.IndirectRef) error {
	if len(fields) == 0 {
		return nil
	}
	form, err := AcroForm(ctx)
	if err != nil {
		return err
	}
	existing, err := array(ctx, form["Fields"])
	if err != nil {
		return fmt.Errorf("builder: form fields: %w", err)
	}
	for _, f := range fields {
		existing = append(existing, f)
	}
	form["Fields"] = existing
	form["NeedAppearances"] = types.Boolean(true)
	if _, ok := form.Find("DA"); !ok {
		form["DA"] = types.StringLiteral(FieldDefaultAppearance)
	}
	return EnsureFieldResources(ctx, form)
}

// EnsureFieldResources adds the Helv font to the form's default resources.
func EnsureFieldResources(ctx *model.Context, form types.Dict) error {
	dr, err := subDict(ctx, form, "DR")
	if err != nil {
		return err
	}
	fonts, err := subDict(ctx, dr, "Font")
	if err != nil {
		return err
	}
	if _, ok := fonts.Find(FieldFontResource); !ok {
		fonts[FieldFontResource] = HelveticaFont()
	}
	return nil
}

// TextAppearance renders the /Tx marked content for a text field: the
// optional border and the current value, clipped to the field box.
func TextAppearance(rect Rect, opts FieldOptions) []byte {
	fontName, fontSize, color := parseDA(opts.da())
	if fontName == "" {
		fontName = FieldFontResource
	}
	if fontSize == 0 {
		fontSize = 12
	}
	width, height := rect.Width(), rect.Height()

	var buf bytes.Buffer
	if bw := opts.BorderWidth; bw > 0 {
		fmt.Fprintf(&buf, "0 0 0 RG\n%s w\n", num(bw))
		fmt.Fprintf(&buf, "%s %s %s %s re S\n", num(bw/2), num(bw/2), num(width-bw), num(height-bw))
	}
	buf.WriteString("/Tx BMC\n")
	if opts.Value != "" {
		buf.WriteString("q\n")
		fmt.Fprintf(&buf, "1 1 %s %s re W n\n", num(width-2), num(height-2))
		fmt.Fprintf(&buf, "BT\n/%s %s Tf\n", fontName, num(fontSize))
		writeColor(&buf, color)
		baseline := max((height-fontSize)/2, 2)
		fmt.Fprintf(&buf, "2 %s Td\n", num(baseline))
		fmt.Fprintf(&buf, "(%s) Tj\n", escapeText(string(EncodeWinAnsi(opts.Value))))
		buf.WriteString("ET\nQ\n")
	}
	buf.WriteString("EMC\n")
	return buf.Bytes()
}

func parseDA(da string) (fontName string, fontSize float64, color []float64) {
	parts := strings.Fields(da)
	for i := 0; i < len(parts); i++ {
		switch {
		case strings.HasPrefix(parts[i], "/"):
			fontName = parts[i][1:]
			if i+1 < len(parts) {
				fmt.Sscanf(parts[i+1], "%f", &fontSize)
			}
		case parts[i] == "g" && i >= 1:
			var c float64
			fmt.Sscanf(parts[i-1], "%f", &c)
			color = []float64{c}
		case parts[i] == "rg" && i >= 3:
			var r, g, b float64
			fmt.Sscanf(parts[i-3], "%f", &r)
			fmt.Sscanf(parts[i-2], "%f", &g)
			fmt.Sscanf(parts[i-1], "%f", &b)
			color = []float64{r, g, b}
		}
	}
	return
}

func writeColor(buf *bytes.Buffer, color []float64) {
	switch len(color) {
	case 1:
		fmt.Fprintf(buf, "%s g\n", num(color[0]))
	case 3:
		fmt.Fprintf(buf, "%s %s %s rg\n", num(color[0]), num(color[1]), num(color[2]))
	}
}
