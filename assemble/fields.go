package assemble

import (
	"context"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/wudi/pdfoverlay/builder"
	"github.com/wudi/pdfoverlay/coords"
)

// FieldInfo describes an existing text field in PDF user space.
type FieldInfo struct {
	PageIndex int
	Name      string
	Rect      coords.Rect
	Value     string
}

// ReadFields lists the text fields of src's AcroForm in document order.
// Other field types, and widgets on no page, are ignored.
func ReadFields(ctx context.Context, src []byte) ([]FieldInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := builder.Read(src)
	if err != nil {
		return nil, fmt.Errorf("%w: parse: %v", ErrAssemble, err)
	}
	return fieldsOf(doc)
}

func fieldsOf(doc *model.Context) ([]FieldInfo, error) {
	all, err := builder.FormFields(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: form: %v", ErrAssemble, err)
	}
	var out []FieldInfo
	for _, f := range all {
		if f.Type != "Tx" || f.Name == "" || f.Page == 0 {
			continue
		}
		out = append(out, FieldInfo{
			PageIndex: f.Page - 1,
			Name:      f.Name,
			Rect: coords.Normalize(
				coords.Point{X: f.Rect.LLX, Y: f.Rect.LLY},
				coords.Point{X: f.Rect.URX, Y: f.Rect.URY},
			),
			Value: f.Value,
		})
	}
	return out, nil
}
