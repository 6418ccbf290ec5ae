package builder

import (
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// FormField is one terminal field of the AcroForm.
type FormField struct {
	// Name is the fully qualified name, partial names joined by '.'.
	Name  string
	Type  string
	Value string
	// Rect and Page come from the first widget; Page is 1-based and zero
	// when the widget is not on any page.
	Rect Rect
	Page int
	// Widgets are the widget annotations; the field itself when merged.
	Widgets []types.IndirectRef
}

// FormFields lists the terminal fields of the document's AcroForm in
// document order.
func FormFields(ctx *model.Context) ([]FormField, error) {
	fields, err := topFields(ctx)
	if err != nil || len(fields) == 0 {
		return nil, err
	}
	pages, err := widgetPages(ctx)
	if err != nil {
		return nil, err
	}
	var out []FormField
	for _, obj := range fields {
		walkField(ctx, obj, "", "", pages, 0, &out)
	}
	return out, nil
}

// RemoveFields drops the terminal fields with the given qualified names
// from the form and their widgets from every page. It returns the number
// of fields removed.
func RemoveFields(ctx *model.Context, names map[string]struct{}) (int, error) {
	if len(names) == 0 {
		return 0, nil
	}
	root, err := ctx.Catalog()
	if err != nil {
		return 0, err
	}
	if _, ok := root.Find("AcroForm"); !ok {
		return 0, nil
	}
	form, err := AcroForm(ctx)
	if err != nil {
		return 0, err
	}
	fields, err := array(ctx, form["Fields"])
	if err != nil {
		return 0, err
	}
	widgets := map[int]struct{}{}
	removed := 0
	form["Fields"] = pruneFields(ctx, fields, "", names, widgets, &removed, 0)
	if len(widgets) == 0 {
		return removed, nil
	}
	for i := 1; i <= ctx.PageCount; i++ {
		page, _, _, err := ctx.PageDict(i, false)
		if err != nil || page == nil {
			continue
		}
		annots, err := array(ctx, page["Annots"])
		if err != nil || len(annots) == 0 {
			continue
		}
		kept := annots[:0]
		for _, a := range annots {
			if ref, ok := a.(types.IndirectRef); ok {
				if _, gone := widgets[int(ref.ObjectNumber)]; gone {
					continue
				}
			}
			kept = append(kept, a)
		}
		page["Annots"] = kept
	}
	return removed, nil
}

const maxFieldDepth = 32

func topFields(ctx *model.Context) (types.Array, error) {
	root, err := ctx.Catalog()
	if err != nil {
		return nil, err
	}
	obj, ok := root.Find("AcroForm")
	if !ok {
		return nil, nil
	}
	form, err := ctx.DereferenceDict(obj)
	if err != nil || form == nil {
		return nil, err
	}
	return array(ctx, form["Fields"])
}

// widgetPages maps annotation object numbers to 1-based page numbers.
func widgetPages(ctx *model.Context) (map[int]int, error) {
	out := map[int]int{}
	for i := 1; i <= ctx.PageCount; i++ {
		page, _, _, err := ctx.PageDict(i, false)
		if err != nil {
			return nil, err
		}
		annots, err := array(ctx, page["Annots"])
		if err != nil {
			continue
		}
		for _, a := range annots {
			if ref, ok := a.(types.IndirectRef); ok {
				out[int(ref.ObjectNumber)] = i
			}
		}
	}
	return out, nil
}

func walkField(ctx *model.Context, obj types.Object, parent, ft string, pages map[int]int, depth int, out *[]FormField) {
	if depth > maxFieldDepth {
		return
	}
	d, err := ctx.DereferenceDict(obj)
	if err != nil || d == nil {
		return
	}
	name := qualify(ctx, d, parent)
	if ftObj, ok := d.Find("FT"); ok {
		if t, err := ctx.DereferenceName(ftObj, model.V10, nil); err == nil && t != "" {
			ft = string(t)
		}
	}

	kids, _ := array(ctx, d["Kids"])
	if hasNamedKid(ctx, kids) {
		for _, k := range kids {
			walkField(ctx, k, name, ft, pages, depth+1, out)
		}
		return
	}

	f := FormField{Name: name, Type: ft}
	if v, ok := d.Find("V"); ok {
		if s, err := ctx.DereferenceStringOrHexLiteral(v, model.V10, nil); err == nil {
			f.Value = s
		}
	}
	widgets := kids
	if len(widgets) == 0 {
		widgets = types.Array{obj}
	}
	for _, w := range widgets {
		if ref, ok := w.(types.IndirectRef); ok {
			f.Widgets = append(f.Widgets, ref)
		}
	}
	first, err := ctx.DereferenceDict(widgets[0])
	if err == nil && first != nil {
		f.Rect, _ = RectOf(ctx, first["Rect"])
		f.Page = widgetPage(ctx, first, f.Widgets, pages)
	}
	*out = append(*out, f)
}

func widgetPage(ctx *model.Context, w types.Dict, refs []types.IndirectRef, pages map[int]int) int {
	if len(refs) > 0 {
		if n, ok := pages[int(refs[0].ObjectNumber)]; ok {
			return n
		}
	}
	p, ok := w["P"].(types.IndirectRef)
	if !ok {
		return 0
	}
	for i := 1; i <= ctx.PageCount; i++ {
		if _, ref, _, err := ctx.PageDict(i, false); err == nil && ref != nil && ref.ObjectNumber == p.ObjectNumber {
			return i
		}
	}
	return 0
}

func pruneFields(ctx *model.Context, fields types.Array, parent string, names map[string]struct{}, widgets map[int]struct{}, removed *int, depth int) types.Array {
	kept := make(types.Array, 0, len(fields))
	for _, obj := range fields {
		d, err := ctx.DereferenceDict(obj)
		if err != nil || d == nil || depth > maxFieldDepth {
			kept = append(kept, obj)
			continue
		}
		name := qualify(ctx, d, parent)
		kids, _ := array(ctx, d["Kids"])
		if hasNamedKid(ctx, kids) {
			d["Kids"] = pruneFields(ctx, kids, name, names, widgets, removed, depth+1)
			kept = append(kept, obj)
			continue
		}
		if _, drop := names[name]; !drop {
			kept = append(kept, obj)
			continue
		}
		*removed++
		if len(kids) == 0 {
			kids = types.Array{obj}
		}
		for _, k := range kids {
			if ref, ok := k.(types.IndirectRef); ok {
				widgets[int(ref.ObjectNumber)] = struct{}{}
			}
		}
	}
	return kept
}

func qualify(ctx *model.Context, d types.Dict, parent string) string {
	t, ok := d.Find("T")
	if !ok {
		return parent
	}
	part, err := ctx.DereferenceStringOrHexLiteral(t, model.V10, nil)
	if err != nil {
		return parent
	}
	if parent == "" {
		return part
	}
	return parent + "." + part
}

// hasNamedKid tells intermediate fields (kids carry /T) from terminal
// fields whose kids are widgets.
func hasNamedKid(ctx *model.Context, kids types.Array) bool {
	for _, k := range kids {
		if kd, err := ctx.DereferenceDict(k); err == nil && kd != nil {
			if _, ok := kd.Find("T"); ok {
				return true
			}
		}
	}
	return false
}
