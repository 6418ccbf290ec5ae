package dom

import (
	"github.com/wudi/pdfoverlay/scripting"
	"github.com/wudi/pdfoverlay/widget"
)

// widgetInfos snapshots ws for a script. Geometry is page-local pixels.
func widgetInfos(ws []*widget.Widget) []scripting.WidgetInfo {
	out := make([]scripting.WidgetInfo, 0, len(ws))
	for _, w := range ws {
		info := scripting.WidgetInfo{
			ID:       w.ID,
			Kind:     w.Kind.String(),
			Page:     w.Page,
			X:        w.Geometry.X,
			Y:        w.Geometry.Y,
			W:        w.Geometry.W,
			H:        w.Geometry.H,
			State:    string(w.State()),
			Imported: w.ImportedName,
		}
		if w.Text != nil {
			info.Text = w.Text.Content
		}
		if w.Signature != nil {
			info.Blank = w.Signature.Blank()
		}
		out = append(out, info)
	}
	return out
}
