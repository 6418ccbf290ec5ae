package editor

import (
	"context"
	"fmt"
	"time"

	"github.com/wudi/pdfoverlay/assemble"
	"github.com/wudi/pdfoverlay/observability"
	"github.com/wudi/pdfoverlay/widget"
)

// Placements freezes the widgets into PDF-space placements grouped by
// zero-based page index. Empty text widgets are skipped.
func (s *Session) Placements() (map[int][]assemble.Placement, error) {
	stamp := time.Now().UnixMilli()
	out := make(map[int][]assemble.Placement)
	for i, w := range s.widgets {
		page, ok := s.layout.Page(w.Page)
		if !ok {
			return nil, fmt.Errorf("%w: widget %s on page %d", ErrNoPage, w.ID, w.Page)
		}
		p := assemble.Placement{
			Kind: w.Kind,
			Rect: page.Frame(s.scale).ToPDF(w.Geometry),
		}
		switch w.Kind {
		case widget.Field:
			p.FieldName = w.ImportedName
			if p.FieldName == "" {
				p.FieldName = fmt.Sprintf("field_%d_%d", i, stamp)
			}
		case widget.Text:
			if w.Text == nil || w.Text.Content == "" {
				continue
			}
			p.Text = w.Text.Content
			p.FontSize = float64(w.Text.FontSize)
			p.Color = w.Text.Color
		case widget.Signature:
			if w.Signature == nil {
				continue
			}
			p.Image = w.Signature.Snapshot()
		}
		out[page.Number-1] = append(out[page.Number-1], p)
	}
	return out, nil
}

// Save hands the frozen widgets to the assembler. src is the original
// document; the result is the edited document.
func (s *Session) Save(ctx context.Context, asm assemble.Assembler, src []byte) ([]byte, error) {
	s.cancelGesture()
	byPage, err := s.Placements()
	if err != nil {
		return nil, err
	}
	var opts []assemble.Option
	if len(s.imported) > 0 {
		opts = append(opts, assemble.ReplaceFields(s.imported...))
	}
	out, err := asm.Assemble(ctx, src, byPage, opts...)
	if err != nil {
		s.log.Error("save failed", observability.Error("error", err))
		return nil, err
	}
	n := 0
	for _, ps := range byPage {
		n += len(ps)
	}
	s.log.Info("document saved", observability.Int("placements", n), observability.Int("bytes", len(out)))
	return out, nil
}
