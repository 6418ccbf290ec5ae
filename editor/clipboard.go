package editor

import (
	"github.com/wudi/pdfoverlay/observability"
	"github.com/wudi/pdfoverlay/widget"
)

// PasteOffset is added to the stored position on every paste.
const PasteOffset = 20

// clipboard holds one widget snapshot. Pastes move the stored position, so
// consecutive pastes cascade; the payload itself is never touched.
type clipboard struct {
	item *widget.Widget
}

func (c *clipboard) empty() bool { return c.item == nil }

// Copy captures the first selected, non-editing widget. It reports whether
// anything was captured.
func (s *Session) Copy() bool {
	sel := s.Selected()
	if len(sel) == 0 {
		return false
	}
	if len(sel) > 1 {
		s.log.Warn("copy captures only the first selected widget", observability.Int("selected", len(sel)))
	}
	snap, err := sel[0].Clone()
	if err != nil {
		s.log.Error("copy failed", observability.Error("error", err))
		return false
	}
	s.clip.item = snap
	s.log.Debug("copied widget", observability.String("id", sel[0].ID), observability.String("kind", snap.Kind.String()))
	return true
}

// Paste materializes the clipboard on the page it was copied from, offset by
// PasteOffset, and makes it the only selection. It returns nil when the
// clipboard is empty.
func (s *Session) Paste() (*widget.Widget, error) {
	if s.clip.empty() {
		return nil, nil
	}
	s.clip.item.Geometry = s.clip.item.Geometry.Translate(PasteOffset, PasteOffset)
	w, err := s.clip.item.Clone()
	if err != nil {
		return nil, err
	}
	s.deselectAll()
	if err := w.Select(); err != nil {
		return nil, err
	}
	s.add(w)
	s.log.Debug("pasted widget", observability.String("id", w.ID), observability.Int("page", w.Page))
	return w, nil
}

// Clipboard returns a copy of the stored snapshot, if any.
func (s *Session) Clipboard() (*widget.Widget, bool) {
	if s.clip.empty() {
		return nil, false
	}
	c, err := s.clip.item.Clone()
	if err != nil {
		return nil, false
	}
	return c, true
}
