package editor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/wudi/pdfoverlay/widget"
)

var ErrUnknownTool = errors.New("editor: unknown tool")

// Tool is the active toolbar tool.
type Tool int

const (
	ToolSelect Tool = iota
	ToolField
	ToolText
	ToolSignature
)

func (t Tool) String() string {
	switch t {
	case ToolSelect:
		return "select"
	case ToolField:
		return "field"
	case ToolText:
		return "text"
	case ToolSignature:
		return "signature"
	}
	return fmt.Sprintf("Tool(%d)", int(t))
}

func ParseTool(s string) (Tool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "select":
		return ToolSelect, nil
	case "field":
		return ToolField, nil
	case "text":
		return ToolText, nil
	case "signature":
		return ToolSignature, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownTool, s)
}

// places returns the widget kind created by a click with this tool.
func (t Tool) places() (widget.Kind, bool) {
	switch t {
	case ToolField:
		return widget.Field, true
	case ToolText:
		return widget.Text, true
	case ToolSignature:
		return widget.Signature, true
	}
	return 0, false
}

// ToolSettings holds the toolbar defaults copied into new widgets.
type ToolSettings struct {
	style widget.Style
}

func NewToolSettings(style widget.Style) *ToolSettings {
	style.Text.Size = widget.ClampFontSize(style.Text.Size)
	style.Stroke.Width = widget.ClampStrokeWidth(style.Stroke.Width)
	return &ToolSettings{style: style}
}

// Style returns a copy of the current defaults.
func (s *ToolSettings) Style() widget.Style { return s.style }

// SetTextSize clamps n to the allowed font sizes and returns the stored value.
func (s *ToolSettings) SetTextSize(n int) int {
	s.style.Text.Size = widget.ClampFontSize(n)
	return s.style.Text.Size
}

func (s *ToolSettings) SetTextColor(hex string) error {
	c, err := widget.ParseColor(hex)
	if err != nil {
		return err
	}
	s.style.Text.Color = c
	return nil
}

func (s *ToolSettings) SetStrokeWidth(n int) int {
	s.style.Stroke.Width = widget.ClampStrokeWidth(n)
	return s.style.Stroke.Width
}

func (s *ToolSettings) SetStrokeColor(hex string) error {
	c, err := widget.ParseColor(hex)
	if err != nil {
		return err
	}
	s.style.Stroke.Color = c
	return nil
}
