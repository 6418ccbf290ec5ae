// Package widget holds the overlay annotation model: the widget kinds, their
// payloads, the lifecycle state chart and the signature drawing surface.
package widget

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownKind = errors.New("widget: unknown kind")

// Kind is fixed when a widget is created.
type Kind int

const (
	Field Kind = iota + 1
	Text
	Signature
)

func (k Kind) String() string {
	switch k {
	case Field:
		return "field"
	case Text:
		return "text"
	case Signature:
		return "signature"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "field":
		return Field, nil
	case "text":
		return Text, nil
	case "signature":
		return Signature, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// DefaultSize is the pixel size a widget gets when placed with a click.
func (k Kind) DefaultSize() (w, h float64) {
	if k == Signature {
		return 250, 120
	}
	return 200, 30
}

// HasInterior reports whether the widget owns an input surface (a text area
// or a drawing pad) that receives events while editing.
func (k Kind) HasInterior() bool {
	return k == Text || k == Signature
}
