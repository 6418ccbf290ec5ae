// Package assemble writes frozen overlay widgets into a copy of the source
// document: text and signature images become page content, fields become
// AcroForm text fields.
package assemble

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/wudi/pdfoverlay/builder"
	"github.com/wudi/pdfoverlay/coords"
	"github.com/wudi/pdfoverlay/observability"
	"github.com/wudi/pdfoverlay/widget"
)

var ErrAssemble = errors.New("assemble: cannot produce document")

// TextInset is the horizontal distance from the widget's left edge to the
// start of the text.
const TextInset = 2

// Placement is one widget frozen in PDF user space.
type Placement struct {
	Kind     widget.Kind
	Rect     coords.Rect
	Text     string
	FontSize float64
	Color    widget.Color
	Image    image.Image
	// FieldName is the AcroForm name for Field placements.
	FieldName string
}

// Assembler produces the edited document. byPage is keyed by zero-based
// page index.
type Assembler interface {
	Assemble(ctx context.Context, src []byte, byPage map[int][]Placement, opts ...Option) ([]byte, error)
}

type assembleOptions struct {
	replace map[string]struct{}
}

// Option adjusts a single Assemble call.
type Option func(*assembleOptions)

// ReplaceFields drops the named fields from the source form before new
// fields are added. Names that are not re-emitted are deleted outright.
func ReplaceFields(names ...string) Option {
	return func(o *assembleOptions) {
		if o.replace == nil {
			o.replace = make(map[string]struct{}, len(names))
		}
		for _, n := range names {
			o.replace[n] = struct{}{}
		}
	}
}

// Config configures the pdfcpu assembler.
type Config struct {
	Logger observability.Logger
	Tracer observability.Tracer
	// FieldBorder is the border width of new fields in points.
	FieldBorder float64
}

type pdfAssembler struct {
	log    observability.Logger
	tracer observability.Tracer
	border float64
}

// New returns an Assembler backed by pdfcpu.
func New(cfg Config) Assembler {
	a := &pdfAssembler{
		log:    cfg.Logger,
		tracer: cfg.Tracer,
		border: cfg.FieldBorder,
	}
	if a.log == nil {
		a.log = observability.NopLogger{}
	}
	if a.tracer == nil {
		a.tracer = observability.NopTracer()
	}
	return a
}

func (a *pdfAssembler) Assemble(ctx context.Context, src []byte, byPage map[int][]Placement, opts ...Option) (out []byte, err error) {
	var o assembleOptions
	for _, opt := range opts {
		opt(&o)
	}

	ctx, span := a.tracer.StartSpan(ctx, observability.SpanAssemble)
	defer func() {
		if err != nil {
			span.SetError(err)
		}
		span.Finish()
	}()

	doc, err := a.parse(ctx, src)
	if err != nil {
		return nil, err
	}
	span.SetTag("pages", doc.PageCount)

	if err := a.place(ctx, doc, byPage, o); err != nil {
		return nil, err
	}
	return a.write(ctx, doc)
}

func (a *pdfAssembler) parse(ctx context.Context, src []byte) (*model.Context, error) {
	_, span := a.tracer.StartSpan(ctx, observability.SpanParse)
	defer span.Finish()
	span.SetTag("bytes", len(src))

	doc, err := builder.Read(src)
	if err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("%w: parse: %v", ErrAssemble, err)
	}
	return doc, nil
}

func (a *pdfAssembler) place(ctx context.Context, doc *model.Context, byPage map[int][]Placement, o assembleOptions) error {
	_, span := a.tracer.StartSpan(ctx, observability.SpanPlace)
	defer span.Finish()

	fail := func(err error) error {
		span.SetError(err)
		return err
	}
	for _, idx := range sortedPages(byPage) {
		if idx < 0 || idx >= doc.PageCount {
			return fail(fmt.Errorf("%w: page index %d out of range (%d pages)", ErrAssemble, idx, doc.PageCount))
		}
	}

	// Replaced fields go first so a re-emitted name never collides with
	// its old widget.
	removed, err := builder.RemoveFields(doc, o.replace)
	if err != nil {
		return fail(fmt.Errorf("%w: remove fields: %v", ErrAssemble, err))
	}

	var fields []types.IndirectRef
	placed := 0
	for _, idx := range sortedPages(byPage) {
		pb := builder.ForPage(doc, idx+1)
		for _, p := range byPage[idx] {
			switch p.Kind {
			case widget.Text:
				if p.Text == "" {
					continue
				}
				r, g, b := p.Color.RGB()
				pb.DrawText(p.Text, p.Rect.X+TextInset, p.Rect.Y+p.Rect.H-p.FontSize, builder.TextOptions{
					FontSize: p.FontSize,
					Color:    builder.Color{R: r, G: g, B: b},
				})
			case widget.Signature:
				if p.Image == nil {
					continue
				}
				pb.DrawImage(p.Image, p.Rect.X, p.Rect.Y, p.Rect.W, p.Rect.H, builder.ImageOptions{Interpolate: true})
			case widget.Field:
				ref, err := builder.AddTextField(doc, idx+1, toRect(p.Rect), builder.FieldOptions{
					Name:        p.FieldName,
					BorderWidth: a.border,
				})
				if err != nil {
					return fail(fmt.Errorf("%w: page %d: %v", ErrAssemble, idx, err))
				}
				fields = append(fields, *ref)
			default:
				a.log.Warn("skipping placement of unknown kind", observability.Int("page", idx), observability.String("kind", p.Kind.String()))
				continue
			}
			placed++
		}
		if err := pb.Finish(); err != nil {
			return fail(fmt.Errorf("%w: page %d: %v", ErrAssemble, idx, err))
		}
	}
	if err := builder.AddFormFields(doc, fields...); err != nil {
		return fail(fmt.Errorf("%w: form: %v", ErrAssemble, err))
	}

	span.SetTag("placements", placed)
	span.SetTag("fields", len(fields))
	a.log.Debug("placed overlay",
		observability.Int("placements", placed),
		observability.Int("fields", len(fields)),
		observability.Int("replaced", removed),
	)
	return nil
}

func (a *pdfAssembler) write(ctx context.Context, doc *model.Context) ([]byte, error) {
	_, span := a.tracer.StartSpan(ctx, observability.SpanWrite)
	defer span.Finish()

	var buf bytes.Buffer
	if err := builder.Write(doc, &buf); err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("%w: write: %v", ErrAssemble, err)
	}
	span.SetTag("bytes", buf.Len())
	return buf.Bytes(), nil
}

func toRect(r coords.Rect) builder.Rect {
	r = coords.Normalize(coords.Point{X: r.X, Y: r.Y}, coords.Point{X: r.Right(), Y: r.Bottom()})
	return builder.Rect{LLX: r.X, LLY: r.Y, URX: r.Right(), URY: r.Bottom()}
}

func sortedPages(byPage map[int][]Placement) []int {
	idx := make([]int, 0, len(byPage))
	for k := range byPage {
		idx = append(idx, k)
	}
	sort.Ints(idx)
	return idx
}
