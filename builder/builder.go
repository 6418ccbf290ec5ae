// Package builder draws overlay content onto pages of an existing document:
// text runs in the standard Helvetica font, raster images and interactive
// text fields. Drawing is collected per page and committed with Finish.
package builder

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"golang.org/x/text/encoding/charmap"
)

var ErrNoPage = errors.New("builder: no such page")

// PageBuilder provides a fluent API for decorating one page.
type PageBuilder interface {
	DrawText(text string, x, y float64, opts TextOptions) PageBuilder
	DrawImage(img image.Image, x, y, width, height float64, opts ImageOptions) PageBuilder
	Finish() error
}

// TextOptions configures text drawing.
type TextOptions struct {
	FontSize float64
	Color    Color
	// Leading is the baseline distance between lines; 1.2×FontSize when zero.
	Leading float64
}

// ImageOptions configures image drawing.
type ImageOptions struct {
	Interpolate bool
}

// Color is an RGB colour with 0..1 channels.
type Color struct {
	R, G, B float64
}

const (
	defaultFontSize = 12
	defaultBaseFont = "Helvetica"
	fontPrefix      = "OvF"
	imagePrefix     = "OvIm"
)

type pageBuilderImpl struct {
	ctx      *model.Context
	pageNr   int
	ops      bytes.Buffer
	fontName string
	fonts    types.Dict
	xobjects types.Dict
	err      error
}

// ForPage starts an overlay on the 1-based page. The page content is not
// touched until Finish.
func ForPage(ctx *model.Context, pageNr int) PageBuilder {
	p := &pageBuilderImpl{ctx: ctx, pageNr: pageNr, fonts: types.Dict{}, xobjects: types.Dict{}}
	if ctx == nil || pageNr < 1 || pageNr > ctx.PageCount {
		p.err = fmt.Errorf("%w: %d", ErrNoPage, pageNr)
	}
	return p
}

// DrawText draws text with its first baseline at (x, y). Each '\n' starts a
// new line one leading lower. Runes outside WinAnsi are drawn as '?'.
func (p *pageBuilderImpl) DrawText(text string, x, y float64, opts TextOptions) PageBuilder {
	if p.err != nil || text == "" {
		return p
	}
	fontName, err := p.ensureFont()
	if err != nil {
		p.err = err
		return p
	}
	size := opts.FontSize
	if size <= 0 {
		size = defaultFontSize
	}
	leading := opts.Leading
	if leading <= 0 {
		leading = 1.2 * size
	}

	p.ops.WriteString("BT\n")
	fmt.Fprintf(&p.ops, "/%s %s Tf\n", fontName, num(size))
	writeFill(&p.ops, opts.Color)
	for i, line := range strings.Split(text, "\n") {
		fmt.Fprintf(&p.ops, "1 0 0 1 %s %s Tm\n", num(x), num(y-float64(i)*leading))
		fmt.Fprintf(&p.ops, "(%s) Tj\n", escapeText(string(EncodeWinAnsi(line))))
	}
	p.ops.WriteString("ET\n")
	return p
}

// DrawImage paints img into the rectangle with lower-left corner (x, y).
// A zero width or height uses the image's pixel size.
func (p *pageBuilderImpl) DrawImage(img image.Image, x, y, width, height float64, opts ImageOptions) PageBuilder {
	if p.err != nil || img == nil {
		return p
	}
	ref, w, h, err := AddImage(p.ctx, img, opts)
	if err != nil {
		p.err = fmt.Errorf("builder: image: %w", err)
		return p
	}
	taken, err := p.taken("XObject")
	if err != nil {
		p.err = err
		return p
	}
	name := uniqueName(imagePrefix, func(n string) bool {
		_, pending := p.xobjects[n]
		return taken(n) || pending
	})
	p.xobjects[name] = *ref

	if width == 0 {
		width = float64(w)
	}
	if height == 0 {
		height = float64(h)
	}
	fmt.Fprintf(&p.ops, "q\n%s 0 0 %s %s %s cm\n/%s Do\nQ\n", num(width), num(height), num(x), num(y), name)
	return p
}

// Finish appends the collected drawing as a new content stream. The page's
// existing content is wrapped in q/Q so a graphics state it leaves behind
// cannot leak into the overlay.
func (p *pageBuilderImpl) Finish() error {
	if p.err != nil {
		return p.err
	}
	if p.ops.Len() == 0 {
		return nil
	}
	page, _, _, err := p.ctx.PageDict(p.pageNr, false)
	if err != nil || page == nil {
		return fmt.Errorf("%w: %d", ErrNoPage, p.pageNr)
	}
	res, err := ownResources(p.ctx, page)
	if err != nil {
		return err
	}
	if err := merge(p.ctx, res, "Font", p.fonts); err != nil {
		return err
	}
	if err := merge(p.ctx, res, "XObject", p.xobjects); err != nil {
		return err
	}

	existing, err := array(p.ctx, page["Contents"])
	if err != nil {
		return fmt.Errorf("builder: page %d contents: %w", p.pageNr, err)
	}
	var overlay bytes.Buffer
	if len(existing) > 0 {
		overlay.WriteString("Q\n")
	}
	overlay.WriteString("q\n")
	overlay.Write(p.ops.Bytes())
	overlay.WriteString("Q\n")
	ovRef, err := newStream(p.ctx, overlay.Bytes(), nil)
	if err != nil {
		return fmt.Errorf("builder: page %d overlay: %w", p.pageNr, err)
	}

	contents := make(types.Array, 0, len(existing)+2)
	if len(existing) > 0 {
		qRef, err := newStream(p.ctx, []byte("q\n"), nil)
		if err != nil {
			return fmt.Errorf("builder: page %d overlay: %w", p.pageNr, err)
		}
		contents = append(contents, *qRef)
		contents = append(contents, existing...)
	}
	page["Contents"] = append(contents, *ovRef)
	p.ops.Reset()
	return nil
}

func (p *pageBuilderImpl) ensureFont() (string, error) {
	if p.fontName != "" {
		return p.fontName, nil
	}
	page, _, _, err := p.ctx.PageDict(p.pageNr, false)
	if err != nil || page == nil {
		return "", fmt.Errorf("%w: %d", ErrNoPage, p.pageNr)
	}
	if fonts, err := inheritedSub(p.ctx, page, "Font"); err == nil {
		for name, obj := range fonts {
			if !strings.HasPrefix(name, fontPrefix) {
				continue
			}
			if fd, err := p.ctx.DereferenceDict(obj); err == nil && isOverlayFont(fd) {
				p.fontName = name
				return name, nil
			}
		}
	}
	taken, err := p.taken("Font")
	if err != nil {
		return "", err
	}
	p.fontName = uniqueName(fontPrefix, taken)
	p.fonts[p.fontName] = HelveticaFont()
	return p.fontName, nil
}

// taken reports resource names already used in the page's category.
func (p *pageBuilderImpl) taken(category string) (func(string) bool, error) {
	page, _, _, err := p.ctx.PageDict(p.pageNr, false)
	if err != nil || page == nil {
		return nil, fmt.Errorf("%w: %d", ErrNoPage, p.pageNr)
	}
	existing, err := inheritedSub(p.ctx, page, category)
	if err != nil {
		return nil, err
	}
	return func(n string) bool {
		_, ok := existing[n]
		return ok
	}, nil
}

// HelveticaFont is the standard 14 font used for overlay text and fields.
func HelveticaFont() types.Dict {
	return types.Dict{
		"Type":     types.Name("Font"),
		"Subtype":  types.Name("Type1"),
		"BaseFont": types.Name(defaultBaseFont),
		"Encoding": types.Name("WinAnsiEncoding"),
	}
}

func isOverlayFont(d types.Dict) bool {
	return d["BaseFont"] == types.Name(defaultBaseFont) && d["Encoding"] == types.Name("WinAnsiEncoding")
}

// inheritedResources finds the resource dictionary in effect for page,
// walking up the page tree.
func inheritedResources(ctx *model.Context, page types.Dict) (types.Dict, error) {
	for d, depth := page, 0; d != nil && depth < 64; depth++ {
		if obj, ok := d.Find("Resources"); ok && obj != nil {
			return ctx.DereferenceDict(obj)
		}
		parent, ok := d.Find("Parent")
		if !ok {
			break
		}
		next, err := ctx.DereferenceDict(parent)
		if err != nil {
			return nil, err
		}
		d = next
	}
	return nil, nil
}

func inheritedSub(ctx *model.Context, page types.Dict, category string) (types.Dict, error) {
	res, err := inheritedResources(ctx, page)
	if err != nil || res == nil {
		return nil, err
	}
	obj, ok := res.Find(category)
	if !ok {
		return nil, nil
	}
	return ctx.DereferenceDict(obj)
}

// ownResources gives page a resource dictionary of its own, seeded from the
// inherited one, so additions do not leak to sibling pages.
func ownResources(ctx *model.Context, page types.Dict) (types.Dict, error) {
	if obj, ok := page.Find("Resources"); ok && obj != nil {
		return subDict(ctx, page, "Resources")
	}
	inherited, err := inheritedResources(ctx, page)
	if err != nil {
		return nil, err
	}
	res := types.Dict{}
	for k, v := range inherited {
		if sub, err := ctx.DereferenceDict(v); err == nil && sub != nil {
			cp := types.Dict{}
			for sk, sv := range sub {
				cp[sk] = sv
			}
			res[k] = cp
			continue
		}
		res[k] = v
	}
	page["Resources"] = res
	return res, nil
}

func merge(ctx *model.Context, res types.Dict, category string, entries types.Dict) error {
	if len(entries) == 0 {
		return nil
	}
	d, err := subDict(ctx, res, category)
	if err != nil {
		return err
	}
	for k, v := range entries {
		d[k] = v
	}
	return nil
}

func writeFill(buf *bytes.Buffer, c Color) {
	fmt.Fprintf(buf, "%s %s %s rg\n", num(c.R), num(c.G), num(c.B))
}

func uniqueName(prefix string, taken func(string) bool) string {
	for i := 1; ; i++ {
		name := fmt.Sprintf("%s%d", prefix, i)
		if !taken(name) {
			return name
		}
	}
}

// num formats an operand with at most three decimals.
func num(v float64) string {
	s := strconv.FormatFloat(v, 'f', 3, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}

// EncodeWinAnsi converts UTF-8 text to WinAnsiEncoding bytes.
func EncodeWinAnsi(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		b, ok := charmap.Windows1252.EncodeRune(r)
		if !ok {
			b = '?'
		}
		out = append(out, b)
	}
	return out
}

func escapeText(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "(", "\\(")
	s = strings.ReplaceAll(s, ")", "\\)")
	return s
}
