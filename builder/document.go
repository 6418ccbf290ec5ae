package builder

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

var ErrNoPages = errors.New("builder: document has no pages")

// Configuration is the pdfcpu configuration used for every read. Validation
// is relaxed: forms produced by common tools are rarely strictly valid.
func Configuration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// Read parses a document into a pdfcpu context with its page count known.
func Read(data []byte) (*model.Context, error) {
	ctx, err := api.ReadContext(bytes.NewReader(data), Configuration())
	if err != nil {
		return nil, err
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, err
	}
	if ctx.PageCount == 0 {
		return nil, ErrNoPages
	}
	return ctx, nil
}

// Write serializes ctx, including every object added since Read.
func Write(ctx *model.Context, w io.Writer) error {
	return api.WriteContext(ctx, w)
}

// MediaBox returns the effective media box of the 1-based page, following
// inheritance from the page tree.
func MediaBox(ctx *model.Context, pageNr int) (Rect, error) {
	_, _, inh, err := ctx.PageDict(pageNr, false)
	if err != nil {
		return Rect{}, fmt.Errorf("builder: page %d: %w", pageNr, err)
	}
	if inh == nil || inh.MediaBox == nil {
		return Rect{}, fmt.Errorf("builder: page %d has no media box", pageNr)
	}
	mb := inh.MediaBox
	return Rect{LLX: mb.LL.X, LLY: mb.LL.Y, URX: mb.UR.X, URY: mb.UR.Y}, nil
}

// Rect is a PDF rectangle in user space.
type Rect struct {
	LLX, LLY, URX, URY float64
}

func (r Rect) Width() float64  { return r.URX - r.LLX }
func (r Rect) Height() float64 { return r.URY - r.LLY }

// Array returns r as a PDF array.
func (r Rect) Array() types.Array {
	return types.Array{types.Float(r.LLX), types.Float(r.LLY), types.Float(r.URX), types.Float(r.URY)}
}

// RectOf reads a four-number array. The corners are normalized.
func RectOf(ctx *model.Context, obj types.Object) (Rect, bool) {
	arr, err := ctx.DereferenceArray(obj)
	if err != nil || len(arr) != 4 {
		return Rect{}, false
	}
	var v [4]float64
	for i, o := range arr {
		f, err := ctx.DereferenceNumber(o)
		if err != nil {
			return Rect{}, false
		}
		v[i] = f
	}
	return Rect{
		LLX: min(v[0], v[2]), LLY: min(v[1], v[3]),
		URX: max(v[0], v[2]), URY: max(v[1], v[3]),
	}, true
}

// subDict returns d[key] as a dictionary, creating it when absent. Indirect
// dictionaries are resolved; edits to the result land in the document.
func subDict(ctx *model.Context, d types.Dict, key string) (types.Dict, error) {
	obj, ok := d.Find(key)
	if !ok || obj == nil {
		nd := types.Dict{}
		d[key] = nd
		return nd, nil
	}
	sd, err := ctx.DereferenceDict(obj)
	if err != nil {
		return nil, fmt.Errorf("builder: /%s: %w", key, err)
	}
	if sd == nil {
		sd = types.Dict{}
		d[key] = sd
	}
	return sd, nil
}

// array resolves obj to an array; a single element becomes a one-element
// array.
func array(ctx *model.Context, obj types.Object) (types.Array, error) {
	if obj == nil {
		return nil, nil
	}
	if ref, ok := obj.(types.IndirectRef); ok {
		o, err := ctx.Dereference(ref)
		if err != nil {
			return nil, err
		}
		if arr, ok := o.(types.Array); ok {
			return append(types.Array(nil), arr...), nil
		}
		return types.Array{ref}, nil
	}
	if arr, ok := obj.(types.Array); ok {
		return append(types.Array(nil), arr...), nil
	}
	return types.Array{obj}, nil
}

// newStream registers content as a new Flate-compressed stream object.
func newStream(ctx *model.Context, content []byte, entries types.Dict) (*types.IndirectRef, error) {
	sd, err := ctx.NewStreamDictForBuf(content)
	if err != nil {
		return nil, err
	}
	for k, v := range entries {
		sd.Dict[k] = v
	}
	if err := sd.Encode(); err != nil {
		return nil, err
	}
	return ctx.IndRefForNewObject(*sd)
}
