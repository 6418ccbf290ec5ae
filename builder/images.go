package builder

import (
	"image"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	xdraw "golang.org/x/image/draw"
)

// Samples splits a Go image into DeviceRGB colour bytes and DeviceGray alpha
// bytes. alpha is nil for a fully opaque image.
func Samples(src image.Image) (rgb, alpha []byte, w, h int) {
	bounds := src.Bounds()
	w, h = bounds.Dx(), bounds.Dy()

	// Non-premultiplied, so the colour bytes are the raw channel values.
	nrgba := image.NewNRGBA(image.Rect(0, 0, w, h))
	xdraw.Copy(nrgba, image.Point{}, src, bounds, xdraw.Src, nil)

	rgb = make([]byte, 0, w*h*3)
	alpha = make([]byte, 0, w*h)
	hasAlpha := false
	for i := 0; i < w*h; i++ {
		offset := i * 4
		rgb = append(rgb, nrgba.Pix[offset], nrgba.Pix[offset+1], nrgba.Pix[offset+2])
		a := nrgba.Pix[offset+3]
		alpha = append(alpha, a)
		if a < 255 {
			hasAlpha = true
		}
	}
	if !hasAlpha {
		alpha = nil
	}
	return rgb, alpha, w, h
}

// AddImage stores src as an image XObject. Transparency is carried in a
// DeviceGray soft mask.
func AddImage(ctx *model.Context, src image.Image, opts ImageOptions) (*types.IndirectRef, int, int, error) {
	rgb, alpha, w, h := Samples(src)
	entries := imageDict(w, h, "DeviceRGB")
	if opts.Interpolate {
		entries["Interpolate"] = types.Boolean(true)
	}
	if alpha != nil {
		mask, err := newStream(ctx, alpha, imageDict(w, h, "DeviceGray"))
		if err != nil {
			return nil, 0, 0, err
		}
		entries["SMask"] = *mask
	}
	ref, err := newStream(ctx, rgb, entries)
	if err != nil {
		return nil, 0, 0, err
	}
	return ref, w, h, nil
}

func imageDict(w, h int, colorSpace string) types.Dict {
	return types.Dict{
		"Type":             types.Name("XObject"),
		"Subtype":          types.Name("Image"),
		"Width":            types.Integer(w),
		"Height":           types.Integer(h),
		"ColorSpace":       types.Name(colorSpace),
		"BitsPerComponent": types.Integer(8),
	}
}
