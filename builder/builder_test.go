package builder

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/wudi/pdfoverlay/internal/pdftest"
)

func readDoc(t *testing.T, pages ...pdftest.Page) *model.Context {
	t.Helper()
	ctx, err := Read(pdftest.Document(pages...))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return ctx
}

func pageDict(t *testing.T, ctx *model.Context, n int) types.Dict {
	t.Helper()
	d, _, _, err := ctx.PageDict(n, false)
	if err != nil || d == nil {
		t.Fatalf("page %d: %v", n, err)
	}
	return d
}

func streamContent(t *testing.T, ctx *model.Context, obj types.Object) string {
	t.Helper()
	o, err := ctx.Dereference(obj)
	if err != nil {
		t.Fatalf("dereference %v: %v", obj, err)
	}
	sd, ok := o.(types.StreamDict)
	if !ok {
		t.Fatalf("%v is %T, not a stream", obj, o)
	}
	if len(sd.Content) == 0 && len(sd.Raw) > 0 {
		if err := sd.Decode(); err != nil {
			t.Fatalf("decode: %v", err)
		}
	}
	return string(sd.Content)
}

func contents(t *testing.T, ctx *model.Context, page types.Dict) types.Array {
	t.Helper()
	arr, ok := page["Contents"].(types.Array)
	if !ok {
		t.Fatalf("contents = %T, want array", page["Contents"])
	}
	return arr
}

func resource(t *testing.T, ctx *model.Context, page types.Dict, category, name string) types.Object {
	t.Helper()
	res, err := ctx.DereferenceDict(page["Resources"])
	if err != nil || res == nil {
		t.Fatalf("resources: %v", err)
	}
	cat, err := ctx.DereferenceDict(res[category])
	if err != nil || cat == nil {
		t.Fatalf("/%s: %v", category, err)
	}
	return cat[name]
}

func TestPageBuilder_DrawTextWrapsExistingContent(t *testing.T) {
	ctx := readDoc(t, pdftest.Page{Width: 612, Height: 792, Content: "1 0 0 RG 0 0 m 10 10 l S"})
	err := ForPage(ctx, 1).
		DrawText("Hello", 12, 700, TextOptions{FontSize: 14, Color: Color{R: 1}}).
		Finish()
	if err != nil {
		t.Fatalf("finish: %v", err)
	}

	page := pageDict(t, ctx, 1)
	cs := contents(t, ctx, page)
	if len(cs) != 3 {
		t.Fatalf("expected wrapped original plus overlay, got %d streams", len(cs))
	}
	if got := streamContent(t, ctx, cs[0]); got != "q\n" {
		t.Fatalf("original content not opened with q: %q", got)
	}
	if got := streamContent(t, ctx, cs[1]); !strings.Contains(got, "10 10 l S") {
		t.Fatalf("original content lost: %q", got)
	}

	overlay := streamContent(t, ctx, cs[2])
	want := "Q\nq\nBT\n/OvF1 14 Tf\n1 0 0 rg\n1 0 0 1 12 700 Tm\n(Hello) Tj\nET\nQ\n"
	if overlay != want {
		t.Fatalf("overlay = %q, want %q", overlay, want)
	}
	font, err := ctx.DereferenceDict(resource(t, ctx, page, "Font", "OvF1"))
	if err != nil || font == nil || !isOverlayFont(font) {
		t.Fatalf("OvF1 not registered as Helvetica: %v %v", font, err)
	}
}

func TestPageBuilder_MultilineTextWithoutExistingContent(t *testing.T) {
	ctx := readDoc(t, pdftest.Letter)
	delete(pageDict(t, ctx, 1), "Contents")

	if err := ForPage(ctx, 1).DrawText("one\ntwo\nthree", 0, 100, TextOptions{FontSize: 10}).Finish(); err != nil {
		t.Fatalf("finish: %v", err)
	}
	cs := contents(t, ctx, pageDict(t, ctx, 1))
	if len(cs) != 1 {
		t.Fatalf("empty page should not be wrapped, got %d streams", len(cs))
	}
	got := streamContent(t, ctx, cs[0])
	if !strings.HasPrefix(got, "q\n") {
		t.Fatalf("unbalanced overlay: %q", got)
	}
	for _, line := range []string{
		"1 0 0 1 0 100 Tm\n(one) Tj",
		"1 0 0 1 0 88 Tm\n(two) Tj",
		"1 0 0 1 0 76 Tm\n(three) Tj",
	} {
		if !strings.Contains(got, line) {
			t.Errorf("missing %q in %q", line, got)
		}
	}
}

func TestPageBuilder_EmptyTextIsSkipped(t *testing.T) {
	ctx := readDoc(t, pdftest.Letter)
	before := pageDict(t, ctx, 1)["Contents"]
	if err := ForPage(ctx, 1).DrawText("", 0, 0, TextOptions{}).Finish(); err != nil {
		t.Fatalf("finish: %v", err)
	}
	if after := pageDict(t, ctx, 1)["Contents"]; after != before {
		t.Fatalf("page modified by empty overlay: %v", after)
	}
}

func TestPageBuilder_FontReused(t *testing.T) {
	ctx := readDoc(t, pdftest.Letter)
	if err := ForPage(ctx, 1).DrawText("a", 0, 0, TextOptions{}).Finish(); err != nil {
		t.Fatal(err)
	}
	if err := ForPage(ctx, 1).DrawText("b", 0, 0, TextOptions{}).Finish(); err != nil {
		t.Fatal(err)
	}
	res, _ := ctx.DereferenceDict(pageDict(t, ctx, 1)["Resources"])
	fonts, _ := ctx.DereferenceDict(res["Font"])
	if len(fonts) != 1 {
		t.Fatalf("expected overlay font to be reused, have %v", fonts)
	}
}

func TestPageBuilder_InheritedResourcesCopied(t *testing.T) {
	ctx := readDoc(t, pdftest.Letter, pdftest.Letter)
	first := pageDict(t, ctx, 1)
	delete(first, "Resources")
	delete(pageDict(t, ctx, 2), "Resources")
	parent, err := ctx.DereferenceDict(first["Parent"])
	if err != nil || parent == nil {
		t.Fatalf("parent: %v", err)
	}
	parent["Resources"] = types.Dict{"Font": types.Dict{"F1": HelveticaFont()}}

	if err := ForPage(ctx, 1).DrawText("x", 0, 0, TextOptions{}).Finish(); err != nil {
		t.Fatalf("finish: %v", err)
	}
	if resource(t, ctx, first, "Font", "F1") == nil || resource(t, ctx, first, "Font", "OvF1") == nil {
		t.Fatalf("page resources should hold the inherited and the overlay font")
	}
	inherited, _ := ctx.DereferenceDict(parent["Resources"])
	if fonts, _ := ctx.DereferenceDict(inherited["Font"]); len(fonts) != 1 {
		t.Fatalf("overlay font leaked into the page tree: %v", fonts)
	}
}

func TestPageBuilder_DrawImage(t *testing.T) {
	ctx := readDoc(t, pdftest.Letter)
	page := pageDict(t, ctx, 1)
	page["Resources"] = types.Dict{"XObject": types.Dict{"OvIm1": types.Dict{}}}

	src := image.NewNRGBA(image.Rect(0, 0, 4, 2))
	src.Set(0, 0, color.NRGBA{R: 255, A: 255})

	if err := ForPage(ctx, 1).DrawImage(src, 10, 20, 100, 50, ImageOptions{Interpolate: true}).Finish(); err != nil {
		t.Fatalf("finish: %v", err)
	}
	ref := resource(t, ctx, page, "XObject", "OvIm2")
	if ref == nil {
		t.Fatalf("image not registered under a fresh name")
	}
	o, err := ctx.Dereference(ref)
	if err != nil {
		t.Fatal(err)
	}
	sd, ok := o.(types.StreamDict)
	if !ok {
		t.Fatalf("xobject is %T", o)
	}
	if sd.Dict["Subtype"] != types.Name("Image") || sd.Dict["Width"] != types.Integer(4) || sd.Dict["Height"] != types.Integer(2) {
		t.Fatalf("unexpected xobject %v", sd.Dict)
	}
	if sd.Dict["Interpolate"] != types.Boolean(true) {
		t.Fatalf("interpolation not requested")
	}
	if _, ok := sd.Dict["SMask"]; ok {
		t.Fatalf("opaque-looking image got a mask")
	}

	cs := contents(t, ctx, page)
	overlay := streamContent(t, ctx, cs[len(cs)-1])
	if !strings.Contains(overlay, "q\n100 0 0 50 10 20 cm\n/OvIm2 Do\nQ\n") {
		t.Fatalf("overlay = %q", overlay)
	}
}

func TestAddImage_SoftMask(t *testing.T) {
	ctx := readDoc(t, pdftest.Letter)
	partial := image.NewNRGBA(image.Rect(0, 0, 3, 1))
	partial.Set(1, 0, color.NRGBA{B: 255, A: 128})

	ref, w, h, err := AddImage(ctx, partial, ImageOptions{})
	if err != nil || w != 3 || h != 1 {
		t.Fatalf("add image: %d×%d %v", w, h, err)
	}
	o, _ := ctx.Dereference(*ref)
	sd := o.(types.StreamDict)
	mask, ok := sd.Dict["SMask"]
	if !ok {
		t.Fatalf("transparent image lost its soft mask")
	}
	mo, _ := ctx.Dereference(mask)
	if md := mo.(types.StreamDict); md.Dict["ColorSpace"] != types.Name("DeviceGray") {
		t.Fatalf("mask colour space = %v", md.Dict["ColorSpace"])
	}
}

func TestSamples(t *testing.T) {
	opaque := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			opaque.Set(x, y, color.NRGBA{G: 200, A: 255})
		}
	}
	rgb, alpha, _, _ := Samples(opaque)
	if alpha != nil {
		t.Fatalf("opaque image should not carry alpha")
	}
	if !bytes.Equal(rgb[:3], []byte{0, 200, 0}) {
		t.Fatalf("pixel bytes = %v", rgb[:3])
	}

	partial := image.NewNRGBA(image.Rect(0, 0, 3, 1))
	partial.Set(1, 0, color.NRGBA{B: 255, A: 128})
	_, alpha, w, h := Samples(partial)
	if w != 3 || h != 1 || len(alpha) != 3 || alpha[0] != 0 || alpha[1] != 128 {
		t.Fatalf("mask bytes = %v (%d×%d)", alpha, w, h)
	}
}

func TestForPage_OutOfRange(t *testing.T) {
	ctx := readDoc(t, pdftest.Letter)
	for _, n := range []int{0, 2} {
		err := ForPage(ctx, n).DrawText("x", 0, 0, TextOptions{}).Finish()
		if !errors.Is(err, ErrNoPage) {
			t.Fatalf("page %d: expected ErrNoPage, got %v", n, err)
		}
	}
	if err := ForPage(nil, 1).Finish(); !errors.Is(err, ErrNoPage) {
		t.Fatalf("nil context: expected ErrNoPage, got %v", err)
	}
}

func TestWrite_RoundTrip(t *testing.T) {
	ctx := readDoc(t, pdftest.Letter, pdftest.Page{Width: 200, Height: 100})
	if err := ForPage(ctx, 2).DrawText("Hi", 5, 50, TextOptions{}).Finish(); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := Write(ctx, &buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	again, err := Read(buf.Bytes())
	if err != nil {
		t.Fatalf("reread: %v", err)
	}
	mb, err := MediaBox(again, 2)
	if err != nil {
		t.Fatal(err)
	}
	if again.PageCount != 2 || mb.Width() != 200 || mb.Height() != 100 {
		t.Fatalf("pages = %d, media box = %+v", again.PageCount, mb)
	}
	cs := contents(t, again, pageDict(t, again, 2))
	if got := streamContent(t, again, cs[len(cs)-1]); !strings.Contains(got, "(Hi) Tj") {
		t.Fatalf("overlay lost on write: %q", got)
	}
}

func TestRead_Garbage(t *testing.T) {
	if _, err := Read([]byte("hello")); err == nil {
		t.Fatalf("expected an error")
	}
}

func TestEncodeWinAnsi(t *testing.T) {
	tests := []struct {
		in   string
		want []byte
	}{
		{"abc", []byte("abc")},
		{"café", []byte{'c', 'a', 'f', 0xE9}},
		{"€5", []byte{0x80, '5'}},
		{"日本", []byte("??")},
	}
	for _, tt := range tests {
		if got := EncodeWinAnsi(tt.in); !bytes.Equal(got, tt.want) {
			t.Errorf("EncodeWinAnsi(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNum(t *testing.T) {
	tests := map[float64]string{0: "0", 12: "12", 0.5: "0.5", 68.667: "68.667", 1.0 / 3: "0.333", -0.0001: "0"}
	for in, want := range tests {
		if got := num(in); got != want {
			t.Errorf("num(%v) = %q, want %q", in, got, want)
		}
	}
}
