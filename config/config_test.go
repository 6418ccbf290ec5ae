package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/wudi/pdfoverlay/widget"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Scale != 1.5 || cfg.Output != "edited_form.pdf" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	t.Setenv("OVERLAY_SCALE", "2")
	src := `
scale: ${OVERLAY_SCALE}
text:
  size: 18
  color: "#ff0000"
signature:
  color: "${SIG_COLOR:-#0000ff}"
script:
  timeout: 250ms
log:
  format: json
`
	cfg, err := Load(strings.NewReader(src))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := Default()
	want.Scale = 2
	want.Text = TextConfig{Size: 18, Color: "#ff0000"}
	want.Signature.Color = "#0000ff"
	want.Script.Timeout = 250 * time.Millisecond
	want.Log.Format = "json"
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []string{
		"scale: 0",
		"text:\n  size: 100",
		"signature:\n  width: 11",
		"text:\n  color: \"#zzzzzz\"",
		"log:\n  format: xml",
		"scale: [1",
	}
	for _, src := range cases {
		if _, err := Load(strings.NewReader(src)); !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("%q: expected ErrInvalidConfig, got %v", src, err)
		}
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "overlay.yaml")
	if err := os.WriteFile(path, []byte("output: signed.pdf\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load file: %v", err)
	}
	if cfg.Output != "signed.pdf" {
		t.Fatalf("output = %q", cfg.Output)
	}

	if _, err := LoadFile(filepath.Join(dir, "missing.yaml")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	txt := filepath.Join(dir, "overlay.txt")
	_ = os.WriteFile(txt, []byte("scale: 1"), 0o600)
	if _, err := LoadFile(txt); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for .txt, got %v", err)
	}
}

func TestStyle(t *testing.T) {
	cfg := Default()
	cfg.Text.Color = "#102030"
	cfg.Signature.Width = 5
	got := cfg.Style()
	want := widget.Style{
		Text:   widget.TextStyle{Size: 14, Color: widget.Color{R: 0x10, G: 0x20, B: 0x30}},
		Stroke: widget.StrokeStyle{Width: 5, Color: widget.Black},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("style mismatch (-want +got):\n%s", diff)
	}
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("PRESENT", "yes")
	os.Unsetenv("ABSENT_FOR_TEST")
	got := ExpandEnv("${PRESENT} ${ABSENT_FOR_TEST} ${ABSENT_FOR_TEST:-fallback}")
	if got != "yes  fallback" {
		t.Fatalf("ExpandEnv = %q", got)
	}
}
