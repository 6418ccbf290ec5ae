// Package config loads overlay settings from YAML files.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wudi/pdfoverlay/widget"
)

var (
	ErrInvalidConfig = errors.New("config: invalid configuration")
	ErrNotFound      = errors.New("config: file not found")
)

type Config struct {
	// Scale is the render scale; fixed for the lifetime of a session.
	Scale float64 `yaml:"scale"`

	Layout    LayoutConfig    `yaml:"layout"`
	Text      TextConfig      `yaml:"text"`
	Signature SignatureConfig `yaml:"signature"`
	Log       LogConfig       `yaml:"log"`
	Script    ScriptConfig    `yaml:"script"`

	// Output is the file name used when no explicit output path is given.
	Output string `yaml:"output"`
}

// LayoutConfig places rendered pages in one vertical column.
type LayoutConfig struct {
	Gap    float64 `yaml:"gap"`
	Margin float64 `yaml:"margin"`
}

type TextConfig struct {
	Size  int    `yaml:"size"`
	Color string `yaml:"color"`
}

type SignatureConfig struct {
	Width int    `yaml:"width"`
	Color string `yaml:"color"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type ScriptConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

func Default() Config {
	return Config{
		Scale:     1.5,
		Layout:    LayoutConfig{Gap: 20, Margin: 20},
		Text:      TextConfig{Size: 14, Color: "#000000"},
		Signature: SignatureConfig{Width: 2, Color: "#000000"},
		Log:       LogConfig{Level: "info", Format: "console"},
		Script:    ScriptConfig{Timeout: 5 * time.Second},
		Output:    "edited_form.pdf",
	}
}

// Validate checks ranges and formats. All problems are reported together.
func (c Config) Validate() error {
	var problems []string
	if c.Scale <= 0 {
		problems = append(problems, "scale must be positive")
	}
	if c.Layout.Gap < 0 || c.Layout.Margin < 0 {
		problems = append(problems, "layout gap and margin must not be negative")
	}
	if c.Text.Size < widget.MinFontSize || c.Text.Size > widget.MaxFontSize {
		problems = append(problems, fmt.Sprintf("text.size must be in [%d, %d]", widget.MinFontSize, widget.MaxFontSize))
	}
	if _, err := widget.ParseColor(c.Text.Color); err != nil {
		problems = append(problems, "text.color: "+err.Error())
	}
	if c.Signature.Width < widget.MinStrokeWidth || c.Signature.Width > widget.MaxStrokeWidth {
		problems = append(problems, fmt.Sprintf("signature.width must be in [%d, %d]", widget.MinStrokeWidth, widget.MaxStrokeWidth))
	}
	if _, err := widget.ParseColor(c.Signature.Color); err != nil {
		problems = append(problems, "signature.color: "+err.Error())
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		problems = append(problems, fmt.Sprintf("log.format %q is not json or console", c.Log.Format))
	}
	if c.Script.Timeout < 0 {
		problems = append(problems, "script.timeout must not be negative")
	}
	if strings.TrimSpace(c.Output) == "" {
		problems = append(problems, "output must not be empty")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// Style converts the text and signature defaults into widget tool settings.
// Call Validate first; unparsable colours fall back to black.
func (c Config) Style() widget.Style {
	tc, err := widget.ParseColor(c.Text.Color)
	if err != nil {
		tc = widget.Black
	}
	sc, err := widget.ParseColor(c.Signature.Color)
	if err != nil {
		sc = widget.Black
	}
	return widget.Style{
		Text:   widget.TextStyle{Size: c.Text.Size, Color: tc},
		Stroke: widget.StrokeStyle{Width: c.Signature.Width, Color: sc},
	}
}

// LoadFile reads a YAML file on top of Default.
func LoadFile(path string) (Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return Config{}, fmt.Errorf("config: access %s: %w", path, err)
	}
	if info.IsDir() {
		return Config{}, fmt.Errorf("%w: %s is a directory", ErrInvalidConfig, path)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
	default:
		return Config{}, fmt.Errorf("%w: unsupported extension %q", ErrInvalidConfig, filepath.Ext(path))
	}
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

// Load decodes YAML from r on top of Default, expanding ${VAR} and
// ${VAR:-default} references first, then validates the result.
func Load(r io.Reader) (Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Config{}, fmt.Errorf("config: read: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal([]byte(ExpandEnv(string(data))), &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var envPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-[^}]*)?\}`)

// ExpandEnv replaces ${VAR} and ${VAR:-default}. Unset variables without a
// default expand to the empty string.
func ExpandEnv(s string) string {
	return envPattern.ReplaceAllStringFunc(s, func(match string) string {
		sub := envPattern.FindStringSubmatch(match)
		value, ok := os.LookupEnv(sub[1])
		if (!ok || value == "") && sub[2] != "" {
			return strings.TrimPrefix(sub[2], ":-")
		}
		return value
	})
}
