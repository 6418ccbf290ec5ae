package main

import (
	"context"
	"fmt"
	"image/png"
	"os"

	"github.com/spf13/cobra"

	"github.com/wudi/pdfoverlay/extensions"
	"github.com/wudi/pdfoverlay/render"
	"github.com/wudi/pdfoverlay/scripting"
)

type renderOptions struct {
	file    string
	page    int
	scale   float64
	scripts []string
	out     string
}

func (a *App) newRenderCmd() *cobra.Command {
	opts := &renderOptions{}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Rasterize the overlay of one page to PNG",
		Long: `Render replays the gesture scripts, then draws the widgets of one page on
a blank sheet of the page's size. Page content itself is not rasterized.

Examples:
  pdfoverlay render --file form.pdf --script fill.js --page 2 -o preview.png`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.renderPage(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Document path or URL (required)")
	cmd.Flags().IntVarP(&opts.page, "page", "p", 1, "Page number, starting at 1")
	cmd.Flags().Float64Var(&opts.scale, "scale", 0, "Render scale (default from configuration)")
	cmd.Flags().StringArrayVarP(&opts.scripts, "script", "s", nil, "Gesture script to replay first; repeatable")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Output path (default page-<n>.png)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func (a *App) renderPage(ctx context.Context, opts *renderOptions) (err error) {
	e, err := a.env()
	if err != nil {
		return err
	}
	defer func() {
		if serr := e.shutdown(context.Background()); serr != nil && err == nil {
			err = serr
		}
	}()
	if opts.scale > 0 {
		e.cfg.Scale = opts.scale
	}

	data, err := e.load(ctx, opts.file)
	if err != nil {
		return err
	}
	r, err := render.Open(data)
	if err != nil {
		return err
	}
	if opts.page < 1 || opts.page > r.PageCount() {
		return fmt.Errorf("page %d out of range [1, %d]", opts.page, r.PageCount())
	}
	view, err := r.Page(opts.page-1, e.cfg.Scale)
	if err != nil {
		return err
	}

	s, err := e.session(ctx, data)
	if err != nil {
		return err
	}
	scripts := make([]extensions.Script, 0, len(opts.scripts))
	for _, path := range opts.scripts {
		sc, err := extensions.ReadScript(path)
		if err != nil {
			return err
		}
		scripts = append(scripts, sc)
	}
	runner := extensions.NewScriptRunner(scripting.NewEngine(), e.cfg.Script.Timeout, e.log)
	if err := runner.Run(ctx, s, scripts...); err != nil {
		return err
	}

	out := opts.out
	if out == "" {
		out = fmt.Sprintf("page-%d.png", opts.page)
	}
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	if err := png.Encode(f, render.Preview(view, s.Widgets())); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", out, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	fmt.Fprintf(a.stdout, "wrote %s\n", out)
	return nil
}
