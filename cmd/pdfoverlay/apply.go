package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wudi/pdfoverlay/assemble"
	"github.com/wudi/pdfoverlay/editor"
	"github.com/wudi/pdfoverlay/extensions"
	"github.com/wudi/pdfoverlay/observability"
	"github.com/wudi/pdfoverlay/render"
	"github.com/wudi/pdfoverlay/scripting"
)

type applyOptions struct {
	file    string
	scripts []string
	out     string
}

func (a *App) newApplyCmd() *cobra.Command {
	opts := &applyOptions{}

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Replay gesture scripts on a document and save the result",
		Long: `Apply loads a document, imports its existing text fields as overlay
widgets, replays each script against the editing session and saves the
flattened document.

Examples:
  # Add a text box and save to edited_form.pdf
  pdfoverlay apply --file form.pdf --script fill.js

  # Fetch over HTTP and choose the output
  pdfoverlay apply --file https://example.com/form.pdf -s a.js -s b.js -o out.pdf`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.apply(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Document path or URL (required)")
	cmd.Flags().StringArrayVarP(&opts.scripts, "script", "s", nil, "Gesture script to replay; repeatable")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Output path (default from configuration)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func (a *App) apply(ctx context.Context, opts *applyOptions) (err error) {
	e, err := a.env()
	if err != nil {
		return err
	}
	defer func() {
		if serr := e.shutdown(context.Background()); serr != nil && err == nil {
			err = serr
		}
	}()

	data, err := e.load(ctx, opts.file)
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

	asm := assemble.New(assemble.Config{Logger: e.log, Tracer: e.tracer})
	pdf, err := s.Save(ctx, asm, data)
	if err != nil {
		return err
	}

	out := opts.out
	if out == "" {
		out = e.cfg.Output
	}
	if err := os.WriteFile(out, pdf, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	e.log.Info("saved document",
		observability.String("path", out),
		observability.Int("widgets", len(s.Widgets())),
		observability.Int("bytes", len(pdf)))
	fmt.Fprintf(a.stdout, "wrote %s (%d widgets)\n", out, len(s.Widgets()))
	return nil
}

// session builds an editing session over data and imports its text fields.
func (e *env) session(ctx context.Context, data []byte) (*editor.Session, error) {
	r, err := render.Open(data)
	if err != nil {
		return nil, err
	}
	pages, err := render.Pages(r, e.cfg.Scale)
	if err != nil {
		return nil, err
	}
	s, err := editor.NewSession(pages, editor.Options{
		Scale:  e.cfg.Scale,
		Gap:    e.cfg.Layout.Gap,
		Margin: e.cfg.Layout.Margin,
		Style:  e.cfg.Style(),
		Logger: e.log,
	})
	if err != nil {
		return nil, err
	}
	fields, err := assemble.ReadFields(ctx, data)
	if err != nil {
		return nil, err
	}
	if err := s.ImportFields(fields); err != nil {
		return nil, err
	}
	return s, nil
}
