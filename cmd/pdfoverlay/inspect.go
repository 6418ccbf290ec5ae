package main

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/wudi/pdfoverlay/assemble"
	"github.com/wudi/pdfoverlay/render"
)

type inspectOptions struct {
	file       string
	outputJSON bool
}

type pageReport struct {
	Number      int     `json:"number"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	PixelWidth  int     `json:"pixel_width"`
	PixelHeight int     `json:"pixel_height"`
}

type fieldReport struct {
	Name  string     `json:"name"`
	Page  int        `json:"page"`
	Rect  [4]float64 `json:"rect"`
	Value string     `json:"value,omitempty"`
}

type inspectReport struct {
	Scale  float64       `json:"scale"`
	Pages  []pageReport  `json:"pages"`
	Fields []fieldReport `json:"fields"`
}

func (a *App) newInspectCmd() *cobra.Command {
	opts := &inspectOptions{}

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "List page geometry and existing text fields",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.inspect(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Document path or URL (required)")
	cmd.Flags().BoolVar(&opts.outputJSON, "json", false, "Output as JSON")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func (a *App) inspect(ctx context.Context, opts *inspectOptions) error {
	e, err := a.env()
	if err != nil {
		return err
	}
	data, err := e.load(ctx, opts.file)
	if err != nil {
		return err
	}
	r, err := render.Open(data)
	if err != nil {
		return err
	}

	report := inspectReport{Scale: e.cfg.Scale, Fields: []fieldReport{}}
	for i := 0; i < r.PageCount(); i++ {
		v, err := r.Page(i, e.cfg.Scale)
		if err != nil {
			return err
		}
		report.Pages = append(report.Pages, pageReport{
			Number:      i + 1,
			Width:       v.PDFWidth,
			Height:      v.PDFHeight,
			PixelWidth:  v.PixelWidth,
			PixelHeight: v.PixelHeight,
		})
	}
	fields, err := assemble.ReadFields(ctx, data)
	if err != nil {
		return err
	}
	for _, f := range fields {
		report.Fields = append(report.Fields, fieldReport{
			Name:  f.Name,
			Page:  f.PageIndex + 1,
			Rect:  [4]float64{f.Rect.X, f.Rect.Y, f.Rect.W, f.Rect.H},
			Value: f.Value,
		})
	}

	if opts.outputJSON {
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	return a.inspectText(report)
}

func (a *App) inspectText(report inspectReport) error {
	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "PAGE\tSIZE (pt)\tRASTER @%g\n", report.Scale)
	for _, p := range report.Pages {
		fmt.Fprintf(tw, "%d\t%gx%g\t%dx%d\n", p.Number, p.Width, p.Height, p.PixelWidth, p.PixelHeight)
	}
	if len(report.Fields) > 0 {
		fmt.Fprintf(tw, "\nFIELD\tPAGE\tRECT\tVALUE\n")
		for _, f := range report.Fields {
			fmt.Fprintf(tw, "%s\t%d\t%g %g %g %g\t%s\n", f.Name, f.Page, f.Rect[0], f.Rect[1], f.Rect[2], f.Rect[3], f.Value)
		}
	}
	return tw.Flush()
}
