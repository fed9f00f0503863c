package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/coalsim/pkg/lineage"
	"github.com/matzehuels/coalsim/pkg/render"
)

// RenderOptions configures [Render].
type RenderOptions struct {
	Formats  []string
	Detailed bool    // Show mutations and branch lengths
	Scale    float64 // PNG scale factor, default 2
}

// Render draws the tree in every requested format and returns the outputs
// keyed by format. DOT is generated once and shared by all formats; SVG is
// rendered at most once and converted for PNG and PDF.
func Render(ctx context.Context, t *lineage.Tree, opts RenderOptions) (map[string][]byte, error) {
	if len(opts.Formats) == 0 {
		opts.Formats = []string{FormatSVG}
	}
	if opts.Scale <= 0 {
		opts.Scale = 2.0
	}
	for _, f := range opts.Formats {
		if err := ValidateFormat(f); err != nil {
			return nil, err
		}
	}

	dot := render.ToDOT(t, render.Options{Detailed: opts.Detailed})
	artifacts := make(map[string][]byte, len(opts.Formats))

	var svg []byte
	svgOnce := func() ([]byte, error) {
		if svg != nil {
			return svg, nil
		}
		var err error
		svg, err = render.RenderSVG(ctx, dot)
		return svg, err
	}

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatDOT:
			data = []byte(dot)
		case FormatSVG:
			data, err = svgOnce()
		case FormatPNG:
			if data, err = svgOnce(); err == nil {
				data, err = render.ToPNG(ctx, data, opts.Scale)
			}
		case FormatPDF:
			if data, err = svgOnce(); err == nil {
				data, err = render.ToPDF(ctx, data)
			}
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}
