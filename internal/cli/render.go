package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/coalsim/pkg/errors"
	"github.com/matzehuels/coalsim/pkg/pipeline"
)

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		formats  string
		output   string
		detailed bool
		scale    float64
	)

	cmd := &cobra.Command{
		Use:   "render <tree.json>",
		Short: "Draw a saved genealogy as DOT, SVG, PNG or PDF",
		Long: `Draw a genealogy saved with "coalsim simulate -o". Leaves are the samples
s1..sn; internal nodes are labelled with their coalescence time. PNG and PDF
output need rsvg-convert on the PATH.`,
		Example: `  coalsim render tree.json
  coalsim render tree.json -f dot,svg --detailed -o genealogy`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			fmts := parseFormats(formats)
			for _, f := range fmts {
				if err := pipeline.ValidateFormat(f); err != nil {
					return err
				}
			}

			runner := pipeline.NewRunner(nil, nil, c.Logger)
			res, err := runner.Load(ctx, args[0])
			if err != nil {
				return err
			}

			prog := newProgress(c.Logger)
			artifacts, err := pipeline.Render(ctx, res.Tree, pipeline.RenderOptions{
				Formats:  fmts,
				Detailed: detailed,
				Scale:    scale,
			})
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Rendered %d formats", len(artifacts)))

			base := output
			if base == "" {
				base = basePath(args[0])
			}
			printSuccess("Rendered genealogy of %d samples", res.Summary.Leaves)
			for _, f := range fmts {
				path := base + "." + f
				if err := errors.ValidateOutputPath(path); err != nil {
					return err
				}
				if err := os.WriteFile(path, artifacts[f], 0o644); err != nil {
					return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", path)
				}
				printFile(path)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&formats, "format", "f", "svg", "output formats, comma separated (dot, svg, png, pdf)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output path without extension (default: input name)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "label nodes with mutations and edges with branch lengths")
	cmd.Flags().Float64Var(&scale, "scale", 2.0, "PNG scale factor")

	return cmd
}

// parseFormats parses a comma-separated format string into a deduplicated slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f != "" && !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}

// basePath strips tree file extensions: "runs/a.json.lz4" -> "runs/a".
func basePath(path string) string {
	for _, ext := range []string{".lz4", ".json"} {
		path = strings.TrimSuffix(path, ext)
	}
	if path == "" || strings.HasSuffix(path, string(filepath.Separator)) {
		return path + "genealogy"
	}
	return path
}
