package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/possible/pkg/dag"
	perrors "github.com/matzehuels/possible/pkg/errors"
	"github.com/matzehuels/possible/pkg/graph"
	"github.com/matzehuels/possible/pkg/layout"
	"github.com/matzehuels/possible/pkg/render"
	"github.com/matzehuels/possible/pkg/render/nodelink"
	"github.com/matzehuels/possible/pkg/render/svg"
	"github.com/matzehuels/possible/pkg/store"
	"github.com/matzehuels/possible/pkg/view"
)

// Output formats.
const (
	formatSVG = "svg"
	formatPNG = "png"
	formatPDF = "pdf"
	formatDOT = "dot"
)

// Renderers.
const (
	styleBoxes    = "boxes"
	styleNodeLink = "nodelink"
)

type renderOptions struct {
	output   string
	formats  string
	style    string
	theme    string
	from     string
	scale    float64
	detailed bool
	layout   layout.Options
}

func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOptions
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the visible graph as SVG, PNG, PDF or DOT",
		Long: `Render the visible part of the current graph.

The default "boxes" style runs the nested layout and draws groups as
containers. The "nodelink" style hands the graph to Graphviz and draws
groups as clusters. PNG and PDF need rsvg-convert on PATH.

With --from, an existing layout file (from 'layout') is drawn instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formats := parseFormats(opts.formats)
			if opts.from != "" {
				d, err := graph.ReadDataFile(opts.from)
				if err != nil {
					return fmt.Errorf("load layout %s: %w", opts.from, err)
				}
				base := strings.TrimSuffix(opts.from, ".layout.json")
				return c.writeRendered(cmd.Context(), d, nil, base, formats, opts)
			}
			return c.editGraph(cmd, func(st *store.Store, g *dag.Graph) error {
				base := opts.output
				if base == "" {
					base = g.Name
				}
				return c.writeRendered(cmd.Context(), graph.Data{}, g, base, formats, opts)
			})
		},
	}
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output base name (default: graph name)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", formatSVG, "comma-separated formats: svg, png, pdf, dot")
	cmd.Flags().StringVar(&opts.style, "style", styleBoxes, "renderer: boxes, nodelink")
	cmd.Flags().StringVar(&opts.theme, "theme", "light", "colour theme for boxes: light, dark")
	cmd.Flags().StringVar(&opts.from, "from", "", "render an existing layout file")
	cmd.Flags().Float64Var(&opts.scale, "scale", 2, "PNG scale factor")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include descriptions and priorities (nodelink)")
	layoutFlags(cmd, &opts.layout)
	return cmd
}

// writeRendered renders either a prepared layout (g == nil) or g itself and
// writes one file per format.
func (c *CLI) writeRendered(ctx context.Context, laid graph.Data, g *dag.Graph, base string, formats []string, opts renderOptions) error {
	lopts := mergeLayout(c.cfg.Layout, opts.layout)

	var (
		svgData []byte
		dot     string
	)
	switch opts.style {
	case styleBoxes:
		if g != nil {
			out, err := c.runLayout(ctx, g, lopts)
			if err != nil {
				return err
			}
			laid = out
		}
		theme := svg.Light
		if opts.theme == "dark" {
			theme = svg.Dark
		}
		svgData = svg.Render(laid, svg.WithTheme(theme))
	case styleNodeLink:
		d := laid
		if g != nil {
			d = view.Project(g)
		}
		dot = nodelink.ToDOT(d, nodelink.Options{Detailed: opts.detailed, RankDir: lopts.RankDir})
	default:
		return perrors.New(perrors.ErrCodeInvalidInput, "unknown style %q (want boxes or nodelink)", opts.style)
	}

	if svgData == nil && slices.ContainsFunc(formats, func(f string) bool { return f != formatDOT }) {
		out, err := nodelink.RenderSVG(ctx, dot)
		if err != nil {
			return perrors.Wrap(perrors.ErrCodeInternal, err, "graphviz")
		}
		svgData = out
	}

	for _, format := range formats {
		data, err := encode(ctx, format, svgData, dot, opts.scale)
		if err != nil {
			return err
		}
		path := base + "." + format
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return perrors.Wrap(perrors.ErrCodeIO, err, "write %s", path)
		}
		printFile(path)
	}
	printSuccess("Rendered %s", strings.Join(formats, ", "))
	return nil
}

func encode(ctx context.Context, format string, svgData []byte, dot string, scale float64) ([]byte, error) {
	switch format {
	case formatSVG:
		return svgData, nil
	case formatDOT:
		if dot == "" {
			return nil, perrors.New(perrors.ErrCodeUnsupported, "dot output needs --style nodelink")
		}
		return []byte(dot), nil
	case formatPNG, formatPDF:
		var (
			out []byte
			err error
		)
		if format == formatPNG {
			out, err = render.ToPNG(ctx, svgData, scale)
		} else {
			out, err = render.ToPDF(ctx, svgData)
		}
		if errors.Is(err, render.ErrConverterMissing) {
			return nil, perrors.Wrap(perrors.ErrCodeUnsupported, err, "%s output", format)
		}
		return out, err
	default:
		return nil, perrors.New(perrors.ErrCodeInvalidInput, "unknown format %q", format)
	}
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{formatSVG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(strings.ToLower(f)); f != "" {
			out = append(out, f)
		}
	}
	return out
}
