package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/possible/pkg/dag"
	"github.com/matzehuels/possible/pkg/graph"
	"github.com/matzehuels/possible/pkg/layout"
	"github.com/matzehuels/possible/pkg/store"
	"github.com/matzehuels/possible/pkg/view"
)

// layoutFlags registers the layout option flags shared by layout and render.
func layoutFlags(cmd *cobra.Command, opts *layout.Options) {
	cmd.Flags().StringVar(&opts.Engine, "engine", "", "layout engine: layered, dot (default from config)")
	cmd.Flags().StringVar(&opts.RankDir, "rank-dir", "", "edge direction: TB, BT, LR, RL (default from config)")
	cmd.Flags().StringVar(&opts.Align, "align", "", "rank alignment: UL, UR, DL, DR")
	cmd.Flags().Float64Var(&opts.RankSep, "rank-sep", 0, "gap between ranks")
	cmd.Flags().Float64Var(&opts.NodeSep, "node-sep", 0, "gap between nodes in a rank")
	cmd.Flags().Float64Var(&opts.Margin, "margin", 0, "padding inside groups")
}

// mergeLayout overlays set flag values on the configured options.
func mergeLayout(base, flags layout.Options) layout.Options {
	if flags.Engine != "" {
		base.Engine = flags.Engine
	}
	if flags.RankDir != "" {
		base.RankDir = flags.RankDir
	}
	if flags.Align != "" {
		base.Align = flags.Align
	}
	if flags.RankSep != 0 {
		base.RankSep = flags.RankSep
	}
	if flags.NodeSep != 0 {
		base.NodeSep = flags.NodeSep
	}
	if flags.Margin != 0 {
		base.Margin = flags.Margin
	}
	return base
}

// layoutCommand creates the layout command for computing positions.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output string
		flags  layout.Options
	)
	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Compute node positions for the visible graph",
		Long: `Compute node positions for the visible part of the current graph.

Groups are laid out from the inside out: every expanded group gets its own
layout, and its size becomes the size of the group node one level up. The
result is written as JSON and can be rendered with 'render --from'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.editGraph(cmd, func(st *store.Store, g *dag.Graph) error {
				out, err := c.runLayout(cmd.Context(), g, mergeLayout(c.cfg.Layout, flags))
				if err != nil {
					return err
				}
				if output == "" {
					output = g.Name + ".layout.json"
				}
				if err := graph.WriteDataFile(out, output); err != nil {
					return fmt.Errorf("write output %s: %w", output, err)
				}
				printSuccess("Layout complete")
				printFile(output)
				printStats(len(out.Nodes), len(out.Edges))
				printNewline()
				printNextStep("Render", appName+" render --from "+output)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <graph>.layout.json)")
	layoutFlags(cmd, &flags)
	return cmd
}

// runLayout projects g and lays it out behind a spinner.
func (c *CLI) runLayout(ctx context.Context, g *dag.Graph, opts layout.Options) (graph.Data, error) {
	runner := layout.NewRunner(c.Logger)
	spinner := newSpinnerWithContext(ctx, "Computing layout...")
	spinner.Start()

	out, err := runner.Run(ctx, view.Project(g), opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return graph.Data{}, err
	}
	spinner.Stop()
	if ctx.Err() != nil {
		return graph.Data{}, ctx.Err()
	}
	return out, nil
}
