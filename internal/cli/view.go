package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/possible/pkg/dag"
	"github.com/matzehuels/possible/pkg/graph"
	"github.com/matzehuels/possible/pkg/store"
	"github.com/matzehuels/possible/pkg/view"
)

func (c *CLI) viewCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Print the visible part of the current graph",
		Long: `Print the visible part of the current graph as an indented tree.

Children of collapsed groups are hidden, as are completed nodes when the
graph hides them. Each line lists the node's visible successors.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.editGraph(cmd, func(st *store.Store, g *dag.Graph) error {
				d := view.Project(g)
				if asJSON {
					return graph.WriteData(d, os.Stdout)
				}
				fmt.Println(StyleTitle.Render(g.Name))
				for _, line := range outline(d) {
					fmt.Println(line)
				}
				hidden := len(view.HiddenNodes(g))
				printStats(len(d.Nodes), len(d.Edges))
				if hidden > 0 {
					printDetail("%d hidden", hidden)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the projection as JSON")
	return cmd
}

// outline renders projected data as indented lines, one per node.
func outline(d graph.Data) []string {
	idx := d.Index()
	depth := make(map[string]int, len(d.Nodes))
	var lines []string
	for i := range d.Nodes {
		n := &d.Nodes[i]
		if _, ok := idx[n.Parent]; ok {
			depth[n.ID] = depth[n.Parent] + 1
		}
		lines = append(lines, outlineLine(d, n, depth[n.ID]))
	}
	return lines
}

func outlineLine(d graph.Data, n *graph.Node, depth int) string {
	var b strings.Builder
	b.WriteString(strings.Repeat("  ", depth))

	marker := iconLeaf
	switch {
	case n.Data != nil && n.Data.IsGroup() && n.Data.Expanded:
		marker = iconExpanded
	case n.Data != nil && n.Data.IsGroup():
		marker = iconCollapsed
	}
	label := n.DisplayLabel()
	if n.HasState(graph.StateCompleted) {
		marker = iconSuccess
		label = styleCompleted.Render(label)
	} else if n.HasState(graph.StateFollowed) {
		label = styleFollowed.Render(label)
	}
	b.WriteString(marker + " " + label)

	var nexts []string
	for _, e := range d.Edges {
		if e.Source == n.ID {
			if t := d.Node(e.Target); t != nil {
				nexts = append(nexts, t.DisplayLabel())
			}
		}
	}
	if len(nexts) > 0 {
		b.WriteString(" " + StyleDim.Render(iconArrow+" "+strings.Join(nexts, ", ")))
	}
	return b.String()
}
