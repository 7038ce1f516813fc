package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/possible/pkg/dag"
	perrors "github.com/matzehuels/possible/pkg/errors"
	pio "github.com/matzehuels/possible/pkg/io"
	"github.com/matzehuels/possible/pkg/session"
	"github.com/matzehuels/possible/pkg/store"
)

// graphCommand groups the graph management subcommands.
func (c *CLI) graphCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "graph",
		Aliases: []string{"g"},
		Short:   "Create, select and manage graphs",
	}
	cmd.AddCommand(c.graphListCommand())
	cmd.AddCommand(c.graphCreateCommand())
	cmd.AddCommand(c.graphUseCommand())
	cmd.AddCommand(c.graphSetCommand())
	cmd.AddCommand(c.graphRemoveCommand())
	cmd.AddCommand(c.graphShowCommand())
	cmd.AddCommand(c.graphImportCommand())
	cmd.AddCommand(c.graphExportCommand())
	return cmd
}

func (c *CLI) graphListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List graphs by priority",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(st *store.Store) error {
				metas := st.Graphs()
				if len(metas) == 0 {
					printInfo("No graphs yet")
					printNextStep("Create one", appName+" graph create <name>")
					return nil
				}
				current := c.selectedID(cmd.Context())
				fmt.Println(graphTable(metas, current))
				return nil
			})
		},
	}
}

// selectedID returns the selected graph ID, or "" when none is selected.
func (c *CLI) selectedID(ctx context.Context) string {
	ss, err := c.sessions()
	if err != nil {
		return ""
	}
	sel, err := ss.Get(ctx, session.DefaultName)
	if err != nil || sel == nil {
		return ""
	}
	return sel.GraphID
}

func graphTable(metas []store.GraphMeta, current string) string {
	rows := make([][]string, 0, len(metas))
	for _, m := range metas {
		marker := " "
		if m.ID == current {
			marker = "▸"
		}
		rows = append(rows, []string{
			marker,
			shortID(m.ID),
			m.Name,
			strconv.Itoa(m.Priority),
			strconv.Itoa(m.Nodes),
			strconv.Itoa(m.Edges),
			formatMillis(m.UpdatedAt),
		})
	}
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "ID", "Name", "Priority", "Nodes", "Edges", "Updated").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if row < len(metas) && metas[row].ID == current {
				return lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
			}
			return lipgloss.NewStyle()
		}).
		Render()
}

func (c *CLI) graphCreateCommand() *cobra.Command {
	var (
		priority int
		use      bool
	)
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create an empty graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := perrors.ValidateGraphName(args[0]); err != nil {
				return err
			}
			return c.withStore(cmd.Context(), func(st *store.Store) error {
				id := st.CreateGraph(args[0], store.Default)
				if cmd.Flags().Changed("priority") {
					st.UpdateGraph(id, store.GraphPatch{Priority: &priority}, store.Default)
				}
				if use || c.selectedID(cmd.Context()) == "" {
					if err := c.selectGraph(cmd.Context(), id); err != nil {
						return err
					}
				}
				printSuccess("Created graph %s", StyleHighlight.Render(args[0]))
				printDetail("id %s", id)
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&priority, "priority", "p", 0, "graph priority (higher sorts first)")
	cmd.Flags().BoolVar(&use, "use", false, "select the new graph")
	return cmd
}

func (c *CLI) graphUseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "use <graph>",
		Short: "Select the graph other commands operate on",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(st *store.Store) error {
				g, err := resolveGraph(st, args[0])
				if err != nil {
					return err
				}
				if err := c.selectGraph(cmd.Context(), g.ID); err != nil {
					return err
				}
				printSuccess("Using %s", StyleHighlight.Render(g.Name))
				return nil
			})
		},
		ValidArgsFunction: c.completeGraphArg,
	}
}

func (c *CLI) graphSetCommand() *cobra.Command {
	var (
		name          string
		priority      int
		hideCompleted bool
	)
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Rename, reprioritise or filter the current graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var p store.GraphPatch
			if cmd.Flags().Changed("name") {
				if err := perrors.ValidateGraphName(name); err != nil {
					return err
				}
				p.Name = &name
			}
			if cmd.Flags().Changed("priority") {
				p.Priority = &priority
			}
			if cmd.Flags().Changed("hide-completed") {
				p.HideCompleted = &hideCompleted
			}
			if p == (store.GraphPatch{}) {
				return perrors.New(perrors.ErrCodeInvalidInput, "nothing to change; pass --name, --priority or --hide-completed")
			}
			return c.withStore(cmd.Context(), func(st *store.Store) error {
				g, err := c.currentGraph(cmd.Context(), st)
				if err != nil {
					return err
				}
				st.UpdateGraph(g.ID, p, store.Default)
				printSuccess("Updated %s", StyleHighlight.Render(g.Name))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new graph name")
	cmd.Flags().IntVarP(&priority, "priority", "p", 0, "graph priority")
	cmd.Flags().BoolVar(&hideCompleted, "hide-completed", false, "hide completed nodes in views")
	return cmd
}

func (c *CLI) graphRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <graph>",
		Aliases: []string{"rm"},
		Short:   "Delete a graph and all its nodes",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(st *store.Store) error {
				g, err := resolveGraph(st, args[0])
				if err != nil {
					return err
				}
				st.RemoveGraph(g.ID, store.Default)
				if c.selectedID(cmd.Context()) == g.ID {
					if ss, err := c.sessions(); err == nil {
						_ = ss.Delete(cmd.Context(), session.DefaultName)
					}
				}
				printSuccess("Removed %s", StyleHighlight.Render(g.Name))
				return nil
			})
		},
		ValidArgsFunction: c.completeGraphArg,
	}
}

func (c *CLI) graphShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show details of the current graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(st *store.Store) error {
				g, err := c.currentGraph(cmd.Context(), st)
				if err != nil {
					return err
				}
				printGraph(g)
				if err := g.Validate(); err != nil {
					printWarning("graph is inconsistent: %v", err)
				}
				return nil
			})
		},
	}
}

func printGraph(g *dag.Graph) {
	fmt.Println(StyleTitle.Render(g.Name))
	printKeyValue("id", g.ID)
	printKeyValue("nodes", strconv.Itoa(g.NodeCount()))
	printKeyValue("edges", strconv.Itoa(g.EdgeCount()))
	printKeyValue("roots", strconv.Itoa(len(g.RootNodeIDs)))
	printKeyValue("priority", formatPriority(g.Priority))
	printKeyValue("hide done", strconv.FormatBool(g.HideCompleted))
	printKeyValue("created", formatMillis(g.CreatedAt))
	printKeyValue("updated", formatMillis(g.UpdatedAt))
}

func (c *CLI) graphImportCommand() *cobra.Command {
	var edgeList bool
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import graphs from a document or an edge list",
		Long: `Import graphs from a JSON file.

By default the file is a full document (graph id → graph), as written by
'graph export'. With --edge-list it is a single graph given as nodes and
from/to edges; the graph gets a fresh ID.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := perrors.ValidatePath(args[0]); err != nil {
				return err
			}
			var graphs []*dag.Graph
			if edgeList {
				g, err := pio.ImportEdgeList(args[0])
				if err != nil {
					return perrors.Wrap(perrors.ErrCodeInvalidInput, err, "import %s", args[0])
				}
				graphs = append(graphs, g)
			} else {
				doc, err := pio.ImportDocument(args[0])
				if err != nil {
					return perrors.Wrap(perrors.ErrCodeInvalidInput, err, "import %s", args[0])
				}
				for _, g := range doc {
					graphs = append(graphs, g)
				}
			}
			return c.withStore(cmd.Context(), func(st *store.Store) error {
				for _, g := range graphs {
					if err := st.AddGraph(g, store.Default); err != nil {
						return perrors.Wrap(perrors.ErrCodeInvalidInput, err, "graph %s", g.Name)
					}
					printSuccess("Imported %s", StyleHighlight.Render(g.Name))
					printStats(g.NodeCount(), g.EdgeCount())
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&edgeList, "edge-list", false, "read a single graph in edge-list form")
	return cmd
}

func (c *CLI) graphExportCommand() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Export the current graph (or all graphs) as a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := perrors.ValidatePath(args[0]); err != nil {
				return err
			}
			return c.withStore(cmd.Context(), func(st *store.Store) error {
				doc := st.Document()
				if !all {
					g, err := c.currentGraph(cmd.Context(), st)
					if err != nil {
						return err
					}
					doc = pio.Document{g.ID: g}
				}
				if err := pio.ExportDocument(doc, args[0]); err != nil {
					return perrors.Wrap(perrors.ErrCodeIO, err, "export %s", args[0])
				}
				printSuccess("Exported %d graph(s)", len(doc))
				printFile(args[0])
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "export every graph")
	return cmd
}
