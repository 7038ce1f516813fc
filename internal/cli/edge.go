package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/possible/pkg/dag"
	"github.com/matzehuels/possible/pkg/dag/transform"
	perrors "github.com/matzehuels/possible/pkg/errors"
	"github.com/matzehuels/possible/pkg/store"
)

// edgeCommand groups the sequence edge subcommands.
func (c *CLI) edgeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "edge",
		Aliases: []string{"e"},
		Short:   "Add and remove sequence edges",
	}
	cmd.AddCommand(c.edgeAddCommand())
	cmd.AddCommand(c.edgeRemoveCommand())
	cmd.AddCommand(c.edgeClearCommand())
	return cmd
}

// resolvePair resolves two node references.
func resolvePair(g *dag.Graph, from, to string) (string, string, error) {
	f, err := resolveNode(g, from)
	if err != nil {
		return "", "", err
	}
	t, err := resolveNode(g, to)
	if err != nil {
		return "", "", err
	}
	return f, t, nil
}

func (c *CLI) edgeAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add <from> <to>",
		Short: "Say that <to> comes after <from>",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.editGraph(cmd, func(st *store.Store, g *dag.Graph) error {
				from, to, err := resolvePair(g, args[0], args[1])
				if err != nil {
					return err
				}
				if !st.AddEdge(g.ID, from, to, store.Default) {
					if transform.WouldCreateCycle(g, from, to) {
						return perrors.New(perrors.ErrCodeCycle, "%s → %s would create a cycle", args[0], args[1])
					}
					return perrors.New(perrors.ErrCodeConflict, "%s → %s already exists", args[0], args[1])
				}
				printSuccess("%s %s %s", nodeLabel(g.Nodes[from]), iconArrow, nodeLabel(g.Nodes[to]))
				return nil
			})
		},
	}
}

func (c *CLI) edgeRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <from> <to>",
		Aliases: []string{"rm"},
		Short:   "Remove a sequence edge",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.editGraph(cmd, func(st *store.Store, g *dag.Graph) error {
				from, to, err := resolvePair(g, args[0], args[1])
				if err != nil {
					return err
				}
				if !st.RemoveEdge(g.ID, from, to, store.Default) {
					return perrors.New(perrors.ErrCodeNotFound, "%s → %s does not exist", args[0], args[1])
				}
				printSuccess("Removed %s %s %s", nodeLabel(g.Nodes[from]), iconArrow, nodeLabel(g.Nodes[to]))
				return nil
			})
		},
	}
}

func (c *CLI) edgeClearCommand() *cobra.Command {
	var prevs, nexts bool
	cmd := &cobra.Command{
		Use:   "clear <node>",
		Short: "Remove all incoming (--prevs) or outgoing (--nexts) edges of a node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !prevs && !nexts {
				return perrors.New(perrors.ErrCodeInvalidInput, "pass --prevs, --nexts or both")
			}
			return c.editGraph(cmd, func(st *store.Store, g *dag.Graph) error {
				id, err := resolveNode(g, args[0])
				if err != nil {
					return err
				}
				removed := 0
				if n := len(g.Nodes[id].Prevs); prevs && st.DeletePrevEdges(g.ID, id, store.Default) {
					removed += n
				}
				if n := len(g.Nodes[id].Nexts); nexts && st.DeleteNextEdges(g.ID, id, store.Default) {
					removed += n
				}
				printSuccess("Removed %d edge(s) from %s", removed, nodeLabel(g.Nodes[id]))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&prevs, "prevs", false, "remove incoming edges")
	cmd.Flags().BoolVar(&nexts, "nexts", false, "remove outgoing edges")
	return cmd
}

func (c *CLI) reduceCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reduce [node]",
		Short: "Remove sequence edges implied by longer paths",
		Long: `Remove redundant sequence edges.

An edge a → c is redundant when c is also reachable from a through other
nodes. With a node argument only the connected component of that node is
reduced; otherwise the whole graph is.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.editGraph(cmd, func(st *store.Store, g *dag.Graph) error {
				prog := newProgress(c.Logger)
				var (
					n   int
					err error
				)
				if len(args) == 1 {
					id, rerr := resolveNode(g, args[0])
					if rerr != nil {
						return rerr
					}
					n, err = st.Reduce(g.ID, id, store.Default)
				} else {
					n, err = st.ReduceGraph(g.ID, store.Default)
				}
				if err != nil {
					return perrors.Wrap(perrors.ErrCodeCycle, err, "cannot reduce %s", g.Name)
				}
				prog.done("Reduction finished")
				if n == 0 {
					printInfo("No redundant edges")
					return nil
				}
				printSuccess("Removed %s redundant edge(s)", StyleNumber.Render(itoa(n)))
				return nil
			})
		},
	}
}
