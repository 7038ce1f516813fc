package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/possible/pkg/dag"
	perrors "github.com/matzehuels/possible/pkg/errors"
	"github.com/matzehuels/possible/pkg/store"
)

// nodeCommand groups the node editing subcommands.
func (c *CLI) nodeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "node",
		Aliases: []string{"n"},
		Short:   "Add, edit and remove nodes in the current graph",
		Long: `Add, edit and remove nodes in the current graph.

Nodes can be referenced by ID, by a unique ID prefix of at least 4
characters, or by a unique name.`,
	}
	cmd.AddCommand(c.nodeAddCommand())
	cmd.AddCommand(c.nodeRemoveCommand())
	cmd.AddCommand(c.nodeSetCommand())
	cmd.AddCommand(c.nodeShowCommand())
	cmd.AddCommand(c.nodeDoneCommand(true))
	cmd.AddCommand(c.nodeDoneCommand(false))
	cmd.AddCommand(c.nodeFollowCommand())
	cmd.AddCommand(c.nodeMoveCommand())
	cmd.AddCommand(c.nodeToggleCommand())
	return cmd
}

// editGraph resolves the current graph and runs fn against it.
func (c *CLI) editGraph(cmd *cobra.Command, fn func(st *store.Store, g *dag.Graph) error) error {
	return c.withStore(cmd.Context(), func(st *store.Store) error {
		g, err := c.currentGraph(cmd.Context(), st)
		if err != nil {
			return err
		}
		return fn(st, g)
	})
}

// nodePlacement is where node add puts the new node.
type nodePlacement struct {
	after, before             string
	insertAfter, insertBefore string
	parent                    string
}

func (p nodePlacement) validate() error {
	set := 0
	for _, v := range []string{p.after, p.before, p.insertAfter, p.insertBefore, p.parent} {
		if v != "" {
			set++
		}
	}
	if set > 1 {
		return perrors.New(perrors.ErrCodeInvalidInput, "--after, --before, --insert-after, --insert-before and --parent are mutually exclusive")
	}
	return nil
}

func (c *CLI) nodeAddCommand() *cobra.Command {
	var (
		place nodePlacement
		desc  string
	)
	cmd := &cobra.Command{
		Use:   "add [name]",
		Short: "Add a node",
		Long: `Add a node to the current graph.

Without placement flags the node is added at the top level. --after and
--before add a sibling with a sequence edge to or from the anchor;
--insert-after and --insert-before splice the node into the anchor's
existing edges. --parent adds the node inside a group.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := place.validate(); err != nil {
				return err
			}
			name := strings.Join(args, " ")
			return c.editGraph(cmd, func(st *store.Store, g *dag.Graph) error {
				id, err := addPlaced(st, g, place)
				if err != nil {
					return err
				}
				st.UpdateNode(g.ID, id, store.NodePatch{Name: &name, Description: &desc}, store.Default)
				printSuccess("Added %s", StyleHighlight.Render(cmpName(name, id)))
				printDetail("id %s", id)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&place.after, "after", "", "add as a successor of this node")
	cmd.Flags().StringVar(&place.before, "before", "", "add as a predecessor of this node")
	cmd.Flags().StringVar(&place.insertAfter, "insert-after", "", "insert between this node and its successors")
	cmd.Flags().StringVar(&place.insertBefore, "insert-before", "", "insert between this node and its predecessors")
	cmd.Flags().StringVar(&place.parent, "parent", "", "add inside this group node")
	cmd.Flags().StringVarP(&desc, "description", "d", "", "node description")
	return cmd
}

func addPlaced(st *store.Store, g *dag.Graph, p nodePlacement) (string, error) {
	type op struct {
		ref string
		fn  func(graphID, nodeID string, opts store.Options) string
	}
	opts := store.BuildRoots | store.Touch
	for _, o := range []op{
		{p.after, st.AppendNewNode},
		{p.before, st.AddFrontNewNode},
		{p.insertAfter, st.InsertNewNode},
		{p.insertBefore, st.InsertFrontNewNode},
		{p.parent, st.AddNewChildNode},
	} {
		if o.ref == "" {
			continue
		}
		anchor, err := resolveNode(g, o.ref)
		if err != nil {
			return "", err
		}
		id := o.fn(g.ID, anchor, opts)
		if id == "" {
			return "", perrors.New(perrors.ErrCodeConflict, "cannot place node at %q", o.ref)
		}
		return id, nil
	}
	return st.AddNewNode(g.ID, opts), nil
}

func cmpName(name, id string) string {
	if name != "" {
		return name
	}
	return shortID(id)
}

func (c *CLI) nodeRemoveCommand() *cobra.Command {
	var keepEdges bool
	cmd := &cobra.Command{
		Use:     "remove <node>",
		Aliases: []string{"rm"},
		Short:   "Remove a node and everything nested inside it",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.editGraph(cmd, func(st *store.Store, g *dag.Graph) error {
				id, err := resolveNode(g, args[0])
				if err != nil {
					return err
				}
				var ok bool
				if keepEdges {
					ok = st.DeleteNodeKeepEdges(g.ID, id, store.Default)
				} else {
					ok = st.RemoveNode(g.ID, id, store.Default)
				}
				if !ok {
					return perrors.New(perrors.ErrCodeConflict, "cannot remove %q", args[0])
				}
				printSuccess("Removed %s", StyleHighlight.Render(nodeLabel(g.Nodes[id])))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&keepEdges, "keep-edges", false, "connect predecessors to successors before removing")
	return cmd
}

func (c *CLI) nodeSetCommand() *cobra.Command {
	var (
		name, desc, record string
		start, end         string
		priority           int
	)
	cmd := &cobra.Command{
		Use:   "set <node>",
		Short: "Change node fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var p store.NodePatch
			flags := cmd.Flags()
			if flags.Changed("name") {
				p.Name = &name
			}
			if flags.Changed("description") {
				p.Description = &desc
			}
			if flags.Changed("record") {
				p.Record = &record
			}
			if flags.Changed("start") {
				ms, err := parseDate(start)
				if err != nil {
					return err
				}
				p.StartAt = &ms
			}
			if flags.Changed("end") {
				ms, err := parseDate(end)
				if err != nil {
					return err
				}
				p.EndAt = &ms
			}
			if flags.Changed("priority") {
				p.Priority = &priority
			}
			if p == (store.NodePatch{}) {
				return perrors.New(perrors.ErrCodeInvalidInput, "nothing to change")
			}
			if err := perrors.ValidateStruct(perrors.ErrCodeInvalidInput, p); err != nil {
				return err
			}
			return c.editGraph(cmd, func(st *store.Store, g *dag.Graph) error {
				id, err := resolveNode(g, args[0])
				if err != nil {
					return err
				}
				st.UpdateNode(g.ID, id, p, store.Default)
				printSuccess("Updated %s", StyleHighlight.Render(nodeLabel(g.Nodes[id])))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "node name")
	cmd.Flags().StringVarP(&desc, "description", "d", "", "node description")
	cmd.Flags().StringVar(&record, "record", "", "free-form notes")
	cmd.Flags().StringVar(&start, "start", "", "start date (YYYY-MM-DD or RFC 3339)")
	cmd.Flags().StringVar(&end, "end", "", "end date (YYYY-MM-DD or RFC 3339)")
	cmd.Flags().IntVarP(&priority, "priority", "p", 0, "node priority")
	return cmd
}

// parseDate accepts a date or an RFC 3339 timestamp and returns Unix
// milliseconds.
func parseDate(s string) (int64, error) {
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t.UnixMilli(), nil
		}
	}
	return 0, perrors.New(perrors.ErrCodeInvalidInput, "invalid date %q (want YYYY-MM-DD or RFC 3339)", s)
}

func (c *CLI) nodeShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <node>",
		Short: "Show a node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.editGraph(cmd, func(st *store.Store, g *dag.Graph) error {
				id, err := resolveNode(g, args[0])
				if err != nil {
					return err
				}
				printNode(g, g.Nodes[id])
				return nil
			})
		},
	}
}

func printNode(g *dag.Graph, n *dag.Node) {
	fmt.Println(StyleTitle.Render(nodeLabel(n)))
	printKeyValue("id", n.ID)
	if n.Description != "" {
		printKeyValue("description", n.Description)
	}
	if n.Parent != "" {
		printKeyValue("parent", nodeLabel(g.Nodes[n.Parent]))
	}
	printKeyValue("children", nodeNames(g, n.Children))
	printKeyValue("after", nodeNames(g, n.Prevs))
	printKeyValue("before", nodeNames(g, n.Nexts))
	printKeyValue("completed", strconv.FormatBool(n.Completed))
	printKeyValue("priority", formatPriority(n.Priority))
	printKeyValue("start", formatMillis(n.StartAt))
	printKeyValue("end", formatMillis(n.EndAt))
	if n.Record != "" {
		printKeyValue("record", n.Record)
	}
}

func nodeNames(g *dag.Graph, ids []string) string {
	if len(ids) == 0 {
		return "-"
	}
	names := make([]string, len(ids))
	for i, id := range ids {
		if n, ok := g.Nodes[id]; ok {
			names[i] = nodeLabel(n)
		} else {
			names[i] = shortID(id)
		}
	}
	return strings.Join(names, ", ")
}

// nodeDoneCommand builds "done" (completed=true) and "reopen".
func (c *CLI) nodeDoneCommand(completed bool) *cobra.Command {
	use, short, verb := "done <node>", "Mark a node completed", "Completed"
	if !completed {
		use, short, verb = "reopen <node>", "Mark a node not completed", "Reopened"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.editGraph(cmd, func(st *store.Store, g *dag.Graph) error {
				id, err := resolveNode(g, args[0])
				if err != nil {
					return err
				}
				st.UpdateNode(g.ID, id, store.NodePatch{Completed: &completed}, store.Default)
				printSuccess("%s %s", verb, StyleHighlight.Render(nodeLabel(g.Nodes[id])))
				return nil
			})
		},
	}
}

func (c *CLI) nodeFollowCommand() *cobra.Command {
	var off bool
	cmd := &cobra.Command{
		Use:   "follow <node>",
		Short: "Highlight a node in views and renders",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			followed := !off
			return c.editGraph(cmd, func(st *store.Store, g *dag.Graph) error {
				id, err := resolveNode(g, args[0])
				if err != nil {
					return err
				}
				st.UpdateNode(g.ID, id, store.NodePatch{IsFollowed: &followed}, store.Default)
				printSuccess("Following %s: %t", StyleHighlight.Render(nodeLabel(g.Nodes[id])), followed)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&off, "off", false, "stop following")
	return cmd
}

func (c *CLI) nodeMoveCommand() *cobra.Command {
	var (
		parent string
		detach bool
	)
	cmd := &cobra.Command{
		Use:   "move <node>",
		Short: "Move a node into a group or back to its parent's level",
		Long: `Move a node into a group (--parent) or out of its group (--detach).

Only nodes without a parent and without sequence edges can be moved into a
group, and a group cannot be moved into its own descendants.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (parent == "") == !detach {
				return perrors.New(perrors.ErrCodeInvalidInput, "pass exactly one of --parent or --detach")
			}
			return c.editGraph(cmd, func(st *store.Store, g *dag.Graph) error {
				id, err := resolveNode(g, args[0])
				if err != nil {
					return err
				}
				n := g.Nodes[id]
				if detach {
					if n.Parent == "" || !st.DetachChild(g.ID, n.Parent, id, store.Default) {
						return perrors.New(perrors.ErrCodeConflict, "%q has no parent", args[0])
					}
					printSuccess("Detached %s", StyleHighlight.Render(nodeLabel(n)))
					return nil
				}
				pid, err := resolveNode(g, parent)
				if err != nil {
					return err
				}
				if !st.SetChild(g.ID, pid, id, store.Default) {
					return perrors.New(perrors.ErrCodeConflict,
						"cannot move %q into %q: it must have no parent and no edges, and must not contain %q",
						args[0], parent, parent)
				}
				printSuccess("Moved %s into %s", StyleHighlight.Render(nodeLabel(n)), StyleHighlight.Render(nodeLabel(g.Nodes[pid])))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&parent, "parent", "", "group to move the node into")
	cmd.Flags().BoolVar(&detach, "detach", false, "move the node out of its group")
	return cmd
}

func (c *CLI) nodeToggleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <node>",
		Short: "Expand or collapse a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.editGraph(cmd, func(st *store.Store, g *dag.Graph) error {
				id, err := resolveNode(g, args[0])
				if err != nil {
					return err
				}
				st.ToggleNodeExpanded(g.ID, id, store.Default)
				n, _ := st.Node(g.ID, id)
				state := "collapsed"
				if n.Expanded {
					state = "expanded"
				}
				printSuccess("%s %s", StyleHighlight.Render(nodeLabel(n)), state)
				return nil
			})
		},
	}
}
