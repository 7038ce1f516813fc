package view

import (
	"slices"

	"github.com/matzehuels/possible/pkg/dag"
	"github.com/matzehuels/possible/pkg/graph"
)

// Project flattens g into render-ready data. Coordinates are left at zero
// for the layout package to fill in.
//
// Roots are recomputed from the model, so a stale RootNodeIDs never hides
// nodes. Node order is a depth-first pre-order from the sorted roots,
// visiting successors before children.
func Project(g *dag.Graph) graph.Data {
	out := graph.Data{Nodes: []graph.Node{}, Edges: []graph.Edge{}}
	if g == nil || len(g.Nodes) == 0 {
		return out
	}

	hidden := HiddenNodes(g)
	order := walk(g, roots(g))

	emitted := make(map[string]bool, len(order))
	for _, id := range order {
		if hidden[id] {
			continue
		}
		emitted[id] = true
		out.Nodes = append(out.Nodes, projectNode(g.Nodes[id]))
	}

	for _, n := range out.Nodes {
		for _, next := range g.Nodes[n.ID].Nexts {
			if !emitted[next] {
				continue
			}
			e := graph.Edge{ID: graph.EdgeID(n.ID, next), Source: n.ID, Target: next}
			if ls, lt, ok := liftEdge(g, n.ID, next); ok && (ls != n.ID || lt != next) {
				e.LayoutSource, e.LayoutTarget = ls, lt
			}
			out.Edges = append(out.Edges, e)
		}
	}
	return out
}

// HiddenNodes returns the set of node IDs [Project] leaves out.
func HiddenNodes(g *dag.Graph) map[string]bool {
	hidden := make(map[string]bool)
	for _, id := range g.NodeIDs() {
		if collapsed(g, id) {
			hidden[id] = true
		}
	}
	if g.HideCompleted {
		for id := range completedHidden(g) {
			hidden[id] = true
		}
	}
	return hidden
}

func projectNode(n *dag.Node) graph.Node {
	var states []string
	if n.IsFollowed && !n.Completed {
		states = append(states, graph.StateFollowed)
	}
	if n.Completed {
		states = append(states, graph.StateCompleted)
	}
	return graph.Node{
		ID:     n.ID,
		Parent: n.Parent,
		Label:  n.Name,
		States: states,
		Data:   n.Clone(),
	}
}

// collapsed reports whether an ancestor of id is not expanded.
func collapsed(g *dag.Graph, id string) bool {
	for _, a := range g.Ancestors(id) {
		if !g.Nodes[a].Expanded {
			return true
		}
	}
	return false
}

// completedHidden evaluates the completed filter with an explicit
// post-order stack over predecessors and children. A node still being
// evaluated when it is reached again counts as visible, so corrupted cyclic
// data degrades to showing more rather than less.
func completedHidden(g *dag.Graph) map[string]bool {
	const (
		unvisited = iota
		inProgress
		done
	)

	state := make(map[string]int, len(g.Nodes))
	hidden := make(map[string]bool)

	for _, start := range g.NodeIDs() {
		stack := []string{start}
		for len(stack) > 0 {
			id := stack[len(stack)-1]
			switch state[id] {
			case unvisited:
				state[id] = inProgress
				n := g.Nodes[id]
				for _, dep := range slices.Concat(n.Prevs, n.Children) {
					if g.HasNode(dep) && state[dep] == unvisited {
						stack = append(stack, dep)
					}
				}
			case inProgress:
				stack = stack[:len(stack)-1]
				state[id] = done
				if suppressible(g, g.Nodes[id], hidden) {
					hidden[id] = true
				}
			default:
				stack = stack[:len(stack)-1]
			}
		}
	}
	return hidden
}

func suppressible(g *dag.Graph, n *dag.Node, hidden map[string]bool) bool {
	if !n.Completed {
		return false
	}
	for _, dep := range slices.Concat(n.Prevs, n.Children) {
		if g.HasNode(dep) && !hidden[dep] {
			return false
		}
	}
	return true
}

func roots(g *dag.Graph) []string {
	var out []string
	for _, id := range g.NodeIDs() {
		if g.IsRoot(g.Nodes[id]) {
			out = append(out, id)
		}
	}
	return out
}

// walk returns every node reachable from roots over Nexts and Children in
// depth-first pre-order.
func walk(g *dag.Graph, roots []string) []string {
	visited := make(map[string]bool, len(g.Nodes))
	var order []string
	for _, root := range roots {
		stack := []string{root}
		for len(stack) > 0 {
			id := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			n, ok := g.Node(id)
			if !ok || visited[id] {
				continue
			}
			visited[id] = true
			order = append(order, id)

			next := slices.Concat(n.Nexts, n.Children)
			for i := len(next) - 1; i >= 0; i-- {
				if !visited[next[i]] {
					stack = append(stack, next[i])
				}
			}
		}
	}
	return order
}

// liftEdge finds the pair of ancestors of source and target (each
// inclusive) that share a parent. It reports false when one endpoint
// contains the other, since no sibling pair exists to route.
func liftEdge(g *dag.Graph, source, target string) (string, string, bool) {
	targetChain := append([]string{target}, g.Ancestors(target)...)
	byParent := make(map[string]string, len(targetChain))
	for _, id := range targetChain {
		byParent[g.Nodes[id].Parent] = id
	}

	for _, a := range append([]string{source}, g.Ancestors(source)...) {
		b, ok := byParent[g.Nodes[a].Parent]
		if !ok {
			continue
		}
		if a == b {
			return "", "", false
		}
		return a, b, true
	}
	return "", "", false
}
