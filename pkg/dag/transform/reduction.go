package transform

import (
	"github.com/matzehuels/possible/pkg/dag"
)

// TransitiveReduction removes redundant sequence edges from the component
// containing nodeID and returns the number of edges removed.
//
// The component is every node reachable from nodeID by following Children,
// Nexts and Prevs. An edge a→b inside the component is redundant when some
// other direct successor of a already reaches b. For example, with A→B, B→C
// and A→C, reducing A removes A→C because A reaches C through B.
//
// # Algorithm
//
// The component is ordered with [TopoSort]. Closures are then built in
// reverse topological order, so each node's closure is the union of its
// successors and their closures. Redundant edges are collected against the
// unmodified edge set and only then removed from both endpoints.
//
// # Cycles
//
// If the component contains a cycle, TransitiveReduction returns
// [ErrGraphHasCycle] and removes nothing.
//
// # Performance
//
// Time complexity is O(V·E) and space O(V²) for the closure matrix, which is
// fine for hand-edited graphs of a few hundred nodes.
//
// Returns 0 and no error if nodeID is not part of g.
func TransitiveReduction(g *dag.Graph, nodeID string) (int, error) {
	if !g.HasNode(nodeID) {
		return 0, nil
	}
	return reduce(g, Component(g, nodeID))
}

// ReduceGraph applies transitive reduction to every node of g.
func ReduceGraph(g *dag.Graph) (int, error) {
	return reduce(g, g.NodeIDs())
}

// Component returns the IDs reachable from nodeID through Children, Nexts
// and Prevs, including nodeID itself, in discovery order.
func Component(g *dag.Graph, nodeID string) []string {
	if !g.HasNode(nodeID) {
		return nil
	}
	visited := map[string]bool{nodeID: true}
	order := []string{nodeID}
	stack := []string{nodeID}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := g.Nodes[id]
		for _, rel := range [][]string{n.Children, n.Nexts, n.Prevs} {
			for _, next := range rel {
				if visited[next] || !g.HasNode(next) {
					continue
				}
				visited[next] = true
				order = append(order, next)
				stack = append(stack, next)
			}
		}
	}
	return order
}

func reduce(g *dag.Graph, ids []string) (int, error) {
	order, err := TopoSort(g, ids)
	if err != nil {
		return 0, err
	}
	if len(order) == 0 {
		return 0, nil
	}

	index := make(map[string]int, len(order))
	for i, id := range order {
		index[id] = i
	}

	adjacency := make([][]int, len(order))
	for i, id := range order {
		for _, next := range g.Nodes[id].Nexts {
			if j, ok := index[next]; ok {
				adjacency[i] = append(adjacency[i], j)
			}
		}
	}

	closure := computeClosures(adjacency)

	var redundant [][2]string
	for src, succ := range adjacency {
		for _, dst := range succ {
			for _, other := range succ {
				if other != dst && closure[other][dst] {
					redundant = append(redundant, [2]string{order[src], order[dst]})
					break
				}
			}
		}
	}

	for _, e := range redundant {
		g.Unlink(e[0], e[1])
	}
	return len(redundant), nil
}

// computeClosures expects nodes indexed in topological order, so every
// successor has a higher index and is finished before its predecessors.
func computeClosures(adjacency [][]int) [][]bool {
	n := len(adjacency)
	closure := make([][]bool, n)
	for i := n - 1; i >= 0; i-- {
		row := make([]bool, n)
		for _, next := range adjacency[i] {
			row[next] = true
			for j, ok := range closure[next] {
				if ok {
					row[j] = true
				}
			}
		}
		closure[i] = row
	}
	return closure
}
