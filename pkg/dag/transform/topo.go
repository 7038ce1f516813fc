package transform

import (
	"slices"

	"github.com/matzehuels/possible/pkg/dag"
)

// ErrGraphHasCycle is returned when the sequence relation of the nodes being
// ordered contains a directed cycle. It is the same value as
// [dag.ErrGraphHasCycle], so errors.Is matches either.
var ErrGraphHasCycle = dag.ErrGraphHasCycle

// TopoSort returns ids in topological order of the sequence relation:
// every node appears before all of its successors. Only edges between
// members of ids are considered. IDs not present in g are skipped.
//
// The order is deterministic: roots are visited in the order given and
// successors in the order of their Nexts lists.
//
// TopoSort returns [ErrGraphHasCycle] if the subset contains a cycle.
func TopoSort(g *dag.Graph, ids []string) ([]string, error) {
	const (
		white = iota
		gray
		black
	)

	member := make(map[string]bool, len(ids))
	for _, id := range ids {
		if g.HasNode(id) {
			member[id] = true
		}
	}

	type frame struct {
		id   string
		next int
	}

	color := make(map[string]int, len(member))
	post := make([]string, 0, len(member))
	for _, start := range ids {
		if !member[start] || color[start] != white {
			continue
		}
		color[start] = gray
		stack := []frame{{id: start}}
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			nexts := g.Nodes[top.id].Nexts
			if top.next == len(nexts) {
				color[top.id] = black
				post = append(post, top.id)
				stack = stack[:len(stack)-1]
				continue
			}
			child := nexts[top.next]
			top.next++
			if !member[child] {
				continue
			}
			switch color[child] {
			case white:
				color[child] = gray
				stack = append(stack, frame{id: child})
			case gray:
				return nil, ErrGraphHasCycle
			}
		}
	}

	slices.Reverse(post)
	return post, nil
}

// WouldCreateCycle reports whether adding the sequence edge from→to would
// close a directed cycle, that is whether from is reachable from to. An edge
// from a node to itself always would.
func WouldCreateCycle(g *dag.Graph, from, to string) bool {
	if from == to {
		return true
	}
	if !g.HasNode(from) || !g.HasNode(to) {
		return false
	}

	visited := map[string]bool{to: true}
	stack := []string{to}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n, ok := g.Node(id)
		if !ok {
			continue
		}
		for _, next := range n.Nexts {
			if next == from {
				return true
			}
			if !visited[next] {
				visited[next] = true
				stack = append(stack, next)
			}
		}
	}
	return false
}

// Reachable reports whether to can be reached from from by following Nexts.
// A node reaches itself.
func Reachable(g *dag.Graph, from, to string) bool {
	if from == to {
		return g.HasNode(from)
	}
	return g.HasNode(from) && WouldCreateCycle(g, to, from)
}
