package store

import (
	"slices"

	"github.com/matzehuels/possible/pkg/dag"
	"github.com/matzehuels/possible/pkg/dag/transform"
)

// The exported primitives lock the store and delegate to unexported
// variants that composites call with the lock already held.

// AddNode inserts a copy of n into the graph. The copy starts with no
// relations; attach it with [Store.AddEdge] and [Store.SetChild]. It
// reports false when the graph is missing, n has no ID or the ID is taken.
func (s *Store) AddNode(graphID string, n *dag.Node, opts Options) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.graphs[graphID]
	return s.finish("add_node", g, s.addNode(g, n), opts)
}

func (s *Store) addNode(g *dag.Graph, n *dag.Node) bool {
	if g == nil || n == nil || n.ID == "" || g.HasNode(n.ID) {
		return false
	}
	c := n.Clone()
	c.Parent = ""
	c.Children = []string{}
	c.Nexts = []string{}
	c.Prevs = []string{}
	g.Nodes[c.ID] = c
	return true
}

// RemoveNode deletes a node and, transitively, all of its children. Every
// sequence edge touching a deleted node is removed from both endpoints and
// the node is detached from its parent.
func (s *Store) RemoveNode(graphID, nodeID string, opts Options) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.graphs[graphID]
	return s.finish("remove_node", g, s.removeNode(g, nodeID), opts)
}

func (s *Store) removeNode(g *dag.Graph, nodeID string) bool {
	if g == nil {
		return false
	}
	root, ok := g.Node(nodeID)
	if !ok {
		return false
	}
	if p, ok := g.Node(root.Parent); ok {
		p.Children = slices.DeleteFunc(p.Children, func(id string) bool { return id == nodeID })
	}

	stack := []string{nodeID}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n, ok := g.Node(id)
		if !ok {
			continue
		}
		for _, prev := range slices.Clone(n.Prevs) {
			g.Unlink(prev, id)
		}
		for _, next := range slices.Clone(n.Nexts) {
			g.Unlink(id, next)
		}
		stack = append(stack, n.Children...)
		delete(g.Nodes, id)
	}
	return true
}

// AddEdge adds the sequence edge from→to. Self loops and duplicate edges
// are refused. With Config.RejectCycles, edges that would close a cycle are
// refused too.
func (s *Store) AddEdge(graphID, from, to string, opts Options) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.graphs[graphID]
	return s.finish("add_edge", g, s.addEdge(g, from, to), opts)
}

func (s *Store) addEdge(g *dag.Graph, from, to string) bool {
	if g == nil || !g.HasNode(from) || !g.HasNode(to) {
		return false
	}
	if s.rejectCycles && transform.WouldCreateCycle(g, from, to) {
		return false
	}
	return g.Link(from, to)
}

// RemoveEdge removes the sequence edge from→to from both endpoints.
func (s *Store) RemoveEdge(graphID, from, to string, opts Options) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.graphs[graphID]
	return s.finish("remove_edge", g, s.removeEdge(g, from, to), opts)
}

func (s *Store) removeEdge(g *dag.Graph, from, to string) bool {
	if g == nil || !g.HasNode(from) || !g.HasNode(to) {
		return false
	}
	return g.Unlink(from, to)
}

// SetChild makes childID a child of parentID. The child must not already
// have a parent or any sequence edge, and must not be the parent or one of
// its ancestors.
func (s *Store) SetChild(graphID, parentID, childID string, opts Options) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.graphs[graphID]
	return s.finish("set_child", g, s.setChild(g, parentID, childID), opts)
}

func (s *Store) setChild(g *dag.Graph, parentID, childID string) bool {
	if g == nil || parentID == childID {
		return false
	}
	p, ok := g.Node(parentID)
	if !ok {
		return false
	}
	c, ok := g.Node(childID)
	if !ok || c.Parent != "" || c.HasSequenceEdges() {
		return false
	}
	if slices.Contains(g.Ancestors(parentID), childID) {
		return false
	}
	c.Parent = parentID
	if !slices.Contains(p.Children, childID) {
		p.Children = append(p.Children, childID)
	}
	return true
}

// DetachChild removes childID from parentID's children. The child stays in
// the graph as a top-level node.
func (s *Store) DetachChild(graphID, parentID, childID string, opts Options) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.graphs[graphID]
	return s.finish("detach_child", g, s.detachChild(g, parentID, childID), opts)
}

func (s *Store) detachChild(g *dag.Graph, parentID, childID string) bool {
	if g == nil {
		return false
	}
	p, ok := g.Node(parentID)
	if !ok {
		return false
	}
	c, ok := g.Node(childID)
	if !ok || c.Parent != parentID {
		return false
	}
	c.Parent = ""
	p.Children = slices.DeleteFunc(p.Children, func(id string) bool { return id == childID })
	return true
}

// SetNodeExpanded sets a node's expanded flag. It reports false when the
// flag already has that value.
func (s *Store) SetNodeExpanded(graphID, nodeID string, expanded bool, opts Options) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, n, ok := s.lookup(graphID, nodeID)
	if !ok || n.Expanded == expanded {
		return s.finish("set_expanded", g, false, opts)
	}
	n.Expanded = expanded
	return s.finish("set_expanded", g, true, opts)
}

// ToggleNodeExpanded flips a node's expanded flag.
func (s *Store) ToggleNodeExpanded(graphID, nodeID string, opts Options) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, n, ok := s.lookup(graphID, nodeID)
	if !ok {
		return s.finish("toggle_expanded", g, false, opts)
	}
	n.Expanded = !n.Expanded
	return s.finish("toggle_expanded", g, true, opts)
}

// BuildRoots recomputes the root list of a graph. It is idempotent.
func (s *Store) BuildRoots(graphID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.graphs[graphID]
	if !ok {
		return false
	}
	g.BuildRoots()
	return true
}
