package store

import (
	"slices"

	"github.com/matzehuels/possible/pkg/dag"
)

// newNode creates an unnamed node, adds it to g and places it under parent
// when parent is set.
func (s *Store) newNode(g *dag.Graph, parent string) *dag.Node {
	n := dag.NewNode("")
	now := s.millis()
	n.CreatedAt, n.UpdatedAt = now, now
	s.addNode(g, n)
	if parent != "" {
		s.setChild(g, parent, n.ID)
	}
	return g.Nodes[n.ID]
}

// AppendNewNode adds a new successor to nodeID under the same parent and
// returns its ID, or "" when nodeID does not exist.
func (s *Store) AppendNewNode(graphID, nodeID string, opts Options) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, cur, ok := s.lookup(graphID, nodeID)
	if !ok {
		s.finish("append_new_node", g, false, opts)
		return ""
	}
	n := s.newNode(g, cur.Parent)
	s.addEdge(g, cur.ID, n.ID)
	s.finish("append_new_node", g, true, opts)
	return n.ID
}

// InsertNewNode inserts a new node directly after nodeID: the new node
// takes over every successor of nodeID and becomes its only successor.
func (s *Store) InsertNewNode(graphID, nodeID string, opts Options) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, cur, ok := s.lookup(graphID, nodeID)
	if !ok {
		s.finish("insert_new_node", g, false, opts)
		return ""
	}
	n := s.newNode(g, cur.Parent)
	for _, next := range slices.Clone(cur.Nexts) {
		s.removeEdge(g, cur.ID, next)
		s.addEdge(g, n.ID, next)
	}
	s.addEdge(g, cur.ID, n.ID)
	s.finish("insert_new_node", g, true, opts)
	return n.ID
}

// AddFrontNewNode adds a new predecessor to nodeID under the same parent.
func (s *Store) AddFrontNewNode(graphID, nodeID string, opts Options) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, cur, ok := s.lookup(graphID, nodeID)
	if !ok {
		s.finish("add_front_new_node", g, false, opts)
		return ""
	}
	n := s.newNode(g, cur.Parent)
	s.addEdge(g, n.ID, cur.ID)
	s.finish("add_front_new_node", g, true, opts)
	return n.ID
}

// InsertFrontNewNode inserts a new node directly before nodeID: the new
// node takes over every predecessor of nodeID and becomes its only
// predecessor.
func (s *Store) InsertFrontNewNode(graphID, nodeID string, opts Options) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, cur, ok := s.lookup(graphID, nodeID)
	if !ok {
		s.finish("insert_front_new_node", g, false, opts)
		return ""
	}
	n := s.newNode(g, cur.Parent)
	for _, prev := range slices.Clone(cur.Prevs) {
		s.removeEdge(g, prev, cur.ID)
		s.addEdge(g, prev, n.ID)
	}
	s.addEdge(g, n.ID, cur.ID)
	s.finish("insert_front_new_node", g, true, opts)
	return n.ID
}

// AddNewNode adds an unattached node to the graph.
func (s *Store) AddNewNode(graphID string, opts Options) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.graphs[graphID]
	if !ok {
		s.finish("add_new_node", nil, false, opts)
		return ""
	}
	n := s.newNode(g, "")
	s.finish("add_new_node", g, true, opts)
	return n.ID
}

// AddNewChildNode adds a new node as a child of parentID.
func (s *Store) AddNewChildNode(graphID, parentID string, opts Options) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, _, ok := s.lookup(graphID, parentID)
	if !ok {
		s.finish("add_new_child_node", g, false, opts)
		return ""
	}
	n := s.newNode(g, parentID)
	s.finish("add_new_child_node", g, true, opts)
	return n.ID
}

// DeleteNodeKeepEdges removes nodeID after connecting each of its
// predecessors to each of its successors, so sequence reachability among
// the remaining nodes is preserved.
func (s *Store) DeleteNodeKeepEdges(graphID, nodeID string, opts Options) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, cur, ok := s.lookup(graphID, nodeID)
	if !ok {
		return s.finish("delete_node_keep_edges", g, false, opts)
	}
	prevs := slices.Clone(cur.Prevs)
	nexts := slices.Clone(cur.Nexts)
	for _, p := range prevs {
		for _, n := range nexts {
			s.addEdge(g, p, n)
		}
	}
	s.removeNode(g, nodeID)
	return s.finish("delete_node_keep_edges", g, true, opts)
}

// DeletePrevEdges removes every incoming sequence edge of nodeID.
func (s *Store) DeletePrevEdges(graphID, nodeID string, opts Options) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, cur, ok := s.lookup(graphID, nodeID)
	if !ok || len(cur.Prevs) == 0 {
		return s.finish("delete_prev_edges", g, false, opts)
	}
	for _, p := range slices.Clone(cur.Prevs) {
		s.removeEdge(g, p, cur.ID)
	}
	return s.finish("delete_prev_edges", g, true, opts)
}

// DeleteNextEdges removes every outgoing sequence edge of nodeID.
func (s *Store) DeleteNextEdges(graphID, nodeID string, opts Options) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, cur, ok := s.lookup(graphID, nodeID)
	if !ok || len(cur.Nexts) == 0 {
		return s.finish("delete_next_edges", g, false, opts)
	}
	for _, n := range slices.Clone(cur.Nexts) {
		s.removeEdge(g, cur.ID, n)
	}
	return s.finish("delete_next_edges", g, true, opts)
}
