package store

import (
	"github.com/matzehuels/possible/pkg/dag/transform"
	perrors "github.com/matzehuels/possible/pkg/errors"
	"github.com/matzehuels/possible/pkg/graph"
	"github.com/matzehuels/possible/pkg/view"
)

// Reduce removes redundant sequence edges from the component containing
// nodeID and returns how many were removed. A cycle in the component
// returns [transform.ErrGraphHasCycle] and changes nothing.
func (s *Store) Reduce(graphID, nodeID string, opts Options) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.graphs[graphID]
	if !ok {
		return 0, nil
	}
	n, err := transform.TransitiveReduction(g, nodeID)
	s.finish("reduce", g, n > 0, opts)
	return n, err
}

// ReduceGraph removes redundant sequence edges from the whole graph.
func (s *Store) ReduceGraph(graphID string, opts Options) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.graphs[graphID]
	if !ok {
		return 0, nil
	}
	n, err := transform.ReduceGraph(g)
	s.finish("reduce_graph", g, n > 0, opts)
	return n, err
}

// Project returns the visible render data of a graph.
func (s *Store) Project(graphID string) (graph.Data, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.graphs[graphID]
	if !ok {
		return graph.Data{}, false
	}
	return view.Project(g), true
}

// Validate checks the model invariants of a graph.
func (s *Store) Validate(graphID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.graphs[graphID]
	if !ok {
		return perrors.New(perrors.ErrCodeGraphNotFound, "graph %q not found", graphID)
	}
	return g.Validate()
}
