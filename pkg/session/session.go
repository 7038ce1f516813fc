// Package session remembers which graph (and node) a client is working on.
//
// The store itself holds no notion of a "current" graph. Callers that need
// one between invocations, such as the CLI, keep a [Selection] in a [Store]:
//
//	st, err := session.NewFileStore("")  // ~/.config/possible/sessions/
//	sel, err := st.Get(ctx, session.DefaultName)
//	if sel == nil {
//	    // nothing selected yet
//	}
//	sel = session.Select(graphID)
//	err = st.Set(ctx, session.DefaultName, sel)
package session

import (
	"context"
	"time"
)

// DefaultName is the selection used by the CLI.
const DefaultName = "default"

// Selection is the current graph and, optionally, the current node in it.
type Selection struct {
	GraphID   string    `json:"graph_id"`
	NodeID    string    `json:"node_id,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Select returns a selection of graphID with no node.
func Select(graphID string) *Selection {
	return &Selection{GraphID: graphID, UpdatedAt: time.Now()}
}

// WithNode returns a copy of s with nodeID selected.
func (s *Selection) WithNode(nodeID string) *Selection {
	c := *s
	c.NodeID = nodeID
	c.UpdatedAt = time.Now()
	return &c
}

// Store is the interface for selection storage.
type Store interface {
	// Get retrieves a selection by name.
	// Returns nil, nil if the selection doesn't exist.
	Get(ctx context.Context, name string) (*Selection, error)

	// Set stores a selection.
	Set(ctx context.Context, name string, sel *Selection) error

	// Delete removes a selection.
	Delete(ctx context.Context, name string) error
}
