package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/possible/pkg/dag"
)

type edgeList struct {
	Name  string `json:"name,omitempty"`
	Nodes []node `json:"nodes"`
	Edges []edge `json:"edges"`
}

type node struct {
	ID          string `json:"id"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Parent      string `json:"parent,omitempty"`
	Completed   bool   `json:"completed,omitempty"`
	Expanded    bool   `json:"expanded,omitempty"`
}

type edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// ReadEdgeList decodes a single graph in edge-list form from r.
//
// The graph gets a fresh ID. Nodes without a name are named after their ID.
// ReadEdgeList returns an error if:
//   - The JSON is malformed
//   - A node ID is empty or duplicated
//   - A parent or edge endpoint references an unknown node
//   - The edges form a cycle
//
// ReadEdgeList does not close r.
func ReadEdgeList(r io.Reader) (*dag.Graph, error) {
	var data edgeList
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	g := dag.NewGraph(data.Name)
	for _, n := range data.Nodes {
		if n.ID == "" {
			return nil, fmt.Errorf("node with empty id")
		}
		if g.HasNode(n.ID) {
			return nil, fmt.Errorf("node %s: duplicate id", n.ID)
		}
		nd := dag.NewNode(n.Name)
		nd.ID = n.ID
		if nd.Name == "" {
			nd.Name = n.ID
		}
		nd.Description = n.Description
		nd.Completed = n.Completed
		nd.Expanded = n.Expanded
		g.Nodes[n.ID] = nd
	}
	for _, n := range data.Nodes {
		if n.Parent == "" {
			continue
		}
		parent, ok := g.Node(n.Parent)
		if !ok || n.Parent == n.ID {
			return nil, fmt.Errorf("node %s: unknown parent %s", n.ID, n.Parent)
		}
		parent.Children = append(parent.Children, n.ID)
		g.Nodes[n.ID].Parent = n.Parent
	}
	for _, e := range data.Edges {
		if !g.HasNode(e.From) || !g.HasNode(e.To) {
			return nil, fmt.Errorf("edge %s->%s: unknown node", e.From, e.To)
		}
		g.Link(e.From, e.To)
	}

	if err := g.Validate(); err != nil {
		return nil, err
	}
	g.BuildRoots()
	return g, nil
}

// ImportEdgeList reads an edge-list file at path.
func ImportEdgeList(path string) (*dag.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadEdgeList(f)
}

// WriteEdgeList encodes g in edge-list form. Nodes and edges are written in
// ID order so the output is stable.
func WriteEdgeList(g *dag.Graph, w io.Writer) error {
	out := edgeList{Name: g.Name, Nodes: []node{}, Edges: []edge{}}
	for _, id := range g.NodeIDs() {
		n := g.Nodes[id]
		out.Nodes = append(out.Nodes, node{
			ID:          n.ID,
			Name:        n.Name,
			Description: n.Description,
			Parent:      n.Parent,
			Completed:   n.Completed,
			Expanded:    n.Expanded,
		})
		for _, next := range n.Nexts {
			out.Edges = append(out.Edges, edge{From: id, To: next})
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
