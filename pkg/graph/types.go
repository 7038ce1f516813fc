package graph

import (
	"math"
	"slices"

	"github.com/matzehuels/possible/pkg/dag"
)

// =============================================================================
// Constants
// =============================================================================

// Node states shown by renderers.
const (
	StateFollowed  = "followed"
	StateCompleted = "completed"
)

// Default node size used when a node carries no size of its own.
const (
	DefaultNodeWidth  = 120.0
	DefaultNodeHeight = 80.0
)

// =============================================================================
// Data - Render-ready Graph
// =============================================================================

// Data is a flat node/edge list ready for layout and rendering.
type Data struct {
	Nodes  []Node  `json:"nodes" bson:"nodes"`
	Edges  []Edge  `json:"edges" bson:"edges"`
	Width  float64 `json:"width,omitempty" bson:"width,omitempty"`
	Height float64 `json:"height,omitempty" bson:"height,omitempty"`
}

// Node is one visible node.
type Node struct {
	ID     string `json:"id" bson:"id"`
	Parent string `json:"parent,omitempty" bson:"parent,omitempty"`
	Label  string `json:"label" bson:"label"`

	// Size is the authored size. Zero means "use the default".
	Size [2]float64 `json:"size" bson:"size"`

	X      float64 `json:"x" bson:"x"`
	Y      float64 `json:"y" bson:"y"`
	Width  float64 `json:"width,omitempty" bson:"width,omitempty"`
	Height float64 `json:"height,omitempty" bson:"height,omitempty"`

	// Group is set by layout on nodes that contain a nested sub-graph.
	Group  bool     `json:"group,omitempty" bson:"group,omitempty"`
	States []string `json:"states,omitempty" bson:"states,omitempty"`

	Data *dag.Node `json:"data,omitempty" bson:"data,omitempty"`
}

// HasState reports whether s is one of the node's states.
func (n *Node) HasState(s string) bool { return slices.Contains(n.States, s) }

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Bounds returns the top-left corner and bottom-right corner of the node.
func (n *Node) Bounds() (x0, y0, x1, y1 float64) {
	return n.X - n.Width/2, n.Y - n.Height/2, n.X + n.Width/2, n.Y + n.Height/2
}

// Edge is a directed sequence edge between two visible nodes.
type Edge struct {
	ID     string `json:"id" bson:"id"`
	Source string `json:"source" bson:"source"`
	Target string `json:"target" bson:"target"`

	// LayoutSource and LayoutTarget are the endpoints the layout engine
	// routes. They differ from Source/Target for cross-level edges.
	LayoutSource string `json:"layoutSource,omitempty" bson:"layoutSource,omitempty"`
	LayoutTarget string `json:"layoutTarget,omitempty" bson:"layoutTarget,omitempty"`
}

// EdgeID returns the deterministic ID of the edge source→target.
func EdgeID(source, target string) string { return source + "_" + target }

// Endpoints returns the endpoints layout should use.
func (e *Edge) Endpoints() (string, string) {
	s, t := e.Source, e.Target
	if e.LayoutSource != "" {
		s = e.LayoutSource
	}
	if e.LayoutTarget != "" {
		t = e.LayoutTarget
	}
	return s, t
}

// =============================================================================
// Data Helpers
// =============================================================================

// Node returns the node with the given ID, or nil.
func (d *Data) Node(id string) *Node {
	for i := range d.Nodes {
		if d.Nodes[i].ID == id {
			return &d.Nodes[i]
		}
	}
	return nil
}

// Index maps node IDs to their position in d.Nodes.
func (d *Data) Index() map[string]int {
	idx := make(map[string]int, len(d.Nodes))
	for i, n := range d.Nodes {
		idx[n.ID] = i
	}
	return idx
}

// Children returns the IDs of nodes whose Parent is id, in node order.
func (d *Data) Children(id string) []string {
	var out []string
	for _, n := range d.Nodes {
		if n.Parent == id {
			out = append(out, n.ID)
		}
	}
	return out
}

// Clone returns a deep copy of d.
func (d Data) Clone() Data {
	out := d
	out.Nodes = make([]Node, len(d.Nodes))
	for i, n := range d.Nodes {
		n.States = slices.Clone(n.States)
		n.Data = n.Data.Clone()
		out.Nodes[i] = n
	}
	out.Edges = slices.Clone(d.Edges)
	return out
}

// Extent returns the bounding box of all nodes. It returns zeros for an
// empty node list.
func (d *Data) Extent() (x0, y0, x1, y1 float64) {
	if len(d.Nodes) == 0 {
		return 0, 0, 0, 0
	}
	x0, y0 = math.Inf(1), math.Inf(1)
	x1, y1 = math.Inf(-1), math.Inf(-1)
	for i := range d.Nodes {
		a, b, c, e := d.Nodes[i].Bounds()
		x0, y0 = math.Min(x0, a), math.Min(y0, b)
		x1, y1 = math.Max(x1, c), math.Max(y1, e)
	}
	return x0, y0, x1, y1
}
