package dag

import (
	"errors"
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrInvalidNodeID is returned by [Graph.Validate] when a node is stored
	// under an empty key or under a key that differs from its ID.
	ErrInvalidNodeID = errors.New("invalid node ID")

	// ErrSelfLoop is returned by [Graph.Validate] when a node lists itself as
	// its own parent, child, successor or predecessor.
	ErrSelfLoop = errors.New("self loop")

	// ErrAsymmetricSequence is returned by [Graph.Validate] when b is in
	// a.Nexts but a is not in b.Prevs, or the reverse.
	ErrAsymmetricSequence = errors.New("nexts and prevs are not symmetric")

	// ErrAsymmetricHierarchy is returned by [Graph.Validate] when a child does
	// not point back at the parent listing it, or a node's parent does not
	// list it as a child.
	ErrAsymmetricHierarchy = errors.New("parent and children are not symmetric")

	// ErrDanglingReference is returned by [Graph.Validate] when a relation
	// references a node that is not part of the graph.
	ErrDanglingReference = errors.New("dangling node reference")

	// ErrGraphHasCycle is returned by [Graph.Validate] when the sequence
	// relation contains a directed cycle.
	ErrGraphHasCycle = errors.New("graph contains a cycle")
)

// Node is one task or note. It participates in two independent relations:
// the hierarchy (Parent/Children) and the sequence (Prevs/Nexts).
//
// Timestamps are Unix milliseconds. Children, Nexts and Prevs are ordered
// sets: they never contain duplicates and are never nil once the node has
// passed through [Graph.Normalize] or [NewNode].
type Node struct {
	ID          string `json:"id" bson:"id"`
	Name        string `json:"name" bson:"name"`
	Description string `json:"description" bson:"description"`
	Record      string `json:"record" bson:"record"`

	CreatedAt   int64 `json:"createdAt" bson:"createdAt"`
	UpdatedAt   int64 `json:"updatedAt" bson:"updatedAt"`
	StartAt     int64 `json:"startAt" bson:"startAt"`
	EndAt       int64 `json:"endAt" bson:"endAt"`
	CompletedAt int64 `json:"completedAt" bson:"completedAt"`

	Parent   string   `json:"parent,omitempty" bson:"parent,omitempty"`
	Children []string `json:"children" bson:"children"`
	Nexts    []string `json:"nexts" bson:"nexts"`
	Prevs    []string `json:"prevs" bson:"prevs"`

	Completed  bool `json:"completed" bson:"completed"`
	Expanded   bool `json:"expanded,omitempty" bson:"expanded,omitempty"`
	Priority   *int `json:"priority,omitempty" bson:"priority,omitempty"`
	IsFollowed bool `json:"isFollowed,omitempty" bson:"isFollowed,omitempty"`
}

// NewNode returns a node with a fresh UUID and all timestamps except
// CompletedAt set to the current time.
func NewNode(name string) *Node {
	now := time.Now().UnixMilli()
	return &Node{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
		StartAt:   now,
		EndAt:     now,
		Children:  []string{},
		Nexts:     []string{},
		Prevs:     []string{},
	}
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	c.Children = slices.Clone(n.Children)
	c.Nexts = slices.Clone(n.Nexts)
	c.Prevs = slices.Clone(n.Prevs)
	if n.Priority != nil {
		p := *n.Priority
		c.Priority = &p
	}
	return &c
}

// IsGroup reports whether the node has hierarchy children.
func (n *Node) IsGroup() bool { return len(n.Children) > 0 }

// HasSequenceEdges reports whether the node has any predecessor or successor.
func (n *Node) HasSequenceEdges() bool { return len(n.Nexts) > 0 || len(n.Prevs) > 0 }

// Graph is a named collection of nodes. The graph owns its nodes: removing
// the graph removes all of them.
//
// RootNodeIDs is derived data. It is rebuilt by [Graph.BuildRoots] and is
// only as fresh as the last structural edit that asked for a rebuild.
type Graph struct {
	ID            string           `json:"id" bson:"id"`
	Name          string           `json:"name" bson:"name"`
	CreatedAt     int64            `json:"createdAt" bson:"createdAt"`
	UpdatedAt     int64            `json:"updatedAt" bson:"updatedAt"`
	RootNodeIDs   []string         `json:"rootNodeIds" bson:"rootNodeIds"`
	HideCompleted bool             `json:"hideCompleted,omitempty" bson:"hideCompleted,omitempty"`
	Nodes         map[string]*Node `json:"nodes" bson:"nodes"`
	Priority      *int             `json:"priority,omitempty" bson:"priority,omitempty"`
}

// NewGraph returns an empty graph with a fresh UUID.
func NewGraph(name string) *Graph {
	now := time.Now().UnixMilli()
	return &Graph{
		ID:          uuid.NewString(),
		Name:        name,
		CreatedAt:   now,
		UpdatedAt:   now,
		RootNodeIDs: []string{},
		Nodes:       make(map[string]*Node),
	}
}

// Clone returns a deep copy of the graph and all of its nodes.
func (g *Graph) Clone() *Graph {
	if g == nil {
		return nil
	}
	c := *g
	c.RootNodeIDs = slices.Clone(g.RootNodeIDs)
	c.Nodes = make(map[string]*Node, len(g.Nodes))
	for id, n := range g.Nodes {
		c.Nodes[id] = n.Clone()
	}
	if g.Priority != nil {
		p := *g.Priority
		c.Priority = &p
	}
	return &c
}

// Node returns the node with the given ID and true, or nil and false.
// The pointer refers to the live node.
func (g *Graph) Node(id string) (*Node, bool) {
	if id == "" {
		return nil, false
	}
	n, ok := g.Nodes[id]
	return n, ok && n != nil
}

// HasNode reports whether id names a node of the graph.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.Node(id)
	return ok
}

// NodeIDs returns all node IDs in ascending order.
func (g *Graph) NodeIDs() []string {
	return slices.Sorted(maps.Keys(g.Nodes))
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.Nodes) }

// EdgeCount returns the number of sequence edges in the graph.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, n := range g.Nodes {
		count += len(n.Nexts)
	}
	return count
}

// IsRoot reports whether the node has neither a parent nor a predecessor
// present in the graph.
func (g *Graph) IsRoot(n *Node) bool {
	if g.HasNode(n.Parent) {
		return false
	}
	for _, p := range n.Prevs {
		if g.HasNode(p) {
			return false
		}
	}
	return true
}

// BuildRoots recomputes RootNodeIDs from scratch. The result is sorted so
// that repeated rebuilds without edits produce identical slices.
func (g *Graph) BuildRoots() {
	roots := make([]string, 0)
	for _, id := range g.NodeIDs() {
		if g.IsRoot(g.Nodes[id]) {
			roots = append(roots, id)
		}
	}
	g.RootNodeIDs = roots
}

// Ancestors returns the hierarchy ancestors of id, nearest first. The walk
// stops at the first parent that is missing from the graph or already seen.
func (g *Graph) Ancestors(id string) []string {
	var out []string
	seen := map[string]bool{id: true}
	n, ok := g.Node(id)
	for ok && n.Parent != "" && !seen[n.Parent] {
		parent, exists := g.Node(n.Parent)
		if !exists {
			break
		}
		seen[parent.ID] = true
		out = append(out, parent.ID)
		n = parent
	}
	return out
}

// Normalize repairs the shape of decoded data: nil slices become empty,
// duplicate and self references are dropped, nil nodes are removed and
// RootNodeIDs is never nil. It does not add or remove relations, so an
// asymmetric document stays asymmetric; use [Graph.Validate] to detect that.
func (g *Graph) Normalize() {
	if g.Nodes == nil {
		g.Nodes = make(map[string]*Node)
	}
	for id, n := range g.Nodes {
		if n == nil {
			delete(g.Nodes, id)
			continue
		}
		if n.ID == "" {
			n.ID = id
		}
		n.Children = cleanIDs(n.Children, n.ID)
		n.Nexts = cleanIDs(n.Nexts, n.ID)
		n.Prevs = cleanIDs(n.Prevs, n.ID)
		if n.Parent == n.ID {
			n.Parent = ""
		}
	}
	if g.RootNodeIDs == nil {
		g.RootNodeIDs = []string{}
	}
}

func cleanIDs(ids []string, self string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || id == self || slices.Contains(out, id) {
			continue
		}
		out = append(out, id)
	}
	return out
}

// Validate checks every model invariant and returns the first violation.
//
// It verifies that nodes are keyed by their own ID, that neither relation
// contains self loops or dangling references, that both relations are
// symmetric and that the sequence relation is acyclic. Cycle detection runs
// in O(N+E) using white/gray/black depth-first search.
func (g *Graph) Validate() error {
	for _, id := range g.NodeIDs() {
		n := g.Nodes[id]
		if id == "" || n.ID != id {
			return ErrInvalidNodeID
		}
		if err := g.validateNode(n); err != nil {
			return err
		}
	}
	return g.detectCycles()
}

func (g *Graph) validateNode(n *Node) error {
	if n.Parent == n.ID || slices.Contains(n.Children, n.ID) ||
		slices.Contains(n.Nexts, n.ID) || slices.Contains(n.Prevs, n.ID) {
		return ErrSelfLoop
	}
	if n.Parent != "" {
		parent, ok := g.Node(n.Parent)
		if !ok {
			return ErrDanglingReference
		}
		if !slices.Contains(parent.Children, n.ID) {
			return ErrAsymmetricHierarchy
		}
	}
	for _, c := range n.Children {
		child, ok := g.Node(c)
		if !ok {
			return ErrDanglingReference
		}
		if child.Parent != n.ID {
			return ErrAsymmetricHierarchy
		}
	}
	for _, next := range n.Nexts {
		m, ok := g.Node(next)
		if !ok {
			return ErrDanglingReference
		}
		if !slices.Contains(m.Prevs, n.ID) {
			return ErrAsymmetricSequence
		}
	}
	for _, prev := range n.Prevs {
		m, ok := g.Node(prev)
		if !ok {
			return ErrDanglingReference
		}
		if !slices.Contains(m.Nexts, n.ID) {
			return ErrAsymmetricSequence
		}
	}
	return nil
}

func (g *Graph) detectCycles() error {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(g.Nodes))
	type frame struct {
		id   string
		next int
	}

	for _, start := range g.NodeIDs() {
		if color[start] != white {
			continue
		}
		stack := []frame{{id: start}}
		color[start] = gray
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			nexts := g.Nodes[top.id].Nexts
			if top.next == len(nexts) {
				color[top.id] = black
				stack = stack[:len(stack)-1]
				continue
			}
			child := nexts[top.next]
			top.next++
			if !g.HasNode(child) {
				continue
			}
			switch color[child] {
			case white:
				color[child] = gray
				stack = append(stack, frame{id: child})
			case gray:
				return ErrGraphHasCycle
			}
		}
	}
	return nil
}

// Link adds the sequence edge from→to on both endpoints. It reports false
// when either node is missing, from equals to, or the edge already exists.
// Link does not check for cycles.
func (g *Graph) Link(from, to string) bool {
	a, ok := g.Node(from)
	if !ok {
		return false
	}
	b, ok := g.Node(to)
	if !ok || from == to || slices.Contains(a.Nexts, to) {
		return false
	}
	a.Nexts = append(a.Nexts, to)
	if !slices.Contains(b.Prevs, from) {
		b.Prevs = append(b.Prevs, from)
	}
	return true
}

// Unlink removes the sequence edge from→to from both endpoints. It reports
// whether either side changed.
func (g *Graph) Unlink(from, to string) bool {
	changed := false
	if a, ok := g.Node(from); ok {
		if i := slices.Index(a.Nexts, to); i >= 0 {
			a.Nexts = slices.Delete(a.Nexts, i, i+1)
			changed = true
		}
	}
	if b, ok := g.Node(to); ok {
		if i := slices.Index(b.Prevs, from); i >= 0 {
			b.Prevs = slices.Delete(b.Prevs, i, i+1)
			changed = true
		}
	}
	return changed
}
