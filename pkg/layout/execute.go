package layout

import (
	"context"
	"errors"
	"fmt"

	"github.com/matzehuels/possible/pkg/graph"
)

// ErrNestingCycle is returned when node parents form a cycle, so some
// sub-graph can never be reached from the root.
var ErrNestingCycle = errors.New("node nesting contains a cycle")

// subGraph is the set of nodes sharing one parent.
type subGraph struct {
	key     string // parent node ID, "" for the root
	members []int  // indices into data.Nodes
	edges   [][2]string

	width, height float64
	local         map[string]Point
	state         int
}

const (
	unvisited = iota
	inProgress
	done
)

type executor struct {
	ctx    context.Context
	data   *graph.Data
	opts   Options
	engine Engine
	index  map[string]int
	subs   map[string]*subGraph
}

// Execute lays out data and returns a copy with X, Y, Width and Height set
// on every node and Width/Height set on the result.
func Execute(ctx context.Context, data graph.Data, opts Options) (graph.Data, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return graph.Data{}, err
	}
	engine, err := NewEngine(opts.Engine)
	if err != nil {
		return graph.Data{}, err
	}
	return ExecuteWith(ctx, engine, data, opts)
}

// ExecuteWith is like [Execute] with an explicit engine. opts must already
// have defaults applied.
func ExecuteWith(ctx context.Context, engine Engine, data graph.Data, opts Options) (graph.Data, error) {
	out := data.Clone()
	out.Width, out.Height = 0, 0
	if len(out.Nodes) == 0 {
		return out, nil
	}

	e := &executor{
		ctx:    ctx,
		data:   &out,
		opts:   opts,
		engine: engine,
		index:  out.Index(),
	}
	e.group()

	root, ok := e.subs[""]
	if !ok {
		return graph.Data{}, ErrNestingCycle
	}
	if err := e.layout(root); err != nil {
		return graph.Data{}, err
	}
	for _, sg := range e.subs {
		if sg.state != done {
			return graph.Data{}, ErrNestingCycle
		}
	}

	e.setOffset(root, 0, 0)
	out.Width, out.Height = root.width-2*opts.Margin, root.height-2*opts.Margin
	return out, nil
}

// parentKey returns the sub-graph a node belongs to. Parents that are not
// part of the data put the node in the root sub-graph.
func (e *executor) parentKey(n *graph.Node) string {
	if _, ok := e.index[n.Parent]; ok && n.Parent != n.ID {
		return n.Parent
	}
	return ""
}

func (e *executor) group() {
	e.subs = make(map[string]*subGraph)
	for i := range e.data.Nodes {
		key := e.parentKey(&e.data.Nodes[i])
		sg, ok := e.subs[key]
		if !ok {
			sg = &subGraph{key: key}
			e.subs[key] = sg
		}
		sg.members = append(sg.members, i)
	}

	seen := make(map[[2]string]bool)
	for i := range e.data.Edges {
		s, t := e.data.Edges[i].Endpoints()
		si, ok1 := e.index[s]
		ti, ok2 := e.index[t]
		if !ok1 || !ok2 || s == t {
			continue
		}
		ks := e.parentKey(&e.data.Nodes[si])
		if ks != e.parentKey(&e.data.Nodes[ti]) {
			continue
		}
		pair := [2]string{s, t}
		if seen[pair] {
			continue
		}
		seen[pair] = true
		e.subs[ks].edges = append(e.subs[ks].edges, pair)
	}
}

// layout sizes sg after laying out every sub-graph nested in its members.
func (e *executor) layout(sg *subGraph) error {
	switch sg.state {
	case done:
		return nil
	case inProgress:
		return ErrNestingCycle
	}
	sg.state = inProgress

	boxes := make([]Box, 0, len(sg.members))
	for _, i := range sg.members {
		n := &e.data.Nodes[i]
		w, h := e.nodeSize(n)
		if nested, ok := e.subs[n.ID]; ok {
			if err := e.layout(nested); err != nil {
				return err
			}
			w, h = nested.width, nested.height
			n.Group = true
		}
		n.Width, n.Height = w, h
		boxes = append(boxes, Box{ID: n.ID, Width: w, Height: h})
	}

	if err := e.ctx.Err(); err != nil {
		return err
	}
	res, err := e.engine.Layout(e.ctx, Input{Nodes: boxes, Edges: sg.edges, Options: e.opts})
	if err != nil {
		return fmt.Errorf("layout %s: %w", describe(sg.key), err)
	}
	sg.local = res.Positions
	sg.width = res.Width + 2*e.opts.Margin
	sg.height = res.Height + 2*e.opts.Margin
	sg.state = done
	return nil
}

func (e *executor) nodeSize(n *graph.Node) (float64, float64) {
	w, h := n.Size[0], n.Size[1]
	if w <= 0 {
		w = e.opts.NodeWidth
	}
	if h <= 0 {
		h = e.opts.NodeHeight
	}
	return w, h
}

// setOffset places sg's members at offset + local position and recurses
// into nested sub-graphs.
func (e *executor) setOffset(sg *subGraph, ox, oy float64) {
	for _, i := range sg.members {
		n := &e.data.Nodes[i]
		p := sg.local[n.ID]
		n.X, n.Y = ox+p.X, oy+p.Y
		if nested, ok := e.subs[n.ID]; ok {
			e.setOffset(nested,
				n.X-nested.width/2+e.opts.Margin,
				n.Y-nested.height/2+e.opts.Margin)
		}
	}
}

func describe(key string) string {
	if key == "" {
		return "root sub-graph"
	}
	return fmt.Sprintf("sub-graph of %q", key)
}
