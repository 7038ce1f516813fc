package layout

import (
	"cmp"
	"context"
	"math"
	"slices"
)

// maxSweeps bounds the barycentric ordering passes.
const maxSweeps = 24

// placementPasses is the number of neighbour-alignment rounds.
const placementPasses = 4

// Layered is the native layered layout engine.
//
// Ranks follow sequence edges: every edge points from a lower rank to a
// higher one, with cycles broken by reversing DFS back edges. Edges that
// span several ranks are routed through dummy nodes so that ordering and
// placement only ever look at adjacent ranks.
type Layered struct{}

// Name returns "layered".
func (Layered) Name() string { return EngineLayered }

type lnode struct {
	id           string // empty for dummy nodes
	cross, along float64
	rank         int
	pos          float64 // centre on the cross axis
	preds, succs []int
}

type layered struct {
	opts   Options
	nodes  []*lnode
	layers [][]int
	order  []int // position of each node inside its layer
}

// Layout implements [Engine].
func (Layered) Layout(ctx context.Context, in Input) (Result, error) {
	if len(in.Nodes) == 0 {
		return Result{Positions: map[string]Point{}}, nil
	}
	l := &layered{opts: in.Options}
	idx := l.addNodes(in.Nodes)
	edges := l.acyclic(idx, in.Edges)
	l.rank(edges)
	l.split(edges)
	if err := l.orderLayers(ctx); err != nil {
		return Result{}, err
	}
	l.place()
	return l.result(), nil
}

func (l *layered) addNodes(boxes []Box) map[string]int {
	idx := make(map[string]int, len(boxes))
	for _, b := range boxes {
		if _, dup := idx[b.ID]; dup {
			continue
		}
		n := &lnode{id: b.ID, cross: b.Width, along: b.Height}
		if l.opts.horizontal() {
			n.cross, n.along = b.Height, b.Width
		}
		idx[b.ID] = len(l.nodes)
		l.nodes = append(l.nodes, n)
	}
	return idx
}

// acyclic resolves edges to node indices and reverses the back edges found
// by a depth-first search in input order.
func (l *layered) acyclic(idx map[string]int, in [][2]string) [][2]int {
	var edges [][2]int
	seen := make(map[[2]int]bool)
	out := make([][]int, len(l.nodes)) // edge indices by source
	for _, e := range in {
		u, ok1 := idx[e[0]]
		v, ok2 := idx[e[1]]
		if !ok1 || !ok2 || u == v || seen[[2]int{u, v}] {
			continue
		}
		seen[[2]int{u, v}] = true
		out[u] = append(out[u], len(edges))
		edges = append(edges, [2]int{u, v})
	}

	const (
		white = iota
		gray
		black
	)
	color := make([]int, len(l.nodes))
	reversed := make([]bool, len(edges))
	type frame struct{ node, next int }
	for start := range l.nodes {
		if color[start] != white {
			continue
		}
		color[start] = gray
		stack := []frame{{node: start}}
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next == len(out[top.node]) {
				color[top.node] = black
				stack = stack[:len(stack)-1]
				continue
			}
			ei := out[top.node][top.next]
			top.next++
			v := edges[ei][1]
			switch color[v] {
			case white:
				color[v] = gray
				stack = append(stack, frame{node: v})
			case gray:
				reversed[ei] = true
			}
		}
	}

	result := make([][2]int, 0, len(edges))
	clear(seen)
	for i, e := range edges {
		if reversed[i] {
			e = [2]int{e[1], e[0]}
		}
		if !seen[e] {
			seen[e] = true
			result = append(result, e)
		}
	}
	return result
}

// rank assigns longest-path ranks from the sources, then pulls every
// source down to just above its nearest successor.
func (l *layered) rank(edges [][2]int) {
	n := len(l.nodes)
	indeg := make([]int, n)
	succ := make([][]int, n)
	for _, e := range edges {
		succ[e[0]] = append(succ[e[0]], e[1])
		indeg[e[1]]++
	}
	sources := make([]bool, n)
	queue := make([]int, 0, n)
	for i := range n {
		if indeg[i] == 0 {
			sources[i] = true
			queue = append(queue, i)
		}
	}
	topo := make([]int, 0, n)
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		topo = append(topo, u)
		for _, v := range succ[u] {
			l.nodes[v].rank = max(l.nodes[v].rank, l.nodes[u].rank+1)
			if indeg[v]--; indeg[v] == 0 {
				queue = append(queue, v)
			}
		}
	}

	for _, u := range slices.Backward(topo) {
		if !sources[u] || len(succ[u]) == 0 {
			continue
		}
		lowest := math.MaxInt
		for _, v := range succ[u] {
			lowest = min(lowest, l.nodes[v].rank)
		}
		l.nodes[u].rank = lowest - 1
	}
}

// split replaces edges spanning several ranks with chains through dummy
// nodes and builds the initial layers.
func (l *layered) split(edges [][2]int) {
	link := func(u, v int) {
		l.nodes[u].succs = append(l.nodes[u].succs, v)
		l.nodes[v].preds = append(l.nodes[v].preds, u)
	}
	for _, e := range edges {
		prev := e[0]
		for r := l.nodes[e[0]].rank + 1; r < l.nodes[e[1]].rank; r++ {
			l.nodes = append(l.nodes, &lnode{rank: r})
			d := len(l.nodes) - 1
			link(prev, d)
			prev = d
		}
		link(prev, e[1])
	}

	maxRank := 0
	for _, n := range l.nodes {
		maxRank = max(maxRank, n.rank)
	}
	l.layers = make([][]int, maxRank+1)
	l.order = make([]int, len(l.nodes))
	for i, n := range l.nodes {
		l.order[i] = len(l.layers[n.rank])
		l.layers[n.rank] = append(l.layers[n.rank], i)
	}
}

// orderLayers runs alternating barycentric sweeps and keeps the ordering
// with the fewest crossings, then tries every order of small layers.
func (l *layered) orderLayers(ctx context.Context) error {
	succs := make([][]int, len(l.nodes))
	for i, n := range l.nodes {
		succs[i] = n.succs
	}
	cc := newCrossingCounter(len(l.nodes))
	best := cloneLayers(l.layers)
	bestCrossings := cc.count(l.layers, succs)

	for sweep := 0; sweep < maxSweeps && bestCrossings > 0; sweep++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if sweep%2 == 0 {
			for r := 1; r < len(l.layers); r++ {
				l.sortLayer(r, true)
			}
		} else {
			for r := len(l.layers) - 2; r >= 0; r-- {
				l.sortLayer(r, false)
			}
		}
		if c := cc.count(l.layers, succs); c < bestCrossings {
			bestCrossings = c
			best = cloneLayers(l.layers)
		}
	}

	l.layers = best
	if bestCrossings > 0 {
		if _, err := l.refineLayers(ctx, cc, succs, bestCrossings); err != nil {
			return err
		}
	}
	for _, layer := range l.layers {
		for p, v := range layer {
			l.order[v] = p
		}
	}
	return nil
}

// sortLayer orders layer r by the mean position of each node's neighbours
// in the adjacent layer. Nodes without neighbours keep their position.
func (l *layered) sortLayer(r int, usePreds bool) {
	layer := l.layers[r]
	key := make(map[int]float64, len(layer))
	for _, v := range layer {
		nbrs := l.nodes[v].succs
		if usePreds {
			nbrs = l.nodes[v].preds
		}
		if len(nbrs) == 0 {
			key[v] = float64(l.order[v])
			continue
		}
		sum := 0.0
		for _, u := range nbrs {
			sum += float64(l.order[u])
		}
		key[v] = sum / float64(len(nbrs))
	}
	slices.SortStableFunc(layer, func(a, b int) int { return cmp.Compare(key[a], key[b]) })
	for p, v := range layer {
		l.order[v] = p
	}
}

func cloneLayers(layers [][]int) [][]int {
	out := make([][]int, len(layers))
	for i, layer := range layers {
		out[i] = slices.Clone(layer)
	}
	return out
}

// place assigns cross-axis centres. Layers start packed; each pass then
// moves nodes towards the mean of their neighbours without changing order
// or violating the node separation.
func (l *layered) place() {
	for _, layer := range l.layers {
		next := 0.0
		for _, v := range layer {
			n := l.nodes[v]
			n.pos = next + n.cross/2
			next = n.pos + n.cross/2 + l.opts.NodeSep
		}
	}

	usePreds, useSuccs := true, true
	var side byte
	if len(l.opts.Align) == 2 {
		usePreds = l.opts.Align[0] == 'U'
		useSuccs = l.opts.Align[0] == 'D'
		side = l.opts.Align[1]
	}
	for range placementPasses {
		if usePreds {
			for r := 1; r < len(l.layers); r++ {
				l.alignLayer(l.layers[r], true, side)
			}
		}
		if useSuccs {
			for r := len(l.layers) - 2; r >= 0; r-- {
				l.alignLayer(l.layers[r], false, side)
			}
		}
	}

	left := math.Inf(1)
	for _, n := range l.nodes {
		left = min(left, n.pos-n.cross/2)
	}
	for _, n := range l.nodes {
		n.pos -= left
	}
}

func (l *layered) alignLayer(layer []int, usePreds bool, side byte) {
	k := len(layer)
	if k == 0 {
		return
	}
	desired := make([]float64, k)
	for i, v := range layer {
		n := l.nodes[v]
		nbrs := n.succs
		if usePreds {
			nbrs = n.preds
		}
		desired[i] = n.pos
		if len(nbrs) > 0 {
			sum := 0.0
			for _, u := range nbrs {
				sum += l.nodes[u].pos
			}
			desired[i] = sum / float64(len(nbrs))
		}
	}
	gap := func(i int) float64 {
		return (l.nodes[layer[i]].cross+l.nodes[layer[i+1]].cross)/2 + l.opts.NodeSep
	}

	// Resolving overlaps left to right keeps left nodes on target; right to
	// left keeps right nodes on target. Both results respect every gap, so
	// their mean does too.
	fromLeft := make([]float64, k)
	fromLeft[0] = desired[0]
	for i := 1; i < k; i++ {
		fromLeft[i] = max(desired[i], fromLeft[i-1]+gap(i-1))
	}
	fromRight := make([]float64, k)
	fromRight[k-1] = desired[k-1]
	for i := k - 2; i >= 0; i-- {
		fromRight[i] = min(desired[i], fromRight[i+1]-gap(i))
	}

	for i, v := range layer {
		switch side {
		case 'L':
			l.nodes[v].pos = fromLeft[i]
		case 'R':
			l.nodes[v].pos = fromRight[i]
		default:
			l.nodes[v].pos = (fromLeft[i] + fromRight[i]) / 2
		}
	}
}

// result maps rank and cross positions to x/y for the configured
// direction.
func (l *layered) result() Result {
	centre := make([]float64, len(l.layers))
	acc := 0.0
	for r, layer := range l.layers {
		thick := 0.0
		for _, v := range layer {
			thick = max(thick, l.nodes[v].along)
		}
		centre[r] = acc + thick/2
		acc += thick + l.opts.RankSep
	}
	alongExtent := acc - l.opts.RankSep

	crossExtent := 0.0
	for _, n := range l.nodes {
		crossExtent = max(crossExtent, n.pos+n.cross/2)
	}

	res := Result{Positions: make(map[string]Point)}
	for _, n := range l.nodes {
		if n.id == "" {
			continue
		}
		along := centre[n.rank]
		switch l.opts.RankDir {
		case RankDirBT:
			res.Positions[n.id] = Point{X: n.pos, Y: alongExtent - along}
		case RankDirLR:
			res.Positions[n.id] = Point{X: along, Y: n.pos}
		case RankDirRL:
			res.Positions[n.id] = Point{X: alongExtent - along, Y: n.pos}
		default:
			res.Positions[n.id] = Point{X: n.pos, Y: along}
		}
	}
	if l.opts.horizontal() {
		res.Width, res.Height = alongExtent, crossExtent
	} else {
		res.Width, res.Height = crossExtent, alongExtent
	}
	return res
}

var _ Engine = Layered{}
