package layout

// crossingCounter counts edge crossings between adjacent layers. It holds
// reusable buffers and is not safe for concurrent use.
type crossingCounter struct {
	ft  []int // Fenwick tree over positions in the lower layer
	pos []int // position of each node in the lower layer
}

// newCrossingCounter creates a counter for a graph with n nodes.
func newCrossingCounter(n int) *crossingCounter {
	return &crossingCounter{
		ft:  make([]int, n+2),
		pos: make([]int, n),
	}
}

// between counts crossings among the edges from upper to lower, where
// succs[u] lists the successors of node u, all of which must be in lower.
// Two edges (u1,v1) and (u2,v2) cross iff pos(u1) < pos(u2) and
// pos(v1) > pos(v2), so the count is an inversion count over target
// positions taken in source order.
func (c *crossingCounter) between(upper, lower []int, succs [][]int) int {
	if len(upper) == 0 || len(lower) < 2 {
		return 0
	}
	for p, v := range lower {
		c.pos[v] = p
	}
	limit := len(lower) + 1
	clear(c.ft[:limit])

	crossings, total := 0, 0
	for _, u := range upper {
		targets := succs[u]
		for _, v := range targets {
			lessOrEqual := 0
			for q := c.pos[v] + 1; q > 0; q -= q & (-q) {
				lessOrEqual += c.ft[q]
			}
			crossings += total - lessOrEqual
		}
		for _, v := range targets {
			total++
			for i := c.pos[v] + 1; i < limit; i += i & (-i) {
				c.ft[i]++
			}
		}
	}
	return crossings
}

// count sums crossings over all consecutive layer pairs.
func (c *crossingCounter) count(layers [][]int, succs [][]int) int {
	total := 0
	for r := 0; r+1 < len(layers); r++ {
		total += c.between(layers[r], layers[r+1], succs)
	}
	return total
}
