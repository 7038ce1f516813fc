package layout

import (
	"context"
	"slices"
)

// maxPermuteLayer is the largest layer whose orders are tried exhaustively.
const maxPermuteLayer = 6

// permute calls fn with every ordering of s, rearranging s in place with
// Heap's algorithm. It stops early when fn returns false.
func permute(s []int, fn func([]int) bool) {
	if !fn(s) {
		return
	}
	state := make([]int, len(s))
	for i := 0; i < len(s); {
		if state[i] < i {
			if i%2 == 0 {
				s[0], s[i] = s[i], s[0]
			} else {
				s[state[i]], s[i] = s[i], s[state[i]]
			}
			if !fn(s) {
				return
			}
			state[i]++
			i = 0
		} else {
			state[i] = 0
			i++
		}
	}
}

// refineLayers tries every order of each small layer, one layer at a time,
// and keeps the order with the fewest crossings against its neighbours. It
// returns the updated total.
func (l *layered) refineLayers(ctx context.Context, cc *crossingCounter, succs [][]int, crossings int) (int, error) {
	local := func(r int) int {
		c := 0
		if r > 0 {
			c += cc.between(l.layers[r-1], l.layers[r], succs)
		}
		if r+1 < len(l.layers) {
			c += cc.between(l.layers[r], l.layers[r+1], succs)
		}
		return c
	}

	for r, layer := range l.layers {
		if crossings == 0 {
			break
		}
		if len(layer) < 2 || len(layer) > maxPermuteLayer {
			continue
		}
		if err := ctx.Err(); err != nil {
			return crossings, err
		}
		before := local(r)
		best, bestLocal := slices.Clone(layer), before
		permute(layer, func(p []int) bool {
			if c := local(r); c < bestLocal {
				bestLocal = c
				copy(best, p)
			}
			return bestLocal > 0
		})
		copy(layer, best)
		crossings += bestLocal - before
	}
	return crossings, nil
}
