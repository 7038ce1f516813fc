package layout

import (
	"context"
	"fmt"
	"math"
	"testing"
)

func testOptions(dir string) Options {
	o := DefaultOptions()
	o.RankDir = dir
	o.RankSep = 20
	o.NodeSep = 5
	return o
}

func boxes(size float64, ids ...string) []Box {
	out := make([]Box, len(ids))
	for i, id := range ids {
		out[i] = Box{ID: id, Width: size, Height: size}
	}
	return out
}

func runLayered(t *testing.T, in Input) Result {
	t.Helper()
	res, err := Layered{}.Layout(context.Background(), in)
	if err != nil {
		t.Fatalf("Layout() error: %v", err)
	}
	return res
}

func TestLayeredChainDirections(t *testing.T) {
	edges := [][2]string{{"a", "b"}, {"b", "c"}}
	tests := []struct {
		dir  string
		want map[string]Point
		w, h float64
	}{
		{RankDirTB, map[string]Point{"a": {5, 5}, "b": {5, 35}, "c": {5, 65}}, 10, 70},
		{RankDirBT, map[string]Point{"a": {5, 65}, "b": {5, 35}, "c": {5, 5}}, 10, 70},
		{RankDirLR, map[string]Point{"a": {5, 5}, "b": {35, 5}, "c": {65, 5}}, 70, 10},
		{RankDirRL, map[string]Point{"a": {65, 5}, "b": {35, 5}, "c": {5, 5}}, 70, 10},
	}
	for _, tt := range tests {
		t.Run(tt.dir, func(t *testing.T) {
			res := runLayered(t, Input{Nodes: boxes(10, "a", "b", "c"), Edges: edges, Options: testOptions(tt.dir)})
			for id, want := range tt.want {
				if got := res.Positions[id]; got != want {
					t.Errorf("%s = %v, want %v", id, got, want)
				}
			}
			if res.Width != tt.w || res.Height != tt.h {
				t.Errorf("size = %vx%v, want %vx%v", res.Width, res.Height, tt.w, tt.h)
			}
		})
	}
}

func TestLayeredRemovesCrossing(t *testing.T) {
	in := Input{
		Nodes:   boxes(10, "a", "b", "c", "d"),
		Edges:   [][2]string{{"a", "d"}, {"b", "c"}},
		Options: testOptions(RankDirTB),
	}
	p := runLayered(t, in).Positions
	if (p["a"].X-p["b"].X)*(p["d"].X-p["c"].X) <= 0 {
		t.Errorf("edges a→d and b→c cross: %v", p)
	}
}

func TestLayeredEmpty(t *testing.T) {
	res := runLayered(t, Input{Options: testOptions(RankDirTB)})
	if len(res.Positions) != 0 || res.Width != 0 || res.Height != 0 {
		t.Errorf("Layout(empty) = %+v", res)
	}
}

func TestLayeredCycleAndIgnoredEdges(t *testing.T) {
	in := Input{
		Nodes:   boxes(10, "a", "b", "a"),
		Edges:   [][2]string{{"a", "b"}, {"b", "a"}, {"a", "a"}, {"a", "missing"}},
		Options: testOptions(RankDirTB),
	}
	res := runLayered(t, in)
	if len(res.Positions) != 2 {
		t.Fatalf("positions = %v, want 2 nodes", res.Positions)
	}
	if res.Positions["a"].Y == res.Positions["b"].Y {
		t.Error("nodes of a two-cycle share a rank")
	}
}

// TestLayeredProperties checks non-overlap, bounds and edge direction on
// a graph with long edges and mixed node sizes.
func TestLayeredProperties(t *testing.T) {
	var nodes []Box
	for i := range 12 {
		nodes = append(nodes, Box{ID: fmt.Sprint(i), Width: 20 + float64(i%3)*15, Height: 10 + float64(i%4)*10})
	}
	var edges [][2]string
	for i := range 12 {
		for _, j := range []int{i + 1, i + 3, i * 2} {
			if j < 12 && j != i {
				edges = append(edges, [2]string{fmt.Sprint(i), fmt.Sprint(j)})
			}
		}
	}

	for _, dir := range []string{RankDirTB, RankDirLR} {
		for _, align := range []string{"", "UL", "DR"} {
			t.Run(dir+align, func(t *testing.T) {
				opts := testOptions(dir)
				opts.Align = align
				res := runLayered(t, Input{Nodes: nodes, Edges: edges, Options: opts})
				checkLayout(t, nodes, res)
				for _, e := range edges {
					s, d := res.Positions[e[0]], res.Positions[e[1]]
					if dir == RankDirTB && s.Y >= d.Y || dir == RankDirLR && s.X >= d.X {
						t.Errorf("edge %v points backwards: %v → %v", e, s, d)
					}
				}
			})
		}
	}
}

func checkLayout(t *testing.T, nodes []Box, res Result) {
	t.Helper()
	const eps = 1e-9
	type rect struct{ x0, y0, x1, y1 float64 }
	rects := make(map[string]rect)
	for _, b := range nodes {
		p, ok := res.Positions[b.ID]
		if !ok {
			t.Fatalf("node %s has no position", b.ID)
		}
		r := rect{p.X - b.Width/2, p.Y - b.Height/2, p.X + b.Width/2, p.Y + b.Height/2}
		if r.x0 < -eps || r.y0 < -eps || r.x1 > res.Width+eps || r.y1 > res.Height+eps {
			t.Errorf("node %s %v outside %vx%v", b.ID, r, res.Width, res.Height)
		}
		rects[b.ID] = r
	}
	for a, ra := range rects {
		for b, rb := range rects {
			if a >= b {
				continue
			}
			ox := math.Min(ra.x1, rb.x1) - math.Max(ra.x0, rb.x0)
			oy := math.Min(ra.y1, rb.y1) - math.Max(ra.y0, rb.y0)
			if ox > eps && oy > eps {
				t.Errorf("nodes %s and %s overlap", a, b)
			}
		}
	}
}

func TestLayeredCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	in := Input{
		Nodes:   boxes(10, "a", "b", "c", "d"),
		Edges:   [][2]string{{"a", "d"}, {"b", "c"}},
		Options: testOptions(RankDirTB),
	}
	if _, err := (Layered{}).Layout(ctx, in); err == nil {
		t.Error("Layout() with cancelled context = nil error")
	}
}
