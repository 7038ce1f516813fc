package layout

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/matzehuels/possible/pkg/graph"
)

// rowEngine places nodes left to right and records every call.
type rowEngine struct {
	calls [][]string
}

func (e *rowEngine) Name() string { return "row" }

func (e *rowEngine) Layout(_ context.Context, in Input) (Result, error) {
	res := Result{Positions: make(map[string]Point)}
	var ids []string
	for _, b := range in.Nodes {
		ids = append(ids, b.ID)
		res.Positions[b.ID] = Point{X: res.Width + b.Width/2, Y: b.Height / 2}
		res.Width += b.Width
		res.Height = max(res.Height, b.Height)
	}
	e.calls = append(e.calls, ids)
	return res, nil
}

func nestedData() graph.Data {
	return graph.Data{
		Nodes: []graph.Node{
			{ID: "G"},
			{ID: "x", Parent: "G"},
			{ID: "y", Parent: "G"},
			{ID: "z"},
		},
		Edges: []graph.Edge{
			{ID: "x_y", Source: "x", Target: "y"},
			{ID: "G_z", Source: "G", Target: "z"},
			{ID: "y_z", Source: "y", Target: "z", LayoutSource: "G", LayoutTarget: "z"},
		},
	}
}

func TestExecuteNested(t *testing.T) {
	out, err := Execute(context.Background(), nestedData(), Options{})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	want := map[string][4]float64{ // x, y, width, height
		"G": {165, 60, 330, 120},
		"x": {80, 60, 120, 80},
		"y": {250, 60, 120, 80},
		"z": {440, 60, 120, 80},
	}
	for id, w := range want {
		n := out.Node(id)
		if got := [4]float64{n.X, n.Y, n.Width, n.Height}; got != w {
			t.Errorf("%s = %v, want %v", id, got, w)
		}
	}
	if !out.Node("G").Group || out.Node("z").Group {
		t.Error("Group flag set on the wrong nodes")
	}
	if out.Width != 500 || out.Height != 120 {
		t.Errorf("size = %vx%v, want 500x120", out.Width, out.Height)
	}
}

func TestExecuteContainment(t *testing.T) {
	data := graph.Data{
		Nodes: []graph.Node{
			{ID: "outer"},
			{ID: "mid", Parent: "outer"},
			{ID: "m2", Parent: "outer", Size: [2]float64{40, 200}},
			{ID: "leaf1", Parent: "mid"},
			{ID: "leaf2", Parent: "mid"},
			{ID: "after"},
		},
		Edges: []graph.Edge{
			{ID: "leaf1_leaf2", Source: "leaf1", Target: "leaf2"},
			{ID: "mid_m2", Source: "mid", Target: "m2"},
			{ID: "outer_after", Source: "outer", Target: "after"},
		},
	}
	for _, engine := range []string{EngineLayered} {
		for _, dir := range []string{RankDirTB, RankDirLR, RankDirRL} {
			t.Run(engine+dir, func(t *testing.T) {
				opts := Options{Engine: engine, RankDir: dir, Margin: 15}
				out, err := Execute(context.Background(), data, opts)
				if err != nil {
					t.Fatalf("Execute() error: %v", err)
				}
				for _, n := range out.Nodes {
					if n.Parent == "" {
						continue
					}
					p := out.Node(n.Parent)
					px0, py0, px1, py1 := p.Bounds()
					x0, y0, x1, y1 := n.Bounds()
					const eps = 1e-6
					if x0 < px0+15-eps || y0 < py0+15-eps || x1 > px1-15+eps || y1 > py1-15+eps {
						t.Errorf("%s %v not inside %s %v with margin",
							n.ID, [4]float64{x0, y0, x1, y1}, p.ID, [4]float64{px0, py0, px1, py1})
					}
				}
				if m2 := out.Node("m2"); m2.Width != 40 || m2.Height != 200 {
					t.Errorf("authored size ignored: %vx%v", m2.Width, m2.Height)
				}
			})
		}
	}
}

func TestExecuteDependencyOrder(t *testing.T) {
	data := graph.Data{Nodes: []graph.Node{
		{ID: "r"},
		{ID: "m", Parent: "r"},
		{ID: "leaf", Parent: "m"},
		{ID: "orphan", Parent: "gone"},
	}}
	eng := &rowEngine{}
	opts := DefaultOptions()
	out, err := ExecuteWith(context.Background(), eng, data, opts)
	if err != nil {
		t.Fatalf("ExecuteWith() error: %v", err)
	}

	want := [][]string{{"leaf"}, {"m"}, {"r", "orphan"}}
	if len(eng.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", eng.calls, want)
	}
	for i := range want {
		if !slices.Equal(eng.calls[i], want[i]) {
			t.Errorf("call %d = %v, want %v", i, eng.calls[i], want[i])
		}
	}

	// leaf: 120x80 → m: 160x120 → r: 200x160.
	if r := out.Node("r"); r.Width != 200 || r.Height != 160 {
		t.Errorf("r size = %vx%v, want 200x160", r.Width, r.Height)
	}
	if leaf := out.Node("leaf"); leaf.X != 100 || leaf.Y != 80 {
		t.Errorf("leaf at (%v, %v), want (100, 80)", leaf.X, leaf.Y)
	}
}

func TestExecuteEdgeCases(t *testing.T) {
	ctx := context.Background()

	out, err := Execute(ctx, graph.Data{}, Options{})
	if err != nil || len(out.Nodes) != 0 || out.Width != 0 {
		t.Errorf("Execute(empty) = %+v, %v", out, err)
	}

	cyclic := graph.Data{Nodes: []graph.Node{{ID: "a", Parent: "b"}, {ID: "b", Parent: "a"}}}
	if _, err := Execute(ctx, cyclic, Options{}); !errors.Is(err, ErrNestingCycle) {
		t.Errorf("Execute(nesting cycle) error = %v, want ErrNestingCycle", err)
	}

	partial := graph.Data{Nodes: []graph.Node{{ID: "top"}, {ID: "a", Parent: "b"}, {ID: "b", Parent: "a"}}}
	if _, err := Execute(ctx, partial, Options{}); !errors.Is(err, ErrNestingCycle) {
		t.Errorf("Execute(detached nesting cycle) error = %v, want ErrNestingCycle", err)
	}

	if _, err := Execute(ctx, nestedData(), Options{Engine: "spring"}); err == nil {
		t.Error("Execute() with unknown engine = nil error")
	}
	if _, err := Execute(ctx, nestedData(), Options{RankDir: "XY"}); err == nil {
		t.Error("Execute() with invalid rank dir = nil error")
	}
}

func TestExecuteDoesNotModifyInput(t *testing.T) {
	data := nestedData()
	if _, err := Execute(context.Background(), data, Options{}); err != nil {
		t.Fatal(err)
	}
	if data.Nodes[0].X != 0 || data.Nodes[0].Group {
		t.Error("Execute() modified its input")
	}
}
