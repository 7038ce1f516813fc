package nodelink

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/possible/pkg/dag"
	"github.com/matzehuels/possible/pkg/graph"
)

func sample() graph.Data {
	p := 2
	release := dag.NewNode("release")
	release.Priority = &p
	release.Description = "cut the tag"
	return graph.Data{
		Nodes: []graph.Node{
			{ID: "G", Label: "release", Data: release},
			{ID: "x", Parent: "G", Label: "build"},
			{ID: "y", Parent: "G", Label: "ship", States: []string{graph.StateCompleted}},
			{ID: "z", Label: "announce", States: []string{graph.StateFollowed}},
		},
		Edges: []graph.Edge{
			{ID: "x_y", Source: "x", Target: "y"},
			{ID: "G_z", Source: "G", Target: "z"},
		},
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(sample(), Options{})

	for _, want := range []string{
		"rankdir=LR;",
		"compound=true;",
		`subgraph "cluster_G" {`,
		`label="release";`,
		`"x" [label="build"];`,
		`"y" [label="ship", fillcolor=lightgrey, fontcolor=dimgrey];`,
		`"z" [label="announce", color=orange, penwidth=3];`,
		`"x" -> "y";`,
		`"anchor_G" -> "z" [ltail="cluster_G"];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %q\n%s", want, dot)
		}
	}

	// Children are written inside their cluster.
	open := strings.Index(dot, `subgraph "cluster_G"`)
	child := strings.Index(dot, `"x" [label`)
	if open < 0 || child < open {
		t.Errorf("child not nested in cluster\n%s", dot)
	}
}

func TestToDOTDetailed(t *testing.T) {
	dot := ToDOT(sample(), Options{Detailed: true, RankDir: "TB"})
	if !strings.Contains(dot, "rankdir=TB;") {
		t.Error("RankDir not applied")
	}
	if !strings.Contains(dot, `release\ncut the tag\npriority: 2`) {
		t.Errorf("detailed label missing\n%s", dot)
	}
}

func TestToDOTSkipsDanglingEdges(t *testing.T) {
	d := graph.Data{
		Nodes: []graph.Node{{ID: "a"}},
		Edges: []graph.Edge{{ID: "a_b", Source: "a", Target: "b"}},
	}
	if dot := ToDOT(d, Options{}); strings.Contains(dot, "->") {
		t.Errorf("ToDOT() kept dangling edge\n%s", dot)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" height="20pt" viewBox="0.00 0.00 100.00 200.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 200.00" width="100" height="200"><g/></svg>`
	if out != want {
		t.Errorf("normalizeViewBox() = %s, want %s", out, want)
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), ToDOT(sample(), Options{}))
	if err != nil {
		t.Skipf("graphviz unavailable: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Errorf("RenderSVG() did not return SVG")
	}
}
