package svg

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/matzehuels/possible/pkg/graph"
)

func sample() graph.Data {
	return graph.Data{
		Nodes: []graph.Node{
			{ID: "x", Parent: "G", Label: "build", X: 80, Y: 60, Width: 120, Height: 80},
			{ID: "G", Label: "release", X: 165, Y: 60, Width: 330, Height: 120, Group: true},
			{ID: "y", Parent: "G", Label: "ship <now>", X: 250, Y: 60, Width: 120, Height: 80,
				States: []string{graph.StateCompleted}},
			{ID: "z", Label: "announce", X: 440, Y: 60, Width: 120, Height: 80,
				States: []string{graph.StateFollowed}},
		},
		Edges: []graph.Edge{
			{ID: "x_y", Source: "x", Target: "y"},
			{ID: "G_z", Source: "G", Target: "z"},
		},
	}
}

func TestRenderIsWellFormed(t *testing.T) {
	out := Render(sample())
	dec := xml.NewDecoder(strings.NewReader(string(out)))
	for {
		_, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			t.Fatalf("invalid XML: %v\n%s", err, out)
		}
	}
}

func TestRenderContents(t *testing.T) {
	s := string(Render(sample()))

	for _, want := range []string{
		`id="group-G"`,
		`id="node-x"`,
		`id="edge-x_y"`,
		`marker-end="url(#arrow)"`,
		"ship &lt;now&gt;",
		`text-decoration="line-through"`,
		`stroke="` + Light.Accent + `"`,
	} {
		if !strings.Contains(s, want) {
			t.Errorf("output missing %q", want)
		}
	}

	// Containers are drawn before the nodes they contain.
	if strings.Index(s, `id="group-G"`) > strings.Index(s, `id="node-x"`) {
		t.Error("group drawn after its child")
	}
}

func TestRenderOptions(t *testing.T) {
	s := string(Render(sample(), WithTheme(Dark), WithoutEdges()))
	if strings.Contains(s, "<line") {
		t.Error("WithoutEdges() still drew edges")
	}
	if !strings.Contains(s, Dark.Background) {
		t.Error("WithTheme(Dark) not applied")
	}
}

func TestRenderEmpty(t *testing.T) {
	s := string(Render(graph.Data{}))
	if !strings.HasPrefix(s, "<svg") || !strings.HasSuffix(s, "</svg>\n") {
		t.Errorf("Render(empty) = %q", s)
	}
}

func TestClip(t *testing.T) {
	n := &graph.Node{X: 0, Y: 0, Width: 100, Height: 40}
	tests := []struct {
		name   string
		tx, ty float64
		wx, wy float64
	}{
		{"right", 200, 0, 50, 0},
		{"below", 0, 100, 0, 20},
		{"inside", 10, 5, 10, 5},
		{"same", 0, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := clip(n, tt.tx, tt.ty)
			if x != tt.wx || y != tt.wy {
				t.Errorf("clip() = (%v, %v), want (%v, %v)", x, y, tt.wx, tt.wy)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 120, 12); got != "short" {
		t.Errorf("truncate() = %q, want %q", got, "short")
	}
	got := truncate(strings.Repeat("a", 100), 60, 12)
	if len(got) >= 100 || !strings.HasSuffix(got, "..") {
		t.Errorf("truncate() = %q", got)
	}
}

func TestFontSizeBounds(t *testing.T) {
	if got := fontSize(1000, 1000, 1); got != fontSizeMax {
		t.Errorf("fontSize(large) = %v, want %v", got, fontSizeMax)
	}
	if got := fontSize(10, 10, 50); got != fontSizeMin {
		t.Errorf("fontSize(small) = %v, want %v", got, fontSizeMin)
	}
}
