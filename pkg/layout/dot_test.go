package layout

import (
	"context"
	"strings"
	"testing"
)

func TestToDOT(t *testing.T) {
	in := Input{
		Nodes:   []Box{{ID: "task-1", Width: 144, Height: 72}, {ID: "task-2", Width: 72, Height: 72}},
		Edges:   [][2]string{{"task-1", "task-2"}, {"task-1", "missing"}},
		Options: DefaultOptions(),
	}
	src, names := toDOT(in)

	for _, want := range []string{
		"rankdir=LR;",
		"n0 [width=2.0000, height=1.0000];",
		"n1 [width=1.0000, height=1.0000];",
		"n0 -> n1;",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("DOT missing %q:\n%s", want, src)
		}
	}
	if strings.Count(src, "->") != 1 {
		t.Errorf("DOT has edges to unknown nodes:\n%s", src)
	}
	if names["n0"] != "task-1" || names["n1"] != "task-2" {
		t.Errorf("names = %v", names)
	}
}

func TestParsePlain(t *testing.T) {
	out := []byte(`graph 1 4 2
node n0 0.5 1.5 1 1 "" solid box black lightgrey
node n1 3 0.5 1 1 "" solid box black lightgrey
edge n0 n1 4 1 1 2 1 2 1 3 1 solid black
stop
`)
	res, err := parsePlain(out, map[string]string{"n0": "a", "n1": "b"})
	if err != nil {
		t.Fatalf("parsePlain() error: %v", err)
	}
	if res.Width != 288 || res.Height != 144 {
		t.Errorf("size = %vx%v, want 288x144", res.Width, res.Height)
	}
	if got, want := res.Positions["a"], (Point{36, 36}); got != want {
		t.Errorf("a = %v, want %v", got, want)
	}
	if got, want := res.Positions["b"], (Point{216, 108}); got != want {
		t.Errorf("b = %v, want %v", got, want)
	}

	if _, err := parsePlain([]byte("graph 1 x\n"), nil); err == nil {
		t.Error("parsePlain(malformed) = nil error")
	}
}

func TestDotLayout(t *testing.T) {
	in := Input{
		Nodes:   boxes(72, "a", "b", "c"),
		Edges:   [][2]string{{"a", "b"}, {"b", "c"}},
		Options: DefaultOptions(),
	}
	res, err := Dot{}.Layout(context.Background(), in)
	if err != nil {
		t.Skipf("graphviz unavailable: %v", err)
	}
	p := res.Positions
	if !(p["a"].X < p["b"].X && p["b"].X < p["c"].X) {
		t.Errorf("LR chain not left to right: %v", p)
	}
}
