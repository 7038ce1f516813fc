package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/matzehuels/possible/pkg/dag"
	perrors "github.com/matzehuels/possible/pkg/errors"
	"github.com/matzehuels/possible/pkg/graph"
	pio "github.com/matzehuels/possible/pkg/io"
)

// testEnv isolates config, sessions and data in temp directories.
type testEnv struct {
	t    *testing.T
	dir  string
	data string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	return &testEnv{t: t, dir: dir, data: filepath.Join(dir, "graphs.json")}
}

func (e *testEnv) run(args ...string) error {
	e.t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs(append([]string{"--data", e.data}, args...))
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

func (e *testEnv) mustRun(args ...string) {
	e.t.Helper()
	if err := e.run(args...); err != nil {
		e.t.Fatalf("%s: %v", strings.Join(args, " "), err)
	}
}

// graph loads the only stored graph named name.
func (e *testEnv) graph(name string) *dag.Graph {
	e.t.Helper()
	doc, err := pio.ImportDocument(e.data)
	if err != nil {
		e.t.Fatalf("ImportDocument() error = %v", err)
	}
	for _, g := range doc {
		if g.Name == name {
			return g
		}
	}
	e.t.Fatalf("graph %q not stored", name)
	return nil
}

func nodeNamed(t *testing.T, g *dag.Graph, name string) *dag.Node {
	t.Helper()
	for _, n := range g.Nodes {
		if n.Name == name {
			return n
		}
	}
	t.Fatalf("node %q not found", name)
	return nil
}

func TestGraphWorkflow(t *testing.T) {
	env := newTestEnv(t)

	env.mustRun("graph", "create", "Plan")
	env.mustRun("node", "add", "Design")
	env.mustRun("node", "add", "Build", "--after", "Design")
	env.mustRun("node", "add", "Ship", "--after", "build")
	env.mustRun("edge", "add", "Design", "Ship")

	g := env.graph("Plan")
	if got := g.EdgeCount(); got != 3 {
		t.Fatalf("EdgeCount() = %d, want 3", got)
	}

	err := env.run("edge", "add", "Ship", "Design")
	if code := perrors.GetCode(err); code != perrors.ErrCodeCycle {
		t.Errorf("edge add closing a cycle: code = %q, want %q (err %v)", code, perrors.ErrCodeCycle, err)
	}

	env.mustRun("reduce")
	g = env.graph("Plan")
	if got := g.EdgeCount(); got != 2 {
		t.Errorf("EdgeCount() after reduce = %d, want 2", got)
	}
	design, ship := nodeNamed(t, g, "Design"), nodeNamed(t, g, "Ship")
	for _, next := range design.Nexts {
		if next == ship.ID {
			t.Error("reduce kept the redundant Design → Ship edge")
		}
	}

	env.mustRun("node", "done", "Build")
	if !nodeNamed(t, env.graph("Plan"), "Build").Completed {
		t.Error("node done did not mark Build completed")
	}
	env.mustRun("node", "reopen", "Build")
	if nodeNamed(t, env.graph("Plan"), "Build").Completed {
		t.Error("node reopen left Build completed")
	}

	if err := env.run("edge", "clear", "Build"); perrors.GetCode(err) != perrors.ErrCodeInvalidInput {
		t.Errorf("edge clear without flags: err = %v, want %s", err, perrors.ErrCodeInvalidInput)
	}
	env.mustRun("edge", "clear", "Build", "--prevs", "--nexts")
	if got := env.graph("Plan").EdgeCount(); got != 0 {
		t.Errorf("EdgeCount() after edge clear = %d, want 0", got)
	}
}

func TestNesting(t *testing.T) {
	env := newTestEnv(t)

	env.mustRun("graph", "create", "Trip")
	env.mustRun("node", "add", "Packing")
	env.mustRun("node", "add", "Socks", "--parent", "Packing")
	env.mustRun("node", "add", "Loose")
	env.mustRun("node", "move", "Loose", "--parent", "Packing")

	g := env.graph("Trip")
	packing := nodeNamed(t, g, "Packing")
	if len(packing.Children) != 2 {
		t.Fatalf("Packing children = %v, want 2", packing.Children)
	}
	if len(g.RootNodeIDs) != 1 || g.RootNodeIDs[0] != packing.ID {
		t.Errorf("RootNodeIDs = %v, want [%s]", g.RootNodeIDs, packing.ID)
	}

	env.mustRun("node", "move", "Loose", "--detach")
	if got := nodeNamed(t, env.graph("Trip"), "Loose").Parent; got != "" {
		t.Errorf("Loose parent after detach = %q, want none", got)
	}
}

func TestCommandErrors(t *testing.T) {
	env := newTestEnv(t)

	if err := env.run("view"); perrors.GetCode(err) != perrors.ErrCodeInvalidInput {
		t.Errorf("view without selection: err = %v, want INVALID_INPUT", err)
	}

	env.mustRun("graph", "create", "Plan")
	env.mustRun("node", "add", "A")

	tests := []struct {
		name string
		args []string
		want perrors.Code
	}{
		{"unknown graph", []string{"--graph", "nope", "view"}, perrors.ErrCodeGraphNotFound},
		{"unknown node", []string{"node", "show", "missing"}, perrors.ErrCodeNodeNotFound},
		{"conflicting placement", []string{"node", "add", "B", "--after", "A", "--before", "A"}, perrors.ErrCodeInvalidInput},
		{"duplicate edge target", []string{"edge", "add", "A", "A"}, ""},
		{"bad style", []string{"render", "--style", "fancy", "-o", filepath.Join(env.dir, "x")}, perrors.ErrCodeInvalidInput},
		{"dot needs nodelink", []string{"render", "-f", "dot", "-o", filepath.Join(env.dir, "x")}, perrors.ErrCodeUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := env.run(tt.args...)
			if err == nil {
				t.Fatalf("%v: expected error", tt.args)
			}
			if tt.want != "" && perrors.GetCode(err) != tt.want {
				t.Errorf("%v: code = %q, want %q (err %v)", tt.args, perrors.GetCode(err), tt.want, err)
			}
		})
	}
}

func TestLayoutAndRender(t *testing.T) {
	env := newTestEnv(t)

	env.mustRun("graph", "create", "Plan")
	env.mustRun("node", "add", "A")
	env.mustRun("node", "add", "B", "--after", "A")

	out := filepath.Join(env.dir, "plan.layout.json")
	env.mustRun("layout", "-o", out, "--rank-dir", "TB")
	d, err := graph.ReadDataFile(out)
	if err != nil {
		t.Fatalf("ReadDataFile() error = %v", err)
	}
	if len(d.Nodes) != 2 || len(d.Edges) != 1 {
		t.Fatalf("layout = %d nodes, %d edges, want 2, 1", len(d.Nodes), len(d.Edges))
	}
	a, b := d.Node(nodeNamed(t, env.graph("Plan"), "A").ID), d.Node(nodeNamed(t, env.graph("Plan"), "B").ID)
	if a == nil || b == nil || !(a.Y < b.Y) {
		t.Errorf("top-to-bottom layout should place A above B: %+v %+v", a, b)
	}

	base := filepath.Join(env.dir, "rendered")
	env.mustRun("render", "-o", base, "--theme", "dark")
	data, err := os.ReadFile(base + ".svg")
	if err != nil {
		t.Fatalf("render did not write svg: %v", err)
	}
	if !strings.Contains(string(data), "<svg") {
		t.Errorf("svg output missing root element")
	}

	env.mustRun("render", "--from", out)
	if _, err := os.Stat(filepath.Join(env.dir, "plan.svg")); err != nil {
		t.Errorf("render --from did not write next to the layout: %v", err)
	}
}

func TestConfigInit(t *testing.T) {
	env := newTestEnv(t)
	path := filepath.Join(env.dir, "possible.toml")

	env.mustRun("--config", path, "config", "init")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config init did not write %s: %v", path, err)
	}
	err := env.run("--config", path, "config", "init")
	if code := perrors.GetCode(err); code != perrors.ErrCodeConflict {
		t.Errorf("second init code = %q, want %q", code, perrors.ErrCodeConflict)
	}
	env.mustRun("--config", path, "config", "init", "--force")
	env.mustRun("--config", path, "graph", "list")
}

func TestResolveNode(t *testing.T) {
	g := dag.NewGraph("g")
	for _, n := range []*dag.Node{
		{ID: "abcd1234", Name: "Write"},
		{ID: "abcd5678", Name: "Review"},
		{ID: "ffff0000", Name: "review"},
	} {
		g.Nodes[n.ID] = n
	}

	tests := []struct {
		ref      string
		want     string
		wantCode perrors.Code
	}{
		{"abcd1234", "abcd1234", ""},
		{"abcd1", "abcd1234", ""},
		{"write", "abcd1234", ""},
		{"abcd", "", perrors.ErrCodeConflict},
		{"review", "", perrors.ErrCodeConflict},
		{"abc", "", perrors.ErrCodeNodeNotFound},
		{"nothing", "", perrors.ErrCodeNodeNotFound},
	}
	for _, tt := range tests {
		got, err := resolveNode(g, tt.ref)
		if tt.wantCode != "" {
			if code := perrors.GetCode(err); code != tt.wantCode {
				t.Errorf("resolveNode(%q) code = %q, want %q", tt.ref, code, tt.wantCode)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("resolveNode(%q) = %q, %v, want %q", tt.ref, got, err, tt.want)
		}
	}
}

func TestCompletion(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("graph", "create", "Plan")
	env.mustRun("graph", "create", "Other")
	env.mustRun("node", "add", "Alpha")
	env.mustRun("node", "add", "Beta")

	c := New(io.Discard, LogInfo)
	c.storagePath = env.data
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())

	graphs, dir := c.completeGraphs(cmd, nil, "pl")
	if dir != cobra.ShellCompDirectiveNoFileComp || len(graphs) != 1 || !strings.HasPrefix(graphs[0], "Plan\t") {
		t.Errorf("completeGraphs(pl) = %v, %v, want [Plan]", graphs, dir)
	}
	if got, _ := c.completeGraphArg(cmd, []string{"Plan"}, ""); len(got) != 0 {
		t.Errorf("completeGraphArg() after first arg = %v, want none", got)
	}

	nodes, _ := c.completeNodes(2)(cmd, nil, "al")
	if len(nodes) != 1 || !strings.HasPrefix(nodes[0], "Alpha\t") {
		t.Errorf("completeNodes(al) = %v, want [Alpha]", nodes)
	}
	if got, _ := c.completeNodes(2)(cmd, []string{"Alpha", "Beta"}, ""); len(got) != 0 {
		t.Errorf("completeNodes() past the last argument = %v, want none", got)
	}
	if got, _ := c.completeNodes(-1)(cmd, []string{"x", "y", "z"}, ""); len(got) != 2 {
		t.Errorf("completeNodes(-1) = %v, want both nodes", got)
	}
}
