package store

import (
	"fmt"
	"math/rand"
	"slices"
	"testing"
)

func TestAppendNewNode(t *testing.T) {
	s := newTestStore(t, Config{}, "p", "a")
	s.SetChild(gid, "p", "a", 0)

	id := s.AppendNewNode(gid, "a", Default)
	if id == "" {
		t.Fatal("AppendNewNode() = \"\"")
	}
	n := node(t, s, id)
	if n.Parent != "p" || !slices.Equal(n.Prevs, []string{"a"}) {
		t.Errorf("new node = %+v, want child of p after a", n)
	}
	if got := node(t, s, "p").Children; !slices.Equal(got, []string{"a", id}) {
		t.Errorf("p.Children = %v", got)
	}
	mustValid(t, s)

	if s.AppendNewNode(gid, "missing", Default) != "" {
		t.Error("AppendNewNode() of missing node returned an id")
	}
}

func TestInsertNewNode(t *testing.T) {
	s := newTestStore(t, Config{RejectCycles: true}, "a", "b", "c")
	s.AddEdge(gid, "a", "b", 0)
	s.AddEdge(gid, "a", "c", 0)

	id := s.InsertNewNode(gid, "a", Default)
	if got := node(t, s, "a").Nexts; !slices.Equal(got, []string{id}) {
		t.Errorf("a.Nexts = %v, want [%s]", got, id)
	}
	if got := node(t, s, id).Nexts; !slices.Equal(got, []string{"b", "c"}) {
		t.Errorf("new.Nexts = %v, want [b c]", got)
	}
	for _, succ := range []string{"b", "c"} {
		if got := node(t, s, succ).Prevs; !slices.Equal(got, []string{id}) {
			t.Errorf("%s.Prevs = %v, want [%s]", succ, got, id)
		}
	}
	mustValid(t, s)
}

func TestAddFrontNewNode(t *testing.T) {
	s := newTestStore(t, Config{}, "a", "b")
	s.AddEdge(gid, "a", "b", 0)

	id := s.AddFrontNewNode(gid, "b", Default)
	if got := node(t, s, "b").Prevs; !slices.Equal(got, []string{"a", id}) {
		t.Errorf("b.Prevs = %v", got)
	}
	g, _ := s.Graph(gid)
	if want := []string{"a", id}; !slices.Equal(g.RootNodeIDs, slices.Sorted(slices.Values(want))) {
		t.Errorf("roots = %v", g.RootNodeIDs)
	}
	mustValid(t, s)
}

func TestInsertFrontNewNode(t *testing.T) {
	s := newTestStore(t, Config{}, "a", "b", "c")
	s.AddEdge(gid, "a", "c", 0)
	s.AddEdge(gid, "b", "c", 0)

	id := s.InsertFrontNewNode(gid, "c", Default)
	if got := node(t, s, "c").Prevs; !slices.Equal(got, []string{id}) {
		t.Errorf("c.Prevs = %v, want [%s]", got, id)
	}
	if got := node(t, s, id).Prevs; !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("new.Prevs = %v, want [a b]", got)
	}
	mustValid(t, s)
}

func TestAddNewNodes(t *testing.T) {
	s := newTestStore(t, Config{}, "p")

	free := s.AddNewNode(gid, Default)
	child := s.AddNewChildNode(gid, "p", Default)
	if free == "" || child == "" {
		t.Fatalf("AddNewNode() = %q, AddNewChildNode() = %q", free, child)
	}
	if node(t, s, child).Parent != "p" || node(t, s, free).Parent != "" {
		t.Error("new nodes placed under the wrong parent")
	}
	if s.AddNewChildNode(gid, "missing", Default) != "" || s.AddNewNode("missing", Default) != "" {
		t.Error("composite on missing ids returned an id")
	}
	mustValid(t, s)
}

func TestDeleteNodeKeepEdges(t *testing.T) {
	s := newTestStore(t, Config{}, "a", "x", "b", "c", "d")
	s.AddEdge(gid, "a", "b", 0)
	s.AddEdge(gid, "x", "b", 0)
	s.AddEdge(gid, "b", "c", 0)
	s.AddEdge(gid, "b", "d", 0)
	s.AddEdge(gid, "a", "c", 0)

	if !s.DeleteNodeKeepEdges(gid, "b", Default) {
		t.Fatal("DeleteNodeKeepEdges() = false")
	}
	if got := node(t, s, "a").Nexts; !slices.Equal(got, []string{"c", "d"}) {
		t.Errorf("a.Nexts = %v, want [c d]", got)
	}
	if got := node(t, s, "x").Nexts; !slices.Equal(got, []string{"c", "d"}) {
		t.Errorf("x.Nexts = %v, want [c d]", got)
	}
	if got := node(t, s, "c").Prevs; !slices.Equal(got, []string{"a", "x"}) {
		t.Errorf("c.Prevs = %v, want [a x]", got)
	}
	mustValid(t, s)
}

func TestDeleteEdgeSets(t *testing.T) {
	s := newTestStore(t, Config{}, "a", "b", "c", "d")
	s.AddEdge(gid, "a", "b", 0)
	s.AddEdge(gid, "c", "b", 0)
	s.AddEdge(gid, "b", "d", 0)

	if !s.DeletePrevEdges(gid, "b", Default) {
		t.Error("DeletePrevEdges() = false")
	}
	if s.DeletePrevEdges(gid, "b", Default) {
		t.Error("DeletePrevEdges() with no prevs = true")
	}
	if len(node(t, s, "a").Nexts) != 0 || len(node(t, s, "c").Nexts) != 0 {
		t.Error("predecessors kept their nexts")
	}
	if !s.DeleteNextEdges(gid, "b", Default) || len(node(t, s, "d").Prevs) != 0 {
		t.Error("DeleteNextEdges() did not remove b→d")
	}
	mustValid(t, s)
}

// TestRandomOperationsKeepInvariants applies a long seeded sequence of
// mixed operations and checks every invariant after each step.
func TestRandomOperationsKeepInvariants(t *testing.T) {
	s := newTestStore(t, Config{RejectCycles: true})
	rng := rand.New(rand.NewSource(42))

	pick := func() string {
		g, _ := s.Graph(gid)
		ids := g.NodeIDs()
		if len(ids) == 0 {
			return "missing"
		}
		return ids[rng.Intn(len(ids))]
	}

	for i := range 500 {
		var op string
		switch rng.Intn(12) {
		case 0, 1:
			op = "add"
			s.AddNewNode(gid, Default)
		case 2:
			op = "edge"
			s.AddEdge(gid, pick(), pick(), Default)
		case 3:
			op = "unedge"
			s.RemoveEdge(gid, pick(), pick(), Default)
		case 4:
			op = "child"
			s.SetChild(gid, pick(), pick(), Default)
		case 5:
			op = "remove"
			if rng.Intn(3) == 0 {
				s.RemoveNode(gid, pick(), Default)
			}
		case 6:
			op = "append"
			s.AppendNewNode(gid, pick(), Default)
		case 7:
			op = "insert"
			s.InsertNewNode(gid, pick(), Default)
		case 8:
			op = "front"
			s.InsertFrontNewNode(gid, pick(), Default)
		case 9:
			op = "keep"
			s.DeleteNodeKeepEdges(gid, pick(), Default)
		case 10:
			op = "detach"
			id := pick()
			if n, ok := s.Node(gid, id); ok {
				s.DetachChild(gid, n.Parent, id, Default)
			}
		case 11:
			op = "reduce"
			if _, err := s.Reduce(gid, pick(), Default); err != nil {
				t.Fatalf("step %d: Reduce() error: %v", i, err)
			}
		}
		if err := s.Validate(gid); err != nil {
			t.Fatalf("step %d (%s): %v", i, op, err)
		}
	}

	g, _ := s.Graph(gid)
	roots := slices.Clone(g.RootNodeIDs)
	g.BuildRoots()
	if !slices.Equal(roots, g.RootNodeIDs) {
		t.Errorf("stored roots %v differ from rebuilt %v", roots, g.RootNodeIDs)
	}
}

func ExampleStore_InsertNewNode() {
	s := New(Config{})
	id := s.CreateGraph("release", Default)
	a := s.AddNewNode(id, Default)
	b := s.AppendNewNode(id, a, Default)
	mid := s.InsertNewNode(id, a, Default)

	g, _ := s.Graph(id)
	fmt.Println(g.Nodes[a].Nexts[0] == mid, g.Nodes[mid].Nexts[0] == b)
	fmt.Println(len(g.RootNodeIDs))
	// Output:
	// true true
	// 1
}
