package io

import (
	"bytes"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/possible/pkg/dag"
)

func sampleGraph() *dag.Graph {
	prio := 2
	g := dag.NewGraph("release")
	g.Priority = &prio
	g.HideCompleted = true
	for _, id := range []string{"group", "a", "b"} {
		n := dag.NewNode(id)
		n.ID = id
		g.Nodes[id] = n
	}
	g.Link("a", "b")
	g.Nodes["group"].Children = []string{"a"}
	g.Nodes["group"].Expanded = true
	g.Nodes["a"].Parent = "group"
	g.Nodes["b"].Completed = true
	g.Nodes["b"].CompletedAt = 1700000000000
	g.BuildRoots()
	return g
}

func TestDocumentRoundTrip(t *testing.T) {
	g := sampleGraph()
	doc := Document{g.ID: g}

	data, err := Encode(doc)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if !reflect.DeepEqual(doc, got) {
		t.Errorf("round trip changed document:\nwant %+v\ngot  %+v", doc[g.ID], got[g.ID])
	}

	again, _ := Encode(got)
	if !bytes.Equal(data, again) {
		t.Error("Encode() is not stable across a round trip")
	}
}

func TestDecodeEmpty(t *testing.T) {
	for _, in := range []string{"", "  \n", "{}"} {
		doc, err := Decode([]byte(in))
		if err != nil {
			t.Errorf("Decode(%q) error = %v", in, err)
		}
		if doc == nil || len(doc) != 0 {
			t.Errorf("Decode(%q) = %v, want empty document", in, doc)
		}
	}
}

func TestDecodeNormalizes(t *testing.T) {
	doc, err := Decode([]byte(`{"g1": {"name": "x", "nodes": {"a": {"name": "a"}}}, "g2": null}`))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if _, ok := doc["g2"]; ok {
		t.Error("Decode() kept null graph")
	}
	g := doc["g1"]
	if g.ID != "g1" {
		t.Errorf("ID = %q, want g1", g.ID)
	}
	if n := g.Nodes["a"]; n.ID != "a" || n.Nexts == nil {
		t.Errorf("node not normalized: %+v", n)
	}
}

func TestDecodeMalformed(t *testing.T) {
	if _, err := Decode([]byte(`{"g1": [}`)); err == nil {
		t.Error("Decode() of malformed input succeeded")
	}
}

func TestExportImportDocument(t *testing.T) {
	g := sampleGraph()
	path := filepath.Join(t.TempDir(), "graphs.json")

	if err := ExportDocument(Document{g.ID: g}, path); err != nil {
		t.Fatalf("ExportDocument() error = %v", err)
	}
	doc, err := ImportDocument(path)
	if err != nil {
		t.Fatalf("ImportDocument() error = %v", err)
	}
	if doc[g.ID] == nil || len(doc[g.ID].Nodes) != 3 {
		t.Errorf("ImportDocument() = %+v", doc)
	}
}

func TestReadEdgeList(t *testing.T) {
	in := `{
		"name": "launch",
		"nodes": [
			{"id": "p", "name": "phase"},
			{"id": "a", "parent": "p"},
			{"id": "b"}
		],
		"edges": [{"from": "a", "to": "b"}]
	}`

	g, err := ReadEdgeList(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadEdgeList() error = %v", err)
	}
	if g.Name != "launch" || g.NodeCount() != 3 || g.EdgeCount() != 1 {
		t.Errorf("got name=%q nodes=%d edges=%d", g.Name, g.NodeCount(), g.EdgeCount())
	}
	if g.Nodes["a"].Name != "a" {
		t.Errorf("unnamed node Name = %q, want id", g.Nodes["a"].Name)
	}
	if !reflect.DeepEqual(g.RootNodeIDs, []string{"p"}) {
		t.Errorf("RootNodeIDs = %v, want [p]", g.RootNodeIDs)
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestReadEdgeListErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"malformed", `{"nodes": [`},
		{"empty id", `{"nodes": [{"id": ""}]}`},
		{"duplicate", `{"nodes": [{"id": "a"}, {"id": "a"}]}`},
		{"unknown parent", `{"nodes": [{"id": "a", "parent": "x"}]}`},
		{"unknown edge", `{"nodes": [{"id": "a"}], "edges": [{"from": "a", "to": "x"}]}`},
		{"cycle", `{"nodes": [{"id": "a"}, {"id": "b"}], "edges": [{"from": "a", "to": "b"}, {"from": "b", "to": "a"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadEdgeList(strings.NewReader(tt.in)); err == nil {
				t.Error("ReadEdgeList() error = nil, want error")
			}
		})
	}

	_, err := ReadEdgeList(strings.NewReader(tests[5].in))
	if !errors.Is(err, dag.ErrGraphHasCycle) {
		t.Errorf("cycle error = %v, want %v", err, dag.ErrGraphHasCycle)
	}
}

func TestEdgeListRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteEdgeList(sampleGraph(), &buf); err != nil {
		t.Fatalf("WriteEdgeList() error = %v", err)
	}
	g, err := ReadEdgeList(&buf)
	if err != nil {
		t.Fatalf("ReadEdgeList() error = %v", err)
	}
	if g.NodeCount() != 3 || g.EdgeCount() != 1 || g.Nodes["a"].Parent != "group" {
		t.Errorf("round trip lost structure: %+v", g.Nodes)
	}
	if !g.Nodes["b"].Completed {
		t.Error("round trip lost completed flag")
	}
}
