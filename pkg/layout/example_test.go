package layout_test

import (
	"context"
	"fmt"

	"github.com/matzehuels/possible/pkg/graph"
	"github.com/matzehuels/possible/pkg/layout"
)

func ExampleExecute() {
	data := graph.Data{
		Nodes: []graph.Node{
			{ID: "release"},
			{ID: "build", Parent: "release"},
			{ID: "ship", Parent: "release"},
		},
		Edges: []graph.Edge{{ID: "build_ship", Source: "build", Target: "ship"}},
	}

	out, err := layout.Execute(context.Background(), data, layout.Options{RankDir: "LR"})
	if err != nil {
		panic(err)
	}
	for _, n := range out.Nodes {
		fmt.Printf("%s (%.0f,%.0f) %.0fx%.0f group=%v\n", n.ID, n.X, n.Y, n.Width, n.Height, n.Group)
	}
	// Output:
	// release (165,60) 330x120 group=true
	// build (80,60) 120x80 group=false
	// ship (250,60) 120x80 group=false
}
