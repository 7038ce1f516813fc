// Package pkg holds the libraries behind possible, a planner that keeps tasks
// and notes as nested dependency graphs.
//
// # Overview
//
// A graph is a set of nodes joined by two relations. Nesting puts nodes
// inside group nodes; sequence edges say which node comes after which. The
// visible part of a graph depends on which groups are expanded and whether
// completed nodes are hidden. The pkg directory is organized into four areas:
//
//  1. Domain - graph structures, transformations and the edit store
//  2. Presentation - projection, layout and rendering
//  3. Persistence - document codecs and storage backends
//  4. Service - configuration, errors, hooks and the HTTP API
//
// # Architecture
//
// The typical data flow:
//
//	edit (CLI, TUI or HTTP)
//	         ↓
//	    [store] package (validated mutations, debounced saves)
//	         ↓                        ↘
//	    [view] package (projection)    [storage] package (file, Redis, MongoDB)
//	         ↓
//	    [layout] package (nested layered or Graphviz layout)
//	         ↓
//	    [render/svg], [render/nodelink] and [render]
//	         ↓
//	    SVG/PDF/PNG/DOT output
//
// # Quick Start
//
// Build a small graph and render it:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/possible/pkg/layout"
//	    "github.com/matzehuels/possible/pkg/render/svg"
//	    "github.com/matzehuels/possible/pkg/store"
//	)
//
//	// 1. Edit through the store
//	st := store.New(store.Config{RejectCycles: true})
//	g := st.CreateGraph("Launch", store.Default)
//	design := st.AddNewNode(g, store.Default)
//	st.AppendNewNode(g, design, store.Default)
//
//	// 2. Project the visible part
//	data, _ := st.Project(g)
//
//	// 3. Compute layout
//	laid, _ := layout.Execute(context.Background(), data, layout.DefaultOptions())
//
//	// 4. Render to SVG
//	out := svg.Render(laid)
//
// # Main Packages
//
// ## Domain
//
// [dag] - Nodes, graphs and the nesting and sequence relations, with
// structural validation.
//
// [dag/transform] - Cycle checks, topological order and transitive reduction
// of sequence edges.
//
// [store] - The single owner of all graphs. Every edit goes through it; it
// rejects invalid edits, keeps root lists current and schedules saves.
//
// ## Presentation
//
// [view] - Projects a graph onto its visible nodes, lifting edges that cross
// collapsed groups.
//
// [layout] - Nested layout: each expanded group is laid out on its own and
// sized to fit. Engines are a built-in layered engine and Graphviz dot.
//
// [render/svg] - Box-and-arrow SVG with light and dark themes.
//
// [render/nodelink] - DOT generation and Graphviz rendering with clusters for
// groups.
//
// [render] - SVG to PDF and PNG conversion.
//
// [graph] - Render-ready node and edge lists shared by layout and renderers.
//
// ## Persistence
//
// [io] - The JSON document codec and the edge-list import format.
//
// [storage] - Backends holding the document: file, Redis, MongoDB and
// memory.
//
// [session] - The remembered graph and node selection.
//
// ## Service
//
// [config] - TOML configuration with defaults and validation.
//
// [errors] - Coded errors shared by the CLI and the HTTP API.
//
// [observability] - Hooks for store, layout and HTTP events.
//
// [api] - The HTTP API.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...            # All tests
//	go test ./pkg/store/...      # Specific package
//	go test -run Example ./...   # Examples only
//
// [dag]: https://pkg.go.dev/github.com/matzehuels/possible/pkg/dag
// [dag/transform]: https://pkg.go.dev/github.com/matzehuels/possible/pkg/dag/transform
// [store]: https://pkg.go.dev/github.com/matzehuels/possible/pkg/store
// [view]: https://pkg.go.dev/github.com/matzehuels/possible/pkg/view
// [layout]: https://pkg.go.dev/github.com/matzehuels/possible/pkg/layout
// [render]: https://pkg.go.dev/github.com/matzehuels/possible/pkg/render
// [render/svg]: https://pkg.go.dev/github.com/matzehuels/possible/pkg/render/svg
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/possible/pkg/render/nodelink
// [graph]: https://pkg.go.dev/github.com/matzehuels/possible/pkg/graph
// [io]: https://pkg.go.dev/github.com/matzehuels/possible/pkg/io
// [storage]: https://pkg.go.dev/github.com/matzehuels/possible/pkg/storage
// [session]: https://pkg.go.dev/github.com/matzehuels/possible/pkg/session
// [config]: https://pkg.go.dev/github.com/matzehuels/possible/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/possible/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/possible/pkg/observability
// [api]: https://pkg.go.dev/github.com/matzehuels/possible/pkg/api
package pkg
