// Package layout assigns coordinates to projected graph data.
//
// # Nested Layout
//
// [Execute] lays out a [graph.Data] whose nodes may be nested through their
// Parent field. Nodes sharing a parent form one sub-graph. Sub-graphs are
// laid out bottom-up: before a sub-graph runs, every sub-graph nested in one
// of its nodes has been laid out, so that node (the proxy) already knows its
// size. A sub-graph's size is its layout extent plus a margin on each side.
//
// A second, top-down pass places every sub-graph inside its proxy. The root
// sub-graph sits at the origin; a nested one is offset to its proxy's
// top-left corner plus the margin. Proxy nodes come out with Group set and
// Width/Height equal to their sub-graph's size, so renderers can draw them
// as containers.
//
// Edges only take part in the layout of the sub-graph holding both of their
// layout endpoints (see [graph.Edge.Endpoints]). Cross-level edges are
// expected to arrive already lifted by the view projection.
//
// # Engines
//
// Each sub-graph is positioned by an [Engine]:
//
//   - "layered": a native layered (Sugiyama-style) layout with cycle
//     breaking, longest-path ranking, barycentric crossing reduction and
//     neighbour-aligned placement
//   - "dot": Graphviz dot through github.com/goccy/go-graphviz
//
// Both read direction, alignment and spacing from [Options].
//
// # Asynchronous Use
//
// Layout is CPU bound and not re-entrant. [Runner] serializes requests with
// a pending flag and drops results that were invalidated while in flight.
package layout
