// Package graph defines the render-ready form of a task graph.
//
// # Overview
//
// [Data] is a flat list of nodes and edges produced by the view package
// from a [dag.Graph] and filled in with coordinates by the layout package.
// Renderers and the API consume it without knowing anything about the
// hierarchy or sequence relations it was derived from.
//
// Nodes keep the hierarchy only as a Parent reference: the layout engine
// groups nodes by Parent into nested sub-graphs, and a node that is the
// parent of other visible nodes is drawn as a group box sized to contain
// them.
//
// # Coordinates
//
// X and Y are absolute centre coordinates. Width and Height are the drawn
// size. Data.Width and Data.Height bound the whole drawing, with the origin
// at the top-left corner.
//
// # Edges
//
// Edge IDs are "{source}_{target}". When an edge connects nodes living in
// different sub-graphs, LayoutSource and LayoutTarget name the pair of
// ancestors that share a parent, which is the edge the layout engine can
// actually route. Renderers draw Source→Target.
//
// # Serialization
//
// [MarshalData], [UnmarshalData], [WriteDataFile] and [ReadDataFile] use
// indented JSON so that layouts can be cached and diffed.
//
// [dag.Graph]: github.com/matzehuels/possible/pkg/dag.Graph
package graph
