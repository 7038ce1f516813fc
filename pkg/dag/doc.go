// Package dag defines the task graph model: nodes that take part in two
// independent relations at once.
//
// # Overview
//
// A [Node] is a task or note. Nodes are connected by a hierarchy
// (Parent/Children), which nests nodes inside group nodes, and by a sequence
// (Prevs/Nexts), which orders work. The two relations are independent: a
// node can have a parent and sequence edges at the same time, and sequence
// edges may cross group boundaries.
//
// A [Graph] is a named collection of nodes keyed by ID. The graph owns its
// nodes and keeps a derived list of roots: nodes with neither a parent nor
// a predecessor present in the graph.
//
// # Invariants
//
// A well-formed graph satisfies:
//
//   - Sequence symmetry: b in a.Nexts if and only if a in b.Prevs.
//   - Hierarchy symmetry: c in p.Children if and only if c.Parent == p.
//   - No self loops in either relation.
//   - No references to nodes outside the graph.
//   - The sequence relation is acyclic.
//
// [Graph.Validate] checks all of them. The mutation engine in the store
// package maintains them on every edit; this package only describes the
// shape and never mutates relations on its own except through
// [Graph.Normalize], which repairs decoded data without changing meaning.
//
// # Identity
//
// [NewNode] and [NewGraph] assign random UUIDs. Timestamps are Unix
// milliseconds so that documents stay readable by other tools.
package dag
