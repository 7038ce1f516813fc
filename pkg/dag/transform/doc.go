// Package transform provides structural algorithms over the sequence
// relation of a [dag.Graph].
//
// # Overview
//
// The sequence relation (Prevs/Nexts) describes a partial order of work.
// Editing a task graph by hand tends to accumulate redundant edges: when
// A→B and B→C exist, an explicit A→C adds nothing to the order. This package
// removes such edges and answers the ordering questions the store needs.
//
// # Transitive Reduction
//
// [TransitiveReduction] reduces the component reachable from one node
// through children, successors and predecessors. [ReduceGraph] reduces every
// node of a graph. Both compute, per node, the closure of nodes reachable
// through Nexts in reverse topological order, then remove an edge a→b when
// another direct successor of a already reaches b. Redundancy is judged on
// the edge set as it was before any removal, so the result does not depend
// on iteration order.
//
// # Ordering
//
// [TopoSort] returns a topological order of a node subset and fails with
// [ErrGraphHasCycle] when the subset contains a cycle. [WouldCreateCycle]
// answers whether adding one edge would close a cycle, in O(V+E).
package transform
