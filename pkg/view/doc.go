// Package view projects a task graph into render-ready [graph.Data].
//
// # Visibility
//
// Two independent rules decide whether a node is shown:
//
//   - Collapse: a node is hidden when any hierarchy ancestor is not
//     expanded. A collapsed group itself stays visible.
//   - Completed filter: only when the graph has HideCompleted set, a
//     completed node is hidden when every predecessor and every child is
//     hidden or absent. A completed node that still connects visible work
//     stays on screen.
//
// The completed filter is evaluated bottom-up before anything is emitted,
// because whether a node can be hidden depends on its neighbours.
//
// # Traversal
//
// [Project] walks from the graph's roots over children and successors. Hidden
// nodes are walked through but not emitted, so visible work behind a hidden
// node is still reached. Edges are emitted only when both endpoints are
// visible.
//
// Edges between different sub-graphs carry lifted layout endpoints, see
// [graph.Edge].
package view
