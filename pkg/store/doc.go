// Package store is the mutation engine for task graphs.
//
// # Overview
//
// A [Store] owns every [dag.Graph] in memory and is the only code that
// edits them. Each operation names its graph and nodes by ID and leaves the
// model invariants intact: sequence and hierarchy relations stay
// symmetric, no self loops appear and no reference outlives the node it
// names.
//
// Operations never fail on missing IDs. They return false and change
// nothing, and callers that need to know whether an edit happened check the
// result. Structural edits the store refuses, such as attaching a child
// that already has sequence edges, are reported the same way.
//
// # Options
//
// Every mutation takes an [Options] bit set selecting follow-up work:
//
//   - [BuildRoots] recomputes the graph's root list
//   - [Touch] stamps the graph's UpdatedAt
//   - [Persist] schedules a debounced save through the storage backend
//
// Batched edits can pass zero options and rebuild roots once at the end.
// Composite helpers such as [Store.InsertNewNode] apply their options once,
// after all of their primitive steps.
//
// # Persistence
//
// [Store.Load] and [Store.Save] move the whole document through a
// [storage.Backend]. Persisted edits coalesce: every edit inside the
// debounce window restarts the timer and only one save runs. A crash inside
// the window loses those edits. A failed save is logged, reported through
// observability hooks and retried on the next persisted edit; the in-memory
// model is never rolled back.
//
// # Concurrency
//
// Public methods are serialized by a mutex. Mutations never interleave, and
// the debounce timer reads a consistent snapshot when it encodes the
// document.
package store
