// Package io reads and writes the persisted graph document and a simple
// edge-list exchange format.
//
// # Document Format
//
// The persisted document is a JSON object mapping graph ID to graph. Nodes
// inside a graph are an object keyed by node ID, so every node is
// addressable without scanning:
//
//	{
//	  "3f25...": {
//	    "id": "3f25...",
//	    "name": "Release",
//	    "rootNodeIds": ["a"],
//	    "nodes": {
//	      "a": {"id": "a", "name": "plan", "nexts": ["b"], "prevs": [], "children": []},
//	      "b": {"id": "b", "name": "ship", "nexts": [], "prevs": ["a"], "children": []}
//	    }
//	  }
//	}
//
// The document is always written wholesale. Empty input decodes to an empty
// document rather than an error, so a fresh data directory needs no setup.
//
// # Edge List Format
//
// [ReadEdgeList] and [WriteEdgeList] exchange a single graph as flat arrays,
// which is easier to produce from other tools:
//
//	{
//	  "name": "Release",
//	  "nodes": [{"id": "a", "name": "plan"}, {"id": "b", "parent": "a"}],
//	  "edges": [{"from": "a", "to": "b"}]
//	}
//
// Relations are rebuilt symmetrically from the arrays, so the result always
// passes [dag.Graph.Validate] unless the edges form a cycle.
package io
