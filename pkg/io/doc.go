// Package io provides JSON import and export for simulated genealogies.
//
// # Overview
//
// A finished [lineage.Tree] can be saved and restored so that statistics and
// spectra can be recomputed later without re-running the simulation. Restored
// trees are independent of the file and of the tree they were saved from.
//
// # JSON Format
//
// The document names the root and lists every node of the arena:
//
//	{
//	  "root": 4,
//	  "nodes": [
//	    {"id": 0, "time": 0, "mutations": [0]},
//	    {"id": 1, "time": 0},
//	    {"id": 2, "time": 0},
//	    {"id": 3, "time": 0.41, "left": 0, "right": 1},
//	    {"id": 4, "time": 1.7, "left": 3, "right": 2, "mutations": [1]}
//	  ]
//	}
//
// Node fields:
//   - id: unique integer identifier, referenced by "root", "left" and "right"
//   - time: time at which the lineage was formed (0 for sampled leaves)
//   - left, right: child identifiers, omitted for leaves
//   - mutations: mutation indices that struck this lineage, omitted if none
//
// Identifiers need not be contiguous or ordered; they are remapped to arena
// handles on import.
//
// # Compression
//
// Paths ending in ".lz4" are written and read through an LZ4 frame. Large
// samples produce documents with many nodes and compress well.
//
// # Validation
//
// [ReadJSON] rejects documents whose structure is not a tree: unknown child
// identifiers, nodes shared between parents, unreachable nodes and a missing
// root. Parents younger than their children are accepted and can be listed
// with [lineage.Tree.TimeViolations].
package io
