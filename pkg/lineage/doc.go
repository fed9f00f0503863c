// Package lineage provides the genealogy data structure produced by a
// coalescent simulation.
//
// # Overview
//
// A genealogy is a binary tree whose leaves are the sampled individuals and
// whose internal nodes are common ancestors. Each node records the simulated
// time at which it was formed and the mutations that struck that lineage.
//
// Nodes are stored in an arena ([Tree]) and addressed by [NodeID] handles.
// Identity is the handle, never the node contents: a fresh sample of n
// individuals is n leaves with identical fields, and every one of them must
// remain a distinct lineage until it coalesces.
//
// # Building a Tree
//
// Add sampled individuals with [Tree.AddLeaf], join active lineages with
// [Tree.Coalesce], and mark the last active lineage with [Tree.SetRoot]:
//
//	t := lineage.NewTree(3)
//	a, b := t.AddLeaf(), t.AddLeaf()
//	root, _ := t.Coalesce(0.7, a, b)
//	_ = t.SetRoot(root)
//
// Mutations are recorded on active lineages with [Tree.RecordMutation]. Once
// a lineage has a parent it is immutable.
//
// # Restored Trees
//
// [FromNodes] rebuilds a tree from an arena snapshot and rejects structural
// damage (dangling handles, shared children, cycles, unreachable nodes).
// Trees whose times decrease towards the root are accepted as-is and can be
// listed with [Tree.TimeViolations]. Nodes with a single child are accepted
// too; traversals descend into whichever child is present.
//
// # Concurrency
//
// A finished tree is read-only. All read methods are safe for concurrent use.
// Building a tree is not.
package lineage
