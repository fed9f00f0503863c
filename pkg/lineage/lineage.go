package lineage

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownNode is returned when a handle does not address a node in the tree.
	ErrUnknownNode = errors.New("unknown node")

	// ErrSameLineage is returned by [Tree.Coalesce] when both children are the same handle.
	ErrSameLineage = errors.New("cannot coalesce a lineage with itself")

	// ErrAlreadyCoalesced is returned by [Tree.Coalesce] when a child already
	// has a parent. Children are owned exclusively by one parent.
	ErrAlreadyCoalesced = errors.New("lineage already coalesced")

	// ErrImmutable is returned by [Tree.RecordMutation] for lineages that are
	// already attached to a parent.
	ErrImmutable = errors.New("lineage is immutable once coalesced")

	// ErrTimeOrder is returned by [Tree.Coalesce] when the parent would be
	// younger than one of its children.
	ErrTimeOrder = errors.New("parent time precedes child time")
)

// NodeID is a handle to a node stored in a [Tree]. Handles are the identity
// of a lineage: two leaves with identical fields are still distinct lineages.
type NodeID int

// None marks an absent child or parent.
const None NodeID = -1

// Node is one ancestral lineage. Leaves are original samples (Time 0, no
// children); internal nodes were formed by coalescence of Left and Right.
type Node struct {
	Time      float64     // Simulation clock value when the lineage was formed
	Left      NodeID      // Left child, or None
	Right     NodeID      // Right child, or None
	Parent    NodeID      // Owning parent, or None while active / for the root
	Mutations MutationSet // Mutations that struck this lineage (not inherited ones)
}

// IsLeaf reports whether the node has no children.
// A node with exactly one child is not a leaf; it only occurs in malformed trees.
func (n Node) IsLeaf() bool { return n.Left == None && n.Right == None }

// String implements fmt.Stringer.
func (n Node) String() string {
	return fmt.Sprintf("lineage coalescing at %g", n.Time)
}

// Tree is an arena of lineage nodes. During simulation it grows as leaves are
// added and lineages coalesce; once the root is set, it is read-only and safe
// for concurrent readers.
//
// The zero value is not usable; create trees with [NewTree].
type Tree struct {
	nodes []Node
	root  NodeID
}

// NewTree returns an empty tree with room for capacity nodes.
// A sample of n individuals produces 2n-1 nodes.
func NewTree(capacity int) *Tree {
	if capacity < 0 {
		capacity = 0
	}
	return &Tree{nodes: make([]Node, 0, capacity), root: None}
}

// AddLeaf appends a sampled individual (time 0, no children) and returns its handle.
func (t *Tree) AddLeaf() NodeID {
	return t.add(Node{Time: 0, Left: None, Right: None, Parent: None})
}

// Coalesce creates the common ancestor of left and right at the given time
// and returns its handle. Both children must be active (parentless) lineages.
func (t *Tree) Coalesce(time float64, left, right NodeID) (NodeID, error) {
	if !t.valid(left) {
		return None, fmt.Errorf("left %d: %w", left, ErrUnknownNode)
	}
	if !t.valid(right) {
		return None, fmt.Errorf("right %d: %w", right, ErrUnknownNode)
	}
	if left == right {
		return None, ErrSameLineage
	}
	for _, c := range [2]NodeID{left, right} {
		child := &t.nodes[c]
		if child.Parent != None {
			return None, fmt.Errorf("node %d: %w", c, ErrAlreadyCoalesced)
		}
		if time < child.Time {
			return None, fmt.Errorf("time %g below child %d at %g: %w", time, c, child.Time, ErrTimeOrder)
		}
	}

	id := t.add(Node{Time: time, Left: left, Right: right, Parent: None})
	t.nodes[left].Parent = id
	t.nodes[right].Parent = id
	return id, nil
}

// RecordMutation marks the lineage id as carrying mutation index.
// Recording the same index twice is a no-op. Only active lineages (without
// a parent) can be mutated.
func (t *Tree) RecordMutation(id NodeID, index int) error {
	if !t.valid(id) {
		return fmt.Errorf("node %d: %w", id, ErrUnknownNode)
	}
	n := &t.nodes[id]
	if n.Parent != None {
		return fmt.Errorf("node %d: %w", id, ErrImmutable)
	}
	if n.Mutations == nil {
		n.Mutations = MutationSet{}
	}
	n.Mutations.Add(index)
	return nil
}

// SetRoot marks id as the root of the finished tree.
func (t *Tree) SetRoot(id NodeID) error {
	if !t.valid(id) {
		return fmt.Errorf("root %d: %w", id, ErrUnknownNode)
	}
	t.root = id
	return nil
}

// Root returns the root handle, or None if no root has been set.
func (t *Tree) Root() NodeID {
	if t == nil || len(t.nodes) == 0 {
		return None
	}
	return t.root
}

// Node returns the node addressed by id.
func (t *Tree) Node(id NodeID) (Node, bool) {
	if !t.valid(id) {
		return Node{}, false
	}
	return t.nodes[id], true
}

// Time returns the formation time of id, or 0 for unknown handles.
func (t *Tree) Time(id NodeID) float64 {
	if !t.valid(id) {
		return 0
	}
	return t.nodes[id].Time
}

// Children returns the child handles of id. Unknown handles have no children.
func (t *Tree) Children(id NodeID) (left, right NodeID) {
	if !t.valid(id) {
		return None, None
	}
	n := t.nodes[id]
	return n.Left, n.Right
}

// IsLeaf reports whether id addresses a node without children.
func (t *Tree) IsLeaf(id NodeID) bool {
	if !t.valid(id) {
		return false
	}
	return t.nodes[id].IsLeaf()
}

// Len returns the number of nodes in the arena.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.nodes)
}

// LeafCount returns the number of leaf nodes in the arena.
func (t *Tree) LeafCount() int {
	count := 0
	for _, n := range t.all() {
		if n.IsLeaf() {
			count++
		}
	}
	return count
}

// InternalCount returns the number of non-leaf nodes in the arena.
func (t *Tree) InternalCount() int {
	return t.Len() - t.LeafCount()
}

// MutationCount returns the number of mutation indices 0..k-1 needed to
// cover every recorded mutation: one more than the largest index, or 0.
func (t *Tree) MutationCount() int {
	count := 0
	for _, n := range t.all() {
		for i := range n.Mutations {
			if i+1 > count {
				count = i + 1
			}
		}
	}
	return count
}

// Nodes returns a copy of the arena in handle order.
func (t *Tree) Nodes() []Node {
	out := make([]Node, t.Len())
	copy(out, t.all())
	return out
}

func (t *Tree) all() []Node {
	if t == nil {
		return nil
	}
	return t.nodes
}

func (t *Tree) add(n Node) NodeID {
	t.nodes = append(t.nodes, n)
	return NodeID(len(t.nodes) - 1)
}

func (t *Tree) valid(id NodeID) bool {
	return t != nil && id >= 0 && int(id) < len(t.nodes)
}
