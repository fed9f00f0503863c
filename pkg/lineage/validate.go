package lineage

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyTree is returned by [Tree.Validate] when the tree has no nodes.
	ErrEmptyTree = errors.New("tree has no nodes")

	// ErrNoRoot is returned by [Tree.Validate] when the root handle is unset or out of range.
	ErrNoRoot = errors.New("tree has no valid root")

	// ErrSharedChild is returned by [Tree.Validate] when a node is owned by
	// more than one parent, or is listed twice by the same parent.
	ErrSharedChild = errors.New("node owned by more than one parent")

	// ErrRootHasParent is returned by [Tree.Validate] when the root is a child
	// of another node.
	ErrRootHasParent = errors.New("root is owned by another node")

	// ErrUnreachable is returned by [Tree.Validate] when some nodes are not
	// descendants of the root.
	ErrUnreachable = errors.New("node not reachable from root")
)

// FromNodes rebuilds a tree from an arena snapshot, such as one decoded from
// disk. Parent links are recomputed from the child handles; the Parent field
// of the input is ignored. The result is validated structurally with
// [Tree.Validate]. Time-order violations are accepted, see [Tree.TimeViolations].
func FromNodes(nodes []Node, root NodeID) (*Tree, error) {
	t := &Tree{nodes: make([]Node, len(nodes)), root: root}
	for i, n := range nodes {
		n.Parent = None
		t.nodes[i] = n
	}
	for i, n := range nodes {
		for _, c := range [2]NodeID{n.Left, n.Right} {
			if c == None {
				continue
			}
			if !t.valid(c) {
				return nil, fmt.Errorf("node %d child %d: %w", i, c, ErrUnknownNode)
			}
			if t.nodes[c].Parent != None {
				return nil, fmt.Errorf("node %d: %w", c, ErrSharedChild)
			}
			t.nodes[c].Parent = NodeID(i)
		}
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks the structural invariants of a finished tree:
//   - there is at least one node and the root handle is in range
//   - every child handle addresses a node
//   - every node has at most one parent and the root has none
//   - every node is reachable from the root
//
// A tree that passes Validate can be traversed from its root without
// revisiting nodes. Validate does not check time ordering.
func (t *Tree) Validate() error {
	if t.Len() == 0 {
		return ErrEmptyTree
	}
	if !t.valid(t.root) {
		return fmt.Errorf("root %d: %w", t.root, ErrNoRoot)
	}

	owners := make([]int, len(t.nodes))
	for i, n := range t.nodes {
		for _, c := range [2]NodeID{n.Left, n.Right} {
			if c == None {
				continue
			}
			if !t.valid(c) {
				return fmt.Errorf("node %d child %d: %w", i, c, ErrUnknownNode)
			}
			owners[c]++
			if owners[c] > 1 {
				return fmt.Errorf("node %d: %w", c, ErrSharedChild)
			}
		}
	}
	if owners[t.root] != 0 {
		return fmt.Errorf("root %d: %w", t.root, ErrRootHasParent)
	}

	seen := 0
	stack := []NodeID{t.root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		seen++
		n := t.nodes[id]
		if n.Left != None {
			stack = append(stack, n.Left)
		}
		if n.Right != None {
			stack = append(stack, n.Right)
		}
	}
	if seen != len(t.nodes) {
		return fmt.Errorf("%d of %d nodes: %w", len(t.nodes)-seen, len(t.nodes), ErrUnreachable)
	}
	return nil
}

// TimeViolations returns the handles of nodes whose time is smaller than the
// time of one of their children, in handle order. Simulated trees never have
// violations; restored trees may.
func (t *Tree) TimeViolations() []NodeID {
	var out []NodeID
	for i, n := range t.all() {
		for _, c := range [2]NodeID{n.Left, n.Right} {
			if t.valid(c) && n.Time < t.nodes[c].Time {
				out = append(out, NodeID(i))
				break
			}
		}
	}
	return out
}

// Equal reports whether the trees rooted at a.Root() and b.Root() have the
// same shape, times and mutation sets. Arena order is irrelevant; children
// are compared left to right.
func Equal(a, b *Tree) bool {
	return equalAt(a, a.Root(), b, b.Root())
}

func equalAt(a *Tree, x NodeID, b *Tree, y NodeID) bool {
	if x == None || y == None {
		return x == None && y == None
	}
	nx, okx := a.Node(x)
	ny, oky := b.Node(y)
	if !okx || !oky {
		return okx == oky
	}
	if nx.Time != ny.Time || !nx.Mutations.Equal(ny.Mutations) {
		return false
	}
	return equalAt(a, nx.Left, b, ny.Left) && equalAt(a, nx.Right, b, ny.Right)
}
