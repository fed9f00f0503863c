package treestats

import (
	"github.com/matzehuels/coalsim/pkg/lineage"
)

// BranchLength returns the total branch length of the subtree rooted at id:
// for each present child, the time difference to the child plus the child's
// own branch length. Leaves have length 0.
func BranchLength(t *lineage.Tree, id lineage.NodeID) float64 {
	n, ok := t.Node(id)
	if !ok || n.IsLeaf() {
		return 0
	}
	total := 0.0
	for _, c := range [2]lineage.NodeID{n.Left, n.Right} {
		if c == lineage.None {
			continue
		}
		total += (n.Time - t.Time(c)) + BranchLength(t, c)
	}
	return total
}

// Leaves returns the leaf handles below id in left-to-right order.
func Leaves(t *lineage.Tree, id lineage.NodeID) []lineage.NodeID {
	var out []lineage.NodeID
	collectLeaves(t, id, &out)
	return out
}

func collectLeaves(t *lineage.Tree, id lineage.NodeID, out *[]lineage.NodeID) {
	n, ok := t.Node(id)
	if !ok {
		return
	}
	if n.IsLeaf() {
		*out = append(*out, id)
		return
	}
	if n.Left != lineage.None {
		collectLeaves(t, n.Left, out)
	}
	if n.Right != lineage.None {
		collectLeaves(t, n.Right, out)
	}
}

// PairwiseTimes returns T_ij for every unordered pair of leaves below id.
//
// A node with two children is the MRCA of every pair with one leaf on each
// side, so it contributes |leaves(left)|·|leaves(right)| copies of its time,
// followed by the times from the left subtree and then the right subtree.
// Nodes with a single child contribute nothing themselves.
func PairwiseTimes(t *lineage.Tree, id lineage.NodeID) []float64 {
	counts := leafCounts(t, id)
	var out []float64
	collectPairwise(t, id, counts, &out)
	return out
}

func collectPairwise(t *lineage.Tree, id lineage.NodeID, counts map[lineage.NodeID]int, out *[]float64) {
	n, ok := t.Node(id)
	if !ok || n.IsLeaf() {
		return
	}
	switch {
	case n.Left == lineage.None:
		collectPairwise(t, n.Right, counts, out)
	case n.Right == lineage.None:
		collectPairwise(t, n.Left, counts, out)
	default:
		pairs := counts[n.Left] * counts[n.Right]
		for i := 0; i < pairs; i++ {
			*out = append(*out, n.Time)
		}
		collectPairwise(t, n.Left, counts, out)
		collectPairwise(t, n.Right, counts, out)
	}
}

// leafCounts returns the number of leaves below every node of the subtree
// rooted at id, computed in one post-order pass.
func leafCounts(t *lineage.Tree, id lineage.NodeID) map[lineage.NodeID]int {
	counts := make(map[lineage.NodeID]int)
	var visit func(lineage.NodeID) int
	visit = func(id lineage.NodeID) int {
		n, ok := t.Node(id)
		if !ok {
			return 0
		}
		c := 1
		if !n.IsLeaf() {
			c = 0
			if n.Left != lineage.None {
				c += visit(n.Left)
			}
			if n.Right != lineage.None {
				c += visit(n.Right)
			}
		}
		counts[id] = c
		return c
	}
	visit(id)
	return counts
}

// MRCA returns the time of the root, the most recent common ancestor of the
// whole sample. An empty tree returns 0.
func MRCA(t *lineage.Tree) float64 {
	return t.Time(t.Root())
}

// Summary bundles the scalar statistics of a genealogy.
type Summary struct {
	MRCA         float64 `json:"tmrca"`
	BranchLength float64 `json:"branch_length"`
	Leaves       int     `json:"leaves"`
	Mutations    int     `json:"mutations"`
}

// Summarize computes the scalar statistics of the tree rooted at t.Root().
// Mutations is one more than the largest mutation index recorded in the tree.
func Summarize(t *lineage.Tree) Summary {
	root := t.Root()
	return Summary{
		MRCA:         MRCA(t),
		BranchLength: BranchLength(t, root),
		Leaves:       len(Leaves(t, root)),
		Mutations:    t.MutationCount(),
	}
}
