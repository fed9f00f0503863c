package sfs

import (
	"github.com/matzehuels/coalsim/pkg/lineage"
)

// LeafSequences returns, for each leaf of the tree in left-to-right order, the
// set of mutations on its ancestral path: the leaf's own mutations plus those
// of every ancestor up to the root.
//
// Only nodes with both children are descended into; any other node ends the
// path and contributes one sequence, as a leaf would.
func LeafSequences(t *lineage.Tree) []lineage.MutationSet {
	var out []lineage.MutationSet
	collectSequences(t, t.Root(), nil, &out)
	return out
}

func collectSequences(t *lineage.Tree, id lineage.NodeID, inherited lineage.MutationSet, out *[]lineage.MutationSet) {
	n, ok := t.Node(id)
	if !ok {
		return
	}
	acc := inherited.Union(n.Mutations)
	if n.Left != lineage.None && n.Right != lineage.None {
		collectSequences(t, n.Left, acc, out)
		collectSequences(t, n.Right, acc, out)
		return
	}
	*out = append(*out, acc)
}

// BinaryVector converts a mutation set into a 0/1 vector of length count,
// with 1 at every index present in the set. Indices outside [0, count) are
// ignored.
func BinaryVector(set lineage.MutationSet, count int) []uint8 {
	if count < 0 {
		count = 0
	}
	v := make([]uint8, count)
	for i := range set {
		if i >= 0 && i < count {
			v[i] = 1
		}
	}
	return v
}

// BinaryVectors applies [BinaryVector] to every set.
func BinaryVectors(sets []lineage.MutationSet, count int) [][]uint8 {
	out := make([][]uint8, len(sets))
	for i, s := range sets {
		out[i] = BinaryVector(s, count)
	}
	return out
}

// FormatVector renders a binary vector as a string of '0' and '1'.
func FormatVector(v []uint8) string {
	b := make([]byte, len(v))
	for i, x := range v {
		b[i] = '0' + x
	}
	return string(b)
}
