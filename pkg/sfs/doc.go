// Package sfs overlays recorded mutations onto the sampled leaves of a
// genealogy and folds them into a site-frequency spectrum.
//
// # Pipeline
//
//	sets := sfs.LeafSequences(tree)          // mutations inherited by each leaf
//	vecs := sfs.BinaryVectors(sets, count)   // one 0/1 row per leaf
//	spec := sfs.Fold(vecs)                   // folded count -> number of sites
//
// Each mutation index is one segregating site. A leaf carries a site when the
// mutation struck any lineage on its path to the root.
//
// # Folding
//
// Without an outgroup the ancestral allele is unknown, so a site where c of n
// leaves carry the derived allele is binned at min(c, n-c). Folded counts lie
// in [0, n/2].
//
// [ExpectedFolded] gives the neutral expectation of each bin, used to compare
// simulated spectra against theory.
package sfs
