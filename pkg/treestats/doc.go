// Package treestats computes summary statistics of a finished genealogy.
//
// All functions are pure and read-only; they are safe to call concurrently on
// the same [lineage.Tree]. They tolerate malformed nodes with a single child
// by descending into whichever child is present.
//
// The statistics are:
//   - [BranchLength]: total length of all branches below a node
//   - [Leaves]: the sampled individuals below a node, left to right
//   - [PairwiseTimes]: the coalescence time T_ij of every leaf pair i < j
//   - [MRCA]: the time of the most recent common ancestor (root)
package treestats
