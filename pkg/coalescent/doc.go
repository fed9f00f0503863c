// Package coalescent simulates genealogies of a sample under Kingman's
// coalescent, optionally with a population-size changepoint and a competing
// mutation process.
//
// # Overview
//
// [Engine.Simulate] starts from N sampled lineages and repeatedly lets two
// stochastic events race:
//
//   - coalescence: two uniformly chosen active lineages merge into their
//     common ancestor after an exponential waiting time with rate k(k-1)/2
//     (see [CoalescenceTime] for the changepoint rule)
//   - mutation: if Theta is set, one uniformly chosen active lineage receives
//     the next mutation index after an exponential waiting time with rate
//     Theta·k/2 (see [MutationTime])
//
// The earlier event wins. The loop stops when one lineage remains: the root
// of the returned [lineage.Tree].
//
// # Randomness
//
// All variates come from a [Source]. Use [NewSource] with a seed for
// reproducible runs, or inject a scripted source in tests. Each run owns its
// source; run independent replicates in parallel with one Engine each.
//
// # Errors
//
// Invalid configurations (N < 2, Theta <= 0, T0 < 0) are rejected by
// [Config.Validate] before any draw, with code
// [github.com/matzehuels/coalsim/pkg/errors.ErrCodeInvalidConfig].
package coalescent
