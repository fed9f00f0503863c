package sfs

import (
	"maps"
	"slices"
)

// Spectrum maps a folded derived-allele count to the number of sites with
// that count.
type Spectrum map[int]int

// Fold builds the folded site-frequency spectrum of the given leaf vectors.
// All vectors are expected to have the same length (one entry per site);
// n is the number of vectors. Every site is counted exactly once, so the
// entries sum to the number of sites.
func Fold(vectors [][]uint8) Spectrum {
	spec := Spectrum{}
	n := len(vectors)
	if n == 0 {
		return spec
	}
	sites := len(vectors[0])
	for s := 0; s < sites; s++ {
		c := 0
		for _, v := range vectors {
			if s < len(v) {
				c += int(v[s])
			}
		}
		spec[min(c, n-c)]++
	}
	return spec
}

// Sites returns the total number of sites in the spectrum.
func (s Spectrum) Sites() int {
	total := 0
	for _, v := range s {
		total += v
	}
	return total
}

// MaxCount returns the largest folded count with at least one site, or -1
// for an empty spectrum.
func (s Spectrum) MaxCount() int {
	if len(s) == 0 {
		return -1
	}
	return slices.Max(slices.Collect(maps.Keys(s)))
}

// ExpectedFolded returns the expected number of sites in folded bin i for a
// sample of n under the standard neutral model with scaled mutation rate
// theta: theta·(1/i + 1/(n-1)), halved when i == n-1.
//
// i must be in [1, n-1] and n at least 2; other inputs return 0.
func ExpectedFolded(theta float64, i, n int) float64 {
	if n < 2 || i < 1 || i > n-1 {
		return 0
	}
	e := theta * (1/float64(i) + 1/float64(n-1))
	if i == n-1 {
		e /= 2
	}
	return e
}
