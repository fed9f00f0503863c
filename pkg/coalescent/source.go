package coalescent

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

// ErrNonPositiveRate is returned when an exponential draw is requested with a
// rate that is zero, negative or NaN.
var ErrNonPositiveRate = errors.New("exponential rate must be positive")

// Source supplies the random variates used by the engine. *rand.Rand from
// math/rand/v2 satisfies it. Tests inject scripted sources.
//
// A Source is owned by one simulation at a time; it is not required to be
// safe for concurrent use.
type Source interface {
	// IntN returns a uniform integer in [0, n).
	IntN(n int) int
	// ExpFloat64 returns an exponential variate with rate 1.
	ExpFloat64() float64
}

// NewSource returns a seeded PCG source. The same seed always yields the
// same sequence of trees.
func NewSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Exponential draws from an exponential distribution with the given rate.
func Exponential(src Source, rate float64) (float64, error) {
	if !(rate > 0) {
		return 0, fmt.Errorf("rate %g: %w", rate, ErrNonPositiveRate)
	}
	return src.ExpFloat64() / rate, nil
}
