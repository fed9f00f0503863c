package coalescent

import (
	"fmt"

	"github.com/matzehuels/coalsim/pkg/errors"
)

// Config describes one coalescent run.
type Config struct {
	// N is the number of sampled individuals. Must be at least 2.
	N int

	// T0 is the population-size changepoint. Nil means constant size.
	T0 *float64

	// Theta is the scaled mutation rate. Nil disables the mutation model.
	Theta *float64
}

// Validate checks the configuration before any simulation work.
// Failures carry [errors.ErrCodeInvalidConfig].
func (c Config) Validate() error {
	if err := errors.ValidateSampleSize(c.N); err != nil {
		return err
	}
	if err := errors.ValidateChangepoint(c.T0); err != nil {
		return err
	}
	return errors.ValidateTheta(c.Theta)
}

// String implements fmt.Stringer.
func (c Config) String() string {
	s := fmt.Sprintf("n=%d", c.N)
	if c.T0 != nil {
		s += fmt.Sprintf(" t0=%g", *c.T0)
	}
	if c.Theta != nil {
		s += fmt.Sprintf(" theta=%g", *c.Theta)
	}
	return s
}

// Float returns a pointer to v, for the optional Config fields.
func Float(v float64) *float64 { return &v }
