package cache

import "strconv"

// Keyer generates cache keys for simulation results.
type Keyer interface {
	// TreeKey identifies one seeded simulation.
	TreeKey(opts TreeKeyOpts) string

	// BatchKey identifies a seeded batch of replicates.
	BatchKey(opts BatchKeyOpts) string
}

// TreeKeyOpts holds every input that determines a simulated tree.
type TreeKeyOpts struct {
	N     int      `json:"n"`
	T0    *float64 `json:"t0,omitempty"`
	Theta *float64 `json:"theta,omitempty"`
	Seed  uint64   `json:"seed"`
}

// BatchKeyOpts extends TreeKeyOpts with the number of replicates. Replicate
// i uses Seed+i, so the worker count does not affect the result.
type BatchKeyOpts struct {
	TreeKeyOpts
	Replicates int `json:"replicates"`
}

// DefaultKeyer hashes key options into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// TreeKey returns "tree:<n>:<hash>".
func (DefaultKeyer) TreeKey(opts TreeKeyOpts) string {
	return hashKey("tree:"+strconv.Itoa(opts.N), opts)
}

// BatchKey returns "batch:<n>:<hash>".
func (DefaultKeyer) BatchKey(opts BatchKeyOpts) string {
	return hashKey("batch:"+strconv.Itoa(opts.N), opts)
}

var _ Keyer = DefaultKeyer{}
