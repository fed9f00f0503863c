// Package pipeline ties simulation, caching, statistics and rendering
// together for the CLI.
//
// # Architecture
//
// A [Runner] owns a cache backend, a keyer and a logger. It offers three
// entry points:
//
//  1. Simulate: one genealogy, from cache when the seed is fixed
//  2. Load: one genealogy restored from a tree file
//  3. RunBatch: many independent replicates summarized into moments
//
// Rendering of a finished tree is a separate stage ([Render]).
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	res, err := runner.Simulate(ctx, pipeline.Options{N: 20, Theta: &theta})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Summary.MRCA, res.Summary.BranchLength)
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/coalsim/pkg/cache"
	"github.com/matzehuels/coalsim/pkg/coalescent"
	"github.com/matzehuels/coalsim/pkg/errors"
	"github.com/matzehuels/coalsim/pkg/lineage"
	"github.com/matzehuels/coalsim/pkg/sfs"
	"github.com/matzehuels/coalsim/pkg/treestats"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultN is the default number of sampled individuals.
	DefaultN = 10

	// DefaultReplicates is the default batch size.
	DefaultReplicates = 100
)

// Format constants for rendered output.
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
	FormatPNG = "png"
	FormatPDF = "pdf"
)

// ValidFormats is the set of supported render formats.
var ValidFormats = map[string]bool{
	FormatDOT: true,
	FormatSVG: true,
	FormatPNG: true,
	FormatPDF: true,
}

// ValidateFormat checks that a render format is supported.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid format: %q (must be one of: dot, svg, png, pdf)", format)
	}
	return nil
}

// =============================================================================
// Options - Simulation Configuration
// =============================================================================

// Options configures one simulation.
type Options struct {
	N     int      `json:"n"`
	T0    *float64 `json:"t0,omitempty"`
	Theta *float64 `json:"theta,omitempty"`

	// Seed fixes the random source. Seeded runs are reproducible and cached;
	// unseeded runs draw a fresh seed and bypass the cache.
	Seed *uint64 `json:"seed,omitempty"`

	// Refresh skips the cache lookup but still stores the new result.
	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`
}

// Config returns the simulator configuration.
func (o *Options) Config() coalescent.Config {
	return coalescent.Config{N: o.N, T0: o.T0, Theta: o.Theta}
}

// ValidateAndSetDefaults fills in the logger and validates the model
// parameters. N is never defaulted: a zero sample size is a configuration
// error like any other n < 2.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return o.Config().Validate()
}

// TreeKeyOpts returns cache key options. Only meaningful for seeded runs.
func (o *Options) TreeKeyOpts() cache.TreeKeyOpts {
	k := cache.TreeKeyOpts{N: o.N, T0: o.T0, Theta: o.Theta}
	if o.Seed != nil {
		k.Seed = *o.Seed
	}
	return k
}

// =============================================================================
// Results
// =============================================================================

// Result is one finished genealogy with its statistics.
type Result struct {
	// ID identifies the run in logs and exported summaries.
	ID string

	// Tree is the genealogy; its root is the MRCA.
	Tree *lineage.Tree

	// Mutations is the number of mutation indices in use (0..Mutations-1).
	Mutations int

	// Seed is the seed the tree was simulated with. Zero for loaded trees.
	Seed uint64

	// Summary holds T_MRCA, total branch length and counts.
	Summary treestats.Summary

	// CacheHit reports whether the tree was restored from cache.
	CacheHit bool

	// Duration is the wall time of the simulation or restore.
	Duration time.Duration
}

// PairwiseTimes returns T_ij for every leaf pair, see [treestats.PairwiseTimes].
func (r *Result) PairwiseTimes() []float64 {
	return treestats.PairwiseTimes(r.Tree, r.Tree.Root())
}

// Sequences returns the 0/1 mutation vector of every leaf, left to right.
func (r *Result) Sequences() [][]uint8 {
	return sfs.BinaryVectors(sfs.LeafSequences(r.Tree), r.Mutations)
}

// Spectrum returns the folded site-frequency spectrum of the sample.
func (r *Result) Spectrum() sfs.Spectrum {
	return sfs.Fold(r.Sequences())
}

func newResult(id string, tree *lineage.Tree, mutations int) *Result {
	return &Result{
		ID:        id,
		Tree:      tree,
		Mutations: mutations,
		Summary:   treestats.Summarize(tree),
	}
}

func (o *Options) String() string {
	return fmt.Sprintf("%s seed=%s", o.Config().String(), optUint(o.Seed))
}

func optUint(v *uint64) string {
	if v == nil {
		return "random"
	}
	return fmt.Sprint(*v)
}
