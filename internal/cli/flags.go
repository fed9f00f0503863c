package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/coalsim/pkg/config"
	"github.com/matzehuels/coalsim/pkg/pipeline"
)

// modelFlags are the model parameters shared by simulate and batch.
type modelFlags struct {
	n       int
	t0      float64
	theta   float64
	seed    uint64
	noCache bool
	refresh bool
}

func (f *modelFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.n, "individuals", "n", pipeline.DefaultN, "number of sampled individuals")
	cmd.Flags().Float64VarP(&f.t0, "t0", "t", 0, "time of the population size change (unset: constant size)")
	cmd.Flags().Float64Var(&f.theta, "theta", 0, "scaled mutation rate (unset: no mutations)")
	cmd.Flags().Uint64Var(&f.seed, "seed", 0, "random seed; seeded runs are reproducible and cached")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "ignore cached results and simulate again")
}

// options overlays the explicitly set flags on the configured simulation.
// Flags left at their defaults never override a config file.
func (f *modelFlags) options(cmd *cobra.Command, cfg *config.Config) pipeline.Options {
	sim := cfg.Simulation
	opts := pipeline.Options{
		N:       sim.N,
		T0:      sim.T0,
		Theta:   sim.Theta,
		Seed:    sim.Seed,
		Refresh: f.refresh,
	}

	flags := cmd.Flags()
	if flags.Changed("individuals") {
		opts.N = f.n
	}
	if flags.Changed("t0") {
		opts.T0 = &f.t0
	}
	if flags.Changed("theta") {
		opts.Theta = &f.theta
	}
	if flags.Changed("seed") {
		opts.Seed = &f.seed
	}
	return opts
}

// batchFlags size a replicate batch.
type batchFlags struct {
	replicates int
	workers    int
}

func (f *batchFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.replicates, "replicates", "r", pipeline.DefaultReplicates, "number of independent genealogies")
	cmd.Flags().IntVarP(&f.workers, "workers", "w", 0, "concurrent replicates (0: one per CPU)")
}

func (f *batchFlags) apply(cmd *cobra.Command, cfg *config.Config, opts *pipeline.BatchOptions) {
	opts.Replicates = cfg.Batch.Replicates
	opts.Workers = cfg.Batch.Workers
	if cmd.Flags().Changed("replicates") {
		opts.Replicates = f.replicates
	}
	if cmd.Flags().Changed("workers") {
		opts.Workers = f.workers
	}
}
