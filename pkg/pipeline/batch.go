package pipeline

import (
	"context"
	"encoding/json"
	"math"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/coalsim/pkg/cache"
	"github.com/matzehuels/coalsim/pkg/coalescent"
	"github.com/matzehuels/coalsim/pkg/errors"
	"github.com/matzehuels/coalsim/pkg/observability"
	"github.com/matzehuels/coalsim/pkg/sfs"
	"github.com/matzehuels/coalsim/pkg/treestats"
)

// BatchOptions configures a run of independent replicates.
type BatchOptions struct {
	Options

	// Replicates is the number of genealogies to simulate.
	Replicates int `json:"replicates"`

	// Workers bounds concurrent replicates. 0 means runtime.GOMAXPROCS(0).
	Workers int `json:"workers,omitempty"`
}

// Moments are the sample mean and unbiased variance of a statistic.
type Moments struct {
	Mean     float64 `json:"mean"`
	Variance float64 `json:"variance"`
}

// BatchSummary aggregates replicate statistics.
type BatchSummary struct {
	ID         string  `json:"id"`
	N          int     `json:"n"`
	Replicates int     `json:"replicates"`
	Seed       uint64  `json:"seed"`
	MRCA       Moments `json:"tmrca"`
	BranchLen  Moments `json:"branch_length"`

	// MeanSites is the mean number of segregating sites per replicate.
	MeanSites float64 `json:"mean_sites"`

	// MeanSpectrum maps a folded count to its mean number of sites.
	// Empty without a mutation model.
	MeanSpectrum map[int]float64 `json:"mean_spectrum,omitempty"`

	CacheHit bool          `json:"-"`
	Duration time.Duration `json:"-"`
}

// replicate holds what is kept from one simulated genealogy.
type replicate struct {
	summary  treestats.Summary
	spectrum sfs.Spectrum
}

// RunBatch simulates opts.Replicates independent genealogies in parallel and
// summarizes them. Replicate i uses its own source seeded with Seed+i, so the
// summary does not depend on the number of workers. Seeded batches are cached.
//
// Cancelling ctx stops scheduling further replicates; RunBatch then returns
// the context error.
func (r *Runner) RunBatch(ctx context.Context, opts BatchOptions) (summary *BatchSummary, err error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if err := errors.ValidateReplicates(opts.Replicates, opts.Workers); err != nil {
		return nil, err
	}
	workers := opts.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	start := time.Now()
	defer func() {
		observability.Simulation().OnBatchComplete(ctx, opts.Replicates, time.Since(start), err)
	}()

	seeded := opts.Seed != nil
	seed := randomSeed()
	if seeded {
		seed = *opts.Seed
	}

	var key string
	if seeded {
		key = r.Keyer.BatchKey(cache.BatchKeyOpts{TreeKeyOpts: opts.TreeKeyOpts(), Replicates: opts.Replicates})
		if !opts.Refresh {
			if cached := r.lookupBatch(ctx, key); cached != nil {
				cached.CacheHit = true
				cached.Duration = time.Since(start)
				r.Logger.Info("restored batch from cache", "id", cached.ID, "replicates", cached.Replicates)
				return cached, nil
			}
		}
	}

	cfg := opts.Config()
	results := make([]replicate, opts.Replicates)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range results {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			engine := coalescent.New(coalescent.NewSource(seed+uint64(i)), coalescent.WithLogger(opts.Logger))
			sim, err := engine.Simulate(cfg)
			if err != nil {
				return err
			}
			res := newResult("", sim.Tree, sim.Mutations)
			results[i] = replicate{summary: res.Summary}
			if cfg.Theta != nil {
				results[i].spectrum = res.Spectrum()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	summary = summarize(results)
	summary.ID = uuid.NewString()
	summary.N = opts.N
	summary.Seed = seed
	summary.Duration = time.Since(start)

	r.Logger.Info("completed batch",
		"id", summary.ID,
		"replicates", summary.Replicates,
		"workers", workers,
		"mean_tmrca", summary.MRCA.Mean,
		"duration", summary.Duration)

	if seeded {
		r.storeBatch(ctx, key, summary)
	}
	return summary, nil
}

func summarize(reps []replicate) *BatchSummary {
	s := &BatchSummary{Replicates: len(reps)}
	mrca := make([]float64, len(reps))
	branch := make([]float64, len(reps))
	sites := 0
	spectrum := map[int]float64{}
	for i, rep := range reps {
		mrca[i] = rep.summary.MRCA
		branch[i] = rep.summary.BranchLength
		sites += rep.summary.Mutations
		for k, v := range rep.spectrum {
			spectrum[k] += float64(v)
		}
	}
	s.MRCA = moments(mrca)
	s.BranchLen = moments(branch)
	if len(reps) > 0 {
		s.MeanSites = float64(sites) / float64(len(reps))
		for k := range spectrum {
			spectrum[k] /= float64(len(reps))
		}
	}
	if len(spectrum) > 0 {
		s.MeanSpectrum = spectrum
	}
	return s
}

// moments returns the mean and the unbiased sample variance of xs. The
// variance of fewer than two values is 0.
func moments(xs []float64) Moments {
	if len(xs) == 0 {
		return Moments{}
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	mean := sum / float64(len(xs))
	if len(xs) < 2 {
		return Moments{Mean: mean}
	}
	var ss float64
	for _, x := range xs {
		ss += (x - mean) * (x - mean)
	}
	return Moments{Mean: mean, Variance: ss / float64(len(xs)-1)}
}

// StdDev returns the square root of the variance.
func (m Moments) StdDev() float64 { return math.Sqrt(m.Variance) }

func (r *Runner) lookupBatch(ctx context.Context, key string) *BatchSummary {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, keyTypeBatch)
		return nil
	}
	var s BatchSummary
	if err := json.Unmarshal(data, &s); err != nil {
		_ = r.Cache.Delete(ctx, key)
		observability.Cache().OnCacheMiss(ctx, keyTypeBatch)
		return nil
	}
	observability.Cache().OnCacheHit(ctx, keyTypeBatch)
	return &s
}

func (r *Runner) storeBatch(ctx context.Context, key string, s *BatchSummary) {
	data, err := json.Marshal(s)
	if err != nil {
		return
	}
	if err := r.Cache.Set(ctx, key, data, cache.TTLBatch); err != nil {
		r.Logger.Warn("cache write failed", "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyTypeBatch, len(data))
}
