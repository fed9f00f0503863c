package pipeline

import (
	"bytes"
	"context"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/coalsim/pkg/cache"
	"github.com/matzehuels/coalsim/pkg/coalescent"
	"github.com/matzehuels/coalsim/pkg/errors"
	treeio "github.com/matzehuels/coalsim/pkg/io"
	"github.com/matzehuels/coalsim/pkg/lineage"
	"github.com/matzehuels/coalsim/pkg/observability"
)

// Key types reported to cache hooks.
const (
	keyTypeTree  = "tree"
	keyTypeBatch = "batch"
)

// Runner encapsulates simulation with caching.
//
// The Runner is stateless except for the cache and logger; it doesn't store
// results. Multiple goroutines can safely use the same Runner with different
// options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL applies to cached trees. Defaults to cache.TTLTree.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
		TTL:    cache.TTLTree,
	}
}

// Simulate produces one genealogy. Seeded runs are looked up in the cache
// first and stored after simulation; unseeded runs draw a fresh seed, which
// is reported in the result so the run can be repeated.
func (r *Runner) Simulate(ctx context.Context, opts Options) (res *Result, err error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hooks := observability.Simulation()
	hooks.OnSimulateStart(ctx, opts.N)
	start := time.Now()
	defer func() {
		var mutations int
		var tmrca float64
		if res != nil {
			mutations, tmrca = res.Mutations, res.Summary.MRCA
		}
		hooks.OnSimulateComplete(ctx, opts.N, mutations, tmrca, time.Since(start), err)
	}()

	seeded := opts.Seed != nil
	seed := randomSeed()
	if seeded {
		seed = *opts.Seed
	}

	var key string
	if seeded {
		key = r.Keyer.TreeKey(opts.TreeKeyOpts())
		if !opts.Refresh {
			if cached := r.lookupTree(ctx, key); cached != nil {
				cached.Seed = seed
				cached.CacheHit = true
				cached.Duration = time.Since(start)
				r.Logger.Info("restored genealogy from cache",
					"id", cached.ID,
					"n", opts.N,
					"tmrca", cached.Summary.MRCA,
					"duration", cached.Duration)
				return cached, nil
			}
		}
	}

	engine := coalescent.New(coalescent.NewSource(seed), coalescent.WithLogger(opts.Logger))
	sim, err := engine.Simulate(opts.Config())
	if err != nil {
		return nil, err
	}

	res = newResult(uuid.NewString(), sim.Tree, sim.Mutations)
	res.Seed = seed
	res.Duration = time.Since(start)
	r.Logger.Info("simulated genealogy",
		"id", res.ID,
		"n", opts.N,
		"seed", seed,
		"mutations", res.Mutations,
		"tmrca", res.Summary.MRCA,
		"duration", res.Duration)

	if seeded {
		r.storeTree(ctx, key, res.Tree)
	}
	return res, nil
}

// Load restores a genealogy from a tree file written by [treeio.ExportJSON].
// Trees with parents younger than their children are accepted with a warning.
func (r *Runner) Load(ctx context.Context, path string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	tree, err := treeio.ImportJSON(path)
	if err != nil {
		return nil, err
	}
	if v := tree.TimeViolations(); len(v) > 0 {
		r.Logger.Warn("tree has parents younger than their children", "path", path, "nodes", len(v))
	}

	res := newResult(uuid.NewString(), tree, tree.MutationCount())
	res.Duration = time.Since(start)
	r.Logger.Info("loaded genealogy",
		"id", res.ID,
		"path", path,
		"leaves", res.Summary.Leaves,
		"mutations", res.Mutations,
		"duration", res.Duration)
	return res, nil
}

// Save writes the genealogy of res to path; see [treeio.ExportJSON].
func (r *Runner) Save(res *Result, path string) error {
	if err := errors.ValidateOutputPath(path); err != nil {
		return err
	}
	if err := treeio.ExportJSON(res.Tree, path); err != nil {
		return err
	}
	r.Logger.Debug("saved genealogy", "id", res.ID, "path", path)
	return nil
}

func randomSeed() uint64 { return rand.Uint64() }

// lookupTree returns the cached tree for key, or nil on a miss. Cache errors
// and undecodable entries count as misses.
func (r *Runner) lookupTree(ctx context.Context, key string) *Result {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache lookup failed", "error", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, keyTypeTree)
		return nil
	}

	tree, err := treeio.ReadCompressedJSON(bytes.NewReader(data))
	if err != nil {
		r.Logger.Debug("discarding unreadable cache entry", "key", key, "error", err)
		_ = r.Cache.Delete(ctx, key)
		observability.Cache().OnCacheMiss(ctx, keyTypeTree)
		return nil
	}
	observability.Cache().OnCacheHit(ctx, keyTypeTree)
	return newResult(uuid.NewString(), tree, tree.MutationCount())
}

func (r *Runner) storeTree(ctx context.Context, key string, tree *lineage.Tree) {
	var buf bytes.Buffer
	if err := treeio.WriteCompressedJSON(tree, &buf); err != nil {
		r.Logger.Warn("encode cache entry failed", "error", err)
		return
	}
	if err := r.Cache.Set(ctx, key, buf.Bytes(), r.TTL); err != nil {
		r.Logger.Warn("cache write failed", "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyTypeTree, buf.Len())
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
