package pipeline

import (
	"bytes"
	"context"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/coalsim/pkg/cache"
	"github.com/matzehuels/coalsim/pkg/coalescent"
	"github.com/matzehuels/coalsim/pkg/errors"
	"github.com/matzehuels/coalsim/pkg/lineage"
	"github.com/matzehuels/coalsim/pkg/observability"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func seed(v uint64) *uint64 { return &v }

func newFileRunner(t *testing.T) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil, quietLogger())
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"dot", false},
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"json", true},
		{"SVG", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{N: DefaultN}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("default sample size should validate: %v", err)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}

	for _, n := range []int{-1, 0, 1} {
		bad := Options{N: n}
		if err := bad.ValidateAndSetDefaults(); !errors.Is(err, errors.ErrCodeInvalidConfig) {
			t.Errorf("N=%d error = %v, want INVALID_CONFIG", n, err)
		}
		if bad.N != n {
			t.Errorf("N=%d was rewritten to %d", n, bad.N)
		}
	}
}

func TestInvalidSizesRejected(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())
	ctx := context.Background()

	if _, err := r.Simulate(ctx, Options{N: 0}); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Simulate(N=0) error = %v, want INVALID_CONFIG", err)
	}
	if _, err := r.RunBatch(ctx, BatchOptions{Options: Options{N: 5}, Replicates: 0}); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("RunBatch(Replicates=0) error = %v, want INVALID_CONFIG", err)
	}
}

func TestNewRunnerDefaults(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	if r.Cache == nil || r.Keyer == nil || r.Logger == nil {
		t.Fatal("NewRunner should fill nil dependencies")
	}
	if r.TTL != cache.TTLTree {
		t.Errorf("TTL = %v, want %v", r.TTL, cache.TTLTree)
	}
}

func TestSimulate(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())
	res, err := r.Simulate(context.Background(), Options{N: 8, Theta: coalescent.Float(2)})
	if err != nil {
		t.Fatalf("Simulate error: %v", err)
	}
	if res.ID == "" {
		t.Error("Result should have an ID")
	}
	if res.Summary.Leaves != 8 {
		t.Errorf("Leaves = %d, want 8", res.Summary.Leaves)
	}
	if res.Summary.MRCA <= 0 {
		t.Errorf("MRCA = %v, want > 0", res.Summary.MRCA)
	}
	if got := len(res.PairwiseTimes()); got != 28 {
		t.Errorf("PairwiseTimes has %d entries, want 28", got)
	}
	if res.Spectrum().Sites() != res.Mutations {
		t.Errorf("Spectrum sites = %d, want %d", res.Spectrum().Sites(), res.Mutations)
	}
	if res.CacheHit {
		t.Error("unseeded run should not hit the cache")
	}
}

func TestSimulateSeededIsReproducible(t *testing.T) {
	ctx := context.Background()
	opts := Options{N: 12, Theta: coalescent.Float(3), Seed: seed(99)}

	a, err := NewRunner(nil, nil, quietLogger()).Simulate(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewRunner(nil, nil, quietLogger()).Simulate(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !lineage.Equal(a.Tree, b.Tree) {
		t.Error("same seed should produce the same tree")
	}
	if a.Seed != 99 {
		t.Errorf("Seed = %d, want 99", a.Seed)
	}
	if a.ID == b.ID {
		t.Error("runs should have distinct IDs")
	}
}

func TestSimulateCache(t *testing.T) {
	ctx := context.Background()
	r := newFileRunner(t)
	rec := &recordingCacheHooks{}
	observability.SetCacheHooks(rec)
	defer observability.Reset()

	opts := Options{N: 10, Theta: coalescent.Float(4), Seed: seed(5)}
	first, err := r.Simulate(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheHit {
		t.Error("first run should miss")
	}

	second, err := r.Simulate(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheHit {
		t.Error("second seeded run should hit the cache")
	}
	if !lineage.Equal(first.Tree, second.Tree) {
		t.Error("cached tree differs from simulated tree")
	}
	if second.Mutations != first.Mutations {
		t.Errorf("cached Mutations = %d, want %d", second.Mutations, first.Mutations)
	}

	refreshed := opts
	refreshed.Refresh = true
	third, err := r.Simulate(ctx, refreshed)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheHit {
		t.Error("Refresh should bypass the cache lookup")
	}

	if rec.count("miss") != 1 || rec.count("hit") != 1 || rec.count("set") != 2 {
		t.Errorf("cache events = %v", rec.events)
	}
}

func TestSimulateUnseededSkipsCache(t *testing.T) {
	r := newFileRunner(t)
	rec := &recordingCacheHooks{}
	observability.SetCacheHooks(rec)
	defer observability.Reset()

	for range 2 {
		if _, err := r.Simulate(context.Background(), Options{N: 5}); err != nil {
			t.Fatal(err)
		}
	}
	if len(rec.events) != 0 {
		t.Errorf("unseeded runs touched the cache: %v", rec.events)
	}
}

func TestSimulateFiresHooks(t *testing.T) {
	tests := []struct {
		name      string
		opts      Options
		wantCalls int
	}{
		{"valid run", Options{N: 6, Seed: seed(3)}, 1},
		{"invalid sample size", Options{N: 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recordingSimulationHooks{}
			observability.SetSimulationHooks(rec)
			defer observability.Reset()

			_, _ = NewRunner(nil, nil, quietLogger()).Simulate(context.Background(), tt.opts)
			if rec.starts != tt.wantCalls || rec.completes != tt.wantCalls {
				t.Errorf("starts = %d, completes = %d, want %d each", rec.starts, rec.completes, tt.wantCalls)
			}
			if tt.wantCalls > 0 && rec.lastN != tt.opts.N {
				t.Errorf("hook n = %d, want %d", rec.lastN, tt.opts.N)
			}
		})
	}
}

func TestSimulateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewRunner(nil, nil, quietLogger()).Simulate(ctx, Options{N: 5}); err != context.Canceled {
		t.Errorf("Simulate error = %v, want context.Canceled", err)
	}
}

func TestSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(nil, nil, quietLogger())
	res, err := r.Simulate(ctx, Options{N: 7, Theta: coalescent.Float(5), Seed: seed(1)})
	if err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"tree.json", "tree.json.lz4"} {
		path := filepath.Join(t.TempDir(), name)
		if err := r.Save(res, path); err != nil {
			t.Fatalf("Save(%s) error: %v", name, err)
		}
		loaded, err := r.Load(ctx, path)
		if err != nil {
			t.Fatalf("Load(%s) error: %v", name, err)
		}
		if !lineage.Equal(res.Tree, loaded.Tree) {
			t.Errorf("%s: loaded tree differs", name)
		}
		if loaded.Mutations != res.Mutations {
			t.Errorf("%s: Mutations = %d, want %d", name, loaded.Mutations, res.Mutations)
		}
		if loaded.Summary != res.Summary {
			t.Errorf("%s: Summary = %+v, want %+v", name, loaded.Summary, res.Summary)
		}
	}

	if err := r.Save(res, "dir/"); !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("Save to directory error = %v, want INVALID_PATH", err)
	}
	if _, err := r.Load(ctx, filepath.Join(t.TempDir(), "none.json")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load missing error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestLoadWarnsOnTimeViolations(t *testing.T) {
	var logs bytes.Buffer
	r := NewRunner(nil, nil, log.NewWithOptions(&logs, log.Options{}))

	path := filepath.Join(t.TempDir(), "bad.json")
	if err := writeString(path, `{"root": 2, "nodes": [{"id": 0, "time": 5}, {"id": 1, "time": 0}, {"id": 2, "time": 1, "left": 0, "right": 1}]}`); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Load(context.Background(), path); err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if !strings.Contains(logs.String(), "younger than their children") {
		t.Errorf("expected time violation warning, got %q", logs.String())
	}
}

func TestRunBatch(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(nil, nil, quietLogger())

	opts := BatchOptions{
		Options:    Options{N: 6, Theta: coalescent.Float(2), Seed: seed(11)},
		Replicates: 40,
		Workers:    4,
	}
	s, err := r.RunBatch(ctx, opts)
	if err != nil {
		t.Fatalf("RunBatch error: %v", err)
	}
	if s.Replicates != 40 || s.N != 6 || s.Seed != 11 {
		t.Errorf("summary header = %+v", s)
	}
	if s.MRCA.Mean <= 0 || s.MRCA.Variance <= 0 {
		t.Errorf("MRCA moments = %+v", s.MRCA)
	}
	if s.BranchLen.Mean < 2*s.MRCA.Mean {
		t.Errorf("mean branch length %v below 2*mean MRCA %v", s.BranchLen.Mean, s.MRCA.Mean)
	}
	total := 0.0
	for k, v := range s.MeanSpectrum {
		if k < 0 || k > 3 {
			t.Errorf("folded bin %d outside [0, 3]", k)
		}
		total += v
	}
	if math.Abs(total-s.MeanSites) > 1e-9 {
		t.Errorf("mean spectrum sums to %v, want %v", total, s.MeanSites)
	}

	// The summary does not depend on the worker count.
	opts.Workers = 1
	opts.Refresh = true
	serial, err := r.RunBatch(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if serial.MRCA != s.MRCA || serial.BranchLen != s.BranchLen || serial.MeanSites != s.MeanSites {
		t.Errorf("serial summary %+v differs from parallel %+v", serial, s)
	}
}

func TestRunBatchCache(t *testing.T) {
	ctx := context.Background()
	r := newFileRunner(t)
	opts := BatchOptions{Options: Options{N: 4, Seed: seed(3)}, Replicates: 5}

	first, err := r.RunBatch(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.RunBatch(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheHit || !second.CacheHit {
		t.Errorf("CacheHit = %v, %v; want false, true", first.CacheHit, second.CacheHit)
	}
	if second.MRCA != first.MRCA || second.ID != first.ID {
		t.Error("cached summary differs")
	}
	if second.MeanSpectrum != nil {
		t.Error("batch without theta should have no spectrum")
	}
}

func TestRunBatchErrors(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())

	_, err := r.RunBatch(context.Background(), BatchOptions{Options: Options{N: 5}, Replicates: 3, Workers: -1})
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("negative workers error = %v, want INVALID_CONFIG", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.RunBatch(ctx, BatchOptions{Options: Options{N: 5}, Replicates: 50}); err != context.Canceled {
		t.Errorf("cancelled batch error = %v, want context.Canceled", err)
	}
}

func TestMoments(t *testing.T) {
	tests := []struct {
		name string
		xs   []float64
		want Moments
	}{
		{"empty", nil, Moments{}},
		{"single", []float64{3}, Moments{Mean: 3}},
		{"several", []float64{1, 2, 3, 4}, Moments{Mean: 2.5, Variance: 5.0 / 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := moments(tt.xs)
			if math.Abs(got.Mean-tt.want.Mean) > 1e-12 || math.Abs(got.Variance-tt.want.Variance) > 1e-12 {
				t.Errorf("moments(%v) = %+v, want %+v", tt.xs, got, tt.want)
			}
		})
	}
}

func TestRenderDOT(t *testing.T) {
	res, err := NewRunner(nil, nil, quietLogger()).Simulate(context.Background(), Options{N: 4, Seed: seed(2)})
	if err != nil {
		t.Fatal(err)
	}
	out, err := Render(context.Background(), res.Tree, RenderOptions{Formats: []string{FormatDOT}})
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if !strings.HasPrefix(string(out[FormatDOT]), "digraph G {") {
		t.Errorf("DOT output = %q", out[FormatDOT])
	}

	if _, err := Render(context.Background(), res.Tree, RenderOptions{Formats: []string{"gif"}}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("unsupported format error = %v, want INVALID_INPUT", err)
	}
}

type recordingSimulationHooks struct {
	observability.NoopSimulationHooks
	starts, completes, lastN int
}

func (h *recordingSimulationHooks) OnSimulateStart(_ context.Context, n int) {
	h.starts++
	h.lastN = n
}

func (h *recordingSimulationHooks) OnSimulateComplete(context.Context, int, int, float64, time.Duration, error) {
	h.completes++
}

type recordingCacheHooks struct {
	mu     sync.Mutex
	events []string
}

func (h *recordingCacheHooks) record(ev string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, ev)
}

func (h *recordingCacheHooks) count(ev string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, e := range h.events {
		if e == ev {
			n++
		}
	}
	return n
}

func (h *recordingCacheHooks) OnCacheHit(context.Context, string)      { h.record("hit") }
func (h *recordingCacheHooks) OnCacheMiss(context.Context, string)     { h.record("miss") }
func (h *recordingCacheHooks) OnCacheSet(context.Context, string, int) { h.record("set") }

func writeString(path, s string) error {
	return os.WriteFile(path, []byte(s), 0o644)
}
