package observability

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	s := NoopSimulationHooks{}
	s.OnSimulateStart(ctx, 10)
	s.OnSimulateComplete(ctx, 10, 7, 1.5, time.Millisecond, nil)
	s.OnBatchComplete(ctx, 100, time.Second, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "tree")
	c.OnCacheMiss(ctx, "tree")
	c.OnCacheSet(ctx, "batch", 1024)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Simulation().(NoopSimulationHooks); !ok {
		t.Error("Simulation() should return NoopSimulationHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}

	customSim := &testSimulationHooks{}
	SetSimulationHooks(customSim)
	if Simulation() != customSim {
		t.Error("SetSimulationHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	Reset()
	if _, ok := Simulation().(NoopSimulationHooks); !ok {
		t.Error("Reset() should restore NoopSimulationHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testSimulationHooks{}
	SetSimulationHooks(custom)
	SetSimulationHooks(nil)
	if Simulation() != custom {
		t.Error("SetSimulationHooks(nil) should be ignored")
	}
}

func TestPrometheusHooks(t *testing.T) {
	ctx := context.Background()
	h := NewPrometheusHooks()

	h.OnSimulateStart(ctx, 10)
	h.OnSimulateComplete(ctx, 10, 12, 1.8, 3*time.Millisecond, nil)
	h.OnSimulateComplete(ctx, 10, 0, 0, 0, errors.New("boom"))
	h.OnBatchComplete(ctx, 2, time.Second, nil)
	h.OnCacheMiss(ctx, "tree")
	h.OnCacheSet(ctx, "tree", 512)
	h.OnCacheHit(ctx, "tree")
	h.OnCacheHit(ctx, "tree")

	if got := testutil.ToFloat64(h.simulations.WithLabelValues("ok")); got != 1 {
		t.Errorf("ok simulations = %v, want 1", got)
	}
	if got := testutil.ToFloat64(h.simulations.WithLabelValues("error")); got != 1 {
		t.Errorf("failed simulations = %v, want 1", got)
	}
	if got := testutil.ToFloat64(h.cacheOps.WithLabelValues("tree", "hit")); got != 2 {
		t.Errorf("cache hits = %v, want 2", got)
	}
	if got := testutil.ToFloat64(h.cacheBytes); got != 512 {
		t.Errorf("cache bytes = %v, want 512", got)
	}
	if got := testutil.CollectAndCount(h.tmrca); got != 1 {
		t.Errorf("tmrca series = %d, want 1", got)
	}
}

func TestPrometheusHooksIndependentRegistries(t *testing.T) {
	a, b := NewPrometheusHooks(), NewPrometheusHooks()
	a.OnBatchComplete(context.Background(), 1, 0, nil)
	if got := testutil.ToFloat64(b.batches.WithLabelValues("ok")); got != 0 {
		t.Errorf("second registry saw %v batches", got)
	}
}

func TestWriteTextfile(t *testing.T) {
	h := NewPrometheusHooks()
	h.OnSimulateComplete(context.Background(), 5, 3, 0.9, time.Millisecond, nil)

	path := filepath.Join(t.TempDir(), "coalsim.prom")
	if err := h.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		`coalsim_simulations_total{outcome="ok"} 1`,
		"coalsim_tmrca_count 1",
		"coalsim_segregating_sites_sum 3",
	} {
		if !strings.Contains(string(data), want) {
			t.Errorf("textfile missing %q", want)
		}
	}

	if err := h.WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom")); err == nil {
		t.Error("WriteTextfile into missing directory should fail")
	}
}

type testSimulationHooks struct{ NoopSimulationHooks }
type testCacheHooks struct{ NoopCacheHooks }
