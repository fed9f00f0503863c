package observability

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusHooks implements [SimulationHooks] and [CacheHooks] with
// Prometheus collectors on a private registry. The CLI is short-lived, so
// metrics are written once to a node_exporter textfile instead of served.
type PrometheusHooks struct {
	registry    *prometheus.Registry
	simulations *prometheus.CounterVec
	duration    prometheus.Histogram
	tmrca       prometheus.Histogram
	mutations   prometheus.Histogram
	batches     *prometheus.CounterVec
	cacheOps    *prometheus.CounterVec
	cacheBytes  prometheus.Counter
}

// NewPrometheusHooks creates the collectors and registers them on a new
// registry. Each call is independent.
func NewPrometheusHooks() *PrometheusHooks {
	h := &PrometheusHooks{
		registry: prometheus.NewRegistry(),
		simulations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "coalsim_simulations_total",
			Help: "Genealogies simulated or restored, by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "coalsim_simulation_duration_seconds",
			Help:    "Wall time per genealogy.",
			Buckets: prometheus.ExponentialBuckets(1e-5, 4, 10),
		}),
		tmrca: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "coalsim_tmrca",
			Help:    "Time to the most recent common ancestor of each genealogy.",
			Buckets: prometheus.LinearBuckets(0.25, 0.25, 16),
		}),
		mutations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "coalsim_segregating_sites",
			Help:    "Mutations recorded per genealogy.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
		batches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "coalsim_batches_total",
			Help: "Replicate batches run, by outcome.",
		}, []string{"outcome"}),
		cacheOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "coalsim_cache_operations_total",
			Help: "Cache lookups and writes, by key type and operation.",
		}, []string{"key_type", "op"}),
		cacheBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "coalsim_cache_written_bytes_total",
			Help: "Bytes written to the cache.",
		}),
	}
	h.registry.MustRegister(h.simulations, h.duration, h.tmrca, h.mutations, h.batches, h.cacheOps, h.cacheBytes)
	return h
}

// Registry exposes the underlying registry, e.g. for tests or an HTTP handler.
func (h *PrometheusHooks) Registry() *prometheus.Registry { return h.registry }

// WriteTextfile writes all metrics in the text exposition format to path,
// atomically replacing any existing file.
func (h *PrometheusHooks) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, h.registry); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}

func (h *PrometheusHooks) OnSimulateStart(context.Context, int) {}

func (h *PrometheusHooks) OnSimulateComplete(_ context.Context, _ int, mutations int, tmrca float64, duration time.Duration, err error) {
	h.simulations.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		return
	}
	h.duration.Observe(duration.Seconds())
	h.tmrca.Observe(tmrca)
	h.mutations.Observe(float64(mutations))
}

func (h *PrometheusHooks) OnBatchComplete(_ context.Context, _ int, _ time.Duration, err error) {
	h.batches.WithLabelValues(outcome(err)).Inc()
}

func (h *PrometheusHooks) OnCacheHit(_ context.Context, keyType string) {
	h.cacheOps.WithLabelValues(keyType, "hit").Inc()
}

func (h *PrometheusHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.cacheOps.WithLabelValues(keyType, "miss").Inc()
}

func (h *PrometheusHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.cacheOps.WithLabelValues(keyType, "set").Inc()
	h.cacheBytes.Add(float64(size))
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

var (
	_ SimulationHooks = (*PrometheusHooks)(nil)
	_ CacheHooks      = (*PrometheusHooks)(nil)
)
