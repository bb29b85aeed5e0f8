package pathmatch

import (
	"sync"
	"time"

	"github.com/codahale/hdrhistogram"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects per-call Match instrumentation, exposed both as
// Prometheus series (for scraping) and an in-process HDR histogram of
// latency (for cheap percentile queries from cmd/fuzzyfind's -bench
// mode), per SPEC_FULL.md §3.4.
type Metrics struct {
	mu         sync.Mutex
	latencyHDR *hdrhistogram.Histogram

	latency    prometheus.Histogram
	candidates *prometheus.CounterVec
}

// NewMetrics constructs a Metrics registered against reg, or
// unregistered if reg is nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	latency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "fuzzymatch",
		Subsystem: "pathmatch",
		Name:      "match_paths_latency_seconds",
		Help:      "Latency of a single Match call.",
		Buckets:   prometheus.ExponentialBuckets(0.00005, 2, 20),
	})
	candidates := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fuzzymatch",
		Subsystem: "pathmatch",
		Name:      "candidates_total",
		Help:      "Candidate paths considered by Match, by outcome.",
	}, []string{"outcome"})
	if reg != nil {
		reg.MustRegister(latency, candidates)
	}
	return &Metrics{
		latencyHDR: hdrhistogram.New(0, (10 * time.Second).Microseconds(), 3),
		latency:    latency,
		candidates: candidates,
	}
}

// observe records one Match call's wall-clock duration and how many
// candidates it scored versus pruned via the superset filter.
func (m *Metrics) observe(elapsed time.Duration, scored, pruned int64) {
	m.latency.Observe(elapsed.Seconds())
	m.candidates.WithLabelValues("scored").Add(float64(scored))
	m.candidates.WithLabelValues("pruned").Add(float64(pruned))

	m.mu.Lock()
	_ = m.latencyHDR.RecordValue(elapsed.Microseconds())
	m.mu.Unlock()
}

// Percentile returns the p-th percentile (0-100) of observed Match
// latency, in microseconds, across the lifetime of this Metrics value.
func (m *Metrics) Percentile(p float64) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.latencyHDR.ValueAtQuantile(p)
}
