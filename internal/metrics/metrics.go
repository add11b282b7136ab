// Package metrics exposes Prometheus counters and histograms for the core
// packages (cache hit rate, search latency, install outcomes) without ever
// starting an HTTP server: callers dump the registry with WriteText instead.
package metrics

import (
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Registry is the process-wide collector set; a fresh one can be built for
// tests that want isolated counters.
var Registry = prometheus.NewRegistry()

var (
	// CacheHitsTotal counts named LRU cache lookups by outcome
	// ("hit"/"miss") and cache (the name given via WithName, e.g.
	// "catalog" or "search").
	CacheHitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Cache lookups by outcome and cache kind.",
	}, []string{"cache", "outcome"})

	// SearchDurationSeconds observes how long a Search/SearchSmart call took.
	SearchDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "search_duration_seconds",
		Help:    "Time spent executing a search query.",
		Buckets: prometheus.DefBuckets,
	})

	// InstallResultsTotal counts install outcomes by kind
	// ("success"/"failed"/"skipped").
	InstallResultsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "install_results_total",
		Help: "Install attempts by outcome.",
	}, []string{"outcome"})
)

func init() {
	Registry.MustRegister(CacheHitsTotal, SearchDurationSeconds, InstallResultsTotal)
}

// WriteText dumps every registered metric to w in Prometheus text exposition
// format, for a CLI caller to print or redirect to a file. No HTTP server is
// ever started by this package.
func WriteText(w io.Writer) error {
	families, err := Registry.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
