package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCacheHitsTotal_Increments(t *testing.T) {
	reg := prometheus.NewRegistry()
	hits := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "cache_hits_total"}, []string{"cache", "outcome"})
	reg.MustRegister(hits)

	hits.WithLabelValues("lru", "hit").Inc()
	hits.WithLabelValues("lru", "miss").Inc()
	hits.WithLabelValues("lru", "hit").Inc()

	if got := testutil.ToFloat64(hits.WithLabelValues("lru", "hit")); got != 2 {
		t.Errorf("got %v hits, want 2", got)
	}
	if got := testutil.ToFloat64(hits.WithLabelValues("lru", "miss")); got != 1 {
		t.Errorf("got %v misses, want 1", got)
	}
}

func TestSearchDurationSeconds_Observes(t *testing.T) {
	reg := prometheus.NewRegistry()
	hist := prometheus.NewHistogram(prometheus.HistogramOpts{Name: "search_duration_seconds"})
	reg.MustRegister(hist)

	hist.Observe(0.05)
	hist.Observe(0.1)

	if got := testutil.CollectAndCount(hist); got != 1 {
		t.Errorf("got %d collected metrics, want 1 histogram", got)
	}
}

func TestInstallResultsTotal_Increments(t *testing.T) {
	reg := prometheus.NewRegistry()
	results := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "install_results_total"}, []string{"outcome"})
	reg.MustRegister(results)

	results.WithLabelValues("success").Inc()
	results.WithLabelValues("failed").Inc()

	if got := testutil.ToFloat64(results.WithLabelValues("success")); got != 1 {
		t.Errorf("got %v successes, want 1", got)
	}
}

func TestWriteText_DefaultRegistry(t *testing.T) {
	CacheHitsTotal.WithLabelValues("lru", "hit").Inc()
	SearchDurationSeconds.Observe(0.2)
	InstallResultsTotal.WithLabelValues("skipped").Inc()

	out := &strings.Builder{}
	if err := WriteText(out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text := out.String()
	for _, name := range []string{"cache_hits_total", "search_duration_seconds", "install_results_total"} {
		if !strings.Contains(text, name) {
			t.Errorf("expected %s in exposition output", name)
		}
	}
}
