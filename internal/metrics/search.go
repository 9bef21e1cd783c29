package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Search and ingestion Prometheus metrics.
var (
	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Search request duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"mode", "status"},
	)

	SearchCandidatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_candidates_total",
			Help:      "Candidates returned by each retrieval backend",
		},
		[]string{"backend"}, // "lexical" / "vector"
	)

	SearchResultsCount = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_results",
			Help:      "Number of results returned per search",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100},
		},
		[]string{"mode"},
	)

	DocumentsIngestedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_ingested_total",
			Help:      "Documents inserted, by outcome",
		},
		[]string{"status"}, // "ok" / "error"
	)
)

var registerSearch sync.Once

// RegisterSearchMetrics registers search and ingestion collectors. Later calls are no-ops.
func RegisterSearchMetrics() {
	registerSearch.Do(func() {
		prometheus.MustRegister(
			SearchDuration,
			SearchCandidatesTotal,
			SearchResultsCount,
			DocumentsIngestedTotal,
		)
	})
}
