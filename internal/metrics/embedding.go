// Package metrics defines the Prometheus collectors of the service.
// Collectors are package variables; each group is registered explicitly from main.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "hybridsearch"

// Provider-level embedding metrics, recorded by transport/openai.
var (
	EmbeddingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "embedding",
			Name:      "requests_total",
			Help:      "Embedding provider requests by outcome",
		},
		[]string{"provider", "model", "status"},
	)

	EmbeddingRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "embedding",
			Name:      "request_duration_seconds",
			Help:      "Embedding provider round trip in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"provider", "model"},
	)

	EmbeddingTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "embedding",
			Name:      "tokens_total",
			Help:      "Tokens billed by the embedding provider",
		},
		[]string{"provider", "model", "type"}, // "prompt" / "total"
	)

	EmbeddingErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "embedding",
			Name:      "errors_total",
			Help:      "Embedding provider errors by kind",
		},
		[]string{"provider", "model", "error_type"},
	)
)

// Chain-level embedding metrics.
var (
	// EmbeddingCallsTotal counts embeddings requested by the use cases, cache hits included.
	EmbeddingCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "embedding",
			Name:      "calls_total",
			Help:      "Embeddings requested by purpose and outcome",
		},
		[]string{"purpose", "status"}, // "query" / "document"
	)

	EmbeddingInputBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "embedding",
			Name:      "input_bytes",
			Help:      "Size of the text sent for embedding",
			Buckets:   prometheus.ExponentialBuckets(16, 4, 8),
		},
		[]string{"purpose"},
	)

	EmbeddingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "embedding",
			Name:      "cache_total",
			Help:      "Embedding cache lookups",
		},
		[]string{"result"}, // "hit" / "miss" / "shared"
	)
)

var registerEmbedding sync.Once

// RegisterEmbeddingMetrics registers the embedding collectors on the default registry.
// Later calls are no-ops.
func RegisterEmbeddingMetrics() {
	registerEmbedding.Do(func() {
		prometheus.MustRegister(
			EmbeddingRequestsTotal,
			EmbeddingRequestDuration,
			EmbeddingTokensTotal,
			EmbeddingErrorsTotal,
			EmbeddingCallsTotal,
			EmbeddingInputBytes,
			EmbeddingCacheTotal,
		)
	})
}
