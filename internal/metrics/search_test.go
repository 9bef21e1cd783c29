package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterSearchMetrics_Idempotent(t *testing.T) {
	RegisterSearchMetrics()
	RegisterSearchMetrics() // second call must not panic on duplicate registration

	SearchCandidatesTotal.WithLabelValues("lexical").Add(3)
	if got := testutil.ToFloat64(SearchCandidatesTotal.WithLabelValues("lexical")); got < 3 {
		t.Errorf("expected lexical candidates >= 3, got %v", got)
	}
}

func TestRegisterEmbeddingMetrics_Idempotent(t *testing.T) {
	RegisterEmbeddingMetrics()
	RegisterEmbeddingMetrics()

	EmbeddingCacheTotal.WithLabelValues("hit").Inc()
	if got := testutil.ToFloat64(EmbeddingCacheTotal.WithLabelValues("hit")); got < 1 {
		t.Errorf("expected cache hits >= 1, got %v", got)
	}
}

func TestRegisterHTTPMetrics_Idempotent(t *testing.T) {
	RegisterHTTPMetrics()
	RegisterHTTPMetrics()
}
