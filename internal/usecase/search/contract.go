package search

import (
	"context"

	"github.com/kailas-cloud/hybridsearch/internal/domain"
	"github.com/kailas-cloud/hybridsearch/internal/domain/search/hit"
)

// Repository defines the storage contract for the two retrieval paths.
// Both return hits ordered best-first; an empty slice is not an error.
type Repository interface {
	SearchLexical(ctx context.Context, query string, limit int) ([]hit.Hit, error)
	SearchVector(ctx context.Context, vector []float32, limit int) ([]hit.Hit, error)
}

// Embedder vectorizes the query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
