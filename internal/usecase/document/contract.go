package document

import (
	"context"

	"github.com/kailas-cloud/hybridsearch/internal/domain"
	domdoc "github.com/kailas-cloud/hybridsearch/internal/domain/document"
)

// Repository defines the storage contract for documents.
type Repository interface {
	Insert(ctx context.Context, doc *domdoc.Document) error
}

// Embedder vectorizes document text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
