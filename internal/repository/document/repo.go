package document

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/hybridsearch/internal/db"
	"github.com/kailas-cloud/hybridsearch/internal/domain"
	domdoc "github.com/kailas-cloud/hybridsearch/internal/domain/document"
)

// store is the consumer interface for documents (ISP).
type store interface {
	InsertDocument(ctx context.Context, row *db.DocumentRow) (int64, error)
}

// Repo implements usecase/document.Repository.
type Repo struct {
	store store
}

// New creates a document repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Insert persists doc and records the assigned id on it.
func (r *Repo) Insert(ctx context.Context, doc *domdoc.Document) error {
	id, err := r.store.InsertDocument(ctx, &db.DocumentRow{
		Title:     doc.Title(),
		Body:      doc.Body(),
		Embedding: doc.Embedding(),
	})
	if err != nil {
		if errors.Is(err, db.ErrDimensionMismatch) {
			return fmt.Errorf("insert document: %w: %w", domain.ErrVectorDimMismatch, err)
		}
		return fmt.Errorf("insert document: %w: %w", domain.ErrStore, err)
	}
	doc.SetID(id)
	return nil
}
