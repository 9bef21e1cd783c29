package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/hybridsearch/internal/db"
	"github.com/kailas-cloud/hybridsearch/internal/domain"
	"github.com/kailas-cloud/hybridsearch/internal/domain/search/hit"
)

// store is the consumer interface for search operations (ISP).
type store interface {
	SearchText(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Repo implements usecase/search.Repository.
type Repo struct {
	store store
}

// New creates a search repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// SearchLexical returns up to limit documents ranked by full-text relevance.
func (r *Repo) SearchLexical(ctx context.Context, query string, limit int) ([]hit.Hit, error) {
	sr, err := r.store.SearchText(ctx, &db.TextQuery{Query: query, TopK: limit})
	if err != nil {
		return nil, storeErr("search lexical", err)
	}
	return toHits(sr), nil
}

// SearchVector returns up to limit documents ranked by cosine similarity to vector.
func (r *Repo) SearchVector(ctx context.Context, vector []float32, limit int) ([]hit.Hit, error) {
	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{Vector: vector, K: limit})
	if err != nil {
		return nil, storeErr("search vector", err)
	}
	return toHits(sr), nil
}

func toHits(sr *db.SearchResult) []hit.Hit {
	if sr == nil || len(sr.Entries) == 0 {
		return []hit.Hit{}
	}
	hits := make([]hit.Hit, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		hits = append(hits, hit.Hit{DocumentID: e.ID, Title: e.Title, Body: e.Body, Score: e.Score})
	}
	return hits
}

// storeErr tags backend failures with domain.ErrStore. Context errors pass through
// unchanged so the caller can tell a deadline from a broken store.
func storeErr(op string, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return fmt.Errorf("%s: %w", op, err)
	case errors.Is(err, db.ErrDimensionMismatch):
		return fmt.Errorf("%s: %w: %w: %w", op, domain.ErrStore, domain.ErrVectorDimMismatch, err)
	default:
		return fmt.Errorf("%s: %w: %w", op, domain.ErrStore, err)
	}
}
