package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/hybridsearch/internal/db"
)

const searchTextSQL = `SELECT id, title, body,
	ts_rank(to_tsvector('english', title || ' ' || body), plainto_tsquery('english', $1)) AS score
FROM documents
WHERE to_tsvector('english', title || ' ' || body) @@ plainto_tsquery('english', $1)
ORDER BY score DESC, id ASC
LIMIT $2`

const searchKNNSQL = `SELECT id, title, body, 1 - (embedding <=> $1::vector) AS score
FROM documents
WHERE embedding IS NOT NULL
ORDER BY embedding <=> $1::vector, id ASC
LIMIT $2`

// SearchText ranks documents by ts_rank over title and body.
// Only documents matching every query lexeme are returned.
func (s *Store) SearchText(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error) {
	if strings.TrimSpace(q.Query) == "" {
		return nil, fmt.Errorf("query is required")
	}
	if q.TopK <= 0 {
		return nil, fmt.Errorf("topK must be positive")
	}

	rows, err := s.db.QueryContext(ctx, searchTextSQL, q.Query, q.TopK)
	if err != nil {
		return nil, wrapErr(db.OpTextSearch, err)
	}
	return scanEntries(rows, db.OpTextSearch)
}

// SearchKNN ranks documents by cosine similarity to the query vector, without a floor.
func (s *Store) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if len(q.Vector) == 0 {
		return nil, fmt.Errorf("vector is required")
	}
	if q.K <= 0 {
		return nil, fmt.Errorf("k must be positive")
	}
	if len(q.Vector) != s.dim {
		return nil, fmt.Errorf("knn: %w: got %d, want %d", db.ErrDimensionMismatch, len(q.Vector), s.dim)
	}

	rows, err := s.db.QueryContext(ctx, searchKNNSQL, vectorLiteral(q.Vector), q.K)
	if err != nil {
		return nil, wrapErr(db.OpKNNSearch, err)
	}
	return scanEntries(rows, db.OpKNNSearch)
}

func scanEntries(rows *sql.Rows, op string) (*db.SearchResult, error) {
	defer rows.Close()

	var entries []db.SearchEntry
	for rows.Next() {
		var e db.SearchEntry
		if err := rows.Scan(&e.ID, &e.Title, &e.Body, &e.Score); err != nil {
			return nil, wrapErr(op, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr(op, err)
	}
	return &db.SearchResult{Total: len(entries), Entries: entries}, nil
}

// vectorLiteral renders v in pgvector text form: [1,0.5,-2].
func vectorLiteral(v []float32) string {
	var sb strings.Builder
	sb.Grow(len(v)*10 + 2)
	sb.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatFloat(float64(f), 'f', -1, 32))
	}
	sb.WriteByte(']')
	return sb.String()
}
