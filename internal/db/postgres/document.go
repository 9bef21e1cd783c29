package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kailas-cloud/hybridsearch/internal/db"
)

const insertDocumentSQL = `INSERT INTO documents (title, body, embedding)
VALUES ($1, $2, $3::vector) RETURNING id`

// InsertDocument stores a document and returns its SERIAL id.
// A nil embedding is stored as NULL and never appears in KNN results.
func (s *Store) InsertDocument(ctx context.Context, row *db.DocumentRow) (int64, error) {
	var emb sql.NullString
	if row.Embedding != nil {
		if len(row.Embedding) != s.dim {
			return 0, fmt.Errorf("insert: %w: got %d, want %d",
				db.ErrDimensionMismatch, len(row.Embedding), s.dim)
		}
		emb = sql.NullString{String: vectorLiteral(row.Embedding), Valid: true}
	}

	var id int64
	err := s.db.QueryRowContext(ctx, insertDocumentSQL, row.Title, row.Body, emb).Scan(&id)
	if err != nil {
		return 0, wrapErr(db.OpInsert, err)
	}
	return id, nil
}
