package postgres

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/hybridsearch/internal/db"
)

// maxHNSWDimensions is the largest vector(n) pgvector can build an HNSW index on.
// Wider embeddings are searched by exact scan.
const maxHNSWDimensions = 2000

// migrations returns the idempotent schema statements for the given dimension.
func migrations(dim int) []string {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS documents (
	id SERIAL PRIMARY KEY,
	title TEXT NOT NULL,
	body TEXT NOT NULL,
	embedding vector(%d)
)`, dim),
		`CREATE INDEX IF NOT EXISTS idx_documents_fts ON documents
	USING GIN (to_tsvector('english', title || ' ' || body))`,
	}
	if dim <= maxHNSWDimensions {
		stmts = append(stmts, `CREATE INDEX IF NOT EXISTS idx_documents_embedding ON documents
	USING hnsw (embedding vector_cosine_ops)`)
	}
	return stmts
}

// Migrate creates the pgvector extension, the documents table and its indexes.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range migrations(s.dim) {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return wrapErr(db.OpMigrate, err)
		}
	}
	return nil
}
