package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/hybridsearch/internal/db"
)

// InsertDocument allocates an id from the sequence key and writes the document hash.
// A nil embedding stores the document without a vector, so KNN never returns it.
func (s *Store) InsertDocument(ctx context.Context, row *db.DocumentRow) (int64, error) {
	if row.Embedding != nil && len(row.Embedding) != s.dim {
		return 0, fmt.Errorf("insert: %w: got %d, want %d",
			db.ErrDimensionMismatch, len(row.Embedding), s.dim)
	}

	id, err := s.do(ctx, s.b().Incr().Key(s.prefix+"seq").Build()).AsInt64()
	if err != nil {
		return 0, &db.Error{Op: db.OpIncr, Err: err}
	}

	fv := s.b().Hset().Key(s.docKey(id)).FieldValue().
		FieldValue(fieldTitle, row.Title).
		FieldValue(fieldBody, row.Body)
	if row.Embedding != nil {
		fv = fv.FieldValue(fieldEmbedding, vectorToBytes(row.Embedding))
	}
	if err := s.do(ctx, fv.Build()).Error(); err != nil {
		return 0, &db.Error{Op: db.OpHSet, Err: err}
	}
	return id, nil
}

func (s *Store) docKey(id int64) string {
	return s.prefix + strconv.FormatInt(id, 10)
}

// parseDocKey extracts the numeric id from a document hash key.
func (s *Store) parseDocKey(key string) (int64, error) {
	if len(key) <= len(s.prefix) || key[:len(s.prefix)] != s.prefix {
		return 0, fmt.Errorf("unexpected key %q", key)
	}
	return strconv.ParseInt(key[len(s.prefix):], 10, 64)
}
