package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/kailas-cloud/hybridsearch/internal/db"
)

// wrapErr attaches the operation name. pgvector dimension errors map to db.ErrDimensionMismatch.
func wrapErr(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && isDimensionError(pqErr) {
		return &db.Error{Op: op, Err: fmt.Errorf("%w: %s", db.ErrDimensionMismatch, pqErr.Message)}
	}
	return &db.Error{Op: op, Err: err}
}

// isDimensionError matches pgvector's "expected N dimensions, not M" data exception.
func isDimensionError(e *pq.Error) bool {
	return e.Code.Class() == "22" && strings.Contains(e.Message, "dimensions")
}
