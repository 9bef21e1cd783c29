package db

import "errors"

// Sentinel errors for database operations.
var (
	ErrKeyNotFound       = errors.New("db: key not found")
	ErrIndexExists       = errors.New("db: index already exists")
	ErrDimensionMismatch = errors.New("db: vector dimension mismatch")
)

// Op names used for error context. Redis ops are command names.
const (
	OpCreateIndex = "FT.CREATE"
	OpSearch      = "FT.SEARCH"
	OpHSet        = "HSET"
	OpIncr        = "INCR"
	OpGet         = "GET"
	OpSet         = "SET"
	OpPing        = "PING"
	OpMigrate     = "migrate"
	OpInsert      = "insert"
	OpTextSearch  = "text_search"
	OpKNNSearch   = "knn_search"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
