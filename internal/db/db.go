package db

import (
	"context"
	"time"
)

// Store is the main database facade combining all sub-interfaces.
//
//nolint:interfacebloat // facade; consumers depend on the narrow sub-interfaces
type Store interface {
	Pinger
	Migrator
	DocumentWriter
	Searcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Migrator creates the document schema and search indexes. Migrate is idempotent.
type Migrator interface {
	Migrate(ctx context.Context) error
}

// DocumentRow is the storage form of a document. Embedding may be nil.
type DocumentRow struct {
	Title     string
	Body      string
	Embedding []float32
}

// DocumentWriter persists documents and returns the store-assigned id.
type DocumentWriter interface {
	InsertDocument(ctx context.Context, row *DocumentRow) (int64, error)
}

// KVStore provides simple key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Searcher provides the two ranked retrieval paths.
type Searcher interface {
	SearchText(ctx context.Context, q *TextQuery) (*SearchResult, error)
	SearchKNN(ctx context.Context, q *KNNQuery) (*SearchResult, error)
}
