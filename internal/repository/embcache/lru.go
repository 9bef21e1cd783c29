package embcache

import (
	"context"
	"slices"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/kailas-cloud/hybridsearch/internal/db"
)

// LRUStore is an in-process bounded cache for single-replica deployments.
type LRUStore struct {
	entries *expirable.LRU[string, []byte]
}

// NewLRUStore keeps at most size entries, each for at most ttl (zero: until evicted).
func NewLRUStore(size int, ttl time.Duration) *LRUStore {
	if size <= 0 {
		size = 1024
	}
	return &LRUStore{entries: expirable.NewLRU[string, []byte](size, nil, ttl)}
}

// Get returns db.ErrKeyNotFound on a miss.
func (s *LRUStore) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := s.entries.Get(key)
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

// SetWithTTL stores a copy of value. The per-call ttl is ignored; the store-wide TTL applies.
func (s *LRUStore) SetWithTTL(_ context.Context, key string, value []byte, _ time.Duration) error {
	s.entries.Add(key, slices.Clone(value))
	return nil
}

// Len reports the number of live entries.
func (s *LRUStore) Len() int {
	return s.entries.Len()
}
