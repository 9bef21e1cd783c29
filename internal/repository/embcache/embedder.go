// Package embcache caches embedding vectors in a key-value store keyed by a hash of the text.
package embcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/kailas-cloud/hybridsearch/internal/db"
	"github.com/kailas-cloud/hybridsearch/internal/domain"
)

// DefaultKeyPrefix namespaces cache entries in a shared key-value store.
const DefaultKeyPrefix = "hybridsearch:emb_cache:"

// store is the consumer interface for the embedding cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// DefaultCallTimeout bounds a provider call shared by coalesced callers.
const DefaultCallTimeout = 30 * time.Second

// Options tune cache keys and expiry.
type Options struct {
	// KeyPrefix is prepended to every key; it should include the model name
	// so a model switch never serves stale vectors.
	KeyPrefix string
	// TTL of a cached vector; zero keeps entries until evicted.
	TTL time.Duration
	// Dimensions, when positive, rejects cached vectors of any other length.
	Dimensions int
	// CallTimeout bounds the provider call on a miss. The call is detached from
	// the caller that started it, so it needs its own limit. Zero means DefaultCallTimeout.
	CallTimeout time.Duration
}

// CachedEmbedder caches embeddings and coalesces concurrent misses for the same text
// into a single provider call.
type CachedEmbedder struct {
	inner      domain.Embedder
	store      store
	opts       Options
	inflight   singleflight.Group
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// sharedEmbedding is the value handed to every caller of one coalesced call.
// The first caller to receive it claims the token counts.
type sharedEmbedding struct {
	result  domain.EmbeddingResult
	claimed atomic.Bool
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"/"shared"); nil disables counting.
func New(
	inner domain.Embedder,
	s store,
	opts Options,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedEmbedder {
	if opts.KeyPrefix == "" {
		opts.KeyPrefix = DefaultKeyPrefix
	}
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = DefaultCallTimeout
	}
	return &CachedEmbedder{
		inner:      inner,
		store:      s,
		opts:       opts,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Embed returns a cached embedding or calls the inner embedder.
//
// Concurrent misses for the same text share one provider call. That call runs
// outside any single caller's cancellation, bounded by Options.CallTimeout, and each
// caller stops waiting when its own context ends. Exactly one caller that receives
// the result reports its tokens; cache hits and the other callers report zero.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	key := c.cacheKey(text)

	if vec, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return domain.EmbeddingResult{Embedding: vec}, nil
	}

	ch := c.inflight.DoChan(key, func() (any, error) {
		return c.fetch(context.WithoutCancel(ctx), key, text)
	})

	select {
	case <-ctx.Done():
		return domain.EmbeddingResult{}, fmt.Errorf("embed text: %w", ctx.Err())
	case r := <-ch:
		if r.Err != nil {
			return domain.EmbeddingResult{}, fmt.Errorf("embed text: %w", r.Err)
		}
		shared := r.Val.(*sharedEmbedding) //nolint:forcetypeassert // only type stored in the group
		if shared.claimed.CompareAndSwap(false, true) {
			c.incCache("miss")
			return shared.result, nil
		}
		c.incCache("shared")
		return domain.EmbeddingResult{Embedding: shared.result.Embedding}, nil
	}
}

// fetch calls the provider under the call timeout and stores the vector.
func (c *CachedEmbedder) fetch(ctx context.Context, key, text string) (*sharedEmbedding, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.CallTimeout)
	defer cancel()

	result, err := c.inner.Embed(ctx, text)
	if err != nil {
		if ctx.Err() != nil && !errors.Is(err, domain.ErrEmbeddingProviderError) {
			// Waiting callers have live contexts; report the expiry as a provider failure.
			return nil, fmt.Errorf("%w: provider call exceeded %s: %w",
				domain.ErrEmbeddingProviderError, c.opts.CallTimeout, err)
		}
		return nil, err
	}
	c.putToCache(ctx, key, result.Embedding)
	return &sharedEmbedding{result: result}, nil
}

// HealthCheck forwards to the inner embedder; the cache itself is optional.
func (c *CachedEmbedder) HealthCheck(ctx context.Context) error {
	if hc, ok := c.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx) //nolint:wrapcheck // transparent decorator
	}
	return nil
}

func (c *CachedEmbedder) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *CachedEmbedder) cacheKey(text string) string {
	h := sha256.Sum256([]byte(text))
	return c.opts.KeyPrefix + hex.EncodeToString(h[:])
}

func (c *CachedEmbedder) getFromCache(ctx context.Context, key string) ([]float32, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached embedding", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}

	vec, err := decodeVector(data)
	if err != nil {
		c.logger.Warn("Failed to parse cached embedding", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if c.opts.Dimensions > 0 && len(vec) != c.opts.Dimensions {
		c.logger.Warn("Cached embedding has wrong dimensions",
			zap.String("key", key), zap.Int("got", len(vec)), zap.Int("want", c.opts.Dimensions))
		return nil, false
	}
	return vec, true
}

func (c *CachedEmbedder) putToCache(ctx context.Context, key string, vec []float32) {
	if err := c.store.SetWithTTL(ctx, key, encodeVector(vec), c.opts.TTL); err != nil {
		c.logger.Warn("Failed to cache embedding", zap.String("key", key), zap.Error(err))
	}
}
