// Package app wires stores, embedder chains and services from configuration.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/hybridsearch/internal/config"
	"github.com/kailas-cloud/hybridsearch/internal/db"
	dbMemory "github.com/kailas-cloud/hybridsearch/internal/db/memory"
	dbPostgres "github.com/kailas-cloud/hybridsearch/internal/db/postgres"
	dbRedis "github.com/kailas-cloud/hybridsearch/internal/db/redis"
	"github.com/kailas-cloud/hybridsearch/internal/domain"
	"github.com/kailas-cloud/hybridsearch/internal/metrics"
	"github.com/kailas-cloud/hybridsearch/internal/repository/embcache"
	openaiEmb "github.com/kailas-cloud/hybridsearch/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/hybridsearch/internal/usecase/embedding"
)

// OpenStore connects the configured document store, waits for it and applies the schema once.
func OpenStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (db.Store, error) {
	var (
		store db.Store
		err   error
	)
	dim := cfg.Embedding.Dimensions
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		store, err = dbPostgres.NewStore(dbPostgres.Config{
			URL:          cfg.Database.URL,
			Dimensions:   dim,
			MaxOpenConns: cfg.Database.MaxOpenConns,
		})
	case config.DriverRedis:
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:      cfg.Database.Addrs,
			Password:   cfg.Database.Password,
			Dimensions: dim,
		})
	case config.DriverMemory:
		store, err = dbMemory.NewStore(dim)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s store: %w", cfg.Database.Driver, err)
	}

	timeout := time.Duration(cfg.Database.ReadinessTimeout) * time.Second
	if err := store.WaitForReady(ctx, timeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	logger.Info("Connected to database")

	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	logger.Info("Schema ready", zap.Int("dimensions", dim))
	return store, nil
}

// NewProvider creates the OpenAI-compatible embedding provider.
func NewProvider(cfg *config.Config, logger *zap.Logger) *openaiEmb.Embedder {
	return openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:         cfg.Embedding.APIKey,
		BaseURL:        cfg.Embedding.BaseURL,
		Model:          cfg.Embedding.Model,
		Dimensions:     cfg.Embedding.Dimensions,
		SendDimensions: cfg.Embedding.SendDimensions,
		Provider:       cfg.Embedding.Provider,
		Timeout:        time.Duration(cfg.Embedding.TimeoutSec) * time.Second,
		Logger:         logger,
	})
}

// CacheStore is the key-value contract of the embedding cache.
type CacheStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// NewEmbeddingCache returns nil when caching is disabled.
func NewEmbeddingCache(cfg *config.Config, store db.Store) (CacheStore, error) {
	switch cfg.Embedding.Cache.Driver {
	case config.CacheNone:
		return nil, nil
	case config.CacheMemory:
		return embcache.NewLRUStore(cfg.Embedding.Cache.Size, cfg.CacheTTL()), nil
	case config.CacheRedis:
		kv, ok := store.(db.KVStore)
		if !ok {
			return nil, fmt.Errorf("store %T has no key-value support", store)
		}
		return kv, nil
	default:
		return nil, fmt.Errorf("unknown cache driver %q", cfg.Embedding.Cache.Driver)
	}
}

// BuildEmbedder assembles the decorator chain for one purpose (embeddinguc.PurposeQuery or
// PurposeDocument): OpenAI -> Cached -> Instrumented -> Instruction.
func BuildEmbedder(
	base domain.Embedder,
	cache CacheStore,
	cfg *config.Config,
	purpose string,
	logger *zap.Logger,
) domain.Embedder {
	embedder := base
	if cache != nil {
		embedder = embcache.New(base, cache, embcache.Options{
			KeyPrefix:   embcache.DefaultKeyPrefix + cfg.Embedding.Model + ":",
			TTL:         cfg.CacheTTL(),
			Dimensions:  cfg.Embedding.Dimensions,
			CallTimeout: time.Duration(cfg.Embedding.TimeoutSec) * time.Second,
		}, metrics.EmbeddingCacheTotal, logger)
	}

	embedder = embeddinguc.NewInstrumentedEmbedder(embedder, embeddinguc.Source{
		Provider: cfg.Embedding.Provider,
		Model:    cfg.Embedding.Model,
		Purpose:  purpose,
	}, logger)

	// Instruction prefix is outermost so the cache key includes it.
	if instruction := instructionFor(cfg, purpose); instruction != "" {
		return domain.NewInstructionEmbedder(embedder, instruction)
	}
	return embedder
}

func instructionFor(cfg *config.Config, purpose string) string {
	var p *string
	switch purpose {
	case embeddinguc.PurposeQuery:
		p = cfg.Embedding.QueryInstruction
	case embeddinguc.PurposeDocument:
		p = cfg.Embedding.DocumentInstruction
	}
	if p == nil {
		return ""
	}
	return *p
}

// EmbeddingHealthChecker wraps domain.Embedder to implement health.EmbeddingChecker.
type EmbeddingHealthChecker struct {
	embedder domain.Embedder
}

// NewEmbeddingHealthChecker creates a checker over the given chain.
func NewEmbeddingHealthChecker(embedder domain.Embedder) *EmbeddingHealthChecker {
	return &EmbeddingHealthChecker{embedder: embedder}
}

// HealthCheck forwards to the chain when it supports health checks.
func (h *EmbeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}
