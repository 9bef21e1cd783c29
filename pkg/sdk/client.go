package hybridsearch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/hybridsearch/internal/db"
	dbMemory "github.com/kailas-cloud/hybridsearch/internal/db/memory"
	dbPostgres "github.com/kailas-cloud/hybridsearch/internal/db/postgres"
	dbRedis "github.com/kailas-cloud/hybridsearch/internal/db/redis"
	"github.com/kailas-cloud/hybridsearch/internal/domain"
	domdoc "github.com/kailas-cloud/hybridsearch/internal/domain/document"
	"github.com/kailas-cloud/hybridsearch/internal/domain/search/request"
	"github.com/kailas-cloud/hybridsearch/internal/domain/search/result"
	documentrepo "github.com/kailas-cloud/hybridsearch/internal/repository/document"
	searchrepo "github.com/kailas-cloud/hybridsearch/internal/repository/search"
	documentuc "github.com/kailas-cloud/hybridsearch/internal/usecase/document"
	healthuc "github.com/kailas-cloud/hybridsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/hybridsearch/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces for substitution in tests.
type searchUseCase interface {
	Search(ctx context.Context, req *request.Request) ([]result.Result, error)
}

type documentUseCase interface {
	Insert(ctx context.Context, title, body string) (domdoc.Document, error)
	InsertBatch(ctx context.Context, drafts []documentuc.Draft) []documentuc.Result
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Client is the hybridsearch library entry point.
type Client struct {
	store     db.Store
	searchSvc searchUseCase
	docSvc    documentUseCase
	healthSvc healthUseCase
	release   func()
	obs       *observer

	hasEmbedder bool
}

// New creates a Client, connects to the store and applies its schema.
// The provided context bounds the readiness check and migration.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		queryInstruction:    DefaultInstruction,
		documentInstruction: DefaultInstruction,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.driver == "" {
		return nil, errors.New("hybridsearch: store required (use WithPostgres, WithRedis or WithMemory)")
	}
	if cfg.dimensions <= 0 {
		return nil, errors.New("hybridsearch: embedding dimensions required (use WithDimensions)")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("hybridsearch: store not ready: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("hybridsearch: migrate: %w", err)
	}

	c, err := wireClient(store, cfg, obs)
	if err != nil {
		store.Close()
		return nil, err
	}
	return c, nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	var (
		s   db.Store
		err error
	)
	switch cfg.driver {
	case driverPostgres:
		s, err = dbPostgres.NewStore(dbPostgres.Config{URL: cfg.url, Dimensions: cfg.dimensions})
	case driverRedis:
		s, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:      cfg.addrs,
			Password:   cfg.password,
			Dimensions: cfg.dimensions,
		})
	case driverMemory:
		s, err = dbMemory.NewStore(cfg.dimensions)
	default:
		return nil, fmt.Errorf("hybridsearch: unknown driver %q", cfg.driver)
	}
	if err != nil {
		return nil, fmt.Errorf("hybridsearch: create %s store: %w", cfg.driver, err)
	}
	return s, nil
}

func wireClient(store db.Store, cfg *clientConfig, obs *observer) (*Client, error) {
	// Without an embedder only keyword search works.
	var base domain.Embedder = noopEmbedder
	if cfg.embedder != nil {
		base = &embedderAdapter{inner: cfg.embedder}
	}
	queryEmb := domain.NewInstructionEmbedder(base, cfg.queryInstruction)
	docEmb := domain.NewInstructionEmbedder(base, cfg.documentInstruction)

	searchSvc := searchuc.New(searchrepo.New(store), queryEmb, searchuc.Config{
		RRFK:            cfg.rrfK,
		OverfetchFactor: cfg.overfetch,
		Timeout:         cfg.timeout,
	})

	docSvc, err := documentuc.New(documentrepo.New(store), docEmb, cfg.dimensions, cfg.workers, zap.NewNop())
	if err != nil {
		return nil, fmt.Errorf("hybridsearch: %w", err)
	}

	var checker healthuc.EmbeddingChecker
	if cfg.embedder != nil {
		checker = queryEmb
	}
	healthSvc := healthuc.New(store, checker, zap.NewNop())

	return &Client{
		store:     store,
		searchSvc: searchSvc,
		docSvc:    docSvc,
		healthSvc: healthSvc,
		release:   docSvc.Release,
		obs:       obs,

		hasEmbedder: cfg.embedder != nil,
	}, nil
}

// Close releases the worker pool and the store connection.
func (c *Client) Close() {
	if c.release != nil {
		c.release()
	}
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks store connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// embedderAdapter wraps the public Embedder to satisfy domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// HealthCheck forwards to the inner embedder when it implements HealthChecker.
func (a *embedderAdapter) HealthCheck(ctx context.Context) error {
	if hc, ok := a.inner.(HealthChecker); ok {
		return hc.HealthCheck(ctx) //nolint:wrapcheck // transparent adapter
	}
	return nil
}

// noopEmbedder fails every call; used when no embedder is configured.
var noopEmbedder = domain.EmbedderFunc(func(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{}, fmt.Errorf(
		"%w: embedder not configured (use WithEmbedder)", domain.ErrEmbeddingProviderError,
	)
})
