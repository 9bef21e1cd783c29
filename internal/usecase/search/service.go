package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/hybridsearch/internal/domain"
	"github.com/kailas-cloud/hybridsearch/internal/domain/search/hit"
	"github.com/kailas-cloud/hybridsearch/internal/domain/search/mode"
	"github.com/kailas-cloud/hybridsearch/internal/domain/search/request"
	"github.com/kailas-cloud/hybridsearch/internal/domain/search/result"
	"github.com/kailas-cloud/hybridsearch/internal/logger"
	"github.com/kailas-cloud/hybridsearch/internal/metrics"
)

const (
	// DefaultOverfetchFactor multiplies the hybrid per-backend candidate limit.
	// It is also the minimum: smaller factors are raised to it.
	DefaultOverfetchFactor = 2
	// DefaultTimeout bounds a whole search request.
	DefaultTimeout = 10 * time.Second

	tracerName = "github.com/kailas-cloud/hybridsearch/internal/usecase/search"
)

// Config tunes the orchestrator. Zero values fall back to defaults.
// OverfetchFactor below DefaultOverfetchFactor is raised to it.
type Config struct {
	RRFK            int
	OverfetchFactor int
	Timeout         time.Duration
}

// Service handles document search across keyword, semantic, and hybrid modes.
type Service struct {
	repo      Repository
	embed     Embedder
	fuser     Fuser
	overfetch int
	timeout   time.Duration
	tracer    trace.Tracer
}

// New creates a search service.
func New(repo Repository, embed Embedder, cfg Config) *Service {
	overfetch := max(cfg.OverfetchFactor, DefaultOverfetchFactor)
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Service{
		repo:      repo,
		embed:     embed,
		fuser:     NewFuser(cfg.RRFK),
		overfetch: overfetch,
		timeout:   timeout,
		tracer:    otel.Tracer(tracerName),
	}
}

// WithTracerProvider overrides the global tracer provider for orchestrator spans.
func (s *Service) WithTracerProvider(tp trace.TracerProvider) *Service {
	if tp != nil {
		s.tracer = tp.Tracer(tracerName)
	}
	return s
}

// Search executes a validated request in its mode.
// The whole request is bounded by the configured timeout; expiry yields domain.ErrSearchTimeout.
func (s *Service) Search(ctx context.Context, req *request.Request) ([]result.Result, error) {
	start := time.Now()
	m := req.Mode()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var (
		results []result.Result
		err     error
	)
	switch m {
	case mode.Keyword:
		results, err = s.searchKeyword(ctx, req)
	case mode.Semantic:
		results, err = s.searchSemantic(ctx, req)
	case mode.Hybrid:
		results, err = s.searchHybrid(ctx, req)
	default:
		err = domain.NewValidationError("mode", fmt.Sprintf("unsupported search mode %q", m))
	}

	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, domain.ErrSearchTimeout) {
		err = fmt.Errorf("%w after %s: %w", domain.ErrSearchTimeout, s.timeout, err)
	}

	status := "ok"
	if err != nil {
		status = "error"
		if errors.Is(err, domain.ErrSearchTimeout) {
			status = "timeout"
		}
	}
	metrics.SearchDuration.WithLabelValues(string(m), status).Observe(time.Since(start).Seconds())

	if err != nil {
		logger.FromContext(ctx).Debug("Search failed",
			zap.String("mode", string(m)),
			zap.Error(err),
		)
		return nil, err
	}

	metrics.SearchResultsCount.WithLabelValues(string(m)).Observe(float64(len(results)))
	return results, nil
}

// searchKeyword ranks by lexical relevance only; the embedder is never called.
func (s *Service) searchKeyword(ctx context.Context, req *request.Request) ([]result.Result, error) {
	hits, err := s.lexical(ctx, req.Query(), req.Limit())
	if err != nil {
		return nil, err
	}
	results := make([]result.Result, 0, len(hits))
	for _, h := range hits {
		results = append(results, result.New(h.DocumentID, h.Title, h.Body, h.Score, h.Score, 0))
	}
	return results, nil
}

// searchSemantic embeds the query and ranks by cosine similarity.
func (s *Service) searchSemantic(ctx context.Context, req *request.Request) ([]result.Result, error) {
	vec, err := s.vectorize(ctx, req.Query())
	if err != nil {
		return nil, err
	}
	hits, err := s.vector(ctx, vec, req.Limit())
	if err != nil {
		return nil, err
	}
	results := make([]result.Result, 0, len(hits))
	for _, h := range hits {
		results = append(results, result.New(h.DocumentID, h.Title, h.Body, h.Score, 0, h.Score))
	}
	return results, nil
}

// searchHybrid runs the embedding and the lexical search concurrently, then the vector
// search, and fuses both rankings. Any failure fails the whole request.
func (s *Service) searchHybrid(ctx context.Context, req *request.Request) ([]result.Result, error) {
	candidates := req.Limit() * s.overfetch

	var lexicalHits, vectorHits []hit.Hit
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hits, err := s.lexical(gctx, req.Query(), candidates)
		if err != nil {
			return err
		}
		lexicalHits = hits
		return nil
	})

	g.Go(func() error {
		vec, err := s.vectorize(gctx, req.Query())
		if err != nil {
			return err
		}
		hits, err := s.vector(gctx, vec, candidates)
		if err != nil {
			return err
		}
		vectorHits = hits
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err //nolint:wrapcheck // branches already wrap
	}

	_, span := s.tracer.Start(ctx, "search.fuse", trace.WithAttributes(
		attribute.Int("search.lexical_candidates", len(lexicalHits)),
		attribute.Int("search.vector_candidates", len(vectorHits)),
		attribute.Int("search.rrf_k", s.fuser.K()),
	))
	defer span.End()

	return s.fuser.Fuse(lexicalHits, vectorHits, req.Limit()), nil
}

func (s *Service) vectorize(ctx context.Context, query string) ([]float32, error) {
	ctx, span := s.tracer.Start(ctx, "search.embed")
	defer span.End()

	res, err := s.embed.Embed(ctx, query)
	if err != nil {
		recordSpanError(span, err)
		if errors.Is(err, domain.ErrEmbeddingProviderError) || isContextErr(err) {
			return nil, fmt.Errorf("vectorize query: %w", err)
		}
		return nil, fmt.Errorf("vectorize query: %w: %w", domain.ErrEmbeddingProviderError, err)
	}
	span.SetAttributes(attribute.Int("embedding.dimensions", len(res.Embedding)))
	return res.Embedding, nil
}

func (s *Service) lexical(ctx context.Context, query string, limit int) ([]hit.Hit, error) {
	ctx, span := s.tracer.Start(ctx, "search.lexical", trace.WithAttributes(
		attribute.Int("search.limit", limit),
	))
	defer span.End()

	hits, err := s.repo.SearchLexical(ctx, query, limit)
	if err != nil {
		recordSpanError(span, err)
		return nil, fmt.Errorf("search lexical: %w", err)
	}
	metrics.SearchCandidatesTotal.WithLabelValues("lexical").Add(float64(len(hits)))
	span.SetAttributes(attribute.Int("search.hits", len(hits)))
	return hits, nil
}

func (s *Service) vector(ctx context.Context, vec []float32, limit int) ([]hit.Hit, error) {
	ctx, span := s.tracer.Start(ctx, "search.vector", trace.WithAttributes(
		attribute.Int("search.limit", limit),
		attribute.Int("search.dimensions", len(vec)),
	))
	defer span.End()

	hits, err := s.repo.SearchVector(ctx, vec, limit)
	if err != nil {
		recordSpanError(span, err)
		return nil, fmt.Errorf("search vector: %w", err)
	}
	metrics.SearchCandidatesTotal.WithLabelValues("vector").Add(float64(len(hits)))
	span.SetAttributes(attribute.Int("search.hits", len(hits)))
	return hits, nil
}

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func isContextErr(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}
