package document

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/hybridsearch/internal/domain"
	domdoc "github.com/kailas-cloud/hybridsearch/internal/domain/document"
	"github.com/kailas-cloud/hybridsearch/internal/metrics"
)

// DefaultWorkers is the embedding pool size for batch ingestion.
const DefaultWorkers = 4

// Draft is an unsaved document as submitted by a caller.
type Draft struct {
	Title string `yaml:"title" json:"title"`
	Body  string `yaml:"body" json:"body"`
}

// Result is the per-item outcome of a batch insert.
type Result struct {
	Document domdoc.Document
	Err      error
}

// Service ingests documents: validate, vectorize, store.
type Service struct {
	repo   Repository
	embed  Embedder
	dim    int
	pool   *ants.Pool
	logger *zap.Logger
}

// New creates a document service. dim is the expected embedding dimension (0 disables the check);
// workers sizes the batch embedding pool.
func New(repo Repository, embed Embedder, dim, workers int, logger *zap.Logger) (*Service, error) {
	if workers < 1 {
		workers = DefaultWorkers
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("create ingest pool: %w", err)
	}
	return &Service{repo: repo, embed: embed, dim: dim, pool: pool, logger: logger}, nil
}

// Release stops the embedding pool. The service must not be used afterwards.
func (s *Service) Release() {
	s.pool.Release()
}

// Insert validates, vectorizes, and stores a single document.
func (s *Service) Insert(ctx context.Context, title, body string) (domdoc.Document, error) {
	doc, err := s.prepare(ctx, title, body)
	if err != nil {
		s.observe(err)
		return domdoc.Document{}, err
	}
	err = s.store(ctx, &doc)
	s.observe(err)
	if err != nil {
		return domdoc.Document{}, err
	}
	return doc, nil
}

// InsertBatch vectorizes drafts concurrently on the worker pool, then stores them in input order.
// Failures are reported per item and do not abort the rest of the batch.
func (s *Service) InsertBatch(ctx context.Context, drafts []Draft) []Result {
	results := make([]Result, len(drafts))
	docs := make([]domdoc.Document, len(drafts))

	var wg sync.WaitGroup
	for i, d := range drafts {
		wg.Add(1)
		err := s.pool.Submit(func() {
			defer wg.Done()
			doc, err := s.prepare(ctx, d.Title, d.Body)
			docs[i] = doc
			results[i].Err = err
		})
		if err != nil {
			wg.Done()
			results[i].Err = fmt.Errorf("submit embedding task: %w", err)
		}
	}
	wg.Wait()

	for i := range drafts {
		if results[i].Err == nil {
			if err := s.store(ctx, &docs[i]); err != nil {
				results[i].Err = err
			} else {
				results[i].Document = docs[i]
			}
		}
		s.observe(results[i].Err)
		if results[i].Err != nil {
			s.logger.Warn("Batch item failed",
				zap.Int("index", i),
				zap.String("title", drafts[i].Title),
				zap.Error(results[i].Err),
			)
		}
	}
	return results
}

func (s *Service) prepare(ctx context.Context, title, body string) (domdoc.Document, error) {
	doc, err := domdoc.New(title, body)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("validate document: %w", err)
	}

	res, err := s.embed.Embed(ctx, doc.EmbeddingText())
	if err != nil {
		if !errors.Is(err, domain.ErrEmbeddingProviderError) {
			err = fmt.Errorf("%w: %w", domain.ErrEmbeddingProviderError, err)
		}
		return domdoc.Document{}, fmt.Errorf("vectorize document: %w", err)
	}

	if err := doc.SetEmbedding(res.Embedding, s.dim); err != nil {
		return domdoc.Document{}, fmt.Errorf("vectorize document: %w", err)
	}
	return doc, nil
}

func (s *Service) store(ctx context.Context, doc *domdoc.Document) error {
	if err := s.repo.Insert(ctx, doc); err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (s *Service) observe(err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.DocumentsIngestedTotal.WithLabelValues(status).Inc()
}
