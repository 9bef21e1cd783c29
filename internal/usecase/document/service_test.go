package document

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kailas-cloud/hybridsearch/internal/domain"
	domdoc "github.com/kailas-cloud/hybridsearch/internal/domain/document"
)

type mockRepo struct {
	mu     sync.Mutex
	nextID int64
	titles []string
	err    error
	failOn string
}

func (m *mockRepo) Insert(_ context.Context, doc *domdoc.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.failOn != "" && doc.Title() == m.failOn {
		return domain.ErrStore
	}
	m.nextID++
	doc.SetID(m.nextID)
	m.titles = append(m.titles, doc.Title())
	return nil
}

type mockEmbedder struct {
	mu     sync.Mutex
	dim    int
	err    error
	failOn string
	texts  []string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.mu.Lock()
	m.texts = append(m.texts, text)
	m.mu.Unlock()
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	if m.failOn != "" && strings.HasPrefix(text, m.failOn) {
		return domain.EmbeddingResult{}, errors.New("rate limited")
	}
	return domain.EmbeddingResult{Embedding: make([]float32, m.dim), TotalTokens: 5}, nil
}

func newService(t *testing.T, repo Repository, embed Embedder, dim int) *Service {
	t.Helper()
	svc, err := New(repo, embed, dim, 2, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(svc.Release)
	return svc
}

func TestInsert(t *testing.T) {
	repo := &mockRepo{}
	embed := &mockEmbedder{dim: 4}
	svc := newService(t, repo, embed, 4)

	doc, err := svc.Insert(context.Background(), "Margherita", "Tomato, mozzarella, basil")
	require.NoError(t, err)

	assert.Equal(t, int64(1), doc.ID())
	assert.Equal(t, "Margherita", doc.Title())
	assert.Len(t, doc.Embedding(), 4)
	assert.Equal(t, []string{"Margherita Tomato, mozzarella, basil"}, embed.texts)
}

func TestInsert_Validation(t *testing.T) {
	embed := &mockEmbedder{dim: 4}
	svc := newService(t, &mockRepo{}, embed, 4)

	_, err := svc.Insert(context.Background(), "", "body")
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Insert(context.Background(), "title", "   ")
	require.ErrorIs(t, err, domain.ErrValidation)

	assert.Empty(t, embed.texts, "invalid documents must not be embedded")
}

func TestInsert_EmbeddingError(t *testing.T) {
	repo := &mockRepo{}
	svc := newService(t, repo, &mockEmbedder{err: errors.New("connection refused")}, 4)

	_, err := svc.Insert(context.Background(), "title", "body")
	require.ErrorIs(t, err, domain.ErrEmbeddingProviderError)
	assert.Empty(t, repo.titles)
}

func TestInsert_DimensionMismatch(t *testing.T) {
	repo := &mockRepo{}
	svc := newService(t, repo, &mockEmbedder{dim: 3}, 4)

	_, err := svc.Insert(context.Background(), "title", "body")
	require.ErrorIs(t, err, domain.ErrVectorDimMismatch)
	assert.Empty(t, repo.titles)
}

func TestInsert_StoreError(t *testing.T) {
	svc := newService(t, &mockRepo{err: domain.ErrStore}, &mockEmbedder{dim: 4}, 4)

	_, err := svc.Insert(context.Background(), "title", "body")
	require.ErrorIs(t, err, domain.ErrStore)
}

func TestInsertBatch(t *testing.T) {
	repo := &mockRepo{}
	embed := &mockEmbedder{dim: 2}
	svc := newService(t, repo, embed, 2)

	drafts := []Draft{
		{Title: "one", Body: "first"},
		{Title: "two", Body: "second"},
		{Title: "three", Body: "third"},
		{Title: "four", Body: "fourth"},
		{Title: "five", Body: "fifth"},
	}
	results := svc.InsertBatch(context.Background(), drafts)
	require.Len(t, results, len(drafts))

	for i, r := range results {
		require.NoError(t, r.Err, "item %d", i)
		assert.Equal(t, int64(i+1), r.Document.ID(), "ids follow input order")
		assert.Equal(t, drafts[i].Title, r.Document.Title())
	}
	assert.Equal(t, []string{"one", "two", "three", "four", "five"}, repo.titles)
	assert.Len(t, embed.texts, len(drafts))
}

func TestInsertBatch_PartialFailure(t *testing.T) {
	repo := &mockRepo{failOn: "store-fail"}
	embed := &mockEmbedder{dim: 2, failOn: "embed-fail"}
	svc := newService(t, repo, embed, 2)

	results := svc.InsertBatch(context.Background(), []Draft{
		{Title: "ok-1", Body: "b"},
		{Title: "embed-fail", Body: "b"},
		{Title: "", Body: "b"},
		{Title: "store-fail", Body: "b"},
		{Title: "ok-2", Body: "b"},
	})
	require.Len(t, results, 5)

	assert.NoError(t, results[0].Err)
	assert.ErrorIs(t, results[1].Err, domain.ErrEmbeddingProviderError)
	assert.ErrorIs(t, results[2].Err, domain.ErrValidation)
	assert.ErrorIs(t, results[3].Err, domain.ErrStore)
	assert.NoError(t, results[4].Err)

	assert.Equal(t, int64(1), results[0].Document.ID())
	assert.Equal(t, int64(2), results[4].Document.ID())
	assert.Equal(t, []string{"ok-1", "ok-2"}, repo.titles)
}

func TestInsertBatch_Empty(t *testing.T) {
	svc := newService(t, &mockRepo{}, &mockEmbedder{dim: 2}, 2)
	assert.Empty(t, svc.InsertBatch(context.Background(), nil))
}
