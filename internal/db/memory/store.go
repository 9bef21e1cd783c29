// Package memory implements db.Store in process: a bleve index with the
// english analyzer for lexical search and a coder/hnsw cosine graph for KNN.
// Nothing is persisted; it backs local development and tests.
package memory

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/coder/hnsw"

	"github.com/kailas-cloud/hybridsearch/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

var errClosed = errors.New("memory store is closed")

// textField is the single analyzed field; title and body are indexed together.
const textField = "text"

type document struct {
	title     string
	body      string
	embedding []float32 // nil when inserted without one
}

type bleveDoc struct {
	Text string `json:"text"`
}

// Store keeps documents in maps guarded by one RWMutex.
type Store struct {
	mu     sync.RWMutex
	dim    int
	nextID int64
	docs   map[int64]document
	text   bleve.Index
	graph  *hnsw.Graph[int64]
	closed bool
}

// NewStore builds an empty store for vectors of the given dimension.
func NewStore(dim int) (*Store, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}

	idx, err := bleve.NewMemOnly(newIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create text index: %w", err)
	}

	graph := hnsw.NewGraph[int64]()
	graph.Distance = hnsw.CosineDistance

	return &Store{
		dim:   dim,
		docs:  make(map[int64]document),
		text:  idx,
		graph: graph,
	}, nil
}

func newIndexMapping() *mapping.IndexMappingImpl {
	field := bleve.NewTextFieldMapping()
	field.Analyzer = en.AnalyzerName
	field.Store = false
	field.IncludeTermVectors = false

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt(textField, field)

	im := bleve.NewIndexMapping()
	im.DefaultMapping = docMapping
	im.DefaultAnalyzer = en.AnalyzerName
	return im
}

// Ping reports whether the store is open.
func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return &db.Error{Op: db.OpPing, Err: errClosed}
	}
	return nil
}

// Migrate is a no-op: indexes exist from construction.
func (s *Store) Migrate(ctx context.Context) error {
	return s.Ping(ctx)
}

// WaitForReady returns immediately for an open store.
func (s *Store) WaitForReady(ctx context.Context, _ time.Duration) error {
	return s.Ping(ctx)
}

// Close releases the text index. Later calls fail.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	_ = s.text.Close()
}

// InsertDocument assigns the next id and indexes the document.
// A nil embedding keeps the document out of the vector graph.
func (s *Store) InsertDocument(_ context.Context, row *db.DocumentRow) (int64, error) {
	if row.Embedding != nil && len(row.Embedding) != s.dim {
		return 0, fmt.Errorf("insert: %w: got %d, want %d",
			db.ErrDimensionMismatch, len(row.Embedding), s.dim)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, &db.Error{Op: db.OpInsert, Err: errClosed}
	}

	id := s.nextID + 1
	if err := s.text.Index(strconv.FormatInt(id, 10), bleveDoc{Text: row.Title + " " + row.Body}); err != nil {
		return 0, &db.Error{Op: db.OpInsert, Err: err}
	}
	var vec []float32
	if row.Embedding != nil {
		vec = slices.Clone(row.Embedding)
		s.graph.Add(hnsw.MakeNode(id, vec))
	}

	s.nextID = id
	s.docs[id] = document{title: row.Title, body: row.Body, embedding: vec}
	return id, nil
}

// SearchText runs a bleve match query requiring every analyzed term.
// Equal scores are ordered by ascending id.
func (s *Store) SearchText(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error) {
	if strings.TrimSpace(q.Query) == "" {
		return nil, fmt.Errorf("query is required")
	}
	if q.TopK <= 0 {
		return nil, fmt.Errorf("topK must be positive")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, &db.Error{Op: db.OpTextSearch, Err: errClosed}
	}

	mq := bleve.NewMatchQuery(q.Query)
	mq.SetField(textField)
	mq.SetOperator(query.MatchQueryOperatorAnd)

	req := bleve.NewSearchRequestOptions(mq, q.TopK, 0, false)
	res, err := s.text.SearchInContext(ctx, req)
	if err != nil {
		return nil, &db.Error{Op: db.OpTextSearch, Err: err}
	}

	entries := make([]db.SearchEntry, 0, len(res.Hits))
	for _, h := range res.Hits {
		id, err := strconv.ParseInt(h.ID, 10, 64)
		if err != nil {
			continue
		}
		doc, ok := s.docs[id]
		if !ok {
			continue
		}
		entries = append(entries, db.SearchEntry{ID: id, Title: doc.title, Body: doc.body, Score: h.Score})
	}
	sortEntries(entries)

	return &db.SearchResult{Total: len(entries), Entries: entries}, nil
}

// SearchKNN returns the nearest documents by cosine similarity (1 - cosine distance).
// The HNSW graph is approximate and may return fewer than K nodes, so when K covers
// every embedded document the store scans them exactly instead.
func (s *Store) SearchKNN(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if len(q.Vector) == 0 {
		return nil, fmt.Errorf("vector is required")
	}
	if q.K <= 0 {
		return nil, fmt.Errorf("k must be positive")
	}
	if len(q.Vector) != s.dim {
		return nil, fmt.Errorf("knn: %w: got %d, want %d", db.ErrDimensionMismatch, len(q.Vector), s.dim)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, &db.Error{Op: db.OpKNNSearch, Err: errClosed}
	}
	if s.graph.Len() == 0 {
		return &db.SearchResult{}, nil
	}

	var entries []db.SearchEntry
	if q.K >= s.graph.Len() {
		entries = s.scanAll(q.Vector)
	} else {
		entries = s.searchGraph(q.Vector, q.K)
	}
	sortEntries(entries)
	if len(entries) > q.K {
		entries = entries[:q.K]
	}

	return &db.SearchResult{Total: len(entries), Entries: entries}, nil
}

func (s *Store) searchGraph(vec []float32, k int) []db.SearchEntry {
	nodes := s.graph.Search(vec, k)
	entries := make([]db.SearchEntry, 0, len(nodes))
	for _, n := range nodes {
		doc, ok := s.docs[n.Key]
		if !ok {
			continue
		}
		entries = append(entries, db.SearchEntry{
			ID: n.Key, Title: doc.title, Body: doc.body, Score: cosineScore(vec, n.Value),
		})
	}
	return entries
}

func (s *Store) scanAll(vec []float32) []db.SearchEntry {
	entries := make([]db.SearchEntry, 0, s.graph.Len())
	for id, doc := range s.docs {
		if doc.embedding == nil {
			continue
		}
		entries = append(entries, db.SearchEntry{
			ID: id, Title: doc.title, Body: doc.body, Score: cosineScore(vec, doc.embedding),
		})
	}
	return entries
}

func cosineScore(a, b []float32) float64 {
	return 1 - float64(hnsw.CosineDistance(a, b))
}

func sortEntries(entries []db.SearchEntry) {
	slices.SortStableFunc(entries, func(a, b db.SearchEntry) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
