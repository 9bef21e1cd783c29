package hybridsearch

// SearchMode controls the retrieval strategy.
type SearchMode string

// Search mode constants.
const (
	ModeHybrid   SearchMode = "hybrid"
	ModeSemantic SearchMode = "semantic"
	ModeKeyword  SearchMode = "keyword"
)

// Document is a stored document. Embeddings are not exposed.
type Document struct {
	ID    int64
	Title string
	Body  string
}

// DocumentInput is one item of a batch insert.
type DocumentInput struct {
	Title string
	Body  string
}

// SearchResult is a single ranked hit.
// Score is the fused RRF score in hybrid mode and the raw backend score otherwise.
type SearchResult struct {
	ID            int64
	Title         string
	Body          string
	Score         float64
	LexicalScore  float64
	SemanticScore float64
}

// BatchResult is the outcome of one item in a batch insert, in input order.
type BatchResult struct {
	Document Document
	Err      error
}

// OK reports whether the item was stored.
func (r BatchResult) OK() bool { return r.Err == nil }
