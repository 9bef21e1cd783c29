package db

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	Vector []float32
	K      int
}

// TextQuery is the input for full-text search. Query is free text, not backend syntax.
type TextQuery struct {
	Query string
	TopK  int
}

// SearchResult is the output of a search operation.
// Entries are ordered by descending Score.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
// Score is ts_rank/BM25 for text search and cosine similarity for KNN.
type SearchEntry struct {
	ID    int64
	Title string
	Body  string
	Score float64
}
