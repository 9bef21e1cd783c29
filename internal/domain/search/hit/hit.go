// Package hit holds the per-backend ranked candidate produced by a single retrieval path.
package hit

// Hit is one entry of a backend's ranked list. Its rank is its position in that list.
// Score is backend-specific and higher-is-better: lexical relevance for keyword search,
// cosine similarity (1 - cosine distance) for vector search.
type Hit struct {
	DocumentID int64
	Title      string
	Body       string
	Score      float64
}
