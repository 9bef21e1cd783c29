package result

// Result is a single fused search hit with per-signal score provenance.
// LexicalScore and SemanticScore are 0 when the document was not returned by that backend.
type Result struct {
	id            int64
	title         string
	body          string
	score         float64
	lexicalScore  float64
	semanticScore float64
}

// New creates a search result.
func New(id int64, title, body string, score, lexicalScore, semanticScore float64) Result {
	return Result{
		id: id, title: title, body: body,
		score: score, lexicalScore: lexicalScore, semanticScore: semanticScore,
	}
}

// ID returns the document identifier.
func (r *Result) ID() int64 { return r.id }

// Title returns the document title.
func (r *Result) Title() string { return r.title }

// Body returns the document body.
func (r *Result) Body() string { return r.body }

// Score returns the ranking score: hybrid RRF score in hybrid mode, raw backend score otherwise.
func (r *Result) Score() float64 { return r.score }

// LexicalScore returns the keyword backend's raw relevance.
func (r *Result) LexicalScore() float64 { return r.lexicalScore }

// SemanticScore returns the vector backend's cosine similarity.
func (r *Result) SemanticScore() float64 { return r.semanticScore }
