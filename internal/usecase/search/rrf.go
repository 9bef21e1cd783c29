package search

import (
	"cmp"
	"slices"

	"github.com/kailas-cloud/hybridsearch/internal/domain/search/hit"
	"github.com/kailas-cloud/hybridsearch/internal/domain/search/result"
)

// DefaultRRFK is the Reciprocal Rank Fusion constant (Cormack et al. 2009).
const DefaultRRFK = 60

// Fuser merges ranked lists with Reciprocal Rank Fusion.
type Fuser struct {
	k int
}

// NewFuser creates a fuser; k <= 0 falls back to DefaultRRFK.
func NewFuser(k int) Fuser {
	if k <= 0 {
		k = DefaultRRFK
	}
	return Fuser{k: k}
}

// K returns the effective smoothing constant.
func (f Fuser) K() int {
	if f.k <= 0 {
		return DefaultRRFK
	}
	return f.k
}

type fused struct {
	id       int64
	title    string
	body     string
	score    float64
	lexical  float64
	semantic float64
}

// Fuse merges the lexical and vector rankings.
// score(d) = sum of 1/(k + rank + 1) over each list containing d, rank 0-based.
// Ties are broken by ascending document id. Either list may be nil.
func (f Fuser) Fuse(lexical, vector []hit.Hit, limit int) []result.Result {
	k := f.K()
	merged := make(map[int64]*fused, len(lexical)+len(vector))

	add := func(h hit.Hit, rank int) *fused {
		e, ok := merged[h.DocumentID]
		if !ok {
			e = &fused{id: h.DocumentID, title: h.Title, body: h.Body}
			merged[h.DocumentID] = e
		}
		e.score += 1.0 / float64(k+rank+1)
		return e
	}

	for rank, h := range lexical {
		add(h, rank).lexical = h.Score
	}
	for rank, h := range vector {
		add(h, rank).semantic = h.Score
	}

	entries := make([]*fused, 0, len(merged))
	for _, e := range merged {
		entries = append(entries, e)
	}
	slices.SortFunc(entries, func(a, b *fused) int {
		if c := cmp.Compare(b.score, a.score); c != 0 {
			return c
		}
		return cmp.Compare(a.id, b.id)
	})

	if limit >= 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	results := make([]result.Result, 0, len(entries))
	for _, e := range entries {
		results = append(results, result.New(e.id, e.title, e.body, e.score, e.lexical, e.semantic))
	}
	return results
}
