package hybridsearch

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/hybridsearch/internal/domain/search/mode"
	"github.com/kailas-cloud/hybridsearch/internal/domain/search/request"
	"github.com/kailas-cloud/hybridsearch/internal/domain/search/result"
)

// Search runs a query in the given mode. An empty mode means ModeHybrid and
// a zero limit means the default of 10.
func (c *Client) Search(
	ctx context.Context, query string, m SearchMode, limit int,
) (results []SearchResult, err error) {
	start := time.Now()
	defer func() {
		c.obs.observe("search", start, err, "mode", string(m), "results", len(results))
	}()

	req, err := request.New(query, mode.Mode(m), limit)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	if req.Mode().NeedsEmbedding() && !c.hasEmbedder {
		return nil, fmt.Errorf("search: %w: %s mode needs an embedder (use WithEmbedder)",
			ErrEmbeddingProviderError, req.Mode())
	}

	internal, err := c.searchSvc.Search(ctx, &req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	results = make([]SearchResult, len(internal))
	for i, r := range internal {
		results[i] = fromInternalResult(r)
	}
	return results, nil
}

func fromInternalResult(r result.Result) SearchResult {
	return SearchResult{
		ID:            r.ID(),
		Title:         r.Title(),
		Body:          r.Body(),
		Score:         r.Score(),
		LexicalScore:  r.LexicalScore(),
		SemanticScore: r.SemanticScore(),
	}
}
