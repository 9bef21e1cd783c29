package hybridsearch

import (
	"context"
	"fmt"
	"time"

	domdoc "github.com/kailas-cloud/hybridsearch/internal/domain/document"
	documentuc "github.com/kailas-cloud/hybridsearch/internal/usecase/document"
)

// Insert embeds and stores a document. The store assigns the ID.
func (c *Client) Insert(ctx context.Context, title, body string) (doc Document, err error) {
	start := time.Now()
	defer func() { c.obs.observe("insert", start, err) }()

	d, err := c.docSvc.Insert(ctx, title, body)
	if err != nil {
		return Document{}, fmt.Errorf("insert: %w", err)
	}
	return fromInternalDocument(d), nil
}

// InsertBatch embeds documents concurrently and stores them in input order.
// Item failures are reported per result and never abort the batch.
func (c *Client) InsertBatch(ctx context.Context, docs []DocumentInput) []BatchResult {
	start := time.Now()

	drafts := make([]documentuc.Draft, len(docs))
	for i, d := range docs {
		drafts[i] = documentuc.Draft{Title: d.Title, Body: d.Body}
	}

	internal := c.docSvc.InsertBatch(ctx, drafts)
	out := make([]BatchResult, len(internal))
	var failed int
	for i, r := range internal {
		if r.Err != nil {
			failed++
			out[i] = BatchResult{Err: r.Err}
			continue
		}
		out[i] = BatchResult{Document: fromInternalDocument(r.Document)}
	}

	c.obs.observe("insert_batch", start, nil, "items", len(docs), "failed", failed)
	return out
}

func fromInternalDocument(d domdoc.Document) Document {
	return Document{ID: d.ID(), Title: d.Title(), Body: d.Body()}
}
