// Package hybridsearch embeds the hybrid rank fusion engine as a Go library.
//
// The client owns a document store (PostgreSQL with pgvector, Redis with
// RediSearch, or an in-process index), an embedding provider supplied by the
// caller, and the search orchestrator that fuses keyword and semantic
// rankings with Reciprocal Rank Fusion.
//
//	client, _ := hybridsearch.New(ctx,
//	    hybridsearch.WithPostgres("postgres://localhost/search?sslmode=disable"),
//	    hybridsearch.WithEmbedder(myEmbedder),
//	    hybridsearch.WithDimensions(384),
//	)
//	defer client.Close()
//
//	_, _ = client.Insert(ctx, "Cosine Similarity", "Cosine similarity measures ...")
//	results, _ := client.Search(ctx, "vector similarity", hybridsearch.ModeHybrid, 10)
package hybridsearch
