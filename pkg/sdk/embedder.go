package hybridsearch

import "context"

// Embedder converts text to a dense vector of the configured dimension.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// EmbeddingResult carries the embedding vector and token counts.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// HealthChecker is optionally implemented by an Embedder to take part in Client.Health.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
