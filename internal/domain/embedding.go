package domain

import (
	"context"
	"fmt"
)

// Embedder turns text into a dense vector. Every stage of the embedding chain implements it.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// HealthChecker is implemented by embedders that can probe their provider.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbedderFunc adapts a plain function to Embedder.
type EmbedderFunc func(ctx context.Context, text string) (EmbeddingResult, error)

// Embed calls f.
func (f EmbedderFunc) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	return f(ctx, text)
}

// EmbeddingResult is one vector plus the provider's token accounting.
// Token counts are zero when the vector came from a cache.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Dim is the vector length.
func (r EmbeddingResult) Dim() int { return len(r.Embedding) }

// InstructionEmbedder prefixes every text with a model instruction such as "query: "
// so queries and documents land in the intended regions of an asymmetric model.
type InstructionEmbedder struct {
	inner       Embedder
	instruction string
}

// NewInstructionEmbedder wraps inner. An empty instruction passes text through unchanged.
func NewInstructionEmbedder(inner Embedder, instruction string) *InstructionEmbedder {
	return &InstructionEmbedder{inner: inner, instruction: instruction}
}

// Instruction returns the configured prefix.
func (e *InstructionEmbedder) Instruction() string { return e.instruction }

func (e *InstructionEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	if e.instruction != "" {
		text = e.instruction + text
	}
	result, err := e.inner.Embed(ctx, text)
	if err != nil {
		return EmbeddingResult{}, fmt.Errorf("embed with instruction %q: %w", e.instruction, err)
	}
	return result, nil
}

func (e *InstructionEmbedder) HealthCheck(ctx context.Context) error {
	if hc, ok := e.inner.(HealthChecker); ok {
		return hc.HealthCheck(ctx) //nolint:wrapcheck // transparent decorator
	}
	return nil
}
