// Package embedding holds embedder decorators that sit between the provider and the use cases.
package embedding

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/hybridsearch/internal/domain"
	"github.com/kailas-cloud/hybridsearch/internal/metrics"
)

// Embedding purposes. Queries and documents go through separate chains
// because they carry different instruction prefixes.
const (
	PurposeQuery    = "query"
	PurposeDocument = "document"
)

// Source identifies the embedder chain in logs and metrics.
type Source struct {
	Provider string
	Model    string
	Purpose  string
}

// InstrumentedEmbedder records per-purpose metrics, logs failures and accounts
// token usage in the request context. Provider-level metrics live in transport/openai.
type InstrumentedEmbedder struct {
	inner  domain.Embedder
	src    Source
	logger *zap.Logger
}

// NewInstrumentedEmbedder wraps an embedder with observability.
func NewInstrumentedEmbedder(inner domain.Embedder, src Source, logger *zap.Logger) *InstrumentedEmbedder {
	return &InstrumentedEmbedder{
		inner: inner,
		src:   src,
		logger: logger.With(
			zap.String("provider", src.Provider),
			zap.String("model", src.Model),
			zap.String("purpose", src.Purpose),
		),
	}
}

// Embed delegates to the inner embedder and records token usage in the request context.
func (p *InstrumentedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	start := time.Now()
	metrics.EmbeddingInputBytes.WithLabelValues(p.src.Purpose).Observe(float64(len(text)))

	result, err := p.inner.Embed(ctx, text)
	duration := time.Since(start)

	if err != nil {
		metrics.EmbeddingCallsTotal.WithLabelValues(p.src.Purpose, "error").Inc()
		p.logger.Error("Embedding request failed",
			zap.Duration("duration", duration),
			zap.Int("input_bytes", len(text)),
			zap.Error(err),
		)
		return domain.EmbeddingResult{}, fmt.Errorf("embed %s: %w", p.src.Purpose, err)
	}

	metrics.EmbeddingCallsTotal.WithLabelValues(p.src.Purpose, "ok").Inc()
	domain.UsageFromContext(ctx).AddTokens(result.TotalTokens)

	p.logger.Debug("Embedding request completed",
		zap.Duration("duration", duration),
		zap.Int("dimensions", len(result.Embedding)),
		zap.Int("total_tokens", result.TotalTokens),
	)
	return result, nil
}

// HealthCheck forwards to the inner embedder when it supports health checks.
func (p *InstrumentedEmbedder) HealthCheck(ctx context.Context) error {
	if hc, ok := p.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx) //nolint:wrapcheck // transparent decorator
	}
	return nil
}
