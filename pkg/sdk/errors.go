package hybridsearch

import "github.com/kailas-cloud/hybridsearch/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrValidation             = domain.ErrValidation
	ErrStore                  = domain.ErrStore
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
	ErrVectorDimMismatch      = domain.ErrVectorDimMismatch
	ErrSearchTimeout          = domain.ErrSearchTimeout
)
