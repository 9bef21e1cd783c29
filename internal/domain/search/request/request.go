package request

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/hybridsearch/internal/domain"
	"github.com/kailas-cloud/hybridsearch/internal/domain/search/mode"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search query length in bytes.
	MaxQueryLength = 4096
	DefaultLimit   = 10
	MaxLimit       = 100
)

// Request is a validated search query.
type Request struct {
	query      string
	searchMode mode.Mode
	limit      int
}

// New validates and normalizes search parameters.
// Defaults: mode=hybrid, limit=DefaultLimit. A limit of zero means "not set";
// negative or above MaxLimit is rejected.
func New(query string, m mode.Mode, limit int) (Request, error) {
	if strings.TrimSpace(query) == "" {
		return Request{}, domain.NewValidationError("q", "query is required")
	}
	if len(query) > MaxQueryLength {
		return Request{}, domain.NewValidationError("q", fmt.Sprintf("query too long (max %d bytes)", MaxQueryLength))
	}
	if m == "" {
		m = mode.Hybrid
	}
	if !m.IsValid() {
		return Request{}, domain.NewValidationError("mode", fmt.Sprintf("invalid search mode %q", m))
	}
	if limit == 0 {
		limit = DefaultLimit
	}
	if limit < 0 || limit > MaxLimit {
		return Request{}, domain.NewValidationError("limit", fmt.Sprintf("must be between 1 and %d", MaxLimit))
	}

	return Request{query: query, searchMode: m, limit: limit}, nil
}

// Query returns the search query text.
func (r *Request) Query() string { return r.query }

// Mode returns the search strategy.
func (r *Request) Mode() mode.Mode { return r.searchMode }

// Limit returns the maximum number of results to return.
func (r *Request) Limit() int { return r.limit }
