package document

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/hybridsearch/internal/domain"
)

// Document size limits.
const (
	MaxTitleSize = 1024
	MaxBodySize  = 163840 // 160KB
)

// Document is a persisted searchable text with its embedding.
type Document struct {
	id        int64
	title     string
	body      string
	embedding []float32
}

// New validates title and body. The id is assigned by the store on insert.
func New(title, body string) (Document, error) {
	if strings.TrimSpace(title) == "" {
		return Document{}, domain.NewValidationError("title", "is required")
	}
	if len(title) > MaxTitleSize {
		return Document{}, domain.NewValidationError("title", fmt.Sprintf("too large (max %d bytes)", MaxTitleSize))
	}
	if strings.TrimSpace(body) == "" {
		return Document{}, domain.NewValidationError("body", "is required")
	}
	if len(body) > MaxBodySize {
		return Document{}, domain.NewValidationError("body", fmt.Sprintf("too large (max %d bytes)", MaxBodySize))
	}
	return Document{title: title, body: body}, nil
}

// Reconstruct creates a Document without validation (storage hydration).
func Reconstruct(id int64, title, body string, embedding []float32) Document {
	return Document{id: id, title: title, body: body, embedding: embedding}
}

// ID returns the store-assigned identifier (0 before insert).
func (d *Document) ID() int64 { return d.id }

// Title returns the document title.
func (d *Document) Title() string { return d.title }

// Body returns the document body.
func (d *Document) Body() string { return d.body }

// Embedding returns the embedding vector, nil if not yet vectorized.
func (d *Document) Embedding() []float32 { return d.embedding }

// EmbeddingText is the text that gets vectorized: title and body joined by a space.
func (d *Document) EmbeddingText() string { return d.title + " " + d.body }

// SetID records the identifier assigned by the store.
func (d *Document) SetID(id int64) { d.id = id }

// SetEmbedding attaches a vector, checking it against the collection dimension when dim > 0.
func (d *Document) SetEmbedding(vec []float32, dim int) error {
	if dim > 0 && len(vec) != dim {
		return fmt.Errorf("got %d, want %d: %w", len(vec), dim, domain.ErrVectorDimMismatch)
	}
	d.embedding = vec
	return nil
}
