package document

import (
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/hybridsearch/internal/domain"
)

func TestNew_Valid(t *testing.T) {
	doc, err := New("Cosine Similarity", "Cosine similarity measures the angle between two vectors.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.ID() != 0 {
		t.Errorf("ID() = %d, want 0 before insert", doc.ID())
	}
	if doc.Title() != "Cosine Similarity" {
		t.Errorf("Title() = %q", doc.Title())
	}
	if doc.Embedding() != nil {
		t.Error("Embedding() should be nil for a new document")
	}
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name        string
		title, body string
		field       string
	}{
		{"empty title", "", "body", "title"},
		{"blank title", "   ", "body", "title"},
		{"empty body", "title", "", "body"},
		{"title too large", strings.Repeat("t", MaxTitleSize+1), "body", "title"},
		{"body too large", "title", strings.Repeat("b", MaxBodySize+1), "body"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.title, tc.body)
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			var ve *domain.ValidationError
			if errors.As(err, &ve) && ve.Field != tc.field {
				t.Errorf("Field = %q, want %q", ve.Field, tc.field)
			}
		})
	}
}

func TestEmbeddingText(t *testing.T) {
	doc, _ := New("HNSW Indexing", "Graphs for approximate nearest neighbor search.")
	want := "HNSW Indexing Graphs for approximate nearest neighbor search."
	if got := doc.EmbeddingText(); got != want {
		t.Errorf("EmbeddingText() = %q, want %q", got, want)
	}
}

func TestSetEmbedding(t *testing.T) {
	doc, _ := New("t", "b")

	if err := doc.SetEmbedding([]float32{1, 2}, 3); !errors.Is(err, domain.ErrVectorDimMismatch) {
		t.Fatalf("expected ErrVectorDimMismatch, got %v", err)
	}
	if doc.Embedding() != nil {
		t.Error("embedding must stay unset after a rejected vector")
	}

	if err := doc.SetEmbedding([]float32{1, 2, 3}, 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Embedding()) != 3 {
		t.Errorf("len(Embedding()) = %d, want 3", len(doc.Embedding()))
	}

	if err := doc.SetEmbedding([]float32{1}, 0); err != nil {
		t.Errorf("dim 0 should skip the check, got %v", err)
	}
}

func TestReconstruct(t *testing.T) {
	doc := Reconstruct(7, "t", "b", []float32{0.5})
	if doc.ID() != 7 || doc.Title() != "t" || doc.Body() != "b" || len(doc.Embedding()) != 1 {
		t.Errorf("unexpected reconstruct result: %+v", doc)
	}
	doc.SetID(9)
	if doc.ID() != 9 {
		t.Errorf("SetID: got %d", doc.ID())
	}
}
