package domain

import (
	"context"
	"errors"
	"testing"
)

type stubEmbedder struct {
	result EmbeddingResult
	err    error
	got    string
}

func (s *stubEmbedder) Embed(_ context.Context, text string) (EmbeddingResult, error) {
	s.got = text
	return s.result, s.err
}

type healthyStub struct {
	stubEmbedder
	healthErr error
}

func (h *healthyStub) HealthCheck(_ context.Context) error { return h.healthErr }

func TestInstructionEmbedder_PrependsQueryPrefix(t *testing.T) {
	inner := &stubEmbedder{result: EmbeddingResult{Embedding: []float32{0.1, 0.2, 0.3}}}
	emb := NewInstructionEmbedder(inner, "query: ")

	result, err := emb.Embed(context.Background(), "unit testing benefits")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.got != "query: unit testing benefits" {
		t.Errorf("expected prefixed text, got %q", inner.got)
	}
	if len(result.Embedding) != 3 {
		t.Errorf("expected 3-element vector, got %d", len(result.Embedding))
	}
}

func TestInstructionEmbedder_ErrorPropagation(t *testing.T) {
	inner := &stubEmbedder{err: ErrEmbeddingProviderError}
	emb := NewInstructionEmbedder(inner, "query: ")

	_, err := emb.Embed(context.Background(), "hello")
	if !errors.Is(err, ErrEmbeddingProviderError) {
		t.Errorf("expected wrapped provider error, got %v", err)
	}
}

func TestInstructionEmbedder_EmptyInstruction(t *testing.T) {
	inner := &stubEmbedder{result: EmbeddingResult{Embedding: []float32{0.5}}}
	emb := NewInstructionEmbedder(inner, "")

	if _, err := emb.Embed(context.Background(), "test"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.got != "test" {
		t.Errorf("expected 'test', got %q", inner.got)
	}
}

func TestInstructionEmbedder_HealthCheck(t *testing.T) {
	t.Run("forwards", func(t *testing.T) {
		down := errors.New("down")
		emb := NewInstructionEmbedder(&healthyStub{healthErr: down}, "query: ")
		if err := emb.HealthCheck(context.Background()); !errors.Is(err, down) {
			t.Errorf("expected forwarded error, got %v", err)
		}
	})

	t.Run("inner without health check", func(t *testing.T) {
		emb := NewInstructionEmbedder(&stubEmbedder{}, "query: ")
		if err := emb.HealthCheck(context.Background()); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("mode", `unknown search mode "fuzzy"`)
	if !errors.Is(err, ErrValidation) {
		t.Fatal("expected ErrValidation in chain")
	}
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatal("expected *ValidationError")
	}
	if ve.Field != "mode" {
		t.Errorf("Field = %q, want mode", ve.Field)
	}
}

func TestEmbedderFunc(t *testing.T) {
	var got string
	f := EmbedderFunc(func(_ context.Context, text string) (EmbeddingResult, error) {
		got = text
		return EmbeddingResult{Embedding: []float32{1, 2}}, nil
	})
	emb := NewInstructionEmbedder(f, "passage: ")

	res, err := emb.Embed(context.Background(), "doc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "passage: doc" || res.Dim() != 2 {
		t.Errorf("got %q dim %d", got, res.Dim())
	}
	if emb.Instruction() != "passage: " {
		t.Errorf("instruction = %q", emb.Instruction())
	}
}
