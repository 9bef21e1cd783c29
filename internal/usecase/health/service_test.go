package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// --- Mocks ---

type mockStorePinger struct {
	err   error
	block bool
}

func (m *mockStorePinger) Ping(ctx context.Context) error {
	if m.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return m.err
}

type mockEmbeddingChecker struct {
	err error
}

func (m *mockEmbeddingChecker) HealthCheck(_ context.Context) error { return m.err }

// --- Tests ---

func TestCheck(t *testing.T) {
	tests := []struct {
		name      string
		store     *mockStorePinger
		embedding EmbeddingChecker
		status    Status
		checks    map[string]CheckResult
	}{
		{
			name:      "all healthy",
			store:     &mockStorePinger{},
			embedding: &mockEmbeddingChecker{},
			status:    Healthy,
			checks:    map[string]CheckResult{ComponentDatabase: CheckOK, ComponentEmbedding: CheckOK},
		},
		{
			name:      "database down",
			store:     &mockStorePinger{err: errors.New("conn refused")},
			embedding: &mockEmbeddingChecker{},
			status:    Degraded,
			checks:    map[string]CheckResult{ComponentDatabase: CheckError, ComponentEmbedding: CheckOK},
		},
		{
			name:      "embedding down",
			store:     &mockStorePinger{},
			embedding: &mockEmbeddingChecker{err: errors.New("401")},
			status:    Degraded,
			checks:    map[string]CheckResult{ComponentDatabase: CheckOK, ComponentEmbedding: CheckError},
		},
		{
			name:      "both down",
			store:     &mockStorePinger{err: errors.New("conn refused")},
			embedding: &mockEmbeddingChecker{err: errors.New("401")},
			status:    Degraded,
			checks:    map[string]CheckResult{ComponentDatabase: CheckError, ComponentEmbedding: CheckError},
		},
		{
			name:   "no embedding configured",
			store:  &mockStorePinger{},
			status: Healthy,
			checks: map[string]CheckResult{ComponentDatabase: CheckOK},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := New(tt.store, tt.embedding, zap.NewNop())
			r := svc.Check(context.Background())

			if r.Status != tt.status {
				t.Errorf("expected %q, got %q", tt.status, r.Status)
			}
			if len(r.Checks) != len(tt.checks) {
				t.Fatalf("expected %d checks, got %v", len(tt.checks), r.Checks)
			}
			for k, want := range tt.checks {
				if r.Checks[k] != want {
					t.Errorf("%s: expected %q, got %q", k, want, r.Checks[k])
				}
			}
		})
	}
}

func TestCheck_Timeout(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	svc := New(&mockStorePinger{block: true}, nil, zap.New(core)).WithTimeout(10 * time.Millisecond)

	start := time.Now()
	r := svc.Check(context.Background())

	if time.Since(start) > time.Second {
		t.Error("probe did not honor timeout")
	}
	if r.Checks[ComponentDatabase] != CheckError {
		t.Errorf("expected database %q, got %q", CheckError, r.Checks[ComponentDatabase])
	}
	if logs.FilterMessage("Health check failed").Len() != 1 {
		t.Errorf("expected one failure log, got %d", logs.Len())
	}
}
