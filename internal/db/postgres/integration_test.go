//go:build integration

// Integration tests run against a pgvector-enabled PostgreSQL.
// Run with: go test -tags=integration -v ./internal/db/postgres/...
//
// DATABASE_URL selects an existing server; otherwise a pgvector container is started.
package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/kailas-cloud/hybridsearch/internal/db"
)

func databaseURL(t *testing.T) string {
	t.Helper()
	if u := os.Getenv("DATABASE_URL"); u != "" {
		return u
	}

	ctx := context.Background()
	ctr, err := tcpostgres.Run(ctx, "pgvector/pgvector:pg16",
		tcpostgres.WithDatabase("hybridsearch"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Skipf("cannot start pgvector container: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(ctr); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	u, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}
	return u
}

func TestStore_EndToEnd(t *testing.T) {
	ctx := context.Background()

	s, err := NewStore(Config{URL: databaseURL(t), Dimensions: 3})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer s.Close()

	if err := s.WaitForReady(ctx, 30*time.Second); err != nil {
		t.Fatalf("wait for ready: %v", err)
	}
	if _, err := s.db.ExecContext(ctx, `DROP TABLE IF EXISTS documents`); err != nil {
		t.Fatalf("drop: %v", err)
	}
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	// idempotent
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("second migrate: %v", err)
	}

	docs := []db.DocumentRow{
		{Title: "Neural Networks", Body: "Deep learning with neural networks", Embedding: []float32{1, 0, 0}},
		{Title: "Cooking", Body: "Pasta recipes for beginners", Embedding: []float32{0, 1, 0}},
		{Title: "Draft", Body: "Neural notes without a vector"},
	}
	ids := make([]int64, len(docs))
	for i := range docs {
		id, err := s.InsertDocument(ctx, &docs[i])
		if err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
		ids[i] = id
	}

	text, err := s.SearchText(ctx, &db.TextQuery{Query: "neural", TopK: 10})
	if err != nil {
		t.Fatalf("text search: %v", err)
	}
	if len(text.Entries) != 2 {
		t.Fatalf("text entries = %d, want 2", len(text.Entries))
	}
	for _, e := range text.Entries {
		if e.ID == ids[1] {
			t.Errorf("cooking document must not match 'neural'")
		}
	}

	knn, err := s.SearchKNN(ctx, &db.KNNQuery{Vector: []float32{0.9, 0.1, 0}, K: 10})
	if err != nil {
		t.Fatalf("knn search: %v", err)
	}
	if len(knn.Entries) != 2 {
		t.Fatalf("knn entries = %d, want 2 (NULL embedding skipped)", len(knn.Entries))
	}
	if knn.Entries[0].ID != ids[0] {
		t.Errorf("knn top = %d, want %d", knn.Entries[0].ID, ids[0])
	}
	if knn.Entries[0].Score <= knn.Entries[1].Score {
		t.Errorf("knn scores not descending: %+v", knn.Entries)
	}
}
