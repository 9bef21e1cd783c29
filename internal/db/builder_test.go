package db

import (
	"strings"
	"testing"
)

func TestIndexBuilder_DocumentIndex(t *testing.T) {
	idx := NewIndex("documents:idx").
		Prefix("documents:").
		Text("title").
		Text("body").
		VectorHNSW("embedding", 4096, DistanceCosine, 16, 200).
		MustBuild()

	if err := idx.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(idx.Fields) != 3 {
		t.Fatalf("fields count = %d, want 3", len(idx.Fields))
	}
	if idx.Fields[0].Name != "title" || idx.Fields[0].Type != IndexFieldText {
		t.Errorf("field[0] = %+v, want title TEXT", idx.Fields[0])
	}
	vf := idx.Fields[2]
	if vf.Type != IndexFieldVector {
		t.Fatalf("field[2] = %+v, want a vector field", vf)
	}
	if vf.VectorAlgo != VectorHNSW {
		t.Errorf("algo = %q, want HNSW", vf.VectorAlgo)
	}
	if vf.VectorDim != 4096 {
		t.Errorf("dim = %d, want 4096", vf.VectorDim)
	}
	if vf.VectorM != 16 || vf.VectorEFConstruct != 200 {
		t.Errorf("M/EF = %d/%d, want 16/200", vf.VectorM, vf.VectorEFConstruct)
	}
}

func TestIndexBuilder_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		builder func() (*IndexDefinition, error)
		wantErr string
	}{
		{
			name: "empty name",
			builder: func() (*IndexDefinition, error) {
				return NewIndex("").Text("x").Build()
			},
			wantErr: "index name is required",
		},
		{
			name: "no fields",
			builder: func() (*IndexDefinition, error) {
				return NewIndex("idx").Build()
			},
			wantErr: "at least one field",
		},
		{
			name: "vector without dim",
			builder: func() (*IndexDefinition, error) {
				return NewIndex("idx").VectorHNSW("v", 0, DistanceCosine, 0, 0).Build()
			},
			wantErr: "positive DIM",
		},
		{
			name: "invalid characters",
			builder: func() (*IndexDefinition, error) {
				return NewIndex("idx with spaces").Text("x").Build()
			},
			wantErr: "invalid characters",
		},
		{
			name: "duplicate field",
			builder: func() (*IndexDefinition, error) {
				return NewIndex("idx").Text("x").Text("x").Build()
			},
			wantErr: "duplicate field name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.builder()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("got error %q, want containing %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestIsValidIdentifier(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"documents:idx", true},
		{"a_b-c", true},
		{"", false},
		{"with space", false},
		{"star*", false},
	}
	for _, tc := range tests {
		if got := IsValidIdentifier(tc.in); got != tc.want {
			t.Errorf("IsValidIdentifier(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
