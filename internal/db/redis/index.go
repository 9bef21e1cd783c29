package redis

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/hybridsearch/internal/db"
)

// Hash field names of a stored document.
const (
	fieldTitle     = "title"
	fieldBody      = "body"
	fieldEmbedding = "embedding"
	fieldScore     = "__vector_score"
)

// IndexDefinition returns the FT index over document hashes:
// title and body as TEXT, embedding as an HNSW COSINE vector.
func (s *Store) IndexDefinition() *db.IndexDefinition {
	return db.NewIndex(s.index).
		Prefix(s.prefix).
		Text(fieldTitle).
		Text(fieldBody).
		VectorHNSW(fieldEmbedding, s.dim, db.DistanceCosine, 16, 200).
		MustBuild()
}

// Migrate creates the document index. An existing index is left untouched.
func (s *Store) Migrate(ctx context.Context) error {
	err := s.CreateIndex(ctx, s.IndexDefinition())
	if errors.Is(err, db.ErrIndexExists) {
		return nil
	}
	return err
}

// CreateIndex creates an FT index from the given definition.
func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	args, err := buildCreateArgs(def)
	if err != nil {
		return err
	}

	cmd := s.b().Arbitrary("FT.CREATE").Args(args...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "index already exists") {
			return db.ErrIndexExists
		}
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	return nil
}

// buildCreateArgs renders def as FT.CREATE arguments:
// <name> ON HASH [PREFIX n p...] SCHEMA <field args>...
func buildCreateArgs(def *db.IndexDefinition) ([]string, error) {
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("index %q: %w", def.Name, err)
	}

	args := []string{def.Name, "ON", "HASH"}
	if n := len(def.Prefixes); n > 0 {
		args = append(append(args, "PREFIX", strconv.Itoa(n)), def.Prefixes...)
	}
	args = append(args, "SCHEMA")
	for i := range def.Fields {
		fieldArgs, err := buildFieldArgs(&def.Fields[i])
		if err != nil {
			return nil, err
		}
		args = append(args, fieldArgs...)
	}
	return args, nil
}

func buildFieldArgs(f *db.IndexField) ([]string, error) {
	if f.Name == "" {
		return nil, errors.New("field name is required")
	}
	switch f.Type {
	case db.IndexFieldText:
		return []string{f.Name, "TEXT"}, nil
	case db.IndexFieldVector:
		attrs, err := vectorAttrs(f)
		if err != nil {
			return nil, err
		}
		algo := cmp.Or(f.VectorAlgo, db.VectorFlat)
		return append([]string{f.Name, "VECTOR", string(algo), strconv.Itoa(len(attrs))}, attrs...), nil
	default:
		return nil, fmt.Errorf("field %q: unknown type %d", f.Name, f.Type)
	}
}

// vectorAttrs are the key/value pairs counted by the VECTOR attribute length.
// M and EF_CONSTRUCTION only apply to HNSW and are omitted when zero.
func vectorAttrs(f *db.IndexField) ([]string, error) {
	if f.VectorDim <= 0 {
		return nil, fmt.Errorf("field %q: vector DIM must be positive", f.Name)
	}
	attrs := []string{
		"TYPE", "FLOAT32",
		"DIM", strconv.Itoa(f.VectorDim),
		"DISTANCE_METRIC", string(cmp.Or(f.VectorDistance, db.DistanceCosine)),
	}
	if cmp.Or(f.VectorAlgo, db.VectorFlat) != db.VectorHNSW {
		return attrs, nil
	}
	if f.VectorM > 0 {
		attrs = append(attrs, "M", strconv.Itoa(f.VectorM))
	}
	if f.VectorEFConstruct > 0 {
		attrs = append(attrs, "EF_CONSTRUCTION", strconv.Itoa(f.VectorEFConstruct))
	}
	return attrs, nil
}
