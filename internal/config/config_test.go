package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const minimalYAML = `
http:
  port: 8080
database:
  url: postgres://localhost/search
embedding:
  model: intfloat/multilingual-e5-large
  dimensions: 1024
`

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Database.Driver != DriverPostgres {
		t.Errorf("driver: got %q, want %q", cfg.Database.Driver, DriverPostgres)
	}
	if cfg.Search.RRFK != 60 {
		t.Errorf("rrf_k: got %d, want 60", cfg.Search.RRFK)
	}
	if cfg.Search.OverfetchFactor != 2 {
		t.Errorf("overfetch_factor: got %d, want 2", cfg.Search.OverfetchFactor)
	}
	if cfg.SearchTimeout() != 10*time.Second {
		t.Errorf("search timeout: got %s", cfg.SearchTimeout())
	}
	if *cfg.Embedding.QueryInstruction != "query: " {
		t.Errorf("query_instruction: got %q", *cfg.Embedding.QueryInstruction)
	}
	if *cfg.Embedding.DocumentInstruction != "query: " {
		t.Errorf("document_instruction: got %q", *cfg.Embedding.DocumentInstruction)
	}
	if cfg.Embedding.Cache.Driver != CacheMemory {
		t.Errorf("cache driver: got %q", cfg.Embedding.Cache.Driver)
	}
	if cfg.CacheTTL() != 0 {
		t.Errorf("cache ttl: got %s, want 0", cfg.CacheTTL())
	}
	if cfg.Ingest.Workers != 4 {
		t.Errorf("workers: got %d", cfg.Ingest.Workers)
	}
	if len(cfg.HTTP.CORSOrigins) != 1 || cfg.HTTP.CORSOrigins[0] != "*" {
		t.Errorf("cors origins: got %v", cfg.HTTP.CORSOrigins)
	}
}

func TestParse_ExplicitEmptyInstruction(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML + `  query_instruction: ""` + "\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *cfg.Embedding.QueryInstruction != "" {
		t.Errorf("explicit empty instruction must be kept, got %q", *cfg.Embedding.QueryInstruction)
	}
}

func TestParse_EnvExpansion(t *testing.T) {
	t.Setenv("HS_TEST_API_KEY", "secret-key")
	t.Setenv("HS_TEST_PORT", "")

	data := `
http:
  port: ${HS_TEST_PORT:-9090}
database:
  driver: memory
embedding:
  api_key: ${HS_TEST_API_KEY}
  model: m
  dimensions: 8
`
	cfg, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("port: got %d, want 9090", cfg.HTTP.Port)
	}
	if cfg.Embedding.APIKey != "secret-key" {
		t.Errorf("api_key: got %q", cfg.Embedding.APIKey)
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		cfg := Config{
			HTTP:      HTTPConfig{Port: 8080},
			Database:  DatabaseConfig{URL: "postgres://localhost/db"},
			Embedding: EmbeddingConfig{Model: "m", Dimensions: 4},
		}
		cfg.ApplyDefaults()
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"bad port", func(c *Config) { c.HTTP.Port = 0 }, "http.port"},
		{"unknown driver", func(c *Config) { c.Database.Driver = "sqlite" }, "database.driver"},
		{"postgres without url", func(c *Config) { c.Database.URL = "" }, "database.url"},
		{"redis without addrs", func(c *Config) { c.Database.Driver = DriverRedis }, "database.addrs"},
		{"memory needs nothing", func(c *Config) { c.Database = DatabaseConfig{Driver: DriverMemory} }, ""},
		{"missing model", func(c *Config) { c.Embedding.Model = "" }, "embedding.model"},
		{"zero dimensions", func(c *Config) { c.Embedding.Dimensions = 0 }, "embedding.dimensions"},
		{"bad cache driver", func(c *Config) { c.Embedding.Cache.Driver = "disk" }, "embedding.cache.driver"},
		{"redis cache on postgres", func(c *Config) { c.Embedding.Cache.Driver = CacheRedis }, "requires database.driver"},
		{"overfetch below 2", func(c *Config) { c.Search.OverfetchFactor = 1 }, "overfetch_factor"},
		{"tracing without endpoint", func(c *Config) { c.Tracing.Enabled = true }, "tracing.endpoint"},
		{"sample ratio above 1", func(c *Config) { c.Tracing.SampleRatio = 2 }, "sample_ratio"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"http.port", "database.url", "embedding.model", "embedding.dimensions"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("missing %q in %q", want, err.Error())
		}
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.yaml")
	if err := os.WriteFile(path, []byte(minimalYAML), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Port != 8080 {
		t.Errorf("port: got %d", cfg.HTTP.Port)
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoad_Local(t *testing.T) {
	cfg, err := Load("local")
	if err != nil {
		t.Fatalf("load local config: %v", err)
	}
	if cfg.Database.Driver != DriverMemory {
		t.Errorf("local driver: got %q, want %q", cfg.Database.Driver, DriverMemory)
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("ENV", "")
	if GetEnv() != "local" {
		t.Errorf("default env: got %q", GetEnv())
	}
	t.Setenv("ENV", "prod")
	if GetEnv() != "prod" {
		t.Errorf("env: got %q", GetEnv())
	}
}
