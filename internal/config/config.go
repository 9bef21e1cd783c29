package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Database drivers.
const (
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverMemory   = "memory"
)

// Embedding cache drivers.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config holds the hybridsearch configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Search    SearchConfig    `yaml:"search"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Auth      AuthConfig      `yaml:"auth"`
	Tracing   TracingConfig   `yaml:"tracing"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error (default: determined by env)
	Format string `yaml:"format"` // json, console (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// TracingConfig holds OpenTelemetry export settings.
type TracingConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Endpoint    string  `yaml:"endpoint"` // host:port of the OTLP/HTTP collector
	Insecure    bool    `yaml:"insecure"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int      `yaml:"port"`
	ReadTimeoutSec  int      `yaml:"read_timeout_sec"`
	WriteTimeoutSec int      `yaml:"write_timeout_sec"`
	ShutdownSec     int      `yaml:"shutdown_timeout_sec"`
	CORSOrigins     []string `yaml:"cors_origins"`
}

// DatabaseConfig holds document store connection settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // postgres, redis, memory (default: postgres)
	URL              string   `yaml:"url"`    // postgres DSN
	Addrs            []string `yaml:"addrs"`  // redis addresses
	Password         string   `yaml:"password"`
	MaxOpenConns     int      `yaml:"max_open_conns"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// EmbeddingConfig holds embedding provider and cache settings.
type EmbeddingConfig struct {
	Provider            string      `yaml:"provider"` // label for metrics and logs
	APIKey              string      `yaml:"api_key"`
	BaseURL             string      `yaml:"base_url"`
	Model               string      `yaml:"model"`
	Dimensions          int         `yaml:"dimensions"`
	SendDimensions      bool        `yaml:"send_dimensions"`
	TimeoutSec          int         `yaml:"timeout_sec"`
	QueryInstruction    *string     `yaml:"query_instruction"`
	DocumentInstruction *string     `yaml:"document_instruction"`
	Cache               CacheConfig `yaml:"cache"`
}

// CacheConfig holds embedding cache settings.
type CacheConfig struct {
	Driver string `yaml:"driver"` // none, memory, redis (default: memory)
	Size   int    `yaml:"size"`   // memory driver capacity
	TTLSec int    `yaml:"ttl_sec"`
}

// SearchConfig holds orchestrator tuning.
type SearchConfig struct {
	RRFK            int `yaml:"rrf_k"`
	OverfetchFactor int `yaml:"overfetch_factor"`
	TimeoutSec      int `yaml:"timeout_sec"`
}

// IngestConfig holds ingestion settings.
type IngestConfig struct {
	Workers int `yaml:"workers"`
}

// Load reads configuration from a YAML file by environment name (local, dev, docker, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	return Parse(data)
}

// Parse decodes YAML, expands ${VAR} references, applies defaults, and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if len(c.HTTP.CORSOrigins) == 0 {
		c.HTTP.CORSOrigins = []string{"*"}
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverPostgres
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 30
	}
	if c.Database.MaxOpenConns <= 0 {
		c.Database.MaxOpenConns = 10
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "openai"
	}
	if c.Embedding.TimeoutSec <= 0 {
		c.Embedding.TimeoutSec = 30
	}
	if c.Embedding.QueryInstruction == nil {
		q := "query: "
		c.Embedding.QueryInstruction = &q
	}
	if c.Embedding.DocumentInstruction == nil {
		d := "query: "
		c.Embedding.DocumentInstruction = &d
	}
	if c.Embedding.Cache.Driver == "" {
		c.Embedding.Cache.Driver = CacheMemory
	}
	if c.Embedding.Cache.Size <= 0 {
		c.Embedding.Cache.Size = 10000
	}
	if c.Search.RRFK <= 0 {
		c.Search.RRFK = 60
	}
	if c.Search.OverfetchFactor <= 0 {
		c.Search.OverfetchFactor = 2
	}
	if c.Search.TimeoutSec <= 0 {
		c.Search.TimeoutSec = 10
	}
	if c.Ingest.Workers <= 0 {
		c.Ingest.Workers = 4
	}
	if c.Tracing.SampleRatio <= 0 {
		c.Tracing.SampleRatio = 1
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	var errs []error

	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port))
	}

	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.URL == "" {
			errs = append(errs, errors.New("database.url is required for the postgres driver"))
		}
	case DriverRedis:
		if len(c.Database.Addrs) == 0 {
			errs = append(errs, errors.New("database.addrs is required for the redis driver"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf(
			"database.driver must be %q, %q or %q, got %q",
			DriverPostgres, DriverRedis, DriverMemory, c.Database.Driver,
		))
	}

	if c.Embedding.Model == "" {
		errs = append(errs, errors.New("embedding.model is required"))
	}
	if c.Embedding.Dimensions <= 0 {
		errs = append(errs, fmt.Errorf("embedding.dimensions must be positive, got %d", c.Embedding.Dimensions))
	}

	switch c.Embedding.Cache.Driver {
	case CacheNone, CacheMemory:
	case CacheRedis:
		if c.Database.Driver != DriverRedis {
			errs = append(errs, errors.New("embedding.cache.driver \"redis\" requires database.driver \"redis\""))
		}
	default:
		errs = append(errs, fmt.Errorf(
			"embedding.cache.driver must be %q, %q or %q, got %q",
			CacheNone, CacheMemory, CacheRedis, c.Embedding.Cache.Driver,
		))
	}

	if c.Search.OverfetchFactor < 2 {
		errs = append(errs, fmt.Errorf("search.overfetch_factor must be at least 2, got %d", c.Search.OverfetchFactor))
	}

	if c.Tracing.Enabled && c.Tracing.Endpoint == "" {
		errs = append(errs, errors.New("tracing.endpoint is required when tracing is enabled"))
	}
	if c.Tracing.SampleRatio > 1 {
		errs = append(errs, fmt.Errorf("tracing.sample_ratio must be in (0, 1], got %g", c.Tracing.SampleRatio))
	}

	return errors.Join(errs...)
}

// SearchTimeout returns the per-request search deadline.
func (c *Config) SearchTimeout() time.Duration {
	return time.Duration(c.Search.TimeoutSec) * time.Second
}

// CacheTTL returns the embedding cache TTL; zero means no expiry.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Embedding.Cache.TTLSec) * time.Second
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
