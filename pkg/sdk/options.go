package hybridsearch

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	driverPostgres = "postgres"
	driverRedis    = "redis"
	driverMemory   = "memory"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver   string
	url      string
	addrs    []string
	password string

	embedder            Embedder
	dimensions          int
	queryInstruction    string
	documentInstruction string

	rrfK      int
	overfetch int
	timeout   time.Duration
	workers   int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithPostgres stores documents in PostgreSQL with the pgvector extension.
func WithPostgres(url string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverPostgres
		c.url = url
	})
}

// WithRedis stores documents in Redis Stack (RediSearch).
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverRedis
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithMemory keeps documents in an in-process index. Nothing is persisted.
func WithMemory() Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverMemory
	})
}

// WithEmbedder sets the text embedding provider.
// Keyword search works without one; inserts and other modes fail.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithDimensions sets the embedding dimension of the collection. Required.
func WithDimensions(dim int) Option {
	return optionFunc(func(c *clientConfig) {
		c.dimensions = dim
	})
}

// DefaultInstruction is prepended to both queries and documents unless
// WithInstructions overrides it.
const DefaultInstruction = "query: "

// WithInstructions sets the text prepended to queries and documents before embedding,
// e.g. "query: " and "passage: " for E5 models. Empty strings disable the prefix.
func WithInstructions(query, document string) Option {
	return optionFunc(func(c *clientConfig) {
		c.queryInstruction = query
		c.documentInstruction = document
	})
}

// WithRRFK sets the RRF smoothing constant. Default: 60.
func WithRRFK(k int) Option {
	return optionFunc(func(c *clientConfig) {
		c.rrfK = k
	})
}

// WithOverfetch sets how many candidates per requested result each backend returns
// in hybrid mode. Default and minimum: 2.
func WithOverfetch(factor int) Option {
	return optionFunc(func(c *clientConfig) {
		c.overfetch = factor
	})
}

// WithSearchTimeout bounds a single search. Default: 10s.
func WithSearchTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.timeout = d
	})
}

// WithWorkers sets the embedding concurrency of InsertBatch. Default: 4.
func WithWorkers(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.workers = n
	})
}

// WithLogger enables structured logging for client operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers client metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
