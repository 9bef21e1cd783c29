package health

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates at least one component failed.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	CheckOK    CheckResult = "ok"
	CheckError CheckResult = "error"
)

// Component names as reported in Report.Checks.
const (
	ComponentDatabase  = "database"
	ComponentEmbedding = "embedding"
)

// DefaultCheckTimeout bounds each component probe.
const DefaultCheckTimeout = 3 * time.Second

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	store     StorePinger
	embedding EmbeddingChecker
	timeout   time.Duration
	logger    *zap.Logger
}

// New creates a Service. embedding can be nil when no provider is configured.
func New(store StorePinger, embedding EmbeddingChecker, logger *zap.Logger) *Service {
	return &Service{store: store, embedding: embedding, timeout: DefaultCheckTimeout, logger: logger}
}

// WithTimeout overrides the per-component probe timeout.
func (s *Service) WithTimeout(d time.Duration) *Service {
	if d > 0 {
		s.timeout = d
	}
	return s
}

// Check probes all components concurrently.
func (s *Service) Check(ctx context.Context) Report {
	probes := map[string]func(context.Context) error{
		ComponentDatabase: s.store.Ping,
	}
	if s.embedding != nil {
		probes[ComponentEmbedding] = s.embedding.HealthCheck
	}

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		checks = make(map[string]CheckResult, len(probes))
	)
	for name, probe := range probes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := s.probe(ctx, name, probe)
			mu.Lock()
			checks[name] = res
			mu.Unlock()
		}()
	}
	wg.Wait()

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}
	return Report{Status: status, Checks: checks}
}

func (s *Service) probe(ctx context.Context, name string, fn func(context.Context) error) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	if err := fn(ctx); err != nil {
		s.logger.Warn("Health check failed",
			zap.String("component", name),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return CheckError
	}
	return CheckOK
}
