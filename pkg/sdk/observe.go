package hybridsearch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/hybridsearch/internal/domain"
)

// Operation outcome labels.
const (
	statusOK         = "ok"
	statusValidation = "validation"
	statusTimeout    = "timeout"
	statusCanceled   = "canceled"
	statusError      = "error"
)

type clientMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

func newClientMetrics(reg prometheus.Registerer) (*clientMetrics, error) {
	ops := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hybridsearch",
		Subsystem: "client",
		Name:      "operations_total",
		Help:      "Client operations by name and outcome.",
	}, []string{"operation", "status"})
	dur := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "hybridsearch",
		Subsystem: "client",
		Name:      "operation_duration_seconds",
		Help:      "Client operation latency.",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"operation"})

	var err error
	if ops, err = register(reg, ops); err != nil {
		return nil, err
	}
	if dur, err = register(reg, dur); err != nil {
		return nil, err
	}
	return &clientMetrics{operations: ops, duration: dur}, nil
}

// register adds c to reg. When an identical collector is already registered
// (several clients sharing one registry), the existing one is returned.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var are prometheus.AlreadyRegisteredError
	if !errors.As(err, &are) {
		return c, fmt.Errorf("hybridsearch: register metric: %w", err)
	}
	existing, ok := are.ExistingCollector.(T)
	if !ok {
		return c, fmt.Errorf("hybridsearch: metric registered with incompatible type %T", are.ExistingCollector)
	}
	return existing, nil
}

// statusOf buckets err into a low-cardinality outcome label.
func statusOf(err error) string {
	switch {
	case err == nil:
		return statusOK
	case errors.Is(err, domain.ErrValidation):
		return statusValidation
	case errors.Is(err, domain.ErrSearchTimeout), errors.Is(err, context.DeadlineExceeded):
		return statusTimeout
	case errors.Is(err, context.Canceled):
		return statusCanceled
	default:
		return statusError
	}
}

// observer logs and counts client operations. A nil observer is a no-op.
type observer struct {
	logger  *slog.Logger
	metrics *clientMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	o := &observer{logger: logger}
	if reg == nil {
		return o, nil
	}
	m, err := newClientMetrics(reg)
	if err != nil {
		return nil, err
	}
	o.metrics = m
	return o, nil
}

// observe records one finished operation; attrs are extra slog key/value pairs.
func (o *observer) observe(op string, start time.Time, err error, attrs ...any) {
	if o == nil {
		return
	}
	elapsed := time.Since(start)
	status := statusOf(err)

	if o.metrics != nil {
		o.metrics.operations.WithLabelValues(op, status).Inc()
		o.metrics.duration.WithLabelValues(op).Observe(elapsed.Seconds())
	}
	if o.logger == nil {
		return
	}

	args := make([]any, 0, 6+len(attrs))
	args = append(args, "op", op, "status", status, "duration", elapsed)
	args = append(args, attrs...)
	switch status {
	case statusOK:
		o.logger.Debug("hybridsearch operation", args...)
	case statusError:
		o.logger.Error("hybridsearch operation failed", append(args, "error", err)...)
	default:
		o.logger.Warn("hybridsearch operation failed", append(args, "error", err)...)
	}
}
