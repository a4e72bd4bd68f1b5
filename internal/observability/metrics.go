package observability

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"cpu-burn-lab/internal/models"
)

const meterName = "cpu-burn-lab/metrics"

// Metrics groups all metric instruments in one place.
type Metrics struct {
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram

	BurnRuns            metric.Int64Counter
	BurnIterations      metric.Int64Counter
	BurnRunDuration     metric.Float64Histogram
	BurnWaitInterrupted metric.Int64Counter

	// Inflight is exported as an observable gauge per endpoint.
	inflight sync.Map // map[string]*atomic.Int64

	workersActive atomic.Int64
}

// NewMetrics creates all instruments on the global meter provider and
// registers callbacks.
func NewMetrics() (*Metrics, error) {
	m := &Metrics{}
	meter := otel.Meter(meterName)

	var err error

	m.HTTPRequestsTotal, err = meter.Int64Counter("http_requests_total")
	if err != nil {
		return nil, errors.Wrap(err, "http_requests_total")
	}
	m.HTTPRequestDuration, err = meter.Float64Histogram("http_request_duration_ms")
	if err != nil {
		return nil, errors.Wrap(err, "http_request_duration_ms")
	}

	m.BurnRuns, err = meter.Int64Counter("burn_runs_total")
	if err != nil {
		return nil, errors.Wrap(err, "burn_runs_total")
	}
	m.BurnIterations, err = meter.Int64Counter("burn_iterations_total")
	if err != nil {
		return nil, errors.Wrap(err, "burn_iterations_total")
	}
	m.BurnRunDuration, err = meter.Float64Histogram("burn_run_duration_ms")
	if err != nil {
		return nil, errors.Wrap(err, "burn_run_duration_ms")
	}
	m.BurnWaitInterrupted, err = meter.Int64Counter("burn_wait_interrupted_total")
	if err != nil {
		return nil, errors.Wrap(err, "burn_wait_interrupted_total")
	}

	// http_inflight gauge reports current in-flight requests per endpoint.
	_, err = meter.Int64ObservableGauge("http_inflight",
		metric.WithInt64Callback(func(ctx context.Context, obs metric.Int64Observer) error {
			m.inflight.Range(func(k, v any) bool {
				endpoint := k.(string)
				val := v.(*atomic.Int64).Load()
				obs.Observe(val, metric.WithAttributes(attribute.String("endpoint", endpoint)))
				return true
			})
			return nil
		}),
	)
	if err != nil {
		return nil, errors.Wrap(err, "http_inflight")
	}

	_, err = meter.Int64ObservableGauge("burn_workers_active",
		metric.WithInt64Callback(func(ctx context.Context, obs metric.Int64Observer) error {
			obs.Observe(m.workersActive.Load())
			return nil
		}),
	)
	if err != nil {
		return nil, errors.Wrap(err, "burn_workers_active")
	}

	return m, nil
}

// IncInflight increments the in-flight counter for an endpoint.
func (m *Metrics) IncInflight(endpoint string) {
	v, _ := m.inflight.LoadOrStore(endpoint, &atomic.Int64{})
	v.(*atomic.Int64).Add(1)
}

// DecInflight decrements the in-flight counter for an endpoint.
func (m *Metrics) DecInflight(endpoint string) {
	if v, ok := m.inflight.Load(endpoint); ok {
		v.(*atomic.Int64).Add(-1)
	}
}

// WorkersActive returns the number of burn workers currently running.
func (m *Metrics) WorkersActive() int64 { return m.workersActive.Load() }

// WorkerStarted increments the burn_workers_active gauge.
func (m *Metrics) WorkerStarted() { m.workersActive.Add(1) }

// WorkerFinished decrements the burn_workers_active gauge.
func (m *Metrics) WorkerFinished() { m.workersActive.Add(-1) }

// WaitInterrupted counts a run whose caller was cancelled during the join.
func (m *Metrics) WaitInterrupted(ctx context.Context) {
	m.BurnWaitInterrupted.Add(ctx, 1)
}

// RunRejected counts a run refused for lack of worker capacity.
func (m *Metrics) RunRejected(ctx context.Context, _ int) {
	m.BurnRuns.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "rejected")))
}

// RunCompleted records the outcome, iterations and wall time of a finished run.
// Thread counts are request-controlled, so they are not used as attributes.
func (m *Metrics) RunCompleted(ctx context.Context, res models.StressResult) {
	m.BurnRuns.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "completed")))
	m.BurnIterations.Add(ctx, int64(res.TotalIterations))
	m.BurnRunDuration.Record(ctx, float64(res.ElapsedMillis))
}
