package observability

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"cpu-burn-lab/internal/models"
)

func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	prev := otel.GetMeterProvider()
	otel.SetMeterProvider(mp)
	t.Cleanup(func() {
		otel.SetMeterProvider(prev)
		_ = mp.Shutdown(context.Background())
	})

	m, err := NewMetrics()
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestRunCompletedRecordsIterations(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RunCompleted(ctx, models.StressResult{ThreadCount: 2, TotalIterations: 42, ElapsedMillis: 1000})
	m.RunCompleted(ctx, models.StressResult{ThreadCount: 2, TotalIterations: 8, ElapsedMillis: 1000})

	got := collect(t, reader)
	sum, ok := got["burn_iterations_total"].Data.(metricdata.Sum[int64])
	if !ok || len(sum.DataPoints) != 1 {
		t.Fatalf("burn_iterations_total = %#v", got["burn_iterations_total"].Data)
	}
	if v := sum.DataPoints[0].Value; v != 50 {
		t.Errorf("burn_iterations_total = %d, want 50", v)
	}
}

func TestRunSeriesIgnoreThreadCount(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	for _, threads := range []int{1, 4, 64, 999} {
		m.RunCompleted(ctx, models.StressResult{ThreadCount: threads, ElapsedMillis: 1000})
		m.RunRejected(ctx, threads)
	}

	got := collect(t, reader)
	runs, ok := got["burn_runs_total"].Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("burn_runs_total = %#v", got["burn_runs_total"].Data)
	}
	if len(runs.DataPoints) != 2 {
		t.Errorf("burn_runs_total has %d series, want 2 (completed, rejected)", len(runs.DataPoints))
	}
	for _, dp := range runs.DataPoints {
		if dp.Attributes.Len() != 1 {
			t.Errorf("burn_runs_total attributes = %v, want outcome only", dp.Attributes.ToSlice())
		}
		if dp.Value != 4 {
			t.Errorf("burn_runs_total%v = %d, want 4", dp.Attributes.ToSlice(), dp.Value)
		}
	}

	hist, ok := got["burn_run_duration_ms"].Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("burn_run_duration_ms = %#v", got["burn_run_duration_ms"].Data)
	}
	if len(hist.DataPoints) != 1 || hist.DataPoints[0].Count != 4 {
		t.Errorf("burn_run_duration_ms data points = %+v, want one series with 4 samples", hist.DataPoints)
	}
}

func TestWorkersActiveGauge(t *testing.T) {
	m, reader := newTestMetrics(t)

	m.WorkerStarted()
	m.WorkerStarted()
	m.WorkerStarted()
	m.WorkerFinished()

	if n := m.WorkersActive(); n != 2 {
		t.Fatalf("WorkersActive() = %d, want 2", n)
	}

	got := collect(t, reader)
	g, ok := got["burn_workers_active"].Data.(metricdata.Gauge[int64])
	if !ok || len(g.DataPoints) != 1 {
		t.Fatalf("burn_workers_active = %#v", got["burn_workers_active"].Data)
	}
	if v := g.DataPoints[0].Value; v != 2 {
		t.Errorf("burn_workers_active = %d, want 2", v)
	}
}

func TestInflightGauge(t *testing.T) {
	m, reader := newTestMetrics(t)

	m.IncInflight("stress")
	m.IncInflight("stress")
	m.DecInflight("stress")
	m.DecInflight("unknown")

	got := collect(t, reader)
	g, ok := got["http_inflight"].Data.(metricdata.Gauge[int64])
	if !ok || len(g.DataPoints) != 1 {
		t.Fatalf("http_inflight = %#v", got["http_inflight"].Data)
	}
	if v := g.DataPoints[0].Value; v != 1 {
		t.Errorf("http_inflight = %d, want 1", v)
	}
}
