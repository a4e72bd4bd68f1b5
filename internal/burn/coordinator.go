// Package burn drives CPU utilization by running parallel workers in a tight
// math loop until a shared deadline and aggregating their iteration counts.
package burn

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/semaphore"

	"cpu-burn-lab/internal/log"
	"cpu-burn-lab/internal/logfields"
	"cpu-burn-lab/internal/models"
	"cpu-burn-lab/internal/observability"
)

// DefaultMaxWorkers caps the workers running at once across all runs. Every
// worker holds an OS thread, and the runtime aborts the process once it
// exceeds its thread limit (10000 unless changed with debug.SetMaxThreads).
const DefaultMaxWorkers = 9000

// Recorder receives coordinator events for metrics.
type Recorder interface {
	WorkerStarted()
	WorkerFinished()
	WaitInterrupted(ctx context.Context)
	RunRejected(ctx context.Context, threads int)
	RunCompleted(ctx context.Context, res models.StressResult)
}

type nopRecorder struct{}

func (nopRecorder) WorkerStarted() {}
func (nopRecorder) WorkerFinished() {}
func (nopRecorder) WaitInterrupted(context.Context) {}
func (nopRecorder) RunRejected(context.Context, int) {}
func (nopRecorder) RunCompleted(context.Context, models.StressResult) {}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithBatchSize sets the evaluations per batch. Values < 1 are ignored.
func WithBatchSize(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.batchSize = n
		}
	}
}

// WithMaxWorkers sets the worker capacity shared by concurrent runs. Runs
// that would exceed it fail with [ErrResourceExhaustion] instead of crashing
// the process on the runtime thread limit. Values < 1 are ignored.
func WithMaxWorkers(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.maxWorkers = int64(n)
		}
	}
}

// WithRecorder routes coordinator events to r.
func WithRecorder(r Recorder) Option {
	return func(c *Coordinator) {
		if r != nil {
			c.rec = r
		}
	}
}

// WithOnComplete registers fn to be called with every finished result,
// after all workers have joined and before Run returns.
func WithOnComplete(fn func(context.Context, models.StressResult)) Option {
	return func(c *Coordinator) { c.onComplete = fn }
}

// Coordinator runs burn workers. It is safe for concurrent use.
type Coordinator struct {
	batchSize  int
	maxWorkers int64
	slots      *semaphore.Weighted
	rec        Recorder
	onComplete func(context.Context, models.StressResult)

	now  func() time.Time
	burn func(ctx context.Context, deadline time.Time) uint64
}

// New creates a Coordinator.
func New(opts ...Option) *Coordinator {
	c := &Coordinator{
		batchSize:  DefaultBatchSize,
		maxWorkers: DefaultMaxWorkers,
		rec:        nopRecorder{},
		now:        time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	c.slots = semaphore.NewWeighted(c.maxWorkers)
	c.burn = func(ctx context.Context, deadline time.Time) uint64 {
		return Loop(ctx, c.now, deadline, c.batchSize)
	}
	return c
}

// Run starts threadCount workers that burn CPU for durationSeconds, waits for
// all of them and returns the aggregated result. Inputs are not validated:
// threadCount <= 0 runs nothing and durationSeconds <= 0 makes every worker
// stop before its first batch.
//
// Cancelling ctx does not stop the workers. If it happens while Run is
// waiting, the interruption is logged and recorded in the result and Run
// keeps waiting.
func (c *Coordinator) Run(ctx context.Context, threadCount, durationSeconds int) (_ models.StressResult, err error) {
	runID := uuid.NewString()

	ctx, span := observability.StartSpan(ctx, "burn.Run", trace.WithAttributes(
		attribute.String(logfields.RunID, runID),
		attribute.Int(logfields.Threads, threadCount),
		attribute.Int(logfields.Duration, durationSeconds),
	))
	defer func() {
		observability.SetSpanStatus(span, err)
		span.End()
	}()

	ctx = log.UpdateContext(ctx, logrus.Fields{
		logfields.RunID:    runID,
		logfields.Threads:  threadCount,
		logfields.Duration: durationSeconds,
	})

	if threadCount > 0 {
		if !c.slots.TryAcquire(int64(threadCount)) {
			c.rec.RunRejected(ctx, threadCount)
			return models.StressResult{}, errors.Wrapf(ErrResourceExhaustion,
				"%d workers requested, capacity %d", threadCount, c.maxWorkers)
		}
		defer c.slots.Release(int64(threadCount))
	}

	start := c.now()
	deadline := start.Add(time.Duration(durationSeconds) * time.Second)

	log.G(ctx).WithFields(logrus.Fields{
		logfields.Deadline:  deadline,
		logfields.BatchSize: c.batchSize,
	}).Info("spawning burn workers")

	var (
		total atomic.Uint64
		wg    sync.WaitGroup
	)
	// Workers outlive a cancelled caller.
	workerCtx := context.WithoutCancel(ctx)

	for i := 0; i < threadCount; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()

			runtime.LockOSThread()
			defer runtime.UnlockOSThread()

			c.rec.WorkerStarted()
			defer c.rec.WorkerFinished()

			wctx := log.UpdateContext(workerCtx, logrus.Fields{logfields.WorkerID: id})
			log.G(wctx).Debug("burn worker started")

			n := c.burn(wctx, deadline)
			total.Add(n)

			log.G(wctx).WithField(logfields.Iterations, n).Debug("burn worker completed")
		}(i)
	}

	interrupted := c.wait(ctx, &wg)
	elapsed := c.now().Sub(start)

	res := models.StressResult{
		RunID:           runID,
		ThreadCount:     threadCount,
		TotalIterations: total.Load(),
		ElapsedMillis:   elapsed.Milliseconds(),
		WaitInterrupted: interrupted,
	}

	span.SetAttributes(
		attribute.Int64(logfields.Iterations, int64(res.TotalIterations)),
		attribute.Int64(logfields.ElapsedMs, res.ElapsedMillis),
	)
	log.G(ctx).WithFields(logrus.Fields{
		logfields.Iterations: res.TotalIterations,
		logfields.ElapsedMs:  res.ElapsedMillis,
	}).Info("all burn workers completed")

	c.rec.RunCompleted(ctx, res)
	if c.onComplete != nil {
		c.onComplete(ctx, res)
	}
	return res, nil
}

// wait blocks until wg is done. It reports whether ctx was cancelled first.
func (c *Coordinator) wait(ctx context.Context, wg *sync.WaitGroup) bool {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return false
	case <-ctx.Done():
		log.G(ctx).WithError(ctx.Err()).Warn("interrupted while waiting for burn workers, still waiting")
		c.rec.WaitInterrupted(ctx)
		<-done
		return true
	}
}
