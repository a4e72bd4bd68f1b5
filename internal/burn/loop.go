package burn

import (
	"context"
	"math"
	"time"

	"cpu-burn-lab/internal/log"
)

// DefaultBatchSize is the number of evaluations per batch. The deadline is
// only checked between batches, so it bounds how far a worker overruns.
const DefaultBatchSize = 1_000_000

// Loop burns CPU in batches of batchSize evaluations until now() reaches
// deadline and returns the number of completed batches.
func Loop(ctx context.Context, now func() time.Time, deadline time.Time, batchSize int) uint64 {
	var n uint64
	for now().Before(deadline) {
		if r := batch(batchSize); r == math.MaxFloat64 {
			log.G(ctx).WithField("result", r).Debug("unreachable batch result")
		}
		n++
	}
	return n
}

// batch must stay out of line and its result must be observed by the caller,
// otherwise the arithmetic can be dropped.
//
//go:noinline
func batch(size int) float64 {
	var sum float64
	for j := 0; j < size; j++ {
		x := float64(j)
		sum += math.Sqrt(x) * math.Sin(x) * math.Cos(x)
	}
	return sum
}
