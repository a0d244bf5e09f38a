package providers

import (
	"context"
	"sync"
	"time"
)

// RunBatches executes fn for indexes 0..n-1 in batches of batchSize, pausing
// delay between batches. Small batches with an explicit inter-batch pause are
// the backpressure policy for provider calls. Per-item errors are fn's
// problem (log and skip); only context cancellation stops the sweep early.
func RunBatches(ctx context.Context, n, batchSize int, delay time.Duration, fn func(ctx context.Context, i int)) error {
	if batchSize <= 0 {
		batchSize = 1
	}

	for start := 0; start < n; start += batchSize {
		if err := ctx.Err(); err != nil {
			return err
		}

		end := start + batchSize
		if end > n {
			end = n
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				fn(ctx, i)
			}(i)
		}
		wg.Wait()

		if end < n && delay > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return nil
}
