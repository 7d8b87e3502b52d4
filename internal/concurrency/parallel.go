package concurrency

import (
	"context"
	"sync"
)

// ParallelOptions configures parallel processing.
type ParallelOptions struct {
	// MaxWorkers caps the number of items in flight.
	MaxWorkers int
}

// DefaultOptions keeps a handful of requests in flight against one API.
func DefaultOptions() ParallelOptions {
	return ParallelOptions{
		MaxWorkers: 4,
	}
}

// ProcessParallel runs itemFunc for every item on a bounded pool of workers.
//
// results and errs are index-aligned with items: errs[i] is nil when item i
// succeeded. Items not started before ctx is done get ctx.Err().
func ProcessParallel[T any, R any](
	ctx context.Context,
	items []T,
	opts ParallelOptions,
	itemFunc func(ctx context.Context, index int, item T) (R, error),
) ([]R, []error) {
	results := make([]R, len(items))
	errs := make([]error, len(items))
	if len(items) == 0 {
		return results, errs
	}

	maxWorkers := opts.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = DefaultOptions().MaxWorkers
	}
	if maxWorkers > len(items) {
		maxWorkers = len(items)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < maxWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if err := ctx.Err(); err != nil {
					errs[i] = err
					continue
				}
				// each index is owned by exactly one worker
				results[i], errs[i] = itemFunc(ctx, i, items[i])
			}
		}()
	}

	for i := range items {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results, errs
}

// CountErrors returns the number of non-nil entries in errs.
func CountErrors(errs []error) int {
	n := 0
	for _, err := range errs {
		if err != nil {
			n++
		}
	}
	return n
}
