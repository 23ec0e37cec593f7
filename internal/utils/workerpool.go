package utils

import (
	"context"
	"sync"
)

// ParallelForEach executes fn for each item in parallel. The returned errors
// line up with items; items not started before ctx is done keep a nil
// error.
func ParallelForEach[T any](ctx context.Context, items []T, workers int, fn func(context.Context, T) error) []error {
	errs := make([]error, len(items))
	parallel(ctx, len(items), workers, func(ctx context.Context, idx int) {
		errs[idx] = fn(ctx, items[idx])
	})
	return errs
}

// ParallelMap applies fn to every item in parallel and returns the results
// in input order.
func ParallelMap[T, R any](ctx context.Context, items []T, workers int, fn func(context.Context, T) (R, error)) ([]R, []error) {
	results := make([]R, len(items))
	errs := make([]error, len(items))
	parallel(ctx, len(items), workers, func(ctx context.Context, idx int) {
		results[idx], errs[idx] = fn(ctx, items[idx])
	})
	return results, errs
}

// parallel runs task for indexes [0, n) on up to workers goroutines. Each
// index is handled by exactly one goroutine, so tasks may write to their
// own slot without locking.
func parallel(ctx context.Context, n, workers int, task func(context.Context, int)) {
	if n == 0 {
		return
	}
	if workers <= 0 {
		workers = 1
	}
	if workers > n {
		workers = n
	}

	taskChan := make(chan int, n)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case idx, ok := <-taskChan:
					if !ok {
						return
					}
					task(ctx, idx)
				}
			}
		}()
	}

	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			close(taskChan)
			wg.Wait()
			return
		case taskChan <- i:
		}
	}

	close(taskChan)
	wg.Wait()
}

// FirstError returns the first non-nil error from a slice of errors
func FirstError(errs []error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// CollectErrors collects all non-nil errors from a slice
func CollectErrors(errs []error) []error {
	var result []error
	for _, err := range errs {
		if err != nil {
			result = append(result, err)
		}
	}
	return result
}
