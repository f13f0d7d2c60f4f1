package runx

import (
	"context"
	"sync"
)

// Func processes a single item of a run.
type Func[T any] func(ctx context.Context, item T) error

// Parallel runs fn over items with at most concurrency invocations in
// flight. concurrency <= 0 (or larger than the item count) means full
// fan-out. The first error reported wins: it stops dispatch of unstarted
// items and is returned after all in-flight invocations have finished.
// Errors reported after the first are discarded. An empty items slice
// returns nil immediately.
func Parallel[T any](ctx context.Context, items []T, concurrency int, fn Func[T]) error {
	if len(items) == 0 {
		return nil
	}
	if concurrency <= 0 || concurrency > len(items) {
		concurrency = len(items)
	}

	var (
		mu       sync.Mutex
		next     int
		firstErr error
	)

	var wg sync.WaitGroup
	wg.Add(concurrency)

	for i := 0; i < concurrency; i++ {
		go func() {
			defer wg.Done()
			for {
				mu.Lock()
				if firstErr != nil || next >= len(items) {
					mu.Unlock()
					return
				}
				if err := ctx.Err(); err != nil {
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
					return
				}
				item := items[next]
				next++
				mu.Unlock()

				if err := fn(ctx, item); err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
					return
				}
			}
		}()
	}

	wg.Wait()
	return firstErr
}

// Sequential runs fn over items strictly in input order, invoking item i
// only after item i-1 completed without error. It returns the first error
// and processes nothing further; side effects of earlier items remain.
// An empty items slice returns nil immediately.
func Sequential[T any](ctx context.Context, items []T, fn Func[T]) error {
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(ctx, item); err != nil {
			return err
		}
	}
	return nil
}
