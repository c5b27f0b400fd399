package worker

import (
	"context"
	"sync"
)

// Run executes fn for every index in [0, n) using at most workers
// goroutines. Results land at their own index, so callers keep input order
// without any post-hoc sorting. fn must handle its own failures; Run only
// stops early when ctx is cancelled, leaving unstarted slots untouched.
func Run(ctx context.Context, n, workers int, fn func(ctx context.Context, i int)) {
	if n <= 0 {
		return
	}
	if workers <= 0 {
		workers = 1
	}
	if workers > n {
		workers = n
	}

	if workers == 1 {
		for i := 0; i < n; i++ {
			if ctx.Err() != nil {
				return
			}
			fn(ctx, i)
		}
		return
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)

	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			wg.Wait()
			return
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			fn(ctx, i)
		}(i)
	}

	wg.Wait()
}
