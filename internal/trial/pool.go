package trial

import (
	"context"
	"runtime"
	"sync"
)

// Pool runs indexed jobs across a fixed number of goroutines. It backs
// the ensemble's workers and the batch package's sweep points.
type Pool struct {
	workers int
}

func NewPool(workers int) *Pool {
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Pool{workers: workers}
}

func (p *Pool) Workers() int {
	return p.workers
}

// Map runs fn for every index in [0, n), at most workers at a time.
// The first error stops new jobs from being handed out; cancellation
// wins over job errors in the return value.
func (p *Pool) Map(ctx context.Context, n int, fn func(i int) error) error {
	jobs := make(chan int)

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
		failed   = make(chan struct{})
	)

	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if err := fn(i); err != nil {
					errOnce.Do(func() {
						firstErr = err
						close(failed)
					})
				}
			}
		}()
	}

feed:
	for i := 0; i < n; i++ {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		case <-failed:
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}
	return firstErr
}
