package scheduler

import (
	"context"
	"fmt"
	"runtime"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// TaskFunc runs the unit of work with the given index. Each index is handed
// to exactly one call.
type TaskFunc func(ctx context.Context, index int) error

// Options tune pool sizing.
type Options struct {
	// Workers caps concurrent tasks. Zero or less means GOMAXPROCS.
	Workers int
}

// Scheduler fans indices out to a fixed-size worker pool.
type Scheduler struct {
	workers int
	logger  zerolog.Logger
}

// New constructs a Scheduler instance.
func New(opts Options, logger zerolog.Logger) *Scheduler {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Scheduler{workers: workers, logger: logger.With().Str("component", "scheduler").Logger()}
}

// Workers reports the pool size.
func (s *Scheduler) Workers() int {
	return s.workers
}

// Run executes task for every index in [0, n) and blocks until all of them
// finish. The first error cancels the queue and is returned once in-flight
// tasks have drained.
func (s *Scheduler) Run(ctx context.Context, n int, task TaskFunc) error {
	if n <= 0 {
		return nil
	}

	workers := min(s.workers, n)
	s.logger.Debug().Int("tasks", n).Int("workers", workers).Msg("starting worker pool")

	g, gctx := errgroup.WithContext(ctx)
	queue := make(chan int, workers)

	g.Go(func() error {
		defer close(queue)
		for i := 0; i < n; i++ {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case queue <- i:
			}
		}
		return nil
	})

	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for i := range queue {
				if err := gctx.Err(); err != nil {
					return err
				}
				if err := task(gctx, i); err != nil {
					return fmt.Errorf("task %d: %w", i, err)
				}
			}
			return nil
		})
	}

	return g.Wait()
}
