// Package fanout runs independent tasks with a bounded number in flight.
package fanout

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DefaultLimit is the number of tasks allowed to run at once when no limit is given.
const DefaultLimit = 5

// Task is one unit of work. It should return promptly once ctx is cancelled.
type Task func(ctx context.Context) error

// Run executes tasks with at most limit running concurrently. Excess tasks wait for a
// slot. The first error cancels the context passed to the remaining tasks and is
// returned after every started task has finished.
func Run(ctx context.Context, limit int, tasks ...Task) error {
	if limit <= 0 {
		limit = DefaultLimit
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, task := range tasks {
		if task == nil {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return task(gctx)
		})
	}
	return g.Wait()
}
