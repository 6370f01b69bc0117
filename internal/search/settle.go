package search

import (
	"context"

	"golang.org/x/sync/errgroup"
)

type outcome[T any] struct {
	value T
	err   error
}

// settle calls fn for every item concurrently and waits for all calls to
// finish. It never fails as a whole: out[i] holds the value or error (a panic
// included) of fn(items[i]). limit <= 0 means no concurrency cap.
func settle[In, Out any](ctx context.Context, limit int, items []In, fn func(context.Context, In) (Out, error)) []outcome[Out] {
	out := make([]outcome[Out], len(items))

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, item := range items {
		g.Go(func() error {
			v, err := guard(func() (Out, error) { return fn(ctx, item) })
			out[i] = outcome[Out]{value: v, err: err}
			return nil
		})
	}
	_ = g.Wait()

	return out
}
