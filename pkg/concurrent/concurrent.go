package concurrent

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ForEach runs action for every element with at most limit goroutines at a
// time (limit <= 0 means unbounded). The first error cancels the context
// passed to the remaining actions and is returned once all have finished.
func ForEach[T any](ctx context.Context, in []T, limit int, action func(ctx context.Context, i int, v T) error) error {
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, v := range in {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return action(ctx, i, v)
		})
	}
	return g.Wait()
}

// Map applies mapFn to every element in parallel, preserving order.
func Map[T any, R any](ctx context.Context, in []T, limit int, mapFn func(ctx context.Context, v T) (R, error)) ([]R, error) {
	out := make([]R, len(in))
	err := ForEach(ctx, in, limit, func(ctx context.Context, i int, v T) error {
		r, err := mapFn(ctx, v)
		if err != nil {
			return err
		}
		out[i] = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
