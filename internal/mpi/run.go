package mpi

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// RankFunc is the body executed by every rank of a group.
type RankFunc func(ctx context.Context, comm Comm) error

// Run executes fn once per rank of w, each on its own goroutine, and waits
// for all of them. The first error cancels the context passed to the other
// ranks so that blocked receives unwind; that error is returned.
func Run(ctx context.Context, w *World, fn RankFunc) error {
	g, gctx := errgroup.WithContext(ctx)
	for rank := 0; rank < w.Size(); rank++ {
		c := w.Comm(rank)
		g.Go(func() error {
			return fn(gctx, c)
		})
	}
	return g.Wait()
}
