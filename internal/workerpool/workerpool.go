// Package workerpool bounds the number of goroutines running submitted
// jobs. internal/flush submits every flush cycle through it; stats and
// behavioral queries do not use it and run on the request goroutine.
package workerpool

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Pool runs submitted jobs on at most size concurrent goroutines.
type Pool struct {
	sem chan struct{}
	g   *errgroup.Group
	ctx context.Context
}

// New returns a pool bound to ctx with size concurrent slots. size <= 0
// means unbounded (errgroup.SetLimit is skipped).
func New(ctx context.Context, size int) *Pool {
	g, gctx := errgroup.WithContext(ctx)
	if size > 0 {
		g.SetLimit(size)
	}
	return &Pool{g: g, ctx: gctx}
}

// Submit schedules fn to run on the pool, blocking if every slot is busy.
func (p *Pool) Submit(fn func(context.Context) error) {
	p.g.Go(func() error {
		return fn(p.ctx)
	})
}

// Wait blocks until every submitted job has returned, and returns the
// first non-nil error encountered, if any.
func (p *Pool) Wait() error {
	return p.g.Wait()
}

// Context returns the pool's derived context, canceled the moment any job
// returns a non-nil error.
func (p *Pool) Context() context.Context {
	return p.ctx
}
