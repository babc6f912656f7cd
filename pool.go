package sdr

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"
)

// Pool bounds the number of asynchronous sinks running at once.
//
// A pool is passed explicitly to ConnectAsync and AttachAsync; nodes
// sharing a pool share its workers. Close cancels pending acquisitions so
// a shutdown never blocks on a full pool.
type Pool struct {
	size   int
	sem    *semaphore.Weighted
	ctx    context.Context
	cancel context.CancelFunc
}

// NewPool returns a pool running at most workers sinks concurrently.
func NewPool(workers int) (*Pool, error) {
	if workers < 1 {
		return nil, fmt.Errorf("%w: pool workers must be positive: %d", ErrInvalidConfig, workers)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		size:   workers,
		sem:    semaphore.NewWeighted(int64(workers)),
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

// Size returns the number of workers.
func (p *Pool) Size() int { return p.size }

// Close cancels the pool. Dispatches waiting for a worker fail with
// ErrPoolClosed; running sinks finish normally.
func (p *Pool) Close() { p.cancel() }

// run executes fn once a worker is free.
func (p *Pool) run(fn func()) error {
	if err := p.sem.Acquire(p.ctx, 1); err != nil {
		return fmt.Errorf("%w: %w", ErrPoolClosed, err)
	}
	defer p.sem.Release(1)
	fn()
	return nil
}
