package scheduler

import (
	"context"
)

// Work is run by a worker with a context cancelled by Future.Stop or Close.
type Work[T any] func(ctx context.Context) (T, error)

type Result[T any] struct {
	Data T
	Err  error
}

// Future holds the single result of a submitted work.
type Future[T any] struct {
	result <-chan T
	stop   context.CancelFunc
}

// NewFuture wraps result, which must receive exactly one value. stop is
// called by Stop.
func NewFuture[T any](result <-chan T, stop context.CancelFunc) *Future[T] {
	return &Future[T]{result: result, stop: stop}
}

// C returns the channel receiving the result.
func (f *Future[T]) C() <-chan T {
	return f.result
}

// Stop cancels the context of the work. The result is still delivered.
func (f *Future[T]) Stop() {
	f.stop()
}
