package job

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RunnerStats counts the jobs of a batch.
type RunnerStats struct {
	Submitted int `json:"submitted"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// Runner is the handle of a batch launched with LaunchAsync or LaunchAsyncAll.
type Runner struct {
	id     string
	status *RunnerStatus
	done   chan struct{}

	mu        sync.Mutex
	pending   int
	complete  bool
	callbacks []func()
	errs      []error
	stats     RunnerStats
}

func newRunner() *Runner {
	return &Runner{
		id:     uuid.NewString(),
		status: newRunnerStatus(),
		done:   make(chan struct{}),
		// held by the producer of the batch until every job was submitted
		pending: 1,
	}
}

// ID identifies the batch.
func (r *Runner) ID() string { return r.id }

// Cancel asks every job of the batch to stop. Jobs are not interrupted: a
// body that never checks its RunnerStatus runs to the end.
func (r *Runner) Cancel() {
	if r.status.IsStillRunning() {
		zap.S().Named("jobs").Debugw("cancelling runner", "runner", r.id)
	}
	r.status.cancel()
}

// OnComplete registers cb to run once every job of the batch terminated.
// If the batch is already complete, cb runs right away on the calling goroutine.
func (r *Runner) OnComplete(cb func()) *Runner {
	r.mu.Lock()
	if !r.complete {
		r.callbacks = append(r.callbacks, cb)
		r.mu.Unlock()
		return r
	}
	r.mu.Unlock()

	r.invoke(cb)
	return r
}

// WaitForCompletion blocks until every job of the batch terminated and the
// callbacks registered before that ran. Calling it from a callback deadlocks.
func (r *Runner) WaitForCompletion() {
	<-r.done
}

// Wait blocks until every job of the batch terminated or ctx is done.
func (r *Runner) Wait(ctx context.Context) error {
	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done returns the channel WaitForCompletion waits on.
func (r *Runner) Done() <-chan struct{} {
	return r.done
}

// IsComplete reports whether every job of the batch terminated.
func (r *Runner) IsComplete() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.complete
}

func (r *Runner) IsCancelled() bool {
	return r.status.IsCancelled()
}

// Errors returns the failures of the jobs terminated so far.
func (r *Runner) Errors() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.errs...)
}

func (r *Runner) Stats() RunnerStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

// acquire registers one more job with the completion barrier.
func (r *Runner) acquire() {
	r.mu.Lock()
	r.pending++
	r.stats.Submitted++
	r.mu.Unlock()
}

// terminate records the outcome of a job and releases its slot.
func (r *Runner) terminate(err error) {
	r.mu.Lock()
	if err != nil {
		r.errs = append(r.errs, err)
		r.stats.Failed++
	} else {
		r.stats.Succeeded++
	}
	r.mu.Unlock()

	r.release()
}

// release drops one slot of the barrier. The call reaching zero completes the
// runner and is the only one running the callbacks.
func (r *Runner) release() {
	r.mu.Lock()
	r.pending--
	if r.pending > 0 || r.complete {
		r.mu.Unlock()
		return
	}
	r.complete = true
	callbacks := r.callbacks
	r.callbacks = nil
	stats := r.stats
	r.mu.Unlock()

	zap.S().Named("jobs").Debugw("runner complete", "runner", r.id, "succeeded", stats.Succeeded, "failed", stats.Failed)

	for _, cb := range callbacks {
		r.invoke(cb)
	}
	close(r.done)
}

func (r *Runner) invoke(cb func()) {
	defer func() {
		if rec := recover(); rec != nil {
			zap.S().Named("jobs").Errorw("completion callback panicked", "runner", r.id, "panic", rec)
		}
	}()
	cb()
}
