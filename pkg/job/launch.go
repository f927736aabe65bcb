package job

import (
	"context"
	"fmt"
	"iter"

	"go.uber.org/zap"

	"github.com/kubev2v/transfer-agent/pkg/scheduler"
)

// LaunchSync runs j on a scheduler worker and returns its final result.
func LaunchSync[T any](j Job[T], opts ...Option) (T, error) {
	results, err := LaunchSyncAll([]Job[T]{j}, opts...)
	if err != nil {
		var zero T
		return zero, err
	}
	return results[0], nil
}

// LaunchSyncAll runs every job on the scheduler and returns their results in
// the order of jobs.
//
// Results are awaited in order. The first failure found that way is returned
// with nil results, and the remaining jobs are asked to stop through their
// RunnerStatus. They are not waited for.
//
// With WithContext, ctx being done cancels the jobs, and the error of ctx is
// returned instead of the results once they all returned.
func LaunchSyncAll[T any](jobs []Job[T], opts ...Option) ([]T, error) {
	o := newLaunchOptions(opts)
	status := newRunnerStatus()

	stop := context.AfterFunc(o.ctx, status.cancel)
	defer stop()

	futures := make([]*scheduler.Future[scheduler.Result[any]], 0, len(jobs))
	for _, j := range jobs {
		f, err := o.scheduler.Submit(work(j, status, nil))
		if err != nil {
			status.cancel()
			return nil, err
		}
		futures = append(futures, f)
	}

	results := make([]T, len(jobs))
	for i, f := range futures {
		res := <-f.C()
		if res.Err != nil {
			status.cancel()
			return nil, res.Err
		}
		results[i] = as[T](res.Data)
	}
	if err := o.ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// LaunchAsync starts j in the background and returns its Runner.
func LaunchAsync[T any](j Job[T], opts ...Option) *Runner {
	return LaunchAsyncAll(func(yield func(Job[T]) bool) {
		yield(j)
	}, opts...)
}

// LaunchAsyncAll starts every job produced by jobs in the background and
// returns the Runner of the batch. The sequence is consumed on another
// goroutine, so a slow or unbounded producer does not block the caller.
func LaunchAsyncAll[T any](jobs iter.Seq[Job[T]], opts ...Option) *Runner {
	o := newLaunchOptions(opts)
	r := newRunner()

	zap.S().Named("jobs").Debugw("launching runner", "runner", r.id, "scheduler", o.scheduler.Name())

	stop := context.AfterFunc(o.ctx, r.Cancel)
	r.OnComplete(func() { stop() })

	go submitAll(r, o.scheduler, jobs)
	return r
}

func submitAll[T any](r *Runner, s *scheduler.Scheduler, jobs iter.Seq[Job[T]]) {
	defer r.release()
	defer func() {
		if rec := recover(); rec != nil {
			zap.S().Named("jobs").Errorw("job producer panicked", "runner", r.id, "panic", rec)
			r.mu.Lock()
			r.errs = append(r.errs, fmt.Errorf("job producer panicked: %v", rec))
			r.mu.Unlock()
		}
	}()

	for j := range jobs {
		r.acquire()
		if _, err := s.Submit(work(j, r.status, r)); err != nil {
			zap.S().Named("jobs").Warnw("failed to submit job", "runner", r.id, "error", err)
			r.terminate(err)
		}
	}
}

// work adapts a job to the scheduler. Closing the scheduler cancels status.
func work[T any](j Job[T], status *RunnerStatus, r *Runner) scheduler.Work[any] {
	return func(ctx context.Context) (any, error) {
		stop := context.AfterFunc(ctx, status.cancel)
		defer stop()

		v, err := j.execute(status)
		if r != nil {
			r.terminate(err)
		}
		if err != nil {
			zap.S().Named("jobs").Debugw("job failed", "error", err)
			return nil, err
		}
		return v, nil
	}
}
