package job

import (
	"fmt"

	srvErrors "github.com/kubev2v/transfer-agent/pkg/errors"
)

// Void is the result type of jobs that produce nothing.
type Void = struct{}

type step func(status *RunnerStatus, in any) (any, error)

// Job describes a computation and its continuations. Nothing runs until the
// job is handed to LaunchSync or LaunchAsync.
//
// A Job is immutable: appending a continuation returns a new Job and leaves
// the receiver untouched, so the same Job can be launched or extended many
// times.
type Job[T any] struct {
	steps []step
}

// Supply creates a job whose first step is fn.
func Supply[T any](fn func(status *RunnerStatus) (T, error)) Job[T] {
	return Job[T]{steps: []step{
		func(status *RunnerStatus, _ any) (any, error) {
			return fn(status)
		},
	}}
}

// Run creates a job that produces no result.
func Run(fn func(status *RunnerStatus) error) Job[Void] {
	return Job[Void]{steps: []step{
		func(status *RunnerStatus, _ any) (any, error) {
			return Void{}, fn(status)
		},
	}}
}

// ThenApply returns a job running j and then fn on its result.
func ThenApply[T, U any](j Job[T], fn func(status *RunnerStatus, result T) (U, error)) Job[U] {
	return Job[U]{steps: j.append(func(status *RunnerStatus, in any) (any, error) {
		return fn(status, as[T](in))
	})}
}

// ThenAccept returns a job running j and then fn on its result, discarding
// what fn does with it.
func (j Job[T]) ThenAccept(fn func(status *RunnerStatus, result T) error) Job[Void] {
	return Job[Void]{steps: j.append(func(status *RunnerStatus, in any) (any, error) {
		return Void{}, fn(status, as[T](in))
	})}
}

// ThenRun returns a job running j and then fn, ignoring j's result.
func (j Job[T]) ThenRun(fn func(status *RunnerStatus) error) Job[Void] {
	return Job[Void]{steps: j.append(func(status *RunnerStatus, _ any) (any, error) {
		return Void{}, fn(status)
	})}
}

// Len returns the number of steps in the chain.
func (j Job[T]) Len() int {
	return len(j.steps)
}

func (j Job[T]) append(s step) []step {
	steps := make([]step, len(j.steps), len(j.steps)+1)
	copy(steps, j.steps)
	return append(steps, s)
}

// execute runs every step in order on the calling goroutine. The first
// failing step stops the chain.
func (j Job[T]) execute(status *RunnerStatus) (T, error) {
	var v any
	for i, s := range j.steps {
		var err error
		v, err = runStep(s, i, status, v)
		if err != nil {
			var zero T
			return zero, err
		}
	}
	return as[T](v), nil
}

func runStep(s step, i int, status *RunnerStatus, in any) (out any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = srvErrors.NewJobFailedError(i, fmt.Errorf("job step panicked: %v", rec))
		}
	}()

	out, err = s(status, in)
	if err != nil {
		return nil, srvErrors.NewJobFailedError(i, err)
	}
	return out, nil
}

// as converts an untyped step result back to T. A nil interface becomes the
// zero value, which covers jobs of interface or pointer types.
func as[T any](v any) T {
	if v == nil {
		var zero T
		return zero
	}
	return v.(T)
}
