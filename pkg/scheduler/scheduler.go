package scheduler

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	srvErrors "github.com/kubev2v/transfer-agent/pkg/errors"
)

type queue[T any] []T

func (wq *queue[T]) Len() int { return len(*wq) }

func (wq *queue[T]) Pop() T {
	old := *wq
	x := old[0]
	var zero T
	old[0] = zero
	*wq = old[1:]
	return x
}

func (wq *queue[T]) Push(t T) {
	*wq = append(*wq, t)
}

type workRequest struct {
	fn     Work[any]
	c      chan Result[any]
	ctx    context.Context
	cancel context.CancelFunc
}

type worker struct {
	done    chan any
	wg      *sync.WaitGroup
	metrics *metrics
}

func (w worker) Work(r workRequest) {
	// detaches the request context from the main context once fn returned
	defer r.cancel()
	defer func() {
		if rec := recover(); rec != nil {
			w.metrics.panicked()
			zap.S().Named("scheduler").Errorw("work panicked", "panic", rec)
			r.c <- Result[any]{Err: fmt.Errorf("worker panicked: %v", rec)}
		}
		w.done <- struct{}{}
		w.wg.Done()
	}()

	v, err := r.fn(r.ctx)
	r.c <- Result[any]{Data: v, Err: err}
}

func newWorker(done chan any, wg *sync.WaitGroup, m *metrics) worker {
	return worker{done: done, wg: wg, metrics: m}
}

// Stats is a point in time view of the scheduler load.
type Stats struct {
	Workers   int    `json:"workers"`
	Busy      int    `json:"busy"`
	Queued    int    `json:"queued"`
	Completed uint64 `json:"completed"`
}

type Scheduler struct {
	name       string
	size       int
	workers    *queue[worker]
	workQueue  *queue[workRequest]
	close      chan any
	done       chan any
	exited     chan any
	work       chan workRequest
	mainCtx    context.Context
	mainCancel context.CancelFunc
	wg         sync.WaitGroup
	once       sync.Once
	metrics    *metrics

	busy      atomic.Int64
	queued    atomic.Int64
	completed atomic.Uint64
}

// NewScheduler starts a scheduler with nbWorkers workers.
// If nbWorkers is not positive, the number of CPUs is used.
func NewScheduler(nbWorkers int, opts ...Option) *Scheduler {
	if nbWorkers <= 0 {
		nbWorkers = runtime.NumCPU()
	}

	o := options{name: "default"}
	for _, opt := range opts {
		opt(&o)
	}

	done := make(chan any, nbWorkers)
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		name:       o.name,
		size:       nbWorkers,
		workers:    &queue[worker]{},
		workQueue:  &queue[workRequest]{},
		close:      make(chan any),
		done:       done,
		exited:     make(chan any),
		work:       make(chan workRequest),
		mainCtx:    ctx,
		mainCancel: cancel,
		metrics:    newMetrics(o.name, o.registerer),
	}
	for range nbWorkers {
		s.workers.Push(newWorker(done, &s.wg, s.metrics))
	}
	go s.run()

	zap.S().Named("scheduler").Debugw("scheduler started", "name", s.name, "workers", nbWorkers)

	return s
}

// Name returns the name the scheduler was created with.
func (s *Scheduler) Name() string { return s.name }

// Size returns the maximum number of work functions running at the same time.
func (s *Scheduler) Size() int { return s.size }

// Submit queues w for execution. It fails only when the scheduler is closed.
func (s *Scheduler) Submit(w Work[any]) (*Future[Result[any]], error) {
	c := make(chan Result[any], 1)
	ctx, cancel := context.WithCancel(s.mainCtx)

	select {
	case <-s.mainCtx.Done():
		cancel()
		return nil, srvErrors.NewSchedulerClosedError()
	case s.work <- workRequest{fn: w, c: c, ctx: ctx, cancel: cancel}:
	}

	return NewFuture[Result[any]](c, cancel), nil
}

// AddWork queues w for execution. When the scheduler is closed the returned
// future already holds a context.Canceled result.
func (s *Scheduler) AddWork(w Work[any]) *Future[Result[any]] {
	f, err := s.Submit(w)
	if err != nil {
		c := make(chan Result[any], 1)
		// we're closing here so send a result with an error
		c <- Result[any]{Err: context.Canceled}
		return NewFuture[Result[any]](c, func() {})
	}
	return f
}

// Stats returns the current load of the scheduler.
func (s *Scheduler) Stats() Stats {
	return Stats{
		Workers:   s.size,
		Busy:      int(s.busy.Load()),
		Queued:    int(s.queued.Load()),
		Completed: s.completed.Load(),
	}
}

// Close cancels the context of every work, runs the work already queued and
// waits for all of it to finish. It is safe to call Close more than once.
func (s *Scheduler) Close() {
	s.once.Do(func() {
		s.mainCancel()
		s.close <- struct{}{}
		<-s.exited
		s.metrics.unregister()
		zap.S().Named("scheduler").Debugw("scheduler closed", "name", s.name, "completed", s.completed.Load())
	})
}

func (s *Scheduler) run() {
	defer close(s.exited)

	work := s.work
	closing := false
	for {
		select {
		case w := <-work:
			s.workQueue.Push(w)
			s.queued.Add(1)
			s.metrics.setQueued(s.workQueue.Len())
			s.dispatch()
		case <-s.done:
			s.busy.Add(-1)
			s.completed.Add(1)
			s.metrics.workDone()
			s.workers.Push(newWorker(s.done, &s.wg, s.metrics))
			s.dispatch()
		case <-s.close:
			// stop accepting work, the queued requests are drained below
			closing = true
			work = nil
		}

		if closing && s.workQueue.Len() == 0 && s.busy.Load() == 0 {
			s.wg.Wait()
			return
		}
	}
}

// dispatch drains the workQueue as much as possible
// based on available workers
func (s *Scheduler) dispatch() {
	for s.workers.Len() > 0 && s.workQueue.Len() > 0 {
		r := s.workQueue.Pop()
		worker := s.workers.Pop()
		s.queued.Add(-1)
		s.busy.Add(1)
		s.wg.Add(1)
		go worker.Work(r)
	}
	s.metrics.setQueued(s.workQueue.Len())
	s.metrics.setBusy(int(s.busy.Load()))
}
