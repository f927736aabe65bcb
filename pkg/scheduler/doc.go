// Package scheduler is a fixed size worker pool with an unbounded FIFO
// backlog. Work is a func(ctx) (any, error); submitting it returns a Future
// whose channel receives exactly one Result.
//
// # Submitting
//
//	s := scheduler.NewScheduler(4, scheduler.WithName("transfers"))
//	defer s.Close()
//
//	f, err := s.Submit(func(ctx context.Context) (any, error) {
//	    return copyForm(ctx, src, dst)
//	})
//	if err != nil {
//	    return err // *errors.SchedulerClosedError
//	}
//	res := <-f.C()
//
// AddWork never fails: on a closed scheduler its future already holds
// Result{Err: context.Canceled}. Submit reports the same case as a
// SchedulerClosedError so callers can tell it from a cancelled work.
//
// Work starts in submission order and at most NewScheduler's worker count
// runs at once. A panicking work is recovered; its result carries the panic
// as an error and the worker goes back to the pool.
//
// # Contexts
//
// Each work gets a context derived from the scheduler. Future.Stop cancels
// it early, Close cancels all of them, and it is released as soon as the
// work returns.
//
// # Close
//
// Close stops accepting work and cancels the main context, then keeps
// dispatching what was already queued. Those works run with a cancelled
// context, so nothing accepted is dropped. Close returns once the backlog
// is empty and no worker is busy. It can be called more than once.
//
// # Stats and metrics
//
// Stats reads atomic counters updated by the event loop:
//
//	Workers    pool size
//	Busy       works running now
//	Queued     works waiting for a worker
//	Completed  works finished since creation, panics included
//
// WithMetrics(reg) exports the same load as Prometheus collectors, labelled
// with the WithName value:
//
//	transfer_agent_scheduler_queued_work           gauge
//	transfer_agent_scheduler_busy_workers          gauge
//	transfer_agent_scheduler_completed_work_total  counter
//	transfer_agent_scheduler_panics_total          counter
//
// Close unregisters them, so a registry can outlive its schedulers.
package scheduler
