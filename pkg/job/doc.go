// Package job runs units of work on a bounded scheduler and lets callers
// chain continuations, cancel cooperatively and wait for whole batches.
//
// # Components
//
//	┌──────────────────────────────────────────────────────────────────┐
//	│ Job[T]        immutable chain of steps, nothing runs until launch│
//	│ RunnerStatus  cancellation token shared by the steps of a job    │
//	│ Runner        handle of an async batch: cancel, wait, callbacks  │
//	│ Scheduler     bounded worker pool with a FIFO backlog            │
//	└──────────────────────────────────────────────────────────────────┘
//
// # Building jobs
//
//	j := job.Supply(func(rs *job.RunnerStatus) (int, error) {
//	    return countSubmissions(rs)
//	}).ThenAccept(func(rs *job.RunnerStatus, n int) error {
//	    return store.SaveCount(ctx, n)
//	})
//
// ThenApply changes the result type and is a function because methods
// cannot declare type parameters:
//
//	names := job.ThenApply(forms, func(rs *job.RunnerStatus, fs []Form) ([]string, error) { ... })
//
// Every step receives the same RunnerStatus. A step returning an error, or
// panicking, stops the chain; the failure is a *errors.JobFailedError
// holding the step index and the cause.
//
// # Launching
//
//	LaunchSync(j)            blocks, returns the final value
//	LaunchSyncAll(jobs)      blocks, returns values in input order
//	LaunchAsync(j)           returns a *Runner right away
//	LaunchAsyncAll(seq)      same, jobs come from an iter.Seq
//
// Jobs run on the default scheduler, created on first use with
// SetDefaultWorkers workers, unless WithScheduler is given. A job's steps
// always run one after the other on the same worker.
//
// LaunchSyncAll stops at the first failure in input order: it returns that
// error with nil results and cancels the RunnerStatus of the remaining jobs.
//
// LaunchSync waits on the scheduler it submits to. Called from a job running
// on that same scheduler it deadlocks once every worker waits that way.
//
// # Cancellation
//
// Runner.Cancel only flips the RunnerStatus. Bodies poll it:
//
//	for rs.IsStillRunning() {
//	    if !rs.Sleep(10 * time.Millisecond) {
//	        break
//	    }
//	}
//
// A cancelled body returning early is not a failure, its continuations run
// with whatever it returned. Closing the scheduler cancels every job on it,
// and so does the end of a context given with WithContext. LaunchSyncAll then
// returns the error of that context.
//
// # Completion barrier
//
// A Runner counts its jobs plus one slot held by the goroutine consuming the
// job sequence. Each terminated job, failed or not, releases a slot under
// the runner mutex; the release reaching zero marks the runner complete and
// is the only one that runs the callbacks registered with OnComplete.
// Callbacks registered after completion run immediately.
package job
