package job

import (
	"context"
	"runtime"
	"sync"

	"github.com/kubev2v/transfer-agent/pkg/scheduler"
)

var (
	defaultMu      sync.Mutex
	defaultSched   *scheduler.Scheduler
	defaultWorkers = runtime.NumCPU()
)

// SetDefaultWorkers sets the size of the default scheduler. It has no effect
// once the default scheduler was created.
func SetDefaultWorkers(n int) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultWorkers = n
}

// DefaultScheduler returns the process wide scheduler, creating it on first use.
func DefaultScheduler() *scheduler.Scheduler {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultSched == nil {
		defaultSched = scheduler.NewScheduler(defaultWorkers, scheduler.WithName("jobs"))
	}
	return defaultSched
}

// Shutdown closes the default scheduler, waiting for queued and running jobs.
// A later launch without WithScheduler creates a new default scheduler.
func Shutdown() {
	defaultMu.Lock()
	s := defaultSched
	defaultSched = nil
	defaultMu.Unlock()

	if s != nil {
		s.Close()
	}
}

type launchOptions struct {
	scheduler *scheduler.Scheduler
	ctx       context.Context
}

type Option func(*launchOptions)

// WithScheduler runs the jobs on s instead of the default scheduler.
func WithScheduler(s *scheduler.Scheduler) Option {
	return func(o *launchOptions) {
		o.scheduler = s
	}
}

// WithContext cancels the RunnerStatus of the jobs once ctx is done.
// LaunchSync and LaunchSyncAll then return the error of ctx.
func WithContext(ctx context.Context) Option {
	return func(o *launchOptions) {
		o.ctx = ctx
	}
}

func newLaunchOptions(opts []Option) launchOptions {
	var o launchOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.scheduler == nil {
		o.scheduler = DefaultScheduler()
	}
	if o.ctx == nil {
		o.ctx = context.Background()
	}
	return o
}
