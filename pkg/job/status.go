package job

import (
	"sync"
	"sync/atomic"
	"time"
)

// RunnerStatus is the cancellation token shared by the steps of a job.
//
// Job bodies read it; only the Runner owning it can cancel it. Once
// cancelled it stays cancelled.
type RunnerStatus struct {
	cancelled atomic.Bool
	done      chan struct{}
	once      sync.Once
}

func newRunnerStatus() *RunnerStatus {
	return &RunnerStatus{done: make(chan struct{})}
}

// IsStillRunning reports whether cancellation has not been requested yet.
func (s *RunnerStatus) IsStillRunning() bool {
	return !s.cancelled.Load()
}

func (s *RunnerStatus) IsCancelled() bool {
	return s.cancelled.Load()
}

// Done returns a channel closed when cancellation is requested.
func (s *RunnerStatus) Done() <-chan struct{} {
	return s.done
}

// Sleep pauses for d or until cancellation, whichever comes first, and
// returns IsStillRunning.
func (s *RunnerStatus) Sleep(d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
	case <-s.done:
	}
	return s.IsStillRunning()
}

func (s *RunnerStatus) cancel() {
	s.once.Do(func() {
		s.cancelled.Store(true)
		close(s.done)
	})
}
