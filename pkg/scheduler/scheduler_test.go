package scheduler_test

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	srvErrors "github.com/kubev2v/transfer-agent/pkg/errors"
	"github.com/kubev2v/transfer-agent/pkg/scheduler"
)

var _ = Describe("Scheduler", func() {
	var s *scheduler.Scheduler

	AfterEach(func() {
		if s != nil {
			s.Close()
		}
	})

	Describe("AddWork", func() {
		It("should add work and return a future", func() {
			s = scheduler.NewScheduler(1)

			work := func(ctx context.Context) (any, error) {
				return "done", nil
			}

			future := s.AddWork(work)
			Expect(future).NotTo(BeNil())

			var result scheduler.Result[any]
			Eventually(future.C(), 2*time.Second).Should(Receive(&result))
			Expect(result.Data).To(Equal("done"))
		})
	})

	Describe("Run work", func() {
		It("should execute multiple work items", func() {
			s = scheduler.NewScheduler(2)

			results := make(chan int, 3)
			for i := range 3 {
				idx := i
				work := func(ctx context.Context) (any, error) {
					results <- idx
					return idx, nil
				}
				s.AddWork(work)
			}

			Eventually(func() int {
				return len(results)
			}, 2*time.Second, 100*time.Millisecond).Should(Equal(3))
		})
	})

	Describe("Cancel work", func() {
		It("should cancel work via future.Stop()", func() {
			s = scheduler.NewScheduler(1)

			cancelled := make(chan bool, 1)
			work := func(ctx context.Context) (any, error) {
				select {
				case <-ctx.Done():
					cancelled <- true
					return nil, ctx.Err()
				case <-time.After(5 * time.Second):
					return "completed", nil
				}
			}

			future := s.AddWork(work)
			time.Sleep(100 * time.Millisecond)
			future.Stop()

			Eventually(cancelled, 2*time.Second).Should(Receive(BeTrue()))
		})

		It("should cancel work when scheduler is closed", func() {
			s = scheduler.NewScheduler(1)

			cancelled := make(chan bool, 1)
			work := func(ctx context.Context) (any, error) {
				select {
				case <-ctx.Done():
					cancelled <- true
					return nil, ctx.Err()
				case <-time.After(5 * time.Second):
					return "completed", nil
				}
			}

			s.AddWork(work)
			time.Sleep(100 * time.Millisecond)
			s.Close()
			s = nil // prevent AfterEach from closing again

			Eventually(cancelled, 2*time.Second).Should(Receive(BeTrue()))
		})
	})

	Describe("Goroutine cleanup", func() {
		It("should not leak goroutines after Close under load", func() {
			base := runtime.NumGoroutine()
			s = scheduler.NewScheduler(4)

			work := func(ctx context.Context) (any, error) {
				<-ctx.Done()
				return nil, ctx.Err()
			}

			for i := 0; i < 200; i++ {
				s.AddWork(work)
			}

			time.Sleep(100 * time.Millisecond)
			s.Close()
			s = nil // prevent AfterEach from closing again

			Eventually(func() int {
				return runtime.NumGoroutine()
			}, 5*time.Second, 100*time.Millisecond).Should(BeNumerically("<=", base+10))
		})
	})

	Describe("Close behavior", func() {
		It("should return canceled when AddWork is called after Close", func() {
			s = scheduler.NewScheduler(1)
			s.Close()

			future := s.AddWork(func(ctx context.Context) (any, error) {
				return "done", nil
			})

			var result scheduler.Result[any]
			Eventually(future.C(), 1*time.Second).Should(Receive(&result))
			Expect(result.Err).To(MatchError(context.Canceled))
		})

		It("should wait for in-flight work to finish on Close", func() {
			s = scheduler.NewScheduler(1)

			started := make(chan struct{})
			unblock := make(chan struct{})
			work := func(ctx context.Context) (any, error) {
				close(started)
				<-unblock
				return "done", nil
			}

			s.AddWork(work)
			Eventually(started, 1*time.Second).Should(BeClosed())

			closeDone := make(chan struct{})
			go func() {
				s.Close()
				close(closeDone)
			}()

			Consistently(closeDone, 200*time.Millisecond).ShouldNot(BeClosed())
			close(unblock)
			Eventually(closeDone, 1*time.Second).Should(BeClosed())
			s = nil // prevent AfterEach from closing again
		})
	})
	Describe("Bounded concurrency", func() {
		It("should never run more work than workers", func() {
			s = scheduler.NewScheduler(3)

			var running, maxRunning atomic.Int64
			var mu sync.Mutex
			futures := make([]*scheduler.Future[scheduler.Result[any]], 0, 50)
			for range 50 {
				futures = append(futures, s.AddWork(func(ctx context.Context) (any, error) {
					n := running.Add(1)
					mu.Lock()
					if n > maxRunning.Load() {
						maxRunning.Store(n)
					}
					mu.Unlock()
					time.Sleep(5 * time.Millisecond)
					running.Add(-1)
					return nil, nil
				}))
			}

			for _, f := range futures {
				Eventually(f.C(), 5*time.Second).Should(Receive())
			}
			Expect(maxRunning.Load()).To(BeNumerically("<=", 3))
			Expect(maxRunning.Load()).To(BeNumerically(">=", 1))
		})

		It("should run queued work in submission order with a single worker", func() {
			s = scheduler.NewScheduler(1)

			var mu sync.Mutex
			var order []int
			futures := make([]*scheduler.Future[scheduler.Result[any]], 0, 20)
			for i := range 20 {
				futures = append(futures, s.AddWork(func(ctx context.Context) (any, error) {
					mu.Lock()
					order = append(order, i)
					mu.Unlock()
					return i, nil
				}))
			}

			for _, f := range futures {
				Eventually(f.C(), 2*time.Second).Should(Receive())
			}
			expected := make([]int, 20)
			for i := range expected {
				expected[i] = i
			}
			Expect(order).To(Equal(expected))
		})

		It("should eventually run every work when far more work than workers is queued", func() {
			s = scheduler.NewScheduler(2)

			var count atomic.Int64
			for range 1000 {
				s.AddWork(func(ctx context.Context) (any, error) {
					count.Add(1)
					return nil, nil
				})
			}

			Eventually(count.Load, 5*time.Second, 10*time.Millisecond).Should(Equal(int64(1000)))
			Eventually(func() uint64 { return s.Stats().Completed }, 2*time.Second).Should(Equal(uint64(1000)))
		})
	})

	Describe("Errors", func() {
		It("should deliver the work error in the result", func() {
			s = scheduler.NewScheduler(1)
			boom := errors.New("boom")

			future := s.AddWork(func(ctx context.Context) (any, error) {
				return nil, boom
			})

			var result scheduler.Result[any]
			Eventually(future.C(), time.Second).Should(Receive(&result))
			Expect(result.Err).To(MatchError(boom))
		})

		It("should recover from a panic and keep the worker", func() {
			s = scheduler.NewScheduler(1)

			future := s.AddWork(func(ctx context.Context) (any, error) {
				panic("kaboom")
			})

			var result scheduler.Result[any]
			Eventually(future.C(), time.Second).Should(Receive(&result))
			Expect(result.Err).To(MatchError(ContainSubstring("kaboom")))

			next := s.AddWork(func(ctx context.Context) (any, error) {
				return "still alive", nil
			})
			Eventually(next.C(), time.Second).Should(Receive(&result))
			Expect(result.Data).To(Equal("still alive"))
		})

		It("should reject Submit after Close", func() {
			s = scheduler.NewScheduler(1)
			s.Close()

			f, err := s.Submit(func(ctx context.Context) (any, error) { return nil, nil })
			Expect(f).To(BeNil())
			Expect(srvErrors.IsSchedulerClosedError(err)).To(BeTrue())
			s = nil
		})
	})

	Describe("Drain on Close", func() {
		It("should run queued work before Close returns", func() {
			s = scheduler.NewScheduler(1)

			unblock := make(chan struct{})
			var ran atomic.Int64
			s.AddWork(func(ctx context.Context) (any, error) {
				<-unblock
				ran.Add(1)
				return nil, nil
			})
			queued := make([]*scheduler.Future[scheduler.Result[any]], 0, 5)
			for range 5 {
				queued = append(queued, s.AddWork(func(ctx context.Context) (any, error) {
					ran.Add(1)
					return nil, ctx.Err()
				}))
			}
			Eventually(func() int { return s.Stats().Queued }, time.Second).Should(Equal(5))

			closeDone := make(chan struct{})
			go func() {
				s.Close()
				close(closeDone)
			}()
			Consistently(closeDone, 100*time.Millisecond).ShouldNot(BeClosed())

			close(unblock)
			Eventually(closeDone, 2*time.Second).Should(BeClosed())
			Expect(ran.Load()).To(Equal(int64(6)))

			for _, f := range queued {
				var result scheduler.Result[any]
				Expect(f.C()).To(Receive(&result))
				Expect(result.Err).To(MatchError(context.Canceled))
			}
			s = nil
		})
	})

	Describe("Stats", func() {
		It("should answer without the event loop, during and after Close", func() {
			s = scheduler.NewScheduler(1)

			unblock := make(chan struct{})
			s.AddWork(func(ctx context.Context) (any, error) {
				<-unblock
				return nil, nil
			})
			Eventually(func() int { return s.Stats().Busy }, time.Second).Should(Equal(1))

			closeDone := make(chan struct{})
			go func() {
				s.Close()
				close(closeDone)
			}()
			Consistently(closeDone, 50*time.Millisecond).ShouldNot(BeClosed())
			// Close is blocked on the busy worker
			Expect(s.Stats().Busy).To(Equal(1))

			close(unblock)
			Eventually(closeDone, time.Second).Should(BeClosed())

			stats := s.Stats()
			Expect(stats.Busy).To(Equal(0))
			Expect(stats.Queued).To(Equal(0))
			Expect(stats.Completed).To(Equal(uint64(1)))
			s = nil
		})
	})

	Describe("Request context", func() {
		It("should release the work context once the work returned", func() {
			s = scheduler.NewScheduler(1)

			ctxCh := make(chan context.Context, 1)
			f, err := s.Submit(func(ctx context.Context) (any, error) {
				ctxCh <- ctx
				return nil, nil
			})
			Expect(err).NotTo(HaveOccurred())
			Eventually(f.C(), time.Second).Should(Receive())

			var ctx context.Context
			Expect(ctxCh).To(Receive(&ctx))
			Eventually(ctx.Done(), time.Second).Should(BeClosed())
		})

		It("should keep heap usage flat across many submissions on an open scheduler", func() {
			s = scheduler.NewScheduler(4)

			submit := func(n int) {
				for range n {
					f, err := s.Submit(func(ctx context.Context) (any, error) { return nil, nil })
					Expect(err).NotTo(HaveOccurred())
					<-f.C()
				}
			}
			heapAlloc := func() uint64 {
				runtime.GC()
				var m runtime.MemStats
				runtime.ReadMemStats(&m)
				return m.HeapAlloc
			}

			// warm up the pool and the queue backing arrays
			submit(1000)
			before := heapAlloc()
			submit(100_000)
			after := heapAlloc()

			// a retained request context costs ~115 bytes, 100k of them ~11MB
			var growth uint64
			if after > before {
				growth = after - before
			}
			Expect(growth).To(BeNumerically("<", 4<<20))
		})
	})

	Describe("Metrics", func() {
		It("should count completed work and panics", func() {
			reg := prometheus.NewRegistry()
			s = scheduler.NewScheduler(2, scheduler.WithName("metrics"), scheduler.WithMetrics(reg))

			for range 4 {
				s.AddWork(func(ctx context.Context) (any, error) { return nil, nil })
			}
			f := s.AddWork(func(ctx context.Context) (any, error) { panic("x") })
			Eventually(f.C(), time.Second).Should(Receive())

			Eventually(func() uint64 { return s.Stats().Completed }, time.Second).Should(Equal(uint64(5)))

			count, err := testutil.GatherAndCount(reg, "transfer_agent_scheduler_completed_work_total", "transfer_agent_scheduler_panics_total")
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(2))
			Expect(s.Stats().Workers).To(Equal(2))
			Expect(s.Name()).To(Equal("metrics"))
		})
	})
})
