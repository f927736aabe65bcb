package services_test

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kubev2v/transfer-agent/internal/events"
	"github.com/kubev2v/transfer-agent/internal/models"
	"github.com/kubev2v/transfer-agent/internal/services"
	"github.com/kubev2v/transfer-agent/internal/store"
	"github.com/kubev2v/transfer-agent/internal/store/migrations"
	srvErrors "github.com/kubev2v/transfer-agent/pkg/errors"
	"github.com/kubev2v/transfer-agent/pkg/scheduler"
)

var _ = Describe("TransferService", func() {
	var (
		ctx        context.Context
		db         *sql.DB
		st         *store.Store
		sched      *scheduler.Scheduler
		rec        *recorder
		srv        *services.TransferService
		source     string
		storageDir string
	)

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		db, err = store.NewDB(":memory:")
		Expect(err).NotTo(HaveOccurred())
		Expect(migrations.Run(ctx, db)).To(Succeed())
		st = store.NewStore(db)

		sched = scheduler.NewScheduler(2)
		rec = &recorder{}
		bus := events.NewBus()
		bus.Subscribe(rec.Publish)

		source = GinkgoT().TempDir()
		storageDir = GinkgoT().TempDir()
		srv = services.NewTransferService(st, bus, sched, storageDir, services.RetryConfig{MaxRetries: 1, RetryInterval: time.Millisecond})
	})

	AfterEach(func() {
		sched.Close()
		db.Close()
	})

	// occupy blocks every worker of sched until the returned func is called
	occupy := func() func() {
		release := make(chan struct{})
		for range sched.Size() {
			sched.AddWork(func(ctx context.Context) (any, error) {
				<-release
				return nil, nil
			})
		}
		Eventually(func() int { return sched.Stats().Busy }, time.Second).Should(Equal(sched.Size()))
		var once sync.Once
		return func() { once.Do(func() { close(release) }) }
	}

	Describe("Import", func() {
		It("should pull every form and record its metadata", func() {
			writeForm(source, "household", "photo.jpg", "audio.mp3")
			writeForm(source, "census")
			writeForm(source, "water")

			id, err := srv.Import(ctx, source, "")
			Expect(err).NotTo(HaveOccurred())

			t, err := srv.Wait(ctx, id)
			Expect(err).NotTo(HaveOccurred())
			Expect(t.State).To(Equal(models.TransferStateCompleted))
			Expect(t.Total).To(Equal(3))
			Expect(t.Succeeded).To(Equal(3))
			Expect(t.Failed).To(Equal(0))
			Expect(t.CompletedAt).NotTo(BeNil())

			Expect(filepath.Join(storageDir, "forms", "household", "household.xml")).To(BeAnExistingFile())
			Expect(filepath.Join(storageDir, "forms", "household", "household-media", "photo.jpg")).To(BeAnExistingFile())

			m, err := st.Forms().Get(ctx, "household")
			Expect(err).NotTo(HaveOccurred())
			Expect(m.Files).To(Equal(3))
			Expect(m.Source).To(Equal(source))

			Expect(rec.OfType(models.EventPullSuccess)).To(HaveLen(3))
			Expect(rec.OfType(models.EventPullComplete)).To(HaveLen(1))

			stored, err := st.Transfers().Get(ctx, id)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.State).To(Equal(models.TransferStateCompleted))
			Expect(stored.Succeeded).To(Equal(3))
		})

		It("should pull only the requested form", func() {
			writeForm(source, "household")
			writeForm(source, "census")

			id, err := srv.Import(ctx, source, "census")
			Expect(err).NotTo(HaveOccurred())
			t, err := srv.Wait(ctx, id)
			Expect(err).NotTo(HaveOccurred())
			Expect(t.Total).To(Equal(1))

			_, err = st.Forms().Get(ctx, "household")
			Expect(srvErrors.IsResourceNotFoundError(err)).To(BeTrue())
		})

		It("should fail when the requested form does not exist", func() {
			writeForm(source, "household")

			_, err := srv.Import(ctx, source, "missing")
			Expect(srvErrors.IsResourceNotFoundError(err)).To(BeTrue())
		})

		It("should fail when the source cannot be read", func() {
			_, err := srv.Import(ctx, filepath.Join(source, "nope"), "")
			Expect(err).To(HaveOccurred())
		})

		It("should complete an import of an empty directory", func() {
			id, err := srv.Import(ctx, source, "")
			Expect(err).NotTo(HaveOccurred())

			t, err := srv.Wait(ctx, id)
			Expect(err).NotTo(HaveOccurred())
			Expect(t.State).To(Equal(models.TransferStateCompleted))
			Expect(rec.OfType(models.EventPullComplete)).To(HaveLen(1))
		})

		It("should keep pulling the other forms when one fails", func() {
			writeForm(source, "good")
			writeForm(source, "broken", "ok.txt")
			Expect(os.Symlink(filepath.Join(source, "does-not-exist"), filepath.Join(source, "broken-media", "dangling"))).To(Succeed())

			id, err := srv.Import(ctx, source, "")
			Expect(err).NotTo(HaveOccurred())
			t, err := srv.Wait(ctx, id)
			Expect(err).NotTo(HaveOccurred())

			Expect(t.State).To(Equal(models.TransferStateCompleted))
			Expect(t.Succeeded).To(Equal(1))
			Expect(t.Failed).To(Equal(1))
			Expect(t.Errors).To(ConsistOf(ContainSubstring("failed to pull form broken")))

			failures := rec.OfType(models.EventPullFailure)
			Expect(failures).To(HaveLen(1))
			Expect(failures[0].FormID).To(Equal("broken"))
			Expect(rec.OfType(models.EventPullComplete)).To(HaveLen(1))
		})

		It("should refuse a second import of a source while one runs", func() {
			writeForm(source, "household")
			release := occupy()
			defer release()

			id, err := srv.Import(ctx, source, "")
			Expect(err).NotTo(HaveOccurred())

			_, err = srv.Import(ctx, source, "")
			Expect(srvErrors.IsTransferInProgressError(err)).To(BeTrue())

			release()
			_, err = srv.Wait(ctx, id)
			Expect(err).NotTo(HaveOccurred())

			_, err = srv.Import(ctx, source, "")
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("Concurrent imports", func() {
		It("should start only one of many concurrent imports of the same source", func() {
			writeForm(source, "household")
			release := occupy()
			defer release()

			const callers = 16
			var (
				wg         sync.WaitGroup
				mu         sync.Mutex
				ids        []string
				inProgress int
			)
			for range callers {
				wg.Add(1)
				go func() {
					defer GinkgoRecover()
					defer wg.Done()
					id, err := srv.Import(ctx, source, "")
					mu.Lock()
					defer mu.Unlock()
					if err != nil {
						Expect(srvErrors.IsTransferInProgressError(err)).To(BeTrue())
						inProgress++
						return
					}
					ids = append(ids, id)
				}()
			}
			wg.Wait()

			Expect(ids).To(HaveLen(1))
			Expect(inProgress).To(Equal(callers - 1))
		})
	})

	Describe("Completed transfers", func() {
		It("should drop them from memory and serve them from the store", func() {
			writeForm(source, "household")
			writeForm(source, "census")

			id, err := srv.Import(ctx, source, "")
			Expect(err).NotTo(HaveOccurred())
			_, err = srv.Wait(ctx, id)
			Expect(err).NotTo(HaveOccurred())

			Expect(services.LiveTransfers(srv)).To(Equal(0))

			t, err := srv.Status(ctx, id)
			Expect(err).NotTo(HaveOccurred())
			Expect(t.State).To(Equal(models.TransferStateCompleted))
			Expect(t.Succeeded).To(Equal(2))

			t, err = srv.Wait(ctx, id)
			Expect(err).NotTo(HaveOccurred())
			Expect(t.State).To(Equal(models.TransferStateCompleted))

			Expect(srv.Cancel(id)).To(Succeed())
		})

		It("should keep running transfers in memory", func() {
			writeForm(source, "household")
			release := occupy()
			defer release()

			_, err := srv.Import(ctx, source, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(services.LiveTransfers(srv)).To(Equal(1))
		})
	})

	Describe("Cancel", func() {
		It("should stop queued forms and mark the transfer canceled", func() {
			for _, id := range []string{"a", "b", "c", "d"} {
				writeForm(source, id, "m1", "m2")
			}
			release := occupy()

			id, err := srv.Import(ctx, source, "")
			Expect(err).NotTo(HaveOccurred())

			Expect(srv.Cancel(id)).To(Succeed())
			status, err := srv.Status(ctx, id)
			Expect(err).NotTo(HaveOccurred())
			Expect(status.State).To(Equal(models.TransferStateCanceling))

			release()
			t, err := srv.Wait(ctx, id)
			Expect(err).NotTo(HaveOccurred())
			Expect(t.State).To(Equal(models.TransferStateCanceled))
			Expect(t.Failed).To(Equal(0))

			count, err := st.Forms().Count(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(0))
			Expect(rec.OfType(models.EventPullSuccess)).To(BeEmpty())
			Expect(rec.OfType(models.EventPullComplete)).To(HaveLen(1))
		})

		It("should return ResourceNotFoundError for unknown transfers", func() {
			Expect(srvErrors.IsResourceNotFoundError(srv.Cancel("nope"))).To(BeTrue())
			_, err := srv.Status(ctx, "nope")
			Expect(srvErrors.IsResourceNotFoundError(err)).To(BeTrue())
		})
	})

	Describe("List", func() {
		It("should list the stored transfers", func() {
			writeForm(source, "household")
			id, err := srv.Import(ctx, source, "")
			Expect(err).NotTo(HaveOccurred())
			_, err = srv.Wait(ctx, id)
			Expect(err).NotTo(HaveOccurred())

			transfers, err := srv.List(ctx, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(transfers).To(HaveLen(1))
			Expect(transfers[0].ID).To(Equal(id))
		})
	})

	Describe("Forms", func() {
		It("should page through the pulled forms", func() {
			for _, id := range []string{"a", "b", "c"} {
				writeForm(source, id)
			}
			id, err := srv.Import(ctx, source, "")
			Expect(err).NotTo(HaveOccurred())
			_, err = srv.Wait(ctx, id)
			Expect(err).NotTo(HaveOccurred())

			forms, total, err := srv.Forms(ctx, "", 2, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(3))
			Expect(forms).To(HaveLen(2))
			Expect(forms[0].ID).To(Equal("a"))

			forms, _, err = srv.Forms(ctx, "", 2, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(forms).To(HaveLen(1))
			Expect(forms[0].ID).To(Equal("c"))

			forms, total, err = srv.Forms(ctx, "/elsewhere", 10, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(0))
			Expect(forms).To(BeEmpty())
		})
	})
})
