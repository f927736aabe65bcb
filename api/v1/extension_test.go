package v1_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	v1 "github.com/kubev2v/transfer-agent/api/v1"
	"github.com/kubev2v/transfer-agent/internal/models"
)

var _ = Describe("Model conversion", func() {
	Describe("NewTransferFromModel", func() {
		DescribeTable("should map the transfer state",
			func(state models.TransferState, expected v1.TransferState) {
				t := v1.NewTransferFromModel(models.Transfer{ID: "t1", State: state})
				Expect(t.State).To(Equal(expected))
			},
			Entry("running", models.TransferStateRunning, v1.TransferStateRunning),
			Entry("canceling", models.TransferStateCanceling, v1.TransferStateCanceling),
			Entry("canceled", models.TransferStateCanceled, v1.TransferStateCanceled),
			Entry("completed", models.TransferStateCompleted, v1.TransferStateCompleted),
			Entry("unknown falls back to running", models.TransferState(""), v1.TransferStateRunning),
		)

		It("should only set formId when the import was filtered", func() {
			Expect(v1.NewTransferFromModel(models.Transfer{}).FormId).To(BeNil())

			t := v1.NewTransferFromModel(models.Transfer{FormID: "household"})
			Expect(t.FormId).NotTo(BeNil())
			Expect(*t.FormId).To(Equal("household"))
		})
	})

	Describe("NewFormFromModel", func() {
		It("should leave lastPulledAt empty for a form never pulled", func() {
			Expect(v1.NewFormFromModel(models.FormMetadata{ID: "a"}).LastPulledAt).To(BeNil())
		})

		It("should copy the pull time", func() {
			at := time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC)
			f := v1.NewFormFromModel(models.FormMetadata{ID: "a", Files: 2, Bytes: 8, LastPulledAt: at})
			Expect(f.LastPulledAt).NotTo(BeNil())
			Expect(*f.LastPulledAt).To(Equal(at))
			Expect(f.Files).To(Equal(2))
			Expect(f.Bytes).To(Equal(int64(8)))
		})
	})
})
