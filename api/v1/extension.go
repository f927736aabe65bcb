package v1

import (
	"github.com/kubev2v/transfer-agent/internal/models"
	"github.com/kubev2v/transfer-agent/pkg/scheduler"
)

// NewTransferFromModel converts a models.Transfer to an API Transfer.
func NewTransferFromModel(t models.Transfer) Transfer {
	var state TransferState
	switch t.State {
	case models.TransferStateCanceling:
		state = TransferStateCanceling
	case models.TransferStateCanceled:
		state = TransferStateCanceled
	case models.TransferStateCompleted:
		state = TransferStateCompleted
	default:
		state = TransferStateRunning
	}

	apiTransfer := Transfer{
		Id:          t.ID,
		Source:      t.Source,
		State:       state,
		Total:       t.Total,
		Succeeded:   t.Succeeded,
		Failed:      t.Failed,
		Errors:      t.Errors,
		StartedAt:   t.StartedAt,
		CompletedAt: t.CompletedAt,
	}

	if t.FormID != "" {
		apiTransfer.FormId = &t.FormID
	}

	return apiTransfer
}

// NewFormFromModel converts a models.FormMetadata to an API Form.
func NewFormFromModel(m models.FormMetadata) Form {
	f := Form{
		Id:     m.ID,
		Name:   m.Name,
		Source: m.Source,
		Files:  m.Files,
		Bytes:  m.Bytes,
	}

	if !m.LastPulledAt.IsZero() {
		t := m.LastPulledAt
		f.LastPulledAt = &t
	}

	return f
}

func NewSchedulerStats(name string, s scheduler.Stats) SchedulerStats {
	return SchedulerStats{
		Name:      name,
		Workers:   s.Workers,
		Busy:      s.Busy,
		Queued:    s.Queued,
		Completed: s.Completed,
	}
}
