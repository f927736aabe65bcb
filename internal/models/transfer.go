package models

import "time"

// TransferState represents the state of a bulk transfer.
type TransferState string

const (
	// TransferStateRunning - jobs of the transfer are queued or running
	TransferStateRunning TransferState = "running"
	// TransferStateCanceling - cancellation requested, waiting for the jobs to stop
	TransferStateCanceling TransferState = "canceling"
	// TransferStateCanceled - every job stopped after cancellation
	TransferStateCanceled TransferState = "canceled"
	// TransferStateCompleted - every job terminated
	TransferStateCompleted TransferState = "completed"
)

func (t TransferState) Value() string {
	return string(t)
}

// Transfer describes one bulk import and its outcome.
type Transfer struct {
	ID          string
	Source      string
	FormID      string
	State       TransferState
	Total       int
	Succeeded   int
	Failed      int
	Errors      []string
	StartedAt   time.Time
	CompletedAt *time.Time
}
