package v1

import "time"

// TransferState is the state of an import as reported by the API.
type TransferState string

const (
	TransferStateRunning   TransferState = "running"
	TransferStateCanceling TransferState = "canceling"
	TransferStateCanceled  TransferState = "canceled"
	TransferStateCompleted TransferState = "completed"
)

// ImportRequest starts an import of the forms found under Source.
type ImportRequest struct {
	Source string  `json:"source" binding:"required"`
	FormId *string `json:"formId,omitempty"`
}

type ImportResponse struct {
	Id string `json:"id"`
}

// Transfer is the progress of one import.
type Transfer struct {
	Id          string        `json:"id"`
	Source      string        `json:"source"`
	FormId      *string       `json:"formId,omitempty"`
	State       TransferState `json:"state"`
	Total       int           `json:"total"`
	Succeeded   int           `json:"succeeded"`
	Failed      int           `json:"failed"`
	Errors      []string      `json:"errors,omitempty"`
	StartedAt   time.Time     `json:"startedAt"`
	CompletedAt *time.Time    `json:"completedAt,omitempty"`
}

type TransferListResponse struct {
	Transfers []Transfer `json:"transfers"`
}

// Form is the metadata of a pulled form.
type Form struct {
	Id           string     `json:"id"`
	Name         string     `json:"name"`
	Source       string     `json:"source"`
	Files        int        `json:"files"`
	Bytes        int64      `json:"bytes"`
	LastPulledAt *time.Time `json:"lastPulledAt,omitempty"`
}

type FormListResponse struct {
	Forms     []Form `json:"forms"`
	Total     int    `json:"total"`
	Page      int    `json:"page"`
	PageCount int    `json:"pageCount"`
}

// GetFormsParams are the query parameters of GET /forms.
type GetFormsParams struct {
	Source   *string `form:"source"`
	Page     *int    `form:"page"`
	PageSize *int    `form:"pageSize"`
}

// GetImportsParams are the query parameters of GET /imports.
type GetImportsParams struct {
	Limit *int `form:"limit"`
}

// SchedulerStats reports the worker pool usage.
type SchedulerStats struct {
	Name      string `json:"name"`
	Workers   int    `json:"workers"`
	Busy      int    `json:"busy"`
	Queued    int    `json:"queued"`
	Completed uint64 `json:"completed"`
}

type Error struct {
	Error string `json:"error"`
}
