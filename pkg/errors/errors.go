package errors

import (
	"errors"
	"fmt"
)

// JobFailedError is returned when a step of a job chain fails.
// The remaining steps of the chain are not executed.
type JobFailedError struct {
	Step  int
	Cause error
}

func NewJobFailedError(step int, cause error) *JobFailedError {
	return &JobFailedError{Step: step, Cause: cause}
}

func (e *JobFailedError) Error() string {
	return fmt.Sprintf("job failed at step %d: %v", e.Step, e.Cause)
}

func (e *JobFailedError) Unwrap() error {
	return e.Cause
}

func IsJobFailedError(err error) bool {
	var e *JobFailedError
	return errors.As(err, &e)
}

type SchedulerClosedError struct{}

func NewSchedulerClosedError() *SchedulerClosedError {
	return &SchedulerClosedError{}
}

func (e *SchedulerClosedError) Error() string {
	return "scheduler is closed"
}

func IsSchedulerClosedError(err error) bool {
	var e *SchedulerClosedError
	return errors.As(err, &e)
}

type ResourceNotFoundError struct {
	Kind string
	ID   string
}

func NewFormNotFoundError(id string) *ResourceNotFoundError {
	return &ResourceNotFoundError{Kind: "form", ID: id}
}

func NewTransferNotFoundError(id string) *ResourceNotFoundError {
	return &ResourceNotFoundError{Kind: "transfer", ID: id}
}

func (e *ResourceNotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func IsResourceNotFoundError(err error) bool {
	var e *ResourceNotFoundError
	return errors.As(err, &e)
}

// TransferInProgressError is returned when an import is requested for a source
// that already has a running transfer.
type TransferInProgressError struct {
	Source string
	ID     string
}

func NewTransferInProgressError(source, id string) *TransferInProgressError {
	return &TransferInProgressError{Source: source, ID: id}
}

func (e *TransferInProgressError) Error() string {
	return fmt.Sprintf("transfer %s already in progress for %s", e.ID, e.Source)
}

func IsTransferInProgressError(err error) bool {
	var e *TransferInProgressError
	return errors.As(err, &e)
}
