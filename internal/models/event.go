package models

import "fmt"

type EventType string

const (
	EventPullSuccess  EventType = "pull-success"
	EventPullFailure  EventType = "pull-failure"
	EventPullComplete EventType = "pull-complete"
)

// Event notifies the rest of the agent about the progress of a transfer.
type Event struct {
	Type       EventType
	TransferID string
	// FormID is empty for transfer wide events.
	FormID string
	Err    error
}

func NewPullSuccessEvent(transferID, formID string) Event {
	return Event{Type: EventPullSuccess, TransferID: transferID, FormID: formID}
}

func NewPullFailureEvent(transferID, formID string, err error) Event {
	return Event{Type: EventPullFailure, TransferID: transferID, FormID: formID, Err: err}
}

func NewPullCompleteEvent(transferID string) Event {
	return Event{Type: EventPullComplete, TransferID: transferID}
}

func (e Event) String() string {
	if e.FormID == "" {
		return fmt.Sprintf("%s[%s]", e.Type, e.TransferID)
	}
	return fmt.Sprintf("%s[%s/%s]", e.Type, e.TransferID, e.FormID)
}
