package models

import "time"

// Form is a form found in a source directory, ready to be transferred.
type Form struct {
	ID   string
	Name string
	// Dir is the directory holding the form definition and its media.
	Dir string
}

// FormMetadata is what the store keeps about a pulled form.
type FormMetadata struct {
	ID           string
	Name         string
	Source       string
	Files        int
	Bytes        int64
	LastPulledAt time.Time
	UpdatedAt    time.Time
}
