package model

import "time"

// Status is the processing state of a consultation request.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusCompleted Status = "completed"
)

// Statuses lists every valid status in display order.
var Statuses = []Status{StatusPending, StatusApproved, StatusCompleted}

// Valid reports whether s is one of the enumerated statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusCompleted:
		return true
	}
	return false
}

// Label returns the human-readable name shown in the admin UI.
func (s Status) Label() string {
	switch s {
	case StatusApproved:
		return "Approved"
	case StatusCompleted:
		return "Completed"
	default:
		return "Pending"
	}
}

// NormalizeStatus maps an empty or unknown stored value to pending.
func NormalizeStatus(raw string) Status {
	s := Status(raw)
	if !s.Valid() {
		return StatusPending
	}
	return s
}

type Consultation struct {
	ID                    int64     `json:"id"`
	Name                  string    `json:"name"`
	PhoneNumber           string    `json:"phone_number"`
	AgreedToPrivacyPolicy bool      `json:"agreed_to_privacy_policy"`
	CreatedAt             time.Time `json:"created_at"`
	Status                Status    `json:"status"`
}

// NewConsultation holds the fields accepted from the public intake form.
// Status is deliberately absent; readers normalize the missing value.
type NewConsultation struct {
	Name                  string
	PhoneNumber           string
	AgreedToPrivacyPolicy bool
}
