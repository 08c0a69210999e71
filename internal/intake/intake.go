// Package intake holds the rules of the public consultation request form.
package intake

import (
	"errors"
	"strings"

	"github.com/dukerupert/leadline/internal/model"
)

// ErrConsentRequired is returned when the privacy policy box is unchecked.
var ErrConsentRequired = errors.New("privacy policy consent required")

// User-facing messages.
const (
	MsgConsentRequired = "Please agree to the privacy policy."
	MsgSubmitFailed    = "Your request could not be submitted. Please try again."
	MsgSubmitted       = "Your consultation request has been received."
)

// SanitizePhone keeps only digits and hyphens.
func SanitizePhone(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Submission is the form's current field values.
type Submission struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
	Agreed      bool   `json:"agreed_to_privacy_policy"`
}

// Normalize trims the name and filters the phone number.
func (s Submission) Normalize() Submission {
	s.Name = strings.TrimSpace(s.Name)
	s.PhoneNumber = SanitizePhone(s.PhoneNumber)
	return s
}

// Validate rejects a submission without consent. Empty name and phone are accepted.
func (s Submission) Validate() error {
	if !s.Agreed {
		return ErrConsentRequired
	}
	return nil
}

// Record converts the submission into the row to insert.
func (s Submission) Record() model.NewConsultation {
	n := s.Normalize()
	return model.NewConsultation{
		Name:                  n.Name,
		PhoneNumber:           n.PhoneNumber,
		AgreedToPrivacyPolicy: n.Agreed,
	}
}

// Visible reports whether the form is shown on the page at path.
func Visible(path string) bool {
	return path != "/admin" && !strings.HasPrefix(path, "/admin/")
}
