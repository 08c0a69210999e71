package email

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/resend/resend-go/v2"

	"github.com/dukerupert/leadline/internal/model"
)

// Resend sends notifications through the Resend API.
type Resend struct {
	client  *resend.Client
	from    string
	to      []string
	baseURL string
	loc     *time.Location
}

func NewResend(apiKey, from, baseURL string, to []string, loc *time.Location) *Resend {
	return &Resend{
		client:  resend.NewClient(apiKey),
		from:    from,
		to:      to,
		baseURL: baseURL,
		loc:     loc,
	}
}

func (s *Resend) NotifyConsultation(ctx context.Context, rec *model.Consultation) error {
	if len(s.to) == 0 {
		return errors.New("email client not configured: no recipients")
	}
	msg := consultationMessage(rec, s.baseURL, s.loc)

	_, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.from,
		To:      s.to,
		Subject: msg.subject,
		Html:    msg.html,
		Text:    msg.text,
		Tags:    []resend.Tag{{Name: "category", Value: "consultation"}},
	})
	if err != nil {
		return fmt.Errorf("resend send failed: %w", err)
	}
	return nil
}
