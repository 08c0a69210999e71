package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dukerupert/leadline/internal/model"
)

const defaultAPIURL = "https://api.postmarkapp.com/email"

type Postmark struct {
	serverToken string
	fromEmail   string
	to          []string
	baseURL     string
	apiURL      string
	loc         *time.Location
	httpClient  *http.Client
}

type Option func(*Postmark)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Postmark) {
		cl.httpClient = c
	}
}

// WithAPIURL overrides the Postmark endpoint.
func WithAPIURL(u string) Option {
	return func(cl *Postmark) {
		cl.apiURL = u
	}
}

// WithLocation sets the zone used for timestamps in the message body.
func WithLocation(loc *time.Location) Option {
	return func(cl *Postmark) {
		cl.loc = loc
	}
}

// NewPostmark returns a Postmark client that mails new consultation requests
// to the given recipients. baseURL is used to link back to the dashboard.
func NewPostmark(serverToken, fromEmail, baseURL string, to []string, opts ...Option) *Postmark {
	c := &Postmark{
		serverToken: serverToken,
		fromEmail:   fromEmail,
		to:          to,
		baseURL:     baseURL,
		apiURL:      defaultAPIURL,
		loc:         time.UTC,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured returns true if the server token and at least one recipient are set.
func (c *Postmark) Configured() bool {
	return c.serverToken != "" && len(c.to) > 0
}

type postmarkEmail struct {
	From     string `json:"From"`
	To       string `json:"To"`
	Subject  string `json:"Subject"`
	HtmlBody string `json:"HtmlBody"`
	TextBody string `json:"TextBody"`
	Tag      string `json:"Tag,omitempty"`
}

// NotifyConsultation emails the recipients about a new consultation request.
func (c *Postmark) NotifyConsultation(ctx context.Context, rec *model.Consultation) error {
	if !c.Configured() {
		return fmt.Errorf("email client not configured: missing server token or recipients")
	}

	msg := consultationMessage(rec, c.baseURL, c.loc)

	payload := postmarkEmail{
		From:     c.fromEmail,
		To:       strings.Join(c.to, ","),
		Subject:  msg.subject,
		HtmlBody: msg.html,
		TextBody: msg.text,
		Tag:      "consultation",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Postmark-Server-Token", c.serverToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("postmark API error: status %d", resp.StatusCode)
	}

	return nil
}
