// Package email notifies staff about new consultation requests through
// Postmark or Resend.
package email

import (
	"fmt"
	"html"
	"net/url"
	"strings"
	"time"

	"github.com/dukerupert/leadline/internal/model"
)

type message struct {
	subject string
	text    string
	html    string
}

func consultationMessage(rec *model.Consultation, baseURL string, loc *time.Location) message {
	if loc == nil {
		loc = time.UTC
	}
	name := rec.Name
	if name == "" {
		name = "(no name)"
	}
	link := strings.TrimRight(baseURL, "/") + "/admin/dashboard?" + url.Values{"q": {rec.PhoneNumber}}.Encode()
	received := rec.CreatedAt.In(loc).Format("2006-01-02 15:04")

	return message{
		subject: fmt.Sprintf("New consultation request from %s", name),
		text: fmt.Sprintf("New consultation request\n\nName: %s\nPhone: %s\nReceived: %s\n\nReview it on the dashboard:\n%s\n",
			name, rec.PhoneNumber, received, link),
		html: fmt.Sprintf(
			`<p>New consultation request</p><p>Name: %s<br>Phone: %s<br>Received: %s</p><p><a href="%s">Open the dashboard</a></p>`,
			html.EscapeString(name), html.EscapeString(rec.PhoneNumber), received, html.EscapeString(link),
		),
	}
}
