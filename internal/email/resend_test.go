package email

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func newTestResend(t *testing.T, h http.HandlerFunc, to []string) *Resend {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)

	r := NewResend("re_test", "noreply@example.com", "https://leads.test", to, nil)
	u, err := url.Parse(server.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	r.client.BaseURL = u
	return r
}

func TestResendNotifyConsultation(t *testing.T) {
	var received struct {
		From    string   `json:"from"`
		To      []string `json:"to"`
		Subject string   `json:"subject"`
		Text    string   `json:"text"`
	}
	var gotAuth, gotPath string

	r := newTestResend(t, func(w http.ResponseWriter, req *http.Request) {
		gotAuth = req.Header.Get("Authorization")
		gotPath = req.URL.Path
		if err := json.NewDecoder(req.Body).Decode(&received); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "msg_1"}`))
	}, []string{"owner@example.com"})

	if err := r.NotifyConsultation(context.Background(), testRecord()); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if gotAuth != "Bearer re_test" {
		t.Errorf("Authorization = %q, want Bearer re_test", gotAuth)
	}
	if gotPath != "/emails" {
		t.Errorf("path = %q, want /emails", gotPath)
	}
	if len(received.To) != 1 || received.To[0] != "owner@example.com" {
		t.Errorf("To = %v", received.To)
	}
	if received.Subject != "New consultation request from Kim <Minji>" {
		t.Errorf("Subject = %q", received.Subject)
	}
	if !strings.Contains(received.Text, "Received: 2026-03-01 00:30") {
		t.Errorf("Text missing UTC time: %q", received.Text)
	}
}

func TestResendNoRecipients(t *testing.T) {
	r := NewResend("re_test", "noreply@example.com", "https://leads.test", nil, nil)
	if err := r.NotifyConsultation(context.Background(), testRecord()); err == nil {
		t.Fatal("expected error without recipients")
	}
}

func TestResendAPIError(t *testing.T) {
	r := newTestResend(t, func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"statusCode": 422, "name": "validation_error", "message": "bad from"}`))
	}, []string{"owner@example.com"})

	if err := r.NotifyConsultation(context.Background(), testRecord()); err == nil {
		t.Fatal("expected error for API failure")
	}
}
