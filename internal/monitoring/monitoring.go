// Package monitoring reports server errors to sentry when a DSN is configured.
package monitoring

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
)

// Init configures the global sentry client. An empty dsn leaves reporting
// disabled and returns false.
func Init(dsn, env, release string) (bool, error) {
	if dsn == "" {
		return false, nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      env,
		Release:          "leadline@" + release,
		TracesSampleRate: 0.2,
	})
	if err != nil {
		return false, fmt.Errorf("sentry init: %w", err)
	}
	return true, nil
}

// Enabled reports whether a sentry client is bound.
func Enabled() bool {
	hub := sentry.CurrentHub()
	return hub != nil && hub.Client() != nil
}

// Flush waits for buffered events to be sent.
func Flush(timeout time.Duration) {
	if Enabled() {
		sentry.Flush(timeout)
	}
}

// CaptureError sends err with extra context. It is a no-op when disabled.
func CaptureError(err error, extra map[string]any) {
	if err == nil || !Enabled() {
		return
	}
	sentry.CurrentHub().WithScope(func(scope *sentry.Scope) {
		for k, v := range extra {
			scope.SetExtra(k, v)
		}
		sentry.CaptureException(err)
	})
}

// CaptureRequestError is CaptureError with the request's method, path and
// filtered headers attached.
func CaptureRequestError(r *http.Request, err error) {
	if err == nil || !Enabled() {
		return
	}
	CaptureError(err, map[string]any{
		"method":  r.Method,
		"path":    r.URL.Path,
		"headers": SafeHeaders(r.Header),
	})
}

// SafeHeaders copies h with credentials redacted.
func SafeHeaders(h http.Header) map[string]any {
	safe := make(map[string]any, len(h))
	for k, v := range h {
		if strings.EqualFold(k, "Authorization") || strings.EqualFold(k, "Cookie") {
			safe[k] = "[FILTERED]"
		} else {
			safe[k] = v
		}
	}
	return safe
}
