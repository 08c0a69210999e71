package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dukerupert/leadline/internal/auth"
	"github.com/dukerupert/leadline/internal/model"
)

const (
	SessionCookieName = "leadline_session"
	LoginPath         = "/admin/login"
)

// SessionSource resolves a session cookie value to a live session.
type SessionSource interface {
	GetSession(ctx context.Context, token string) (*model.Session, error)
}

// Check reads the session cookie and runs auth.Authorize on it. A failed
// session lookup counts as no session.
func Check(r *http.Request, sessions SessionSource, admins auth.AllowList, logger *slog.Logger) (auth.Decision, *model.Session) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return auth.DenyNoSession, nil
	}
	sess, err := sessions.GetSession(r.Context(), cookie.Value)
	if err != nil {
		logger.Error("session lookup", "error", err)
		return auth.DenyNoSession, nil
	}
	return auth.Authorize(r.Context(), sess, admins), sess
}

func withAdmin(r *http.Request, sess *model.Session) *http.Request {
	ctx := auth.WithAdmin(r.Context(), auth.AdminContext{
		UserID:    sess.UserID,
		Email:     sess.Email,
		SessionID: sess.ID,
	})
	return r.WithContext(ctx)
}

// RequireAdmin guards server-rendered admin pages. Denied requests are sent
// to the login page: a 303 for plain requests, HX-Redirect for htmx. Every
// response is marked no-store.
func RequireAdmin(sessions SessionSource, admins auth.AllowList, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Admin pages must not come back from the browser cache after logout.
			w.Header().Set("Cache-Control", "no-store")
			decision, sess := Check(r, sessions, admins, logger)
			if !decision.Allowed() {
				logDenied(logger, r, decision, sess)
				redirectToLogin(w, r)
				return
			}
			next.ServeHTTP(w, withAdmin(r, sess))
		})
	}
}

// RequireAdminAPI guards the JSON API and the websocket endpoint. Denied
// requests get a 401 with the login path so the script can navigate there.
func RequireAdminAPI(sessions SessionSource, admins auth.AllowList, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision, sess := Check(r, sessions, admins, logger)
			if !decision.Allowed() {
				logDenied(logger, r, decision, sess)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{
					"error":    decision.String(),
					"redirect": LoginPath,
				})
				return
			}
			next.ServeHTTP(w, withAdmin(r, sess))
		})
	}
}

func logDenied(logger *slog.Logger, r *http.Request, d auth.Decision, sess *model.Session) {
	attrs := []any{"event", "gate_denied", "reason", d.String(), "path", r.URL.Path}
	if sess != nil {
		attrs = append(attrs, "email", sess.Email)
	}
	logger.Info("auth_event", attrs...)
}

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", LoginPath)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, LoginPath, http.StatusSeeOther)
}
