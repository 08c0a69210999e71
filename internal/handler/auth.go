package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dukerupert/leadline/internal/auth"
	"github.com/dukerupert/leadline/internal/identity"
	"github.com/dukerupert/leadline/internal/metrics"
	"github.com/dukerupert/leadline/internal/middleware"
	"github.com/dukerupert/leadline/internal/model"
)

const (
	DashboardPath = "/admin/dashboard"

	msgInvalidCredentials = "Invalid email or password."
	msgNotAdmin           = "This account is not an administrator."
	msgSignInUnavailable  = "Sign-in is unavailable. Please try again."
)

// SessionProvider is the identity backend behind the admin login.
type SessionProvider interface {
	SignIn(ctx context.Context, email, password string) (*model.Session, error)
	GetSession(ctx context.Context, token string) (*model.Session, error)
	SignOut(ctx context.Context, token string) error
	TTL() time.Duration
}

// SessionDisconnector drops live dashboard connections opened under a session.
type SessionDisconnector interface {
	DisconnectSession(sessionID int64) int
}

type loginView struct {
	Email string
	Error string
}

type AuthHandler struct {
	sessions      SessionProvider
	admins        auth.AllowList
	metrics       *metrics.Metrics
	renderer      *Renderer
	secureCookies bool
	live          SessionDisconnector
	logger        *slog.Logger
}

func NewAuthHandler(sessions SessionProvider, admins auth.AllowList, m *metrics.Metrics, renderer *Renderer, secureCookies bool, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		sessions:      sessions,
		admins:        admins,
		metrics:       m,
		renderer:      renderer,
		secureCookies: secureCookies,
		logger:        logger,
	}
}

// SetLiveClients makes Logout close the websocket clients of the session.
func (h *AuthHandler) SetLiveClients(d SessionDisconnector) {
	h.live = d
}

// LoginPage shows the sign-in form, or skips it when the session already
// passes the gate.
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if decision, _ := middleware.Check(r, h.sessions, h.admins, h.logger); decision.Allowed() {
		http.Redirect(w, r, DashboardPath, http.StatusSeeOther)
		return
	}
	h.renderLogin(w, r, http.StatusOK, loginView{})
}

// Login checks credentials, then runs the admin policy on the new session.
// A valid account that is not allow-listed is signed straight back out.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return
	}
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	view := loginView{Email: email}

	sess, err := h.sessions.SignIn(r.Context(), email, password)
	if errors.Is(err, identity.ErrInvalidCredentials) {
		h.metrics.LoginAttempts.WithLabelValues(metrics.LoginInvalid).Inc()
		h.logger.Info("auth_event", "event", "login_failed", "email", email, "reason", "invalid_credentials")
		view.Error = msgInvalidCredentials
		h.renderLogin(w, r, http.StatusUnauthorized, view)
		return
	}
	if err != nil {
		h.metrics.LoginAttempts.WithLabelValues(metrics.LoginError).Inc()
		serverError(h.logger, r, "sign in", err)
		view.Error = msgSignInUnavailable
		h.renderLogin(w, r, http.StatusInternalServerError, view)
		return
	}

	if decision := auth.Authorize(r.Context(), sess, h.admins); !decision.Allowed() {
		if err := h.sessions.SignOut(r.Context(), sess.Token); err != nil {
			h.logger.Error("sign out non-admin", "error", err)
		}
		h.clearCookie(w)
		h.metrics.LoginAttempts.WithLabelValues(metrics.LoginNotAdmin).Inc()
		h.logger.Info("auth_event", "event", "login_denied", "email", sess.Email, "reason", decision.String())
		view.Error = msgNotAdmin
		h.renderLogin(w, r, http.StatusForbidden, view)
		return
	}

	h.setCookie(w, sess)
	h.metrics.LoginAttempts.WithLabelValues(metrics.LoginSuccess).Inc()
	h.logger.Info("auth_event", "event", "login", "email", sess.Email)
	http.Redirect(w, r, DashboardPath, http.StatusSeeOther)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil && cookie.Value != "" {
		sess, err := h.sessions.GetSession(r.Context(), cookie.Value)
		if err != nil {
			h.logger.Error("sign out lookup", "error", err)
		}
		if err := h.sessions.SignOut(r.Context(), cookie.Value); err != nil {
			h.logger.Error("sign out", "error", err)
		}
		if sess != nil && h.live != nil {
			h.live.DisconnectSession(sess.ID)
		}
	}
	h.clearCookie(w)
	h.logger.Info("auth_event", "event", "logout", "email", auth.Email(r.Context()))
	http.Redirect(w, r, middleware.LoginPath, http.StatusSeeOther)
}

func (h *AuthHandler) renderLogin(w http.ResponseWriter, r *http.Request, status int, view loginView) {
	h.renderer.Render(w, r, status, "login.html", Page{Title: "Administrator sign in", Data: view})
}

func (h *AuthHandler) setCookie(w http.ResponseWriter, sess *model.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		MaxAge:   int(h.sessions.TTL().Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
