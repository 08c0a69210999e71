package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/dukerupert/leadline/internal/identity"
	"github.com/dukerupert/leadline/internal/logging"
	"github.com/dukerupert/leadline/internal/metrics"
	"github.com/dukerupert/leadline/internal/middleware"
	"github.com/dukerupert/leadline/internal/store"
)

type authFixture struct {
	h       *AuthHandler
	m       *metrics.Metrics
	p       *identity.Provider
	admins  *store.AdminStore
	countFn func() int
}

func newAuthFixture(t *testing.T) authFixture {
	t.Helper()
	db := setupTestDB(t)
	p := identity.NewProvider(store.NewUserStore(db), store.NewSessionStore(db), time.Hour)
	admins := store.NewAdminStore(db)
	m := metrics.New()
	ctx := context.Background()

	if _, err := p.Register(ctx, "owner@example.com", "correct horse"); err != nil {
		t.Fatalf("register owner: %v", err)
	}
	if err := admins.Add(ctx, "owner@example.com"); err != nil {
		t.Fatalf("allow-list owner: %v", err)
	}
	if _, err := p.Register(ctx, "visitor@example.com", "battery staple"); err != nil {
		t.Fatalf("register visitor: %v", err)
	}

	return authFixture{
		h:      NewAuthHandler(p, admins, m, newTestRenderer(t), false, logging.Discard()),
		m:      m,
		p:      p,
		admins: admins,
		countFn: func() int {
			var n int
			if err := db.QueryRow(`SELECT COUNT(*) FROM sessions`).Scan(&n); err != nil {
				t.Fatalf("count sessions: %v", err)
			}
			return n
		},
	}
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			return c
		}
	}
	return nil
}

func TestLoginAdmin(t *testing.T) {
	f := newAuthFixture(t)

	rec := httptest.NewRecorder()
	f.h.Login(rec, postForm("/admin/login", url.Values{"email": {"owner@example.com"}, "password": {"correct horse"}}))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != DashboardPath {
		t.Errorf("Location = %q, want %q", loc, DashboardPath)
	}
	c := sessionCookie(rec)
	if c == nil || c.Value == "" {
		t.Fatal("session cookie not set")
	}
	if !c.HttpOnly {
		t.Error("session cookie is not HttpOnly")
	}
	if got := testutil.ToFloat64(f.m.LoginAttempts.WithLabelValues(metrics.LoginSuccess)); got != 1 {
		t.Errorf("success attempts = %v, want 1", got)
	}
}

func TestLoginNonAdminIsSignedOut(t *testing.T) {
	f := newAuthFixture(t)

	rec := httptest.NewRecorder()
	f.h.Login(rec, postForm("/admin/login", url.Values{"email": {"visitor@example.com"}, "password": {"battery staple"}}))

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
	if !strings.Contains(rec.Body.String(), "This account is not an administrator.") {
		t.Error("not-admin message missing")
	}
	if rec.Header().Get("Location") != "" {
		t.Error("non-admin was redirected away from the login page")
	}
	if c := sessionCookie(rec); c == nil || c.MaxAge >= 0 {
		t.Errorf("cookie = %+v, want cleared", c)
	}
	if n := f.countFn(); n != 0 {
		t.Errorf("sessions = %d, want 0 after sign out", n)
	}
	if got := testutil.ToFloat64(f.m.LoginAttempts.WithLabelValues(metrics.LoginNotAdmin)); got != 1 {
		t.Errorf("not_admin attempts = %v, want 1", got)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	f := newAuthFixture(t)

	rec := httptest.NewRecorder()
	f.h.Login(rec, postForm("/admin/login", url.Values{"email": {"owner@example.com"}, "password": {"nope"}}))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if !strings.Contains(rec.Body.String(), "Invalid email or password.") {
		t.Error("invalid credentials message missing")
	}
	if !strings.Contains(rec.Body.String(), `value="owner@example.com"`) {
		t.Error("email not kept")
	}
	if sessionCookie(rec) != nil {
		t.Error("cookie set on failed login")
	}
}

func TestLoginPageRedirectsSignedInAdmin(t *testing.T) {
	f := newAuthFixture(t)
	sess, err := f.p.SignIn(context.Background(), "owner@example.com", "correct horse")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	req := httptest.NewRequest("GET", "/admin/login", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: sess.Token})
	rec := httptest.NewRecorder()
	f.h.LoginPage(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
}

func TestLoginPageShowsForm(t *testing.T) {
	f := newAuthFixture(t)

	rec := httptest.NewRecorder()
	f.h.LoginPage(rec, httptest.NewRequest("GET", "/admin/login", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), `name="password"`) {
		t.Error("login form missing")
	}
}

func TestLogout(t *testing.T) {
	f := newAuthFixture(t)
	sess, err := f.p.SignIn(context.Background(), "owner@example.com", "correct horse")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	req := httptest.NewRequest("POST", "/admin/logout", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: sess.Token})
	rec := httptest.NewRecorder()
	f.h.Logout(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != middleware.LoginPath {
		t.Errorf("Location = %q, want %q", loc, middleware.LoginPath)
	}
	got, err := f.p.GetSession(context.Background(), sess.Token)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got != nil {
		t.Error("session survived logout")
	}
}

type recordingDisconnector struct{ ids []int64 }

func (d *recordingDisconnector) DisconnectSession(id int64) int {
	d.ids = append(d.ids, id)
	return 1
}

func TestLogoutDisconnectsLiveClients(t *testing.T) {
	f := newAuthFixture(t)
	d := &recordingDisconnector{}
	f.h.SetLiveClients(d)
	sess, err := f.p.SignIn(context.Background(), "owner@example.com", "correct horse")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	req := httptest.NewRequest("POST", "/admin/logout", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: sess.Token})
	f.h.Logout(httptest.NewRecorder(), req)

	if len(d.ids) != 1 || d.ids[0] != sess.ID {
		t.Errorf("disconnected = %v, want [%d]", d.ids, sess.ID)
	}

	// Unknown or missing cookies disconnect nothing.
	d.ids = nil
	req = httptest.NewRequest("POST", "/admin/logout", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "stale"})
	f.h.Logout(httptest.NewRecorder(), req)
	f.h.Logout(httptest.NewRecorder(), httptest.NewRequest("POST", "/admin/logout", nil))
	if len(d.ids) != 0 {
		t.Errorf("disconnected = %v, want none", d.ids)
	}
}
