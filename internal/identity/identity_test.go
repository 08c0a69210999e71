package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dukerupert/leadline/internal/database"
	"github.com/dukerupert/leadline/internal/store"
)

func setupProvider(t *testing.T) *Provider {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewProvider(store.NewUserStore(db), store.NewSessionStore(db), time.Hour)
}

func TestSignIn(t *testing.T) {
	p := setupProvider(t)
	ctx := context.Background()

	if _, err := p.Register(ctx, "boss@example.com", "s3cret"); err != nil {
		t.Fatalf("register: %v", err)
	}

	sess, err := p.SignIn(ctx, "boss@example.com", "s3cret")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if sess.Email != "boss@example.com" {
		t.Errorf("email = %q, want boss@example.com", sess.Email)
	}

	got, err := p.GetSession(ctx, sess.Token)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if got == nil || got.ID != sess.ID {
		t.Fatalf("session = %+v, want id %d", got, sess.ID)
	}
}

func TestSignInWrongPassword(t *testing.T) {
	p := setupProvider(t)
	ctx := context.Background()

	p.Register(ctx, "boss@example.com", "s3cret")

	_, err := p.SignIn(ctx, "boss@example.com", "guess")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestSignInUnknownEmail(t *testing.T) {
	p := setupProvider(t)

	_, err := p.SignIn(context.Background(), "nobody@example.com", "whatever")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestSignInEmptyFields(t *testing.T) {
	p := setupProvider(t)

	if _, err := p.SignIn(context.Background(), "", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestSignOut(t *testing.T) {
	p := setupProvider(t)
	ctx := context.Background()

	p.Register(ctx, "boss@example.com", "s3cret")
	sess, _ := p.SignIn(ctx, "boss@example.com", "s3cret")

	if err := p.SignOut(ctx, sess.Token); err != nil {
		t.Fatalf("sign out: %v", err)
	}
	got, _ := p.GetSession(ctx, sess.Token)
	if got != nil {
		t.Error("expected no session after sign out")
	}
	if err := p.SignOut(ctx, "unknown"); err != nil {
		t.Errorf("sign out unknown token: %v", err)
	}
}

func TestGetSessionEmptyToken(t *testing.T) {
	p := setupProvider(t)

	sess, err := p.GetSession(context.Background(), "")
	if err != nil || sess != nil {
		t.Errorf("GetSession(\"\") = %v, %v; want nil, nil", sess, err)
	}
}

func TestRegisterResetsPassword(t *testing.T) {
	p := setupProvider(t)
	ctx := context.Background()

	first, _ := p.Register(ctx, "boss@example.com", "old")
	second, err := p.Register(ctx, "boss@example.com", "new")
	if err != nil {
		t.Fatalf("re-register: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("id = %d, want %d (same user)", second.ID, first.ID)
	}
	if _, err := p.SignIn(ctx, "boss@example.com", "old"); !errors.Is(err, ErrInvalidCredentials) {
		t.Error("old password should no longer work")
	}
	if _, err := p.SignIn(ctx, "boss@example.com", "new"); err != nil {
		t.Errorf("new password: %v", err)
	}
}
