package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/dukerupert/leadline/internal/model"
	"github.com/dukerupert/leadline/internal/store"
)

// ErrInvalidCredentials covers both an unknown email and a wrong password.
var ErrInvalidCredentials = errors.New("invalid email or password")

// DefaultSessionTTL is used when the provider is built with a zero TTL.
const DefaultSessionTTL = 24 * time.Hour

// Provider issues and validates login sessions from an email/password pair.
type Provider struct {
	users    *store.UserStore
	sessions *store.SessionStore
	ttl      time.Duration
}

func NewProvider(users *store.UserStore, sessions *store.SessionStore, ttl time.Duration) *Provider {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Provider{users: users, sessions: sessions, ttl: ttl}
}

// TTL returns how long new sessions stay valid.
func (p *Provider) TTL() time.Duration {
	return p.ttl
}

// SignIn checks the credentials and creates a session on success.
func (p *Provider) SignIn(ctx context.Context, email, password string) (*model.Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := p.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	sess, err := p.sessions.Create(ctx, user.ID, user.Email, p.ttl)
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}
	return sess, nil
}

// GetSession returns the live session for token, or nil if there is none.
func (p *Provider) GetSession(ctx context.Context, token string) (*model.Session, error) {
	if token == "" {
		return nil, nil
	}
	return p.sessions.GetByToken(ctx, token)
}

// SignOut destroys the session. Unknown tokens are ignored.
func (p *Provider) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return p.sessions.DeleteByToken(ctx, token)
}

// Register creates a user or resets the password of an existing one.
func (p *Provider) Register(ctx context.Context, email, password string) (*model.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, errors.New("email and password are required")
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	existing, err := p.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	if existing != nil {
		if err := p.users.UpdatePassword(ctx, existing.ID, hash); err != nil {
			return nil, fmt.Errorf("register: %w", err)
		}
		existing.PasswordHash = hash
		return existing, nil
	}

	user, err := p.users.Create(ctx, email, hash)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return user, nil
}

// HashPassword returns a bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
