package auth

import (
	"context"

	"github.com/dukerupert/leadline/internal/model"
)

// AllowList reports whether an email belongs to an administrator.
type AllowList interface {
	IsAdmin(ctx context.Context, email string) (bool, error)
}

// Decision is the outcome of Authorize.
type Decision int

const (
	DenyNoSession Decision = iota
	DenyNotAdmin
	Allow
)

func (d Decision) Allowed() bool {
	return d == Allow
}

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case DenyNotAdmin:
		return "not_admin"
	default:
		return "no_session"
	}
}

// Authorize is the single access rule for every admin view: a live session
// whose email is on the allow-list. A failed allow-list lookup denies.
func Authorize(ctx context.Context, sess *model.Session, list AllowList) Decision {
	if sess == nil {
		return DenyNoSession
	}
	ok, err := list.IsAdmin(ctx, sess.Email)
	if err != nil || !ok {
		return DenyNotAdmin
	}
	return Allow
}
