package auth

import "context"

type contextKey struct{}

// AdminContext identifies the administrator behind an allowed request.
type AdminContext struct {
	UserID    int64
	Email     string
	SessionID int64
}

func WithAdmin(ctx context.Context, ac AdminContext) context.Context {
	return context.WithValue(ctx, contextKey{}, ac)
}

func FromContext(ctx context.Context) (AdminContext, bool) {
	ac, ok := ctx.Value(contextKey{}).(AdminContext)
	return ac, ok
}

func Email(ctx context.Context) string {
	ac, ok := FromContext(ctx)
	if !ok {
		return ""
	}
	return ac.Email
}

func IsAdmin(ctx context.Context) bool {
	_, ok := FromContext(ctx)
	return ok
}
