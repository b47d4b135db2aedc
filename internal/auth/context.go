package auth

import (
	"context"

	"github.com/arjun/wishhub/internal/models"
)

type ctxKey struct{}

// WithUser returns a context carrying the authenticated user record.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// UserFrom returns the authenticated user from the context, or nil when
// the request did not pass the authentication gate.
func UserFrom(ctx context.Context) *models.User {
	u, _ := ctx.Value(ctxKey{}).(*models.User)
	return u
}
