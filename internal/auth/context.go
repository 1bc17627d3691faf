package auth

import (
	"context"

	"github.com/facturia/facturia/internal/storage"
)

// ctxKey is a private type for context keys to prevent collisions.
type ctxKey int

const userKey ctxKey = iota // stores *storage.AdminUser

// WithUser adds the authenticated admin to the context.
func WithUser(ctx context.Context, user *storage.AdminUser) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext retrieves the authenticated admin from context.
// Returns nil for unauthenticated (system) actions.
func UserFromContext(ctx context.Context) *storage.AdminUser {
	if v := ctx.Value(userKey); v != nil {
		if user, ok := v.(*storage.AdminUser); ok {
			return user
		}
	}
	return nil
}
