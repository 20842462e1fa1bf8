package api

import (
	"context"

	"github.com/dmitrijs2005/gophnotes/internal/server/models"
)

type contextKey string

const identityKey contextKey = "identity"

func withIdentity(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, identityKey, u)
}

// IdentityFromContext returns the caller set by the authenticate middleware.
func IdentityFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(identityKey).(*models.User)
	return u, ok && u != nil
}
