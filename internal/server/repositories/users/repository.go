// Package users stores user identities.
package users

import (
	"context"

	"github.com/dmitrijs2005/gophnotes/internal/server/models"
)

// Repository is the user storage contract. Lookups return common.ErrNotFound
// for missing rows; Create returns common.ErrAlreadyExists when the username
// is taken. Mutations return the number of affected rows.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Count(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id string) (int64, error)
	SetAdmin(ctx context.Context, username string, isAdmin bool) (int64, error)
}
