// Package notes stores user notes.
package notes

import (
	"context"

	"github.com/dmitrijs2005/gophnotes/internal/server/models"
)

// Repository is the note storage contract. Get returns common.ErrNotFound for
// a missing note, or for a note not owned by owner when owner is non-empty.
// Mutations filter by owner and return the number of affected rows, so zero
// means "missing or not yours".
type Repository interface {
	Create(ctx context.Context, note *models.Note) (*models.Note, error)
	Get(ctx context.Context, id, owner string) (*models.Note, error)
	ListByOwner(ctx context.Context, owner string) ([]models.Note, error)
	ListAll(ctx context.Context) ([]models.Note, error)
	Update(ctx context.Context, id, owner string, patch models.NotePatch) (int64, error)
	Delete(ctx context.Context, id, owner string) (int64, error)
	DeleteByOwner(ctx context.Context, owner string) (int64, error)
	Count(ctx context.Context) (int64, error)
}
