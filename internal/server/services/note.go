package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/logging"
	"github.com/dmitrijs2005/gophnotes/internal/server/access"
	"github.com/dmitrijs2005/gophnotes/internal/server/models"
	"github.com/dmitrijs2005/gophnotes/internal/server/repositories/notes"
	"github.com/dmitrijs2005/gophnotes/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// NoteService implements note CRUD for authenticated callers.
type NoteService struct {
	repos repomanager.RepositoryManager
	log   logging.Logger
}

func NewNoteService(repos repomanager.RepositoryManager, log logging.Logger) *NoteService {
	if log == nil {
		log = logging.Nop{}
	}
	return &NoteService{repos: repos, log: log}
}

// Create stores a new note owned by the caller. The owner is never taken
// from the input.
func (s *NoteService) Create(ctx context.Context, identity *models.User, in models.NoteInput) (*models.Note, error) {
	if identity == nil {
		return nil, common.ErrInvalidCredentials
	}
	n, err := s.repos.Notes().Create(ctx, &models.Note{
		ID:       uuid.NewString(),
		Title:    in.Title,
		Content:  in.Content,
		Username: identity.Username,
	})
	if err != nil {
		return nil, storageErr("create note", err)
	}
	s.log.Debug(ctx, "note created", "note_id", n.ID, "username", n.Username)
	return n, nil
}

// List returns the caller's notes.
func (s *NoteService) List(ctx context.Context, identity *models.User) ([]models.Note, error) {
	if identity == nil {
		return nil, common.ErrInvalidCredentials
	}
	ns, err := s.repos.Notes().ListByOwner(ctx, identity.Username)
	if err != nil {
		return nil, storageErr("list notes", err)
	}
	return ns, nil
}

// ListAll returns every note in the system. Admin only.
func (s *NoteService) ListAll(ctx context.Context, identity *models.User) ([]models.Note, error) {
	if err := access.Authorize(identity, access.NoteListAll, access.Target{}); err != nil {
		return nil, err
	}
	ns, err := s.repos.Notes().ListAll(ctx)
	if err != nil {
		return nil, storageErr("list all notes", err)
	}
	return ns, nil
}

// Count returns the number of notes in the system. Admin only.
func (s *NoteService) Count(ctx context.Context, identity *models.User) (int64, error) {
	if err := access.Authorize(identity, access.NoteCount, access.Target{}); err != nil {
		return 0, err
	}
	n, err := s.repos.Notes().Count(ctx)
	if err != nil {
		return 0, storageErr("count notes", err)
	}
	return n, nil
}

// load fetches a note by id regardless of owner. Unknown and malformed ids
// yield a nil note so the ownership check reports them as not found.
func load(ctx context.Context, repo notes.Repository, id string) (*models.Note, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	n, err := repo.Get(ctx, id, "")
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil
		}
		return nil, storageErr("get note", err)
	}
	return n, nil
}

// Get returns one of the caller's notes. Someone else's note is reported as
// not found.
func (s *NoteService) Get(ctx context.Context, identity *models.User, id string) (*models.Note, error) {
	if identity == nil {
		return nil, common.ErrInvalidCredentials
	}
	n, err := load(ctx, s.repos.Notes(), id)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(identity, access.NoteRead, access.OnNote(n)); err != nil {
		return nil, err
	}
	return n, nil
}

// Update applies patch to one of the caller's notes and returns the result.
// An empty patch changes nothing and returns the note as stored.
func (s *NoteService) Update(ctx context.Context, identity *models.User, id string, patch models.NotePatch) (*models.Note, error) {
	if identity == nil {
		return nil, common.ErrInvalidCredentials
	}
	var out *models.Note
	err := s.repos.WithTx(ctx, func(ctx context.Context, tx repomanager.RepositoryManager) error {
		repo := tx.Notes()
		n, err := load(ctx, repo, id)
		if err != nil {
			return err
		}
		if err := access.Authorize(identity, access.NoteUpdate, access.OnNote(n)); err != nil {
			return err
		}
		if patch.Empty() {
			out = n
			return nil
		}

		rows, err := repo.Update(ctx, n.ID, identity.Username, patch)
		if err != nil {
			return storageErr("update note", err)
		}
		if rows == 0 {
			return common.ErrNotFound
		}

		out, err = repo.Get(ctx, n.ID, identity.Username)
		if err != nil {
			return storageErr("get note", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes one of the caller's notes.
func (s *NoteService) Delete(ctx context.Context, identity *models.User, id string) error {
	if identity == nil {
		return common.ErrInvalidCredentials
	}
	return s.repos.WithTx(ctx, func(ctx context.Context, tx repomanager.RepositoryManager) error {
		repo := tx.Notes()
		n, err := load(ctx, repo, id)
		if err != nil {
			return err
		}
		if err := access.Authorize(identity, access.NoteDelete, access.OnNote(n)); err != nil {
			return err
		}
		rows, err := repo.Delete(ctx, n.ID, identity.Username)
		if err != nil {
			return storageErr("delete note", err)
		}
		if rows == 0 {
			return common.ErrNotFound
		}
		s.log.Debug(ctx, "note deleted", "note_id", n.ID, "username", identity.Username)
		return nil
	})
}
