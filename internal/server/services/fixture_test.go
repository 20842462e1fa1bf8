package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/server/auth"
	"github.com/dmitrijs2005/gophnotes/internal/server/models"
	"github.com/dmitrijs2005/gophnotes/internal/server/repositories/notes"
	"github.com/dmitrijs2005/gophnotes/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/require"
)

var cheapArgon2 = auth.Argon2Params{Time: 1, Memory: 64, Threads: 1, KeyLen: 16, SaltLen: 8}

type fixture struct {
	repos repomanager.RepositoryManager
	users *UserService
	notes *NoteService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWith(t, repomanager.NewMemoryRepositoryManager())
}

func newFixtureWith(t *testing.T, repos repomanager.RepositoryManager) *fixture {
	t.Helper()
	codec, err := auth.NewTokenCodec([]byte("test-secret"))
	require.NoError(t, err)
	authn, err := auth.NewAuthenticator(repos.Users(), auth.NewArgon2Hasher(cheapArgon2), codec, 30*time.Minute)
	require.NoError(t, err)
	return &fixture{
		repos: repos,
		users: NewUserService(repos, authn, nil),
		notes: NewNoteService(repos, nil),
	}
}

func (f *fixture) register(t *testing.T, name string, admin bool) *models.User {
	t.Helper()
	var (
		u   *models.User
		err error
	)
	if admin {
		u, err = f.users.CreateAdmin(context.Background(), name, name+"-pw")
	} else {
		u, err = f.users.Register(context.Background(), name, name+"-pw")
	}
	require.NoError(t, err)
	return u
}

func strPtr(s string) *string { return &s }

var errDown = errors.New("connection refused")

// brokenManager serves working user repositories and failing note
// repositories.
type brokenManager struct {
	repomanager.RepositoryManager
}

func (b brokenManager) Notes() notes.Repository { return brokenNotes{} }

func (b brokenManager) WithTx(ctx context.Context, fn func(ctx context.Context, m repomanager.RepositoryManager) error) error {
	return fn(ctx, b)
}

type brokenNotes struct{}

func (brokenNotes) Create(context.Context, *models.Note) (*models.Note, error) { return nil, errDown }
func (brokenNotes) Get(context.Context, string, string) (*models.Note, error)  { return nil, errDown }
func (brokenNotes) ListByOwner(context.Context, string) ([]models.Note, error) { return nil, errDown }
func (brokenNotes) ListAll(context.Context) ([]models.Note, error)             { return nil, errDown }
func (brokenNotes) Delete(context.Context, string, string) (int64, error)      { return 0, errDown }
func (brokenNotes) DeleteByOwner(context.Context, string) (int64, error)       { return 0, errDown }
func (brokenNotes) Count(context.Context) (int64, error)                       { return 0, errDown }
func (brokenNotes) Update(context.Context, string, string, models.NotePatch) (int64, error) {
	return 0, errDown
}
