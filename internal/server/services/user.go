// Package services implements the resource operations of the notes service.
// Every operation on a note or user record asks access.Authorize before it
// touches storage on the caller's behalf.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/logging"
	"github.com/dmitrijs2005/gophnotes/internal/server/access"
	"github.com/dmitrijs2005/gophnotes/internal/server/auth"
	"github.com/dmitrijs2005/gophnotes/internal/server/models"
	"github.com/dmitrijs2005/gophnotes/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// UserService handles registration, login and the admin user operations.
type UserService struct {
	repos repomanager.RepositoryManager
	authn *auth.Authenticator
	log   logging.Logger
}

func NewUserService(repos repomanager.RepositoryManager, authn *auth.Authenticator, log logging.Logger) *UserService {
	if log == nil {
		log = logging.Nop{}
	}
	return &UserService{repos: repos, authn: authn, log: log}
}

func validateCredentials(username, password string) error {
	switch {
	case strings.TrimSpace(username) == "":
		return fmt.Errorf("%w: username must not be empty", common.ErrValidation)
	case utf8.RuneCountInString(username) > common.MaxUsernameLength:
		return fmt.Errorf("%w: username longer than %d characters", common.ErrValidation, common.MaxUsernameLength)
	case password == "":
		return fmt.Errorf("%w: password must not be empty", common.ErrValidation)
	case utf8.RuneCountInString(password) > common.MaxPasswordLength:
		return fmt.Errorf("%w: password longer than %d characters", common.ErrValidation, common.MaxPasswordLength)
	}
	return nil
}

// Register creates a regular user.
func (s *UserService) Register(ctx context.Context, username, password string) (*models.User, error) {
	return s.create(ctx, username, password, false)
}

// CreateAdmin creates a user holding the admin role. It is only reachable
// from the operator CLI.
func (s *UserService) CreateAdmin(ctx context.Context, username, password string) (*models.User, error) {
	return s.create(ctx, username, password, true)
}

// create checks for an existing username first, but the unique constraint
// in storage decides: a concurrent insert that wins the race surfaces here
// as ErrAlreadyExists and is reported as a duplicate too.
func (s *UserService) create(ctx context.Context, username, password string, isAdmin bool) (*models.User, error) {
	if err := validateCredentials(username, password); err != nil {
		return nil, err
	}

	repo := s.repos.Users()

	_, err := repo.GetByUsername(ctx, username)
	switch {
	case err == nil:
		return nil, common.ErrDuplicateUsername
	case !errors.Is(err, common.ErrNotFound):
		return nil, storageErr("lookup user", err)
	}

	hash, err := s.authn.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("%w: hash password: %v", common.ErrInternal, err)
	}

	u, err := repo.Create(ctx, &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		IsAdmin:      isAdmin,
	})
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, common.ErrDuplicateUsername
		}
		return nil, storageErr("create user", err)
	}

	s.log.Info(ctx, "user created", "user_id", u.ID, "username", u.Username, "admin", u.IsAdmin)
	pub := u.Public()
	return &pub, nil
}

// Promote grants the admin role to an existing user.
func (s *UserService) Promote(ctx context.Context, username string) error {
	n, err := s.repos.Users().SetAdmin(ctx, username, true)
	if err != nil {
		return storageErr("promote user", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	s.log.Info(ctx, "user promoted to admin", "username", username)
	return nil
}

// Login checks credentials and issues an access token.
func (s *UserService) Login(ctx context.Context, username, password string) (*auth.Token, error) {
	u, err := s.authn.AuthenticateByPassword(ctx, username, password)
	if err != nil {
		return nil, err
	}
	return s.authn.IssueToken(u)
}

// Authenticate resolves a bearer token to the caller's identity.
func (s *UserService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	return s.authn.AuthenticateByToken(ctx, token)
}

// Me returns the caller's own record.
func (s *UserService) Me(ctx context.Context, identity *models.User) (*models.User, error) {
	u, err := s.repos.Users().GetByUsername(ctx, identity.Username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, storageErr("get user", err)
	}
	pub := u.Public()
	return &pub, nil
}

// List returns every user. Admin only.
func (s *UserService) List(ctx context.Context, identity *models.User) ([]models.User, error) {
	if err := access.Authorize(identity, access.UserList, access.Target{}); err != nil {
		return nil, err
	}
	users, err := s.repos.Users().List(ctx)
	if err != nil {
		return nil, storageErr("list users", err)
	}
	for i := range users {
		users[i] = users[i].Public()
	}
	return users, nil
}

// Count returns the number of users. Admin only.
func (s *UserService) Count(ctx context.Context, identity *models.User) (int64, error) {
	if err := access.Authorize(identity, access.UserCount, access.Target{}); err != nil {
		return 0, err
	}
	n, err := s.repos.Users().Count(ctx)
	if err != nil {
		return 0, storageErr("count users", err)
	}
	return n, nil
}

// Delete removes the user with id and every note they own, in one
// transaction. Admin only; an admin cannot delete themselves.
func (s *UserService) Delete(ctx context.Context, identity *models.User, id string) error {
	err := s.repos.WithTx(ctx, func(ctx context.Context, tx repomanager.RepositoryManager) error {
		var target *models.User
		if _, perr := uuid.Parse(id); perr == nil {
			u, err := tx.Users().GetByID(ctx, id)
			if err != nil && !errors.Is(err, common.ErrNotFound) {
				return storageErr("get user", err)
			}
			target = u
		}

		if err := access.Authorize(identity, access.UserDelete, access.OnUser(target)); err != nil {
			return err
		}

		removed, err := tx.Notes().DeleteByOwner(ctx, target.Username)
		if err != nil {
			return storageErr("delete notes", err)
		}
		n, err := tx.Users().Delete(ctx, target.ID)
		if err != nil {
			return storageErr("delete user", err)
		}
		if n == 0 {
			return common.ErrNotFound
		}

		s.log.Info(ctx, "user deleted", "user_id", target.ID, "username", target.Username,
			"notes_removed", removed, "by", identity.Username)
		return nil
	})
	return err
}
