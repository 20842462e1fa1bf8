// Package auth authenticates callers of the notes service. It hashes and
// verifies passwords, issues and verifies bearer tokens, and resolves both
// kinds of credential to a stored identity.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/server/models"
)

// UserFinder looks users up by username. It returns common.ErrNotFound when
// there is no such user.
type UserFinder interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// Token is an issued access token.
type Token struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
}

type Authenticator struct {
	users     UserFinder
	hasher    Hasher
	tokens    *TokenCodec
	ttl       time.Duration
	dummyHash string
}

// NewAuthenticator wires the credential checks together. ttl is the lifetime
// of tokens minted by IssueToken.
func NewAuthenticator(users UserFinder, hasher Hasher, tokens *TokenCodec, ttl time.Duration) (*Authenticator, error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("token ttl must be positive, got %s", ttl)
	}

	// Verifying against a throwaway digest keeps the unknown-user path as
	// slow as the wrong-password path.
	pw, err := common.MakeRandHexString(16)
	if err != nil {
		return nil, fmt.Errorf("dummy password: %w", err)
	}
	dummy, err := hasher.Hash(pw)
	if err != nil {
		return nil, fmt.Errorf("dummy hash: %w", err)
	}

	return &Authenticator{users: users, hasher: hasher, tokens: tokens, ttl: ttl, dummyHash: dummy}, nil
}

// AuthenticateByPassword returns the identity for username when password
// matches. Unknown users and wrong passwords both give
// common.ErrInvalidCredentials. The returned user carries no password hash.
func (a *Authenticator) AuthenticateByPassword(ctx context.Context, username, password string) (*models.User, error) {
	u, err := a.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			a.hasher.Verify(password, a.dummyHash)
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}

	if !a.hasher.Verify(password, u.PasswordHash) {
		return nil, common.ErrInvalidCredentials
	}

	pub := u.Public()
	return &pub, nil
}

// AuthenticateByToken resolves a bearer token to the identity it names.
// Invalid tokens and tokens for users that no longer exist both give
// common.ErrInvalidCredentials.
func (a *Authenticator) AuthenticateByToken(ctx context.Context, token string) (*models.User, error) {
	subject, err := a.tokens.Verify(token)
	if err != nil {
		return nil, common.ErrInvalidCredentials
	}

	u, err := a.users.GetByUsername(ctx, subject)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}

	pub := u.Public()
	return &pub, nil
}

// IssueToken mints an access token for an authenticated identity.
func (a *Authenticator) IssueToken(u *models.User) (*Token, error) {
	tok, exp, err := a.tokens.Issue(u.Username, a.ttl)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInternal, err)
	}
	return &Token{AccessToken: tok, TokenType: common.BearerScheme, ExpiresAt: exp}, nil
}

// HashPassword hashes a new password for storage.
func (a *Authenticator) HashPassword(password string) (string, error) {
	return a.hasher.Hash(password)
}
