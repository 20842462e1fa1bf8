package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// TokenCodec issues and verifies HS256 access tokens carrying a subject
// (the username) and an absolute expiry.
type TokenCodec struct {
	secret []byte
	now    func() time.Time
}

// CodecOption customises a TokenCodec.
type CodecOption func(*TokenCodec)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) CodecOption {
	return func(c *TokenCodec) { c.now = now }
}

func NewTokenCodec(secret []byte, opts ...CodecOption) (*TokenCodec, error) {
	if len(secret) == 0 {
		return nil, errors.New("token secret must not be empty")
	}
	c := &TokenCodec{secret: append([]byte(nil), secret...), now: time.Now}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Issue signs a token for subject valid for ttl. The issue time is truncated
// to whole seconds, the resolution of JWT timestamps, so the token verifies
// for exactly ttl from the returned issue time.
func (c *TokenCodec) Issue(subject string, ttl time.Duration) (token string, expiresAt time.Time, err error) {
	if subject == "" {
		return "", time.Time{}, errors.New("token subject must not be empty")
	}
	issuedAt := c.now().Truncate(time.Second)
	expiresAt = issuedAt.Add(ttl)

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	})

	token, err = t.SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return token, expiresAt, nil
}

// Verify returns the token's subject. Every failure (bad signature,
// malformed token, wrong algorithm, missing subject or expiry, expired)
// yields common.ErrInvalidCredentials.
func (c *TokenCodec) Verify(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}

	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return "", common.ErrInvalidCredentials
	}
	return claims.Subject, nil
}
