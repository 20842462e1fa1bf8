// Package common defines shared constants and sentinel errors used across
// the notes service layers. Callers should use errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Authentication errors. Bad username/password and bad/expired/malformed
	// tokens share one value so callers cannot tell them apart.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Registration errors.
	ErrDuplicateUsername = errors.New("username already exists")

	// Authorization errors.
	ErrForbidden  = errors.New("forbidden")
	ErrSelfDelete = fmt.Errorf("%w: cannot delete own account", ErrForbidden)

	// Admission errors.
	ErrRateLimited = errors.New("rate limited")

	// Validation / request-shape errors.
	ErrValidation = errors.New("validation error")

	// Transient storage outage. Not retried by the service.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// Service-level errors (generic/internal flow control).
	ErrInternal = errors.New("internal error")
)
