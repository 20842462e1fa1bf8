package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/gophnotes/internal/common"
)

type errorBody struct {
	Detail string `json:"detail"`
}

type messageBody struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorBody{Detail: detail})
}

// Wire messages.
const (
	msgBadLogin      = "Incorrect username or password"
	msgBadToken      = "Could not validate credentials"
	msgDuplicate     = "Username already exists"
	msgNoteNotFound  = "Note not found"
	msgUserNotFound  = "User not found"
	msgSelfDelete    = "Cannot delete own account"
	msgAdminRequired = "Admin privileges required"
	msgUnavailable   = "Service temporarily unavailable"
	msgInternal      = "Internal server error"
	msgRateLimited   = "Rate limit exceeded"
)

// statusFromError maps the error taxonomy onto an HTTP status and the detail
// sent to the client. notFound is the detail for common.ErrNotFound, which
// differs per resource.
func statusFromError(err error, notFound string) (int, string) {
	switch {
	case errors.Is(err, common.ErrInvalidCredentials):
		return http.StatusUnauthorized, msgBadToken
	case errors.Is(err, common.ErrDuplicateUsername), errors.Is(err, common.ErrAlreadyExists):
		return http.StatusBadRequest, msgDuplicate
	case errors.Is(err, common.ErrValidation):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound, notFound
	case errors.Is(err, common.ErrSelfDelete):
		return http.StatusBadRequest, msgSelfDelete
	case errors.Is(err, common.ErrForbidden):
		return http.StatusForbidden, msgAdminRequired
	case errors.Is(err, common.ErrRateLimited):
		return http.StatusTooManyRequests, msgRateLimited
	case errors.Is(err, common.ErrStorageUnavailable):
		return http.StatusServiceUnavailable, msgUnavailable
	}
	return http.StatusInternalServerError, msgInternal
}
