package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/logging"
	"github.com/dmitrijs2005/gophnotes/internal/server/auth"
	"github.com/dmitrijs2005/gophnotes/internal/server/models"
	"github.com/go-chi/chi/v5"
)

// UserOperations is what the user endpoints need from the service layer.
type UserOperations interface {
	TokenAuthenticator
	Register(ctx context.Context, username, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (*auth.Token, error)
	Me(ctx context.Context, identity *models.User) (*models.User, error)
	List(ctx context.Context, identity *models.User) ([]models.User, error)
	Count(ctx context.Context, identity *models.User) (int64, error)
	Delete(ctx context.Context, identity *models.User, id string) error
}

// NoteOperations is what the note endpoints need from the service layer.
type NoteOperations interface {
	Create(ctx context.Context, identity *models.User, in models.NoteInput) (*models.Note, error)
	List(ctx context.Context, identity *models.User) ([]models.Note, error)
	ListAll(ctx context.Context, identity *models.User) ([]models.Note, error)
	Get(ctx context.Context, identity *models.User, id string) (*models.Note, error)
	Update(ctx context.Context, identity *models.User, id string, patch models.NotePatch) (*models.Note, error)
	Delete(ctx context.Context, identity *models.User, id string) error
	Count(ctx context.Context, identity *models.User) (int64, error)
}

// Pinger reports storage readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

type handlers struct {
	users  UserOperations
	notes  NoteOperations
	health Pinger
	log    logging.Logger
}

const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is empty", common.ErrValidation)
		}
		return fmt.Errorf("%w: invalid request body: %v", common.ErrValidation, err)
	}
	return nil
}

// fail writes err using the shared mapping and logs server-side failures.
func (h *handlers) fail(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	status, detail := statusFromError(err, notFound)
	switch {
	case status == http.StatusUnauthorized:
		unauthorized(w, detail)
		return
	case status >= http.StatusInternalServerError:
		h.log.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	writeError(w, status, detail)
}

func mustIdentity(r *http.Request) *models.User {
	u, _ := IdentityFromContext(r.Context())
	return u
}

func (h *handlers) root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, messageBody{Message: "Notes App API is running."})
}

func (h *handlers) healthz(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		if err := h.health.Ping(r.Context()); err != nil {
			h.log.Warn(r.Context(), "health check: storage unreachable", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// token is the OAuth2 password grant: form fields username and password.
func (h *handlers) token(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid form body")
		return
	}
	username, password := r.PostForm.Get("username"), r.PostForm.Get("password")
	if username == "" || password == "" {
		writeError(w, http.StatusUnprocessableEntity, "username and password are required")
		return
	}

	tok, err := h.users.Login(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			h.log.Warn(r.Context(), "login failed", "username", username, "remote", r.RemoteAddr)
			unauthorized(w, msgBadLogin)
			return
		}
		h.fail(w, r, err, msgUserNotFound)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: tok.AccessToken, TokenType: tok.TokenType})
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *handlers) createUser(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := decodeJSON(w, r, &in); err != nil {
		h.fail(w, r, err, msgUserNotFound)
		return
	}
	u, err := h.users.Register(r.Context(), in.Username, in.Password)
	if err != nil {
		h.fail(w, r, err, msgUserNotFound)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *handlers) me(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.Me(r.Context(), mustIdentity(r))
	if err != nil {
		h.fail(w, r, err, msgUserNotFound)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *handlers) listUsers(w http.ResponseWriter, r *http.Request) {
	us, err := h.users.List(r.Context(), mustIdentity(r))
	if err != nil {
		h.fail(w, r, err, msgUserNotFound)
		return
	}
	if us == nil {
		us = []models.User{}
	}
	writeJSON(w, http.StatusOK, us)
}

func (h *handlers) countUsers(w http.ResponseWriter, r *http.Request) {
	n, err := h.users.Count(r.Context(), mustIdentity(r))
	if err != nil {
		h.fail(w, r, err, msgUserNotFound)
		return
	}
	writeJSON(w, http.StatusOK, models.UserCount{Total: n})
}

func (h *handlers) deleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.users.Delete(r.Context(), mustIdentity(r), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err, msgUserNotFound)
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "User deleted successfully"})
}

func (h *handlers) createNote(w http.ResponseWriter, r *http.Request) {
	var in models.NoteInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.fail(w, r, err, msgNoteNotFound)
		return
	}
	n, err := h.notes.Create(r.Context(), mustIdentity(r), in)
	if err != nil {
		h.fail(w, r, err, msgNoteNotFound)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func titles(ns []models.Note) []models.NoteTitle {
	out := make([]models.NoteTitle, 0, len(ns))
	for _, n := range ns {
		out = append(out, n.TitleView())
	}
	return out
}

func (h *handlers) listNotes(w http.ResponseWriter, r *http.Request) {
	ns, err := h.notes.List(r.Context(), mustIdentity(r))
	if err != nil {
		h.fail(w, r, err, msgNoteNotFound)
		return
	}
	writeJSON(w, http.StatusOK, titles(ns))
}

func (h *handlers) listAllNotes(w http.ResponseWriter, r *http.Request) {
	ns, err := h.notes.ListAll(r.Context(), mustIdentity(r))
	if err != nil {
		h.fail(w, r, err, msgNoteNotFound)
		return
	}
	writeJSON(w, http.StatusOK, titles(ns))
}

func (h *handlers) countNotes(w http.ResponseWriter, r *http.Request) {
	n, err := h.notes.Count(r.Context(), mustIdentity(r))
	if err != nil {
		h.fail(w, r, err, msgNoteNotFound)
		return
	}
	writeJSON(w, http.StatusOK, models.NoteCount{Total: n})
}

func (h *handlers) getNote(w http.ResponseWriter, r *http.Request) {
	n, err := h.notes.Get(r.Context(), mustIdentity(r), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err, msgNoteNotFound)
		return
	}
	writeJSON(w, http.StatusOK, n.BodyView())
}

func (h *handlers) updateNote(w http.ResponseWriter, r *http.Request) {
	var patch models.NotePatch
	if err := decodeJSON(w, r, &patch); err != nil {
		h.fail(w, r, err, msgNoteNotFound)
		return
	}
	n, err := h.notes.Update(r.Context(), mustIdentity(r), chi.URLParam(r, "id"), patch)
	if err != nil {
		h.fail(w, r, err, msgNoteNotFound)
		return
	}
	writeJSON(w, http.StatusOK, n.BodyView())
}

func (h *handlers) deleteNote(w http.ResponseWriter, r *http.Request) {
	if err := h.notes.Delete(r.Context(), mustIdentity(r), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err, msgNoteNotFound)
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Note deleted successfully"})
}
