// Package api exposes the notes service over HTTP/JSON.
package api

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Deps are the collaborators of the router. Limiter may be nil.
type Deps struct {
	Users   UserOperations
	Notes   NoteOperations
	Health  Pinger
	Limiter Admitter
	Logger  logging.Logger
}

// Route keys for rate limiting.
const (
	RouteToken      = "token"
	RouteUserCreate = "user-create"
	RouteUserMe     = "user-me"
	RouteUserAdmin  = "user-admin"
	RouteNoteCreate = "note-create"
	RouteNoteList   = "note-list"
	RouteNoteRead   = "note-read"
	RouteNoteUpdate = "note-update"
	RouteNoteDelete = "note-delete"
	RouteNoteAdmin  = "note-admin"
)

func NewRouter(d Deps) http.Handler {
	log := d.Logger
	if log == nil {
		log = logging.Nop{}
	}
	h := &handlers{users: d.Users, notes: d.Notes, health: d.Health, log: log.With("module", "http")}

	lim := func(route string) func(http.Handler) http.Handler {
		return limit(d.Limiter, route, h.log)
	}
	authn := authenticate(d.Users, h.log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors)

	r.Get("/", h.root)
	r.Get("/health", h.healthz)
	r.With(lim(RouteToken)).Post("/token", h.token)

	r.Route("/user", func(r chi.Router) {
		r.With(lim(RouteUserCreate)).Post("/create-user", h.createUser)
		r.With(lim(RouteUserMe), authn).Get("/", h.me)

		r.Route("/admin", func(r chi.Router) {
			r.Use(lim(RouteUserAdmin), authn)
			r.Get("/list-all", h.listUsers)
			r.Get("/count-users", h.countUsers)
			r.Delete("/delete/{id}", h.deleteUser)
		})
	})

	r.Route("/notes", func(r chi.Router) {
		r.Route("/admin", func(r chi.Router) {
			r.Use(lim(RouteNoteAdmin), authn)
			r.Get("/count-notes", h.countNotes)
			r.Get("/all-notes", h.listAllNotes)
		})

		r.With(lim(RouteNoteCreate), authn).Post("/", h.createNote)
		r.With(lim(RouteNoteList), authn).Get("/", h.listNotes)
		r.With(lim(RouteNoteRead), authn).Get("/{id}", h.getNote)
		r.With(lim(RouteNoteUpdate), authn).Put("/{id}", h.updateNote)
		r.With(lim(RouteNoteDelete), authn).Delete("/{id}", h.deleteNote)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})
	return r
}
