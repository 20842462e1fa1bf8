// Package memory is an in-process implementation of the user and note
// repositories. It backs the "memory" DSN and the service tests.
package memory

import (
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/server/models"
)

type userRow struct {
	user models.User
	seq  int64
}

type noteRow struct {
	note models.Note
	seq  int64
}

type state struct {
	seq    int64
	users  map[string]userRow // by id
	byName map[string]string  // username -> id
	notes  map[string]noteRow // by id
}

func (s *state) clone() state {
	return state{
		seq:    s.seq,
		users:  maps.Clone(s.users),
		byName: maps.Clone(s.byName),
		notes:  maps.Clone(s.notes),
	}
}

// Store holds all rows behind one mutex.
type Store struct {
	mu  sync.Mutex
	st  state
	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		st: state{
			users:  make(map[string]userRow),
			byName: make(map[string]string),
			notes:  make(map[string]noteRow),
		},
		now: time.Now,
	}
}

// View is a handle on the store. A plain view locks for each call; a view
// handed out by Tx runs under the transaction's lock.
type View struct {
	s    *Store
	held bool
}

// View returns a handle that locks per call.
func (s *Store) View() *View { return &View{s: s} }

// Tx runs fn with exclusive access. If fn returns an error or panics, every
// change it made is discarded.
func (s *Store) Tx(fn func(v *View) error) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	defer func() {
		if p := recover(); p != nil {
			s.st = snapshot
			panic(p)
		}
		if err != nil {
			s.st = snapshot
		}
	}()

	return fn(&View{s: s, held: true})
}

// InTx reports whether v runs inside Tx.
func (v *View) InTx() bool { return v.held }

func (v *View) lock() func() {
	if v.held {
		return func() {}
	}
	v.s.mu.Lock()
	return v.s.mu.Unlock
}

func (v *View) Users() *UsersRepository { return &UsersRepository{v: v} }
func (v *View) Notes() *NotesRepository { return &NotesRepository{v: v} }

func cloneStr(p *string) *string {
	if p == nil {
		return nil
	}
	s := *p
	return &s
}

func cloneNote(n models.Note) models.Note {
	n.Title = cloneStr(n.Title)
	n.Content = cloneStr(n.Content)
	return n
}

func sortedNotes(rows []noteRow) []models.Note {
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })
	out := make([]models.Note, 0, len(rows))
	for _, r := range rows {
		out = append(out, cloneNote(r.note))
	}
	return out
}
