package memory

import (
	"context"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/server/models"
)

type NotesRepository struct {
	v *View
}

func (r *NotesRepository) Create(_ context.Context, note *models.Note) (*models.Note, error) {
	defer r.v.lock()()
	st := &r.v.s.st

	if _, taken := st.notes[note.ID]; taken {
		return nil, common.ErrAlreadyExists
	}
	st.seq++
	st.notes[note.ID] = noteRow{note: cloneNote(*note), seq: st.seq}

	out := cloneNote(*note)
	return &out, nil
}

func (r *NotesRepository) Get(_ context.Context, id, owner string) (*models.Note, error) {
	defer r.v.lock()()

	row, ok := r.v.s.st.notes[id]
	if !ok || (owner != "" && row.note.Username != owner) {
		return nil, common.ErrNotFound
	}
	n := cloneNote(row.note)
	return &n, nil
}

func (r *NotesRepository) collect(match func(models.Note) bool) []models.Note {
	defer r.v.lock()()

	rows := make([]noteRow, 0)
	for _, row := range r.v.s.st.notes {
		if match(row.note) {
			rows = append(rows, row)
		}
	}
	return sortedNotes(rows)
}

func (r *NotesRepository) ListByOwner(_ context.Context, owner string) ([]models.Note, error) {
	return r.collect(func(n models.Note) bool { return n.Username == owner }), nil
}

func (r *NotesRepository) ListAll(_ context.Context) ([]models.Note, error) {
	return r.collect(func(models.Note) bool { return true }), nil
}

func (r *NotesRepository) Update(_ context.Context, id, owner string, patch models.NotePatch) (int64, error) {
	defer r.v.lock()()
	st := &r.v.s.st

	row, ok := st.notes[id]
	if !ok || row.note.Username != owner {
		return 0, nil
	}
	patch.Apply(&row.note)
	st.notes[id] = row
	return 1, nil
}

func (r *NotesRepository) Delete(_ context.Context, id, owner string) (int64, error) {
	defer r.v.lock()()
	st := &r.v.s.st

	row, ok := st.notes[id]
	if !ok || row.note.Username != owner {
		return 0, nil
	}
	delete(st.notes, id)
	return 1, nil
}

func (r *NotesRepository) DeleteByOwner(_ context.Context, owner string) (int64, error) {
	defer r.v.lock()()
	st := &r.v.s.st

	var n int64
	for id, row := range st.notes {
		if row.note.Username == owner {
			delete(st.notes, id)
			n++
		}
	}
	return n, nil
}

func (r *NotesRepository) Count(_ context.Context) (int64, error) {
	defer r.v.lock()()
	return int64(len(r.v.s.st.notes)), nil
}
