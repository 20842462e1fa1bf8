package memory

import (
	"context"
	"sort"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/server/models"
)

type UsersRepository struct {
	v *View
}

func (r *UsersRepository) Create(_ context.Context, user *models.User) (*models.User, error) {
	defer r.v.lock()()
	st := &r.v.s.st

	if _, taken := st.byName[user.Username]; taken {
		return nil, common.ErrAlreadyExists
	}
	if _, taken := st.users[user.ID]; taken {
		return nil, common.ErrAlreadyExists
	}

	if user.CreatedAt.IsZero() {
		user.CreatedAt = r.v.s.now().UTC()
	}
	st.seq++
	st.users[user.ID] = userRow{user: *user, seq: st.seq}
	st.byName[user.Username] = user.ID

	out := *user
	return &out, nil
}

func (r *UsersRepository) GetByUsername(_ context.Context, username string) (*models.User, error) {
	defer r.v.lock()()
	st := &r.v.s.st

	id, ok := st.byName[username]
	if !ok {
		return nil, common.ErrNotFound
	}
	u := st.users[id].user
	return &u, nil
}

func (r *UsersRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	defer r.v.lock()()

	row, ok := r.v.s.st.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	u := row.user
	return &u, nil
}

func (r *UsersRepository) List(_ context.Context) ([]models.User, error) {
	defer r.v.lock()()

	rows := make([]userRow, 0, len(r.v.s.st.users))
	for _, row := range r.v.s.st.users {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })

	out := make([]models.User, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.user)
	}
	return out, nil
}

func (r *UsersRepository) Count(_ context.Context) (int64, error) {
	defer r.v.lock()()
	return int64(len(r.v.s.st.users)), nil
}

func (r *UsersRepository) Delete(_ context.Context, id string) (int64, error) {
	defer r.v.lock()()
	st := &r.v.s.st

	row, ok := st.users[id]
	if !ok {
		return 0, nil
	}
	delete(st.users, id)
	delete(st.byName, row.user.Username)
	return 1, nil
}

func (r *UsersRepository) SetAdmin(_ context.Context, username string, isAdmin bool) (int64, error) {
	defer r.v.lock()()
	st := &r.v.s.st

	id, ok := st.byName[username]
	if !ok {
		return 0, nil
	}
	row := st.users[id]
	row.user.IsAdmin = isAdmin
	st.users[id] = row
	return 1, nil
}
