package notes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/dbx"
	"github.com/dmitrijs2005/gophnotes/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const noteColumns = `id, title, content, username`

func scanNote(row interface{ Scan(...any) error }) (*models.Note, error) {
	n := &models.Note{}
	var title, content sql.NullString
	if err := row.Scan(&n.ID, &title, &content, &n.Username); err != nil {
		return nil, err
	}
	if title.Valid {
		n.Title = &title.String
	}
	if content.Valid {
		n.Content = &content.String
	}
	return n, nil
}

func (r *PostgresRepository) Create(ctx context.Context, note *models.Note) (*models.Note, error) {
	query :=
		`INSERT INTO notes (id, title, content, username)
		 VALUES ($1, $2, $3, $4)`

	if _, err := r.db.ExecContext(ctx, query, note.ID, note.Title, note.Content, note.Username); err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return note, nil
}

// Get loads a note by id. An empty owner skips the ownership filter.
func (r *PostgresRepository) Get(ctx context.Context, id, owner string) (*models.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes WHERE id = $1 AND ($2 = '' OR username = $2)`

	n, err := scanNote(r.db.QueryRowContext(ctx, query, id, owner))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]models.Note, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := make([]models.Note, 0)
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, owner string) ([]models.Note, error) {
	return r.list(ctx, `SELECT `+noteColumns+` FROM notes WHERE username = $1 ORDER BY created_at, id`, owner)
}

func (r *PostgresRepository) ListAll(ctx context.Context) ([]models.Note, error) {
	return r.list(ctx, `SELECT `+noteColumns+` FROM notes ORDER BY created_at, id`)
}

// Update writes only the fields patch supplies a value for. Each column is assigned either
// the new value or itself, chosen by a boolean parameter, so one statement
// serves every combination.
func (r *PostgresRepository) Update(ctx context.Context, id, owner string, patch models.NotePatch) (int64, error) {
	query :=
		`UPDATE notes SET
		   title   = CASE WHEN $3 THEN $4 ELSE title END,
		   content = CASE WHEN $5 THEN $6 ELSE content END
		 WHERE id = $1 AND username = $2`

	return r.exec(ctx, query, id, owner,
		patch.Title.Present(), patch.Title.Ptr(),
		patch.Content.Present(), patch.Content.Ptr())
}

func (r *PostgresRepository) Delete(ctx context.Context, id, owner string) (int64, error) {
	return r.exec(ctx, `DELETE FROM notes WHERE id = $1 AND username = $2`, id, owner)
}

func (r *PostgresRepository) DeleteByOwner(ctx context.Context, owner string) (int64, error) {
	return r.exec(ctx, `DELETE FROM notes WHERE username = $1`, owner)
}

func (r *PostgresRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
