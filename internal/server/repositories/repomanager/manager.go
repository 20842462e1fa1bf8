// Package repomanager hands out user and note repositories bound to one
// storage backend and runs multi-repository work in a single transaction.
package repomanager

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophnotes/internal/server/repositories/notes"
	"github.com/dmitrijs2005/gophnotes/internal/server/repositories/users"
)

// RepositoryManager vends repositories. Inside WithTx, the manager passed to
// fn returns repositories bound to the transaction; a nested WithTx joins the
// outer transaction.
type RepositoryManager interface {
	Users() users.Repository
	Notes() notes.Repository
	WithTx(ctx context.Context, fn func(ctx context.Context, m RepositoryManager) error) error
	RunMigrations(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

// MemoryDSN selects the in-process backend.
const MemoryDSN = "memory"

// Open picks a backend from dsn: MemoryDSN for the in-process store,
// anything else is handed to the pgx driver.
func Open(ctx context.Context, dsn string) (RepositoryManager, error) {
	if strings.EqualFold(strings.TrimSpace(dsn), MemoryDSN) {
		return NewMemoryRepositoryManager(), nil
	}
	m, err := OpenPostgres(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return m, nil
}
