package repomanager

import (
	"context"

	"github.com/dmitrijs2005/gophnotes/internal/server/repositories/memory"
	"github.com/dmitrijs2005/gophnotes/internal/server/repositories/notes"
	"github.com/dmitrijs2005/gophnotes/internal/server/repositories/users"
)

// MemoryRepositoryManager serves repositories from an in-process store.
// Data lives as long as the process.
type MemoryRepositoryManager struct {
	store *memory.Store
	view  *memory.View
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	s := memory.NewStore()
	return &MemoryRepositoryManager{store: s, view: s.View()}
}

func (m *MemoryRepositoryManager) Users() users.Repository { return m.view.Users() }
func (m *MemoryRepositoryManager) Notes() notes.Repository { return m.view.Notes() }

func (m *MemoryRepositoryManager) WithTx(ctx context.Context, fn func(ctx context.Context, m RepositoryManager) error) error {
	if m.view.InTx() {
		return fn(ctx, m)
	}
	return m.store.Tx(func(v *memory.View) error {
		return fn(ctx, &MemoryRepositoryManager{store: m.store, view: v})
	})
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context) error { return nil }
func (m *MemoryRepositoryManager) Ping(context.Context) error          { return nil }
func (m *MemoryRepositoryManager) Close() error                        { return nil }
