// Package access holds the ownership and role rules for every resource
// operation. Handlers and services never test ownership or admin flags
// themselves; they call Authorize.
package access

import (
	"fmt"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/server/models"
)

// Operation names an action on a resource.
type Operation int

const (
	NoteRead Operation = iota + 1
	NoteUpdate
	NoteDelete

	UserList
	UserCount
	UserDelete
	NoteCount
	NoteListAll
)

var opNames = map[Operation]string{
	NoteRead:    "note.read",
	NoteUpdate:  "note.update",
	NoteDelete:  "note.delete",
	UserList:    "user.list",
	UserCount:   "user.count",
	UserDelete:  "user.delete",
	NoteCount:   "note.count",
	NoteListAll: "note.list_all",
}

func (o Operation) String() string {
	if s, ok := opNames[o]; ok {
		return s
	}
	return fmt.Sprintf("operation(%d)", int(o))
}

// AdminOnly reports whether o requires the admin role.
func (o Operation) AdminOnly() bool {
	switch o {
	case UserList, UserCount, UserDelete, NoteCount, NoteListAll:
		return true
	}
	return false
}

// Target is the resource an operation acts on. Note is set for note
// operations, User for user-record operations; aggregate operations leave
// both nil.
type Target struct {
	Note *models.Note
	User *models.User
}

func OnNote(n *models.Note) Target { return Target{Note: n} }
func OnUser(u *models.User) Target { return Target{User: u} }

// Authorize decides whether identity may perform op on target.
//
//   - Note operations succeed only for the note's owner. Anyone else gets
//     common.ErrNotFound, so other users' notes are indistinguishable from
//     missing ones.
//   - Admin-only operations need identity.IsAdmin, otherwise
//     common.ErrForbidden.
//   - An admin deleting their own user record gets common.ErrSelfDelete.
//
// A nil identity is never authorized.
func Authorize(identity *models.User, op Operation, target Target) error {
	if identity == nil {
		return common.ErrInvalidCredentials
	}

	switch op {
	case NoteRead, NoteUpdate, NoteDelete:
		if target.Note == nil || target.Note.Username != identity.Username {
			return common.ErrNotFound
		}
		return nil
	}

	if !op.AdminOnly() {
		return fmt.Errorf("%w: unknown operation %s", common.ErrForbidden, op)
	}
	if !identity.IsAdmin {
		return common.ErrForbidden
	}

	if op == UserDelete {
		if target.User == nil {
			return common.ErrNotFound
		}
		if target.User.ID == identity.ID || target.User.Username == identity.Username {
			return common.ErrSelfDelete
		}
	}
	return nil
}
