// Package admincli implements the operator commands that manage
// administrator accounts. No HTTP endpoint can grant the admin role, so
// bootstrapping an administrator goes through this CLI against the same
// storage the server uses.
package admincli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/flagx"
	"github.com/dmitrijs2005/gophnotes/internal/server/models"
)

// ErrUsage reports a malformed command line.
var ErrUsage = errors.New("usage: admin <create|promote> [-u username]")

// Admin is the part of the user service the CLI drives.
type Admin interface {
	CreateAdmin(ctx context.Context, username, password string) (*models.User, error)
	Promote(ctx context.Context, username string) error
}

type App struct {
	users  Admin
	reader *bufio.Reader
	fd     int
	out    io.Writer
}

// NewApp builds a CLI reading answers from in (fd is its descriptor, used
// for no-echo password input) and writing prompts and results to out.
func NewApp(users Admin, in io.Reader, fd int, out io.Writer) *App {
	return &App{users: users, reader: bufio.NewReader(in), fd: fd, out: out}
}

// Run executes the command in args (without the program name).
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return ErrUsage
	}
	cmd, rest := args[0], args[1:]

	var username string
	fs := flagx.NewFlagSet(cmd)
	fs.StringVar(&username, "u", "", "username")
	if err := fs.Parse(flagx.FilterArgs(rest, "u")); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	switch cmd {
	case "create":
		return a.create(ctx, username)
	case "promote":
		return a.promote(ctx, username)
	case "help":
		fmt.Fprintln(a.out, ErrUsage.Error())
		return nil
	}
	return fmt.Errorf("%w: unknown command %q", ErrUsage, cmd)
}

func (a *App) askUsername(username string) (string, error) {
	username = strings.TrimSpace(username)
	if username != "" {
		return username, nil
	}
	username, err := GetSimpleText(a.reader, "Username", a.out)
	if err != nil {
		return "", err
	}
	if username == "" {
		return "", errors.New("username must not be empty")
	}
	return username, nil
}

func (a *App) create(ctx context.Context, username string) error {
	username, err := a.askUsername(username)
	if err != nil {
		return err
	}
	password, err := GetNewPassword(a.reader, a.fd, a.out)
	if err != nil {
		return err
	}

	u, err := a.users.CreateAdmin(ctx, username, password)
	if err != nil {
		if errors.Is(err, common.ErrDuplicateUsername) {
			return fmt.Errorf("user %q already exists; use promote to grant admin rights", username)
		}
		return fmt.Errorf("create admin: %w", err)
	}
	fmt.Fprintf(a.out, "Admin %s created (id %s)\n", u.Username, u.ID)
	return nil
}

func (a *App) promote(ctx context.Context, username string) error {
	username, err := a.askUsername(username)
	if err != nil {
		return err
	}
	if err := a.users.Promote(ctx, username); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("user %q not found", username)
		}
		return fmt.Errorf("promote: %w", err)
	}
	fmt.Fprintf(a.out, "User %s is now an admin\n", username)
	return nil
}
