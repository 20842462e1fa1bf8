// Command admin manages administrator accounts directly in storage.
//
//	admin create  -u <username> [-d <dsn>]
//	admin promote -u <username> [-d <dsn>]
//
// Storage settings come from the same environment, JSON file and flags as
// the server.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/admincli"
	"github.com/dmitrijs2005/gophnotes/internal/logging"
	"github.com/dmitrijs2005/gophnotes/internal/server/auth"
	"github.com/dmitrijs2005/gophnotes/internal/server/config"
	"github.com/dmitrijs2005/gophnotes/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophnotes/internal/server/services"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger, err := logging.NewJSON(os.Stderr, cfg.LogLevel)
	if err != nil {
		return err
	}

	repos, err := repomanager.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer repos.Close()
	if err := repos.RunMigrations(ctx); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	codec, err := auth.NewTokenCodec([]byte(cfg.SecretKey))
	if err != nil {
		return err
	}
	authn, err := auth.NewAuthenticator(repos.Users(), auth.NewArgon2Hasher(auth.DefaultArgon2Params), codec, cfg.AccessTokenValidityDuration)
	if err != nil {
		return err
	}

	users := services.NewUserService(repos, authn, logger)
	app := admincli.NewApp(users, os.Stdin, int(os.Stdin.Fd()), os.Stdout)
	return app.Run(ctx, os.Args[1:])
}
