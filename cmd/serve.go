package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/reminisce/internal/remote/postgres"
	"github.com/desertthunder/reminisce/internal/server"
	"github.com/desertthunder/reminisce/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve runs the document API over the PostgreSQL store until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if r.config == nil {
		r.config = shared.DefaultConfig()
	}
	cfg := r.config
	if cfg.Remote.Backend != shared.BackendPostgres || cfg.Remote.DSN == "" {
		return errors.Join(shared.ErrInvalidConfig, errors.New("serve needs remote.backend = \"postgres\" and remote.dsn"))
	}

	serverCfg := cfg.Server
	if cmd.IsSet("host") {
		serverCfg.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		serverCfg.Port = cmd.Int("port")
	}

	db, err := postgres.Open(ctx, cfg.Remote.DSN)
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		return fmt.Errorf("failed to migrate postgres: %w", err)
	}

	srv, err := server.New(server.Options{
		Store:    postgres.NewStore(db),
		Secret:   []byte(cfg.Auth.JWTSecret),
		TokenTTL: cfg.Auth.TokenTTL,
		Logger:   r.logger,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := serverCfg.Addr()
	r.logger.Info("serving document API", "addr", addr)
	return srv.ListenAndServe(ctx, addr)
}
