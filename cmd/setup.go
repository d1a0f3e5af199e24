package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/reminisce/internal/remote/postgres"
	"github.com/desertthunder/reminisce/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup writes config.toml when missing, migrates the local cache database and, for the
// postgres backend, the remote schema.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := r.configPath
	if configPath == "" {
		configPath = "config.toml"
	}

	if _, err := os.Stat(configPath); err != nil {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
		} else {
			r.logger.Info("config file created", "path", configPath)
			if config, err := shared.ResolveConfig(configPath); err == nil {
				r.config = config
			} else {
				r.logger.Warn("failed to load created config, using defaults", "error", err)
			}
		}
	}
	if r.config == nil {
		r.config = shared.DefaultConfig()
	}

	r.logger.Info("initializing local cache", "path", r.config.Cache.Path)
	db, err := shared.OpenLocalDatabase(r.config.Cache)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	remoteCfg := r.config.Remote
	if remoteCfg.Enabled && remoteCfg.Backend == shared.BackendPostgres {
		r.logger.Info("migrating remote store")
		pg, err := postgres.Open(ctx, remoteCfg.DSN)
		if err != nil {
			return fmt.Errorf("failed to connect to remote store: %w", err)
		}
		defer pg.Close()
		if err := postgres.Migrate(ctx, pg); err != nil {
			return fmt.Errorf("failed to migrate remote store: %w", err)
		}
	}

	r.logger.Infof("setup complete for database: %v", r.config.Cache.Path)
	r.writePlain("✓ Local cache ready at %s\n", r.config.Cache.Path)
	if remoteCfg.Enabled {
		r.writePlain("Remote backend: %s\n", remoteCfg.Backend)
	} else {
		r.writePlain("Remote sync disabled; running offline\n")
	}
	return nil
}
