package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/melody/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes the built-in configuration template to --config.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if !cmd.IsSet("config") && r.configPath != "" {
		path = r.configPath
	}
	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}
	r.logger.Info("config file created", "path", path)

	r.writePlain("✓ Configuration written to %s\n", path)
	r.writePlainln("Next steps:")
	r.writePlain("1. Set api.base_url in %s (or MELODY_API_BASE_URL in .env)\n", path)
	return r.writePlain("2. Run 'melody login' to sign in\n")
}

// SetupDatabase initializes the database and runs migrations, or reverts the latest one with --rollback.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	path := r.config.Database.Path
	r.logger.Info("initializing database", "path", path)

	if cmd.Bool("rollback") {
		db, err := shared.NewDatabase(path)
		if err != nil {
			return fmt.Errorf("failed to create database: %w", err)
		}
		defer db.Close()

		if err := shared.RollbackMigration(db); err != nil {
			return fmt.Errorf("failed to rollback migration: %w", err)
		}
		return r.writePlain("✓ Rolled back the latest migration in %s\n", path)
	}

	r.logger.Info("running database migrations")
	if _, err := r.openDatabase(ctx); err != nil {
		return err
	}
	r.logger.Infof("setup complete for database: %v", path)
	return r.writePlain("✓ Database ready at %s\n", path)
}
