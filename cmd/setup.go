package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/desertthunder/mvx/internal/shared"
	"github.com/urfave/cli/v3"
)

// loadConfig reads the config at path, falling back to defaults when it is missing or invalid.
func (r *Runner) loadConfig(path string) *shared.Config {
	config, err := shared.LoadConfig(path)
	if errors.Is(err, shared.ErrMissingConfig) {
		return r.config
	}
	if err != nil {
		r.logger.Warn("failed to load config, using defaults", "error", err)
		return r.config
	}
	if err := config.ApplyEnv(); err != nil {
		r.logger.Warn("ignoring invalid environment", "error", err)
	}
	return config
}

func (r *Runner) openSetupDatabase(cmd *cli.Command) (*sql.DB, *shared.Config, error) {
	config := r.loadConfig(cmd.String("config"))
	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create database: %w", err)
	}
	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)
	return db, config, nil
}

// SetupConfig writes a config file populated with the defaults.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}
	r.logger.Info("config file created", "path", path)
	return r.writePlain("✓ Config written to %s\n", path)
}

// SetupDatabase initializes the database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
		}
	}

	db, config, err := r.openSetupDatabase(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	r.logger.Info("running database migrations", "path", config.Database.Path)
	if err := shared.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	return r.writePlain("✓ Database ready at %s\n", config.Database.Path)
}

// SetupStatus lists every migration and whether it has been applied.
func (r *Runner) SetupStatus(ctx context.Context, cmd *cli.Command) error {
	db, config, err := r.openSetupDatabase(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	statuses, err := shared.MigrationStatuses(ctx, db)
	if err != nil {
		return err
	}

	r.writePlainHeader("Migrations: " + config.Database.Path)
	for _, s := range statuses {
		if s.Applied {
			r.writePlain("✓ %04d %s (%s)\n", s.Version, s.Name, s.AppliedAt.Format("2006-01-02 15:04"))
		} else {
			r.writePlain("✗ %04d %s (pending)\n", s.Version, s.Name)
		}
	}
	return nil
}

// SetupRollback reverts the most recent migration.
func (r *Runner) SetupRollback(ctx context.Context, cmd *cli.Command) error {
	db, config, err := r.openSetupDatabase(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	r.logger.Warn("rolling back latest migration", "path", config.Database.Path)
	if err := shared.RollbackMigration(ctx, db); err != nil {
		return err
	}
	return r.writePlain("✓ Rolled back latest migration\n")
}
