package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/desertthunder/moodtune/internal/shared"
	"github.com/urfave/cli/v3"
)

// loadOrCreateConfig reads the config at path, writing the example config first when none exists.
func (r *Runner) loadOrCreateConfig(path string) *shared.Config {
	if _, err := os.Stat(path); err != nil {
		r.logger.Info("config file not found, creating from template", "path", path)
		if err := shared.CreateConfigFile(path); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
			return shared.DefaultConfig()
		}
		r.logger.Info("config file created", "path", path)
	}

	config, err := shared.LoadConfig(path)
	if err != nil {
		r.logger.Warn("failed to load config, using defaults", "error", err)
		return shared.DefaultConfig()
	}
	return config
}

func (r *Runner) openRaw(cmd *cli.Command) (*sql.DB, *shared.Config, error) {
	config := r.loadOrCreateConfig(cmd.String("config"))
	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create database: %w", err)
	}
	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)
	return db, config, nil
}

// SetupDatabase initializes the database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	db, config, err := r.openRaw(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	r.logger.Info("running database migrations", "path", config.Database.Path)
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	return r.writePlain("✓ Database ready at %s\n", config.Database.Path)
}

// SetupStatus prints the applied migrations.
func (r *Runner) SetupStatus(ctx context.Context, cmd *cli.Command) error {
	db, config, err := r.openRaw(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	applied, err := shared.MigrationStatus(db)
	if err != nil {
		return err
	}

	r.writePlain("Database: %s\n", config.Database.Path)
	if len(applied) == 0 {
		return r.writePlain("No migrations applied. Run 'moodtune setup database'.\n")
	}
	for _, m := range applied {
		r.writePlain("  %04d  applied %s\n", m.Version, m.AppliedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

// SetupRollback reverts the most recent migration.
func (r *Runner) SetupRollback(ctx context.Context, cmd *cli.Command) error {
	db, _, err := r.openRaw(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := shared.RollbackMigration(db); err != nil {
		return err
	}
	return r.writePlain("✓ Rolled back the latest migration\n")
}
