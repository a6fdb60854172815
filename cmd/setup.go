package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/crosspost/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupDatabase initializes the database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	config := r.config

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	r.logger.Info("running database migrations")
	applied, err := shared.RunMigrations(db)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	if err := shared.CheckSchema(db); err != nil {
		return err
	}
	version, err := shared.SchemaVersion(db)
	if err != nil {
		return err
	}

	for _, m := range applied {
		r.logger.Debug("applied migration", "version", m.Version, "name", m.Name)
		r.writePlain("  applied %s\n", m)
	}
	if len(applied) == 0 {
		r.writePlain("Schema already up to date\n")
	}
	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	return r.writePlain("✓ Database ready at %s (schema %04d)\n", config.Database.Path, version)
}

// SetupConfig writes the example configuration file.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("output")

	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}
	r.logger.Info("config file created", "path", path)

	r.writePlain("✓ Config written to %s\n", path)
	r.writePlainln("Next steps:")
	r.writePlain("1. Set api.base_url (and api.token if the backend requires one)\n")
	r.writePlain("2. Run 'crosspost setup database'\n")
	r.writePlain("3. Run 'crosspost platforms' to check the connection\n")
	return nil
}
