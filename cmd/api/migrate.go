package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/niallroche/data-engineering-mlops/internal/infrastructure/config"
	"github.com/niallroche/data-engineering-mlops/internal/infrastructure/database"
	"github.com/niallroche/data-engineering-mlops/internal/infrastructure/logger"
)

func newMigrateCmd(configPath *string) *cobra.Command {
	var driver string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the api_logs table",
		Long: `Create or update the api_logs table of a SQL audit store.

The server migrates at startup too, but skips it when the database is
down; run this once the database is reachable.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadFile(*configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			log, err := logger.NewLogger(&cfg.Log)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer func() { _ = log.Sync() }()

			if driver == "" {
				driver = cfg.Audit.Driver
			}

			var db *gorm.DB
			switch driver {
			case config.DriverPostgres:
				db, err = database.NewPostgresDB(&cfg.Database, log)
			case config.DriverSQLite:
				db, err = database.NewSQLiteDB(&cfg.SQLite, log)
			default:
				fmt.Fprintf(cmd.OutOrStdout(), "audit driver %q has no schema to migrate\n", driver)
				return nil
			}
			if err != nil {
				return err
			}
			defer func() { _ = database.Close(db) }()

			if err := database.AutoMigrate(db); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: api_logs is up to date\n", driver)
			return nil
		},
	}

	cmd.Flags().StringVar(&driver, "driver", "", "postgres or sqlite (defaults to audit.driver)")

	return cmd
}
