package main

import (
	"github.com/spf13/cobra"

	"example.com/subscription-reaper/backend/internal/config"
	"example.com/subscription-reaper/backend/internal/database"
)

var flagSteps int

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if err := database.MigrateUp(cfg.Database.MigrationURL()); err != nil {
			return err
		}
		return printStatus(cfg)
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back migrations",
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if err := database.MigrateDown(cfg.Database.MigrationURL(), flagSteps); err != nil {
			return err
		}
		return printStatus(cfg)
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current schema version",
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		return printStatus(cfg)
	},
}

func init() {
	migrateDownCmd.Flags().IntVar(&flagSteps, "steps", 1, "Number of migrations to roll back")

	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateStatusCmd)
	rootCmd.AddCommand(migrateCmd)
}

func printStatus(cfg config.Config) error {
	status, err := database.Status(cfg.Database.MigrationURL())
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(status)
	}
	if !status.Applied {
		printf("no migrations applied\n")
		return nil
	}
	printf("version %d (dirty=%v)\n", status.Version, status.Dirty)
	return nil
}
