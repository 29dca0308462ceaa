package cmd

import (
	"fmt"
	"log"

	"gold-analyst/config"
	"gold-analyst/pkg/database"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"
)

// migrationTarget returns the migration source and database URL for the
// configured storage driver. File and memory storage have no schema.
func migrationTarget(cfg *config.Config) (string, string, error) {
	switch cfg.Storage.Driver {
	case database.DriverPostgres:
		return "file://migrations/postgres", database.PostgresDSN(cfg.DB), nil
	case database.DriverSQLite:
		return "file://migrations/sqlite", "sqlite3://" + cfg.DB.SQLitePath, nil
	default:
		return "", "", fmt.Errorf("storage driver %q has no database schema", cfg.Storage.Driver)
	}
}

func runMigrations(direction string) {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	migrationsPath, dsn, err := migrationTarget(cfg)
	if err != nil {
		log.Fatalf("Nothing to migrate: %v", err)
	}

	m, err := migrate.New(migrationsPath, dsn)
	if err != nil {
		log.Fatalf("Failed to create migration instance: %v", err)
	}

	var migrationErr error
	switch direction {
	case "up":
		migrationErr = m.Up()
	case "down":
		migrationErr = m.Steps(-1)
	}

	if migrationErr != nil && migrationErr != migrate.ErrNoChange {
		log.Fatalf("Migration failed: %v", migrationErr)
	}
	if migrationErr == migrate.ErrNoChange {
		fmt.Println("No migration to apply.")
	} else if direction == "up" {
		fmt.Println("Applied migrations successfully.")
	} else {
		fmt.Println("Reverted last migration successfully.")
	}

	srcErr, dbErr := m.Close()
	if srcErr != nil {
		log.Printf("Migration source error on close: %v\n", srcErr)
	}
	if dbErr != nil {
		log.Printf("Migration database error on close: %v\n", dbErr)
	}
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all available database migrations",
	Run: func(cmd *cobra.Command, args []string) {
		runMigrations("up")
	},
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Revert the last database migration",
	Run: func(cmd *cobra.Command, args []string) {
		runMigrations("down")
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the history table for sqlite and postgres storage",
}

func init() {
	migrateCmd.AddCommand(upCmd)
	migrateCmd.AddCommand(downCmd)
}
