package cli

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/SAP-F-2025/quiz-service/internal/config"
	"github.com/SAP-F-2025/quiz-service/internal/repositories/postgres/migrations"
	"github.com/SAP-F-2025/quiz-service/internal/utils"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

// NewMigrateCmd manages the database schema. Without a subcommand it applies pending migrations.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd.Context(), migrateUp)
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrator(cmd.Context(), migrateUp)
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the last migration group",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrator(cmd.Context(), migrateDown)
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show applied and pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrator(cmd.Context(), migrateStatus)
			},
		},
	)
	return cmd
}

func withMigrator(ctx context.Context, fn func(context.Context, *migrate.Migrator, utils.Logger) error) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	logger := utils.NewLogger(cfg.Environment)

	db := openBunDB(cfg.DatabaseURL)
	defer db.Close()

	migrator := migrate.NewMigrator(db, migrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return fmt.Errorf("failed to init migrations: %w", err)
	}
	return fn(ctx, migrator, logger)
}

func openBunDB(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

// runMigrationsWithConfig applies pending migrations before the server starts.
func runMigrationsWithConfig(ctx context.Context, cfg *config.Config, logger utils.Logger) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("database url not configured")
	}

	db := openBunDB(cfg.DatabaseURL)
	defer db.Close()

	migrator := migrate.NewMigrator(db, migrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return fmt.Errorf("failed to init migrations: %w", err)
	}
	return migrateUp(ctx, migrator, logger)
}

func migrateUp(ctx context.Context, migrator *migrate.Migrator, logger utils.Logger) error {
	if err := migrator.Lock(ctx); err != nil {
		return fmt.Errorf("failed to lock migrations: %w", err)
	}
	defer migrator.Unlock(ctx) //nolint:errcheck

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	if group.IsZero() {
		logger.Info("Database schema is up to date")
		return nil
	}
	logger.Info("Migrations applied", "group", group.String())
	return nil
}

func migrateDown(ctx context.Context, migrator *migrate.Migrator, logger utils.Logger) error {
	if err := migrator.Lock(ctx); err != nil {
		return fmt.Errorf("failed to lock migrations: %w", err)
	}
	defer migrator.Unlock(ctx) //nolint:errcheck

	group, err := migrator.Rollback(ctx)
	if err != nil {
		return fmt.Errorf("failed to roll back migrations: %w", err)
	}
	if group.IsZero() {
		logger.Info("No migration groups to roll back")
		return nil
	}
	logger.Info("Migrations rolled back", "group", group.String())
	return nil
}

func migrateStatus(ctx context.Context, migrator *migrate.Migrator, logger utils.Logger) error {
	ms, err := migrator.MigrationsWithStatus(ctx)
	if err != nil {
		return fmt.Errorf("failed to read migration status: %w", err)
	}
	logger.Info("Migration status",
		"applied", ms.Applied().String(),
		"pending", ms.Unapplied().String(),
		"last_group", ms.LastGroup().String(),
	)
	return nil
}
