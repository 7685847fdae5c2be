package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"tenantnotes/internal/config"
	"tenantnotes/internal/repository/postgres"
)

func migrateCmd() *cobra.Command {
	var dropTables bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Long:  "Apply the embedded schema for the configured table prefix. Safe to run repeatedly.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return migrate(ctx, dropTables)
		},
	}

	cmd.Flags().BoolVar(&dropTables, "drop-tables", false, "Drop all tables before applying the schema (fresh start)")

	return cmd
}

func migrate(ctx context.Context, dropTables bool) error {
	cfg := config.Load()

	// Destructive operations are never allowed against production
	if cfg.Environment == "prod" && dropTables {
		return errors.New("refusing to run --drop-tables in the prod environment")
	}
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)

	if dropTables {
		logger.Warn("dropping tables", "prefix", cfg.TablePrefix)
		if err := postgres.DropTables(ctx, pool, tables); err != nil {
			return fmt.Errorf("drop tables: %w", err)
		}
	}

	if err := postgres.Migrate(ctx, pool, cfg.TablePrefix); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	logger.Info("schema ready",
		"environment", cfg.Environment,
		"tenants", tables.Tenants,
		"users", tables.Users,
		"notes", tables.Notes,
	)
	return nil
}
