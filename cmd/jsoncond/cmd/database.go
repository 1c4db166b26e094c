package cmd

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/solatis/jsoncond/internal/core/config"
	"github.com/solatis/jsoncond/internal/core/db"
)

// openDatabase loads configuration and opens the configured database.
// --db-url overrides the configured URL.
func openDatabase(ctx context.Context) (*config.ServiceConfig, *sqlx.DB, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if dbURL != "" {
		cfg.DatabaseURL = dbURL
	}

	database, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	return cfg, database, nil
}

// requireMigrated fails when any migration is pending.
func requireMigrated(ctx context.Context, database *sqlx.DB) error {
	statuses, err := db.MigrateStatus(ctx, database)
	if err != nil {
		return fmt.Errorf("failed to check migrations: %w", err)
	}
	for _, s := range statuses {
		if !s.Applied {
			return fmt.Errorf("migration %s not applied - run 'jsoncond migrate' first", s.ID)
		}
	}
	return nil
}

// openStore opens the database and a condition store over it.
func openStore(ctx context.Context) (*config.ServiceConfig, *db.Store, error) {
	cfg, database, err := openDatabase(ctx)
	if err != nil {
		return nil, nil, err
	}
	if err := requireMigrated(ctx, database); err != nil {
		database.Close()
		return nil, nil, err
	}
	store, err := db.NewStore(database, nil)
	if err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("failed to load queries: %w", err)
	}
	return cfg, store, nil
}
