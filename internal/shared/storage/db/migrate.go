package db

import (
	"context"
	"database/sql"
	"embed"

	"github.com/pressly/goose/v3"

	"contractai-backend/internal/shared/telemetry"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// RunMigrations applies embedded SQL migrations via goose. If database is
// nil, it's a no-op.
func RunMigrations(ctx context.Context, database *sql.DB) error {
	if database == nil {
		return nil
	}
	goose.SetBaseFS(migrationFiles)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.UpContext(ctx, database, "migrations")
}

// Bootstrap creates all schema objects directly. There is no migration
// history review and no rollback path here, so it is reserved for
// development and test environments; production runs cmd/migrate against a
// reviewed target.
func Bootstrap(ctx context.Context, database *sql.DB, environment string) error {
	if environment == "production" {
		telemetry.Warn("schema bootstrap skipped in production", nil)
		return nil
	}
	telemetry.Info("schema bootstrap", map[string]any{"environment": environment})
	return RunMigrations(ctx, database)
}
