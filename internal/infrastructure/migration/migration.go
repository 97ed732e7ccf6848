package migration

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

//go:embed sql/*.sql
var migrations embed.FS

// seams for tests
var (
	gooseSetDialect = goose.SetDialect
	gooseUpContext  = func(ctx context.Context, db *sql.DB, dir string) error {
		return goose.UpContext(ctx, db, dir)
	}
)

// RunMigrations applies the embedded schema migrations on startup.
func RunMigrations(ctx context.Context, db *sql.DB, log *zap.Logger) error {
	log.Info("starting database migrations")

	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())
	if err := gooseSetDialect("pgx"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, db, "sql"); err != nil {
		log.Error("migration failed", zap.Error(err))
		return fmt.Errorf("migrate: %w", err)
	}

	log.Info("database migrations completed")
	return nil
}
