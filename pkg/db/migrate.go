package db

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Migrator applies the embedded goose migrations through a pgx pool.
type Migrator struct {
	pool       *pgxpool.Pool
	migrations fs.FS
}

func NewMigrator(pool *pgxpool.Pool, migrations fs.FS) *Migrator {
	return &Migrator{pool: pool, migrations: migrations}
}

func (m *Migrator) Up(ctx context.Context) error {
	return m.withDB(func(db *sql.DB) error {
		runCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()

		slog.Info("applying migrations")
		if err := goose.UpContext(runCtx, db, "."); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
		slog.Info("migrations applied")
		return nil
	})
}

// Down rolls back the latest migration, or down to targetVersion when it is positive.
func (m *Migrator) Down(ctx context.Context, targetVersion int64) error {
	return m.withDB(func(db *sql.DB) error {
		runCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()

		if targetVersion > 0 {
			slog.Info("rolling back migrations", "target", targetVersion)
			if err := goose.DownToContext(runCtx, db, ".", targetVersion); err != nil {
				return fmt.Errorf("rollback to version %d: %w", targetVersion, err)
			}
			return nil
		}
		slog.Info("rolling back latest migration")
		if err := goose.DownContext(runCtx, db, "."); err != nil {
			return fmt.Errorf("rollback latest migration: %w", err)
		}
		return nil
	})
}

func (m *Migrator) Status(ctx context.Context) error {
	return m.withDB(func(db *sql.DB) error {
		if err := goose.StatusContext(ctx, db, "."); err != nil {
			return fmt.Errorf("migration status: %w", err)
		}
		return nil
	})
}

func (m *Migrator) withDB(fn func(*sql.DB) error) error {
	goose.SetBaseFS(m.migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("configure goose: %w", err)
	}

	db := stdlib.OpenDBFromPool(m.pool)
	defer db.Close()

	return fn(db)
}
