package testinfra

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/irplatform/ir-backend/migrations"
	"github.com/irplatform/ir-backend/pkg/db"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	once    sync.Once
	pool    *pgxpool.Pool
	initErr error
)

// SetupDB starts one migrated Postgres container per test binary.
// Tests are skipped when no container runtime is available.
func SetupDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)

	once.Do(func() {
		pool, initErr = startPostgres(context.Background())
	})
	if initErr != nil {
		t.Fatalf("setup db: %v", initErr)
	}
	return pool
}

func startPostgres(ctx context.Context) (*pgxpool.Pool, error) {
	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:17.2-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_PASSWORD": "password",
			"POSTGRES_USER":     "postgres",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(time.Minute),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("start postgres: %w", err)
	}

	pgHostPort, err := pgC.Endpoint(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("postgres endpoint: %w", err)
	}
	pgDSN := fmt.Sprintf("postgres://postgres:password@%s/testdb?sslmode=disable", pgHostPort)

	var p *pgxpool.Pool
	for i := 0; i < 20; i++ {
		slog.Info("ping db", "try", i)
		p, err = db.NewPool(ctx, db.Config{URL: pgDSN})
		if err == nil {
			break
		}
		time.Sleep(200 * time.Millisecond)
	}
	if err != nil {
		return nil, fmt.Errorf("db did not respond after 20 attempts: %w", err)
	}

	if err = db.NewMigrator(p, migrations.FS).Up(ctx); err != nil {
		return nil, err
	}

	return p, nil
}
