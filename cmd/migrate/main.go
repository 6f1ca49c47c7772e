package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strconv"

	"github.com/irplatform/ir-backend/internal/infra/config"
	"github.com/irplatform/ir-backend/migrations"
	"github.com/irplatform/ir-backend/pkg/db"
	"github.com/joho/godotenv"
)

const usage = "usage: migrate up | status | down <version>"

func main() {
	_ = godotenv.Load()
	config.SetupLogger(os.Getenv("LOG_LEVEL"))

	if len(os.Args) < 2 {
		log.Fatal(usage)
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, db.NewConfig())
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()
	migrator := db.NewMigrator(pool, migrations.FS)

	switch os.Args[1] {
	case "up":
		err = migrator.Up(ctx)
	case "status":
		err = migrator.Status(ctx)
	case "down":
		if len(os.Args) < 3 {
			log.Fatal(usage)
		}
		version, parseErr := strconv.ParseInt(os.Args[2], 10, 64)
		if parseErr != nil {
			log.Fatalf("bad version %q: %v", os.Args[2], parseErr)
		}
		err = migrator.Down(ctx, version)
	default:
		log.Fatal(usage)
	}
	if err != nil {
		slog.Error("migration failed", "command", os.Args[1], "err", err)
		os.Exit(1)
	}
}
