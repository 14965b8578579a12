package main

import (
	"flag"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	taskearn "github.com/set-night/taskearn"
	"github.com/set-night/taskearn/internal/logger"
	"github.com/set-night/taskearn/internal/repository"
)

func main() {
	_ = godotenv.Load()
	logger.Init(os.Getenv("LOG_LEVEL"), "text")

	databaseURL := flag.String("database", os.Getenv("DATABASE_URL"), "postgres connection string")
	down := flag.Int("down", 0, "roll back this many migrations instead of applying")
	flag.Parse()

	if *databaseURL == "" {
		slog.Error("DATABASE_URL or -database is required")
		os.Exit(2)
	}

	migrationsFS, err := fs.Sub(taskearn.MigrationsFS, "migrations")
	if err != nil {
		slog.Error("failed to load embedded migrations", "error", err)
		os.Exit(1)
	}

	if *down > 0 {
		err = repository.RollbackMigrations(*databaseURL, migrationsFS, *down)
	} else {
		err = repository.RunMigrations(*databaseURL, migrationsFS)
	}
	if err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}
}
