package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/cmlabs-hris/qr-attendance-go/internal/config"
	"github.com/cmlabs-hris/qr-attendance-go/internal/fixtures"
	"github.com/cmlabs-hris/qr-attendance-go/internal/pkg/database"
	"github.com/cmlabs-hris/qr-attendance-go/internal/repository/postgresql"
)

func main() {
	seed := flag.Bool("seed", false, "seed the demo organization after migrating")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Error loading config", "error", err)
		os.Exit(1)
	}
	if cfg.Storage.Driver != config.StorageDriverPostgres {
		slog.Error("Migrations require STORAGE_DRIVER=postgres", "driver", cfg.Storage.Driver)
		os.Exit(1)
	}

	ctx := context.Background()
	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{MaxConns: 2, MinConns: 1})
	if err != nil {
		slog.Error("Error connecting to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := postgresql.Migrate(ctx, db); err != nil {
		slog.Error("Migration failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Schema applied")

	if *seed {
		_, err := fixtures.SeedDemo(ctx, postgresql.NewTransactor(db), postgresql.NewOrganizationRepository(db), postgresql.NewUserRepository(db))
		if err != nil {
			slog.Error("Seeding failed", "error", err)
			os.Exit(1)
		}
	}
}
