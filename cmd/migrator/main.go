package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/screwyprof/faucet/migrator"
	"github.com/screwyprof/faucet/migrator/config"
	"github.com/screwyprof/faucet/pkg/logger"
	"github.com/screwyprof/faucet/pkg/pgxdb"
)

// These values are overridden at build time using -ldflags
var (
	version = "dev"
	date    = "unknown"
)

func main() {
	// Load .env when present; deployments configure through the environment
	_ = godotenv.Load()

	// Load configuration from environment
	cfg := config.New()

	// Initialize logger and set as default
	log := logger.NewFromConfig(logger.Config{
		LogLevel:         cfg.LogLevel,
		LogHumanFriendly: cfg.LogHumanFriendly,
	})
	slog.SetDefault(log)

	log.Info("Faucet database migrator starting",
		slog.String("migrationsDir", cfg.MigrationsDir),
		slog.Uint64("initialCheckpoint", cfg.InitialCheckpoint),
		slog.String("version", version),
		slog.String("date", date),
	)

	// Cancel on SIGINT/SIGTERM or when the operation timeout elapses
	baseCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithTimeout(baseCtx, cfg.OperationTimeout)
	defer cancel()

	// Connect to database
	db, err := pgxdb.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("Failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Apply migrations
	log.Info("Applying database migrations")
	if err := migrator.ApplyMigrations(db, cfg.MigrationsDir); err != nil {
		log.Error("Failed to apply migrations", slog.Any("error", err))
		os.Exit(1)
	}
	log.Info("Database migrations applied successfully")

	// Seed the journal checkpoint when requested, e.g. when restoring a
	// database from an audit log export
	if cfg.InitialCheckpoint > 0 {
		log.Info("Initializing journal checkpoint", slog.Uint64("checkpoint", cfg.InitialCheckpoint))
		if err := migrator.InitializeCheckpoint(ctx, db, cfg.InitialCheckpoint); err != nil {
			log.Error("Failed to initialize checkpoint", slog.Any("error", err))
			os.Exit(1)
		}
		log.Info("Journal checkpoint initialized")
	}

	log.Info("Faucet database migrator completed successfully")
}
