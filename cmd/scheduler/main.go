package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ragforge-labs/ragforge/internal/config"
	"github.com/ragforge-labs/ragforge/internal/cycle"
	"github.com/ragforge-labs/ragforge/internal/ingest"
	"github.com/ragforge-labs/ragforge/internal/store"
	"github.com/ragforge-labs/ragforge/internal/store/postgres"
)

// The scheduler's only job today is the reaper: fail running tasks whose
// lease expired and reject the cycles they were feeding.
func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.Database.DSN(), cfg.Database.MaxConns, cfg.Database.MinConns)
	if err != nil {
		logger.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("connected to database")

	s := store.New(pool)
	reaper := ingest.NewReaper(s, cycle.NewManager(s), cfg.Worker.TaskLease, logger)

	logger.Info("starting scheduler",
		slog.Duration("lease", cfg.Worker.TaskLease),
		slog.Duration("interval", cfg.Worker.ReapInterval))

	if err := reaper.Run(ctx, cfg.Worker.ReapInterval); err != nil && ctx.Err() == nil {
		logger.Error("reaper error", slog.String("error", err.Error()))
	}

	logger.Info("scheduler stopped")
}
