package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ragforge-labs/ragforge/internal/config"
	"github.com/ragforge-labs/ragforge/internal/cycle"
	"github.com/ragforge-labs/ragforge/internal/embedding"
	"github.com/ragforge-labs/ragforge/internal/ingest"
	"github.com/ragforge-labs/ragforge/internal/pipeline"
	"github.com/ragforge-labs/ragforge/internal/store"
	minioclient "github.com/ragforge-labs/ragforge/internal/store/minio"
	"github.com/ragforge-labs/ragforge/internal/store/postgres"
	vk "github.com/ragforge-labs/ragforge/internal/store/valkey"
	"github.com/ragforge-labs/ragforge/internal/task"
)

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

	vkClient, err := vk.NewClient(cfg.Valkey)
	if err != nil {
		logger.Error("failed to connect to valkey", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer vkClient.Close()
	logger.Info("connected to valkey")

	mc, err := minioclient.NewClient(cfg.MinIO)
	if err != nil {
		logger.Error("failed to connect to minio", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("connected to minio")

	embedder, err := embedding.NewEmbedder(cfg)
	if err != nil {
		logger.Error("embedder init failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if embedder == nil {
		logger.Error("no embedding provider configured; set OPENROUTER_API_KEY or BEDROCK_REGION")
		os.Exit(1)
	}
	logger.Info("embeddings enabled",
		slog.String("provider", fmt.Sprintf("%T", embedder)),
		slog.String("model", embedder.ModelID()))

	tasks := task.NewLedger(s)
	cycles := cycle.NewManager(s)
	pipe := pipeline.New(s, embedder, tasks, cfg.Worker, logger)
	worker := ingest.NewWorker(tasks, cycles, mc, pipe, logger)

	consumer := ingest.NewConsumer(vkClient, cfg.Worker.ConsumerID, logger)
	if err := consumer.EnsureGroup(ctx); err != nil {
		logger.Error("failed to ensure consumer group", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("starting ingestion worker",
		slog.String("stream", ingest.StreamName),
		slog.String("consumer", cfg.Worker.ConsumerID))

	if err := consumer.Consume(ctx, worker.Handle); err != nil {
		if ctx.Err() == nil {
			logger.Error("consumer error", slog.String("error", err.Error()))
		}
	}

	logger.Info("worker stopped")
}
