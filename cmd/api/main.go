package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ragforge-labs/ragforge/db"
	"github.com/ragforge-labs/ragforge/internal/access"
	"github.com/ragforge-labs/ragforge/internal/answer"
	"github.com/ragforge-labs/ragforge/internal/api"
	"github.com/ragforge-labs/ragforge/internal/auth"
	"github.com/ragforge-labs/ragforge/internal/config"
	"github.com/ragforge-labs/ragforge/internal/cycle"
	"github.com/ragforge-labs/ragforge/internal/embedding"
	"github.com/ragforge-labs/ragforge/internal/ingest"
	"github.com/ragforge-labs/ragforge/internal/llm"
	"github.com/ragforge-labs/ragforge/internal/rag"
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

	if err := db.Migrate(cfg.Database.DSN()); err != nil {
		logger.Error("failed to run migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("migrations applied")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.Database.DSN(), cfg.Database.MaxConns, cfg.Database.MinConns)
	if err != nil {
		logger.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("connected to database")

	s := store.New(pool)

	mc, err := minioclient.NewClient(cfg.MinIO)
	if err != nil {
		logger.Error("failed to connect to minio", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := mc.EnsureBucket(ctx); err != nil {
		logger.Error("failed to ensure bucket", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("connected to minio", slog.String("bucket", mc.Bucket()))

	vkClient, err := vk.NewClient(cfg.Valkey)
	if err != nil {
		logger.Error("failed to connect to valkey", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer vkClient.Close()
	logger.Info("connected to valkey")

	// Embeddings and chat (optional; chat answers 503 when unset)
	embedder, err := embedding.NewEmbedder(cfg)
	if err != nil {
		logger.Warn("embedder init failed, chat disabled", slog.String("error", err.Error()))
	} else if embedder != nil {
		logger.Info("embeddings enabled",
			slog.String("provider", fmt.Sprintf("%T", embedder)),
			slog.String("model", embedder.ModelID()))
	}

	var chatClient *llm.Client
	if cfg.LLM.APIKey != "" {
		chatClient = llm.NewClient(cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.BaseURL)
		logger.Info("chat enabled", slog.String("model", chatClient.Model()))
	}

	tokens := auth.NewTokenService(cfg.JWT)
	svc := rag.NewService(
		s,
		access.NewGuard(s),
		task.NewLedger(s),
		cycle.NewManager(s),
		mc,
		ingest.NewProducer(vkClient),
		answer.NewEngine(s, embedder, chatClient, logger),
		logger,
	)

	router := api.NewRouter(logger, s, api.RouterDeps{
		Tokens:        tokens,
		Service:       svc,
		MaxUploadSize: cfg.Server.MaxUploadSize,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting API server", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
}
