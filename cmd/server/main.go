package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zapflow/zapflow/internal/api"
	"github.com/zapflow/zapflow/internal/config"
	"github.com/zapflow/zapflow/internal/database"
	"github.com/zapflow/zapflow/internal/dispatch"
	"github.com/zapflow/zapflow/internal/llm"
	"github.com/zapflow/zapflow/internal/models"
	"github.com/zapflow/zapflow/internal/store"
	"github.com/zapflow/zapflow/internal/streams"
	"github.com/zapflow/zapflow/internal/suggest"
	"github.com/zapflow/zapflow/internal/templatepack"
	"github.com/zapflow/zapflow/internal/webhook"
	"github.com/zapflow/zapflow/internal/worker"
)

func main() {
	cfg := config.Load()

	logger := worker.NewLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	db, err := database.Init(cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close(db)

	if err := database.RunMigrations(db); err != nil {
		logger.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	if cfg.TokenEncryptionKey != "" {
		if err := models.InitEncryption(cfg.TokenEncryptionKey); err != nil {
			logger.Error("Failed to initialize token encryption", "error", err)
			os.Exit(1)
		}
	} else {
		logger.Warn("TOKEN_ENCRYPTION_KEY not set; provider tokens will be stored in plaintext")
	}

	if cfg.Env == "development" {
		if err := database.SeedDevData(db); err != nil {
			logger.Warn("Failed to seed development data", "error", err)
		}
	}

	// Shipped template packs sync into the templates table at startup.
	if _, err := templatepack.InitPacks(db, cfg.TemplatePackDir); err != nil {
		logger.Warn("Failed to load template packs", "error", err, "dir", cfg.TemplatePackDir)
	}

	llmClient, err := llm.NewClient(cfg.LLMAPIURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMMaxTokens)
	if err != nil {
		logger.Error("Failed to create LLM client", "error", err)
		os.Exit(1)
	}

	relay := webhook.NewClient(cfg.RelayURL, cfg.RelaySecret, cfg.RelayStubMode)

	publisher, err := streams.NewPublisher(cfg.RedisURL)
	if err != nil {
		logger.Error("Failed to create event publisher", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	job := suggest.NewJob(store.New(db), llmClient, logger, nil)
	dispatcher := dispatch.NewDispatcher(db, relay, publisher, logger, nil)

	if err := worker.InitClient(cfg.RedisURL); err != nil {
		logger.Error("Failed to create task client", "error", err)
		os.Exit(1)
	}
	defer worker.CloseClient()

	stopWorker, err := worker.Start(cfg, job, dispatcher)
	if err != nil {
		logger.Error("Failed to start worker", "error", err)
		os.Exit(1)
	}
	defer stopWorker()

	stopScheduler, err := worker.StartScheduler(cfg)
	if err != nil {
		logger.Error("Failed to start scheduler", "error", err)
		os.Exit(1)
	}
	defer stopScheduler()

	stopConsumer, err := streams.StartReceiptConsumer(cfg.RedisURL, db)
	if err != nil {
		logger.Error("Failed to start receipt consumer", "error", err)
		os.Exit(1)
	}
	defer stopConsumer()

	router := api.NewRouter(cfg, db, job, dispatcher)
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Starting server", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Forced shutdown", "error", err)
	}
}
