package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"pockets/internal/amqp"
	"pockets/internal/config"
	"pockets/internal/engine"
	apphttp "pockets/internal/http"
	applog "pockets/internal/log"
	"pockets/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	// Load the last saved snapshot of the default profile. A fresh
	// database starts with an empty state.
	state, revision, err := repo.Load(context.Background(), cfg.DefaultProfile)
	if err != nil {
		logger.Error("Failed to load snapshot", "error", err, "profile", cfg.DefaultProfile)
		os.Exit(1)
	}
	eng := engine.Load(state)
	if state != nil {
		logger.Info("Snapshot restored", "profile", cfg.DefaultProfile, "revision", revision)
	} else {
		logger.Info("No snapshot found, starting empty", "profile", cfg.DefaultProfile)
	}

	// AMQP is optional: without it saves still work, exports just wait
	// for the worker's periodic sweep.
	var publisher apphttp.SnapshotPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		publisher = amqpClient
		logger.Info("AMQP publisher initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	srv := apphttp.NewServer(":"+cfg.Port, eng, repo, publisher, apphttp.Options{
		Profile:            cfg.DefaultProfile,
		SnapshotsKept:      cfg.SnapshotsKept,
		TotalsCacheSize:    cfg.TotalsCacheSize,
		TotalsCacheTTL:     cfg.TotalsCacheTTL,
		MutationRateLimit:  cfg.MutationRateLimit,
		MutationRateWindow: cfg.MutationRateWindow,
	})

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	// Graceful shutdown handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting pockets server", "port", cfg.Port, "profile", cfg.DefaultProfile)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
